// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

// Package lakecheck provides integration-test support for data lake
// storage: a pluggable filesystem abstraction, dataset load/save with
// completeness validation, an eventual-consistency poller, and
// cross-filesystem copies.
package lakecheck

import (
	"strconv"
	"time"
)

// Properties is a collection of string key/value settings shared by the
// filesystem backends, the dataset sessions, and the test helpers.
type Properties map[string]string

// Get returns the value of the key if it exists, otherwise it returns the default value.
func (p Properties) Get(key, defVal string) string {
	if v, ok := p[key]; ok {
		return v
	}

	return defVal
}

func (p Properties) GetBool(key string, defVal bool) bool {
	if v, ok := p[key]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return defVal
		}

		return b
	}

	return defVal
}

func (p Properties) GetInt(key string, defVal int) int {
	if v, ok := p[key]; ok {
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return defVal
		}

		return int(i)
	}

	return defVal
}

// GetDuration parses the value of the key as a time.Duration, returning
// the default on a missing key or an unparseable value.
func (p Properties) GetDuration(key string, defVal time.Duration) time.Duration {
	if v, ok := p[key]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return defVal
		}

		return d
	}

	return defVal
}
