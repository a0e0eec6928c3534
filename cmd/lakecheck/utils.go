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

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lakecheck/lakecheck-go"
)

// parseProperties parses a comma separated list of key=value pairs.
func parseProperties(props string) (lakecheck.Properties, error) {
	properties := lakecheck.Properties{}

	if props == "" {
		return properties, nil
	}

	for _, prop := range strings.Split(props, ",") {
		parts := strings.SplitN(prop, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid property format: %s, expected key=value", prop)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if key == "" {
			return nil, fmt.Errorf("empty property key in: %s", prop)
		}

		properties[key] = value
	}

	return properties, nil
}

// parseInt64 parses a numeric command line argument.
func parseInt64(name, value string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, value)
	}

	return v, nil
}
