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
	"maps"
	"testing"

	"github.com/lakecheck/lakecheck-go"
)

func TestParseProperties(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  lakecheck.Properties
		isErr bool
	}{
		{
			name:  "empty string",
			input: "",
			want:  lakecheck.Properties{},
		},
		{
			name:  "single property",
			input: "key1=value1",
			want:  lakecheck.Properties{"key1": "value1"},
		},
		{
			name:  "multiple properties",
			input: "key1=value1,key2=value2,key3=value3",
			want:  lakecheck.Properties{"key1": "value1", "key2": "value2", "key3": "value3"},
		},
		{
			name:  "with spaces",
			input: " key1 = value1 , key2 = value2 ",
			want:  lakecheck.Properties{"key1": "value1", "key2": "value2"},
		},
		{
			name:  "value containing equals",
			input: "dsn=file:runs.db?mode=rwc",
			want:  lakecheck.Properties{"dsn": "file:runs.db?mode=rwc"},
		},
		{
			name:  "invalid format - no equals",
			input: "key1value1",
			isErr: true,
		},
		{
			name:  "invalid format - empty key",
			input: "=value1",
			isErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProperties(tt.input)
			if (err != nil) != tt.isErr {
				t.Errorf("parseProperties() error = %v, isErr %v", err, tt.isErr)

				return
			}
			if !tt.isErr && !maps.Equal(got, tt.want) {
				t.Errorf("parseProperties() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseInt64(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
		isErr bool
	}{
		{
			name:  "plain number",
			input: "120",
			want:  120,
		},
		{
			name:  "negative",
			input: "-3",
			want:  -3,
		},
		{
			name:  "with spaces",
			input: " 42 ",
			want:  42,
		},
		{
			name:  "not a number",
			input: "abc",
			isErr: true,
		},
		{
			name:  "empty",
			input: "",
			isErr: true,
		},
		{
			name:  "fractional",
			input: "1.5",
			isErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseInt64("COUNT", tt.input)
			if (err != nil) != tt.isErr {
				t.Errorf("parseInt64() error = %v, isErr %v", err, tt.isErr)

				return
			}
			if !tt.isErr && got != tt.want {
				t.Errorf("parseInt64() = %d, want %d", got, tt.want)
			}
		})
	}
}
