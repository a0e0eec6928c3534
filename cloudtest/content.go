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

package cloudtest

import (
	"fmt"

	"github.com/lakecheck/lakecheck-go/fsio"
)

// PutFileContent writes content to the named path, replacing any
// existing file.
func (in *Integration) PutFileContent(name, content string) error {
	return fsio.WriteFull(in.fs, name, []byte(content))
}

// GetFileContent reads the named file in full.
func (in *Integration) GetFileContent(name string) (string, error) {
	p, err := fsio.ReadFull(in.fs, name)
	if err != nil {
		return "", err
	}

	return string(p), nil
}

// Delete removes the named path and everything below it.
func (in *Integration) Delete(name string) error {
	if err := in.fs.RemoveAll(name); err != nil {
		return fmt.Errorf("cannot delete %s on %T: %w", name, in.fs, err)
	}

	return nil
}
