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

package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const cfgFile = ".lakecheck-go.yaml"

type Config struct {
	DefaultProfile string             `yaml:"default-profile"`
	Profiles       map[string]Profile `yaml:"profile"`
}

type Profile struct {
	Location   string            `yaml:"location"`
	Format     string            `yaml:"format"`
	Remote     string            `yaml:"remote"`
	Output     string            `yaml:"output"`
	Properties map[string]string `yaml:"properties"`
}

func LoadConfig(configPath string) []byte {
	var path string
	if len(configPath) > 0 {
		path = configPath
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(homeDir, cfgFile)
	}
	file, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	return file
}

func ParseConfig(file []byte, profileName string) *Profile {
	var config Config
	err := yaml.Unmarshal(file, &config)
	if err != nil {
		return nil
	}
	res, ok := config.Profiles[profileName]
	if !ok {
		return nil
	}

	return &res
}

func fromConfigFiles() Config {
	dir := os.Getenv("LAKECHECK_HOME")
	if dir != "" {
		dir = filepath.Join(dir, cfgFile)
	}

	var cfg Config
	if err := yaml.Unmarshal(LoadConfig(dir), &cfg); err != nil {
		return cfg
	}

	if cfg.DefaultProfile == "" {
		cfg.DefaultProfile = "default"
	}

	return cfg
}

var EnvConfig = fromConfigFiles()

// LoadEnv loads variables from a .env file into the environment.
// Integration tests keep store credentials there; a missing file just
// means the environment already has them.
func LoadEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}
