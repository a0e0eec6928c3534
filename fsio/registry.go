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

package fsio

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"sync"

	"github.com/lakecheck/lakecheck-go/config"
)

type registry map[string]SchemeFactory

func (r registry) getKeys() []string {
	regMutex.Lock()
	defer regMutex.Unlock()

	return slices.Collect(maps.Keys(r))
}

func (r registry) set(scheme string, factory SchemeFactory) {
	regMutex.Lock()
	defer regMutex.Unlock()
	r[scheme] = factory
}

func (r registry) get(scheme string) (SchemeFactory, bool) {
	regMutex.Lock()
	defer regMutex.Unlock()
	factory, ok := r[scheme]

	return factory, ok
}

func (r registry) remove(scheme string) {
	regMutex.Lock()
	defer regMutex.Unlock()
	delete(r, scheme)
}

var (
	regMutex        sync.Mutex
	defaultRegistry = registry{}
)

// SchemeFactory is a function that creates an FS implementation for a given URI and properties.
type SchemeFactory func(ctx context.Context, parsed *url.URL, props map[string]string) (FS, error)

// Register adds a new scheme factory to the registry. If the scheme is already registered, it will be replaced.
func Register(scheme string, factory SchemeFactory) {
	if factory == nil {
		panic("fsio: Register factory is nil")
	}
	defaultRegistry.set(scheme, factory)
}

// Unregister removes the requested scheme factory from the registry.
func Unregister(scheme string) {
	defaultRegistry.remove(scheme)
}

// GetRegisteredSchemes returns the list of registered scheme names.
func GetRegisteredSchemes() []string {
	return defaultRegistry.getKeys()
}

func init() {
	localFSFactory := func(ctx context.Context, parsed *url.URL, props map[string]string) (FS, error) {
		return LocalFS{}, nil
	}
	Register("file", localFSFactory)
	Register("", localFSFactory)
}

// LoadFS parses the location's scheme and builds the matching
// filesystem from the registry. An empty location falls back to the
// "warehouse" property, then to the default profile of the
// environment config.
func LoadFS(ctx context.Context, props map[string]string, location string) (FS, error) {
	if location == "" {
		location = props["warehouse"]
	}
	if location == "" {
		prof := config.EnvConfig.Profiles[config.EnvConfig.DefaultProfile]
		location = prof.Location
		if props == nil {
			props = prof.Properties
		}
	}

	parsed, err := url.Parse(location)
	if err != nil {
		return nil, err
	}

	factory, ok := defaultRegistry.get(parsed.Scheme)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFSNotFound, parsed.Scheme)
	}

	return factory(ctx, parsed, props)
}
