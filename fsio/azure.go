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
	"net/url"
	"path"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"gocloud.dev/blob/azureblob"
)

// Constants for Azure configuration options
const (
	AdlsSasTokenPrefix         = "adls.sas-token."
	AdlsConnectionStringPrefix = "adls.connection-string."
	AdlsSharedKeyAccountName   = "adls.auth.shared-key.account.name"
	AdlsSharedKeyAccountKey    = "adls.auth.shared-key.account.key"
	AdlsEndpoint               = "adls.endpoint"
	AdlsProtocol               = "adls.protocol"
)

// adlsLocation holds the pieces of an Azure Data Lake URI of the form
// scheme://container@account.dfs.core.windows.net/path.
type adlsLocation struct {
	accountName   string
	containerName string
	hostname      string
	path          string
}

func newAdlsLocation(parsed *url.URL) (*adlsLocation, error) {
	containerName := parsed.User.Username()
	if containerName == "" {
		return nil, fmt.Errorf("container name is required in location: %s", parsed.String())
	}

	accountName, _, found := strings.Cut(parsed.Host, ".")
	if !found || accountName == "" {
		return nil, fmt.Errorf("invalid ADLS hostname in location: %s", parsed.String())
	}

	return &adlsLocation{
		accountName:   accountName,
		containerName: containerName,
		hostname:      parsed.Host,
		path:          parsed.Path,
	}, nil
}

// prefix is the portion of the URI between the scheme separator and the
// object key, used to strip full URIs back down to bucket-relative keys.
func (loc *adlsLocation) prefix() string {
	return loc.containerName + "@" + loc.hostname
}

// lookup resolves an account-scoped property, preferring the fully
// qualified hostname over the bare account name.
func (loc *adlsLocation) lookup(props map[string]string, keyPrefix string) string {
	if v := props[keyPrefix+loc.hostname]; v != "" {
		return v
	}

	return props[keyPrefix+loc.accountName]
}

func parseAdlsServiceURL(loc *adlsLocation, props map[string]string) (azureblob.ServiceURL, error) {
	opts := azureblob.NewDefaultServiceURLOptions()
	opts.AccountName = loc.accountName

	if endpoint := props[AdlsEndpoint]; endpoint != "" {
		opts.StorageDomain = endpoint
	} else if opts.StorageDomain == "" {
		// abfs locations name the Data Lake endpoint, but the wire
		// protocol here is the Blob service on the same account.
		domain := strings.TrimPrefix(loc.hostname, loc.accountName+".")
		if after, ok := strings.CutPrefix(domain, "dfs."); ok {
			domain = "blob." + after
		}
		opts.StorageDomain = domain
	}

	if protocol := props[AdlsProtocol]; protocol != "" {
		opts.Protocol = protocol
	}

	if sas := loc.lookup(props, AdlsSasTokenPrefix); sas != "" {
		opts.SASToken = sas
	}

	return azureblob.NewServiceURL(opts)
}

func adlsContainerURL(svcURL azureblob.ServiceURL, containerName string) (string, error) {
	u, err := url.Parse(string(svcURL))
	if err != nil {
		return "", err
	}
	u.Path = path.Join(u.Path, containerName)

	return u.String(), nil
}

func createAzureClient(svcURL azureblob.ServiceURL, loc *adlsLocation, props map[string]string) (*container.Client, error) {
	if connStr := loc.lookup(props, AdlsConnectionStringPrefix); connStr != "" {
		return container.NewClientFromConnectionString(connStr, loc.containerName, nil)
	}

	sharedName, sharedKey := props[AdlsSharedKeyAccountName], props[AdlsSharedKeyAccountKey]
	if sharedName != "" || sharedKey != "" {
		if sharedName == "" || sharedKey == "" {
			return nil, fmt.Errorf("shared-key requires both %s and %s to be set",
				AdlsSharedKeyAccountName, AdlsSharedKeyAccountKey)
		}

		cred, err := container.NewSharedKeyCredential(sharedName, sharedKey)
		if err != nil {
			return nil, err
		}

		containerURL, err := adlsContainerURL(svcURL, loc.containerName)
		if err != nil {
			return nil, err
		}

		return container.NewClientWithSharedKeyCredential(containerURL, cred, nil)
	}

	if loc.lookup(props, AdlsSasTokenPrefix) != "" {
		containerURL, err := adlsContainerURL(svcURL, loc.containerName)
		if err != nil {
			return nil, err
		}

		return container.NewClientWithNoCredential(containerURL, nil)
	}

	return azureblob.NewDefaultClient(svcURL, azureblob.ContainerName(loc.containerName))
}

func createAzureFS(ctx context.Context, parsed *url.URL, props map[string]string) (FS, error) {
	loc, err := newAdlsLocation(parsed)
	if err != nil {
		return nil, err
	}

	svcURL, err := parseAdlsServiceURL(loc, props)
	if err != nil {
		return nil, err
	}

	client, err := createAzureClient(svcURL, loc, props)
	if err != nil {
		return nil, err
	}

	bucket, err := azureblob.OpenBucket(ctx, client, nil)
	if err != nil {
		return nil, err
	}

	return OpenBlob(ctx, bucket, loc.prefix()), nil
}

func init() {
	for _, scheme := range []string{"abfs", "abfss", "wasb", "wasbs"} {
		Register(scheme, SchemeFactory(createAzureFS))
	}
}
