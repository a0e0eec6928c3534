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
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gocloud.dev/blob/s3blob"
)

// Constants for S3 configuration options
const (
	S3Region                 = "s3.region"
	S3SessionToken           = "s3.session-token"
	S3SecretAccessKey        = "s3.secret-access-key"
	S3AccessKeyID            = "s3.access-key-id"
	S3EndpointURL            = "s3.endpoint"
	S3ProxyURI               = "s3.proxy-uri"
	S3ConnectTimeout         = "s3.connect-timeout"
	S3ForceVirtualAddressing = "s3.force-virtual-addressing"
)

type awsctxkey struct{}

// WithAwsConfig stashes a pre-built AWS config in the context. Schemes
// backed by S3 use it instead of parsing credential properties, which
// lets callers share one configured client across filesystems.
func WithAwsConfig(ctx context.Context, cfg *aws.Config) context.Context {
	return context.WithValue(ctx, awsctxkey{}, cfg)
}

// GetAwsConfig retrieves a config stored by WithAwsConfig, or nil.
func GetAwsConfig(ctx context.Context) *aws.Config {
	if v := ctx.Value(awsctxkey{}); v != nil {
		return v.(*aws.Config)
	}

	return nil
}

// ParseAWSConfig parses S3 properties and returns a configuration.
func ParseAWSConfig(ctx context.Context, props map[string]string) (*aws.Config, error) {
	opts := []func(*config.LoadOptions) error{}

	if r, ok := props[S3Region]; ok {
		opts = append(opts, config.WithRegion(r))
	} else if r, ok := props["client.region"]; ok {
		opts = append(opts, config.WithRegion(r))
	}

	accessKey, secretAccessKey := props[S3AccessKeyID], props[S3SecretAccessKey]
	token := props[S3SessionToken]
	if accessKey != "" || secretAccessKey != "" || token != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey, secretAccessKey, token)))
	}

	httpClient := awshttp.NewBuildableClient()
	customClient := false

	if proxy, ok := props[S3ProxyURI]; ok {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid s3 proxy url '%s'", proxy)
		}

		httpClient = httpClient.WithTransportOptions(func(t *http.Transport) {
			t.Proxy = http.ProxyURL(proxyURL)
		})
		customClient = true
	}

	if timeout, ok := props[S3ConnectTimeout]; ok {
		dur, err := parseConnectTimeout(timeout)
		if err != nil {
			return nil, err
		}

		httpClient = httpClient.WithDialerOptions(func(d *net.Dialer) {
			d.Timeout = dur
		})
		customClient = true
	}

	if customClient {
		opts = append(opts, config.WithHTTPClient(httpClient))
	}

	awscfg := new(aws.Config)
	var err error
	*awscfg, err = config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return awscfg, nil
}

// parseConnectTimeout accepts either a bare number of seconds, the
// convention most object store clients follow for s3.connect-timeout,
// or a Go duration string such as "5s".
func parseConnectTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}

	dur, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid s3 connect timeout '%s'", v)
	}

	return dur, nil
}

func createS3FS(ctx context.Context, parsed *url.URL, props map[string]string) (FS, error) {
	var (
		awscfg *aws.Config
		err    error
	)
	if v := GetAwsConfig(ctx); v != nil {
		awscfg = v
	} else {
		awscfg, err = ParseAWSConfig(ctx, props)
		if err != nil {
			return nil, err
		}
	}

	endpoint, ok := props[S3EndpointURL]
	if !ok {
		endpoint = os.Getenv("AWS_S3_ENDPOINT")
	}

	usePathStyle := true
	if forceVirtual, ok := props[S3ForceVirtualAddressing]; ok {
		if cfgForceVirtual, err := strconv.ParseBool(forceVirtual); err == nil {
			usePathStyle = !cfgForceVirtual
		}
	}

	client := s3.NewFromConfig(*awscfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = usePathStyle
		o.DisableLogOutputChecksumValidationSkipped = true
	})

	bucket, err := s3blob.OpenBucketV2(ctx, client, parsed.Host, nil)
	if err != nil {
		return nil, err
	}

	return OpenBlob(ctx, bucket, parsed.Host), nil
}

func init() {
	for _, scheme := range []string{"s3", "s3a", "s3n"} {
		Register(scheme, SchemeFactory(createS3FS))
	}
}
