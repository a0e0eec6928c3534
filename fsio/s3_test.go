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
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAWSConfigRegion(t *testing.T) {
	t.Parallel()

	t.Run("explicit region", func(t *testing.T) {
		t.Parallel()

		cfg, err := ParseAWSConfig(context.Background(), map[string]string{
			S3Region: "eu-west-1",
		})
		require.NoError(t, err)
		assert.Equal(t, "eu-west-1", cfg.Region)
	})

	t.Run("client region fallback", func(t *testing.T) {
		t.Parallel()

		cfg, err := ParseAWSConfig(context.Background(), map[string]string{
			"client.region": "ap-southeast-2",
		})
		require.NoError(t, err)
		assert.Equal(t, "ap-southeast-2", cfg.Region)
	})
}

func TestParseAWSConfigStaticCredentials(t *testing.T) {
	t.Parallel()

	cfg, err := ParseAWSConfig(context.Background(), map[string]string{
		S3Region:          "us-east-1",
		S3AccessKeyID:     "admin",
		S3SecretAccessKey: "password",
		S3SessionToken:    "token",
	})
	require.NoError(t, err)

	creds, err := cfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "admin", creds.AccessKeyID)
	assert.Equal(t, "password", creds.SecretAccessKey)
	assert.Equal(t, "token", creds.SessionToken)
}

func TestParseAWSConfigInvalidProxy(t *testing.T) {
	t.Parallel()

	_, err := ParseAWSConfig(context.Background(), map[string]string{
		S3Region:   "us-east-1",
		S3ProxyURI: ":invalid-proxy",
	})
	require.ErrorContains(t, err, "invalid s3 proxy url")
}

func TestParseAWSConfigConnectTimeout(t *testing.T) {
	t.Parallel()

	_, err := ParseAWSConfig(context.Background(), map[string]string{
		S3Region:         "us-east-1",
		S3ConnectTimeout: "not-a-timeout",
	})
	require.ErrorContains(t, err, "invalid s3 connect timeout")

	_, err = ParseAWSConfig(context.Background(), map[string]string{
		S3Region:         "us-east-1",
		S3ConnectTimeout: "5",
	})
	require.NoError(t, err)
}

func TestParseConnectTimeout(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{input: "5", expected: 5 * time.Second},
		{input: "0.5", expected: 500 * time.Millisecond},
		{input: "750ms", expected: 750 * time.Millisecond},
		{input: "2m", expected: 2 * time.Minute},
		{input: "garbage", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			dur, err := parseConnectTimeout(tt.input)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, dur)
		})
	}
}

func TestAwsConfigContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetAwsConfig(ctx))

	cfg := &aws.Config{Region: "us-west-2"}
	ctx = WithAwsConfig(ctx, cfg)
	assert.Same(t, cfg, GetAwsConfig(ctx))
}

func TestCreateS3FS(t *testing.T) {
	fsys, err := LoadFS(context.Background(), map[string]string{
		S3Region:          "us-east-1",
		S3AccessKeyID:     "admin",
		S3SecretAccessKey: "password",
		S3EndpointURL:     "http://localhost:9000",
	}, "s3://warehouse/tbl")
	require.NoError(t, err)
	assert.NotNil(t, fsys)
}
