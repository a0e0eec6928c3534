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

// Package recipe starts the local object store and Spark Connect stack
// that the integration tests run against.
package recipe

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	_ "embed"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/testcontainers/testcontainers-go/modules/compose"
)

//go:embed docker-compose.yml
var composeFile []byte

const (
	mcService   = "mc"
	mcContainer = "lakecheck-mc"

	s3Endpoint  = "http://localhost:9000"
	sparkRemote = "sc://localhost:15002"
)

// Bucket is the object store bucket the stack provisions.
const Bucket = "warehouse"

// provisionScript aliases the minio endpoint and creates the warehouse
// bucket, retrying until minio accepts connections.
const provisionScript = "until mc alias set minio http://minio:9000 minioadmin minioadmin; do sleep 1; done; " +
	"mc mb --ignore-existing minio/" + Bucket + " && mc anonymous set public minio/" + Bucket

// Start brings up minio and a Spark Connect server with docker compose
// and points AWS_S3_ENDPOINT, AWS_REGION, the AWS credential variables
// and SPARK_REMOTE at them. When AWS_S3_ENDPOINT is already set the
// environment is assumed to provide the whole stack and nothing is
// started.
func Start(t *testing.T) (*compose.DockerCompose, error) {
	if _, ok := os.LookupEnv("AWS_S3_ENDPOINT"); ok {
		return nil, nil
	}
	stack, err := compose.NewDockerComposeWith(
		compose.WithStackReaders(bytes.NewBuffer(composeFile)),
	)
	if err != nil {
		return nil, fmt.Errorf("fail to build compose: %w", err)
	}
	if err := stack.Up(t.Context()); err != nil {
		return stack, fmt.Errorf("fail to up compose: %w", err)
	}

	mc, err := stack.ServiceContainer(t.Context(), mcService)
	if err != nil {
		return stack, fmt.Errorf("fail to find %s: %w", mcService, err)
	}
	code, stdout, err := mc.Exec(t.Context(), []string{"/bin/sh", "-c", provisionScript})
	if err != nil {
		return stack, fmt.Errorf("fail to provision %s: %w", Bucket, err)
	}
	data, err := io.ReadAll(stdout)
	if err != nil {
		return stack, fmt.Errorf("fail to read stdout: %w", err)
	}
	fmt.Println(string(data))
	if code != 0 {
		return stack, fmt.Errorf("provision exited with code %d", code)
	}

	if err := waitForPort("localhost:9000", time.Minute); err != nil {
		return stack, err
	}
	// The connect server fetches its s3a packages on first boot.
	if err := waitForPort("localhost:15002", 5*time.Minute); err != nil {
		return stack, err
	}

	t.Setenv("AWS_S3_ENDPOINT", s3Endpoint)
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "minioadmin")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "minioadmin")
	t.Setenv("SPARK_REMOTE", sparkRemote)

	return stack, nil
}

func waitForPort(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err == nil {
			return conn.Close()
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%s not reachable: %w", addr, err)
		}
		time.Sleep(time.Second)
	}
}

// ExecMC runs a shell script inside the stack's mc container, where the
// minio alias from provisioning is available. The output is echoed and
// returned.
func ExecMC(t *testing.T, script string) (string, error) {
	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithVersion("1.48"),
	)
	if err != nil {
		return "", err
	}
	defer func(cli *client.Client) {
		err := cli.Close()
		if err != nil {
			t.Logf("failed to close docker client")
		}
	}(cli)

	containers, err := cli.ContainerList(t.Context(), container.ListOptions{
		All: true,
	})
	if err != nil {
		return "", err
	}

	var mcID string
	for _, c := range containers {
		for _, name := range c.Names {
			if strings.Contains(name, mcContainer) {
				mcID = c.ID

				break
			}
		}
	}
	if mcID == "" {
		return "", fmt.Errorf("unable to find container: %s", mcContainer)
	}

	response, err := cli.ContainerExecCreate(t.Context(), mcID, container.ExecOptions{
		Cmd:          []string{"/bin/sh", "-c", script},
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return "", err
	}

	attachResp, err := cli.ContainerExecAttach(t.Context(), response.ID, container.ExecAttachOptions{})
	if err != nil {
		return "", err
	}
	defer attachResp.Close()

	output, err := io.ReadAll(attachResp.Reader)
	if err != nil {
		return "", err
	}
	fmt.Printf("%s\n", string(output))

	inspect, err := cli.ContainerExecInspect(t.Context(), response.ID)
	if err != nil {
		return "", err
	}
	if inspect.ExitCode != 0 {
		return "", fmt.Errorf("failed to execute script with exit code: %d", inspect.ExitCode)
	}

	return string(output), nil
}
