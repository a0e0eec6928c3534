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
	"strconv"

	"github.com/lakecheck/lakecheck-go"
	"github.com/lakecheck/lakecheck-go/fsio"
)

// s3aKeys maps fsio S3 property names to their Hadoop s3a equivalents.
var s3aKeys = map[string]string{
	fsio.S3AccessKeyID:     "fs.s3a.access.key",
	fsio.S3SecretAccessKey: "fs.s3a.secret.key",
	fsio.S3SessionToken:    "fs.s3a.session.token",
	fsio.S3Region:          "fs.s3a.endpoint.region",
	fsio.S3EndpointURL:     "fs.s3a.endpoint",
}

// S3AOptions translates the fsio S3 properties in props into Hadoop
// fs.s3a.* settings, so a Spark job reads the same store the test
// client writes. A custom endpoint switches on path-style access, the
// convention for minio and other S3 stand-ins, unless
// s3.force-virtual-addressing overrides it. Properties under the "s3a."
// prefix pass through untranslated and win over the mapped keys. The
// returned keys are plain Hadoop names; wrap them with
// sparkconn.HadoopConf to apply them to a session.
func S3AOptions(props lakecheck.Properties) lakecheck.Properties {
	out := lakecheck.Properties{}
	for from, to := range s3aKeys {
		if v, ok := props[from]; ok {
			out[to] = v
		}
	}

	if _, ok := props[fsio.S3EndpointURL]; ok {
		out["fs.s3a.path.style.access"] = "true"
	}
	if v, ok := props[fsio.S3ForceVirtualAddressing]; ok {
		if force, err := strconv.ParseBool(v); err == nil {
			out["fs.s3a.path.style.access"] = strconv.FormatBool(!force)
		}
	}

	for k, v := range fsio.PropertiesWithPrefix(props, "s3a.") {
		out["fs.s3a."+k] = v
	}

	return out
}

// CommitterOptions returns the Hadoop settings that select an S3A
// committer by name ("directory", "partitioned", or "magic"). The magic
// committer additionally needs its marker support enabled on the
// filesystem. Like S3AOptions, the result composes with
// sparkconn.HadoopConf.
func CommitterOptions(name string) lakecheck.Properties {
	out := lakecheck.Properties{
		"fs.s3a.committer.name":                        name,
		"mapreduce.outputcommitter.factory.scheme.s3a": "org.apache.hadoop.fs.s3a.commit.S3ACommitterFactory",
	}
	if name == "magic" {
		out["fs.s3a.committer.magic.enabled"] = "true"
	}

	return out
}
