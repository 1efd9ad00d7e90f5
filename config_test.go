// Copyright 2025 Roman Atachiants
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package objectfs

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBucket_RequiresExactlyOneBackend(t *testing.T) {
	_, err := NewBucket(Config{})
	assert.Error(t, err)
}

func TestNewBucket_S3RequiresBucketName(t *testing.T) {
	_, err := NewBucket(Config{S3: &S3Config{Region: "us-east-1"}})
	assert.Error(t, err)
}

func TestNewBucket_S3WithStaticCreds(t *testing.T) {
	b, err := NewBucket(Config{S3: &S3Config{
		BucketName:      "my-bucket",
		Region:          "us-east-1",
		AccessKeyID:     "AKIA...",
		SecretAccessKey: "secret",
	}})
	require.NoError(t, err)
	assert.Equal(t, "s3", b.Name())
}

func TestNewBucket_OCIRequiresCredentials(t *testing.T) {
	_, err := NewBucket(Config{OCI: &OCIConfig{BucketName: "b", Namespace: "ns"}})
	assert.Error(t, err)
}

func TestNewBucket_AzureRequiresKeyOrSAS(t *testing.T) {
	_, err := NewBucket(Config{Azure: &AzureConfig{ContainerName: "c", Account: "acct"}})
	assert.Error(t, err)
}

func TestNewBucket_AzureWithSharedKey(t *testing.T) {
	key := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef"))
	b, err := NewBucket(Config{Azure: &AzureConfig{ContainerName: "c", Account: "acct", Key: key}})
	require.NoError(t, err)
	assert.Equal(t, "azure", b.Name())
}

func TestParseAzureConnectionString(t *testing.T) {
	s := "DefaultEndpointsProtocol=https;AccountName=myacct;AccountKey=abc123;EndpointSuffix=core.windows.net"
	got := ParseAzureConnectionString(s)
	assert.Equal(t, "https", got["DefaultEndpointsProtocol"])
	assert.Equal(t, "myacct", got["AccountName"])
	assert.Equal(t, "abc123", got["AccountKey"])
	assert.Equal(t, "core.windows.net", got["EndpointSuffix"])
}

func TestParseURI(t *testing.T) {
	scheme, segs, err := ParseURI("s3://my-bucket/path/to/obj.txt")
	require.NoError(t, err)
	assert.Equal(t, "s3", scheme)
	assert.Equal(t, []string{"my-bucket", "path", "to", "obj.txt"}, segs)

	_, _, err = ParseURI("not-a-uri")
	assert.Error(t, err)
}
