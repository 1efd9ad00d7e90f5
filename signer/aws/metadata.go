// Copyright 2023 Sneller, Inc.
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

package aws

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const metadataBase = "http://169.254.169.254/latest"

// imdsToken fetches an IMDSv2 session token, valid for the duration of a
// single metadata lookup; the instance metadata service requires this
// token dance before any meta-data path can be read.
func imdsToken() (string, error) {
	req, err := http.NewRequest(http.MethodPut, metadataBase+"/api/token", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-aws-ec2-metadata-token-ttl-seconds", "21600")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("imds token request: %s", res.Status)
	}
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func metadataGet(path string) ([]byte, error) {
	token, err := imdsToken()
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodGet, metadataBase+"/meta-data/"+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-aws-ec2-metadata-token", token)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("instance metadata %s: %s", path, res.Status)
	}
	return io.ReadAll(res.Body)
}

// MetadataString fetches a plain-text EC2/ECS instance metadata value.
func MetadataString(path string) (string, error) {
	b, err := metadataGet(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// MetadataJSON fetches and unmarshals a JSON instance metadata document.
func MetadataJSON(path string, out any) error {
	b, err := metadataGet(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// ec2Region derives the region from the instance's availability zone
// (the AZ is the region plus a trailing letter suffix, e.g. us-east-2a).
func ec2Region() (string, error) {
	az, err := MetadataString("placement/availability-zone")
	if err != nil {
		return "", err
	}
	if len(az) < 2 {
		return "", fmt.Errorf("unexpected availability zone %q", az)
	}
	return az[:len(az)-1], nil
}

// S3EndPoint returns the S3 endpoint for region, honoring an S3_ENDPOINT
// override (used for S3-compatible providers and local mocks, e.g. MinIO).
func S3EndPoint(region string) string {
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		return strings.TrimSuffix(v, "/")
	}
	return fmt.Sprintf("https://s3.%s.amazonaws.com", region)
}

// B2EndPoint returns the Backblaze B2 S3-compatible endpoint for region.
func B2EndPoint(region string) string {
	return fmt.Sprintf("https://s3.%s.backblazeb2.com", region)
}
