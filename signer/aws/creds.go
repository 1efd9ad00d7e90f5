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
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// scanspec binds an INI-file key prefix to the destination it should be
// written into.
type scanspec struct {
	prefix string
	dst    *string
}

// scan is a minimal INI-style reader: it finds "[section]" and fills in
// each spec whose key (before "=") matches spec.prefix within that
// section. Malformed lines are ignored. This is deliberately not a
// general-purpose config parser (out of scope per spec.md §1) — it only
// serves credentials-file/config-file reading for this signer.
func scan(r io.Reader, section string, spec []scanspec) error {
	sc := bufio.NewScanner(r)
	inSection := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			inSection = strings.TrimSpace(line[1:len(line)-1]) == section
			continue
		}
		if !inSection {
			continue
		}
		i := strings.IndexByte(line, '=')
		if i <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:i])
		val := strings.TrimSpace(line[i+1:])
		if val == "" {
			continue
		}
		for j := range spec {
			if spec[j].dst != nil && key == spec[j].prefix {
				*spec[j].dst = val
			}
		}
	}
	return sc.Err()
}

// loadCredentials reads aws_access_key_id/aws_secret_access_key from a
// credentials-file-formatted profile section.
func loadCredentials(path, profile string) (id, secret string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	spec := []scanspec{
		{prefix: "aws_access_key_id", dst: &id},
		{prefix: "aws_secret_access_key", dst: &secret},
	}
	if err := scan(f, profile, spec); err != nil {
		return "", "", err
	}
	if id == "" || secret == "" {
		return "", "", fmt.Errorf("no credentials found for profile %q in %s", profile, path)
	}
	return id, secret, nil
}

func defaultCredentialsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".aws", "credentials")
}

// AmbientCreds resolves credentials the way the AWS CLI does for a simple
// client: environment variables first, then the default profile in
// ~/.aws/credentials (or ./.aws/credentials as a fallback for local
// development, matching the teacher's local-dev convenience path).
func AmbientCreds(region string) (id, secret, outRegion, token string, err error) {
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		id = v
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		secret = v
	}
	if v := os.Getenv("AWS_SESSION_TOKEN"); v != "" {
		token = v
	}
	outRegion = region
	if v := os.Getenv("AWS_REGION"); v != "" && region == "" {
		outRegion = v
	}

	if id != "" && secret != "" {
		return id, secret, outRegion, token, nil
	}

	if path := defaultCredentialsFile(); path != "" {
		if id2, secret2, e := loadCredentials(path, "default"); e == nil {
			return id2, secret2, outRegion, token, nil
		}
	}

	if wd, e := os.Getwd(); e == nil {
		local := filepath.Join(wd, ".aws", "credentials")
		if id2, secret2, e := loadCredentials(local, "default"); e == nil {
			return id2, secret2, outRegion, token, nil
		}
	}

	return "", "", outRegion, "", fmt.Errorf("no AWS credentials found in environment or ~/.aws/credentials")
}

type assumeRoleWithWebIdentityResponse struct {
	XMLName xml.Name `xml:"AssumeRoleWithWebIdentityResponse"`
	Result  struct {
		Credentials struct {
			AccessKeyId     string `xml:"AccessKeyId"`
			SecretAccessKey string `xml:"SecretAccessKey"`
			SessionToken    string `xml:"SessionToken"`
			Expiration      string `xml:"Expiration"`
		} `xml:"Credentials"`
	} `xml:"AssumeRoleWithWebIdentityResult"`
}

// WebIdentityCreds performs an STS AssumeRoleWithWebIdentity call using the
// standard EKS/IRSA environment variables (AWS_REGION, AWS_ROLE_ARN,
// AWS_WEB_IDENTITY_TOKEN_FILE, AWS_ROLE_SESSION_NAME), per spec.md §4.3.1's
// "STS AssumeRole support".
func WebIdentityCreds(client *http.Client) (id, secret, region, token string, expiration time.Time, err error) {
	region = os.Getenv("AWS_REGION")
	roleArn := os.Getenv("AWS_ROLE_ARN")
	tokenFile := os.Getenv("AWS_WEB_IDENTITY_TOKEN_FILE")
	sessionName := os.Getenv("AWS_ROLE_SESSION_NAME")
	if sessionName == "" {
		sessionName = "objectfs"
	}
	if region == "" || roleArn == "" || tokenFile == "" {
		return "", "", "", "", time.Time{}, fmt.Errorf("AWS_REGION, AWS_ROLE_ARN and AWS_WEB_IDENTITY_TOKEN_FILE must be set")
	}

	tokBytes, err := os.ReadFile(tokenFile)
	if err != nil {
		return "", "", "", "", time.Time{}, err
	}

	q := url.Values{}
	q.Set("Action", "AssumeRoleWithWebIdentity")
	q.Set("Version", "2011-06-15")
	q.Set("RoleArn", roleArn)
	q.Set("RoleSessionName", sessionName)
	q.Set("WebIdentityToken", strings.TrimSpace(string(tokBytes)))

	endpoint := "https://sts.amazonaws.com/?" + q.Encode()
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return "", "", "", "", time.Time{}, err
	}
	req.Header.Set("Accept", "application/xml")

	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return "", "", "", "", time.Time{}, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", "", "", "", time.Time{}, fmt.Errorf("sts AssumeRoleWithWebIdentity: %s", res.Status)
	}

	var parsed assumeRoleWithWebIdentityResponse
	if err := xml.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", "", "", "", time.Time{}, err
	}
	creds := parsed.Result.Credentials
	exp, err := time.Parse(time.RFC3339, creds.Expiration)
	if err != nil {
		return "", "", "", "", time.Time{}, err
	}
	return creds.AccessKeyId, creds.SecretAccessKey, region, creds.SessionToken, exp, nil
}
