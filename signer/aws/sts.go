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
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// AssumeRoleRequest mirrors mysqlshdk's Assume_role_request: the signer
// itself is reused to sign the STS call (spec.md §4.3.1).
type AssumeRoleRequest struct {
	ARN             string
	SessionName     string
	DurationSeconds int
	ExternalID      string
}

// AssumeRoleResponse mirrors Assume_role_response.
type AssumeRoleResponse struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expiration      time.Time
}

type assumeRoleResponseXML struct {
	XMLName xml.Name `xml:"AssumeRoleResponse"`
	Result  struct {
		Credentials struct {
			AccessKeyId     string `xml:"AccessKeyId"`
			SecretAccessKey string `xml:"SecretAccessKey"`
			SessionToken    string `xml:"SessionToken"`
			Expiration      string `xml:"Expiration"`
		} `xml:"Credentials"`
	} `xml:"AssumeRoleResult"`
}

// AssumeRole calls sts.<region>.amazonaws.com?Action=AssumeRole using k to
// sign the request, then replaces k's credentials with the temporary ones
// returned. This is the profile/role-chaining counterpart to
// WebIdentityCreds's OIDC flow.
func (k *SigningKey) AssumeRole(client *http.Client, r AssumeRoleRequest) (*AssumeRoleResponse, error) {
	q := url.Values{}
	q.Set("Action", "AssumeRole")
	q.Set("Version", "2011-06-15")
	q.Set("RoleArn", r.ARN)
	q.Set("RoleSessionName", r.SessionName)
	if r.DurationSeconds > 0 {
		q.Set("DurationSeconds", strconv.Itoa(r.DurationSeconds))
	}
	if r.ExternalID != "" {
		q.Set("ExternalId", r.ExternalID)
	}

	endpoint := fmt.Sprintf("https://sts.%s.amazonaws.com/?%s", k.Region, q.Encode())
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/xml")
	sts := &SigningKey{
		AccessKeyID:     k.AccessKeyID,
		SecretAccessKey: k.SecretAccessKey,
		SessionToken:    k.SessionToken,
		Region:          k.Region,
		Service:         "sts",
	}
	sts.SignV4(req, nil)

	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sts AssumeRole: %s", res.Status)
	}

	var parsed assumeRoleResponseXML
	if err := xml.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	creds := parsed.Result.Credentials
	exp, err := time.Parse(time.RFC3339, creds.Expiration)
	if err != nil {
		return nil, err
	}

	out := &AssumeRoleResponse{
		AccessKeyID:     creds.AccessKeyId,
		SecretAccessKey: creds.SecretAccessKey,
		SessionToken:    creds.SessionToken,
		Expiration:      exp,
	}
	k.AccessKeyID = out.AccessKeyID
	k.SecretAccessKey = out.SecretAccessKey
	k.SessionToken = out.SessionToken
	k.Expiration = out.Expiration
	return out, nil
}
