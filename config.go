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
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dumpfs/objectfs/backend/azureblob"
	"github.com/dumpfs/objectfs/backend/oci"
	"github.com/dumpfs/objectfs/backend/s3"
	awssigner "github.com/dumpfs/objectfs/signer/aws"
	azuresigner "github.com/dumpfs/objectfs/signer/azureblob"
	ocisigner "github.com/dumpfs/objectfs/signer/oci"
	"github.com/dumpfs/objectfs/rest"
)

// DefaultPartSize is used when Config.PartSize is zero; it is then clamped
// into whichever backend's legal [MinPartSize, MaxPartSize] range.
const DefaultPartSize = 64 * 1024 * 1024

// Config selects and configures exactly one backend (spec.md §6): set
// exactly one of S3, OCI or Azure.
type Config struct {
	PartSize int64

	// EndpointOverride replaces the S3 backend's default host, for
	// S3-compatible providers, private endpoints, or local mocks. The OCI
	// and Azure backends do not read it and always use their default hosts.
	EndpointOverride string

	ConnectTimeout time.Duration
	UserAgent      string
	Log            *zap.Logger

	S3    *S3Config
	OCI   *OCIConfig
	Azure *AzureConfig
}

// S3Config configures the AWS S3 backend.
type S3Config struct {
	BucketName string
	Region     string

	// Profile/CredentialsFile/ConfigFile are not read by NewBucket. When
	// AccessKeyID or SecretAccessKey is empty, credentials come from
	// AmbientCreds: the environment, then the "default" profile of
	// ~/.aws/credentials or ./.aws/credentials; no named profile, config
	// file or web-identity token is consulted.
	Profile         string
	CredentialsFile string
	ConfigFile      string

	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// PathStyleAccess forces "https://s3.<region>.amazonaws.com/<bucket>"
	// instead of the virtual-hosted "https://<bucket>.s3.<region>...".
	PathStyleAccess bool
}

// OCIConfig configures the OCI Object Storage backend.
type OCIConfig struct {
	BucketName string
	Namespace  string

	ConfigFile string
	Profile    string

	KeyFile     string
	TenancyID   string
	UserID      string
	Fingerprint string
	Region      string
}

// AzureConfig configures the Azure Blob Storage backend. Set Key for
// Shared-Key auth, SASToken for SAS auth, or ConfigString to parse an Azure
// connection string carrying either.
type AzureConfig struct {
	ContainerName string
	Account       string
	Key           string
	SASToken      string

	EndpointSuffix   string
	EndpointProtocol string

	// ConfigString is a full "DefaultEndpointsProtocol=...;AccountName=...;
	// AccountKey=...;EndpointSuffix=..." connection string, as an
	// alternative to setting Account/Key/EndpointSuffix individually.
	ConfigString string
}

func (c Config) logger() *zap.Logger {
	if c.Log != nil {
		return c.Log
	}
	return zap.NewNop()
}

func (c Config) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return "objectfs/1.0"
}

func (c Config) transport() *http.Client {
	cfg := rest.DefaultTransportConfig(c.userAgent())
	if c.ConnectTimeout > 0 {
		cfg.Timeout = c.ConnectTimeout
	}
	return rest.NewClient(cfg)
}

// NewBucket constructs a *Bucket from cfg, dispatching to whichever one of
// S3/OCI/Azure is set.
func NewBucket(cfg Config) (*Bucket, error) {
	switch {
	case cfg.S3 != nil:
		return newS3Bucket(cfg, *cfg.S3)
	case cfg.OCI != nil:
		return newOCIBucket(cfg, *cfg.OCI)
	case cfg.Azure != nil:
		return newAzureBucket(cfg, *cfg.Azure)
	default:
		return nil, &ValidationError{Field: "Config", Message: "exactly one of S3, OCI or Azure must be set"}
	}
}

func newS3Bucket(cfg Config, sc S3Config) (*Bucket, error) {
	if sc.BucketName == "" {
		return nil, &ValidationError{Field: "S3.BucketName", Message: "must not be empty"}
	}

	accessKeyID, secretAccessKey, region, token := sc.AccessKeyID, sc.SecretAccessKey, sc.Region, sc.SessionToken
	if accessKeyID == "" || secretAccessKey == "" {
		id, secret, ambientRegion, ambientToken, err := awssigner.AmbientCreds(region)
		if err != nil {
			return nil, &ValidationError{Field: "S3", Message: fmt.Sprintf("no static credentials and ambient resolution failed: %v", err)}
		}
		accessKeyID, secretAccessKey, token = id, secret, ambientToken
		if region == "" {
			region = ambientRegion
		}
	}
	if region == "" {
		return nil, &ValidationError{Field: "S3.Region", Message: "must not be empty"}
	}

	baseURI := cfg.EndpointOverride
	if baseURI == "" && sc.PathStyleAccess {
		baseURI = "https://s3." + region + ".amazonaws.com"
	}
	key := awssigner.DeriveKey(baseURI, accessKeyID, secretAccessKey, region, "s3")
	key.SessionToken = token

	svc := rest.NewService(cfg.transport(), key)
	svc.Log = cfg.logger()

	client := &s3.Client{Service: svc, Bucket: sc.BucketName, Region: region, BaseURI: baseURI}
	return newBucket(client, cfg.PartSize), nil
}

func newOCIBucket(cfg Config, oc OCIConfig) (*Bucket, error) {
	if oc.BucketName == "" || oc.Namespace == "" {
		return nil, &ValidationError{Field: "OCI", Message: "BucketName and Namespace must not be empty"}
	}
	if oc.TenancyID == "" || oc.UserID == "" || oc.Fingerprint == "" || oc.KeyFile == "" {
		return nil, &ValidationError{Field: "OCI", Message: "TenancyID, UserID, Fingerprint and KeyFile are required"}
	}

	pemBytes, err := os.ReadFile(oc.KeyFile)
	if err != nil {
		return nil, &ValidationError{Field: "OCI.KeyFile", Message: err.Error()}
	}
	privateKey, err := ocisigner.LoadPrivateKeyPEM(pemBytes)
	if err != nil {
		return nil, &ValidationError{Field: "OCI.KeyFile", Message: err.Error()}
	}

	s := &ocisigner.Signer{Tenancy: oc.TenancyID, User: oc.UserID, Fingerprint: oc.Fingerprint, PrivateKey: privateKey}
	svc := rest.NewService(cfg.transport(), s)
	svc.Log = cfg.logger()

	client := &oci.Client{Service: svc, Region: oc.Region, Namespace: oc.Namespace, Bucket: oc.BucketName}
	return newBucket(client, cfg.PartSize), nil
}

func newAzureBucket(cfg Config, ac AzureConfig) (*Bucket, error) {
	if ac.ConfigString != "" {
		parsed := ParseAzureConnectionString(ac.ConfigString)
		if ac.Account == "" {
			ac.Account = parsed["AccountName"]
		}
		if ac.Key == "" {
			ac.Key = parsed["AccountKey"]
		}
		if ac.SASToken == "" {
			ac.SASToken = parsed["SharedAccessSignature"]
		}
		if ac.EndpointSuffix == "" {
			ac.EndpointSuffix = parsed["EndpointSuffix"]
		}
		if ac.EndpointProtocol == "" {
			ac.EndpointProtocol = parsed["DefaultEndpointsProtocol"]
		}
	}
	if ac.Account == "" {
		ac.Account = os.Getenv("AZURE_STORAGE_ACCOUNT")
	}
	if ac.Key == "" {
		ac.Key = os.Getenv("AZURE_STORAGE_KEY")
	}
	if ac.SASToken == "" {
		ac.SASToken = os.Getenv("AZURE_STORAGE_SAS_TOKEN")
	}
	if ac.ContainerName == "" {
		return nil, &ValidationError{Field: "Azure.ContainerName", Message: "must not be empty"}
	}
	if ac.Account == "" {
		return nil, &ValidationError{Field: "Azure.Account", Message: "must not be empty"}
	}

	signerImpl := &azuresigner.Signer{Account: ac.Account}
	switch {
	case ac.SASToken != "":
		sas, err := azuresigner.ParseSAS(ac.SASToken)
		if err != nil {
			return nil, &ValidationError{Field: "Azure.SASToken", Message: err.Error()}
		}
		if err := azuresigner.ValidatePermissions(sas, true, true); err != nil {
			return nil, &ValidationError{Field: "Azure.SASToken", Message: err.Error()}
		}
		signerImpl.SASToken = ac.SASToken
	case ac.Key != "":
		decoded, err := base64.StdEncoding.DecodeString(ac.Key)
		if err != nil {
			return nil, &ValidationError{Field: "Azure.Key", Message: "not valid base64: " + err.Error()}
		}
		signerImpl.SharedKey = decoded
	default:
		return nil, &ValidationError{Field: "Azure", Message: "one of Key or SASToken must be set"}
	}

	svc := rest.NewService(cfg.transport(), signerImpl)
	svc.Log = cfg.logger()

	client := &azureblob.Client{Service: svc, Account: ac.Account, Container: ac.ContainerName}
	return newBucket(client, cfg.PartSize), nil
}

// ParseAzureConnectionString splits an Azure Storage connection string
// ("Key1=Value1;Key2=Value2;...") into a map, the minimal amount of parsing
// needed to pull AccountName/AccountKey/EndpointSuffix out of it.
func ParseAzureConnectionString(s string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		out[kv[0]] = kv[1]
	}
	return out
}

// ParseURI splits a bucket/object URI of the form "s3://bucket/key",
// "oci+os://namespace/bucket/key", "azure://account/container/key", or
// "http(s)://host/path" into its scheme and remaining path segments
// (spec.md §6's "bucket URL syntax").
func ParseURI(raw string) (scheme string, segments []string, err error) {
	idx := strings.Index(raw, "://")
	if idx < 0 {
		return "", nil, &ParseError{Context: raw, Message: "missing scheme"}
	}
	scheme = raw[:idx]
	remainder := strings.TrimPrefix(raw[idx+3:], "/")
	if remainder == "" {
		return scheme, nil, nil
	}
	return scheme, strings.Split(remainder, "/"), nil
}
