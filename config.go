// Package haven is a client SDK for storing, encrypting, sharing, and
// organizing binary assets whose durable records live on three independent
// external systems: an ownership-tracking ledger, a content-addressed blob
// store, and a threshold encryption service. The SDK coordinates multi-step
// sagas across these collaborators; it holds no durable state of its own.
package haven

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/havenstore/haven-go/internal/blobstore"
	"github.com/havenstore/haven-go/internal/errx"
	"github.com/havenstore/haven-go/internal/ledger"
	"github.com/havenstore/haven-go/internal/logging"
)

// Network selects a deployment of the ledger, blob store, and encryption
// service.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
	NetworkLocal   Network = "local"
)

// Deployment holds the endpoints and the on-ledger vault package of one
// network. Zero fields fall back to the built-in deployment for the selected
// network.
type Deployment struct {
	LedgerEndpoint string `json:"ledger_endpoint"`
	BlobEndpoint   string `json:"blob_endpoint"`
	SealEndpoint   string `json:"seal_endpoint"`
	PackageID      string `json:"package_id"`
}

var builtinDeployments = map[Network]Deployment{
	NetworkMainnet: {
		LedgerEndpoint: "https://rpc.mainnet.havenstore.io",
		BlobEndpoint:   "https://blobs.mainnet.havenstore.io",
		SealEndpoint:   "https://seal.mainnet.havenstore.io",
		PackageID:      "0x8c2e5f4a9d1b7c3e6f0a2d5b8e1c4f7a0d3b6e9c2f5a8d1b4e7c0f3a6d9b2e5c",
	},
	NetworkTestnet: {
		LedgerEndpoint: "https://rpc.testnet.havenstore.io",
		BlobEndpoint:   "https://blobs.testnet.havenstore.io",
		SealEndpoint:   "https://seal.testnet.havenstore.io",
		PackageID:      "0x3f7a1d4b8e2c5f9a0d6b3e7c1f4a8d2b5e9c0f6a3d7b1e4c8f2a5d9b0e6c3f7a",
	},
}

// GasStrategy selects who signs and pays for ledger mutations.
type GasStrategy string

const (
	// GasSponsored: a developer-held signer sponsors every mutation.
	GasSponsored GasStrategy = "sponsored"
	// GasSelfPay: the invoking wallet signs and pays via an externally
	// supplied sign-and-submit function.
	GasSelfPay GasStrategy = "self-pay"
)

// TransactionResponse is the raw outcome of a submitted transaction, as
// returned by an external sign-and-submit function. Effects and
// ObjectChanges may be incomplete when ledger indexing lags submission; the
// SDK reconciles that internally.
type TransactionResponse = ledger.TxResponse

// TransactionEffects and ObjectChange are the response sections an external
// wallet may populate.
type (
	TransactionEffects = ledger.Effects
	ObjectChange       = ledger.ObjectChange
)

// SignAndSubmitFunc signs and submits transaction bytes on behalf of the
// invoking wallet. The SDK never retries it on rejection-style failures;
// retry policy for connectivity failures belongs to the caller.
type SignAndSubmitFunc func(ctx context.Context, txBytes []byte) (*TransactionResponse, error)

// BlobBackend selects where raw bytes are stored.
type BlobBackend string

const (
	BlobBackendHTTP BlobBackend = "http"
	BlobBackendS3   BlobBackend = "s3"
)

const (
	defaultGasBudget     = 50_000_000
	defaultAssetCacheTTL = 5 * time.Minute
	defaultAssetCacheCap = 4096
	defaultCredCacheTTL  = time.Hour
	defaultCredCacheCap  = 1024
)

// Config holds construction-time settings for a Client.
type Config struct {
	// Credential is the presented API secret validated against the ledger.
	Credential string

	Network Network

	// EncryptionEnabled gates the encrypted-upload saga; uploads supply a
	// policy per call.
	EncryptionEnabled bool

	// GasStrategy plus its required material. Sponsored requires SponsorKey
	// (hex ed25519 seed); self-pay requires SignAndSubmit and SenderAddress.
	GasStrategy   GasStrategy
	SponsorKey    string
	SignAndSubmit SignAndSubmitFunc
	SenderAddress string

	// Endpoints overrides fields of the built-in deployment. Required in
	// full for NetworkLocal.
	Endpoints Deployment

	BlobBackend BlobBackend
	S3          blobstore.S3Config

	GasBudget uint64

	AssetCacheTTL      time.Duration
	AssetCacheCapacity int64
	CredentialCacheTTL time.Duration
	CredentialCacheCap int64

	Logger logging.Logger
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Network = NetworkTestnet
	c.GasStrategy = GasSponsored
	c.BlobBackend = BlobBackendHTTP
	c.GasBudget = defaultGasBudget
	c.AssetCacheTTL = defaultAssetCacheTTL
	c.AssetCacheCapacity = defaultAssetCacheCap
	c.CredentialCacheTTL = defaultCredCacheTTL
	c.CredentialCacheCap = defaultCredCacheCap
}

// jsonConfig is a DTO used exclusively for JSON unmarshalling. Durations are
// given in seconds.
type jsonConfig struct {
	Credential           string     `json:"credential"`
	Network              string     `json:"network"`
	EncryptionEnabled    bool       `json:"encryption_enabled"`
	GasStrategy          string     `json:"gas_strategy"`
	SponsorKey           string     `json:"sponsor_key"`
	SenderAddress        string     `json:"sender_address"`
	Endpoints            Deployment `json:"endpoints"`
	BlobBackend          string     `json:"blob_backend"`
	GasBudget            uint64     `json:"gas_budget"`
	AssetCacheTTLSeconds int        `json:"asset_cache_ttl_seconds"`
	CredentialTTLSeconds int        `json:"credential_cache_ttl_seconds"`
}

// FromJSON constructs a Config from defaults overlaid with values from a
// JSON file. A sign-and-submit function cannot come from JSON; set it on the
// returned Config before constructing a Client.
func FromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errx.ConfigurationError{Msg: "read config file", Cause: err}
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return nil, &errx.ConfigurationError{Msg: "parse config file", Cause: err}
	}

	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.Credential = jc.Credential
	if jc.Network != "" {
		cfg.Network = Network(jc.Network)
	}
	cfg.EncryptionEnabled = jc.EncryptionEnabled
	if jc.GasStrategy != "" {
		cfg.GasStrategy = GasStrategy(jc.GasStrategy)
	}
	cfg.SponsorKey = jc.SponsorKey
	cfg.SenderAddress = jc.SenderAddress
	cfg.Endpoints = jc.Endpoints
	if jc.BlobBackend != "" {
		cfg.BlobBackend = BlobBackend(jc.BlobBackend)
	}
	if jc.GasBudget != 0 {
		cfg.GasBudget = jc.GasBudget
	}
	if jc.AssetCacheTTLSeconds > 0 {
		cfg.AssetCacheTTL = time.Duration(jc.AssetCacheTTLSeconds) * time.Second
	}
	if jc.CredentialTTLSeconds > 0 {
		cfg.CredentialCacheTTL = time.Duration(jc.CredentialTTLSeconds) * time.Second
	}
	return cfg, nil
}

// resolveDeployment merges endpoint overrides over the built-in deployment
// for the configured network.
func (c *Config) resolveDeployment() (Deployment, error) {
	dep, ok := builtinDeployments[c.Network]
	if !ok && c.Network != NetworkLocal {
		return Deployment{}, errx.Configurationf("unknown network %q", c.Network)
	}
	if c.Endpoints.LedgerEndpoint != "" {
		dep.LedgerEndpoint = c.Endpoints.LedgerEndpoint
	}
	if c.Endpoints.BlobEndpoint != "" {
		dep.BlobEndpoint = c.Endpoints.BlobEndpoint
	}
	if c.Endpoints.SealEndpoint != "" {
		dep.SealEndpoint = c.Endpoints.SealEndpoint
	}
	if c.Endpoints.PackageID != "" {
		dep.PackageID = c.Endpoints.PackageID
	}
	if dep.LedgerEndpoint == "" || dep.PackageID == "" {
		return Deployment{}, errx.Configurationf("network %q has no deployment: ledger endpoint and package id are required", c.Network)
	}
	return dep, nil
}
