package haven

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	require.Equal(t, NetworkTestnet, cfg.Network)
	require.Equal(t, GasSponsored, cfg.GasStrategy)
	require.Equal(t, BlobBackendHTTP, cfg.BlobBackend)
	require.Equal(t, uint64(50_000_000), cfg.GasBudget)
	require.Equal(t, 5*time.Minute, cfg.AssetCacheTTL)
	require.Equal(t, time.Hour, cfg.CredentialCacheTTL)
}

func TestFromJSONOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"credential": "hvn_abc",
		"network": "mainnet",
		"encryption_enabled": true,
		"gas_strategy": "self-pay",
		"sender_address": "0xwallet",
		"endpoints": {"ledger_endpoint": "https://rpc.example.com"},
		"gas_budget": 123,
		"asset_cache_ttl_seconds": 60
	}`), 0o600))

	cfg, err := FromJSON(path)
	require.NoError(t, err)

	require.Equal(t, "hvn_abc", cfg.Credential)
	require.Equal(t, NetworkMainnet, cfg.Network)
	require.True(t, cfg.EncryptionEnabled)
	require.Equal(t, GasSelfPay, cfg.GasStrategy)
	require.Equal(t, "0xwallet", cfg.SenderAddress)
	require.Equal(t, "https://rpc.example.com", cfg.Endpoints.LedgerEndpoint)
	require.Equal(t, uint64(123), cfg.GasBudget)
	require.Equal(t, time.Minute, cfg.AssetCacheTTL)
	// untouched fields keep their defaults
	require.Equal(t, BlobBackendHTTP, cfg.BlobBackend)
	require.Equal(t, time.Hour, cfg.CredentialCacheTTL)
}

func TestFromJSONMissingFile(t *testing.T) {
	_, err := FromJSON(filepath.Join(t.TempDir(), "nope.json"))
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
}

func TestFromJSONMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := FromJSON(path)
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
}

func TestResolveDeploymentOverrides(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.Endpoints.BlobEndpoint = "https://blobs.example.com"

	dep, err := cfg.resolveDeployment()
	require.NoError(t, err)
	require.Equal(t, "https://blobs.example.com", dep.BlobEndpoint)
	require.Equal(t, builtinDeployments[NetworkTestnet].LedgerEndpoint, dep.LedgerEndpoint)
	require.Equal(t, builtinDeployments[NetworkTestnet].PackageID, dep.PackageID)
}

func TestResolveDeploymentLocal(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.Network = NetworkLocal

	_, err := cfg.resolveDeployment()
	require.Error(t, err)

	cfg.Endpoints = Deployment{
		LedgerEndpoint: "http://127.0.0.1:9000",
		BlobEndpoint:   "http://127.0.0.1:9001",
		SealEndpoint:   "http://127.0.0.1:9002",
		PackageID:      "0x1",
	}
	dep, err := cfg.resolveDeployment()
	require.NoError(t, err)
	require.Equal(t, "0x1", dep.PackageID)
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash := hashPassword("hunter2")
	require.NotContains(t, hash, "hunter2")

	require.True(t, verifyPassword("hunter2", hash))
	require.False(t, verifyPassword("wrong", hash))
	require.False(t, verifyPassword("hunter2", "not-a-hash"))
	require.False(t, verifyPassword("hunter2", "argon2id$zz$zz"))

	// salted: two hashes of the same password differ
	require.NotEqual(t, hash, hashPassword("hunter2"))
}
