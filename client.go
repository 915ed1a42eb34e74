package haven

import (
	"context"
	"errors"

	"github.com/havenstore/haven-go/internal/blobstore"
	"github.com/havenstore/haven-go/internal/cache"
	"github.com/havenstore/haven-go/internal/credential"
	"github.com/havenstore/haven-go/internal/errx"
	"github.com/havenstore/haven-go/internal/ledger"
	"github.com/havenstore/haven-go/internal/logging"
	"github.com/havenstore/haven-go/internal/sealbox"
)

type ledgerAPI interface {
	GetObject(ctx context.Context, id string) (*ledger.Object, error)
	GetOwnedObjects(ctx context.Context, q ledger.OwnedQuery) (*ledger.ObjectsPage, error)
	QueryEvents(ctx context.Context, q ledger.EventQuery) (*ledger.EventsPage, error)
	ExecuteTransaction(ctx context.Context, txBytes, signature []byte, opts ledger.TxOptions) (*ledger.TxResponse, error)
	GetTransaction(ctx context.Context, digest string, opts ledger.TxOptions) (*ledger.TxResponse, error)
}

type sealAPI interface {
	Encrypt(ctx context.Context, data []byte, policyID string, threshold int) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte, policyID, session string, approveTx []byte) ([]byte, error)
}

type credentialValidator interface {
	Validate(ctx context.Context, secret, scope string) (*credential.Record, error)
}

// Client is the asset lifecycle orchestrator. Every public operation
// validates the configured credential, resolves through the authorization
// path fixed at construction, and sequences its collaborator calls through
// the transaction reconciler.
type Client struct {
	cfg    *Config
	dep    Deployment
	ledger ledgerAPI
	blobs  blobstore.Store
	seal   sealAPI
	creds  credentialValidator
	recon  *ledger.Reconciler
	assets *cache.Cache[*Asset]
	auth   authPath
	log    logging.Logger
}

// NewClient wires a Client against the configured network. The gas strategy
// is resolved here, once; an unsatisfiable strategy fails closed with a
// ConfigurationError.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errx.Configurationf("config is required")
	}
	log := cfg.Logger
	if log == nil {
		log = logging.NewNop()
	}

	dep, err := cfg.resolveDeployment()
	if err != nil {
		return nil, err
	}

	lc := ledger.NewClient(dep.LedgerEndpoint, log)

	auth, err := resolveAuthPath(cfg, lc)
	if err != nil {
		return nil, err
	}

	var blobs blobstore.Store
	switch cfg.BlobBackend {
	case BlobBackendHTTP, "":
		if dep.BlobEndpoint == "" {
			return nil, errx.Configurationf("network %q has no blob store endpoint", cfg.Network)
		}
		blobs = blobstore.NewHTTPStore(dep.BlobEndpoint, log)
	case BlobBackendS3:
		if cfg.S3.Bucket == "" {
			return nil, errx.Configurationf("s3 blob backend requires a bucket")
		}
		blobs, err = blobstore.NewS3Store(ctx, cfg.S3, log)
		if err != nil {
			return nil, &errx.ConfigurationError{Msg: "s3 blob backend", Cause: err}
		}
	default:
		return nil, errx.Configurationf("unknown blob backend %q", cfg.BlobBackend)
	}

	creds, err := credential.NewValidator(lc, dep.PackageID, cfg.CredentialCacheTTL, cfg.CredentialCacheCap, log)
	if err != nil {
		return nil, &errx.ConfigurationError{Msg: "credential cache", Cause: err}
	}

	assets, err := cache.New[*Asset](cfg.AssetCacheCapacity, cfg.AssetCacheTTL)
	if err != nil {
		return nil, &errx.ConfigurationError{Msg: "asset cache", Cause: err}
	}

	return &Client{
		cfg:    cfg,
		dep:    dep,
		ledger: lc,
		blobs:  blobs,
		seal:   sealbox.NewClient(dep.SealEndpoint, log),
		creds:  creds,
		recon:  ledger.NewReconciler(lc, log),
		assets: assets,
		auth:   auth,
		log:    log,
	}, nil
}

// Address returns the address ownership is attributed to under the active
// authorization path.
func (c *Client) Address() string { return c.auth.address }

// validate resolves the configured credential and checks one capability.
func (c *Client) validate(ctx context.Context, perm credential.Permission) (*credential.Record, error) {
	rec, err := c.creds.Validate(ctx, c.cfg.Credential, string(c.cfg.Network))
	if err != nil {
		return nil, err
	}
	if err := credential.Require(rec, perm); err != nil {
		return nil, err
	}
	return rec, nil
}

func (c *Client) typeOf(fragment string) string {
	return c.dep.PackageID + "::" + fragment
}

// getAsset is cache-first; a miss fetches from the ledger and populates the
// cache.
func (c *Client) getAsset(ctx context.Context, id string) (*Asset, error) {
	a, _, err := c.assets.GetOrLoad(id, func() (*Asset, error) {
		obj, err := c.ledger.GetObject(ctx, id)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return nil, errx.Validationf("asset %s not found", id)
			}
			return nil, &errx.BlockchainError{Msg: "asset lookup failed", AssetID: id, Cause: err}
		}
		asset, err := assetFromObject(obj)
		if err != nil {
			return nil, &errx.BlockchainError{Msg: "malformed asset record", AssetID: id, Cause: err}
		}
		return asset, nil
	})
	return a, err
}

// mutate submits one entry-point call and verifies it committed.
func (c *Client) mutate(ctx context.Context, call ledger.Call) (*ledger.TxResult, error) {
	txBytes, err := c.auth.transaction(call, c.cfg.GasBudget).Encode()
	if err != nil {
		return nil, &errx.BlockchainError{Msg: "build transaction", Cause: err}
	}
	return c.recon.Submit(ctx, txBytes, c.auth.submit)
}

// create submits one entry-point call and returns the created object id,
// re-querying through the reconciler when indexing lags.
func (c *Client) create(ctx context.Context, call ledger.Call, typeHint string) (*ledger.TxResult, error) {
	txBytes, err := c.auth.transaction(call, c.cfg.GasBudget).Encode()
	if err != nil {
		return nil, &errx.BlockchainError{Msg: "build transaction", Cause: err}
	}
	return c.recon.SubmitExpectCreated(ctx, txBytes, c.auth.submit, typeHint)
}

func (c *Client) blobURL(blobID string) string {
	if c.dep.BlobEndpoint == "" {
		return ""
	}
	return c.dep.BlobEndpoint + "/v1/blobs/" + blobID
}
