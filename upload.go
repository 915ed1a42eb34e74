package haven

import (
	"context"
	"errors"
	"time"

	"github.com/havenstore/haven-go/internal/blobstore"
	"github.com/havenstore/haven-go/internal/credential"
	"github.com/havenstore/haven-go/internal/errx"
	"github.com/havenstore/haven-go/internal/filex"
	"github.com/havenstore/haven-go/internal/ledger"
	"github.com/havenstore/haven-go/internal/sealbox"
)

// Upload stores a file: bytes go to the blob store, the owning record goes
// to the ledger. With encryption enabled and a policy supplied, the
// encrypted saga runs instead (see uploadEncrypted).
//
// Ownership of the registered asset is attributed by the ledger from the
// actual transaction signer. The self-paid registration never carries a
// sender or credential argument, so a self-paying caller cannot register
// assets under another identity.
func (c *Client) Upload(ctx context.Context, file File, opts *UploadOptions) (*UploadResult, error) {
	if opts == nil {
		opts = &UploadOptions{}
	}

	rec, err := c.validate(ctx, credential.PermUpload)
	if err != nil {
		return nil, err
	}

	norm, err := filex.Normalize(filex.Input{
		Path:        file.Path,
		Data:        file.Data,
		Reader:      file.Reader,
		Name:        file.Name,
		ContentType: file.ContentType,
	})
	if err != nil {
		return nil, &errx.ValidationError{Msg: "invalid upload input", Cause: err}
	}

	if c.cfg.EncryptionEnabled && opts.Policy != nil {
		return c.uploadEncrypted(ctx, rec, norm, opts)
	}
	return c.uploadPlain(ctx, rec, norm, opts)
}

func (c *Client) uploadPlain(ctx context.Context, rec *credential.Record, norm *filex.Normalized, opts *UploadOptions) (*UploadResult, error) {
	blobID, err := c.blobs.Put(ctx, norm.Data, blobstore.PutOptions{
		Epochs:      opts.Epochs,
		ContentType: norm.ContentType,
	})
	if err != nil {
		return nil, err
	}
	c.log.Debug(ctx, "blob uploaded", "blobId", blobID, "size", len(norm.Data))

	res, err := c.registerAsset(ctx, rec, blobID, norm, opts, false)
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		AssetID:     res.CreatedID,
		BlobID:      blobID,
		URL:         c.blobURL(blobID),
		Size:        int64(len(norm.Data)),
		ContentType: norm.ContentType,
		Encrypted:   false,
		CreatedAt:   time.Now().UnixMilli(),
	}, nil
}

// uploadEncrypted runs the six-step encrypted saga. The ordering is fixed by
// the encryption service: a policy must reference an existing asset, and
// data is encrypted under a policy that already exists on-ledger. Steps that
// committed on a collaborator are not rolled back; a failure after asset
// registration surfaces the asset and blob ids so the caller can remediate.
func (c *Client) uploadEncrypted(ctx context.Context, rec *credential.Record, norm *filex.Normalized, opts *UploadOptions) (*UploadResult, error) {
	// (1) provisional plaintext blob
	provisionalID, err := c.blobs.Put(ctx, norm.Data, blobstore.PutOptions{
		Epochs:      opts.Epochs,
		ContentType: norm.ContentType,
	})
	if err != nil {
		return nil, err
	}

	// (2) register the asset against the provisional reference
	regRes, err := c.registerAsset(ctx, rec, provisionalID, norm, opts, false)
	if err != nil {
		return nil, err
	}
	assetID := regRes.CreatedID

	// (3) create the policy bound to the asset
	pol := opts.Policy
	policyCall := c.auth.call(c.dep.PackageID, ledger.PolicyModule, ledger.FnCreatePolicy, []any{
		assetID,
		string(pol.Kind),
		pol.Allowlist,
		pol.ExpiresAt,
		hashedPolicyPassword(pol),
		ledger.ClockObjectID,
	}, rec.ID)
	polRes, err := c.create(ctx, policyCall, ledger.TypePolicy)
	if err != nil {
		return nil, sagaContext(err, assetID, provisionalID)
	}
	policyID := polRes.CreatedID

	// (4) apply the policy reference to the asset
	applyCall := c.auth.call(c.dep.PackageID, ledger.VaultModule, ledger.FnApplyPolicy, []any{
		assetID, policyID, ledger.ClockObjectID,
	}, rec.ID)
	if _, err := c.mutate(ctx, applyCall); err != nil {
		return nil, sagaContext(err, assetID, provisionalID)
	}

	// (5) encrypt under the now-live policy
	threshold := pol.Threshold
	if threshold <= 0 {
		threshold = sealbox.DefaultThreshold
	}
	ciphertext, err := c.seal.Encrypt(ctx, norm.Data, policyID, threshold)
	if err != nil {
		return nil, sagaContext(err, assetID, provisionalID)
	}

	// (6) upload the ciphertext and swap the asset's blob reference
	finalID, err := c.blobs.Put(ctx, ciphertext, blobstore.PutOptions{
		Epochs:      opts.Epochs,
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return nil, sagaContext(err, assetID, provisionalID)
	}

	swapCall := c.auth.call(c.dep.PackageID, ledger.VaultModule, ledger.FnUpdateAsset, []any{
		assetID,
		map[string]any{"blobId": finalID, "encrypted": true},
		ledger.ClockObjectID,
	}, rec.ID)
	if _, err := c.mutate(ctx, swapCall); err != nil {
		return nil, sagaContext(err, assetID, finalID)
	}
	c.assets.Delete(assetID)

	// the plaintext blob is no longer referenced; best effort only
	if err := c.blobs.Delete(ctx, provisionalID); err != nil {
		c.log.Warn(ctx, "could not delete provisional plaintext blob", "blobId", provisionalID, "err", err)
	}

	return &UploadResult{
		AssetID:     assetID,
		BlobID:      finalID,
		URL:         c.blobURL(finalID),
		Size:        int64(len(norm.Data)),
		ContentType: norm.ContentType,
		Encrypted:   true,
		PolicyID:    policyID,
		CreatedAt:   time.Now().UnixMilli(),
	}, nil
}

func (c *Client) registerAsset(ctx context.Context, rec *credential.Record, blobID string, norm *filex.Normalized, opts *UploadOptions, encrypted bool) (*ledger.TxResult, error) {
	call := c.auth.call(c.dep.PackageID, ledger.VaultModule, ledger.FnRegisterAsset, []any{
		blobID,
		norm.Name,
		norm.ContentType,
		len(norm.Data),
		opts.Tags,
		opts.Description,
		opts.Category,
		norm.Width,
		norm.Height,
		opts.FolderID,
		encrypted,
		ledger.ClockObjectID,
	}, rec.ID)

	res, err := c.create(ctx, call, ledger.TypeAsset)
	if err != nil {
		var be *errx.BlockchainError
		if errors.As(err, &be) {
			be.BlobID = blobID
		}
		return nil, err
	}
	return res, nil
}

// sagaContext stamps the already-committed asset and blob ids onto a
// partial-saga failure so it stays remediable.
func sagaContext(err error, assetID, blobID string) error {
	var be *errx.BlockchainError
	if errors.As(err, &be) {
		be.AssetID = assetID
		be.BlobID = blobID
		return err
	}
	var ee *errx.EncryptionError
	if errors.As(err, &ee) {
		ee.AssetID = assetID
		ee.BlobID = blobID
		return err
	}
	var ne *errx.NetworkError
	if errors.As(err, &ne) {
		return &errx.BlockchainError{Msg: "encrypted upload left asset with plaintext blob", AssetID: assetID, BlobID: blobID, Cause: err}
	}
	return err
}

func hashedPolicyPassword(pol *PolicyOptions) string {
	if pol.Kind != PolicyPassword || pol.Password == "" {
		return ""
	}
	return hashPassword(pol.Password)
}
