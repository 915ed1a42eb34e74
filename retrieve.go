package haven

import (
	"context"
	"strings"

	"github.com/havenstore/haven-go/internal/credential"
	"github.com/havenstore/haven-go/internal/errx"
	"github.com/havenstore/haven-go/internal/ledger"
)

// Retrieve fetches an asset's bytes. When the asset carries a policy
// reference, decryption runs by default and requires a session credential;
// set opts.Decrypt to false to receive the ciphertext as stored.
func (c *Client) Retrieve(ctx context.Context, assetID string, opts *RetrieveOptions) (*RetrieveResult, error) {
	if opts == nil {
		opts = &RetrieveOptions{}
	}

	if _, err := c.validate(ctx, credential.PermRead); err != nil {
		return nil, err
	}

	asset, err := c.getAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}

	data, err := c.fetchBlob(ctx, asset.BlobID)
	if err != nil {
		return nil, err
	}

	decrypt := asset.PolicyID != ""
	if opts.Decrypt != nil {
		decrypt = *opts.Decrypt && asset.PolicyID != ""
	}
	if !decrypt {
		return &RetrieveResult{Data: data, Asset: asset}, nil
	}

	if opts.Session == "" {
		return nil, errx.Validationf("asset %s is encrypted: a session credential is required to decrypt", assetID)
	}

	approveTx, err := (&ledger.Transaction{Calls: []ledger.Call{{
		Package:  c.dep.PackageID,
		Module:   ledger.PolicyModule,
		Function: ledger.FnApproveSeal,
		Args:     []any{asset.PolicyID, ledger.ClockObjectID},
	}}}).Encode()
	if err != nil {
		return nil, &errx.EncryptionError{Msg: "build approve transaction", AssetID: assetID, Cause: err}
	}

	plaintext, err := c.seal.Decrypt(ctx, data, asset.PolicyID, opts.Session, approveTx)
	if err != nil {
		return nil, err
	}
	return &RetrieveResult{Data: plaintext, Asset: asset, Decrypted: true}, nil
}

// fetchBlob routes ledger-identifier-shaped keys through the by-object-id
// variant.
func (c *Client) fetchBlob(ctx context.Context, blobID string) ([]byte, error) {
	if strings.HasPrefix(blobID, "0x") {
		return c.blobs.GetByObjectID(ctx, blobID)
	}
	return c.blobs.Get(ctx, blobID)
}

// GetAsset returns asset metadata, cache-first. Within the cache TTL,
// repeated calls return the cached record without a ledger query; any
// mutation on the id invalidates the entry.
func (c *Client) GetAsset(ctx context.Context, assetID string) (*Asset, error) {
	if _, err := c.validate(ctx, credential.PermRead); err != nil {
		return nil, err
	}
	return c.getAsset(ctx, assetID)
}

// ListAssets pages over the caller's assets. Fetched records populate the
// asset cache.
func (c *Client) ListAssets(ctx context.Context, opts *ListOptions) (*AssetPage, error) {
	if opts == nil {
		opts = &ListOptions{}
	}
	if _, err := c.validate(ctx, credential.PermRead); err != nil {
		return nil, err
	}

	page, err := c.ledger.GetOwnedObjects(ctx, ledger.OwnedQuery{
		Owner:  c.auth.address,
		Type:   c.typeOf(ledger.TypeAsset),
		Cursor: opts.Cursor,
		Limit:  opts.Limit,
	})
	if err != nil {
		return nil, &errx.BlockchainError{Msg: "asset listing failed", Cause: err}
	}

	out := &AssetPage{NextCursor: page.NextCursor, HasNextPage: page.HasNextPage}
	for i := range page.Data {
		asset, err := assetFromObject(&page.Data[i])
		if err != nil {
			c.log.Warn(ctx, "skipping malformed asset record", "objectId", page.Data[i].ID, "err", err)
			continue
		}
		if opts.FolderID != "" && asset.FolderID != opts.FolderID {
			continue
		}
		c.assets.Add(asset.ID, asset)
		out.Assets = append(out.Assets, asset)
	}
	return out, nil
}

// GetStorageInfo aggregates count and size over every asset the caller owns.
func (c *Client) GetStorageInfo(ctx context.Context) (*StorageInfo, error) {
	if _, err := c.validate(ctx, credential.PermRead); err != nil {
		return nil, err
	}

	info := &StorageInfo{}
	cursor := ""
	for {
		page, err := c.ledger.GetOwnedObjects(ctx, ledger.OwnedQuery{
			Owner:  c.auth.address,
			Type:   c.typeOf(ledger.TypeAsset),
			Cursor: cursor,
		})
		if err != nil {
			return nil, &errx.BlockchainError{Msg: "asset listing failed", Cause: err}
		}
		for i := range page.Data {
			asset, err := assetFromObject(&page.Data[i])
			if err != nil {
				continue
			}
			info.AssetCount++
			info.TotalSize += asset.Size
		}
		if !page.HasNextPage || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	return info, nil
}

// FindInconsistentAssets is a read-only sweep over the caller's assets
// returning those left behind by a partially failed encrypted upload: a
// policy reference is applied but the blob was never swapped to ciphertext.
// The caller decides whether to delete, re-encrypt, or keep them.
func (c *Client) FindInconsistentAssets(ctx context.Context) ([]*Asset, error) {
	if _, err := c.validate(ctx, credential.PermRead); err != nil {
		return nil, err
	}

	var out []*Asset
	cursor := ""
	for {
		page, err := c.ledger.GetOwnedObjects(ctx, ledger.OwnedQuery{
			Owner:  c.auth.address,
			Type:   c.typeOf(ledger.TypeAsset),
			Cursor: cursor,
		})
		if err != nil {
			return nil, &errx.BlockchainError{Msg: "asset listing failed", Cause: err}
		}
		for i := range page.Data {
			asset, err := assetFromObject(&page.Data[i])
			if err != nil {
				continue
			}
			if asset.PolicyID != "" && !asset.Encrypted {
				out = append(out, asset)
			}
		}
		if !page.HasNextPage || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	return out, nil
}
