package haven

import (
	"context"

	"github.com/havenstore/haven-go/internal/credential"
	"github.com/havenstore/haven-go/internal/errx"
	"github.com/havenstore/haven-go/internal/ledger"
)

// Rename changes an asset's display name.
func (c *Client) Rename(ctx context.Context, assetID, newName string) error {
	if newName == "" {
		return errx.Validationf("new name is required")
	}
	rec, err := c.validate(ctx, credential.PermTransform)
	if err != nil {
		return err
	}

	call := c.auth.call(c.dep.PackageID, ledger.VaultModule, ledger.FnRenameAsset, []any{
		assetID, newName, ledger.ClockObjectID,
	}, rec.ID)
	if _, err := c.mutate(ctx, call); err != nil {
		return err
	}
	c.assets.Delete(assetID)
	return nil
}

// Copy duplicates an asset record. The copy shares the original's blob
// reference; the ledger assigns the new identifier.
func (c *Client) Copy(ctx context.Context, assetID string) (string, error) {
	rec, err := c.validate(ctx, credential.PermTransform)
	if err != nil {
		return "", err
	}

	call := c.auth.call(c.dep.PackageID, ledger.VaultModule, ledger.FnCopyAsset, []any{
		assetID, ledger.ClockObjectID,
	}, rec.ID)
	res, err := c.create(ctx, call, ledger.TypeAsset)
	if err != nil {
		return "", err
	}
	return res.CreatedID, nil
}

// UpdateOptions carries the mutable metadata fields. Nil pointers leave the
// field unchanged.
type UpdateOptions struct {
	Description *string
	Tags        *[]string
	Category    *string
}

// UpdateAssetMetadata patches description, tags, and category.
func (c *Client) UpdateAssetMetadata(ctx context.Context, assetID string, opts UpdateOptions) error {
	rec, err := c.validate(ctx, credential.PermTransform)
	if err != nil {
		return err
	}

	patch := map[string]any{}
	if opts.Description != nil {
		patch["description"] = *opts.Description
	}
	if opts.Tags != nil {
		patch["tags"] = *opts.Tags
	}
	if opts.Category != nil {
		patch["category"] = *opts.Category
	}
	if len(patch) == 0 {
		return errx.Validationf("no metadata fields to update")
	}

	call := c.auth.call(c.dep.PackageID, ledger.VaultModule, ledger.FnUpdateAsset, []any{
		assetID, patch, ledger.ClockObjectID,
	}, rec.ID)
	if _, err := c.mutate(ctx, call); err != nil {
		return err
	}
	c.assets.Delete(assetID)
	return nil
}

// MoveToFolder moves an asset into a folder, or out of any folder when
// folderID is empty.
func (c *Client) MoveToFolder(ctx context.Context, assetID, folderID string) error {
	rec, err := c.validate(ctx, credential.PermTransform)
	if err != nil {
		return err
	}

	call := c.auth.call(c.dep.PackageID, ledger.VaultModule, ledger.FnMoveAssetFolder, []any{
		assetID, folderID, ledger.ClockObjectID,
	}, rec.ID)
	if _, err := c.mutate(ctx, call); err != nil {
		return err
	}
	c.assets.Delete(assetID)
	return nil
}
