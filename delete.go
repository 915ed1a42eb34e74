package haven

import (
	"context"

	"github.com/havenstore/haven-go/internal/credential"
	"github.com/havenstore/haven-go/internal/ledger"
)

// Delete removes an asset. The ledger enforces ownership; an unauthorized
// attempt fails there and is surfaced as-is. Blob deletion is best effort:
// immutable or already-absent blobs never fail the operation.
func (c *Client) Delete(ctx context.Context, assetID string) error {
	rec, err := c.validate(ctx, credential.PermDelete)
	if err != nil {
		return err
	}

	asset, err := c.getAsset(ctx, assetID)
	if err != nil {
		return err
	}

	call := c.auth.call(c.dep.PackageID, ledger.VaultModule, ledger.FnDeleteAsset, []any{
		assetID, ledger.ClockObjectID,
	}, rec.ID)
	if _, err := c.mutate(ctx, call); err != nil {
		return err
	}

	if err := c.blobs.Delete(ctx, asset.BlobID); err != nil {
		c.log.Warn(ctx, "blob deletion failed after ledger delete", "assetId", assetID, "blobId", asset.BlobID, "err", err)
	}

	c.assets.Delete(assetID)
	return nil
}
