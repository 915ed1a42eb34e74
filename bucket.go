package haven

import (
	"context"
	"errors"

	"github.com/havenstore/haven-go/internal/credential"
	"github.com/havenstore/haven-go/internal/errx"
	"github.com/havenstore/haven-go/internal/ledger"
)

// CreateBucket creates a collaborative namespace and returns its ledger
// identifier. Quota is in bytes; zero means unlimited.
func (c *Client) CreateBucket(ctx context.Context, name string, quota int64) (string, error) {
	if name == "" {
		return "", errx.Validationf("bucket name is required")
	}
	rec, err := c.validate(ctx, credential.PermUpload)
	if err != nil {
		return "", err
	}
	call := c.auth.call(c.dep.PackageID, ledger.BucketModule, ledger.FnCreateBucket, []any{
		name, quota, ledger.ClockObjectID,
	}, rec.ID)
	res, err := c.create(ctx, call, ledger.TypeBucket)
	if err != nil {
		return "", err
	}
	return res.CreatedID, nil
}

// GetBucket fetches one bucket record.
func (c *Client) GetBucket(ctx context.Context, bucketID string) (*Bucket, error) {
	if _, err := c.validate(ctx, credential.PermRead); err != nil {
		return nil, err
	}
	obj, err := c.ledger.GetObject(ctx, bucketID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, errx.Validationf("bucket %s not found", bucketID)
		}
		return nil, &errx.BlockchainError{Msg: "bucket lookup failed", Cause: err}
	}
	return bucketFromObject(obj)
}

// ListBuckets returns every bucket owned by the caller.
func (c *Client) ListBuckets(ctx context.Context) ([]*Bucket, error) {
	if _, err := c.validate(ctx, credential.PermRead); err != nil {
		return nil, err
	}

	var out []*Bucket
	cursor := ""
	for {
		page, err := c.ledger.GetOwnedObjects(ctx, ledger.OwnedQuery{
			Owner:  c.auth.address,
			Type:   c.typeOf(ledger.TypeBucket),
			Cursor: cursor,
		})
		if err != nil {
			return nil, &errx.BlockchainError{Msg: "bucket listing failed", Cause: err}
		}
		for i := range page.Data {
			b, err := bucketFromObject(&page.Data[i])
			if err != nil {
				continue
			}
			out = append(out, b)
		}
		if !page.HasNextPage || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	return out, nil
}

// AddCollaborator adds a member with the given permission shape. Only the
// bucket owner can change membership; the ledger rejects the rest.
func (c *Client) AddCollaborator(ctx context.Context, bucketID, address string, perms SharePermissions) error {
	if address == "" {
		return errx.Validationf("collaborator address is required")
	}
	rec, err := c.validate(ctx, credential.PermAdmin)
	if err != nil {
		return err
	}
	call := c.auth.call(c.dep.PackageID, ledger.BucketModule, ledger.FnAddCollaborator, []any{
		bucketID, address, perms.Read, perms.Write, perms.Admin, ledger.ClockObjectID,
	}, rec.ID)
	_, err = c.mutate(ctx, call)
	return err
}

// RemoveCollaborator drops a member.
func (c *Client) RemoveCollaborator(ctx context.Context, bucketID, address string) error {
	rec, err := c.validate(ctx, credential.PermAdmin)
	if err != nil {
		return err
	}
	call := c.auth.call(c.dep.PackageID, ledger.BucketModule, ledger.FnRemoveCollaborator, []any{
		bucketID, address, ledger.ClockObjectID,
	}, rec.ID)
	_, err = c.mutate(ctx, call)
	return err
}

// AddAssetToBucket attaches an existing asset. The ledger enforces the
// bucket quota against the asset's size.
func (c *Client) AddAssetToBucket(ctx context.Context, bucketID, assetID string) error {
	rec, err := c.validate(ctx, credential.PermUpload)
	if err != nil {
		return err
	}
	if _, err := c.getAsset(ctx, assetID); err != nil {
		return err
	}
	call := c.auth.call(c.dep.PackageID, ledger.BucketModule, ledger.FnAddAssetToBucket, []any{
		bucketID, assetID, ledger.ClockObjectID,
	}, rec.ID)
	_, err = c.mutate(ctx, call)
	return err
}

// RemoveAssetFromBucket detaches an asset. The asset itself survives.
func (c *Client) RemoveAssetFromBucket(ctx context.Context, bucketID, assetID string) error {
	rec, err := c.validate(ctx, credential.PermUpload)
	if err != nil {
		return err
	}
	call := c.auth.call(c.dep.PackageID, ledger.BucketModule, ledger.FnRemoveAssetFromBucket, []any{
		bucketID, assetID, ledger.ClockObjectID,
	}, rec.ID)
	_, err = c.mutate(ctx, call)
	return err
}
