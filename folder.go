package haven

import (
	"context"
	"errors"

	"github.com/havenstore/haven-go/internal/credential"
	"github.com/havenstore/haven-go/internal/errx"
	"github.com/havenstore/haven-go/internal/ledger"
)

// CreateFolder creates a folder and returns its ledger identifier. parentID
// may be empty for a top-level folder.
func (c *Client) CreateFolder(ctx context.Context, name, description, parentID string) (string, error) {
	if name == "" {
		return "", errx.Validationf("folder name is required")
	}
	rec, err := c.validate(ctx, credential.PermUpload)
	if err != nil {
		return "", err
	}

	call := c.auth.call(c.dep.PackageID, ledger.VaultModule, ledger.FnCreateFolder, []any{
		name, description, parentID, ledger.ClockObjectID,
	}, rec.ID)
	res, err := c.create(ctx, call, ledger.TypeFolder)
	if err != nil {
		return "", err
	}
	return res.CreatedID, nil
}

// DeleteFolder removes an empty folder. The ledger rejects deletion of a
// folder with a nonzero asset count; that rejection is surfaced, and the
// folder stays unchanged.
func (c *Client) DeleteFolder(ctx context.Context, folderID string) error {
	rec, err := c.validate(ctx, credential.PermDelete)
	if err != nil {
		return err
	}

	call := c.auth.call(c.dep.PackageID, ledger.VaultModule, ledger.FnDeleteFolder, []any{
		folderID, ledger.ClockObjectID,
	}, rec.ID)
	_, err = c.mutate(ctx, call)
	return err
}

// GetFolder fetches one folder record.
func (c *Client) GetFolder(ctx context.Context, folderID string) (*Folder, error) {
	if _, err := c.validate(ctx, credential.PermRead); err != nil {
		return nil, err
	}
	obj, err := c.ledger.GetObject(ctx, folderID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, errx.Validationf("folder %s not found", folderID)
		}
		return nil, &errx.BlockchainError{Msg: "folder lookup failed", Cause: err}
	}
	folder, err := folderFromObject(obj)
	if err != nil {
		return nil, &errx.BlockchainError{Msg: "malformed folder record", Cause: err}
	}
	return folder, nil
}

// ListFolders returns every folder the caller owns.
func (c *Client) ListFolders(ctx context.Context) ([]*Folder, error) {
	if _, err := c.validate(ctx, credential.PermRead); err != nil {
		return nil, err
	}

	var out []*Folder
	cursor := ""
	for {
		page, err := c.ledger.GetOwnedObjects(ctx, ledger.OwnedQuery{
			Owner:  c.auth.address,
			Type:   c.typeOf(ledger.TypeFolder),
			Cursor: cursor,
		})
		if err != nil {
			return nil, &errx.BlockchainError{Msg: "folder listing failed", Cause: err}
		}
		for i := range page.Data {
			folder, err := folderFromObject(&page.Data[i])
			if err != nil {
				c.log.Warn(ctx, "skipping malformed folder record", "objectId", page.Data[i].ID, "err", err)
				continue
			}
			out = append(out, folder)
		}
		if !page.HasNextPage || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	return out, nil
}
