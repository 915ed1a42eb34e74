package haven

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/havenstore/haven-go/internal/credential"
	"github.com/havenstore/haven-go/internal/errx"
	"github.com/havenstore/haven-go/internal/ledger"
)

// ShareOptions tune a grant or link: an optional expiry and an optional
// password. The password is stored as an argon2id hash, never in clear.
type ShareOptions struct {
	ExpiresAt int64
	Password  string
}

// ShareAsset grants permissions over one asset to another address and
// returns the grant's ledger identifier.
func (c *Client) ShareAsset(ctx context.Context, assetID, grantee string, perms SharePermissions, opts *ShareOptions) (string, error) {
	if grantee == "" {
		return "", errx.Validationf("grantee address is required")
	}
	if opts == nil {
		opts = &ShareOptions{}
	}
	rec, err := c.validate(ctx, credential.PermUpload)
	if err != nil {
		return "", err
	}

	var pwHash string
	if opts.Password != "" {
		pwHash = hashPassword(opts.Password)
	}
	call := c.auth.call(c.dep.PackageID, ledger.SharingModule, ledger.FnShareAsset, []any{
		assetID, grantee, perms.Read, perms.Write, perms.Admin, opts.ExpiresAt, pwHash, ledger.ClockObjectID,
	}, rec.ID)
	res, err := c.create(ctx, call, ledger.TypeShareGrant)
	if err != nil {
		return "", err
	}
	return res.CreatedID, nil
}

// CreateShareableLink creates a token-keyed share over one asset. The token
// is minted locally and opaque; the link's ledger identifier and the token
// are both returned.
func (c *Client) CreateShareableLink(ctx context.Context, assetID string, perms SharePermissions, opts *ShareOptions) (*ShareableLink, error) {
	if opts == nil {
		opts = &ShareOptions{}
	}
	rec, err := c.validate(ctx, credential.PermUpload)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	var pwHash string
	if opts.Password != "" {
		pwHash = hashPassword(opts.Password)
	}
	call := c.auth.call(c.dep.PackageID, ledger.SharingModule, ledger.FnCreateLink, []any{
		assetID, token, perms.Read, perms.Write, perms.Admin, opts.ExpiresAt, pwHash, ledger.ClockObjectID,
	}, rec.ID)
	res, err := c.create(ctx, call, ledger.TypeShareableLink)
	if err != nil {
		return nil, err
	}
	return &ShareableLink{
		ID:           res.CreatedID,
		AssetID:      assetID,
		Token:        token,
		Permissions:  perms,
		ExpiresAt:    opts.ExpiresAt,
		PasswordHash: pwHash,
		Active:       true,
		CreatedAt:    time.Now().UnixMilli(),
	}, nil
}

// RevokeShare removes a grant.
func (c *Client) RevokeShare(ctx context.Context, grantID string) error {
	rec, err := c.validate(ctx, credential.PermUpload)
	if err != nil {
		return err
	}
	call := c.auth.call(c.dep.PackageID, ledger.SharingModule, ledger.FnRevokeShare, []any{
		grantID, ledger.ClockObjectID,
	}, rec.ID)
	_, err = c.mutate(ctx, call)
	return err
}

// DeactivateShareableLink flips a link inactive without deleting its
// telemetry.
func (c *Client) DeactivateShareableLink(ctx context.Context, linkID string) error {
	rec, err := c.validate(ctx, credential.PermUpload)
	if err != nil {
		return err
	}
	call := c.auth.call(c.dep.PackageID, ledger.SharingModule, ledger.FnDeactivateLink, []any{
		linkID, ledger.ClockObjectID,
	}, rec.ID)
	_, err = c.mutate(ctx, call)
	return err
}

// TrackLinkAccess records one access on a link. Password-protected links
// require the matching password; inactive links reject tracking.
func (c *Client) TrackLinkAccess(ctx context.Context, linkID, password string) error {
	rec, err := c.validate(ctx, credential.PermRead)
	if err != nil {
		return err
	}

	link, err := c.GetShareableLink(ctx, linkID)
	if err != nil {
		return err
	}
	if !link.Active {
		return errx.Validationf("link %s is inactive", linkID)
	}
	if link.PasswordHash != "" && !verifyPassword(password, link.PasswordHash) {
		return errx.Validationf("link %s requires a valid password", linkID)
	}

	call := c.auth.call(c.dep.PackageID, ledger.SharingModule, ledger.FnTrackLinkAccess, []any{
		linkID, ledger.ClockObjectID,
	}, rec.ID)
	_, err = c.mutate(ctx, call)
	return err
}

// GetAccessGrant fetches one grant record.
func (c *Client) GetAccessGrant(ctx context.Context, grantID string) (*ShareGrant, error) {
	if _, err := c.validate(ctx, credential.PermRead); err != nil {
		return nil, err
	}
	obj, err := c.ledger.GetObject(ctx, grantID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, errx.Validationf("share grant %s not found", grantID)
		}
		return nil, &errx.BlockchainError{Msg: "share grant lookup failed", Cause: err}
	}
	return grantFromObject(obj)
}

// GetShareableLink fetches one link record.
func (c *Client) GetShareableLink(ctx context.Context, linkID string) (*ShareableLink, error) {
	if _, err := c.validate(ctx, credential.PermRead); err != nil {
		return nil, err
	}
	obj, err := c.ledger.GetObject(ctx, linkID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, errx.Validationf("shareable link %s not found", linkID)
		}
		return nil, &errx.BlockchainError{Msg: "shareable link lookup failed", Cause: err}
	}
	return linkFromObject(obj)
}

// ListAccessGrants returns the grants the caller has issued, optionally
// filtered to one asset.
func (c *Client) ListAccessGrants(ctx context.Context, assetID string) ([]*ShareGrant, error) {
	if _, err := c.validate(ctx, credential.PermRead); err != nil {
		return nil, err
	}

	var out []*ShareGrant
	cursor := ""
	for {
		page, err := c.ledger.GetOwnedObjects(ctx, ledger.OwnedQuery{
			Owner:  c.auth.address,
			Type:   c.typeOf(ledger.TypeShareGrant),
			Cursor: cursor,
		})
		if err != nil {
			return nil, &errx.BlockchainError{Msg: "share grant listing failed", Cause: err}
		}
		for i := range page.Data {
			grant, err := grantFromObject(&page.Data[i])
			if err != nil {
				continue
			}
			if assetID != "" && grant.AssetID != assetID {
				continue
			}
			out = append(out, grant)
		}
		if !page.HasNextPage || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	return out, nil
}

// ListShareableLinks returns the links the caller has issued, optionally
// filtered to one asset.
func (c *Client) ListShareableLinks(ctx context.Context, assetID string) ([]*ShareableLink, error) {
	if _, err := c.validate(ctx, credential.PermRead); err != nil {
		return nil, err
	}

	var out []*ShareableLink
	cursor := ""
	for {
		page, err := c.ledger.GetOwnedObjects(ctx, ledger.OwnedQuery{
			Owner:  c.auth.address,
			Type:   c.typeOf(ledger.TypeShareableLink),
			Cursor: cursor,
		})
		if err != nil {
			return nil, &errx.BlockchainError{Msg: "shareable link listing failed", Cause: err}
		}
		for i := range page.Data {
			link, err := linkFromObject(&page.Data[i])
			if err != nil {
				continue
			}
			if assetID != "" && link.AssetID != assetID {
				continue
			}
			out = append(out, link)
		}
		if !page.HasNextPage || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	return out, nil
}
