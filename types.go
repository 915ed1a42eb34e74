package haven

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/havenstore/haven-go/internal/ledger"
)

// File is one upload source. Exactly one of Path, Data, or Reader must be
// set.
type File struct {
	Path        string
	Data        []byte
	Reader      io.Reader
	Name        string
	ContentType string
}

// Asset is a ledger-owned record representing one stored file. Owner is
// always attributed by the ledger from the actual transaction submitter,
// never supplied by a caller.
type Asset struct {
	ID              string   `json:"id"`
	Owner           string   `json:"owner"`
	BlobID          string   `json:"blobId"`
	Name            string   `json:"name"`
	ContentType     string   `json:"contentType"`
	Size            int64    `json:"size"`
	Tags            []string `json:"tags,omitempty"`
	Description     string   `json:"description,omitempty"`
	Category        string   `json:"category,omitempty"`
	Width           int      `json:"width,omitempty"`
	Height          int      `json:"height,omitempty"`
	ThumbnailBlobID string   `json:"thumbnailBlobId,omitempty"`
	FolderID        string   `json:"folderId,omitempty"`
	PolicyID        string   `json:"policyId,omitempty"`
	Encrypted       bool     `json:"encrypted"`
	CreatedAt       int64    `json:"createdAt"`
	UpdatedAt       int64    `json:"updatedAt"`
}

// Folder groups assets. Deletion requires an asset count of zero, enforced
// by the ledger.
type Folder struct {
	ID          string `json:"id"`
	Owner       string `json:"owner"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ParentID    string `json:"parentId,omitempty"`
	AssetCount  int    `json:"assetCount"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
}

// SharePermissions is the read/write/admin shape shared by grants and links.
type SharePermissions struct {
	Read  bool `json:"read"`
	Write bool `json:"write"`
	Admin bool `json:"admin"`
}

// ShareGrant is a directed permission grant over one asset.
type ShareGrant struct {
	ID           string           `json:"id"`
	AssetID      string           `json:"assetId"`
	Grantor      string           `json:"grantor"`
	Grantee      string           `json:"grantee"`
	Permissions  SharePermissions `json:"permissions"`
	ExpiresAt    int64            `json:"expiresAt,omitempty"`
	PasswordHash string           `json:"passwordHash,omitempty"`
	CreatedAt    int64            `json:"createdAt"`
}

// ShareableLink carries the same permission shape keyed by an opaque token,
// plus access telemetry and an active flag.
type ShareableLink struct {
	ID             string           `json:"id"`
	AssetID        string           `json:"assetId"`
	Token          string           `json:"token"`
	Permissions    SharePermissions `json:"permissions"`
	ExpiresAt      int64            `json:"expiresAt,omitempty"`
	PasswordHash   string           `json:"passwordHash,omitempty"`
	AccessCount    int64            `json:"accessCount"`
	LastAccessedAt int64            `json:"lastAccessedAt,omitempty"`
	Active         bool             `json:"isActive"`
	CreatedAt      int64            `json:"createdAt"`
}

// Collaborator is one member of a bucket.
type Collaborator struct {
	Address     string           `json:"address"`
	Permissions SharePermissions `json:"permissions"`
}

// Bucket is a collaborative namespace over assets.
type Bucket struct {
	ID            string         `json:"id"`
	Owner         string         `json:"owner"`
	Name          string         `json:"name"`
	Collaborators []Collaborator `json:"collaborators,omitempty"`
	AssetIDs      []string       `json:"assetIds,omitempty"`
	TotalSize     int64          `json:"totalSize"`
	Quota         int64          `json:"quota,omitempty"`
	CreatedAt     int64          `json:"createdAt"`
}

// PolicyKind is the access rule bound to an asset's ciphertext.
type PolicyKind string

const (
	PolicyPublic      PolicyKind = "public"
	PolicyAllowlist   PolicyKind = "allowlist"
	PolicyTimeLimited PolicyKind = "time-limited"
	PolicyPassword    PolicyKind = "password"
)

// PolicyOptions describe the encryption policy created during an encrypted
// upload.
type PolicyOptions struct {
	Kind      PolicyKind
	Allowlist []string
	ExpiresAt int64
	Password  string
	Threshold int
}

// UploadOptions tune one upload. A nil Policy (or encryption disabled)
// selects the plain saga.
type UploadOptions struct {
	FolderID    string
	Tags        []string
	Description string
	Category    string
	Epochs      int
	Policy      *PolicyOptions
}

// UploadResult is returned by the upload saga.
type UploadResult struct {
	AssetID     string `json:"assetId"`
	BlobID      string `json:"blobId"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
	Encrypted   bool   `json:"encrypted"`
	PolicyID    string `json:"policyId,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

// RetrieveOptions tune one retrieval. Decrypt defaults to true when the
// asset carries a policy reference; Session is the caller's session
// credential, required whenever decryption happens.
type RetrieveOptions struct {
	Decrypt *bool
	Session string
}

// RetrieveResult carries the bytes and the asset they belong to.
type RetrieveResult struct {
	Data      []byte
	Asset     *Asset
	Decrypted bool
}

// ListOptions page an asset listing.
type ListOptions struct {
	Cursor   string
	Limit    int
	FolderID string
}

// AssetPage is one page of a listing.
type AssetPage struct {
	Assets      []*Asset `json:"assets"`
	NextCursor  string   `json:"nextCursor,omitempty"`
	HasNextPage bool     `json:"hasNextPage"`
}

// StorageInfo aggregates over the caller's assets.
type StorageInfo struct {
	AssetCount int   `json:"assetCount"`
	TotalSize  int64 `json:"totalSize"`
}

func assetFromObject(obj *ledger.Object) (*Asset, error) {
	var a Asset
	if err := json.Unmarshal(obj.Fields, &a); err != nil {
		return nil, fmt.Errorf("decode asset %s: %w", obj.ID, err)
	}
	a.ID = obj.ID
	a.Owner = obj.Owner
	return &a, nil
}

func folderFromObject(obj *ledger.Object) (*Folder, error) {
	var f Folder
	if err := json.Unmarshal(obj.Fields, &f); err != nil {
		return nil, fmt.Errorf("decode folder %s: %w", obj.ID, err)
	}
	f.ID = obj.ID
	f.Owner = obj.Owner
	return &f, nil
}

func grantFromObject(obj *ledger.Object) (*ShareGrant, error) {
	var g ShareGrant
	if err := json.Unmarshal(obj.Fields, &g); err != nil {
		return nil, fmt.Errorf("decode share grant %s: %w", obj.ID, err)
	}
	g.ID = obj.ID
	return &g, nil
}

func linkFromObject(obj *ledger.Object) (*ShareableLink, error) {
	var l ShareableLink
	if err := json.Unmarshal(obj.Fields, &l); err != nil {
		return nil, fmt.Errorf("decode shareable link %s: %w", obj.ID, err)
	}
	l.ID = obj.ID
	return &l, nil
}

func bucketFromObject(obj *ledger.Object) (*Bucket, error) {
	var b Bucket
	if err := json.Unmarshal(obj.Fields, &b); err != nil {
		return nil, fmt.Errorf("decode bucket %s: %w", obj.ID, err)
	}
	b.ID = obj.ID
	b.Owner = obj.Owner
	return &b, nil
}
