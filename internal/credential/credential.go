// Package credential resolves presented API credentials to their on-ledger
// records and checks activity, expiry, and permissions. Validated records are
// cached by credential fingerprint so the event-log scan runs at most once
// per TTL window.
package credential

import (
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Permission is the capability bitmask carried by a credential.
type Permission uint8

const (
	PermUpload Permission = 1 << iota
	PermRead
	PermDelete
	PermTransform
	PermAdmin
)

var permNames = []struct {
	p    Permission
	name string
}{
	{PermUpload, "upload"},
	{PermRead, "read"},
	{PermDelete, "delete"},
	{PermTransform, "transform"},
	{PermAdmin, "admin"},
}

func (p Permission) String() string {
	var parts []string
	for _, pn := range permNames {
		if p&pn.p != 0 {
			parts = append(parts, pn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Has reports whether every bit of q is present in p.
func (p Permission) Has(q Permission) bool { return p&q == q }

// Record is a validated on-ledger credential. Read-only to this system.
type Record struct {
	ID          string
	Holder      string
	Permissions Permission
	RateLimit   int
	CreatedAt   int64
	ExpiresAt   int64
	Active      bool
	UsageCount  int64
	Salt        []byte
	SecretHash  string
}

// recordFields is the ledger object field layout.
type recordFields struct {
	Holder      string `json:"holder"`
	Permissions uint8  `json:"permissions"`
	RateLimit   int    `json:"rateLimit"`
	CreatedAt   int64  `json:"createdAt"`
	ExpiresAt   int64  `json:"expiresAt"`
	IsActive    bool   `json:"isActive"`
	UsageCount  int64  `json:"usageCount"`
	Salt        string `json:"salt"`
	SecretHash  string `json:"secretHash"`
}

func recordFromFields(id string, raw json.RawMessage) (*Record, error) {
	var f recordFields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	salt, err := hex.DecodeString(strings.TrimPrefix(f.Salt, "0x"))
	if err != nil {
		return nil, err
	}
	return &Record{
		ID:          id,
		Holder:      f.Holder,
		Permissions: Permission(f.Permissions),
		RateLimit:   f.RateLimit,
		CreatedAt:   f.CreatedAt,
		ExpiresAt:   f.ExpiresAt,
		Active:      f.IsActive,
		UsageCount:  f.UsageCount,
		Salt:        salt,
		SecretHash:  f.SecretHash,
	}, nil
}

// Usable reports whether the record is active and unexpired at now.
func (r *Record) Usable(now time.Time) bool {
	if !r.Active {
		return false
	}
	return r.ExpiresAt == 0 || now.UnixMilli() < r.ExpiresAt
}

// Fingerprint is the cache key component derived from a presented secret.
// It never leaves the process.
func Fingerprint(secret string) string {
	sum := blake2b.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// HashSecret computes the salted hash stored on-ledger for comparison with a
// presented secret.
func HashSecret(secret string, salt []byte) string {
	h, _ := blake2b.New256(nil)
	h.Write(salt)
	h.Write([]byte(secret))
	return hex.EncodeToString(h.Sum(nil))
}
