package credential

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/havenstore/haven-go/internal/cache"
	"github.com/havenstore/haven-go/internal/errx"
	"github.com/havenstore/haven-go/internal/ledger"
	"github.com/havenstore/haven-go/internal/logging"
)

const (
	// defaultScanPage bounds the event-log scan; credentials older than the
	// most recent page must be resolved by id.
	defaultScanPage = 50

	DefaultCacheTTL      = time.Hour
	DefaultCacheCapacity = 1024
)

type ledgerAPI interface {
	GetObject(ctx context.Context, id string) (*ledger.Object, error)
	QueryEvents(ctx context.Context, q ledger.EventQuery) (*ledger.EventsPage, error)
}

// Validator resolves presented credentials against the ledger.
type Validator struct {
	ledger    ledgerAPI
	cache     *cache.Cache[*Record]
	eventType string
	pageSize  int
	log       logging.Logger
	now       func() time.Time
}

// NewValidator builds a Validator scanning events of the given vault package.
func NewValidator(l ledgerAPI, packageID string, ttl time.Duration, capacity int64, log logging.Logger) (*Validator, error) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	c, err := cache.New[*Record](capacity, ttl)
	if err != nil {
		return nil, err
	}
	return &Validator{
		ledger:    l,
		cache:     c,
		eventType: packageID + "::" + ledger.EventCredentialCreated,
		pageSize:  defaultScanPage,
		log:       log,
		now:       time.Now,
	}, nil
}

// Validate resolves a presented secret to its validated record, scanning the
// credential-created event log on cache miss. scope namespaces the cache so
// one process can serve several deployments.
func (v *Validator) Validate(ctx context.Context, secret, scope string) (*Record, error) {
	if secret == "" {
		return nil, errx.Validationf("credential is required")
	}

	key := scope + ":" + Fingerprint(secret)
	rec, cached, err := v.cache.GetOrLoad(key, func() (*Record, error) {
		return v.scan(ctx, secret)
	})
	if err != nil {
		return nil, err
	}
	if cached {
		v.log.Debug(ctx, "credential cache hit", "credentialId", rec.ID)
	}
	return v.checkUsable(rec)
}

// ValidateByID skips the event scan for callers that already know the ledger
// identifier of their credential.
func (v *Validator) ValidateByID(ctx context.Context, id, secret string) (*Record, error) {
	if secret == "" {
		return nil, errx.Validationf("credential is required")
	}
	obj, err := v.ledger.GetObject(ctx, id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, errx.Validationf("credential %s not found", id)
		}
		return nil, &errx.BlockchainError{Msg: "credential lookup failed", Cause: err}
	}
	rec, err := recordFromFields(obj.ID, obj.Fields)
	if err != nil {
		return nil, &errx.BlockchainError{Msg: "malformed credential record", Cause: err}
	}
	if HashSecret(secret, rec.Salt) != rec.SecretHash {
		return nil, errx.Validationf("credential %s does not match the presented secret", id)
	}
	return v.checkUsable(rec)
}

// Require fails with a ValidationError when the record lacks the permission.
// Admin implies every capability.
func Require(rec *Record, p Permission) error {
	if rec.Permissions.Has(p) || rec.Permissions.Has(PermAdmin) {
		return nil
	}
	return errx.Validationf("credential %s lacks the %s permission", rec.ID, p)
}

type credentialCreatedEvent struct {
	CredentialID string `json:"credentialId"`
}

// scan walks recent credential-created events, newest first, comparing the
// salted hash of the presented secret against each candidate record.
func (v *Validator) scan(ctx context.Context, secret string) (*Record, error) {
	page, err := v.ledger.QueryEvents(ctx, ledger.EventQuery{
		EventType:  v.eventType,
		Limit:      v.pageSize,
		Descending: true,
	})
	if err != nil {
		return nil, &errx.BlockchainError{Msg: "credential event scan failed", Cause: err}
	}

	for _, ev := range page.Data {
		var payload credentialCreatedEvent
		if err := json.Unmarshal(ev.ParsedJSON, &payload); err != nil || payload.CredentialID == "" {
			continue
		}
		obj, err := v.ledger.GetObject(ctx, payload.CredentialID)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				continue
			}
			return nil, &errx.BlockchainError{Msg: "credential lookup failed", Cause: err}
		}
		rec, err := recordFromFields(obj.ID, obj.Fields)
		if err != nil {
			v.log.Warn(ctx, "skipping malformed credential record", "objectId", obj.ID, "err", err)
			continue
		}
		if !rec.Active {
			continue
		}
		if HashSecret(secret, rec.Salt) == rec.SecretHash {
			return rec, nil
		}
	}
	return nil, errx.Validationf("credential not found")
}

// checkUsable runs on every validation, including cache hits, so a record
// that expires mid-TTL is still rejected.
func (v *Validator) checkUsable(rec *Record) (*Record, error) {
	if !rec.Active {
		return nil, errx.Validationf("credential %s is inactive", rec.ID)
	}
	if rec.ExpiresAt != 0 && v.now().UnixMilli() >= rec.ExpiresAt {
		return nil, errx.Validationf("credential %s expired", rec.ID)
	}
	return rec, nil
}
