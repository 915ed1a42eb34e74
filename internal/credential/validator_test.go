package credential

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/havenstore/haven-go/internal/errx"
	"github.com/havenstore/haven-go/internal/ledger"
	"github.com/havenstore/haven-go/internal/logging"
)

const testPackage = "0xpkg"

type fakeLedger struct {
	objects map[string]*ledger.Object
	events  []ledger.Event

	objectCalls int
	eventCalls  int
}

func (f *fakeLedger) GetObject(ctx context.Context, id string) (*ledger.Object, error) {
	f.objectCalls++
	obj, ok := f.objects[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return obj, nil
}

func (f *fakeLedger) QueryEvents(ctx context.Context, q ledger.EventQuery) (*ledger.EventsPage, error) {
	f.eventCalls++
	return &ledger.EventsPage{Data: f.events}, nil
}

func credentialObject(t *testing.T, id, secret string, mutate func(*recordFields)) *ledger.Object {
	t.Helper()
	salt := []byte("pepper")
	f := recordFields{
		Holder:      "0xholder",
		Permissions: uint8(PermUpload | PermRead),
		CreatedAt:   time.Now().UnixMilli(),
		IsActive:    true,
		Salt:        hex.EncodeToString(salt),
		SecretHash:  HashSecret(secret, salt),
	}
	if mutate != nil {
		mutate(&f)
	}
	raw, err := json.Marshal(f)
	require.NoError(t, err)
	return &ledger.Object{ID: id, Type: testPackage + "::" + ledger.TypeCredential, Fields: raw}
}

func eventFor(t *testing.T, credentialID string) ledger.Event {
	t.Helper()
	payload, err := json.Marshal(credentialCreatedEvent{CredentialID: credentialID})
	require.NoError(t, err)
	return ledger.Event{Type: testPackage + "::" + ledger.EventCredentialCreated, ParsedJSON: payload}
}

func newValidatorUnderTest(t *testing.T, f *fakeLedger) *Validator {
	t.Helper()
	v, err := NewValidator(f, testPackage, time.Hour, 128, logging.NewNop())
	require.NoError(t, err)
	return v
}

func TestValidate_FindsMatchViaEventScan(t *testing.T) {
	f := &fakeLedger{
		objects: map[string]*ledger.Object{
			"0xc1": credentialObject(t, "0xc1", "other-secret", nil),
			"0xc2": credentialObject(t, "0xc2", "my-secret", nil),
		},
		events: []ledger.Event{eventFor(t, "0xc1"), eventFor(t, "0xc2")},
	}
	v := newValidatorUnderTest(t, f)

	rec, err := v.Validate(context.Background(), "my-secret", "testnet")
	require.NoError(t, err)
	require.Equal(t, "0xc2", rec.ID)
	require.Equal(t, "0xholder", rec.Holder)
	require.True(t, rec.Permissions.Has(PermUpload))
}

func TestValidate_CachesByFingerprint(t *testing.T) {
	f := &fakeLedger{
		objects: map[string]*ledger.Object{"0xc1": credentialObject(t, "0xc1", "s", nil)},
		events:  []ledger.Event{eventFor(t, "0xc1")},
	}
	v := newValidatorUnderTest(t, f)
	ctx := context.Background()

	_, err := v.Validate(ctx, "s", "testnet")
	require.NoError(t, err)
	require.Equal(t, 1, f.eventCalls)

	_, err = v.Validate(ctx, "s", "testnet")
	require.NoError(t, err)
	require.Equal(t, 1, f.eventCalls, "second validation must hit the cache")
}

func TestValidate_NonMatchingHashIsNotFound(t *testing.T) {
	f := &fakeLedger{
		objects: map[string]*ledger.Object{"0xc1": credentialObject(t, "0xc1", "right", nil)},
		events:  []ledger.Event{eventFor(t, "0xc1")},
	}
	v := newValidatorUnderTest(t, f)

	_, err := v.Validate(context.Background(), "wrong", "testnet")
	var ve *errx.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Msg, "not found")
}

func TestValidate_ExpiredCredential(t *testing.T) {
	f := &fakeLedger{
		objects: map[string]*ledger.Object{
			"0xc1": credentialObject(t, "0xc1", "s", func(rf *recordFields) {
				rf.ExpiresAt = time.Now().Add(-time.Minute).UnixMilli()
			}),
		},
		events: []ledger.Event{eventFor(t, "0xc1")},
	}
	v := newValidatorUnderTest(t, f)

	_, err := v.Validate(context.Background(), "s", "testnet")
	var ve *errx.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Msg, "expired")
}

func TestValidate_InactiveCredential(t *testing.T) {
	// An inactive record is skipped by the scan, so the outcome is not-found.
	f := &fakeLedger{
		objects: map[string]*ledger.Object{
			"0xc1": credentialObject(t, "0xc1", "s", func(rf *recordFields) { rf.IsActive = false }),
		},
		events: []ledger.Event{eventFor(t, "0xc1")},
	}
	v := newValidatorUnderTest(t, f)

	_, err := v.Validate(context.Background(), "s", "testnet")
	var ve *errx.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestValidate_ExpiryEnforcedOnCacheHits(t *testing.T) {
	expiry := time.Now().Add(30 * time.Minute).UnixMilli()
	f := &fakeLedger{
		objects: map[string]*ledger.Object{
			"0xc1": credentialObject(t, "0xc1", "s", func(rf *recordFields) { rf.ExpiresAt = expiry }),
		},
		events: []ledger.Event{eventFor(t, "0xc1")},
	}
	v := newValidatorUnderTest(t, f)
	ctx := context.Background()

	_, err := v.Validate(ctx, "s", "testnet")
	require.NoError(t, err)

	// Move the validator's clock past the record expiry; the cached record
	// must now be rejected.
	v.now = func() time.Time { return time.UnixMilli(expiry).Add(time.Second) }
	_, err = v.Validate(ctx, "s", "testnet")
	var ve *errx.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Msg, "expired")
}

func TestValidateByID_SkipsEventScan(t *testing.T) {
	f := &fakeLedger{
		objects: map[string]*ledger.Object{"0xc1": credentialObject(t, "0xc1", "s", nil)},
	}
	v := newValidatorUnderTest(t, f)

	rec, err := v.ValidateByID(context.Background(), "0xc1", "s")
	require.NoError(t, err)
	require.Equal(t, "0xc1", rec.ID)
	require.Zero(t, f.eventCalls)

	_, err = v.ValidateByID(context.Background(), "0xc1", "wrong")
	var ve *errx.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestValidate_EmptySecret(t *testing.T) {
	v := newValidatorUnderTest(t, &fakeLedger{})
	_, err := v.Validate(context.Background(), "", "testnet")
	var ve *errx.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestRequire_PermissionBitmask(t *testing.T) {
	rec := &Record{ID: "0xc1", Permissions: PermUpload | PermRead}

	require.NoError(t, Require(rec, PermUpload))
	require.NoError(t, Require(rec, PermRead))

	err := Require(rec, PermDelete)
	var ve *errx.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Msg, "delete")

	admin := &Record{ID: "0xc2", Permissions: PermAdmin}
	for _, p := range []Permission{PermUpload, PermRead, PermDelete, PermTransform} {
		require.NoError(t, Require(admin, p), fmt.Sprintf("admin should imply %s", p))
	}
}

func TestPermission_String(t *testing.T) {
	require.Equal(t, "upload|read", (PermUpload | PermRead).String())
	require.Equal(t, "none", Permission(0).String())
}
