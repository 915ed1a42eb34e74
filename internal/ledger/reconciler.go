package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/havenstore/haven-go/internal/errx"
	"github.com/havenstore/haven-go/internal/logging"
)

// effectsGrace is how long to wait before re-querying a transaction whose
// submission response came back without effects. Ledger indexing typically
// catches up within this interval.
const effectsGrace = 3 * time.Second

// SubmitFunc submits signed or to-be-signed transaction bytes through one of
// the two authorization paths and returns the raw response.
type SubmitFunc func(ctx context.Context, txBytes []byte) (*TxResponse, error)

type txQuerier interface {
	GetTransaction(ctx context.Context, digest string, opts TxOptions) (*TxResponse, error)
}

// TxResult is the single normalized transaction outcome. All saga code
// depends on this type, never on the raw response shapes.
type TxResult struct {
	Digest    string
	CreatedID string
	Events    []Event
}

// Reconciler turns heterogeneous, possibly incomplete transaction responses
// into one TxResult, re-querying once when indexing lags submission.
type Reconciler struct {
	querier txQuerier
	grace   time.Duration
	log     logging.Logger
}

func NewReconciler(querier txQuerier, log logging.Logger) *Reconciler {
	return &Reconciler{querier: querier, grace: effectsGrace, log: log}
}

// Submit runs submit and verifies the transaction committed. CreatedID is
// populated opportunistically; use SubmitExpectCreated when the saga needs it.
func (r *Reconciler) Submit(ctx context.Context, txBytes []byte, submit SubmitFunc) (*TxResult, error) {
	resp, err := r.submit(ctx, txBytes, submit)
	if err != nil {
		return nil, err
	}
	full, err := r.confirm(ctx, resp)
	if err != nil {
		return nil, err
	}
	return &TxResult{
		Digest:    resp.Digest,
		CreatedID: extractCreatedID(full, ""),
		Events:    full.Events,
	}, nil
}

// SubmitExpectCreated runs submit and returns the identifier of the object
// the mutation created. typeHint, when non-empty, narrows the object-changes
// scan to entries whose object type contains it.
//
// When the submission response carries a digest but no effects, the
// reconciler waits one grace interval and re-queries the transaction with
// full effects, object changes, and events. If no created id can be
// extracted even then, it fails with a BlockchainError carrying the digest.
func (r *Reconciler) SubmitExpectCreated(ctx context.Context, txBytes []byte, submit SubmitFunc, typeHint string) (*TxResult, error) {
	resp, err := r.submit(ctx, txBytes, submit)
	if err != nil {
		return nil, err
	}
	full, err := r.confirm(ctx, resp)
	if err != nil {
		return nil, err
	}
	if id := extractCreatedID(full, typeHint); id != "" {
		return &TxResult{Digest: resp.Digest, CreatedID: id, Events: full.Events}, nil
	}
	return nil, &errx.BlockchainError{Msg: "could not extract created object id from transaction result", Digest: resp.Digest}
}

// confirm turns a possibly effects-less submission response into one the
// caller may trust. A digest with no effects means ledger indexing lags
// submission, not success: wait one grace interval, re-query by digest, and
// check the full record's status. Responses that already carry effects had
// their status checked at submission and pass through untouched.
func (r *Reconciler) confirm(ctx context.Context, resp *TxResponse) (*TxResponse, error) {
	if resp.Effects != nil {
		return resp, nil
	}

	r.log.Debug(ctx, "transaction response missing effects, re-querying",
		"digest", resp.Digest, "grace", r.grace)

	select {
	case <-ctx.Done():
		return nil, &errx.BlockchainError{Msg: "canceled while waiting for indexing", Digest: resp.Digest, Cause: ctx.Err()}
	case <-time.After(r.grace):
	}

	full, err := r.querier.GetTransaction(ctx, resp.Digest, TxOptions{
		ShowEffects:       true,
		ShowObjectChanges: true,
		ShowEvents:        true,
	})
	if err != nil {
		return nil, &errx.BlockchainError{Msg: "re-query after submission failed", Digest: resp.Digest, Cause: err}
	}
	if err := checkStatus(full); err != nil {
		return nil, err
	}
	return full, nil
}

func (r *Reconciler) submit(ctx context.Context, txBytes []byte, submit SubmitFunc) (*TxResponse, error) {
	resp, err := submit(ctx, txBytes)
	if err != nil {
		return nil, &errx.BlockchainError{Msg: "transaction submission failed", Cause: err}
	}
	if resp == nil || resp.Digest == "" {
		return nil, &errx.BlockchainError{Msg: "submission returned no transaction digest"}
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func checkStatus(resp *TxResponse) error {
	if resp.Effects != nil && resp.Effects.Status.Status == "failure" {
		return &errx.BlockchainError{
			Msg:    "transaction failed: " + resp.Effects.Status.Error,
			Digest: resp.Digest,
		}
	}
	return nil
}

// extractCreatedID checks, in order, the effects' created list and the
// object-changes list filtered to created entries.
// extractCreatedID pulls the created object id out of a transaction
// response. Object changes carry object types, so when a typeHint is given
// they are scanned first. Entries in effects.created have no type
// information; they are only trusted when no typed entry matched, since a
// mutation can also create incidental objects such as change coins.
func extractCreatedID(resp *TxResponse, typeHint string) string {
	if typeHint != "" {
		for _, ch := range resp.ObjectChanges {
			if ch.Type == "created" && strings.Contains(ch.ObjectType, typeHint) {
				return ch.ObjectID
			}
		}
	}
	if resp.Effects != nil {
		for _, c := range resp.Effects.Created {
			if c.Reference.ObjectID != "" {
				return c.Reference.ObjectID
			}
		}
	}
	if typeHint == "" {
		for _, ch := range resp.ObjectChanges {
			if ch.Type == "created" {
				return ch.ObjectID
			}
		}
	}
	return ""
}
