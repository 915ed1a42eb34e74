// Package ledger is the client for the ledger collaborator: a distributed,
// ownership-tracking object and event store reached over JSON-RPC. It also
// carries transaction building, signing, and the result reconciler that
// normalizes heterogeneous transaction responses.
package ledger

import "encoding/json"

// Object is one ledger record. Fields holds the typed payload as raw JSON;
// callers decode it into their own field structs.
type Object struct {
	ID      string          `json:"objectId"`
	Type    string          `json:"type"`
	Owner   string          `json:"owner"`
	Version uint64          `json:"version"`
	Fields  json.RawMessage `json:"fields"`
}

// ObjectsPage is one page of an owned-objects query.
type ObjectsPage struct {
	Data        []Object `json:"data"`
	NextCursor  string   `json:"nextCursor"`
	HasNextPage bool     `json:"hasNextPage"`
}

// Event is one entry of the append-only event log.
type Event struct {
	Type        string          `json:"type"`
	TxDigest    string          `json:"txDigest"`
	TimestampMs int64           `json:"timestampMs"`
	ParsedJSON  json.RawMessage `json:"parsedJson"`
}

// EventsPage is one page of an event query.
type EventsPage struct {
	Data        []Event `json:"data"`
	NextCursor  string  `json:"nextCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

// ObjectRef points at a specific version of an object.
type ObjectRef struct {
	ObjectID string `json:"objectId"`
	Version  uint64 `json:"version"`
	Digest   string `json:"digest"`
}

// CreatedObject is one entry of the effects' created-object list.
type CreatedObject struct {
	Owner     json.RawMessage `json:"owner"`
	Reference ObjectRef       `json:"reference"`
}

// ExecutionStatus reports whether a transaction committed.
type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Effects is the synchronous portion of a transaction response. It may be
// absent from a submission response when ledger indexing lags execution.
type Effects struct {
	Status  ExecutionStatus `json:"status"`
	Created []CreatedObject `json:"created,omitempty"`
}

// ObjectChange is one entry of the object-changes list, an alternative shape
// in which created objects are reported.
type ObjectChange struct {
	Type       string `json:"type"`
	ObjectType string `json:"objectType"`
	ObjectID   string `json:"objectId"`
	Sender     string `json:"sender,omitempty"`
}

// TxResponse is the raw response to a transaction submission or lookup.
// Any of Effects, ObjectChanges and Events may be missing depending on which
// path produced the response and how far indexing has caught up.
type TxResponse struct {
	Digest        string         `json:"digest"`
	Effects       *Effects       `json:"effects,omitempty"`
	ObjectChanges []ObjectChange `json:"objectChanges,omitempty"`
	Events        []Event        `json:"events,omitempty"`
}

// TxOptions selects which response sections a transaction lookup returns.
type TxOptions struct {
	ShowEffects       bool `json:"showEffects"`
	ShowObjectChanges bool `json:"showObjectChanges"`
	ShowEvents        bool `json:"showEvents"`
}

// OwnedQuery filters an owned-objects listing.
type OwnedQuery struct {
	Owner  string
	Type   string
	Cursor string
	Limit  int
}

// EventQuery filters an event-log scan.
type EventQuery struct {
	EventType  string
	Cursor     string
	Limit      int
	Descending bool
}
