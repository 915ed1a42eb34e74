package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/havenstore/haven-go/internal/logging"
)

// ErrNotFound indicates the requested object does not exist on the ledger.
var ErrNotFound = errors.New("ledger: object not found")

const defaultCallTimeout = 30 * time.Second

// Client talks JSON-RPC 2.0 to a ledger full node.
type Client struct {
	endpoint string
	httpc    *http.Client
	log      logging.Logger
}

func NewClient(endpoint string, log logging.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		httpc:    &http.Client{Timeout: defaultCallTimeout},
		log:      log,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) rpc(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("ledger: encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ledger: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("ledger: call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("ledger: call %s: unexpected status %d: %s", method, resp.StatusCode, string(b))
	}

	var rr rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return fmt.Errorf("ledger: decode %s response: %w", method, err)
	}
	if rr.Error != nil {
		return fmt.Errorf("ledger: %s failed: %s (code %d)", method, rr.Error.Message, rr.Error.Code)
	}
	if out != nil {
		if len(rr.Result) == 0 || string(rr.Result) == "null" {
			return ErrNotFound
		}
		if err := json.Unmarshal(rr.Result, out); err != nil {
			return fmt.Errorf("ledger: decode %s result: %w", method, err)
		}
	}
	return nil
}

// GetObject fetches one object by id. Returns ErrNotFound for absent ids.
func (c *Client) GetObject(ctx context.Context, id string) (*Object, error) {
	var obj Object
	if err := c.rpc(ctx, "haven_getObject", []any{id}, &obj); err != nil {
		return nil, err
	}
	if obj.ID == "" {
		return nil, ErrNotFound
	}
	return &obj, nil
}

// GetOwnedObjects lists objects owned by an address, filtered by type.
func (c *Client) GetOwnedObjects(ctx context.Context, q OwnedQuery) (*ObjectsPage, error) {
	var page ObjectsPage
	err := c.rpc(ctx, "haven_getOwnedObjects", []any{q.Owner, q.Type, q.Cursor, q.Limit}, &page)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &ObjectsPage{}, nil
		}
		return nil, err
	}
	return &page, nil
}

// QueryEvents scans the event log by event type.
func (c *Client) QueryEvents(ctx context.Context, q EventQuery) (*EventsPage, error) {
	var page EventsPage
	err := c.rpc(ctx, "haven_queryEvents", []any{q.EventType, q.Cursor, q.Limit, q.Descending}, &page)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &EventsPage{}, nil
		}
		return nil, err
	}
	return &page, nil
}

// ExecuteTransaction submits signed transaction bytes and requests the given
// response sections. The response may still omit sections when indexing lags.
func (c *Client) ExecuteTransaction(ctx context.Context, txBytes, signature []byte, opts TxOptions) (*TxResponse, error) {
	var resp TxResponse
	params := []any{
		base64.StdEncoding.EncodeToString(txBytes),
		[]string{base64.StdEncoding.EncodeToString(signature)},
		opts,
	}
	if err := c.rpc(ctx, "haven_executeTransaction", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTransaction fetches a transaction by digest with the requested sections.
func (c *Client) GetTransaction(ctx context.Context, digest string, opts TxOptions) (*TxResponse, error) {
	var resp TxResponse
	if err := c.rpc(ctx, "haven_getTransaction", []any{digest, opts}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
