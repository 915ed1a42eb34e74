// Package sealbox is the client for the threshold encryption service. The
// service enforces ledger-defined access policies: data is encrypted under a
// policy object id, and decryption requires a session credential plus an
// approve transaction referencing the policy object and the system clock.
package sealbox

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/havenstore/haven-go/internal/errx"
	"github.com/havenstore/haven-go/internal/logging"
)

const (
	// DefaultThreshold is how many key servers must cooperate to decrypt.
	DefaultThreshold = 2

	callTimeout       = 60 * time.Second
	maxErrorBodyBytes = 4096
)

// Client talks to the encryption service over HTTP.
type Client struct {
	endpoint string
	httpc    *http.Client
	log      logging.Logger
}

func NewClient(endpoint string, log logging.Logger) *Client {
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		httpc:    &http.Client{Timeout: callTimeout},
		log:      log,
	}
}

type encryptRequest struct {
	PolicyID  string `json:"policyId"`
	Threshold int    `json:"threshold"`
	Data      string `json:"data"`
}

type encryptResponse struct {
	Ciphertext string `json:"ciphertext"`
}

type decryptRequest struct {
	PolicyID     string `json:"policyId"`
	SessionToken string `json:"sessionToken"`
	ApproveTx    string `json:"approveTx"`
	Ciphertext   string `json:"ciphertext"`
}

type decryptResponse struct {
	Plaintext string `json:"plaintext"`
}

// Encrypt encrypts data under an existing on-ledger policy.
func (c *Client) Encrypt(ctx context.Context, data []byte, policyID string, threshold int) ([]byte, error) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	var out encryptResponse
	err := c.post(ctx, "/v1/encrypt", encryptRequest{
		PolicyID:  policyID,
		Threshold: threshold,
		Data:      base64.StdEncoding.EncodeToString(data),
	}, &out)
	if err != nil {
		return nil, &errx.EncryptionError{Msg: "encrypt failed", Cause: err}
	}
	ct, err := base64.StdEncoding.DecodeString(out.Ciphertext)
	if err != nil {
		return nil, &errx.EncryptionError{Msg: "decode ciphertext", Cause: err}
	}
	return ct, nil
}

// Decrypt decrypts ciphertext under a policy. session is the caller's signed
// session credential; approveTx is the built approve transaction the service
// submits to prove policy access.
func (c *Client) Decrypt(ctx context.Context, ciphertext []byte, policyID, session string, approveTx []byte) ([]byte, error) {
	var out decryptResponse
	err := c.post(ctx, "/v1/decrypt", decryptRequest{
		PolicyID:     policyID,
		SessionToken: session,
		ApproveTx:    base64.StdEncoding.EncodeToString(approveTx),
		Ciphertext:   base64.StdEncoding.EncodeToString(ciphertext),
	}, &out)
	if err != nil {
		return nil, &errx.EncryptionError{Msg: "decrypt failed", Cause: err}
	}
	pt, err := base64.StdEncoding.DecodeString(out.Plaintext)
	if err != nil {
		return nil, &errx.EncryptionError{Msg: "decode plaintext", Cause: err}
	}
	return pt, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var buf bytes.Buffer
		buf.ReadFrom(http.MaxBytesReader(nil, resp.Body, maxErrorBodyBytes))
		return &errx.NetworkError{
			Msg:        "encryption service rejected " + path + ": " + strings.TrimSpace(buf.String()),
			StatusCode: resp.StatusCode,
		}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
