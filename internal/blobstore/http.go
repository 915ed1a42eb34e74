package blobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/havenstore/haven-go/internal/errx"
	"github.com/havenstore/haven-go/internal/logging"
)

const (
	// baseTimeout is the floor for every blob call; uploads additionally get
	// one second per assumed-throughput chunk of payload.
	baseTimeout       = 30 * time.Second
	assumedThroughput = 1 << 20 // bytes per second
	defaultEpochs     = 5
	maxErrorBodyBytes = 4096
)

// HTTPStore talks to the content-addressed blob store over HTTP.
type HTTPStore struct {
	endpoint string
	httpc    *http.Client
	log      logging.Logger
}

func NewHTTPStore(endpoint string, log logging.Logger) *HTTPStore {
	return &HTTPStore{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		httpc:    &http.Client{},
		log:      log,
	}
}

// putResponse covers both shapes the store answers with: a fresh upload nests
// the id under newlyCreated, a deduplicated one under alreadyCertified.
type putResponse struct {
	NewlyCreated *struct {
		BlobObject struct {
			BlobID string `json:"blobId"`
		} `json:"blobObject"`
	} `json:"newlyCreated"`
	AlreadyCertified *struct {
		BlobID string `json:"blobId"`
	} `json:"alreadyCertified"`
}

func timeoutFor(size int) time.Duration {
	return baseTimeout + time.Duration(size/assumedThroughput)*time.Second
}

func (s *HTTPStore) Put(ctx context.Context, data []byte, opts PutOptions) (string, error) {
	epochs := opts.Epochs
	if epochs <= 0 {
		epochs = defaultEpochs
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutFor(len(data)))
	defer cancel()

	url := fmt.Sprintf("%s/v1/blobs?epochs=%d", s.endpoint, epochs)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return "", &errx.NetworkError{Msg: "build blob upload request", Cause: err}
	}
	if opts.ContentType != "" {
		req.Header.Set("Content-Type", opts.ContentType)
	} else {
		req.Header.Set("Content-Type", "application/octet-stream")
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		return "", &errx.NetworkError{Msg: "blob upload failed", Cause: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusRequestEntityTooLarge:
		return "", &errx.NetworkError{Msg: "blob exceeds the store's size limit", StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", &errx.NetworkError{
			Msg:        "blob upload rejected: " + readErrorBody(resp.Body),
			StatusCode: resp.StatusCode,
		}
	}

	var pr putResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return "", &errx.NetworkError{Msg: "decode blob upload response", Cause: err}
	}
	switch {
	case pr.NewlyCreated != nil && pr.NewlyCreated.BlobObject.BlobID != "":
		return pr.NewlyCreated.BlobObject.BlobID, nil
	case pr.AlreadyCertified != nil && pr.AlreadyCertified.BlobID != "":
		s.log.Debug(ctx, "blob already certified, reusing", "blobId", pr.AlreadyCertified.BlobID)
		return pr.AlreadyCertified.BlobID, nil
	}
	return "", &errx.NetworkError{Msg: "blob upload response carried no blob id"}
}

func (s *HTTPStore) Get(ctx context.Context, blobID string) ([]byte, error) {
	return s.get(ctx, s.endpoint+"/v1/blobs/"+blobID)
}

func (s *HTTPStore) GetByObjectID(ctx context.Context, objectID string) ([]byte, error) {
	return s.get(ctx, s.endpoint+"/v1/blobs/by-object-id/"+objectID)
}

func (s *HTTPStore) get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, baseTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &errx.NetworkError{Msg: "build blob fetch request", Cause: err}
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, &errx.NetworkError{Msg: "blob fetch failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &errx.NetworkError{
			Msg:        "blob fetch rejected: " + readErrorBody(resp.Body),
			StatusCode: resp.StatusCode,
		}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errx.NetworkError{Msg: "read blob body", Cause: err}
	}
	return data, nil
}

// Delete removes a blob. 404 (already absent) and 405 (immutable blob, store
// does not support deletion) both count as success.
func (s *HTTPStore) Delete(ctx context.Context, blobID string) error {
	ctx, cancel := context.WithTimeout(ctx, baseTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.endpoint+"/v1/blobs/"+blobID, nil)
	if err != nil {
		return &errx.NetworkError{Msg: "build blob delete request", Cause: err}
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return &errx.NetworkError{Msg: "blob delete failed", Cause: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted, http.StatusNoContent,
		http.StatusNotFound, http.StatusMethodNotAllowed:
		return nil
	}
	return &errx.NetworkError{
		Msg:        "blob delete rejected: " + readErrorBody(resp.Body),
		StatusCode: resp.StatusCode,
	}
}

func readErrorBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	return strings.TrimSpace(string(b))
}
