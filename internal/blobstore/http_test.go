package blobstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/havenstore/haven-go/internal/errx"
	"github.com/havenstore/haven-go/internal/logging"
)

func TestHTTPStore_Put_NewlyCreated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/v1/blobs", r.URL.Path)
		require.Equal(t, "7", r.URL.Query().Get("epochs"))
		w.Write([]byte(`{"newlyCreated":{"blobObject":{"blobId":"blob-1"}}}`))
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, logging.NewNop())
	id, err := s.Put(context.Background(), []byte("data"), PutOptions{Epochs: 7})
	require.NoError(t, err)
	require.Equal(t, "blob-1", id)
}

func TestHTTPStore_Put_AlreadyCertified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"alreadyCertified":{"blobId":"blob-2"}}`))
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, logging.NewNop())
	id, err := s.Put(context.Background(), []byte("data"), PutOptions{})
	require.NoError(t, err)
	require.Equal(t, "blob-2", id)
}

func TestHTTPStore_Put_OversizeCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, logging.NewNop())
	_, err := s.Put(context.Background(), []byte("data"), PutOptions{})
	var ne *errx.NetworkError
	require.ErrorAs(t, err, &ne)
	require.Equal(t, http.StatusRequestEntityTooLarge, ne.StatusCode)
}

func TestHTTPStore_Put_NoIDInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, logging.NewNop())
	_, err := s.Put(context.Background(), []byte("data"), PutOptions{})
	var ne *errx.NetworkError
	require.ErrorAs(t, err, &ne)
}

func TestHTTPStore_Get_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/blobs/blob-1":
			w.Write([]byte("payload"))
		case "/v1/blobs/by-object-id/0xa1":
			w.Write([]byte("by-object"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, logging.NewNop())

	data, err := s.Get(context.Background(), "blob-1")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), data)

	data, err = s.GetByObjectID(context.Background(), "0xa1")
	require.NoError(t, err)
	require.Equal(t, []byte("by-object"), data)

	_, err = s.Get(context.Background(), "missing")
	var ne *errx.NetworkError
	require.ErrorAs(t, err, &ne)
	require.Equal(t, http.StatusNotFound, ne.StatusCode)
}

func TestHTTPStore_Delete_TolerantStatuses(t *testing.T) {
	for _, code := range []int{http.StatusOK, http.StatusNoContent, http.StatusNotFound, http.StatusMethodNotAllowed} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodDelete, r.Method)
			w.WriteHeader(code)
		}))
		s := NewHTTPStore(srv.URL, logging.NewNop())
		require.NoError(t, s.Delete(context.Background(), "blob-1"), "status %d must not fail", code)
		srv.Close()
	}
}

func TestHTTPStore_Delete_ServerErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, logging.NewNop())
	var ne *errx.NetworkError
	require.ErrorAs(t, s.Delete(context.Background(), "blob-1"), &ne)
	require.Equal(t, http.StatusInternalServerError, ne.StatusCode)
}

func TestTimeoutFor_ScalesWithPayload(t *testing.T) {
	require.Equal(t, baseTimeout, timeoutFor(1024))
	require.Equal(t, baseTimeout+10*time.Second, timeoutFor(10*assumedThroughput))
}
