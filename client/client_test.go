package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCallBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"message":"Invalid send or permission denied"}`))
	}))
	defer srv.Close()

	err := New(srv.URL).call(context.Background(), "POST", "/x", nil, nil)
	var berr *BackendError
	if !errors.As(err, &berr) {
		t.Fatalf("err = %v, want BackendError", err)
	}
	if berr.Error() != "Invalid send or permission denied" {
		t.Errorf("message = %q", berr.Error())
	}
}

func TestCallNonJSONIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway</html>"))
	}))
	defer srv.Close()

	err := New(srv.URL).call(context.Background(), "GET", "/x", nil, nil)
	var nerr *NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("err = %v, want NetworkError", err)
	}
}

func TestCallConnectionRefused(t *testing.T) {
	c := New("http://127.0.0.1:1")
	c.retries = 0
	err := c.call(context.Background(), "GET", "/x", nil, nil)
	var nerr *NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("err = %v, want NetworkError", err)
	}
}

func TestCallRetriesOn5xx(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	if err := New(srv.URL).call(context.Background(), "GET", "/x", nil, nil); err != nil {
		t.Fatalf("err = %v after retryable 500", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}
