package mediaapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/example/media-catalog/internal/media"
	"github.com/example/media-catalog/internal/platform/httpserver"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", 2*time.Second)
}

func sampleFields() media.Fields {
	return media.Fields{
		Title:       "Heat",
		Kind:        media.KindFilm,
		Director:    "Michael Mann",
		Location:    "Los Angeles",
		Duration:    170,
		ReleaseYear: 1995,
	}
}

func TestList_SendsPagingAndDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/media" {
			t.Errorf("expected /api/media, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("page") != "2" || r.URL.Query().Get("limit") != "10" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"a","title":"Heat","type":"Movie","year":1995}],"meta":{"page":2,"limit":10,"total":11,"pages":2}}`))
	})

	page, err := c.List(context.Background(), 2, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].ID != "a" || page.Data[0].ReleaseYear != 1995 {
		t.Fatalf("unexpected data %+v", page.Data)
	}
	if !page.Meta.Last() {
		t.Fatalf("expected last page, got %+v", page.Meta)
	}
}

func TestList_NonOKIsHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.List(context.Background(), 1, 10)
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *HTTPError, got %T %v", err, err)
	}
	if he.Status != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", he.Status)
	}
	if he.Error() != "HTTP error! status: 502" {
		t.Fatalf("unexpected message %q", he.Error())
	}
}

func TestList_UnreachableIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, time.Second)
	_, err := c.List(context.Background(), 1, 10)
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected *NetworkError, got %T %v", err, err)
	}
	if Message(err) == "" {
		t.Fatal("expected a display message")
	}
}

func TestList_CanceledContextIsNetworkError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.List(ctx, 1, 10)
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected *NetworkError, got %T %v", err, err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}

func TestCreate_PostsJSONAndHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("expected json content type, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("expected bearer token, got %q", got)
		}
		if got := r.Header.Get(httpserver.RequestIDHeader); got != "rid-1" {
			t.Errorf("expected forwarded request id, got %q", got)
		}
		var f media.Fields
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(media.Record{ID: "new", Title: f.Title, Kind: f.Kind})
	})
	c.Token = StaticToken("tok")

	ctx := httpserver.WithRequestID(context.Background(), "rid-1")
	rec, err := c.Create(ctx, sampleFields())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != "new" || rec.Title != "Heat" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestCreate_ErrorBodyIsValidationError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Title is required"}`))
	})

	_, err := c.Create(context.Background(), sampleFields())
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T %v", err, err)
	}
	if ve.Message != "Title is required" || ve.Status != http.StatusBadRequest {
		t.Fatalf("unexpected error %+v", ve)
	}
	if Status(err) != http.StatusBadRequest {
		t.Fatalf("expected Status 400, got %d", Status(err))
	}
}

func TestCreate_EnvelopeMessageIsUsed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":"RATE_LIMITED","message":"too many requests"}}`))
	})

	_, err := c.Create(context.Background(), sampleFields())
	if Message(err) != "too many requests" {
		t.Fatalf("expected nested message, got %q", Message(err))
	}
}

func TestCreate_NoBodyIsHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Create(context.Background(), sampleFields())
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *HTTPError, got %T %v", err, err)
	}
	if he.Message != "Failed to create media" {
		t.Fatalf("unexpected message %q", he.Message)
	}
}

func TestUpdate_PutsToRecordPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/media/abc" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(media.Record{ID: "abc", Title: "Heat (Director's Cut)"})
	})

	f := sampleFields()
	f.Title = "Heat (Director's Cut)"
	rec, err := c.Update(context.Background(), "abc", f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Title != f.Title {
		t.Fatalf("expected updated title, got %q", rec.Title)
	}
}

func TestUpdate_MessageBodyIsValidationError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Media not found"}`))
	})

	_, err := c.Update(context.Background(), "missing", sampleFields())
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T %v", err, err)
	}
	if ve.Message != "Media not found" || ve.Status != http.StatusNotFound {
		t.Fatalf("unexpected error %+v", ve)
	}
}

func TestRemove(t *testing.T) {
	var method string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.Remove(context.Background(), "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if method != http.MethodDelete {
		t.Fatalf("expected DELETE, got %s", method)
	}
}

func TestRemove_Failure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := c.Remove(context.Background(), "abc")
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *HTTPError, got %T %v", err, err)
	}
	if he.Message != "Failed to delete media" {
		t.Fatalf("unexpected message %q", he.Message)
	}
}

func TestTokenErrorStopsRequest(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	c.Token = func(context.Context) (string, error) { return "", errors.New("no key") }

	if _, err := c.List(context.Background(), 1, 10); err == nil {
		t.Fatal("expected token error")
	}
	if called {
		t.Fatal("expected no request without a token")
	}
}

func TestBreaker_OpensAfterServerFailures(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	c.CB = NewBreaker(BreakerConfig{FailureThreshold: 2, Timeout: time.Minute}, nil)

	for range 2 {
		_, err := c.List(context.Background(), 1, 10)
		var he *HTTPError
		if !errors.As(err, &he) || he.Status != http.StatusServiceUnavailable {
			t.Fatalf("expected 503 HTTPError, got %v", err)
		}
	}

	_, err := c.List(context.Background(), 1, 10)
	var ne *NetworkError
	if !errors.As(err, &ne) || !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %T %v", err, err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("expected 2 requests to reach the server, got %d", got)
	}
}

func TestBreaker_IgnoresClientErrors(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Title is required"}`))
	})
	c.CB = NewBreaker(BreakerConfig{FailureThreshold: 1, Timeout: time.Minute}, nil)

	for range 3 {
		_, err := c.Create(context.Background(), sampleFields())
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected *ValidationError, got %T %v", err, err)
		}
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("expected every request to reach the server, got %d", got)
	}
}

func TestNewBreaker_DisabledByZeroThreshold(t *testing.T) {
	if NewBreaker(BreakerConfig{}, nil) != nil {
		t.Fatal("expected nil breaker")
	}
}
