package poster

import (
	"context"
	"encoding/json"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestPublish(t *testing.T) {
	ctx := context.Background()

	var got PublishPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("got method %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("got content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
	}))
	t.Cleanup(srv.Close)

	p, err := NewPublisher(srv.URL, srv.Client(), discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	result := &RenderResult{PNG: pngBytes(t, solidImage(4, 4, color.NRGBA{A: 255}))}
	if err := p.Publish(ctx, result, testRecord); err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(got.Image, "data:image/png;base64,") {
		t.Error("payload image is not a PNG data URL")
	}
	if got.EventName != "Reunión EXATEC Bonn" {
		t.Errorf("got event name %q", got.EventName)
	}
	if got.Date != "2026-09-12" || got.Time != "19:00" {
		t.Errorf("got date %q time %q", got.Date, got.Time)
	}
	if got.Place != "Biergarten am Rhein" || got.Address != "Rheinaustraße 134, Bonn" {
		t.Errorf("got place %q address %q", got.Place, got.Address)
	}
}

func TestPublishRetriesThenFails(t *testing.T) {
	ctx := context.Background()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	p, err := NewPublisher(srv.URL, srv.Client(), discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	result := &RenderResult{PNG: pngBytes(t, solidImage(4, 4, color.NRGBA{A: 255}))}
	err = p.Publish(ctx, result, testRecord)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "status code 500") {
		t.Errorf("got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d deliveries, want the original plus one retry", got)
	}
}

func TestPublishRecoversOnRetry(t *testing.T) {
	ctx := context.Background()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
	}))
	t.Cleanup(srv.Close)

	p, err := NewPublisher(srv.URL, srv.Client(), discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	result := &RenderResult{PNG: pngBytes(t, solidImage(4, 4, color.NRGBA{A: 255}))}
	if err := p.Publish(ctx, result, testRecord); err != nil {
		t.Fatal(err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d deliveries, want 2", got)
	}
}

func TestPublishWithDefaultClient(t *testing.T) {
	ctx := context.Background()

	var delivered atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delivered.Add(1)
	}))
	t.Cleanup(srv.Close)

	// The cmd layer passes no client; delivery must still work.
	p, err := NewPublisher(srv.URL, nil, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	result := &RenderResult{PNG: pngBytes(t, solidImage(4, 4, color.NRGBA{A: 255}))}
	if err := p.Publish(ctx, result, testRecord); err != nil {
		t.Fatal(err)
	}
	if delivered.Load() != 1 {
		t.Errorf("server saw %d deliveries, want 1", delivered.Load())
	}
}

func TestPublishWithDefaultClientFailure(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	p, err := NewPublisher(srv.URL, nil, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	result := &RenderResult{PNG: pngBytes(t, solidImage(4, 4, color.NRGBA{A: 255}))}
	if err := p.Publish(ctx, result, testRecord); err == nil {
		t.Error("expected a delivery error, not a panic")
	}
}

func TestNewPublisherRequiresEndpoint(t *testing.T) {
	if _, err := NewPublisher("", nil, discardLogger()); err == nil {
		t.Error("expected an error")
	}
}
