package poster

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
)

func TestDirCacheReadsExistingFile(t *testing.T) {
	ctx := context.Background()
	c := newTestAssets(t, true)

	b, err := c.GetOrFetch(ctx, "logo")
	if err != nil {
		t.Fatal(err)
	}
	want, err := os.ReadFile(filepath.Join(c.dir, "logo.png"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, want) {
		t.Error("returned bytes differ from the file on disk")
	}
}

func TestDirCacheUnknownKey(t *testing.T) {
	ctx := context.Background()
	c := newTestAssets(t, false)
	if _, err := c.GetOrFetch(ctx, "logo"); err == nil {
		t.Error("expected an error for an absent asset with no remote source")
	}
}

func TestDirCacheFetchesOnce(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	payload := []byte("icon bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write(payload)
	}))
	t.Cleanup(srv.Close)

	remoteAssets["icon:probe"] = srv.URL + "/probe.png"
	t.Cleanup(func() {
		delete(remoteAssets, "icon:probe")
	})

	c, err := NewDirCache(t.TempDir(), srv.Client(), discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := c.GetOrFetch(ctx, "icon:probe")
			if err != nil {
				t.Error(err)
				return
			}
			if !bytes.Equal(b, payload) {
				t.Error("fetched bytes differ from the server payload")
			}
		}()
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d fetches, want 1", got)
	}
	if _, err := os.ReadFile(filepath.Join(c.dir, "icons", "probe.png")); err != nil {
		t.Errorf("fetched asset was not memoized on disk: %v", err)
	}
}

func TestDirCacheFetchFailure(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	remoteAssets["icon:absent"] = srv.URL + "/absent.png"
	t.Cleanup(func() {
		delete(remoteAssets, "icon:absent")
	})

	c, err := NewDirCache(t.TempDir(), srv.Client(), discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetOrFetch(ctx, "icon:absent"); err == nil {
		t.Error("expected an error for a failing remote")
	}
}

func TestNewDirCacheRequiresDir(t *testing.T) {
	if _, err := NewDirCache("", nil, discardLogger()); err == nil {
		t.Error("expected an error")
	}
}
