package poster

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/k1LoW/errors"
	"golang.org/x/sync/singleflight"
)

// AssetCache resolves logical asset names (logo, font:<weight>,
// icon:<name>) to raw bytes. Implementations must allow concurrent reads
// and perform at most one fetch per key: concurrent requesters for an
// absent key wait for the first fetch instead of re-fetching.
type AssetCache interface {
	GetOrFetch(ctx context.Context, key string) ([]byte, error)
}

// remoteAssets maps asset keys to the fixed URLs they are fetched from on
// first use. The logo is deliberately absent: it ships with the deployment
// and a missing logo is a recoverable condition, not a download trigger.
var remoteAssets = map[string]string{
	"font:regular":  "https://github.com/JulietaUla/Montserrat/raw/master/fonts/ttf/Montserrat-Regular.ttf",
	"font:semibold": "https://github.com/JulietaUla/Montserrat/raw/master/fonts/ttf/Montserrat-SemiBold.ttf",
	"font:bold":     "https://github.com/JulietaUla/Montserrat/raw/master/fonts/ttf/Montserrat-Bold.ttf",
	"icon:clock":    "https://img.icons8.com/ios-filled/100/ffffff/clock--v1.png",
	"icon:pin":      "https://img.icons8.com/ios-filled/100/ffffff/marker.png",
}

// DirCache is a filesystem-backed AssetCache rooted at a single directory.
// Keys map onto files inside the directory; keys with a known remote URL
// are downloaded once and memoized on disk.
type DirCache struct {
	dir        string
	httpClient *http.Client
	group      singleflight.Group
	logger     *slog.Logger
}

func NewDirCache(dir string, httpClient *http.Client, logger *slog.Logger) (*DirCache, error) {
	if dir == "" {
		return nil, fmt.Errorf("asset directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create asset directory %s: %w", dir, err)
	}
	return &DirCache{
		dir:        dir,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// GetOrFetch reads the asset from disk, downloading it first when absent
// and a remote source is known. The singleflight group guarantees the
// single-fetch-per-key contract.
func (c *DirCache) GetOrFetch(ctx context.Context, key string) (_ []byte, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	v, err, _ := c.group.Do(key, func() (any, error) {
		path := c.filePath(key)
		if b, err := os.ReadFile(path); err == nil {
			return b, nil
		}
		u, ok := remoteAssets[key]
		if !ok {
			return nil, fmt.Errorf("asset %s not found at %s", key, path)
		}
		b, err := c.fetch(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch asset %s: %w", key, err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return nil, fmt.Errorf("failed to store asset %s: %w", key, err)
		}
		c.logger.Info("fetched asset", slog.String("key", key), slog.Int("bytes", len(b)))
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *DirCache) fetch(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status code %d for %s", res.StatusCode, u)
	}
	return io.ReadAll(res.Body)
}

// filePath maps a logical key to its on-disk location:
// logo -> logo.png, font:regular -> fonts/regular.ttf, icon:clock ->
// icons/clock.png.
func (c *DirCache) filePath(key string) string {
	switch {
	case key == "logo":
		return filepath.Join(c.dir, "logo.png")
	case strings.HasPrefix(key, "font:"):
		return filepath.Join(c.dir, "fonts", strings.TrimPrefix(key, "font:")+".ttf")
	case strings.HasPrefix(key, "icon:"):
		return filepath.Join(c.dir, "icons", strings.TrimPrefix(key, "icon:")+".png")
	default:
		return filepath.Join(c.dir, key)
	}
}
