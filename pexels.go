package poster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/k1LoW/errors"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	defaultSearchEndpoint = "https://api.pexels.com/v1/search"
	defaultPerPage        = 15

	searchCacheTTL = 5 * time.Minute
)

// Searcher supplies one candidate background image for a query and result
// page, or nil when the page holds no usable candidate.
type Searcher interface {
	Search(ctx context.Context, query string, page int) (*Image, error)
}

// PexelsClient queries the Pexels photo search API. Search responses are
// cached for a short TTL so a batch fanning out over several pages of the
// same query does not hammer the API, and all requests pass through a rate
// limiter sized well below the documented quota.
type PexelsClient struct {
	apiKey     string
	endpoint   string
	perPage    int
	httpClient *http.Client
	limiter    *rate.Limiter
	responses  *gocache.Cache
	logger     *slog.Logger
}

// NewPexelsClient creates a search client. The API key is required; the
// endpoint and page size fall back to the Pexels defaults when empty.
func NewPexelsClient(apiKey, endpoint string, perPage int, httpClient *http.Client, logger *slog.Logger) (*PexelsClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("search API key is required")
	}
	if endpoint == "" {
		endpoint = defaultSearchEndpoint
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	return &PexelsClient{
		apiKey:     apiKey,
		endpoint:   endpoint,
		perPage:    perPage,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 3),
		responses:  gocache.New(searchCacheTTL, 2*searchCacheTTL),
		logger:     logger,
	}, nil
}

type pexelsPhoto struct {
	Src struct {
		Original string `json:"original"`
	} `json:"src"`
}

type pexelsResponse struct {
	Photos []pexelsPhoto `json:"photos"`
}

// Search returns the photo at index (page-1) mod perPage of the result page,
// fetched at its original resolution. It returns (nil, nil) when the page
// has no photo at that index.
func (c *PexelsClient) Search(ctx context.Context, query string, page int) (_ *Image, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	if page < 1 {
		return nil, fmt.Errorf("invalid page: %d", page)
	}
	photos, err := c.searchPhotos(ctx, query, page)
	if err != nil {
		return nil, err
	}
	idx := (page - 1) % c.perPage
	if idx >= len(photos) {
		return nil, nil
	}
	i, err := NewImage(photos[idx].Src.Original)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch photo: %w", err)
	}
	return i, nil
}

func (c *PexelsClient) searchPhotos(ctx context.Context, query string, page int) (_ []pexelsPhoto, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	cacheKey := query + "|" + strconv.Itoa(page)
	if v, ok := c.responses.Get(cacheKey); ok {
		if photos, ok := v.([]pexelsPhoto); ok {
			return photos, nil
		}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid search endpoint %s: %w", c.endpoint, err)
	}
	q := u.Query()
	q.Set("query", query)
	q.Set("per_page", strconv.Itoa(c.perPage))
	q.Set("page", strconv.Itoa(page))
	q.Set("orientation", "square")
	q.Set("sort", "popular")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("User-Agent", userAgent)
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed: status code %d", res.StatusCode)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	var pr pexelsResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	c.responses.Set(cacheKey, pr.Photos, gocache.DefaultExpiration)
	c.logger.Debug("search completed", slog.String("query", query), slog.Int("page", page), slog.Int("photos", len(pr.Photos)))
	return pr.Photos, nil
}
