package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/okian/scorebook/internal/adapters/remote"
	"github.com/okian/scorebook/pkg/metrics"
)

// DefaultPeopleURL is the MLB Stats API host.
const DefaultPeopleURL = "https://statsapi.mlb.com"

const defaultCacheSize = 4096

// PeopleClient looks names up one id at a time and caches the answers.
// Misses are cached too, so an unknown id is asked for once.
type PeopleClient struct {
	baseURL string
	http    *remote.Client
	cache   *lru.Cache[string, string]
}

// PeopleOption configures a PeopleClient.
type PeopleOption func(*peopleConfig)

type peopleConfig struct {
	baseURL   string
	remote    *remote.Client
	cacheSize int
}

// WithPeopleURL points the client at another host.
func WithPeopleURL(u string) PeopleOption {
	return func(c *peopleConfig) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithPeopleRemote replaces the underlying HTTP client.
func WithPeopleRemote(r *remote.Client) PeopleOption {
	return func(c *peopleConfig) {
		if r != nil {
			c.remote = r
		}
	}
}

// WithCacheSize sets how many lookups are remembered.
func WithCacheSize(n int) PeopleOption {
	return func(c *peopleConfig) {
		if n > 0 {
			c.cacheSize = n
		}
	}
}

// NewPeopleClient returns a client for the people endpoint.
func NewPeopleClient(opts ...PeopleOption) *PeopleClient {
	cfg := peopleConfig{baseURL: DefaultPeopleURL, cacheSize: defaultCacheSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.remote == nil {
		cfg.remote = remote.New("people")
	}
	cache, _ := lru.New[string, string](cfg.cacheSize)
	return &PeopleClient{baseURL: cfg.baseURL, http: cfg.remote, cache: cache}
}

type peopleResponse struct {
	People []struct {
		ID       int    `json:"id"`
		FullName string `json:"fullName"`
	} `json:"people"`
}

// Name returns the display name of id. An id the service does not know
// returns "" with a nil error; transport failures are returned and not
// cached.
func (c *PeopleClient) Name(ctx context.Context, id string) (string, error) {
	if name, ok := c.cache.Get(id); ok {
		metrics.RecordNameCache(true)
		return name, nil
	}
	metrics.RecordNameCache(false)

	body, err := c.http.Get(ctx, c.baseURL+"/api/v1/people/"+url.PathEscape(id))
	if err != nil {
		if isNotFound(err) {
			c.cache.Add(id, "")
			return "", nil
		}
		return "", fmt.Errorf("people %s: %w", id, err)
	}

	var resp peopleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("people %s: decode: %w", id, err)
	}
	name := ""
	if len(resp.People) > 0 {
		name = resp.People[0].FullName
	}
	c.cache.Add(id, name)
	return name, nil
}

// Cached returns the number of remembered lookups.
func (c *PeopleClient) Cached() int { return c.cache.Len() }
