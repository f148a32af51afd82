// Package wow looks up World of Warcraft characters on the Battle.net
// profile API.
package wow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/joebot/nightslayer-bot/internal/config"
)

const (
	defaultTokenURL  = "https://oauth.battle.net/token"
	tokenEarlyExpiry = 60 * time.Second
	requestTimeout   = 15 * time.Second
)

var (
	// ErrNotConfigured is returned when no client credentials are set.
	ErrNotConfigured = errors.New("battle.net API not configured")
	// ErrCharacterNotFound is returned when the profile API answers 404.
	ErrCharacterNotFound = errors.New("character not found")
)

// Character is the subset of a character profile the bot reports.
type Character struct {
	Name  string
	Level int
	Race  string
	Class string
}

// Description renders "<race> <class>".
func (c Character) Description() string {
	return c.Race + " " + c.Class
}

type profileResponse struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
	Race  struct {
		Name string `json:"name"`
	} `json:"race"`
	CharacterClass struct {
		Name string `json:"name"`
	} `json:"character_class"`
}

// Result pairs a requested name with its lookup outcome.
type Result struct {
	Name      string
	Character *Character
	Err       error
}

// Client queries one realm. A nil *Client is valid and reports
// ErrNotConfigured from every lookup.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	baseURL   string
	realm     string
	namespace string
	locale    string
	fanout    int
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL  string
	tokenURL string
	base     *http.Client
	fanout   int
}

// WithBaseURL overrides the regional API host.
func WithBaseURL(u string) Option {
	return func(o *clientOptions) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithTokenURL overrides the OAuth token endpoint.
func WithTokenURL(u string) Option {
	return func(o *clientOptions) { o.tokenURL = u }
}

// WithFanout bounds concurrent lookups in Characters.
func WithFanout(n int) Option {
	return func(o *clientOptions) {
		if n > 0 {
			o.fanout = n
		}
	}
}

// New builds a client from cfg. It returns (nil, nil) when credentials are
// missing so callers can treat the feature as switched off.
func New(cfg config.BattleNetConfig, opts ...Option) (*Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	if cfg.RequestsPerSecond <= 0 {
		return nil, fmt.Errorf("requests per second must be positive, got %v", cfg.RequestsPerSecond)
	}

	o := clientOptions{
		baseURL:  fmt.Sprintf("https://%s.api.blizzard.com", cfg.Region),
		tokenURL: defaultTokenURL,
		base:     &http.Client{Timeout: requestTimeout},
		fanout:   4,
	}
	for _, opt := range opts {
		opt(&o)
	}

	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     o.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, o.base)
	source := oauth2.ReuseTokenSourceWithExpiry(nil, tokenFetcher{ctx: tokenCtx, creds: creds}, tokenEarlyExpiry)

	burst := int(cfg.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		http: &http.Client{
			Transport: &oauth2.Transport{Source: source, Base: o.base.Transport},
			Timeout:   o.base.Timeout,
		},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		baseURL:   o.baseURL,
		realm:     cfg.Realm,
		namespace: cfg.Namespace,
		locale:    cfg.Locale,
		fanout:    o.fanout,
	}, nil
}

// tokenFetcher asks for a fresh token on every call; caching is left to
// the ReuseTokenSource wrapping it.
type tokenFetcher struct {
	ctx   context.Context
	creds *clientcredentials.Config
}

func (f tokenFetcher) Token() (*oauth2.Token, error) {
	return f.creds.Token(f.ctx)
}

// Enabled reports whether lookups can be made.
func (c *Client) Enabled() bool {
	return c != nil
}

// RealmName is the realm slug in display form, e.g. "Nightslayer".
func (c *Client) RealmName() string {
	if c == nil {
		return ""
	}
	return RealmDisplayName(c.realm)
}

// RealmDisplayName turns a realm slug such as "living-flame" into
// "Living Flame".
func RealmDisplayName(slug string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
}

// Character fetches one character profile.
func (c *Client) Character(ctx context.Context, name string) (*Character, error) {
	if c == nil {
		return nil, ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.characterURL(name), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrCharacterNotFound, name)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("blizzard API returned status %d", resp.StatusCode)
	}

	var p profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("parse character data: %w", err)
	}
	return &Character{
		Name:  p.Name,
		Level: p.Level,
		Race:  p.Race.Name,
		Class: p.CharacterClass.Name,
	}, nil
}

func (c *Client) characterURL(name string) string {
	q := url.Values{}
	q.Set("namespace", c.namespace)
	q.Set("locale", c.locale)
	return fmt.Sprintf("%s/profile/wow/character/%s/%s?%s",
		c.baseURL,
		url.PathEscape(c.realm),
		url.PathEscape(cases.Lower(language.Und).String(name)),
		q.Encode(),
	)
}
