// Package twitch is a minimal Helix client: app-access-token caching plus a
// single "is this login streaming" query.
package twitch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	logx "crobot/pkg/logx"
)

const (
	tokenURL   = "https://id.twitch.tv/oauth2/token"
	streamsURL = "https://api.twitch.tv/helix/streams"

	// tokenSlack refreshes the token a bit before Twitch expires it.
	tokenSlack = time.Minute
)

type Config struct {
	ClientID     string
	ClientSecret string
	Timeout      time.Duration // per-call; default 10s
}

// Client caches its app access token in memory. The zero credentials case is
// a disabled client: link commands still work, live checks are off.
type Client struct {
	cfg  Config
	http *http.Client
	log  logx.Logger

	mu     sync.Mutex
	token  string
	expiry time.Time

	now func() time.Time
}

func New(cfg Config, log logx.Logger) *Client {
	if log.IsZero() {
		log = logx.Nop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		log:  log,
		now:  time.Now,
	}
}

// Enabled reports whether credentials are configured.
func (c *Client) Enabled() bool {
	return c.cfg.ClientID != "" && c.cfg.ClientSecret != ""
}

// IsLive reports whether the given login is currently streaming.
func (c *Client) IsLive(ctx context.Context, handle string) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return false, err
	}

	u := streamsURL + "?user_login=" + url.QueryEscape(strings.ToLower(handle))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Client-ID", c.cfg.ClientID)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Token revoked early; drop the cache so the next poll re-auths.
		c.mu.Lock()
		c.token = ""
		c.mu.Unlock()
		return false, fmt.Errorf("twitch: unauthorized for %s", handle)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("twitch: streams query for %s: status %d", handle, resp.StatusCode)
	}

	var body struct {
		Data []struct {
			Type string `json:"type"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("twitch: decode streams response: %w", err)
	}
	return len(body.Data) > 0, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && c.now().Before(c.expiry) {
		t := c.token
		c.mu.Unlock()
		return t, nil
	}
	c.mu.Unlock()

	form := url.Values{
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"grant_type":    {"client_credentials"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("twitch: token request: status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("twitch: decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("twitch: token response missing access_token")
	}
	expiresIn := time.Duration(body.ExpiresIn) * time.Second
	if expiresIn <= 0 {
		expiresIn = time.Hour
	}

	c.mu.Lock()
	c.token = body.AccessToken
	c.expiry = c.now().Add(expiresIn - tokenSlack)
	c.mu.Unlock()

	c.log.Info("fetched new twitch access token")
	return body.AccessToken, nil
}
