// Package memeapi fetches one random meme from the public meme API.
package memeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"crobot/internal/memes"
)

const defaultURL = "https://meme-api.com/gimme"

type Config struct {
	URL     string
	Timeout time.Duration // default 10s
}

type Client struct {
	url  string
	http *http.Client
}

func New(cfg Config) *Client {
	u := cfg.URL
	if u == "" {
		u = defaultURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:  u,
		http: &http.Client{Timeout: timeout},
	}
}

// Fetch returns one meme. NSFW-flagged results are rejected rather than
// passed through to guild channels.
func (c *Client) Fetch(ctx context.Context) (*memes.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("memeapi: status %d", resp.StatusCode)
	}

	var body struct {
		Title     string `json:"title"`
		PostLink  string `json:"postLink"`
		URL       string `json:"url"`
		Subreddit string `json:"subreddit"`
		Author    string `json:"author"`
		NSFW      bool   `json:"nsfw"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("memeapi: decode: %w", err)
	}
	if body.NSFW {
		return nil, fmt.Errorf("memeapi: got nsfw result, skipping")
	}
	if body.URL == "" {
		return nil, fmt.Errorf("memeapi: response missing image url")
	}

	return &memes.Item{
		Title:     body.Title,
		PostLink:  body.PostLink,
		ImageURL:  body.URL,
		Subreddit: body.Subreddit,
		Author:    body.Author,
	}, nil
}
