package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Fetcher returns one random quote. Implementations must not retry; a
// failed fetch simply means the bot skips this reply.
type Fetcher interface {
	Random(ctx context.Context) (*Quote, error)
}

type Quote struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
}

type Client struct {
	base string
	http *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Random(ctx context.Context) (*Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/quotes/random", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote api status %d", resp.StatusCode)
	}
	var q Quote
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return nil, fmt.Errorf("quote api decode: %w", err)
	}
	if q.Quote == "" {
		return nil, fmt.Errorf("quote api returned empty quote")
	}
	return &q, nil
}
