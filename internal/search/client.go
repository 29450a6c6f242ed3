package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client talks to the scraping service.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

type upstreamResponse struct {
	Success bool         `json:"success"`
	Results []RawProduct `json:"results"`
	Error   string       `json:"error"`
}

// NewClient builds a client for baseURL, e.g. http://localhost:5001/api.
// A nil limiter disables throttling.
func NewClient(baseURL string, timeout time.Duration, limiter *rate.Limiter) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

func (c *Client) Search(ctx context.Context, seller Seller, query string, limit int) ([]RawProduct, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	endpoint := c.baseURL + "/search"
	if seller == SellerBing {
		endpoint = c.baseURL + "/bing-search"
	} else {
		params.Set("seller", string(seller))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// The scraper answers 404 when a seller has nothing for the query.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	var body upstreamResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode upstream response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 300 || !body.Success {
		msg := body.Error
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("upstream %s: %s", seller, msg)
	}
	return body.Results, nil
}
