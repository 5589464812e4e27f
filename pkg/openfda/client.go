// Package openfda looks up drug labels on the public openFDA API.
package openfda

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"
)

const DefaultBaseURL = "https://api.fda.gov"

var ErrNoLabel = errors.New("no drug label found")

// Label is the subset of a drug label the app shows next to a medicine.
type Label struct {
	Name                 string `json:"name"`
	Purpose              string `json:"purpose"`
	Usage                string `json:"usage"`
	PrescriptionRequired bool   `json:"prescription_required"`
}

type Client struct {
	http  *resty.Client
	cache *cache.Cache
}

// NewClient caches successful lookups (and misses) for ttl.
func NewClient(baseURL string, timeout, ttl time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		cache: cache.New(ttl, 2*ttl),
	}
}

type labelResponse struct {
	Results []struct {
		Purpose             []string `json:"purpose"`
		IndicationsAndUsage []string `json:"indications_and_usage"`
		Warnings            []string `json:"warnings"`
	} `json:"results"`
}

func (c *Client) Lookup(ctx context.Context, name string) (*Label, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if cached, ok := c.cache.Get(key); ok {
		if cached == nil {
			return nil, ErrNoLabel
		}
		return cached.(*Label), nil
	}

	var out labelResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("search", fmt.Sprintf("openfda.brand_name:%q", name)).
		SetQueryParam("limit", "1").
		SetResult(&out).
		Get("/drug/label.json")
	if err != nil {
		return nil, fmt.Errorf("openfda request failed: %w", err)
	}

	// openFDA answers 404 when the search matches nothing.
	if resp.StatusCode() == http.StatusNotFound || (resp.StatusCode() == http.StatusOK && len(out.Results) == 0) {
		c.cache.SetDefault(key, nil)
		return nil, ErrNoLabel
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("openfda returned status %d", resp.StatusCode())
	}

	r := out.Results[0]
	label := &Label{
		Name:                 name,
		Purpose:              first(r.Purpose, "Not specified"),
		Usage:                first(r.IndicationsAndUsage, "Not available"),
		PrescriptionRequired: strings.Contains(first(r.Warnings, ""), "Rx only"),
	}
	c.cache.SetDefault(key, label)
	return label, nil
}

func first(vals []string, fallback string) string {
	if len(vals) == 0 {
		return fallback
	}
	return vals[0]
}
