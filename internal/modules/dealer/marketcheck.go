package dealer

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
)

// Lookup fetches a dealer record from the upstream directory.
type Lookup interface {
	FetchDealer(ctx context.Context, dealerID, region string) (*Listing, error)
}

// Listing is the MarketCheck dealer payload. Unused fields are ignored.
type Listing struct {
	ID           string `json:"id"`
	SellerName   string `json:"seller_name"`
	InventoryURL string `json:"inventory_url"`
	DataSource   string `json:"data_source"`
	Status       string `json:"status"`
	ListingCount *int   `json:"listing_count"`
	DealerType   string `json:"dealer_type"`
	Street       string `json:"street"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
	Zip          string `json:"zip"`
	Latitude     string `json:"latitude"`
	Longitude    string `json:"longitude"`
	SellerPhone  string `json:"seller_phone"`
	CreatedAt    string `json:"created_at"`
}

// MarketCheckConfig holds the upstream origin and per-region API keys.
type MarketCheckConfig struct {
	BaseURL  string
	USAPIKey string
	UKAPIKey string
	Timeout  time.Duration
}

// MarketCheckClient implements Lookup over the MarketCheck REST API.
type MarketCheckClient struct {
	cfg  MarketCheckConfig
	http *http.Client
}

func NewMarketCheckClient(cfg MarketCheckConfig) *MarketCheckClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &MarketCheckClient{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// FetchDealer calls /dealer/car/uk/{id} for the UK and /dealer/rv/{id} otherwise.
// Every failure, including a non-2xx answer, is returned wrapped in ErrUpstream.
func (c *MarketCheckClient) FetchDealer(ctx context.Context, dealerID, region string) (*Listing, error) {
	endpoint, key := "/dealer/rv/", c.cfg.USAPIKey
	if region == RegionUK {
		endpoint, key = "/dealer/car/uk/", c.cfg.UKAPIKey
	}

	u, err := url.Parse(strings.TrimRight(c.cfg.BaseURL, "/") + endpoint + url.PathEscape(dealerID))
	if err != nil {
		return nil, ErrUpstream.WithCause(err)
	}
	q := u.Query()
	q.Set("api_key", key)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, ErrUpstream.WithCause(err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		// The URL carries the API key; keep it out of the cause.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, ErrUpstream.WithCause(err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, ErrUpstream.WithCause(err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, ErrUpstream.WithDetail(upstreamMessage(res.StatusCode, body))
	}

	var l Listing
	if err := json.Unmarshal(body, &l); err != nil {
		return nil, ErrUpstream.WithCause(fmt.Errorf("decode dealer: %w", err))
	}
	return &l, nil
}

func upstreamMessage(status int, body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil {
		if e.Error != "" {
			return "dealer lookup failed: " + e.Error
		}
		if e.Message != "" {
			return "dealer lookup failed: " + e.Message
		}
	}
	return fmt.Sprintf("dealer lookup failed with status %d", status)
}

// toDealer maps a listing onto the stored document shape.
func (l *Listing) toDealer(dealerID, region string) *Dealer {
	d := &Dealer{
		DealerID:     dealerID,
		Region:       region,
		Name:         l.SellerName,
		InventoryURL: l.InventoryURL,
		DataSource:   l.DataSource,
		Status:       l.Status,
		ListingCount: l.ListingCount,
		DealerType:   l.DealerType,
		Street:       l.Street,
		City:         l.City,
		State:        l.State,
		Country:      l.Country,
		Zip:          l.Zip,
		Latitude:     l.Latitude,
		Longitude:    l.Longitude,
		Phone:        l.SellerPhone,
	}
	if t, ok := parseUpstreamTime(l.CreatedAt); ok {
		d.MarketCheckCreatedAt = &t
	}
	return d
}

func parseUpstreamTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
