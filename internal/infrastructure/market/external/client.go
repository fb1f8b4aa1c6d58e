// Package external fetches market listings from a remote JSON provider.
// The adapter never fails: transport errors, bad statuses, and malformed
// payloads all resolve to an empty result within the configured timeout.
package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fairwheel/fairwheel/internal/domain/vehicle"
	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/logging"
	"github.com/fairwheel/fairwheel/pkg/errors"
)

// DefaultTimeout bounds a single listings fetch.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a provider response is read.
const maxResponseBytes = 8 << 20

// Client fetches listings for a query vehicle over HTTP. The provider is
// expected to return a JSON array of listing objects; anything else is
// logged and dropped.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	referenceYear int
	log           logging.Logger
}

// NewClient constructs a Client. baseURL must parse as an http or https
// URL; timeout zero means DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, referenceYear int, log logging.Logger) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid listings base URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New(errors.ErrCodeBadRequest, "listings base URL scheme must be http or https")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		httpClient:    &http.Client{Timeout: timeout},
		referenceYear: referenceYear,
		log:           log.Named("external"),
	}, nil
}

// Fetch returns the provider's listings for the query vehicle. It never
// returns an error; every failure path logs and yields an empty slice.
func (c *Client) Fetch(ctx context.Context, q vehicle.Query) []vehicle.Record {
	endpoint := fmt.Sprintf("%s/listings?%s", c.baseURL, url.Values{
		"make":  {q.Make},
		"model": {q.Model},
		"year":  {strconv.Itoa(q.Year)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.log.Warn("listings request build failed", logging.Err(err))
		return nil
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("listings fetch failed", logging.String("url", endpoint), logging.Err(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("listings fetch returned non-200",
			logging.String("url", endpoint),
			logging.Int("status", resp.StatusCode),
		)
		return nil
	}

	var payload []vehicle.Record
	dec := json.NewDecoder(http.MaxBytesReader(nil, resp.Body, maxResponseBytes))
	if err := dec.Decode(&payload); err != nil {
		c.log.Warn("listings response parse failed", logging.Err(err))
		return nil
	}

	out := make([]vehicle.Record, 0, len(payload))
	dropped := 0
	for _, r := range payload {
		if !r.Valid(c.referenceYear) {
			dropped++
			continue
		}
		r.Synthetic = false
		out = append(out, r)
	}
	if dropped > 0 {
		c.log.Debug("invalid listings dropped", logging.Int("dropped", dropped))
	}

	c.log.Info("listings fetched",
		logging.String("make", q.Make),
		logging.String("model", q.Model),
		logging.Int("count", len(out)),
	)
	return out
}
