package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chartintel/internal/types"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	providerTimeout      = 10 * time.Second
	maxProviderBodyBytes = 512 * 1024
)

// providerClient is the HTTP plumbing shared by the provider services:
// rate limiting, status classification and JSON decoding.
type providerClient struct {
	provider  types.ProviderName
	client    *http.Client
	limiter   *RequestLimiter
	baseURL   string
	userAgent string
	headers   http.Header
	log       logger.Logger
}

func newProviderClient(
	provider types.ProviderName,
	client *http.Client,
	interval time.Duration,
	baseURL string,
	userAgent string,
) *providerClient {
	if client == nil {
		client = &http.Client{}
	}
	if client.Timeout == 0 {
		client.Timeout = providerTimeout
	}

	return &providerClient{
		provider:  provider,
		client:    client,
		limiter:   NewRequestLimiter(interval),
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		headers:   http.Header{},
		log:       logger.New("providerClient").With("provider", string(provider)),
	}
}

func (p *providerClient) providerError(status int, err error) *types.ProviderError {
	return &types.ProviderError{Provider: p.provider, StatusCode: status, Err: err}
}

// getJSON fetches path with params and decodes the body into out. It
// returns false with a nil error when the provider has nothing for the
// request (404 or 204). Every other failure is a *types.ProviderError.
func (p *providerClient) getJSON(
	ctx context.Context,
	path string,
	params url.Values,
	out any,
) (bool, error) {
	log := p.log.Function("getJSON")

	if err := p.limiter.Wait(ctx); err != nil {
		return false, p.providerError(0, fmt.Errorf("rate limiter: %w", err))
	}

	reqURL := p.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, p.providerError(0, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	for key, values := range p.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	log.Debug("requesting", "path", path)

	resp, err := p.client.Do(req)
	if err != nil {
		return false, p.providerError(0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusNoContent:
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, p.providerError(resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderBodyBytes))
	if err != nil {
		return false, p.providerError(resp.StatusCode, fmt.Errorf("reading body: %w", err))
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return false, p.providerError(resp.StatusCode, fmt.Errorf("decoding body: %w", err))
	}

	return true, nil
}

// flexInt decodes counts that some providers send as JSON strings.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*f = 0
		return nil
	}

	n := json.Number(raw)
	value, err := n.Int64()
	if err != nil {
		parsed, ferr := n.Float64()
		if ferr != nil {
			return fmt.Errorf("invalid count %q: %w", raw, err)
		}
		value = int64(parsed)
	}

	*f = flexInt(value)
	return nil
}
