package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"

	"github.com/hxuan190/omniswap-engine/internal/common"
	"github.com/hxuan190/omniswap-engine/internal/metrics"
)

// httpClient is the shared outbound client for all adapters. One bounded
// timeout per request; adapters never retry on their own (the key pool
// owns retries for credentialed sources).
type httpClient struct {
	client   *http.Client
	provider string
}

func newHTTPClient(provider string, timeout time.Duration) *httpClient {
	return &httpClient{
		client:   &http.Client{Timeout: timeout},
		provider: provider,
	}
}

// getJSON performs a GET and decodes the body into out. A 429 maps to
// common.ErrRateLimited so the key pool can rotate; every other failure
// wraps common.ErrProviderUnavailable.
func (h *httpClient) getJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	start := time.Now()
	err := h.doGetJSON(ctx, url, headers, out)
	metrics.ProviderDuration.WithLabelValues(h.provider).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(h.provider, "error").Inc()
		return err
	}
	metrics.ProviderRequests.WithLabelValues(h.provider, "ok").Inc()
	return nil
}

func (h *httpClient) doGetJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", common.ErrRateLimited, h.provider)
	}
	if resp.StatusCode != http.StatusOK {
		// Provider error bodies are loosely shaped; pull whatever message
		// field exists without committing to a schema.
		msg := gjson.GetBytes(body, "message").String()
		if msg == "" {
			msg = gjson.GetBytes(body, "error").String()
		}
		return fmt.Errorf("%w: %s status %d %s", common.ErrProviderUnavailable, h.provider, resp.StatusCode, msg)
	}

	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s malformed response: %v", common.ErrProviderUnavailable, h.provider, err)
	}
	return nil
}
