package config

import (
	"errors"
	"os"
	"strings"

	"github.com/andrew-solarstorm/go-packages/common"
)

// ProvidersConfig holds the endpoints and credentials for the external
// token/liquidity sources.
type ProvidersConfig struct {
	LiFiBaseURL        string
	DexScreenerBaseURL string
	DeBankBaseURL      string

	// DeBankAPIKeys is the rotating credential pool for the portfolio API.
	DeBankAPIKeys []string

	// KeyRetryAttempts bounds the rotate-and-retry loop on rate limits.
	KeyRetryAttempts int
	// KeyRetryDelayMs is the pause between retry attempts.
	KeyRetryDelayMs int

	// HTTPTimeoutMs bounds every single provider request.
	HTTPTimeoutMs int
}

func (c *ProvidersConfig) Key() string {
	return PROVIDERS_CONFIG_KEY
}

func (c *ProvidersConfig) Load() error {
	c.LiFiBaseURL = common.GetEnvOrDefault("LIFI_BASE_URL", "https://li.quest/v1")
	c.DexScreenerBaseURL = common.GetEnvOrDefault("DEXSCREENER_BASE_URL", "https://api.dexscreener.com")
	c.DeBankBaseURL = common.GetEnvOrDefault("DEBANK_BASE_URL", "https://pro-openapi.debank.com/v1")

	c.DeBankAPIKeys = nil
	for _, k := range strings.Split(os.Getenv("DEBANK_API_KEYS"), ",") {
		if k = strings.TrimSpace(k); k != "" {
			c.DeBankAPIKeys = append(c.DeBankAPIKeys, k)
		}
	}

	c.KeyRetryAttempts = common.GetEnvOrDefaultInt("PROVIDER_KEY_RETRY_ATTEMPTS", 3)
	c.KeyRetryDelayMs = common.GetEnvOrDefaultInt("PROVIDER_KEY_RETRY_DELAY_MS", 250)
	c.HTTPTimeoutMs = common.GetEnvOrDefaultInt("PROVIDER_HTTP_TIMEOUT_MS", 8000)
	return nil
}

func (c *ProvidersConfig) Validate() error {
	if c.LiFiBaseURL == "" || c.DexScreenerBaseURL == "" {
		return errors.New("invalid providers config")
	}
	if c.KeyRetryAttempts < 1 {
		return errors.New("invalid providers config: retry attempts must be >= 1")
	}
	return nil
}
