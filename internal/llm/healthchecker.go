package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// ProviderHealthChecker monitors an OpenAI-compatible endpoint by probing its
// model listing. It never spends tokens on a probe.
type ProviderHealthChecker struct {
	client       *resty.Client
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

// NewProviderHealthChecker creates a checker for the given base URL and key.
func NewProviderHealthChecker(baseURL, apiKey string, log zerolog.Logger, probeTimeout time.Duration) *ProviderHealthChecker {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")

	hc := &ProviderHealthChecker{client: c, log: log, probeTimeout: probeTimeout}
	hc.healthy.Store(0) // start unhealthy until first successful probe
	return hc
}

func (c *ProviderHealthChecker) Name() string    { return "reasoning" }
func (c *ProviderHealthChecker) IsHealthy() bool { return c.healthy.Load() == 1 }

// Start begins periodic health checking.
func (c *ProviderHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	run := func() {
		to := c.probeTimeout
		if to <= 0 {
			to = 2 * time.Second
		}
		checkCtx, cancel := context.WithTimeout(ctx, to)
		defer cancel()

		if err := c.probe(checkCtx); err != nil {
			c.healthy.Store(0)
			c.log.Error().Str("checker", c.Name()).Err(err).Msg("reasoning provider health check failed")
			return
		}
		c.healthy.Store(1)
	}

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

func (c *ProviderHealthChecker) probe(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/models")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("models endpoint status %d", resp.StatusCode())
	}
	return nil
}
