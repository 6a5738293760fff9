package optimization

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"outlet-route-service/internal/adapters/cache"
	"outlet-route-service/internal/metrics"
	"outlet-route-service/internal/platform/obs"
	"outlet-route-service/internal/ports"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 8 << 20

// ORSOptimizer implements ports.Optimizer using the OpenRouteService
// optimization endpoint.
//
// It coordinates:
//   - Translation between location ids and ORS integer job ids
//   - Client-side rate limiting against the ORS quota
//   - Retry/backoff on transient failures
//   - An optional Redis cache of raw responses
//
// The optimizer is safe for concurrent use.
type ORSOptimizer struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
	limiter *rate.Limiter
	cache   *cache.RedisOptimizationCache

	maxAttempts    int
	initialBackoff time.Duration
}

type ORSOptions struct {
	BaseURL string
	Profile string

	// Zero disables client-side rate limiting.
	RequestsPerMinute int

	// Nil disables result caching.
	Cache      *cache.RedisOptimizationCache
	HTTPClient *http.Client
}

func NewORSOptimizer(apiKey string, opts ORSOptions) (*ORSOptimizer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}

	o := &ORSOptimizer{
		session:        opts.HTTPClient,
		apiKey:         apiKey,
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		profile:        opts.Profile,
		cache:          opts.Cache,
		maxAttempts:    4,
		initialBackoff: 200 * time.Millisecond,
	}

	if o.session == nil {
		o.session = &http.Client{Timeout: 60 * time.Second}
	}
	if o.baseURL == "" {
		o.baseURL = "https://api.openrouteservice.org"
	}
	if o.profile == "" {
		o.profile = "driving-car"
	}
	if opts.RequestsPerMinute > 0 {
		o.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}

	return o, nil
}

// Optimize submits the jobs and vehicles to ORS and returns the routes.
func (o *ORSOptimizer) Optimize(
	ctx context.Context,
	req ports.OptimizationRequest,
) (_ *ports.OptimizationResult, err error) {
	defer obs.Time(ctx, "ors.Optimize")(&err)

	start := time.Now()
	defer func() {
		metrics.OptimizerLatency.Observe(time.Since(start).Seconds())
		metrics.OptimizerCalls.WithLabelValues(outcome(err)).Inc()
	}()

	wire, refs, err := o.buildRequest(req)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	payload, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("optimize: marshal request: %w", err)
	}

	key := cacheKey(payload)
	if res, ok := o.fromCache(ctx, key, refs); ok {
		return res, nil
	}

	endpoint := o.baseURL + "/optimization"
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("optimize: request failed: %w", classify(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("optimize: read response: %w", classify(err))
	}

	res, err := decodeResponse(body, refs)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	if o.cache != nil {
		if err := o.cache.PutResponse(ctx, key, body); err != nil {
			log.Warn().Err(err).Str("req_id", obs.RequestID(ctx)).Msg("optimization cache write failed")
		}
	}

	return res, nil
}

// fromCache returns a cached result when one exists and still decodes.
// Cache problems are logged and treated as a miss.
func (o *ORSOptimizer) fromCache(ctx context.Context, key string, refs []string) (*ports.OptimizationResult, bool) {
	if o.cache == nil {
		return nil, false
	}

	body, ok, err := o.cache.GetResponse(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("req_id", obs.RequestID(ctx)).Msg("optimization cache read failed")
		metrics.OptimizerCache.WithLabelValues("error").Inc()
		return nil, false
	}
	if !ok {
		metrics.OptimizerCache.WithLabelValues("miss").Inc()
		return nil, false
	}

	res, err := decodeResponse(body, refs)
	if err != nil {
		log.Warn().Err(err).Str("req_id", obs.RequestID(ctx)).Msg("discarding unreadable cached optimization")
		metrics.OptimizerCache.WithLabelValues("error").Inc()
		return nil, false
	}

	metrics.OptimizerCache.WithLabelValues("hit").Inc()
	return res, true
}

func cacheKey(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ports.ErrOptimizerUnavailable):
		return "unavailable"
	case errors.Is(err, ports.ErrOptimizerRejected):
		return "rejected"
	case errors.Is(err, ports.ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, ports.ErrNoRoute):
		return "no_route"
	default:
		return "error"
	}
}
