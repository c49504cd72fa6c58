package federation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

// HTTPClient dispatches federation requests over HTTP, one limiter per
// operation so a noisy operation can't starve the rate budget of the
// others sharing this client.
type HTTPClient struct {
	endpoint   string
	httpClient *http.Client
	limit      rate.Limit
	burst      int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPClient builds a client posting to endpoint, allowing limit
// requests per second (with burst headroom) per distinct operation.
func NewHTTPClient(endpoint string, limit rate.Limit, burst int) *HTTPClient {
	return &HTTPClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limit:      limit,
		burst:      burst,
		limiters:   make(map[string]*rate.Limiter),
	}
}

func (c *HTTPClient) limiterFor(operation string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[operation]
	if !ok {
		l = rate.NewLimiter(c.limit, c.burst)
		c.limiters[operation] = l
	}
	return l
}

type httpFederationPayload struct {
	TraceID   string                 `json:"trace_id"`
	AgentID   string                 `json:"agent_id"`
	Operation string                 `json:"operation"`
	Payload   map[string]interface{} `json:"payload"`
	RiskTier  string                 `json:"risk_tier"`
}

type httpFederationResponse struct {
	OK     bool        `json:"ok"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
	Source string      `json:"source,omitempty"`
}

func (c *HTTPClient) Request(ctx context.Context, req contracts.FederationRequest) (contracts.FederationResponse, error) {
	if err := c.limiterFor(req.Operation).Wait(ctx); err != nil {
		return contracts.FederationResponse{}, fmt.Errorf("federation: rate limit wait: %w", err)
	}

	body, err := json.Marshal(httpFederationPayload{
		TraceID:   req.TraceID,
		AgentID:   req.AgentID,
		Operation: req.Operation,
		Payload:   req.Payload,
		RiskTier:  string(req.RiskTier),
	})
	if err != nil {
		return contracts.FederationResponse{}, fmt.Errorf("federation: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return contracts.FederationResponse{}, fmt.Errorf("federation: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return contracts.FederationResponse{OK: false, Error: err.Error()}, nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return contracts.FederationResponse{OK: false, Error: err.Error()}, nil
	}

	var parsed httpFederationResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return contracts.FederationResponse{OK: false, Error: fmt.Sprintf("malformed response: %v", err)}, nil
	}

	return contracts.FederationResponse{
		OK:     parsed.OK,
		Result: parsed.Result,
		Error:  parsed.Error,
		Source: parsed.Source,
	}, nil
}
