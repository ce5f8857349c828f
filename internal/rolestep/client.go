package rolestep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Compile-time interface check.
var _ Producer = (*HTTPClient)(nil)

// HTTPClient is a Producer that forwards step requests to remote producers
// over HTTP JSON-RPC, one endpoint per role.
type HTTPClient struct {
	endpoints map[string]string // role id -> base URL
	http      *http.Client
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.http = hc
	}
}

// NewHTTPClient creates a client routing each role to its endpoint. The
// default transport has no overall timeout; per-step deadlines come from the
// caller's context.
func NewHTTPClient(endpoints map[string]string, opts ...ClientOption) *HTTPClient {
	eps := make(map[string]string, len(endpoints))
	for role, url := range endpoints {
		eps[role] = strings.TrimRight(url, "/")
	}
	c := &HTTPClient{
		endpoints: eps,
		http:      &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the configured base URL for a role.
func (c *HTTPClient) Endpoint(role string) (string, bool) {
	ep, ok := c.endpoints[role]
	return ep, ok
}

// Produce sends the step request to the role's endpoint via the step/produce
// JSON-RPC method.
func (c *HTTPClient) Produce(ctx context.Context, req StepRequest) (*StepResult, error) {
	endpoint, ok := c.endpoints[req.Role]
	if !ok {
		return nil, fmt.Errorf("rolestep: no endpoint configured for role %q", req.Role)
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	var result StepResult
	if err := c.call(ctx, endpoint, MethodProduce, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Discover fetches the RoleCard from a producer's well-known URI.
func (c *HTTPClient) Discover(ctx context.Context, baseURL string) (*RoleCard, error) {
	url := strings.TrimRight(baseURL, "/") + WellKnownCardPath

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("rolestep: create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("rolestep: discover producer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("rolestep: discover producer: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var card RoleCard
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return nil, fmt.Errorf("rolestep: decode role card: %w", err)
	}
	return &card, nil
}

// call performs a JSON-RPC 2.0 call over HTTP POST.
func (c *HTTPClient) call(ctx context.Context, endpoint, method string, params any, result any) error {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("rolestep: marshal params: %w", err)
	}

	rpcReq := JSONRPCRequest{
		JSONRPC: JSONRPCVersion,
		ID:      uuid.NewString(),
		Method:  method,
		Params:  paramsJSON,
	}

	body, err := json.Marshal(rpcReq)
	if err != nil {
		return fmt.Errorf("rolestep: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("rolestep: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("rolestep: %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("rolestep: %s: HTTP %d: %s", method, resp.StatusCode, string(b))
	}

	var rpcResp JSONRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("rolestep: decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("rolestep: %s: rpc error %d: %s", method, rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("rolestep: unmarshal result: %w", err)
	}
	return nil
}

// defaultDiscoverTimeout bounds a single card fetch during probing.
const defaultDiscoverTimeout = 500 * time.Millisecond
