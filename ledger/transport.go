package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/LerianStudio/ledger-sdk-golang/classify"
	constant "github.com/LerianStudio/ledger-sdk-golang/constants"
)

// Transport issues one method call against the remote ledger service and
// decodes the result into result. Implementations must honor ctx.
type Transport interface {
	Call(ctx context.Context, method string, params any, result any) error
}

// RPCError is a structured failure reported by the service. It implements
// classify.ErrorCoder, so the classifier resolves it without text matching.
type RPCError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("ledger rpc error %s: %s", e.Code, e.Message)
}

// ErrorCode implements classify.ErrorCoder.
func (e *RPCError) ErrorCode() string {
	return e.Code
}

var _ classify.ErrorCoder = (*RPCError)(nil)

// rpcRequest is the wire envelope for one call.
type rpcRequest struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// rpcResponse is the wire envelope for one reply.
type rpcResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *RPCError       `json:"error,omitempty"`
}

const defaultHTTPTimeout = 30 * time.Second

// HTTPTransport calls the ledger service's JSON endpoint.
type HTTPTransport struct {
	endpoint string
	client   *http.Client
}

// HTTPTransportOption configures an HTTPTransport.
type HTTPTransportOption func(*HTTPTransport)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.client = client
	}
}

// NewHTTPTransport creates a transport targeting endpoint.
func NewHTTPTransport(endpoint string, opts ...HTTPTransportOption) *HTTPTransport {
	t := &HTTPTransport{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultHTTPTimeout},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// wireCodeForStatus maps HTTP statuses that commonly arrive without an error
// envelope to their wire codes. Unmapped statuses return "".
func wireCodeForStatus(status int) string {
	switch status {
	case http.StatusTooManyRequests:
		return constant.CodeRateLimited
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return constant.CodeServiceUnavailable
	case http.StatusGatewayTimeout:
		return constant.CodeRequestTimeout
	default:
		return ""
	}
}

// Call implements Transport.
func (t *HTTPTransport) Call(ctx context.Context, method string, params any, result any) error {
	payload, err := json.Marshal(rpcRequest{Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	var envelope rpcResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode %s response (status %d): %w", method, resp.StatusCode, err)
	}

	if envelope.Error != nil {
		return envelope.Error
	}

	if resp.StatusCode != http.StatusOK {
		// Proxies and load balancers answer without the error envelope; map
		// their well-known statuses to wire codes so classification stays
		// structured.
		if code := wireCodeForStatus(resp.StatusCode); code != "" {
			return &RPCError{Code: code, Message: fmt.Sprintf("call %s: status %d", method, resp.StatusCode)}
		}

		return fmt.Errorf("call %s: unexpected status %d", method, resp.StatusCode)
	}

	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}

	return nil
}
