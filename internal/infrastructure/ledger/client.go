// Package ledger is the gateway every operation against the remote ledger
// backend goes through. It speaks the JSON-RPC dispatcher protocol and
// classifies each outcome as ok, backend rejection or transport failure.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/erp/connector/internal/infrastructure/logger"
	"github.com/erp/connector/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Executor runs ORM operations on behalf of a credential.
type Executor interface {
	Execute(ctx context.Context, cred identity.Credential, model, operation string, params []any, kwargs map[string]any) (json.RawMessage, error)
}

// Client is the JSON-RPC gateway to the ledger.
type Client struct {
	url              string
	httpClient       *http.Client
	maxResponseBytes int64
	logger           *zap.Logger
	metrics          *callMetrics
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger for the client
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new ledger gateway
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	c := &Client{
		url:              cfg.URL,
		httpClient:       &http.Client{Timeout: cfg.Timeout},
		maxResponseBytes: cfg.MaxResponseBytes,
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	m, err := newCallMetrics()
	if err != nil {
		return nil, fmt.Errorf("ledger: failed to create metrics: %w", err)
	}
	c.metrics = m
	return c, nil
}

// Execute runs object/execute_kw with args [db, uid, password, model, operation, params, kwargs]
func (c *Client) Execute(ctx context.Context, cred identity.Credential, model, operation string, params []any, kwargs map[string]any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}

	ctx, span := telemetry.StartSpan(ctx, "ledger."+model+"."+operation,
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute("ledger.model", model),
		telemetry.WithAttribute("ledger.operation", operation),
		telemetry.WithAttribute("ledger.db", cred.DB()),
	)
	defer span.End()

	args := []any{cred.DB(), cred.UID(), cred.Password(), model, operation, params, kwargs}
	result, err := c.call(ctx, ServiceObject, MethodExecuteKW, model, operation, args)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

// Login runs common/login and returns the ledger uid. The ledger answers
// false for unknown users or wrong passwords.
func (c *Client) Login(ctx context.Context, db, username, password string) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "ledger.common.login",
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute("ledger.db", db),
	)
	defer span.End()

	result, err := c.call(ctx, ServiceCommon, MethodLogin, "common", MethodLogin, []any{db, username, password})
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, err
	}

	var uid int64
	if err := json.Unmarshal(result, &uid); err != nil || uid <= 0 {
		return 0, shared.NewDomainError(shared.CodeUnauthorized, "invalid ledger credentials")
	}
	return uid, nil
}

// Version runs common/version, used as a reachability probe
func (c *Client) Version(ctx context.Context) (map[string]any, error) {
	result, err := c.call(ctx, ServiceCommon, MethodVersion, "common", MethodVersion, []any{})
	if err != nil {
		return nil, err
	}
	var v map[string]any
	if err := json.Unmarshal(result, &v); err != nil {
		return nil, shared.NewTransportError("ledger returned an unparsable version payload", err)
	}
	return v, nil
}

// Call posts a raw dispatcher request and returns the result payload.
func (c *Client) Call(ctx context.Context, service, method string, args ...any) (json.RawMessage, error) {
	if args == nil {
		args = []any{}
	}
	return c.call(ctx, service, method, service, method, args)
}

func (c *Client) call(ctx context.Context, service, method, model, operation string, args []any) (json.RawMessage, error) {
	start := time.Now()
	result, err := c.doRequest(ctx, service, method, args)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = shared.KindOf(err).String()
	}
	c.metrics.record(ctx, elapsed,
		attribute.String("service", service),
		attribute.String("model", model),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)

	log := logger.FromContextOr(ctx, c.logger)
	fields := []zap.Field{
		zap.String("service", service),
		zap.String("model", model),
		zap.String("operation", operation),
		zap.Duration("latency", elapsed),
	}
	switch shared.KindOf(err) {
	case 0:
		log.Debug("Ledger call", fields...)
	case shared.KindTransport:
		log.Error("Ledger call failed", append(fields, zap.Error(err))...)
	default:
		log.Warn("Ledger call rejected", append(fields, zap.String("reason", err.Error()))...)
	}
	return result, err
}

func (c *Client) doRequest(ctx context.Context, service, method string, args []any) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  rpcParams{Service: service, Method: method, Args: args},
		ID:      uuid.NewString(),
	})
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("ledger: failed to marshal request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, shared.NewTransportError("ledger: failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, shared.NewTransportError("ledger call cancelled", err)
		}
		return nil, shared.NewTransportError("ledger backend unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		return nil, shared.NewTransportError("ledger: failed to read response", err)
	}
	if int64(len(raw)) > c.maxResponseBytes {
		return nil, shared.NewTransportError(fmt.Sprintf("ledger response exceeds %d bytes", c.maxResponseBytes), nil)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, shared.NewTransportError(fmt.Sprintf("ledger backend returned HTTP %d", resp.StatusCode), nil)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, shared.NewBackendError(fmt.Sprintf("ledger backend returned HTTP %d", resp.StatusCode), nil)
		}
		return nil, shared.NewTransportError("ledger returned an unparsable response", err)
	}

	if rpcResp.Error != nil {
		return nil, shared.NewBackendError(rpcResp.Error.Text(), rpcResp.Error)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, shared.NewBackendError(fmt.Sprintf("ledger backend returned HTTP %d", resp.StatusCode), nil)
	}
	if len(rpcResp.Result) == 0 {
		return nil, shared.NewTransportError("ledger response carries neither result nor error", nil)
	}
	return rpcResp.Result, nil
}

// Interface compliance check
var _ Executor = (*Client)(nil)
