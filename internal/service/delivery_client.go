package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"webhook-outbox/internal/core/ports"

	"github.com/rs/zerolog"
)

// Delivery request headers. The wire format is fixed; receivers verify the
// signature against "{ts}.{body}".
const (
	HeaderEvent     = "X-Event"
	HeaderTimestamp = "X-Timestamp"
	HeaderSignature = "X-Signature"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// deliveryBody is the JSON body POSTed to the webhook target.
type deliveryBody struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	TS      int64           `json:"ts"`
}

// HTTPDeliveryClient implements ports.DeliveryClient: one signed POST per
// call, bounded by timeout, target revalidated immediately before sending.
type HTTPDeliveryClient struct {
	httpClient HTTPClient
	validator  ports.TargetValidator
	sigSvc     ports.SignatureService
	timeout    time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

// NewHTTPDeliveryClient creates a delivery client.
func NewHTTPDeliveryClient(
	httpClient HTTPClient,
	validator ports.TargetValidator,
	sigSvc ports.SignatureService,
	timeout time.Duration,
	log zerolog.Logger,
) *HTTPDeliveryClient {
	return &HTTPDeliveryClient{
		httpClient: httpClient,
		validator:  validator,
		sigSvc:     sigSvc,
		timeout:    timeout,
		now:        time.Now,
		log:        log,
	}
}

// Send performs the signed POST. It never returns transport failures to the
// caller; every outcome is reported through the DeliveryResult.
func (c *HTTPDeliveryClient) Send(ctx context.Context, url, event string, payload json.RawMessage, secret string) ports.DeliveryResult {
	// Subscriptions can be edited between enqueue and delivery; revalidate
	// the target right before the request leaves.
	if err := c.validator.Validate(ctx, url); err != nil {
		return ports.DeliveryResult{Err: fmt.Sprintf("target rejected: %v", err)}
	}

	ts := c.now().Unix()
	body, err := json.Marshal(deliveryBody{Event: event, Payload: payload, TS: ts})
	if err != nil {
		return ports.DeliveryResult{Err: fmt.Sprintf("marshaling body: %v", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return ports.DeliveryResult{Err: fmt.Sprintf("building request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEvent, event)
	req.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	if secret != "" {
		req.Header.Set(HeaderSignature, c.sigSvc.Sign(secret, SignedPayload(ts, body)))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.DeliveryResult{Err: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()
	// Drain so the transport can reuse the connection.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return ports.DeliveryResult{OK: true, StatusCode: &code}
	}
	return ports.DeliveryResult{StatusCode: &code, Err: fmt.Sprintf("non-2xx response: %d", code)}
}
