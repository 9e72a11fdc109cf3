package licensing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/career-architect/internal/logging"
	"github.com/sirupsen/logrus"
)

// DefaultVerifyURL is the licensing authority's verify endpoint.
const DefaultVerifyURL = "https://api.gumroad.com/v2/licenses/verify"

// DefaultTimeout bounds a single verification request.
const DefaultTimeout = 10 * time.Second

// maxResponseBytes caps how much of the service's response is read.
const maxResponseBytes = 1 << 20

// Config holds verifier settings.
type Config struct {
	VerifyURL string
	ProductID string
	Timeout   time.Duration
}

// Verifier checks license keys. It makes exactly one request per call and keeps no state
// between calls.
type Verifier struct {
	cfg    Config
	client *http.Client
	log    *logrus.Logger
}

// Option customizes a Verifier.
type Option func(*Verifier)

// WithHTTPClient replaces the HTTP client. The client's own Timeout is overridden by
// Config.Timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(v *Verifier) {
		if c != nil {
			v.client = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(v *Verifier) {
		if l != nil {
			v.log = l
		}
	}
}

// NewVerifier creates a verifier for the configured product.
func NewVerifier(cfg Config, opts ...Option) *Verifier {
	if cfg.VerifyURL == "" {
		cfg.VerifyURL = DefaultVerifyURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	v := &Verifier{
		cfg:    cfg,
		client: &http.Client{},
		log:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(v)
	}

	client := *v.client
	client.Timeout = cfg.Timeout
	v.client = &client

	return v
}

// verifyResponse is the part of the service's JSON the gate reads.
type verifyResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Purchase *struct {
		Refunded *bool `json:"refunded"`
	} `json:"purchase"`
}

// Verify checks key against the licensing service.
func (v *Verifier) Verify(ctx context.Context, key string) Decision {
	key = strings.TrimSpace(key)
	if key == "" {
		return denied(OutcomeMissingKey, ReasonMissingKey)
	}

	entry := v.log.WithField("key", logging.Fingerprint(key))

	body, err := v.post(ctx, key)
	if err != nil {
		entry.WithError(err).Warn("license service unreachable")
		return denied(OutcomeUnreachable, fmt.Sprintf("connection error: %v", err))
	}

	if err := validateResponse(body); err != nil {
		entry.WithError(err).Warn("license service returned a malformed response")
		return denied(OutcomeBadResponse, fmt.Sprintf("unexpected response from license service: %v", err))
	}

	var resp verifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		entry.WithError(err).Warn("failed to decode license response")
		return denied(OutcomeBadResponse, fmt.Sprintf("unexpected response from license service: %v", err))
	}

	decision := decide(resp)
	entry.WithField("outcome", decision.Outcome).Info("license verified")
	return decision
}

// decide maps a well-formed response onto a decision.
func decide(resp verifyResponse) Decision {
	if !resp.Success {
		return denied(OutcomeInvalidKey, ReasonInvalidKey)
	}
	if resp.Purchase != nil && resp.Purchase.Refunded != nil && *resp.Purchase.Refunded {
		return denied(OutcomeRefunded, ReasonRefunded)
	}
	return granted()
}

// post sends the verification request and returns the raw body. The status code is not
// treated as a failure: invalid keys come back as 404 with a JSON body.
func (v *Verifier) post(ctx context.Context, key string) ([]byte, error) {
	form := url.Values{}
	form.Set("product_id", v.cfg.ProductID)
	form.Set("license_key", key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
