package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// emptyStoreReason is the deterministic verdict for an empty candidate set.
const emptyStoreReason = "No profiles in database."

// Client wraps a Provider and enforces the oracle contract: one request per
// operation, a hard upper bound on call duration, strict response
// validation, and the empty-store fast path. It never retries; re-capture is
// an operator decision.
type Client struct {
	provider Provider
	timeout  time.Duration
}

// NewClient creates an oracle client. A timeout of zero disables the bound.
func NewClient(provider Provider, timeout time.Duration) *Client {
	return &Client{provider: provider, timeout: timeout}
}

// ProviderName reports which inference backend answers requests.
func (c *Client) ProviderName() string {
	return c.provider.Name()
}

// Usage reports accumulated token usage of the underlying provider.
func (c *Client) Usage() *Usage {
	return c.provider.GetUsage()
}

// RequestFeatureAnalysis asks the oracle to describe the biometric features
// in one capture. All four descriptor fields are guaranteed non-empty on
// success; an incomplete response fails with ErrInvalidResponse.
func (c *Client) RequestFeatureAnalysis(ctx context.Context, imageData []byte) (*FeatureAnalysis, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	analysis, err := c.provider.AnalyzeFeatures(ctx, imageData)
	if err != nil {
		return nil, c.classify(ctx, err)
	}

	if err := validateAnalysis(analysis); err != nil {
		return nil, err
	}
	return analysis, nil
}

// RequestIdentityMatch asks the oracle to compare a capture against the
// candidate profiles. An empty candidate set short-circuits locally with a
// deterministic no-match; the oracle is not contacted. The returned
// ProfileID is the oracle's claim - callers must re-resolve it against the
// live store before treating it as a match.
func (c *Client) RequestIdentityMatch(ctx context.Context, imageData []byte, candidates []Candidate) (*MatchDecision, error) {
	if len(candidates) == 0 {
		return &MatchDecision{Confidence: 0, Reason: emptyStoreReason}, nil
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	decision, err := c.provider.MatchIdentity(ctx, imageData, candidates)
	if err != nil {
		return nil, c.classify(ctx, err)
	}

	if err := validateDecision(decision); err != nil {
		return nil, err
	}
	return decision, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// classify maps provider failures onto the error taxonomy.
func (c *Client) classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w after %s: %v", ErrTimeout, c.timeout, err)
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, ErrInvalidResponse):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

func validateAnalysis(a *FeatureAnalysis) error {
	fields := map[string]string{
		"face": a.Face,
		"iris": a.Iris,
		"ears": a.Ears,
		"eyes": a.Eyes,
	}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: missing required field %q", ErrInvalidResponse, name)
		}
	}
	return nil
}

func validateDecision(d *MatchDecision) error {
	if d.Confidence < 0 || d.Confidence > 100 {
		return fmt.Errorf("%w: confidence %.2f outside [0,100]", ErrInvalidResponse, d.Confidence)
	}
	if strings.TrimSpace(d.Reason) == "" {
		return fmt.Errorf("%w: missing required field %q", ErrInvalidResponse, "reason")
	}
	return nil
}
