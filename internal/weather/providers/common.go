package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/i474232898/weather-dashboard/internal/observability"
)

var (
	ErrUpstreamStatus = errors.New("unexpected upstream status")
	ErrCircuitOpen    = errors.New("circuit breaker open")
	errNoHTTPClient   = errors.New("http client not configured")
)

// StatusError carries the non-2xx status returned by a provider.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%v: %d", ErrUpstreamStatus, e.Status)
	}
	return fmt.Sprintf("%v: %d: %s", ErrUpstreamStatus, e.Status, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUpstreamStatus }

// maxErrorBody bounds how much of a failed response is kept for logging.
const maxErrorBody = 512

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// getJSON issues a single GET through the circuit breaker and decodes a 2xx
// body into out. There are no retries: a failed call is reported to the
// caller, which decides whether an alternate endpoint exists.
func getJSON(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	provider, endpoint, rawURL string,
	out any,
) (err error) {
	ctx, span := observability.Tracer().Start(ctx, provider+"."+endpoint)
	span.SetAttributes(attribute.String("provider", provider), attribute.String("endpoint", endpoint))
	defer func() {
		observability.ProviderRequests.WithLabelValues(provider, endpoint, observability.Outcome(err)).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if client == nil {
		return errNoHTTPClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			resp.Body.Close()
			return nil, &StatusError{Status: resp.StatusCode, Body: string(body)}
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return fmt.Errorf("unexpected result type from circuit breaker")
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// firstLabel returns weather[0].main from OpenWeather style payloads.
func firstLabel(items []owmCondition) string {
	if len(items) == 0 {
		return ""
	}
	return items[0].Main
}

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}
