package riot

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	// Lightweight probe endpoint; does not consume per-method quota.
	defaultStatusEndpoint = "/lol/status/v4/platform-data"

	defaultValidationTimeout = 10 * time.Second
)

// KeyValidator checks an API key against a live endpoint before a run
// starts, so an expired key surfaces as a configuration problem instead of
// mid-sweep failures.
type KeyValidator struct {
	httpClient *http.Client
	baseURL    string
}

// KeyValidatorOption configures a KeyValidator.
type KeyValidatorOption func(*KeyValidator)

// WithValidatorBaseURL sets a custom base URL (useful for testing).
func WithValidatorBaseURL(u string) KeyValidatorOption {
	return func(v *KeyValidator) {
		v.baseURL = u
	}
}

// WithValidatorTimeout sets a custom timeout for validation requests.
func WithValidatorTimeout(timeout time.Duration) KeyValidatorOption {
	return func(v *KeyValidator) {
		v.httpClient.Timeout = timeout
	}
}

// NewKeyValidator creates a KeyValidator probing the given region host.
func NewKeyValidator(region string, opts ...KeyValidatorOption) (*KeyValidator, error) {
	base, err := resolveTemplate(DefaultBaseURLTemplate, map[string]string{"region": region}, false)
	if err != nil {
		return nil, err
	}
	v := &KeyValidator{
		httpClient: &http.Client{
			Timeout: defaultValidationTimeout,
		},
		baseURL: base,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// ValidateKey probes the status endpoint with the given key.
// Returns:
//   - (true, nil) if the key is valid
//   - (false, nil) if the key is invalid (401/403)
//   - (false, error) if the probe itself failed (key validity unknown)
func (v *KeyValidator) ValidateKey(ctx context.Context, apiKey string) (bool, error) {
	if apiKey == "" {
		return false, fmt.Errorf("API key cannot be empty")
	}

	probeURL := v.baseURL + defaultStatusEndpoint + "?api_key=" + url.QueryEscape(apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil

	case http.StatusUnauthorized, http.StatusForbidden:
		return false, nil

	default:
		// Server error or unexpected response - key validity unknown.
		return false, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}
