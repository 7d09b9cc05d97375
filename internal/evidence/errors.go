package evidence

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNoAPIKey is returned without any network call when a provider has no key
var ErrNoAPIKey = errors.New("no API key configured")

// ProviderError describes a failed evidence lookup. Callers treat it as an
// empty result.
type ProviderError struct {
	Provider string // "factcheck" or "search"
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// redactedError hides a secret in the message of the error it wraps
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// withoutSecret drops the request URL from transport errors, which would
// otherwise carry a query-string key into logs, and masks any remaining
// occurrence of secret
func withoutSecret(err error, secret, endpoint string) error {
	if err == nil {
		return nil
	}

	var ue *url.Error
	if errors.As(err, &ue) {
		err = &url.Error{Op: ue.Op, URL: endpoint, Err: ue.Err}
	}

	if secret != "" && strings.Contains(err.Error(), secret) {
		return &redactedError{msg: strings.ReplaceAll(err.Error(), secret, "[redacted]"), err: err}
	}
	return err
}
