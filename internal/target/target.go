// Package target validates and normalizes user-supplied scan targets before
// any remote call is made.
package target

import (
	"net/url"
	"strings"

	"scanwarden/pkg/errors"
)

// Normalize parses raw as an absolute http or https URL and returns its
// canonical string form. The canonical form is what the monitoring registry
// keys on, so Normalize must be idempotent: feeding its output back in
// yields the same string.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.NewInvalidTargetError(raw, "empty URL")
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", errors.NewInvalidTargetError(raw, err.Error())
	}

	switch u.Scheme {
	case "http", "https":
	default:
		return "", errors.NewInvalidTargetError(raw, "scheme must be http or https")
	}

	if u.Host == "" {
		return "", errors.NewInvalidTargetError(raw, "missing host")
	}

	return u.String(), nil
}
