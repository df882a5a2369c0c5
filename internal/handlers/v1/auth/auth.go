// Package auth resolves the acting user for a request. The server trusts
// the X-User-ID header set by the fronting gateway; there is no session
// handling here.
package auth

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
)

// UserID parses the X-User-ID header value. Missing or malformed values
// reject the request before any service call runs.
func UserID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, huma.NewError(http.StatusUnauthorized, "missing X-User-ID header")
	}
	id, err := uuid.FromString(raw)
	if err != nil {
		return uuid.Nil, huma.NewError(http.StatusUnauthorized, "invalid X-User-ID header", err)
	}
	return id, nil
}
