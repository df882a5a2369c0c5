// Package httperr maps the internal error taxonomy onto HTTP status
// codes at the handler boundary. Handlers never branch on error strings.
package httperr

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/errs"
)

// From converts a service error into a Huma status error. Errors that
// already carry an HTTP status pass through untouched.
func From(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(huma.StatusError); ok {
		return err
	}
	return huma.NewError(statusFor(errs.KindOf(err)), err.Error())
}

func statusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindInvalidState, errs.KindConflict:
		return http.StatusConflict
	case errs.KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
