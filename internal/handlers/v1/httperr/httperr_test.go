package httperr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"

	"github.com/carson-networks/ledger-server/internal/errs"
)

func TestFrom(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", errs.Validation("amount must be positive"), http.StatusBadRequest},
		{"not found", errs.NotFound("transaction missing"), http.StatusNotFound},
		{"invalid state", errs.InvalidState("bill already paid"), http.StatusConflict},
		{"conflict", errs.New(errs.KindConflict, "concurrent update"), http.StatusConflict},
		{"external", errs.New(errs.KindExternal, "provider unavailable"), http.StatusBadGateway},
		{"untyped", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			converted := From(tc.err)
			statusErr, ok := converted.(huma.StatusError)
			assert.True(t, ok)
			assert.Equal(t, tc.want, statusErr.GetStatus())
		})
	}
}

func TestFromPassesThroughStatusErrors(t *testing.T) {
	original := huma.NewError(http.StatusTeapot, "short and stout")
	assert.Equal(t, original, From(original))
}

func TestFromNil(t *testing.T) {
	assert.NoError(t, From(nil))
}
