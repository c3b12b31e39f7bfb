package outcome

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRejectionHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Invalid(CodeInvalidAmount, "amount must be positive").HTTPStatus())
	assert.Equal(t, http.StatusConflict, Conflict(CodeAlreadyBorrowed, "already borrowed").HTTPStatus())
	assert.Equal(t, http.StatusUnprocessableEntity, Insufficient(CodeInsufficientBanked, "not enough").HTTPStatus())
	assert.Equal(t, http.StatusNotFound, Missing(CodeNoVoyageData, "no data").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, (&Rejection{Kind: "OTHER"}).HTTPStatus())
}

func TestRejectionDetailsAndError(t *testing.T) {
	r := Insufficient(CodeInsufficientSurplus, "requested %.0f exceeds available %.0f", 500.0, 200.0).
		With("requested", 500).
		With("available", 200)

	assert.Equal(t, "INSUFFICIENT_SURPLUS: requested 500 exceeds available 200", r.Error())
	assert.Equal(t, map[string]float64{"requested": 500, "available": 200}, r.Details)

	var err error = r
	var target *Rejection
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, InsufficientResource, target.Kind)
}
