// Package outcome describes why a ledger operation was rejected.
//
// Business-rule failures are values, not errors: every service returns a
// result carrying an optional *Rejection, and reserves the error return for
// storage and infrastructure faults.
package outcome

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a rejection.
type Kind string

const (
	InvalidInput         Kind = "INVALID_INPUT"
	StateConflict        Kind = "STATE_CONFLICT"
	InsufficientResource Kind = "INSUFFICIENT_RESOURCE"
	NotFound             Kind = "NOT_FOUND"
)

// Rejection codes.
const (
	CodeInvalidAmount        = "INVALID_AMOUNT"
	CodeInvalidYear          = "INVALID_YEAR"
	CodeInvalidShip          = "INVALID_SHIP"
	CodeNoSurplus            = "NO_SURPLUS"
	CodeInsufficientSurplus  = "INSUFFICIENT_SURPLUS"
	CodeNoDeficit            = "NO_DEFICIT"
	CodeInsufficientBanked   = "INSUFFICIENT_BANKED"
	CodeBorrowedLastYear     = "BORROWED_LAST_YEAR"
	CodeNoDeficitToBorrow    = "NO_DEFICIT_TO_BORROW"
	CodeDeficitExceedsLimit  = "DEFICIT_EXCEEDS_LIMIT"
	CodeAlreadyBorrowed      = "ALREADY_BORROWED"
	CodeEmptyPool            = "EMPTY_POOL"
	CodeDuplicateMember      = "DUPLICATE_MEMBER"
	CodePoolTotalNegative    = "POOL_TOTAL_NEGATIVE"
	CodeDeficitExitsWorse    = "DEFICIT_EXITS_WORSE"
	CodeSurplusExitsNegative = "SURPLUS_EXITS_NEGATIVE"
	CodeShipAlreadyPooled    = "SHIP_ALREADY_POOLED"
	CodeNoVoyageData         = "NO_VOYAGE_DATA"
	CodeNotFound             = "NOT_FOUND"
)

// Rejection names the violated rule and the figures involved, so a caller can
// correct the input and retry.
type Rejection struct {
	Kind    Kind               `json:"kind"`
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Details map[string]float64 `json:"details,omitempty"`
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

// With adds a numeric detail and returns r for chaining.
func (r *Rejection) With(key string, value float64) *Rejection {
	if r.Details == nil {
		r.Details = make(map[string]float64)
	}
	r.Details[key] = value
	return r
}

// HTTPStatus maps the rejection kind onto a response status.
func (r *Rejection) HTTPStatus() int {
	switch r.Kind {
	case InvalidInput:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case StateConflict:
		return http.StatusConflict
	case InsufficientResource:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func newRejection(kind Kind, code, format string, args ...any) *Rejection {
	return &Rejection{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Invalid(code, format string, args ...any) *Rejection {
	return newRejection(InvalidInput, code, format, args...)
}

func Conflict(code, format string, args ...any) *Rejection {
	return newRejection(StateConflict, code, format, args...)
}

func Insufficient(code, format string, args ...any) *Rejection {
	return newRejection(InsufficientResource, code, format, args...)
}

func Missing(code, format string, args ...any) *Rejection {
	return newRejection(NotFound, code, format, args...)
}

// As extracts a rejection from an error chain.
func As(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
