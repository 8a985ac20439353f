package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"studyviz/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsCodeOfCause(t *testing.T) {
	base := InvalidInput("page must be a positive integer")
	err := Wrap(base, "load table")

	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.Equal(t, "load table: page must be a positive integer", err.Error())
	assert.True(t, stderrors.Is(err, base))
}

func TestWrap_ClassifiesDomainErrors(t *testing.T) {
	err := Wrap(core.NewUnknownFieldError("dimension", "shoe_size"), "resolve histogram")
	assert.Equal(t, CodeUnknownField, GetCode(err))
	assert.True(t, core.IsUnknownFieldError(err))

	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestDatabaseError(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := DatabaseError(cause, "failed to list views")
	assert.Equal(t, CodeDatabaseError, GetCode(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to list views: connection refused", err.Error())
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(FromDomain(err).Code))

	assert.Nil(t, DatabaseError(nil, "nothing"))
	assert.Equal(t, CodeUnknown, GetCode(fmt.Errorf("plain")))
}

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"unknown record", core.NewUnknownRecordError("x_1"), CodeNotFound, http.StatusNotFound},
		{"unknown node", core.NewUnknownNodeError([]string{"A"}), CodeNotFound, http.StatusNotFound},
		{"unknown field", core.NewUnknownFieldError("grouping", "shoe_size"), CodeUnknownField, http.StatusBadRequest},
		{"invalid parameter", core.NewInvalidParameterError("bin_count", "must be at least 1"), CodeValidationError, http.StatusBadRequest},
		{"malformed input", fmt.Errorf("%w: duplicate field", core.ErrMalformedInput), CodeInvalidInput, http.StatusBadRequest},
		{"unclassified", fmt.Errorf("disk full"), CodeInternalError, http.StatusInternalServerError},
		{"app error", ConfigInvalid("PORT"), CodeConfigInvalid, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromDomain(tt.err)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.status, HTTPStatus(appErr.Code))
		})
	}
	assert.Nil(t, FromDomain(nil))
}
