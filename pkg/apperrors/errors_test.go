package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_ThroughWrapping(t *testing.T) {
	base := NotFoundf("item %d not found in %s", 3, "books")
	wrapped := fmt.Errorf("get item: %w", base)

	assert.Equal(t, NotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, NotFound))
	assert.False(t, Is(nil, NotFound))
	assert.Equal(t, Unhandled, KindOf(errors.New("boom")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, BadRequest.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, Validation.HTTPStatus())
	assert.Equal(t, http.StatusNotFound, NotFound.HTTPStatus())
	assert.Equal(t, http.StatusNotAcceptable, NotAcceptable.HTTPStatus())
	assert.Equal(t, http.StatusUnsupportedMediaType, UnsupportedMediaType.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, CorruptedData.HTTPStatus())
}

func TestValidationCarriesAllDetails(t *testing.T) {
	err := NewValidation("item does not match schema", []string{"#/title: is required", "#/year: expected integer"})

	kind, msg, details := Public(err)
	assert.Equal(t, Validation, kind)
	assert.Equal(t, "item does not match schema", msg)
	assert.Len(t, details, 2)
	assert.Contains(t, err.Error(), "#/year: expected integer")
}

func TestPublicHidesInternalCause(t *testing.T) {
	err := Wrap(Unhandled, errors.New("disk on fire"), "persist failed")
	kind, msg, _ := Public(err)
	assert.Equal(t, Unhandled, kind)
	assert.Equal(t, "internal server error", msg)

	kind, msg, _ = Public(errors.New("raw"))
	assert.Equal(t, Unhandled, kind)
	assert.Equal(t, "internal server error", msg)
}
