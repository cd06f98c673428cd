package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NotFound("provider", nil).StatusCode())
	assert.Equal(t, http.StatusBadRequest, BadRequest("bad", nil).StatusCode())
	assert.Equal(t, http.StatusConflict, Conflict("conflict").StatusCode())
	assert.Equal(t, http.StatusUnprocessableEntity, Unprocessable("nope").StatusCode())
	assert.Equal(t, http.StatusForbidden, Forbidden("denied").StatusCode())
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("who").StatusCode())
}

func TestIsCode(t *testing.T) {
	err := Conflict("window overlaps")
	assert.True(t, IsCode(err, ErrConflict))
	assert.False(t, IsCode(err, ErrNotFound))

	wrapped := fmt.Errorf("creating window: %w", err)
	assert.True(t, IsCode(wrapped, ErrConflict))

	assert.False(t, IsCode(errors.New("plain"), ErrConflict))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("row not found")
	err := NotFound("appointment", cause)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "appointment")
}
