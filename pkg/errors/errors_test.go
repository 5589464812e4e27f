package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	cases := map[*AppError]int{
		NotFound("dose", nil):          http.StatusNotFound,
		Forbidden("no"):                http.StatusForbidden,
		Conflict("dup", nil):           http.StatusConflict,
		Validation("bad"):              http.StatusBadRequest,
		BadRequest("bad", nil):         http.StatusBadRequest,
		Unauthorized(nil):              http.StatusUnauthorized,
		Upstream("provider down", nil): http.StatusBadGateway,
		Internal(fmt.Errorf("boom")):   http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, err.StatusCode(), err.Message)
	}
}

func TestCodeOfWrapped(t *testing.T) {
	err := fmt.Errorf("resolve: %w", Forbidden("nope"))

	assert.Equal(t, ErrForbidden, CodeOf(err))
	assert.True(t, Is(err, ErrForbidden))
	assert.False(t, Is(err, ErrNotFound))
	assert.Equal(t, ErrInternal, CodeOf(fmt.Errorf("plain")))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "medicine not found", NotFound("medicine", nil).Error())
	assert.Equal(t, "Failed to download file: eof", Upstream("Failed to download file", fmt.Errorf("eof")).Error())
}
