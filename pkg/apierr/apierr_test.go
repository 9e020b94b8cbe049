package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{Forbidden("not yours"), http.StatusForbidden},
		{Auth("bad token"), http.StatusUnauthorized},
		{Conflict("duplicate"), http.StatusConflict},
		{errors.New("driver exploded"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), "%v", tc.err)
	}
}

func TestKindChecksSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("resolving products: %w", Validation("products not found"))
	assert.True(t, IsValidation(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusBadRequest, Status(wrapped))
}
