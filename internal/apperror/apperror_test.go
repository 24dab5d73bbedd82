package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, Code(NotFound("User not found")))
	assert.Equal(t, http.StatusTooManyRequests, Code(fmt.Errorf("outer: %w", TooManyRequests("slow down"))))
	assert.Equal(t, http.StatusInternalServerError, Code(errors.New("boom")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("smtp down")
	err := Internal("Failed to send verification email. Please try again.", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to send verification email. Please try again.: smtp down", err.Error())
	assert.Equal(t, "Failed to send verification email. Please try again.", err.Message)
}
