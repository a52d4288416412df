package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Classification(t *testing.T) {
	err := fmt.Errorf("register: %w", NewError(ErrAlreadyExists, "An account with the name %s already exists.", "alice"))

	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Equal(t, "An account with the name alice already exists.", UserMessage(err, "fallback"))
}

func TestUserMessage_Fallback(t *testing.T) {
	assert.Equal(t, "fallback", UserMessage(errors.New("boom"), "fallback"))
	assert.Equal(t, "fallback", UserMessage(nil, "fallback"))
}
