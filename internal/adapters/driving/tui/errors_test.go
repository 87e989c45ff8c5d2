package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	assert.NotEqual(t, ErrMissingAnswerService.Error(), ErrMissingUser.Error())
}

func TestErrMissingAnswerService_Message(t *testing.T) {
	assert.Contains(t, ErrMissingAnswerService.Error(), "answer service")
}

func TestErrMissingUser_Message(t *testing.T) {
	assert.Contains(t, ErrMissingUser.Error(), "user id")
}
