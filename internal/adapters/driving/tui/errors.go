package tui

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("tui: answer service is required")

// ErrMissingUser is returned when no valid user id is configured.
var ErrMissingUser = errors.New("tui: user id is required")
