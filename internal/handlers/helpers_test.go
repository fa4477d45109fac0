package handlers

import (
	"errors"

	"littlehttp/internal/http1"
)

func isIOFailure(err error) bool { return errors.Is(err, http1.ErrIOFailure) }
