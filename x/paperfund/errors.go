package paperfund

import (
	"github.com/iov-one/weave/errors"
)

var (
	// ErrPaperStatus is returned when an operation is not allowed for the
	// current status of a paper.
	ErrPaperStatus = errors.Register(1200, "invalid paper status")

	// ErrPaused is returned when the platform pause switch is on.
	ErrPaused = errors.Register(1201, "platform paused")

	// ErrNoFunds is returned when claiming a paper whose escrow account is
	// empty.
	ErrNoFunds = errors.Register(1202, "no funds to claim")
)
