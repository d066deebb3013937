package model

import "github.com/pkg/errors"

var (
	// ErrNoBreakpointIDGiven is returned by Breakpoints.ApplyEvent when a
	// "removed" breakpoint event carries no id to remove by.
	ErrNoBreakpointIDGiven = errors.New("model: breakpoint event missing id")
	// ErrBreakpointDoesNotExist is returned by Breakpoints.ApplyEvent when a
	// "removed" breakpoint event names an id this session never tracked.
	ErrBreakpointDoesNotExist = errors.New("model: breakpoint does not exist")
)
