package conn

import "github.com/pkg/errors"

// Sentinel errors forming the lifecycle/protocol taxonomy of spec.md §7.
// Callers match these with errors.Is. Transport errors such as io.EOF are
// passed through from Poll and ReadOne as the transport reported them.
var (
	ErrSessionNotStarted         = errors.New("conn: session not started")
	ErrAdapterNotSpawned         = errors.New("conn: adapter not spawned")
	ErrAdapterNotDoneInitializing = errors.New("conn: adapter not done initializing")
	ErrAdapterDoesNotSupportRequest = errors.New("conn: adapter does not support request")
	ErrDependencyNotSatisfied    = errors.New("conn: dependency not satisfied")
	ErrWrongCommandForResponse   = errors.New("conn: response command does not match request")
	ErrRequestSeqMismatch        = errors.New("conn: response request_seq does not match any sent request")
	ErrRequestFailed             = errors.New("conn: request failed")
	ErrSourceWithoutID           = errors.New("conn: source has neither path nor sourceReference")
	ErrNoBreakpointIDGiven       = errors.New("conn: breakpoint event missing id")
	ErrBreakpointDoesNotExist    = errors.New("conn: breakpoint does not exist")
	ErrInvalidBreakpointResponse = errors.New("conn: setBreakpoints response length does not match input")
)
