package conn

import (
	dap "github.com/google/go-dap"
	"github.com/pkg/errors"
)

// ValidateResponse checks an inbound response against the expected-response
// entry it was matched to: its Command must agree, its RequestSeq must
// match, and Success must be true (spec.md §4.4's "parse_validate_response").
// On failure it returns one of the sentinel errors in errors.go, wrapped
// with the response's own Message field when the adapter supplied one.
func ValidateResponse(msg dap.ResponseMessage, expected ExpectedResponse) error {
	resp := msg.GetResponse()
	if resp.RequestSeq != expected.Seq {
		return errors.Wrapf(ErrRequestSeqMismatch, "got request_seq %d, expected %d", resp.RequestSeq, expected.Seq)
	}
	if resp.Command != expected.Command {
		return errors.Wrapf(ErrWrongCommandForResponse, "got %q, expected %q", resp.Command, expected.Command)
	}
	if !resp.Success {
		if resp.Message != "" {
			return errors.Wrap(ErrRequestFailed, resp.Message)
		}
		return ErrRequestFailed
	}
	return nil
}

// EventName returns the Event field of an inbound event message, the key
// handlers dispatch on and handled-events are logged under.
func EventName(msg dap.EventMessage) string {
	return msg.GetEvent().Event
}
