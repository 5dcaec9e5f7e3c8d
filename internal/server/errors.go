package server

import (
	"errors"
	"fmt"

	"github.com/roach88/cableclub/internal/party"
	"github.com/roach88/cableclub/internal/schema"
	"github.com/roach88/cableclub/internal/wire"
)

// Disconnect reasons sent to clients.
const (
	ReasonInvalidContent   = "invalid content"
	ReasonNotCableClub     = "not a cable_club message"
	ReasonInvalidVersion   = "invalid version"
	ReasonIncomplete       = "party's stream was incomplete."
	ReasonInvalidParty     = "invalid party"
	ReasonServerError      = "server error"
	ReasonPeerDisconnected = "peer disconnected"
	ReasonClientClosed     = "client disconnected"
	ReasonBusy             = "server busy"
)

// ErrorCode categorizes why a session ended.
type ErrorCode string

const (
	// CodeProtocol is undecodable or abusive input. The connection is
	// dropped without a reply unless rejections are detailed.
	CodeProtocol ErrorCode = "PROTOCOL"

	// CodeExhausted means the request ended before all fields were read.
	CodeExhausted ErrorCode = "EXHAUSTED"

	// CodeValidation means a field or cross-field check failed.
	CodeValidation ErrorCode = "VALIDATION"

	// CodeTransport is a socket failure or a close by the client.
	CodeTransport ErrorCode = "TRANSPORT"

	// CodeRejected is a well-formed request the server refuses.
	CodeRejected ErrorCode = "REJECTED"

	// CodeInternal is a server bug caught at the line boundary.
	CodeInternal ErrorCode = "INTERNAL"

	// CodePeer means the matched peer went away.
	CodePeer ErrorCode = "PEER"
)

// SessionError ends one client's session.
type SessionError struct {
	Code ErrorCode

	// Reason is sent to the client before closing; empty closes silently.
	Reason string

	Err error
}

func (e *SessionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// Message is the disconnect reason as a client would receive it.
func (e *SessionError) Message(detailed bool) string {
	return reasonFor(e, detailed)
}

// sessionEnd builds a SessionError.
func sessionEnd(code ErrorCode, reason string, err error) *SessionError {
	return &SessionError{Code: code, Reason: reason, Err: err}
}

// classifyHeader maps a failure while reading the find header.
func classifyHeader(err error) *SessionError {
	switch {
	case errors.Is(err, wire.ErrExhausted):
		return sessionEnd(CodeExhausted, ReasonIncomplete, err)
	default:
		return sessionEnd(CodeValidation, ReasonInvalidContent, err)
	}
}

// classifyParty maps a failure while reading the party payload.
func classifyParty(err error) *SessionError {
	switch {
	case errors.Is(err, party.ErrFusionDepth):
		return sessionEnd(CodeProtocol, "", err)
	case errors.Is(err, wire.ErrExhausted):
		return sessionEnd(CodeExhausted, ReasonIncomplete, err)
	case schema.IsValidation(err):
		return sessionEnd(CodeValidation, ReasonInvalidParty, err)
	default:
		return sessionEnd(CodeInternal, ReasonServerError, err)
	}
}

// asSessionError wraps anything that is not already a SessionError as an
// internal failure.
func asSessionError(err error) *SessionError {
	var se *SessionError
	if errors.As(err, &se) {
		return se
	}
	return sessionEnd(CodeInternal, ReasonServerError, err)
}

// reasonFor is the text actually sent for se. Detailed mode exposes the
// underlying problem to the client.
func reasonFor(se *SessionError, detailed bool) string {
	if !detailed {
		return se.Reason
	}
	switch se.Code {
	case CodeProtocol:
		return ReasonInvalidContent
	case CodeValidation, CodeExhausted:
		if se.Err != nil {
			return se.Reason + ": " + se.Err.Error()
		}
	}
	return se.Reason
}
