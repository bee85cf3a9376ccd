// Package apperr classifies every error the pipeline produces into the
// taxonomy spec.md §7 names, so callers can decide retry/propagate/swallow
// behavior from the class alone instead of string-matching.
package apperr

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
)

// Class is one member of the error taxonomy.
type Class int

const (
	// TransientExternal covers transport errors, 5xx, and explorer rate-limit
	// messages. The gateway retries these up to MAX_ATTEMPTS.
	TransientExternal Class = iota
	// PermanentExternal covers 4xx (other than rate limit), AI content-filter
	// rejections, and structurally unparseable responses. No retry.
	PermanentExternal
	// DomainEmpty is the explorer's "No transactions found" sentinel, treated
	// as an empty success rather than a failure.
	DomainEmpty
	// OnChainRead is a failed allowance/name/bytecode read. Swallowed by the
	// adapter and surfaced to callers as an unknown value, never an error that
	// aborts the worker.
	OnChainRead
	// WorkerFatal is an error escaping an analyzer. The job is marked failed;
	// it is not retried automatically.
	WorkerFatal
	// TimeoutExceeded is a gateway caller timeout. The persisted ApiRequest
	// may still complete later and becomes the reaper's concern.
	TimeoutExceeded
)

func (c Class) String() string {
	switch c {
	case TransientExternal:
		return "transient_external"
	case PermanentExternal:
		return "permanent_external"
	case DomainEmpty:
		return "domain_empty"
	case OnChainRead:
		return "on_chain_read"
	case WorkerFatal:
		return "worker_fatal"
	case TimeoutExceeded:
		return "timeout_exceeded"
	default:
		return "unknown"
	}
}

// Level is the log severity associated with a class, mirroring the teacher's
// errs.Errors.Level(code) function that maps a code to a logger.LogLevel.
func (c Class) Level() log.Lvl {
	switch c {
	case DomainEmpty, OnChainRead:
		return log.LvlDebug
	case TransientExternal, TimeoutExceeded:
		return log.LvlWarn
	case PermanentExternal, WorkerFatal:
		return log.LvlError
	default:
		return log.LvlError
	}
}

// Retryable reports whether the queue-level semantics for this class allow a
// pending->processing->pending cycle (ApiRequest) or a next-scheduled-run
// retry (AnalysisJob). DomainEmpty and OnChainRead never reach here as errors
// at all; they're handled as success paths by callers.
func (c Class) Retryable() bool {
	return c == TransientExternal
}

// Error is a classified error that remembers its class alongside the
// underlying cause, the way teacher's errs.Error remembered Package+Level.
type Error struct {
	Class   Class
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Class, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Class, e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Fatal reports whether this error should be treated as terminal by the
// caller's retry loop (mirrors the teacher's Errors.Fatal()).
func (e *Error) Fatal() bool { return !e.Class.Retryable() }

// New builds a classified error.
func New(class Class, op, format string, args ...any) *Error {
	return &Error{Class: class, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an existing error.
func Wrap(class Class, op string, cause error) *Error {
	return &Error{Class: class, Op: op, Message: cause.Error(), Cause: cause}
}

// As extracts a *Error from err if any wrapper in its chain is one.
func As(err error) (*Error, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}
