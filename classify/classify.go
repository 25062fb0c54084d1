package classify

import (
	"context"
	"errors"
	"net"
	"strings"

	constant "github.com/LerianStudio/ledger-sdk-golang/constants"
)

// Kind is the taxonomy bucket a failure belongs to.
type Kind string

// Taxonomy kinds. Each kind implies a default retryability; see Retryable.
const (
	KindNetwork           Kind = "network"
	KindTimeout           Kind = "timeout"
	KindRateLimit         Kind = "rate_limit"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindInvalidInput      Kind = "invalid_input"
	KindProgramError      Kind = "program_error"
	KindUnknown           Kind = "unknown"
)

// Retryable reports the default retryability for a kind.
//
// Program errors are deliberately non-retryable: a failed remote-program
// invocation is rarely transient and retrying risks duplicate side effects.
func (k Kind) Retryable() bool {
	switch k {
	case KindNetwork, KindTimeout, KindRateLimit, KindUnknown:
		return true
	default:
		return false
	}
}

// ClassifiedError annotates a failure with its taxonomy kind and
// retryability. The original error is preserved as the cause.
type ClassifiedError struct {
	Kind      Kind
	Retryable bool
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Unwrap returns the original cause.
func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// ErrorCoder is implemented by transport errors that carry a structured
// ledger error code, giving exact classification without text matching.
type ErrorCoder interface {
	error
	ErrorCode() string
}

// KindCarrier is implemented by errors that already know their taxonomy kind.
type KindCarrier interface {
	error
	ErrorKind() Kind
}

// codeKinds maps structured ledger error codes to taxonomy kinds.
var codeKinds = map[string]Kind{
	constant.CodeInsufficientFunds:  KindInsufficientFunds,
	constant.CodeAccountNotFound:    KindInvalidInput,
	constant.CodeInvalidInstruction: KindInvalidInput,
	constant.CodeProgramExecution:   KindProgramError,
	constant.CodeRateLimited:        KindRateLimit,
	constant.CodeServiceUnavailable: KindNetwork,
	constant.CodeRequestTimeout:     KindTimeout,
}

// substringRule is one entry of the ordered fallback table. First match wins.
type substringRule struct {
	patterns []string
	kind     Kind
}

// substringRules is matched in order against the lower-cased error text.
// The remote transport offers no structured taxonomy on legacy paths, so
// these heuristics are the last resort.
var substringRules = []substringRule{
	{[]string{"network", "connection", "timeout", "econnreset"}, KindNetwork},
	{[]string{"rate limit", "too many requests"}, KindRateLimit},
	{[]string{"insufficient", "funds"}, KindInsufficientFunds},
	{[]string{"invalid", "malformed"}, KindInvalidInput},
	{[]string{"program error", "custom program error"}, KindProgramError},
}

// Classify maps any failure to exactly one ClassifiedError. Inputs that are
// already classified are returned unchanged. Classify(nil) returns nil.
func Classify(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	if kind, ok := structuredKind(err); ok {
		return newClassified(kind, err)
	}

	return newClassified(textKind(err.Error()), err)
}

// structuredKind resolves a kind from typed error information, in priority
// order: KindCarrier, ErrorCoder, known sentinels, context and net errors.
func structuredKind(err error) (Kind, bool) {
	var carrier KindCarrier
	if errors.As(err, &carrier) {
		return carrier.ErrorKind(), true
	}

	var coder ErrorCoder
	if errors.As(err, &coder) {
		if kind, ok := codeKinds[coder.ErrorCode()]; ok {
			return kind, true
		}
	}

	for code, kind := range codeKinds {
		if err.Error() == code || errors.Is(err, errorForCode(code)) {
			return kind, true
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout, true
		}

		return KindNetwork, true
	}

	return KindUnknown, false
}

// errorForCode returns the sentinel for a wire code, so wrapped sentinels
// classify through errors.Is.
func errorForCode(code string) error {
	switch code {
	case constant.CodeInsufficientFunds:
		return constant.ErrInsufficientFunds
	case constant.CodeAccountNotFound:
		return constant.ErrAccountNotFound
	case constant.CodeInvalidInstruction:
		return constant.ErrInvalidInstruction
	case constant.CodeProgramExecution:
		return constant.ErrProgramExecution
	case constant.CodeRateLimited:
		return constant.ErrRateLimited
	case constant.CodeServiceUnavailable:
		return constant.ErrServiceUnavailable
	case constant.CodeRequestTimeout:
		return constant.ErrRequestTimeout
	default:
		return nil
	}
}

// textKind resolves a kind from the failure's textual description.
func textKind(message string) Kind {
	lowered := strings.ToLower(message)

	for _, rule := range substringRules {
		for _, pattern := range rule.patterns {
			if strings.Contains(lowered, pattern) {
				return rule.kind
			}
		}
	}

	return KindUnknown
}

func newClassified(kind Kind, err error) *ClassifiedError {
	return &ClassifiedError{
		Kind:      kind,
		Retryable: kind.Retryable(),
		Message:   err.Error(),
		Err:       err,
	}
}
