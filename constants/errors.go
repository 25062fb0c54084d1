package constant

import "errors"

// Error codes returned by the remote ledger service. The service reports
// failures as string codes on the RPC error envelope; these sentinels carry
// the code as their message so wrapped errors stay comparable with errors.Is.
var (
	// ErrInsufficientFunds maps to ledger error code LDG-0018.
	ErrInsufficientFunds = errors.New("LDG-0018")
	// ErrAccountNotFound maps to ledger error code LDG-0021.
	ErrAccountNotFound = errors.New("LDG-0021")
	// ErrInvalidInstruction maps to ledger error code LDG-0030.
	ErrInvalidInstruction = errors.New("LDG-0030")
	// ErrProgramExecution maps to ledger error code LDG-0041.
	ErrProgramExecution = errors.New("LDG-0041")
	// ErrRateLimited maps to ledger error code LDG-0429.
	ErrRateLimited = errors.New("LDG-0429")
	// ErrServiceUnavailable maps to ledger error code LDG-0503.
	ErrServiceUnavailable = errors.New("LDG-0503")
	// ErrRequestTimeout maps to ledger error code LDG-0504.
	ErrRequestTimeout = errors.New("LDG-0504")
)

// RPC error code strings as they appear on the wire.
const (
	CodeInsufficientFunds  = "LDG-0018"
	CodeAccountNotFound    = "LDG-0021"
	CodeInvalidInstruction = "LDG-0030"
	CodeProgramExecution   = "LDG-0041"
	CodeRateLimited        = "LDG-0429"
	CodeServiceUnavailable = "LDG-0503"
	CodeRequestTimeout     = "LDG-0504"
)
