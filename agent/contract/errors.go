package contract

import "errors"

var (
	ErrUnknownAgent       = errors.New("unknown agent")
	ErrUnknownTool        = errors.New("unknown tool")
	ErrToolDisabled       = errors.New("tool disabled")
	ErrInvalidArguments   = errors.New("invalid arguments")
	ErrLLMUnavailable     = errors.New("llm unavailable")
	ErrBankAPIUnavailable = errors.New("bank api unavailable")
	ErrInternal           = errors.New("internal error")
)

const (
	ErrorKindUnknownAgent       = "UnknownAgent"
	ErrorKindUnknownTool        = "UnknownTool"
	ErrorKindToolDisabled       = "ToolDisabled"
	ErrorKindInvalidArguments   = "InvalidArguments"
	ErrorKindLlmUnavailable     = "LlmUnavailable"
	ErrorKindBankAPIUnavailable = "BankApiUnavailable"
	ErrorKindInternal           = "InternalError"
)

// ErrorKind maps an error to the envelope error kind reported to callers.
// Anything unclassified collapses to InternalError so internal detail never
// crosses the dispatcher boundary.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrUnknownAgent):
		return ErrorKindUnknownAgent
	case errors.Is(err, ErrUnknownTool):
		return ErrorKindUnknownTool
	case errors.Is(err, ErrToolDisabled):
		return ErrorKindToolDisabled
	case errors.Is(err, ErrInvalidArguments):
		return ErrorKindInvalidArguments
	case errors.Is(err, ErrLLMUnavailable):
		return ErrorKindLlmUnavailable
	case errors.Is(err, ErrBankAPIUnavailable):
		return ErrorKindBankAPIUnavailable
	default:
		return ErrorKindInternal
	}
}
