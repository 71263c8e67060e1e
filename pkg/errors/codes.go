package errors

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "COMMON_000"

	ErrCodeInternal ErrorCode = "COMMON_001"
	ErrCodeConfig   ErrorCode = "COMMON_002"
	ErrCodeOutput   ErrorCode = "COMMON_003"
)

// Structure and canonicalization error codes.
const (
	ErrCodeInput       ErrorCode = "MOL_001"
	ErrCodeLookup      ErrorCode = "MOL_002"
	ErrCodeConvergence ErrorCode = "MOL_003"
	ErrCodeInvariant   ErrorCode = "MOL_004"
)

// Short aliases used at call sites.
const (
	CodeInternal    = ErrCodeInternal
	CodeConfig      = ErrCodeConfig
	CodeOutput      = ErrCodeOutput
	CodeInput       = ErrCodeInput
	CodeLookup      = ErrCodeLookup
	CodeConvergence = ErrCodeConvergence
	CodeInvariant   = ErrCodeInvariant
)

// Process exit statuses used by the command-line front end.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitInput    = 2
	ExitLookup   = 3
	ExitInvalid  = 4
	ExitWarnings = 0
)

// ErrorCodeExitStatus maps ErrorCodes to process exit statuses.
var ErrorCodeExitStatus = map[ErrorCode]int{
	CodeOK:             ExitOK,
	ErrCodeInternal:    ExitFailure,
	ErrCodeConfig:      ExitInvalid,
	ErrCodeOutput:      ExitFailure,
	ErrCodeInput:       ExitInput,
	ErrCodeLookup:      ExitLookup,
	ErrCodeConvergence: ExitWarnings,
	ErrCodeInvariant:   ExitFailure,
}

// ExitCodeFor returns the process exit status for an ErrorCode.
func ExitCodeFor(code ErrorCode) int {
	if status, ok := ErrorCodeExitStatus[code]; ok {
		return status
	}
	return ExitFailure
}
