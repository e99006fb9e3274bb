package cli

import (
	"errors"

	"github.com/roach88/agraph/internal/prolog"
	"github.com/roach88/agraph/internal/session"
	"github.com/roach88/agraph/internal/transport"
)

// Error code constants, unified across all commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeLoadFailed  = "E004" // Query file could not be parsed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeConfig      = "E008" // Configuration invalid

	// Query errors
	ErrCodeInvalidEntry       = "E201" // Malformed where entry
	ErrCodeUnsupportedPattern = "E202" // Optional or graph-scoped pattern
	ErrCodeInvalidArgument    = "E203" // Argument cannot be rendered
	ErrCodeInvalidRelation    = "E204" // Relation without a name
	ErrCodeEmptyQuery         = "E205" // No where entries

	// Session errors
	ErrCodeNoSession     = "E301" // No session remembered under the name
	ErrCodeSessionClosed = "E302" // Session was closed
	ErrCodeSessionOpen   = "E303" // Session already open under the name
	ErrCodeOption        = "E304" // Invalid generator option

	ErrCodeServer = "E401" // Server answered with an unexpected status
	ErrCodeState  = "E501" // State file error
)

var (
	errNoSession   = errors.New("no session")
	errSessionOpen = errors.New("session already open")
)

// stateError marks failures of the local state file.
type stateError struct {
	err error
}

func (e *stateError) Error() string { return e.err.Error() }
func (e *stateError) Unwrap() error { return e.err }

// configError marks invalid configuration.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

var translateCodes = map[prolog.TranslateErrorCode]string{
	prolog.ErrCodeUnsupportedPattern: ErrCodeUnsupportedPattern,
	prolog.ErrCodeInvalidArgument:    ErrCodeInvalidArgument,
	prolog.ErrCodeInvalidRelation:    ErrCodeInvalidRelation,
	prolog.ErrCodeEmptyQuery:         ErrCodeEmptyQuery,
}

// classify maps an error to its CLI error code and exit code.
func classify(err error) (string, int) {
	var (
		loadErr   *LoadError
		transErr  *prolog.TranslateError
		optErr    *session.OptionError
		stateErr  *stateError
		configErr *configError
	)
	switch {
	case errors.As(err, &loadErr):
		return loadErr.Code, ExitCommandError
	case errors.As(err, &configErr):
		return ErrCodeConfig, ExitCommandError
	case errors.Is(err, errNoSession):
		return ErrCodeNoSession, ExitCommandError
	case errors.Is(err, errSessionOpen):
		return ErrCodeSessionOpen, ExitCommandError
	case errors.Is(err, session.ErrSessionClosed):
		return ErrCodeSessionClosed, ExitCommandError
	case errors.As(err, &transErr):
		if code, ok := translateCodes[transErr.Code]; ok {
			return code, ExitFailure
		}
		return ErrCodeGeneric, ExitFailure
	case errors.As(err, &optErr):
		return ErrCodeOption, ExitFailure
	case transport.IsUnexpectedStatus(err):
		return ErrCodeServer, ExitFailure
	case errors.As(err, &stateErr):
		return ErrCodeState, ExitCommandError
	default:
		return ErrCodeGeneric, ExitFailure
	}
}

// fail reports err through the formatter and returns the ExitError the
// command should return.
func fail(f *OutputFormatter, err error) error {
	code, exit := classify(err)

	var details any
	if status := transport.StatusOf(err); status != 0 {
		details = map[string]int{"status": status}
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
		details = map[string]any{
			"file":   loadErr.Pos.Filename(),
			"line":   loadErr.Pos.Line(),
			"column": loadErr.Pos.Column(),
		}
	}

	_ = f.Error(code, err.Error(), details)
	return WrapExitError(exit, code, err)
}
