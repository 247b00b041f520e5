package errors

// CommandError represents an error that occurred during command execution,
// carrying the exit code and the options the command ran with.
type CommandError struct {
	ExitCode    int
	CommonError string
	Options     interface{}
}

// Error implements the error interface, returning the common error message.
func (e *CommandError) Error() string {
	return e.CommonError
}

// NewCommandError creates a new CommandError encapsulating the command
// options, the underlying error, and the exit code.
func NewCommandError(options interface{}, err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
		Options:     options,
	}
}
