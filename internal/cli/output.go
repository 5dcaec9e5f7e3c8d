package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // rejected input, or the server stopped on an error
	ExitCommandError = 2 // the command could not run: bad config, missing file or database
)

// Error codes printed with every failure.
const (
	ErrCodeGeneric  = "E001"
	ErrCodeConfig   = "E002"
	ErrCodeInvalid  = "E003" // a request or party line was rejected
	ErrCodeNotFound = "E005"
	ErrCodeDatabase = "E006"
)

// ExitError carries the process exit code out of a command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError returns an ExitError without an underlying cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError around err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the exit code for err. Errors that are not an
// ExitError, such as cobra's flag errors, exit with ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Envelope is the shape of every --format json document.
type Envelope struct {
	Status string   `json:"status"` // "ok" or "error"
	Data   any      `json:"data,omitempty"`
	Error  *Problem `json:"error,omitempty"`
}

// Problem describes a failure in an Envelope.
type Problem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Printer writes command results either as text or as one JSON Envelope
// per command. Notes from --verbose go to Diag so the JSON stays parseable.
type Printer struct {
	JSON    bool
	Out     io.Writer
	Diag    io.Writer
	Verbose bool
}

func newPrinter(opts *RootOptions, cmd *cobra.Command) *Printer {
	return &Printer{
		JSON:    opts.Format == "json",
		Out:     cmd.OutOrStdout(),
		Diag:    cmd.ErrOrStderr(),
		Verbose: opts.Verbose,
	}
}

// Result prints a successful result. In text mode data is printed with
// its default format.
func (p *Printer) Result(data any) error {
	if p.JSON {
		return json.NewEncoder(p.Out).Encode(Envelope{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(p.Out, data)
	return err
}

// Report prints a failure. Text mode shows details only with --verbose.
func (p *Printer) Report(code, message string, details any) error {
	if p.JSON {
		return json.NewEncoder(p.Out).Encode(Envelope{
			Status: "error",
			Error:  &Problem{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(p.Out, "Error [%s]: %s\n", code, message)
	if p.Verbose && details != nil {
		fmt.Fprintf(p.Out, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err under code and returns the matching ExitError.
func (p *Printer) Fail(exit int, code string, err error) error {
	_ = p.Report(code, err.Error(), nil)
	return WrapExitError(exit, code, err)
}

// Notef prints a --verbose note.
func (p *Printer) Notef(format string, args ...any) {
	if !p.Verbose {
		return
	}
	w := p.Diag
	if w == nil {
		w = p.Out
	}
	fmt.Fprintf(w, format+"\n", args...)
}
