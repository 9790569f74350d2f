package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInputNotFound means the schedule file does not exist.
	ErrInputNotFound = errors.New("input file not found")
	// ErrEmptyResult means the schedule was read but holds no tasks.
	ErrEmptyResult = errors.New("no tasks found")
)

// FailureKind names the pipeline stage that failed.
type FailureKind int

const (
	InputNotFound FailureKind = iota + 1
	EmptyResult
	SourceRead
	Export
)

func (k FailureKind) String() string {
	switch k {
	case InputNotFound:
		return "input not found"
	case EmptyResult:
		return "empty result"
	case SourceRead:
		return "source read"
	case Export:
		return "export"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// Failure is the error returned by every job stage.
type Failure struct {
	Kind FailureKind
	Path string
	Err  error
	// Trace is the reader's diagnostic output, set for SourceRead.
	Trace string
}

func (f *Failure) Error() string {
	if f.Path == "" {
		return fmt.Sprintf("%s: %v", f.Kind, f.Err)
	}
	return fmt.Sprintf("%s: %s: %v", f.Kind, f.Path, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

func fail(kind FailureKind, path string, err error) *Failure {
	return &Failure{Kind: kind, Path: path, Err: err}
}

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// ExitCode maps a job error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	return ExitFailure
}

// TraceOf returns the reader diagnostics attached to err, if any.
func TraceOf(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Trace
	}
	return ""
}
