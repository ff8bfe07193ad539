package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess = 0 // Analysis completed
	ExitFailed  = 1 // No pose detected, or the risk gate was exceeded
	ExitError   = 2 // Configuration or runtime error
)

// NoPoseError indicates that the input was read successfully but no frame
// could be scored.
type NoPoseError struct {
	Message string
}

func (e *NoPoseError) Error() string {
	return e.Message
}

// RiskExceededError indicates that the analysed risk level is above the
// level allowed by --max-risk.
type RiskExceededError struct {
	Level   int
	Allowed int
}

func (e *RiskExceededError) Error() string {
	return fmt.Sprintf("risk level %d exceeds the allowed level %d", e.Level, e.Allowed)
}

// exitCode maps an error returned by the root command to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var noPose *NoPoseError
	var exceeded *RiskExceededError
	if errors.As(err, &noPose) || errors.As(err, &exceeded) {
		return ExitFailed
	}
	return ExitError
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
