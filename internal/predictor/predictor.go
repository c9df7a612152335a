// Package predictor runs the external exam-question prediction program.
package predictor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Result is the complete output of one prediction run.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes one prediction for query. A non-zero exit is reported through
// Result.ExitCode, not as an error; errors mean the program could not run or finish.
type Runner interface {
	Run(ctx context.Context, query string) (*Result, error)
}

// ProcessRunner runs Command with Args followed by the query as the final argument.
// The process is killed when ctx is done.
type ProcessRunner struct {
	Command string
	Args    []string
}

func NewProcessRunner(command string, args ...string) *ProcessRunner {
	return &ProcessRunner{Command: command, Args: args}
}

func (r *ProcessRunner) Run(ctx context.Context, query string) (*Result, error) {
	args := append(append([]string{}, r.Args...), query)
	cmd := exec.CommandContext(ctx, r.Command, args...)
	// Children that inherited the pipes must not keep Wait blocked after the kill.
	cmd.WaitDelay = 2 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	res := &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
		res.ExitCode = exitErr.ExitCode()
	}
	return res, nil
}
