// Package errreport forwards unexpected server errors to Rollbar.
package errreport

import (
	"github.com/rollbar/rollbar-go"
)

// Reporter records unexpected errors together with request context.
type Reporter interface {
	Report(err error, fields map[string]any)
}

// Rollbar reports through the rollbar-go client.
type Rollbar struct{}

// NewRollbar configures the global rollbar client. With an empty token reporting is disabled
// and Nop is returned.
func NewRollbar(token, env, codeVersion string) Reporter {
	if token == "" {
		return Nop{}
	}
	rollbar.SetToken(token)
	rollbar.SetEnvironment(env)
	rollbar.SetCodeVersion(codeVersion)
	rollbar.SetEnabled(true)
	return Rollbar{}
}

func (Rollbar) Report(err error, fields map[string]any) {
	rollbar.Error(err, fields)
}

// Close flushes queued reports. Call it before the process exits.
func Close() {
	rollbar.Close()
}

// Nop discards reports.
type Nop struct{}

func (Nop) Report(error, map[string]any) {}
