// Package reporting forwards unexpected failures to an error tracker
package reporting

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/rollbar/rollbar-go"
)

// Reporter records unexpected errors and panics
type Reporter interface {
	Error(ctx context.Context, err error, extras map[string]interface{})
	RequestError(r *http.Request, err error, extras map[string]interface{})
	Panic(r *http.Request, recovered interface{})
	Close()
}

// Config configures the Rollbar reporter
type Config struct {
	Token       string
	Environment string
	CodeVersion string
}

// New returns a Rollbar reporter, or a no-op reporter when no token is configured
func New(cfg Config) Reporter {
	if cfg.Token == "" {
		return Noop{}
	}
	host, _ := os.Hostname()
	return &RollbarReporter{client: rollbar.New(cfg.Token, cfg.Environment, cfg.CodeVersion, host, "")}
}

// RollbarReporter sends items to Rollbar
type RollbarReporter struct {
	client *rollbar.Client
}

// Error reports err at error level
func (r *RollbarReporter) Error(_ context.Context, err error, extras map[string]interface{}) {
	r.client.ErrorWithExtras(rollbar.ERR, err, extras)
}

// RequestError reports err together with the HTTP request that caused it
func (r *RollbarReporter) RequestError(req *http.Request, err error, extras map[string]interface{}) {
	r.client.RequestErrorWithExtras(rollbar.ERR, req, err, extras)
}

// Panic reports a recovered panic at critical level
func (r *RollbarReporter) Panic(req *http.Request, recovered interface{}) {
	err, ok := recovered.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", recovered)
	}
	r.client.RequestErrorWithExtras(rollbar.CRIT, req, err, nil)
}

// Close flushes queued items
func (r *RollbarReporter) Close() {
	r.client.Wait()
}

// Noop drops every report
type Noop struct{}

// Error drops the report
func (Noop) Error(context.Context, error, map[string]interface{}) {}

// RequestError drops the report
func (Noop) RequestError(*http.Request, error, map[string]interface{}) {}

// Panic drops the report
func (Noop) Panic(*http.Request, interface{}) {}

// Close does nothing
func (Noop) Close() {}
