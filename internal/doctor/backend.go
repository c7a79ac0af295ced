package doctor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/pch/internal/errors"
)

// DefaultPingTimeout bounds the backend ping.
const DefaultPingTimeout = 5 * time.Second

// Pinger lists the models a backend serves. *analysis.Client satisfies it.
type Pinger interface {
	Ping(ctx context.Context) ([]string, error)
}

// BackendCheck verifies the chat-completion server answers.
type BackendCheck struct {
	Backend Pinger
	URL     string
	Model   string
	Timeout time.Duration
}

func (c *BackendCheck) Name() string     { return "backend_reachable" }
func (c *BackendCheck) Category() string { return CategoryBackend }

func (c *BackendCheck) Run() CheckResult {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	models, err := c.Backend.Ping(ctx)
	if err != nil {
		suggestion := "Start your local model server (e.g. LM Studio) or set LLM_BASE_URL"
		if errors.IsCode(err, errors.ErrBackend) {
			suggestion = "The server answered but refused the request; check backend.api_key"
		}
		return CheckResult{
			Status:     StatusFail,
			Message:    fmt.Sprintf("Backend at %s: %s", c.URL, errorMessage(err)),
			Suggestion: suggestion,
		}
	}

	msg := fmt.Sprintf("Backend at %s is up", c.URL)
	switch {
	case len(models) == 0:
		msg += " (no models listed)"
	case len(models) <= 3:
		msg += " (" + strings.Join(models, ", ") + ")"
	default:
		msg += fmt.Sprintf(" (%d models)", len(models))
	}

	if c.Model != "" && len(models) > 0 && !contains(models, c.Model) && !isPlaceholderModel(c.Model) {
		return CheckResult{
			Status:     StatusWarn,
			Message:    msg + fmt.Sprintf("; model %q is not listed", c.Model),
			Suggestion: "Set backend.model to one of the listed models",
		}
	}

	return CheckResult{
		Status:  StatusPass,
		Message: msg,
	}
}

func (c *BackendCheck) Fix() error {
	return nil
}

// isPlaceholderModel reports whether the configured model is the default
// placeholder that local servers map to whatever is loaded.
func isPlaceholderModel(model string) bool {
	return model == "local-model"
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
