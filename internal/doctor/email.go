package doctor

import "github.com/rileyhilliard/pch/internal/config"

// EmailCheck flags credentials where only one half is set. Email is
// optional, so nothing configured passes.
type EmailCheck struct {
	Email config.EmailConfig
}

func (c *EmailCheck) Name() string     { return "email_credentials" }
func (c *EmailCheck) Category() string { return CategoryEmail }

func (c *EmailCheck) Run() CheckResult {
	e := c.Email
	switch {
	case e.Configured():
		return CheckResult{
			Status:  StatusPass,
			Message: "Email credentials set for " + e.Address,
		}
	case e.Address == "" && e.Password == "":
		return CheckResult{
			Status:  StatusPass,
			Message: "Email not configured",
		}
	case e.Address == "":
		return CheckResult{
			Status:     StatusWarn,
			Message:    "Email password is set but the address is missing",
			Suggestion: "Set EMAIL_ADDRESS or email.address",
		}
	default:
		return CheckResult{
			Status:     StatusWarn,
			Message:    "Email address is set but the password is missing",
			Suggestion: "Set EMAIL_PASSWORD or email.password",
		}
	}
}

func (c *EmailCheck) Fix() error {
	return nil
}
