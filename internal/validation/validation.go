// Package validation holds the input checks shared by every write path. All
// functions are pure; callers that need "now" pass it in.
package validation

import (
	"net/url"
	"regexp"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email reports whether s looks like an email address. Intentionally loose:
// one @, no whitespace, a dot in the domain. Deliverability is the mail
// server's problem.
func Email(s string) bool {
	return emailPattern.MatchString(s)
}

// PasswordPolicy describes why a password was rejected. A zero Message means
// the password passed.
type PasswordPolicy struct {
	Valid   bool
	Message string
}

// Password checks the sign-up password policy: at least 8 characters with an
// uppercase letter, a lowercase letter, a digit, and one of !@#$%^&*.
func Password(s string) PasswordPolicy {
	switch {
	case len(s) < 8:
		return PasswordPolicy{Message: "Password must be at least 8 characters long"}
	case !strings.ContainsFunc(s, isUpper):
		return PasswordPolicy{Message: "Password must contain at least one uppercase letter"}
	case !strings.ContainsFunc(s, isLower):
		return PasswordPolicy{Message: "Password must contain at least one lowercase letter"}
	case !strings.ContainsFunc(s, isDigit):
		return PasswordPolicy{Message: "Password must contain at least one number"}
	case !strings.ContainsAny(s, "!@#$%^&*"):
		return PasswordPolicy{Message: "Password must contain at least one special character (!@#$%^&*)"}
	}
	return PasswordPolicy{Valid: true, Message: "Password is valid"}
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// Required reports whether s carries content beyond whitespace.
func Required(s string) bool {
	return strings.TrimSpace(s) != ""
}

// MinLength reports whether s has at least min bytes.
func MinLength(s string, min int) bool {
	return len(s) >= min
}

// MaxLength reports whether s has at most max bytes.
func MaxLength(s string, max int) bool {
	return len(s) <= max
}

// URL reports whether s is an absolute URL with a scheme and host.
func URL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// Date reports whether s is a calendar date in YYYY-MM-DD form.
func Date(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// Future reports whether the YYYY-MM-DD date s lies strictly after now.
// Malformed dates are not in the future.
func Future(s string, now time.Time) bool {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return false
	}
	return d.After(now)
}

// sanitizer strips angle brackets outright and escapes the remaining
// characters that carry meaning in HTML attributes and paths.
var sanitizer = strings.NewReplacer(
	"<", "",
	">", "",
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// SanitizeInput neutralizes user-supplied free text before it is stored or
// rendered. Angle brackets are removed rather than escaped so stored values
// can never round-trip back into markup.
func SanitizeInput(s string) string {
	return sanitizer.Replace(s)
}
