// Package empid holds the employee identifier format policies. The format is
// deployment configuration, so callers depend on Policy rather than a fixed
// regular expression.
package empid

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxLength matches the width of the emp_id columns.
const MaxLength = 32

const (
	PolicyAlphanumeric = "alphanumeric"
	PolicyPrefixed     = "prefixed"
	PolicyPattern      = "pattern"
)

type Policy interface {
	Valid(id string) bool
	// Format is a short human description used in error messages.
	Format() string
}

type regexPolicy struct {
	re     *regexp.Regexp
	format string
	reject func(id string) bool
}

func (p regexPolicy) Valid(id string) bool {
	if len(id) > MaxLength || !p.re.MatchString(id) {
		return false
	}
	return p.reject == nil || !p.reject(id)
}

func (p regexPolicy) Format() string {
	return p.format
}

var (
	alphanumericRe = regexp.MustCompile(`^[A-Z0-9]{1,7}$`)
	prefixedRe     = regexp.MustCompile(`^ATS0\d{3}$`)
)

// Alphanumeric accepts 1 to 7 upper-case letters or digits.
func Alphanumeric() Policy {
	return regexPolicy{re: alphanumericRe, format: "1-7 upper-case letters or digits"}
}

// Prefixed accepts ATS0 followed by three digits, except ATS0000.
func Prefixed() Policy {
	return regexPolicy{
		re:     prefixedRe,
		format: "ATS0XXX",
		reject: func(id string) bool { return strings.HasSuffix(id, "000") },
	}
}

// Pattern compiles a custom policy. The whole id must match the expression,
// including every branch of an alternation.
func Pattern(expr string) (Policy, error) {
	if expr == "" {
		return nil, fmt.Errorf("empid: empty pattern")
	}
	re, err := regexp.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		return nil, fmt.Errorf("empid: compile pattern %q: %w", expr, err)
	}
	return regexPolicy{re: re, format: expr}, nil
}

// New resolves a policy by name. An empty name selects Alphanumeric.
func New(name, pattern string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyAlphanumeric:
		return Alphanumeric(), nil
	case PolicyPrefixed:
		return Prefixed(), nil
	case PolicyPattern:
		return Pattern(pattern)
	default:
		return nil, fmt.Errorf("empid: unknown policy %q", name)
	}
}
