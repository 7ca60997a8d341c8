package validation

import (
	"context"
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strings"

	"github.com/accountkit/accountkit/internal/model"
)

// FieldError is one failing field-rule pair, e.g. {"email", "unique"}.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// Errors is the validation failure returned when a save is rejected.
// It enumerates every failing field-rule pair for UI display.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Rule
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether the failure includes the given field-rule pair.
func (e Errors) Has(field, rule string) bool {
	for _, fe := range e {
		if fe.Field == field && fe.Rule == rule {
			return true
		}
	}
	return false
}

// Checker answers uniqueness questions against storage. excludeID is
// the record's own ID on updates, empty otherwise.
type Checker interface {
	IsUnique(ctx context.Context, field, value, excludeID string) (bool, error)
}

// alpha_dash: letters, digits, dashes and underscores.
var alphaDashRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// fieldOrder fixes the order fields are checked in, so the error list
// is deterministic.
var fieldOrder = []string{FieldUsername, FieldEmail, FieldPassword, FieldPasswordConfirmation}

// Validate runs the rule set against the user. It returns Errors on
// rule failures, or a plain error if a uniqueness lookup itself fails.
func Validate(ctx context.Context, u *model.User, rules RuleSet, uniq Checker) error {
	var errs Errors

	for _, field := range orderedFields(rules) {
		value := fieldValue(u, field)
		for _, rule := range rules[field] {
			ok, err := check(ctx, u, field, value, rule, uniq)
			if err != nil {
				return fmt.Errorf("check %s %s: %w", field, rule.Name, err)
			}
			if !ok {
				errs = append(errs, FieldError{Field: field, Rule: rule.Name})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func check(ctx context.Context, u *model.User, field, value string, rule Rule, uniq Checker) (bool, error) {
	switch rule.Name {
	case RuleRequired:
		return value != "", nil
	case RuleAlphaDash:
		return value == "" || alphaDashRe.MatchString(value), nil
	case RuleEmail:
		return value == "" || validEmail(value), nil
	case RuleUnique:
		if value == "" || uniq == nil {
			return true, nil
		}
		return uniq.IsUnique(ctx, field, value, rule.ExcludeID)
	case RuleBetween:
		if value == "" {
			return true, nil
		}
		return len(value) >= rule.Min && len(value) <= rule.Max, nil
	case RuleConfirmed:
		return u.Password == u.PasswordConfirmation, nil
	default:
		// Unknown rule names fail closed so a typo in a custom rule
		// set cannot silently pass.
		return false, nil
	}
}

// validEmail parses with net/mail (RFC 5322) and enforces the
// RFC 5321 total length cap.
func validEmail(email string) bool {
	if len(email) > 254 {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

func fieldValue(u *model.User, field string) string {
	switch field {
	case FieldUsername:
		return u.Username
	case FieldEmail:
		return u.Email
	case FieldPassword:
		return u.Password
	case FieldPasswordConfirmation:
		return u.PasswordConfirmation
	default:
		return ""
	}
}

func orderedFields(rules RuleSet) []string {
	fields := make([]string, 0, len(rules))
	for _, f := range fieldOrder {
		if _, ok := rules[f]; ok {
			fields = append(fields, f)
		}
	}
	var extra []string
	for f := range rules {
		if !knownField(f) {
			extra = append(extra, f)
		}
	}
	sort.Strings(extra)
	return append(fields, extra...)
}

func knownField(field string) bool {
	for _, f := range fieldOrder {
		if f == field {
			return true
		}
	}
	return false
}
