package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountkit/accountkit/internal/model"
)

type fakeChecker struct {
	taken     map[string]string // field -> taken value
	excludeID string
}

func (f *fakeChecker) IsUnique(_ context.Context, field, value, excludeID string) (bool, error) {
	f.excludeID = excludeID
	return f.taken[field] != value, nil
}

func TestValidateNewUserPasses(t *testing.T) {
	u := &model.User{
		Username:             "alice_1",
		Email:                "alice@example.com",
		Password:             "hunter22",
		PasswordConfirmation: "hunter22",
	}

	err := Validate(context.Background(), u, Default(), &fakeChecker{})
	require.NoError(t, err)
}

func TestValidateCollectsFieldRulePairs(t *testing.T) {
	u := &model.User{
		Username:             "bad name!",
		Email:                "not-an-email",
		Password:             "abc",
		PasswordConfirmation: "xyz",
	}

	err := Validate(context.Background(), u, Default(), &fakeChecker{})
	require.Error(t, err)

	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.True(t, errs.Has(FieldUsername, RuleAlphaDash))
	assert.True(t, errs.Has(FieldEmail, RuleEmail))
	assert.True(t, errs.Has(FieldPassword, RuleBetween))
	assert.True(t, errs.Has(FieldPassword, RuleConfirmed))
}

func TestValidateRequired(t *testing.T) {
	u := &model.User{}

	err := Validate(context.Background(), u, Default(), &fakeChecker{})

	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.True(t, errs.Has(FieldUsername, RuleRequired))
	assert.True(t, errs.Has(FieldEmail, RuleRequired))
	assert.True(t, errs.Has(FieldPassword, RuleRequired))
	// Empty optional fields skip their format rules.
	assert.False(t, errs.Has(FieldUsername, RuleAlphaDash))
	assert.False(t, errs.Has(FieldPasswordConfirmation, RuleBetween))
}

func TestValidateUniqueConflict(t *testing.T) {
	u := &model.User{
		Username:             "alice",
		Email:                "alice@example.com",
		Password:             "hunter22",
		PasswordConfirmation: "hunter22",
	}
	checker := &fakeChecker{taken: map[string]string{FieldEmail: "alice@example.com"}}

	err := Validate(context.Background(), u, Default(), checker)

	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, Errors{{Field: FieldEmail, Rule: RuleUnique}}, errs)
}

func TestExcludingIDRewritesUniqueRules(t *testing.T) {
	rules := Default().ExcludingID("user-42")

	checker := &fakeChecker{}
	u := &model.User{
		Username:             "alice",
		Email:                "alice@example.com",
		Password:             "hunter22",
		PasswordConfirmation: "hunter22",
	}
	err := Validate(context.Background(), u, rules, checker)
	require.NoError(t, err)
	assert.Equal(t, "user-42", checker.excludeID)

	// The original set is untouched.
	for _, rule := range Default()[FieldUsername] {
		assert.Empty(t, rule.ExcludeID)
	}
}

func TestWithoutPasswordDropsPasswordRules(t *testing.T) {
	rules := Default().WithoutPassword()

	assert.NotContains(t, rules, FieldPassword)
	assert.NotContains(t, rules, FieldPasswordConfirmation)
	assert.Contains(t, rules, FieldUsername)
	assert.Contains(t, rules, FieldEmail)

	// No password rules means a blank password validates.
	u := &model.User{Username: "alice", Email: "alice@example.com"}
	err := Validate(context.Background(), u, rules, &fakeChecker{})
	require.NoError(t, err)
}

func TestUnknownRuleFailsClosed(t *testing.T) {
	rules := RuleSet{FieldUsername: {{Name: "shouty"}}}
	u := &model.User{Username: "alice"}

	err := Validate(context.Background(), u, rules, nil)

	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.True(t, errs.Has(FieldUsername, "shouty"))
}

func TestErrorsMessage(t *testing.T) {
	errs := Errors{{Field: "email", Rule: "unique"}, {Field: "password", Rule: "between"}}
	assert.Equal(t, "validation failed: email: unique; password: between", errs.Error())
}
