package validation

// Field names recognized by the rule engine.
const (
	FieldUsername             = "username"
	FieldEmail                = "email"
	FieldPassword             = "password"
	FieldPasswordConfirmation = "password_confirmation"
)

// Rule names. These are the values reported back in FieldError.Rule,
// so handlers can map them to user-facing messages.
const (
	RuleRequired  = "required"
	RuleAlphaDash = "alpha_dash"
	RuleEmail     = "email"
	RuleUnique    = "unique"
	RuleBetween   = "between"
	RuleConfirmed = "confirmed"
)

// Password length bounds. The lower bound matches the registration
// form; the upper bound is the bcrypt input limit (bcrypt silently
// truncates longer inputs).
const (
	PasswordMinLength = 4
	PasswordMaxLength = 72
)

// Rule is a single named check on one field. Min/Max apply to
// "between"; ExcludeID narrows "unique" so an update does not
// conflict with the record's own row.
type Rule struct {
	Name      string
	Min, Max  int
	ExcludeID string
}

// RuleSet maps field names to the rules active for a save.
type RuleSet map[string][]Rule

// Default returns the standard registration rule set.
func Default() RuleSet {
	return RuleSet{
		FieldUsername: {
			{Name: RuleRequired},
			{Name: RuleAlphaDash},
			{Name: RuleUnique},
		},
		FieldEmail: {
			{Name: RuleRequired},
			{Name: RuleEmail},
			{Name: RuleUnique},
		},
		FieldPassword: {
			{Name: RuleRequired},
			{Name: RuleBetween, Min: PasswordMinLength, Max: PasswordMaxLength},
			{Name: RuleConfirmed},
		},
		FieldPasswordConfirmation: {
			{Name: RuleBetween, Min: PasswordMinLength, Max: PasswordMaxLength},
		},
	}
}

// Clone returns a deep copy, so per-save mutations never leak into a
// shared rule set.
func (rs RuleSet) Clone() RuleSet {
	out := make(RuleSet, len(rs))
	for field, rules := range rs {
		copied := make([]Rule, len(rules))
		copy(copied, rules)
		out[field] = copied
	}
	return out
}

// WithoutPassword returns a copy with the password and
// password_confirmation requirements removed. Used on updates where
// the caller left both password fields blank.
func (rs RuleSet) WithoutPassword() RuleSet {
	out := rs.Clone()
	delete(out, FieldPassword)
	delete(out, FieldPasswordConfirmation)
	return out
}

// ExcludingID returns a copy whose unique rules skip the given record
// ID, so a user keeps their own username and email on update.
func (rs RuleSet) ExcludingID(id string) RuleSet {
	out := rs.Clone()
	for field, rules := range out {
		for i := range rules {
			if rules[i].Name == RuleUnique {
				rules[i].ExcludeID = id
			}
		}
		out[field] = rules
	}
	return out
}
