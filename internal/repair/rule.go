package repair

import (
	"fmt"
	"regexp"
	"unicode"

	"github.com/jinzhu/inflection"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// padding is the whitespace allowed around a declaration. It covers the
// same runes as unicode.IsSpace, so CR, vertical tab and NBSP all count.
const padding = `[[:space:]\x{85}\p{Z}]*`

// Rule describes one malformed relation field shape: a line holding only
// "<Field> <Model>" or "<Field> <Model>[]".
type Rule struct {
	Field string
	Model string

	re *regexp.Regexp
}

// NewRule compiles a rule for the given field and model names.
// An empty field is derived from the model (Tenant -> tenants).
func NewRule(field, model string) (Rule, error) {
	if !identPattern.MatchString(model) {
		return Rule{}, fmt.Errorf("invalid model name %q", model)
	}
	if field == "" {
		field = FieldForModel(model)
	}
	if !identPattern.MatchString(field) {
		return Rule{}, fmt.Errorf("invalid field name %q", field)
	}

	expr := `^` + padding + regexp.QuoteMeta(field) + `[ \t]+` + regexp.QuoteMeta(model) + `(?:\[\])?` + padding + `$`
	return Rule{
		Field: field,
		Model: model,
		re:    regexp.MustCompile(expr),
	}, nil
}

// MustRule is like NewRule but panics on invalid names.
func MustRule(field, model string) Rule {
	r, err := NewRule(field, model)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultRules returns the tenants/Tenant rule.
func DefaultRules() []Rule {
	return []Rule{MustRule("tenants", "Tenant")}
}

// Matches reports whether line (without its newline) is exactly this
// relation declaration.
func (r Rule) Matches(line string) bool {
	if r.re == nil {
		return false
	}
	return r.re.MatchString(line)
}

// String names both forms the rule removes, e.g. "tenants Tenant / tenants Tenant[]".
func (r Rule) String() string {
	decl := r.Field + " " + r.Model
	return decl + " / " + decl + "[]"
}

// FieldForModel returns the conventional back-relation field name for a
// model: its plural with a lowercased first letter.
func FieldForModel(model string) string {
	if model == "" {
		return ""
	}
	plural := []rune(inflection.Plural(model))
	plural[0] = unicode.ToLower(plural[0])
	return string(plural)
}
