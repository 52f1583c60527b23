package resolver

import (
	"fmt"
	"io"
	"regexp"

	"gopkg.in/yaml.v3"

	"codeberg.org/eventnotify/server/internal/i18n"
)

// message keys, in English; translations live in the i18n catalog
const (
	KeyDefault           = "An error has occurred."
	KeyRefreshSuggestion = "Please refresh the page and retry."
)

// maps a raw backend error to a localized message.
// a nil SuggestRefresh means the refresh hint is shown.
type Rule struct {
	Pattern        *regexp.Regexp
	Message        string
	SuggestRefresh *bool
}

// returns the effective refresh hint for the rule
func (r Rule) Refresh() bool {
	if r.SuggestRefresh == nil {
		return true
	}

	return *r.SuggestRefresh
}

func (r Rule) matches(raw string) bool {
	return r.Pattern != nil && r.Pattern.MatchString(raw)
}

// an ordered, read-only list of rules. the first matching rule wins.
type RuleSet struct {
	rules []Rule
}

// copies rules into a new set; later changes to the argument slice are not observed
func NewRuleSet(rules ...Rule) RuleSet {
	return RuleSet{rules: cloneRules(rules)}
}

func (s RuleSet) Len() int {
	return len(s.rules)
}

// returns a copy of the rules in priority order
func (s RuleSet) Rules() []Rule {
	return cloneRules(s.rules)
}

func cloneRules(rules []Rule) []Rule {
	out := make([]Rule, len(rules))

	for i, rule := range rules {
		if rule.SuggestRefresh != nil {
			v := *rule.SuggestRefresh
			rule.SuggestRefresh = &v
		}

		out[i] = rule
	}

	return out
}

// returns the first rule matching raw
func (s RuleSet) Match(raw string) (Rule, bool) {
	for _, rule := range s.rules {
		if rule.matches(raw) {
			return rule, true
		}
	}

	return Rule{}, false
}

func noRefresh() *bool {
	v := false
	return &v
}

// any character but a line terminator. RE2's dot also matches \r, U+2028 and U+2029.
const lineChar = `[^\r\n\x{2028}\x{2029}]`

// the built-in table of known backend errors, in priority order
func DefaultRules(t i18n.Translator) RuleSet {
	if t == nil {
		t = i18n.Identity
	}

	return NewRuleSet(
		Rule{
			Pattern:        regexp.MustCompile(`^Event with UUID ` + lineChar + `* not found$`),
			Message:        t("Page not found"),
			SuggestRefresh: noRefresh(),
		},
		Rule{
			Pattern: regexp.MustCompile(`^Event not found$`),
			Message: t("Event not found."),
		},
		Rule{
			Pattern: regexp.MustCompile(`^Event with this ID ` + lineChar + `* doesn't exist$`),
			Message: t("Event not found."),
		},
		Rule{
			Pattern: regexp.MustCompile(`^Error while saving report$`),
			Message: t("Error while saving report."),
		},
		Rule{
			Pattern: regexp.MustCompile(`^Participant already has role rejected$`),
			Message: t("Participant already was rejected."),
		},
		Rule{
			Pattern: regexp.MustCompile(`^Participant already has role participant$`),
			Message: t("Participant has already been approved as participant."),
		},
		Rule{
			Pattern: regexp.MustCompile(`^You are already a participant of this event$`),
			Message: t("You are already a participant of this event."),
		},
		Rule{
			Pattern: regexp.MustCompile(`NetworkError when attempting to fetch resource` + lineChar + `$`),
			Message: t("Error while communicating with the server."),
		},
	)
}

// one entry of a YAML rule file
type ruleEntry struct {
	Pattern        string `yaml:"pattern"`
	Message        string `yaml:"message"`
	SuggestRefresh *bool  `yaml:"suggest_refresh"`
}

// reads an ordered YAML list of {pattern, message, suggest_refresh} entries.
// messages are passed through t, so files may use English source strings as keys.
func LoadRules(r io.Reader, t i18n.Translator) (RuleSet, error) {
	if t == nil {
		t = i18n.Identity
	}

	var entries []ruleEntry

	if err := yaml.NewDecoder(r).Decode(&entries); err != nil && err != io.EOF {
		return RuleSet{}, fmt.Errorf("failed to parse rules: %w", err)
	}

	rules := make([]Rule, 0, len(entries))

	for i, entry := range entries {
		if entry.Pattern == "" {
			return RuleSet{}, fmt.Errorf("rule %d: %w", i, ErrEmptyPattern)
		}

		if entry.Message == "" {
			return RuleSet{}, fmt.Errorf("rule %d: %w", i, ErrEmptyMessage)
		}

		pattern, err := regexp.Compile(entry.Pattern)
		if err != nil {
			return RuleSet{}, fmt.Errorf("rule %d: invalid pattern %q: %w", i, entry.Pattern, err)
		}

		rules = append(rules, Rule{
			Pattern:        pattern,
			Message:        t(entry.Message),
			SuggestRefresh: entry.SuggestRefresh,
		})
	}

	return NewRuleSet(rules...), nil
}
