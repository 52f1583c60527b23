// Package resolver turns raw backend error strings into localized, user-facing messages.
//
// Backend errors are English, machine-generated and unstable. A Resolver scans a short,
// ordered RuleSet and returns the first matching rule's message, or a default message
// when nothing matches. Resolvers are immutable and safe for concurrent use.
package resolver

import (
	"errors"

	"codeberg.org/eventnotify/server/internal/i18n"
)

var (
	ErrEmptyPattern = errors.New("pattern is required")
	ErrEmptyMessage = errors.New("message is required")
)

// the outcome of resolving a raw error
type Result struct {
	Message        string `json:"message"`
	SuggestRefresh bool   `json:"suggest_refresh"`
}

// returns the text a notification should show: the message, followed by
// suggestion when the result asks for a refresh hint
func (r Result) Display(suggestion string) string {
	if !r.SuggestRefresh || suggestion == "" {
		return r.Message
	}

	return r.Message + " " + suggestion
}

type Resolver struct {
	rules             RuleSet
	defaultMessage    string
	refreshSuggestion string
}

// builds a resolver over rules. defaultMessage is returned when nothing matches;
// refreshSuggestion is the hint callers append when a result suggests a refresh.
func New(rules RuleSet, defaultMessage, refreshSuggestion string) *Resolver {
	return &Resolver{
		rules:             rules,
		defaultMessage:    defaultMessage,
		refreshSuggestion: refreshSuggestion,
	}
}

// builds a resolver over the built-in rule table, localized with t
func NewDefault(t i18n.Translator) *Resolver {
	if t == nil {
		t = i18n.Identity
	}

	return New(DefaultRules(t), t(KeyDefault), t(KeyRefreshSuggestion))
}

// builds a resolver over rules with the default and suggestion messages localized with t
func NewWithRules(rules RuleSet, t i18n.Translator) *Resolver {
	if t == nil {
		t = i18n.Identity
	}

	return New(rules, t(KeyDefault), t(KeyRefreshSuggestion))
}

// classifies raw. an empty string resolves to the default message.
func (r *Resolver) Resolve(raw string) Result {
	if raw == "" {
		return r.fallback()
	}

	rule, ok := r.rules.Match(raw)
	if !ok {
		return r.fallback()
	}

	return Result{
		Message:        rule.Message,
		SuggestRefresh: rule.Refresh(),
	}
}

// classifies err's message; a nil error resolves to the default message
func (r *Resolver) ResolveError(err error) Result {
	if err == nil {
		return r.fallback()
	}

	return r.Resolve(err.Error())
}

// classifies *raw; nil resolves to the default message
func (r *Resolver) ResolvePtr(raw *string) Result {
	if raw == nil {
		return r.fallback()
	}

	return r.Resolve(*raw)
}

func (r *Resolver) fallback() Result {
	return Result{Message: r.defaultMessage, SuggestRefresh: true}
}

func (r *Resolver) DefaultMessage() string {
	return r.defaultMessage
}

func (r *Resolver) RefreshSuggestion() string {
	return r.refreshSuggestion
}

func (r *Resolver) Rules() RuleSet {
	return r.rules
}
