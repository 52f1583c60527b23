package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// builds a markdown table of rules in match order
func rulesMarkdown(rules *RulesResponse) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Error rules (%s)\n\n", rules.Locale)
	b.WriteString("| # | Pattern | Message | Refresh |\n")
	b.WriteString("|---|---------|---------|---------|\n")

	for i, rule := range rules.Rules {
		refresh := "no"
		if rule.SuggestRefresh {
			refresh = "yes"
		}

		fmt.Fprintf(&b, "| %d | `%s` | %s | %s |\n", i+1, escapeCell(rule.Pattern), escapeCell(rule.Message), refresh)
	}

	fmt.Fprintf(&b, "\nUnmatched errors show *%s* followed by *%s*\n", rules.DefaultMessage, rules.RefreshSuggestion)

	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func renderRules(rules *RulesResponse, width int) (string, error) {
	if width <= 0 {
		width = 80
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}

	out, err := renderer.Render(rulesMarkdown(rules))
	if err != nil {
		return "", fmt.Errorf("failed to render rules: %w", err)
	}

	return out, nil
}
