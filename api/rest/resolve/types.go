package resolve

// request body for resolving a raw error. a missing or empty message resolves to the default.
type ResolveRequest struct {
	Message *string `json:"message"`
	Locale  string  `json:"locale,omitempty"`
}

type ResolveResponse struct {
	Message        string `json:"message"`
	SuggestRefresh bool   `json:"suggest_refresh"`
	Display        string `json:"display"`
	Locale         string `json:"locale"`
}

type RuleResponse struct {
	Pattern        string `json:"pattern"`
	Message        string `json:"message"`
	SuggestRefresh bool   `json:"suggest_refresh"`
}

type RulesResponse struct {
	Locale            string         `json:"locale"`
	Rules             []RuleResponse `json:"rules"`
	DefaultMessage    string         `json:"default_message"`
	RefreshSuggestion string         `json:"refresh_suggestion"`
}

type LocalesResponse struct {
	Locales []string `json:"locales"`
	Default string   `json:"default"`
}
