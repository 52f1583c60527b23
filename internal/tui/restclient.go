package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// talks to the resolve endpoints of the REST API
type APIClient struct {
	endpoint   string
	locale     string
	httpClient *http.Client
}

func NewAPIClient(opts Options) *APIClient {
	return &APIClient{
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
		locale:   opts.Locale,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// resolves raw the same way the server does for reported errors
func (c *APIClient) Resolve(ctx context.Context, raw string) (*ResolveResponse, error) {
	payload, err := json.Marshal(resolveRequest{Message: raw, Locale: c.locale})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var result ResolveResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/errors/resolve", payload, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// fetches the active rule table for the client's locale
func (c *APIClient) Rules(ctx context.Context) (*RulesResponse, error) {
	path := "/api/v1/errors/rules"
	if c.locale != "" {
		path += "?locale=" + url.QueryEscape(c.locale)
	}

	var result RulesResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp apiErrorResponse
		if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("%s: %s", errResp.Error, errResp.Message)
		}

		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// returns a tea.Cmd that resolves raw
func (c *APIClient) ResolveCmd(raw string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		resp, err := c.Resolve(ctx, raw)
		if err != nil {
			return ErrorMsg{err: err}
		}

		return ResolvedMsg{raw: raw, response: *resp}
	}
}

// returns a tea.Cmd that fetches and renders the rule table
func (c *APIClient) RulesCmd(width int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		rules, err := c.Rules(ctx)
		if err != nil {
			return ErrorMsg{err: err}
		}

		rendered, err := renderRules(rules, width)
		if err != nil {
			return ErrorMsg{err: err}
		}

		return RulesMsg{rendered: rendered}
	}
}

// REST API request/response types

type resolveRequest struct {
	Message string `json:"message"`
	Locale  string `json:"locale,omitempty"`
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

type apiErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
