package resolve

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/eventnotify/server/internal/errors"
	"codeberg.org/eventnotify/server/internal/resolver"
)

// ResolveHandler godoc
// @Summary Resolve a raw backend error
// @Description Maps a raw error string to a localized user-facing message and refresh hint
// @Tags errors
// @Accept json
// @Produce json
// @Param request body ResolveRequest true "Raw error"
// @Success 200 {object} ResolveResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/v1/errors/resolve [post]
func ResolveHandler(registry *resolver.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResolveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		res, locale, ok := Select(c, registry, req.Locale)
		if !ok {
			return
		}

		result := res.ResolvePtr(req.Message)

		c.JSON(http.StatusOK, ResolveResponse{
			Message:        result.Message,
			SuggestRefresh: result.SuggestRefresh,
			Display:        result.Display(res.RefreshSuggestion()),
			Locale:         locale,
		})
	}
}

// ListRulesHandler godoc
// @Summary List resolution rules
// @Description Returns the rules in priority order, localized
// @Tags errors
// @Produce json
// @Param locale query string false "Locale"
// @Success 200 {object} RulesResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/v1/errors/rules [get]
func ListRulesHandler(registry *resolver.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, locale, ok := Select(c, registry, "")
		if !ok {
			return
		}

		rules := res.Rules().Rules()
		out := make([]RuleResponse, 0, len(rules))

		for _, rule := range rules {
			out = append(out, RuleResponse{
				Pattern:        rule.Pattern.String(),
				Message:        rule.Message,
				SuggestRefresh: rule.Refresh(),
			})
		}

		c.JSON(http.StatusOK, RulesResponse{
			Locale:            locale,
			Rules:             out,
			DefaultMessage:    res.DefaultMessage(),
			RefreshSuggestion: res.RefreshSuggestion(),
		})
	}
}

// ListLocalesHandler godoc
// @Summary List supported locales
// @Tags errors
// @Produce json
// @Success 200 {object} LocalesResponse
// @Router /api/v1/locales [get]
func ListLocalesHandler(registry *resolver.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, LocalesResponse{
			Locales: registry.Locales(),
			Default: registry.DefaultLocale(),
		})
	}
}

// picks the resolver for a request and the loaded locale it belongs to. an explicit locale (body or ?locale=) must be
// supported, otherwise a 400 is written and ok is false. Accept-Language tags are
// tried in order and fall back to the default locale.
func Select(c *gin.Context, registry *resolver.Registry, explicit string) (res *resolver.Resolver, locale string, ok bool) {
	if explicit == "" {
		explicit = c.Query("locale")
	}

	if explicit != "" {
		res, locale, ok = registry.For(explicit)
		if !ok {
			errors.UnknownLocale(c, explicit)
			return nil, "", false
		}

		return res, locale, true
	}

	for _, tag := range acceptLanguageTags(c.GetHeader("Accept-Language")) {
		if res, locale, ok := registry.For(tag); ok {
			return res, locale, true
		}
	}

	return registry.Default(), registry.DefaultLocale(), true
}

// returns the language tags of an Accept-Language header in the order given
func acceptLanguageTags(header string) []string {
	if header == "" {
		return nil
	}

	var tags []string

	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(part, ";")
		tag = strings.TrimSpace(tag)

		if tag == "" || tag == "*" {
			continue
		}

		tags = append(tags, tag)
	}

	return tags
}
