package template

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/osteele/liquid"
)

// RenderMode determines how the Liquid engine handles missing variables.
type RenderMode int

const (
	// RenderModeLax renders missing vars as empty strings (production sends).
	RenderModeLax RenderMode = iota
	// RenderModeStrict reports unresolved variables as warnings (previews).
	RenderModeStrict
)

// ValidationWarning flags a variable that may be unresolved at send time.
type ValidationWarning struct {
	Variable string `json:"variable"`
	Message  string `json:"message"`
}

// RenderResult contains rendered output and any strict-mode warnings.
type RenderResult struct {
	Output   string              `json:"output"`
	Warnings []ValidationWarning `json:"warnings,omitempty"`
	Success  bool                `json:"success"`
}

// Engine wraps a Liquid engine with the platform filter set and a parsed
// template cache. Safe for concurrent use.
type Engine struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewEngine creates a Liquid engine with the platform filters registered.
func NewEngine() *Engine {
	e := &Engine{engine: liquid.NewEngine()}
	e.registerFilters()
	return e
}

func (e *Engine) registerFilters() {
	// Fallback value: {{ first_name | default: "there" }}
	e.engine.RegisterFilter("default", func(value interface{}, defaultVal string) interface{} {
		if value == nil {
			return defaultVal
		}
		s := fmt.Sprintf("%v", value)
		if s == "" || s == "<nil>" {
			return defaultVal
		}
		return value
	})

	// Capitalize first letter: {{ name | capitalize }}
	e.engine.RegisterFilter("capitalize", func(s string) string {
		if len(s) == 0 {
			return s
		}
		return strings.ToUpper(string(s[0])) + strings.ToLower(s[1:])
	})

	// Title case: {{ company | titlecase }}
	e.engine.RegisterFilter("titlecase", func(s string) string {
		return strings.Title(strings.ToLower(s))
	})

	// Truncate with ellipsis: {{ title | truncate: 50 }}
	e.engine.RegisterFilter("truncate", func(s string, length int) string {
		if len(s) <= length {
			return s
		}
		if length <= 3 {
			return s[:length]
		}
		return s[:length-3] + "..."
	})

	// URL encode: {{ email | urlencode }}
	e.engine.RegisterFilter("urlencode", func(s string) string {
		return url.QueryEscape(s)
	})

	// HTML escape: {{ company | escape }}
	e.engine.RegisterFilter("escape", func(s string) string {
		return html.EscapeString(s)
	})

	// Extract domain from email: {{ email | email_domain }}
	e.engine.RegisterFilter("email_domain", func(email string) string {
		parts := strings.Split(email, "@")
		if len(parts) == 2 {
			return parts[1]
		}
		return ""
	})

	// Mask email for privacy: {{ email | mask_email }}
	e.engine.RegisterFilter("mask_email", func(email string) string {
		parts := strings.Split(email, "@")
		if len(parts) != 2 {
			return email
		}
		local, domain := parts[0], parts[1]
		if len(local) <= 2 {
			return local + "***@" + domain
		}
		return local[:2] + "***@" + domain
	})
}

// Parse compiles a template string and returns any syntax error.
func (e *Engine) Parse(source string) error {
	_, err := e.engine.ParseString(source)
	return err
}

// Render processes a template with the given context, caching the parsed
// form under cacheKey when one is provided.
func (e *Engine) Render(cacheKey, source string, ctx map[string]interface{}) (string, error) {
	if cacheKey != "" {
		if cached, ok := e.cache.Load(cacheKey); ok {
			return cached.(*liquid.Template).RenderString(ctx)
		}
	}

	tpl, err := e.engine.ParseString(source)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	if cacheKey != "" {
		e.cache.Store(cacheKey, tpl)
	}
	return tpl.RenderString(ctx)
}

// RenderWithMode renders and, in strict mode, reports variables the
// context cannot resolve.
func (e *Engine) RenderWithMode(source string, ctx map[string]interface{}, mode RenderMode) (*RenderResult, error) {
	result := &RenderResult{Success: true}

	if mode == RenderModeStrict {
		for _, name := range ExtractVariables(source) {
			if !contextHas(name, ctx) {
				result.Warnings = append(result.Warnings, ValidationWarning{
					Variable: name,
					Message:  fmt.Sprintf("variable %q may not be defined for all contacts", name),
				})
			}
		}
		if len(result.Warnings) > 0 {
			result.Success = false
		}
	}

	output, err := e.engine.ParseAndRenderString(source, ctx)
	if err != nil {
		if mode == RenderModeStrict {
			return result, err
		}
		// Lax mode: deliverability beats fidelity, return the source as-is.
		result.Output = source
		result.Success = false
		return result, nil
	}

	result.Output = output
	return result, nil
}

// ClearCacheKey drops a cached parsed template, used when source changes.
func (e *Engine) ClearCacheKey(key string) {
	e.cache.Delete(key)
}

// varPattern matches the variable at the head of a {{ ... }} output tag,
// stopping at a filter pipe or the closing braces.
var varPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_.]*?)(?:\s*\||\s*\}\})`)

// ExtractVariables returns the sorted unique variable names referenced in
// the source's output tags, excluding Liquid control keywords.
func ExtractVariables(source string) []string {
	seen := make(map[string]bool)
	for _, match := range varPattern.FindAllStringSubmatch(source, -1) {
		name := strings.TrimSpace(match[1])
		if name == "" || seen[name] || isLiquidKeyword(name) {
			continue
		}
		seen[name] = true
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// contextHas resolves a dotted variable path against the render context.
func contextHas(path string, ctx map[string]interface{}) bool {
	var current interface{} = ctx
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return false
		}
		current, ok = m[part]
		if !ok {
			return false
		}
	}
	return true
}

// isLiquidKeyword checks if a name is a Liquid control keyword.
func isLiquidKeyword(name string) bool {
	keywords := map[string]bool{
		"if": true, "elsif": true, "else": true, "endif": true,
		"unless": true, "endunless": true,
		"case": true, "when": true, "endcase": true,
		"for": true, "endfor": true, "break": true, "continue": true,
		"capture": true, "endcapture": true,
		"comment": true, "endcomment": true,
		"raw": true, "endraw": true,
		"assign": true, "increment": true, "decrement": true,
		"include": true, "render": true,
		"forloop": true, "tablerowloop": true,
		"limit": true, "offset": true, "reversed": true,
		"true": true, "false": true, "nil": true, "null": true,
		"blank": true, "empty": true,
		"and": true, "or": true, "not": true,
		"contains": true, "in": true,
	}
	return keywords[strings.ToLower(name)]
}
