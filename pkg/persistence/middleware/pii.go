package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/dependents/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type piiMiddleware struct {
	next     ports.ValueSource
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks values whose key, or
// nested map field, matches one of the patterns before they are stored.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.ValueSource) ports.ValueSource {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Set(ctx context.Context, key string, value any) error {
	if m.matches(key) {
		return m.next.Set(ctx, key, Mask)
	}
	// Copy so the caller's map is left untouched.
	if nested, ok := value.(map[string]any); ok {
		cloned := deepCopyMap(nested)
		maskMap(cloned, m.patterns)
		value = cloned
	}
	return m.next.Set(ctx, key, value)
}

func (m *piiMiddleware) Get(ctx context.Context, key string) (any, error) {
	return m.next.Get(ctx, key)
}

func (m *piiMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

// Helpers

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}
		if masked {
			continue
		}
		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}
