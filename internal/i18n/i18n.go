// Package i18n resolves message keys to localized text. The language is
// negotiated per request from the Accept-Language header and carried in the
// request context; translation happens only at the API boundary.
package i18n

import (
	"context"
	"sort"
	"strconv"
	"strings"
)

const DefaultLang = "en"

type ctxKey struct{}

// WithLang stores the negotiated language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFromContext returns the language in ctx, or the default.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(ctxKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLang
}

// FromAcceptLanguage picks the best supported language from an
// Accept-Language header value, honoring q-values.
func FromAcceptLanguage(header, fallback string) string {
	if header == "" {
		return fallback
	}

	type langQ struct {
		code string
		q    float64
	}

	var langs []langQ
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ";")
		code := strings.TrimSpace(fields[0])
		q := 1.0
		if len(fields) > 1 {
			qs := strings.TrimSpace(fields[1])
			if v, ok := strings.CutPrefix(qs, "q="); ok {
				if parsed, err := strconv.ParseFloat(v, 64); err == nil {
					q = parsed
				}
			}
		}
		langs = append(langs, langQ{code: code, q: q})
	}

	sort.SliceStable(langs, func(i, j int) bool { return langs[i].q > langs[j].q })

	for _, l := range langs {
		switch {
		case strings.HasPrefix(l.code, "vi"):
			return "vi"
		case strings.HasPrefix(l.code, "en"):
			return "en"
		}
	}

	return fallback
}

// T resolves key in lang, substituting %{name} placeholders from args.
// Unknown keys fall back to English, then to the key itself.
func T(lang, key string, args map[string]string) string {
	msg, ok := catalog[lang][key]
	if !ok {
		msg, ok = catalog[DefaultLang][key]
	}
	if !ok {
		return key
	}

	for name, value := range args {
		msg = strings.ReplaceAll(msg, "%{"+name+"}", value)
	}
	return msg
}
