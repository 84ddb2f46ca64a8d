// Package i18n resolves the user's locale and looks up localized CLI
// messages. Catalogs are YAML files embedded at build time; keys are the
// dotted paths of their nested maps (e.g. "archive.not_found").
//
// Only the command layer formats messages through a Catalog. Parsing,
// validation and the delta engine produce locale-independent text.
package i18n

import (
	"embed"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var catalogFS embed.FS

// Locale identifies a supported message catalog.
type Locale string

// Supported locales. English is the fallback for anything unrecognised.
const (
	English Locale = "en"
	Chinese Locale = "zh"
)

// Locales lists the supported locales in matching preference order.
func Locales() []Locale {
	return []Locale{English, Chinese}
}

// Detect picks a locale. forced (from config or OPENSPEC_LANG) wins; then
// LC_ALL, LC_MESSAGES and LANG are consulted through getenv. Values such as
// "zh_CN.UTF-8" are normalised before matching.
func Detect(forced string, getenv func(string) string) Locale {
	candidates := []string{forced}
	if getenv != nil {
		candidates = append(candidates, getenv("LC_ALL"), getenv("LC_MESSAGES"), getenv("LANG"))
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		return Match(c)
	}
	return English
}

// Match maps a locale string to the closest supported Locale.
func Match(value string) Locale {
	norm, _, _ := strings.Cut(value, ".")
	norm, _, _ = strings.Cut(norm, "@")
	norm = strings.ReplaceAll(norm, "_", "-")

	tag, err := language.Parse(norm)
	if err != nil {
		return English
	}
	// Script and region variants (zh-TW, en-GB) share one catalog.
	base, conf := tag.Base()
	if conf == language.No {
		return English
	}
	supported := []language.Tag{language.English, language.Chinese}
	matcher := language.NewMatcher(supported)
	_, idx, conf := matcher.Match(language.Make(base.String()))
	if conf == language.No {
		return English
	}
	return Locales()[idx]
}

// Catalog holds the messages of one locale with English as fallback.
type Catalog struct {
	locale   Locale
	messages map[string]string
	fallback map[string]string
}

// Load reads the embedded catalog for locale.
func Load(locale Locale) (*Catalog, error) {
	fallback, err := readCatalog(English)
	if err != nil {
		return nil, err
	}
	c := &Catalog{locale: locale, messages: fallback, fallback: fallback}
	if locale != English {
		msgs, err := readCatalog(locale)
		if err != nil {
			return nil, err
		}
		c.messages = msgs
	}
	return c, nil
}

// MustLoad is Load for the embedded catalogs, which are known to parse.
func MustLoad(locale Locale) *Catalog {
	c, err := Load(locale)
	if err != nil {
		panic(err)
	}
	return c
}

// Locale returns the catalog's locale.
func (c *Catalog) Locale() Locale {
	return c.locale
}

// T returns the message for key with {name} placeholders filled from kv,
// given as alternating names and values. A nil Catalog uses English. A
// missing key returns the key itself.
func (c *Catalog) T(key string, kv ...any) string {
	if c == nil {
		c = MustLoad(English)
	}
	msg, ok := c.messages[key]
	if !ok {
		msg, ok = c.fallback[key]
	}
	if !ok {
		msg = key
	}
	if len(kv) == 0 {
		return msg
	}

	pairs := make([]string, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, "{"+fmt.Sprint(kv[i])+"}", fmt.Sprint(kv[i+1]))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

func readCatalog(locale Locale) (map[string]string, error) {
	data, err := catalogFS.ReadFile("locales/" + string(locale) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", locale, err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", locale, err)
	}
	out := make(map[string]string)
	flatten("", tree, out)
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}
