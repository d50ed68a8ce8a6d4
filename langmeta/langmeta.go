// Package langmeta maps locale codes to human-readable display names.
// Locale lists shown to the user are sorted by these names, not by code.
package langmeta

import (
	"sort"
	"strings"
)

// DefaultLocale is the sentinel for the source-language baseline.
const DefaultLocale = "default"

// names holds native display names for common locale codes. Region variants
// not listed here fall back to the base language, then to the code itself.
var names = map[string]string{
	"ar":    "العربية",
	"az":    "Azərbaycanca",
	"bg":    "Български",
	"bn":    "বাংলা",
	"ca":    "Català",
	"cs":    "Čeština",
	"da":    "Dansk",
	"de":    "Deutsch",
	"el":    "Ελληνικά",
	"en":    "English",
	"en-GB": "English (UK)",
	"en-US": "English (US)",
	"es":    "Español",
	"et":    "Eesti",
	"eu":    "Euskara",
	"fa":    "فارسی",
	"fi":    "Suomi",
	"fr":    "Français",
	"gl":    "Galego",
	"he":    "עברית",
	"hi":    "हिन्दी",
	"hr":    "Hrvatski",
	"hu":    "Magyar",
	"id":    "Bahasa Indonesia",
	"it":    "Italiano",
	"ja":    "日本語",
	"ko":    "한국어",
	"lt":    "Lietuvių",
	"lv":    "Latviešu",
	"nb":    "Norsk bokmål",
	"nl":    "Nederlands",
	"pl":    "Polski",
	"pt":    "Português",
	"pt-BR": "Português (Brasil)",
	"pt-PT": "Português (Portugal)",
	"ro":    "Română",
	"ru":    "Русский",
	"sk":    "Slovenčina",
	"sl":    "Slovenščina",
	"sr":    "Српски",
	"sv":    "Svenska",
	"th":    "ไทย",
	"tr":    "Türkçe",
	"uk":    "Українська",
	"vi":    "Tiếng Việt",
	"zh":    "中文",
	"zh-CN": "简体中文",
	"zh-TW": "繁體中文",
}

// Canonicalize normalizes a locale code for lookup: separators unified to
// "-", language lowercased, region uppercased, Android "-r" region markers
// removed ("pt-rBR" -> "pt-BR").
func Canonicalize(code string) string {
	c := strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if c == "" {
		return ""
	}
	parts := strings.Split(c, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		region := parts[1]
		if len(region) > 1 && (region[0] == 'r' || region[0] == 'R') && region[1:] == strings.ToUpper(region[1:]) {
			region = region[1:]
		}
		parts[1] = strings.ToUpper(region)
	}
	return strings.Join(parts, "-")
}

// Display returns the best display name for a locale code. The default
// sentinel renders as "Default"; unknown codes render as themselves.
func Display(code string) string {
	if code == DefaultLocale {
		return "Default"
	}
	if n, ok := names[code]; ok {
		return n
	}
	c := Canonicalize(code)
	if n, ok := names[c]; ok {
		return n
	}
	if base, _, found := strings.Cut(c, "-"); found {
		if n, ok := names[base]; ok {
			return n
		}
	}
	return code
}

// SortByDisplay sorts locale codes by their display names in place.
func SortByDisplay(codes []string) {
	sort.Slice(codes, func(i, j int) bool {
		return Display(codes[i]) < Display(codes[j])
	})
}
