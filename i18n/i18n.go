// Package i18n translates stringsync's own user-facing strings.
//
// It wraps the gotext library behind T() and N(). Translations are embedded
// in the binary via go:embed and loaded once at startup via Init().
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// locales embeds the compiled translation catalogs.
// Directory structure: locales/{lang}/LC_MESSAGES/stringsync.po
//
//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name.
const domain = "stringsync"

var po *gotext.Locale

// Init initializes translations. An empty lang auto-detects from the
// LANGUAGE, LC_ALL, LC_MESSAGES and LANG environment variables in GNU
// gettext priority order. Call once before any T or N.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}
	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T translates a string, passing it through unchanged when no translation
// exists.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates with plural forms; the target language's plural formula
// picks the form.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		if i := strings.IndexByte(val, '.'); i >= 0 {
			val = val[:i]
		}
		if val == "" || val == "C" || val == "POSIX" {
			continue
		}
		return val
	}
	return "en"
}
