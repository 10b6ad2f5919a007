// Package copy holds the localized banner strings.
package copy

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys for the banner copy.
const (
	KeyNetworkErrorHeading = "banner.network_error.heading"
	KeyServerErrorHeading  = "banner.server_error.heading"
	KeyContact             = "banner.contact"
)

var supported = []language.Tag{
	language.AmericanEnglish,
	language.BrazilianPortuguese,
}

var matcher = language.NewMatcher(supported)

func init() {
	set := func(tag language.Tag, key, value string) {
		if err := message.SetString(tag, key, value); err != nil {
			panic(err)
		}
	}

	set(language.AmericanEnglish, KeyNetworkErrorHeading, "You appear to be offline. Showing the last saved copy of this page.")
	set(language.AmericanEnglish, KeyServerErrorHeading, "The server ran into a problem. Showing the last saved copy of this page.")
	set(language.AmericanEnglish, KeyContact, "If this keeps happening, please get in touch.")

	set(language.BrazilianPortuguese, KeyNetworkErrorHeading, "Você parece estar offline. Mostrando a última cópia salva desta página.")
	set(language.BrazilianPortuguese, KeyServerErrorHeading, "O servidor encontrou um problema. Mostrando a última cópia salva desta página.")
	set(language.BrazilianPortuguese, KeyContact, "Se isso continuar acontecendo, entre em contato.")
}

// Printer returns a message printer for the closest supported locale.
// Unknown or empty locales fall back to en-US.
func Printer(locale string) *message.Printer {
	tag, _ := language.MatchStrings(matcher, locale)
	return message.NewPrinter(tag)
}
