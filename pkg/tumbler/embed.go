package tumbler

import (
	"fmt"
	"html"
	"net/url"
	"strconv"
)

// EmbedOptions are the choices made in the embed configurator.
type EmbedOptions struct {
	// UseCurrentSource keeps the loaded source; otherwise the embed always
	// points at the default source.
	UseCurrentSource bool
	// ForceRandom makes every embed load draw a new seed.
	ForceRandom bool
	// Seed overrides the current seed when ForceRandom is off.
	Seed *uint32
	Display
}

// EmbedURL builds an iframe src from base, the current locator and opts.
// Seed precedence is ForceRandom, then opts.Seed, then the current seed.
func EmbedURL(base string, current Locator, opts EmbedOptions, defaultSource string) string {
	values := url.Values{}
	switch {
	case opts.ForceRandom:
		values.Set(KeyRandom, "true")
	case opts.Seed != nil:
		values.Set(KeySeed, strconv.FormatUint(uint64(*opts.Seed), 10))
	case current.Seed != nil:
		values.Set(KeySeed, strconv.FormatUint(uint64(*current.Seed), 10))
	}

	setFlag(values, KeyHideControls, opts.HideControls)
	setFlag(values, KeyHideSheetConfig, opts.HideSheetConfig)
	setFlag(values, KeyHideLabels, opts.HideLabels)
	setFlag(values, KeyHideEmbedConfig, opts.HideEmbedConfig)

	if opts.UseCurrentSource {
		if current.Sheet != "" && current.Sheet != defaultSource {
			values.Set(KeySheet, current.Sheet)
		}
	} else {
		values.Set(KeySheet, defaultSource)
	}

	u, err := url.Parse(base)
	if err != nil {
		if q := values.Encode(); q != "" {
			return base + "?" + q
		}
		return base
	}
	u.RawQuery = values.Encode()
	u.Fragment = ""
	return u.String()
}

// EmbedSnippet wraps src in the iframe markup offered for copying.
func EmbedSnippet(src string) string {
	return fmt.Sprintf(`<iframe src="%s" width="100%%" height="400" frameborder="0"></iframe>`, html.EscapeString(src))
}
