package tumbler

import (
	"net/url"
	"strconv"
	"strings"
)

// Locator query keys.
const (
	KeySeed            = "seed"
	KeyRandom          = "random"
	KeySheet           = "sheet"
	KeyHideControls    = "hide-controls"
	KeyHideSheetConfig = "hide-sheet-config"
	KeyHideLabels      = "hide-labels"
	KeyHideEmbedConfig = "hide-embed-config"
)

// Display holds the visibility flags a renderer honors. They never affect data.
type Display struct {
	HideControls    bool `json:"hide_controls,omitempty"`
	HideSheetConfig bool `json:"hide_sheet_config,omitempty"`
	HideLabels      bool `json:"hide_labels,omitempty"`
	HideEmbedConfig bool `json:"hide_embed_config,omitempty"`
}

// Locator is the shareable configuration carried in a URL query string.
type Locator struct {
	// Seed is the fixed seed, nil when none is fixed.
	Seed *uint32
	// Random asks for a new seed on load.
	Random bool
	// Sheet is the source override; "" means the default source.
	Sheet string
	Display
}

// ParseLocator reads a locator from query values. Unknown keys are ignored.
func ParseLocator(values url.Values) Locator {
	loc := Locator{
		Random: values.Get(KeyRandom) == "true",
		Sheet:  values.Get(KeySheet),
		Display: Display{
			HideControls:    values.Get(KeyHideControls) == "true",
			HideSheetConfig: values.Get(KeyHideSheetConfig) == "true",
			HideLabels:      values.Get(KeyHideLabels) == "true",
			HideEmbedConfig: values.Get(KeyHideEmbedConfig) == "true",
		},
	}
	if seed, ok := ParseSeed(values.Get(KeySeed)); ok {
		loc.Seed = &seed
	}
	return loc
}

// ParseLocatorQuery parses a raw query string such as "seed=12&sheet=...".
// A leading "?" is allowed.
func ParseLocatorQuery(query string) (Locator, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if err != nil {
		return Locator{}, err
	}
	return ParseLocator(values), nil
}

// ParseSeed reads the leading integer of s, ignoring anything after it.
// Negative values wrap modulo 2^32. It reports false when s has no leading
// integer or the integer overflows 64 bits.
func ParseSeed(s string) (uint32, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// Source returns the sheet override, or defaultSource when none is set.
func (l Locator) Source(defaultSource string) string {
	if l.Sheet != "" {
		return l.Sheet
	}
	return defaultSource
}

// Values encodes the locator. The sheet is omitted when it equals
// defaultSource, and false flags are omitted entirely.
func (l Locator) Values(defaultSource string) url.Values {
	values := url.Values{}
	if l.Seed != nil {
		values.Set(KeySeed, strconv.FormatUint(uint64(*l.Seed), 10))
	}
	if l.Random {
		values.Set(KeyRandom, "true")
	}
	if l.Sheet != "" && l.Sheet != defaultSource {
		values.Set(KeySheet, l.Sheet)
	}
	setFlag(values, KeyHideControls, l.HideControls)
	setFlag(values, KeyHideSheetConfig, l.HideSheetConfig)
	setFlag(values, KeyHideLabels, l.HideLabels)
	setFlag(values, KeyHideEmbedConfig, l.HideEmbedConfig)
	return values
}

// Encode returns the locator as a query string without a leading "?".
func (l Locator) Encode(defaultSource string) string {
	return l.Values(defaultSource).Encode()
}

func setFlag(values url.Values, key string, on bool) {
	if on {
		values.Set(key, "true")
	}
}
