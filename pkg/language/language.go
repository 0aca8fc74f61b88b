// Package language normalizes free-form language requests into the fixed set
// of languages the advisor persona can be asked to answer in.
package language

import "strings"

// Tag is a normalized language name. It is interpolated into the persona
// instruction verbatim, so tags use their display spelling.
type Tag string

const (
	Auto      Tag = "auto"
	English   Tag = "English"
	Telugu    Tag = "Telugu"
	Malayalam Tag = "Malayalam"
	Kannada   Tag = "Kannada"
	Hindi     Tag = "Hindi"
	Tenglish  Tag = "Tenglish"
)

// Policy maps raw input onto a supported Tag.
type Policy struct {
	// Supported lists the accepted tags in their canonical spelling.
	Supported []Tag

	// Aliases maps short codes (as sent by the web frontend) to tags.
	// Keys are matched case-insensitively.
	Aliases map[string]Tag

	// Fallback is returned for anything unrecognized.
	Fallback Tag

	// CaseSensitive requires an exact match against Supported.
	CaseSensitive bool
}

// DefaultPolicy is used by Normalize.
var DefaultPolicy = Policy{
	Supported: []Tag{Auto, English, Telugu, Malayalam, Kannada, Hindi, Tenglish},
	Aliases: map[string]Tag{
		"en": English,
		"te": Telugu,
		"ml": Malayalam,
		"kn": Kannada,
		"hi": Hindi,
	},
	Fallback: Auto,
}

// Normalize resolves raw with DefaultPolicy.
func Normalize(raw string) Tag {
	return DefaultPolicy.Normalize(raw)
}

// Normalize trims raw and returns the matching supported tag, or the
// fallback. It never fails.
func (p Policy) Normalize(raw string) Tag {
	v := strings.TrimSpace(raw)
	if v == "" {
		return p.fallback()
	}

	for _, tag := range p.Supported {
		if p.CaseSensitive {
			if v == string(tag) {
				return tag
			}
			continue
		}
		if strings.EqualFold(v, string(tag)) {
			return tag
		}
	}

	if !p.CaseSensitive {
		if tag, ok := p.Aliases[strings.ToLower(v)]; ok {
			return tag
		}
	}

	return p.fallback()
}

// IsSupported reports whether raw names a supported tag exactly as Normalize
// would accept it, without falling back.
func (p Policy) IsSupported(raw string) bool {
	v := strings.TrimSpace(raw)
	fb := p.fallback()
	tag := p.Normalize(v)
	return tag != fb || strings.EqualFold(v, string(fb))
}

func (p Policy) fallback() Tag {
	if p.Fallback == "" {
		return Auto
	}
	return p.Fallback
}

// String implements fmt.Stringer.
func (t Tag) String() string {
	return string(t)
}
