package enums

import "strings"

type Gender string

const (
	GenderUnset  Gender = ""
	GenderMale   Gender = "pria"
	GenderFemale Gender = "wanita"
)

// ParseGender accepts the bot's two gender keywords in any case.
func ParseGender(raw string) (Gender, bool) {
	switch Gender(strings.ToLower(strings.TrimSpace(raw))) {
	case GenderMale:
		return GenderMale, true
	case GenderFemale:
		return GenderFemale, true
	default:
		return GenderUnset, false
	}
}

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}
