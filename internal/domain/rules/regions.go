package rules

import "strings"

var regions = []string{
	"Aceh", "Sumatera Utara", "Sumatera Barat", "Riau", "Jambi", "Sumatera Selatan",
	"Bengkulu", "Lampung", "Kepulauan Bangka Belitung", "Kepulauan Riau", "Jakarta",
	"Jawa Barat", "Jawa Tengah", "Yogyakarta", "Jawa Timur", "Banten", "Bali",
	"Nusa Tenggara Barat", "Nusa Tenggara Timur", "Kalimantan Barat", "Kalimantan Tengah",
	"Kalimantan Selatan", "Kalimantan Timur", "Kalimantan Utara", "Sulawesi Utara",
	"Sulawesi Tengah", "Sulawesi Selatan", "Sulawesi Tenggara", "Gorontalo",
	"Sulawesi Barat", "Maluku", "Maluku Utara", "Papua", "Papua Barat",
}

// QuickRegions are offered as buttons in the PRO search flow.
var QuickRegions = []string{
	"Jakarta", "Jawa Barat", "Jawa Timur", "Bali", "Sumatera Utara", "Kalimantan Timur",
}

func Regions() []string {
	out := make([]string, len(regions))
	copy(out, regions)
	return out
}

// NormalizeRegion resolves free text to a canonical province name. The first
// province (in list order) containing the input, case-insensitively, wins.
func NormalizeRegion(raw string) (string, bool) {
	t := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	if t == "" {
		return "", false
	}
	for _, r := range regions {
		lower := strings.ToLower(r)
		if lower == t {
			return r, true
		}
	}
	for _, r := range regions {
		lower := strings.ToLower(r)
		if strings.Contains(lower, t) || strings.HasPrefix(lower, t) {
			return r, true
		}
	}
	return "", false
}

func IsRegion(name string) bool {
	for _, r := range regions {
		if r == name {
			return true
		}
	}
	return false
}
