package holidays

import (
	"sort"
	"strings"
)

// Nationwide marks a holiday observed in every state.
const Nationwide = "ALL"

// regionNames maps German state codes to their normalized names.
var regionNames = map[string]string{
	"BB": "brandenburg",
	"BE": "berlin",
	"BW": "baden-wuerttemberg",
	"BY": "bayern",
	"HB": "bremen",
	"HE": "hessen",
	"HH": "hamburg",
	"MV": "mecklenburg-vorpommern",
	"NI": "niedersachsen",
	"NW": "nordrhein-westfalen",
	"RP": "rheinland-pfalz",
	"SH": "schleswig-holstein",
	"SL": "saarland",
	"SN": "sachsen",
	"ST": "sachsen-anhalt",
	"TH": "thueringen",
}

var nationwideNames = []string{"alle bundeslaender", "bundesweit", "deutschland"}

var umlauts = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss")

func normalize(s string) string {
	return umlauts.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// ValidRegion reports whether code is a known state code.
func ValidRegion(code string) bool {
	_, ok := regionNames[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// RegionName returns the normalized state name for code.
func RegionName(code string) (string, bool) {
	name, ok := regionNames[strings.ToUpper(strings.TrimSpace(code))]
	return name, ok
}

// RegionCodes lists the known codes in alphabetical order.
func RegionCodes() []string {
	codes := make([]string, 0, len(regionNames))
	for code := range regionNames {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// regionsFromLocation turns a LOCATION value such as
// "Brandenburg, Sachsen" or "Alle Bundesländer" into state codes. Tokens
// match whole names only, so "Niedersachsen" never yields SN.
func regionsFromLocation(location string) []string {
	var codes []string
	seen := map[string]bool{}
	location = strings.ReplaceAll(location, `\`, "")
	for _, token := range strings.FieldsFunc(location, func(r rune) bool { return r == ',' || r == ';' }) {
		name := normalize(token)
		if name == "" {
			continue
		}
		for _, n := range nationwideNames {
			if name == n {
				return []string{Nationwide}
			}
		}
		for code, regionName := range regionNames {
			if name == regionName || name == strings.ToLower(code) {
				if !seen[code] {
					seen[code] = true
					codes = append(codes, code)
				}
			}
		}
	}
	sort.Strings(codes)
	return codes
}
