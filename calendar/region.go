package calendar

import "sort"

// Region is a two-letter German federal state code, e.g. "NI" for
// Niedersachsen. Holiday data is resolved per region since school holidays
// and a handful of public holidays differ between states.
type Region string

var regionNames = map[Region]string{
	"BW": "Baden-Württemberg",
	"BY": "Bayern",
	"BE": "Berlin",
	"BB": "Brandenburg",
	"HB": "Bremen",
	"HH": "Hamburg",
	"HE": "Hessen",
	"MV": "Mecklenburg-Vorpommern",
	"NI": "Niedersachsen",
	"NW": "Nordrhein-Westfalen",
	"RP": "Rheinland-Pfalz",
	"SL": "Saarland",
	"SN": "Sachsen",
	"ST": "Sachsen-Anhalt",
	"SH": "Schleswig-Holstein",
	"TH": "Thüringen",
}

// Regions returns all known federal state codes in lexical order.
func Regions() []Region {
	out := make([]Region, 0, len(regionNames))
	for r := range regionNames {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r Region) Valid() bool {
	_, ok := regionNames[r]
	return ok
}

// DisplayName returns the full state name, e.g. "Niedersachsen", or the raw
// code for unknown regions.
func (r Region) DisplayName() string {
	if name, ok := regionNames[r]; ok {
		return name
	}
	return string(r)
}

// lateSummer reports whether the region belongs to the group of southern
// states whose summer school holidays start several weeks later.
func (r Region) lateSummer() bool {
	return r == "BY" || r == "BW"
}
