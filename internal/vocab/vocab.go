// Package vocab holds the static offense and region vocabularies and the
// normalization logic that canonicalizes free-text identifiers against them.
// All tables are immutable after process start.
package vocab

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/crimetrends/ucr-mcp-server/internal/errors"
)

// Offense is a canonical crime-category identifier.
type Offense string

// The five supported offense types. Canonical form always uses hyphens.
const (
	ViolentCrime      Offense = "violent-crime"
	PropertyCrime     Offense = "property-crime"
	Homicide          Offense = "homicide"
	Burglary          Offense = "burglary"
	MotorVehicleTheft Offense = "motor-vehicle-theft"
)

// Region is the national aggregate or one of the supported state codes.
type Region string

// National is the default region when no state is given.
const National Region = "national"

var offenses = map[Offense]bool{
	ViolentCrime:      true,
	PropertyCrime:     true,
	Homicide:          true,
	Burglary:          true,
	MotorVehicleTheft: true,
}

// offenseAliases maps common variations to canonical offenses. Keys are
// matched after lowercasing, trimming, and underscore-to-hyphen folding.
var offenseAliases = map[string]Offense{
	"violent":               ViolentCrime,
	"violent crime":         ViolentCrime,
	"violentcrime":          ViolentCrime,
	"property":              PropertyCrime,
	"property crime":        PropertyCrime,
	"propertycrime":         PropertyCrime,
	"murder":                Homicide,
	"homicides":             Homicide,
	"burglaries":            Burglary,
	"break-in":              Burglary,
	"breaking-and-entering": Burglary,
	"motorvehicletheft":     MotorVehicleTheft,
	"motor vehicle theft":   MotorVehicleTheft,
	"vehicle-theft":         MotorVehicleTheft,
	"vehicle theft":         MotorVehicleTheft,
	"car-theft":             MotorVehicleTheft,
	"car theft":             MotorVehicleTheft,
	"auto-theft":            MotorVehicleTheft,
	"mvt":                   MotorVehicleTheft,
}

// stateNames maps supported state codes to display names.
var stateNames = map[Region]string{
	"CA": "California",
	"TX": "Texas",
	"FL": "Florida",
	"NY": "New York",
	"IL": "Illinois",
}

var titleCaser = cases.Title(language.AmericanEnglish)

// Offenses returns the canonical offense set, sorted.
func Offenses() []string {
	out := make([]string, 0, len(offenses))
	for o := range offenses {
		out = append(out, string(o))
	}
	sort.Strings(out)
	return out
}

// States returns the supported state codes, sorted.
func States() []string {
	out := make([]string, 0, len(stateNames))
	for s := range stateNames {
		out = append(out, string(s))
	}
	sort.Strings(out)
	return out
}

// Aliases returns a copy of the offense alias table.
func Aliases() map[string]string {
	out := make(map[string]string, len(offenseAliases))
	for k, v := range offenseAliases {
		out[k] = string(v)
	}
	return out
}

// NormalizeOffense canonicalizes a free-text offense name. Resolution order:
// exact canonical match, alias table, failure with a nearest-match suggestion.
// Hyphens and underscores are equivalent for matching; the canonical form uses
// hyphens.
func NormalizeOffense(input string) (Offense, *errors.Error) {
	cleaned := strings.ToLower(strings.TrimSpace(input))
	folded := strings.ReplaceAll(cleaned, "_", "-")

	if offenses[Offense(folded)] {
		return Offense(folded), nil
	}
	if o, ok := offenseAliases[cleaned]; ok {
		return o, nil
	}
	if o, ok := offenseAliases[folded]; ok {
		return o, nil
	}
	return "", errors.NewInvalidOffense(input, nearestOffense(folded), Offenses())
}

// NormalizeRegion canonicalizes an optional state code. An empty input
// resolves to the national aggregate, never an error. A valid 2-letter code
// outside the supported set fails with UNSUPPORTED_REGION, anything else with
// MALFORMED_REGION.
func NormalizeRegion(input string) (Region, *errors.Error) {
	cleaned := strings.ToUpper(strings.TrimSpace(input))
	if cleaned == "" {
		return National, nil
	}
	if strings.EqualFold(cleaned, string(National)) {
		return National, nil
	}
	if _, ok := stateNames[Region(cleaned)]; ok {
		return Region(cleaned), nil
	}
	if isStateCode(cleaned) {
		return "", errors.NewUnsupportedRegion(cleaned, States())
	}
	return "", errors.NewMalformedRegion(input, States())
}

// DisplayName renders an offense for humans, e.g. "motor-vehicle-theft" ->
// "Motor Vehicle Theft".
func (o Offense) DisplayName() string {
	return titleCaser.String(strings.ReplaceAll(string(o), "-", " "))
}

// DisplayName renders a region for humans: "National" or the state name.
func (r Region) DisplayName() string {
	if r == National {
		return "National"
	}
	if name, ok := stateNames[r]; ok {
		return name
	}
	return string(r)
}

// IsNational reports whether the region is the national aggregate.
func (r Region) IsNational() bool {
	return r == National
}

// StateName returns the full state name for a supported code, or the code
// itself when unknown.
func StateName(code string) string {
	if name, ok := stateNames[Region(strings.ToUpper(code))]; ok {
		return name
	}
	return code
}

func isStateCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, c := range s {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// nearestOffense picks the canonical offense with the smallest edit distance
// to the input, provided the distance is close enough to be a plausible typo.
func nearestOffense(input string) string {
	best, bestDist := "", -1
	for _, candidate := range Offenses() {
		d := editDistance(input, candidate)
		if bestDist < 0 || d < bestDist || (d == bestDist && candidate < best) {
			best, bestDist = candidate, d
		}
	}
	// A suggestion further than half the candidate's length is noise.
	if bestDist < 0 || bestDist > len(best)/2 {
		return ""
	}
	return best
}

// editDistance computes the Levenshtein distance between two strings.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
