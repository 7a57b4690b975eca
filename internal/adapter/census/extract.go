package census

import (
	"strings"
	"unicode"
)

// extractStateAndDistrict pulls the two-letter state abbreviation and the
// congressional district number out of a geography layer map.
//
// Contract, deliberately tolerant of vintage-to-vintage key renames:
//   - Read STUSAB from the first item of the "States" layer; report
//     failure (ok=false) when the layer or the abbreviation is absent.
//   - Find the first key containing "congressional district",
//     case-insensitive. No such key means district 0.
//   - A matched layer with no items means district 0.
//   - A BASENAME beginning with "At" ("At Large") means district 0;
//     otherwise the digits of the BASENAME are the district number,
//     defaulting to 0 when it contains none.
func extractStateAndDistrict(geo geographies) (state string, district int, ok bool) {
	states := geo["States"]
	if len(states) == 0 || states[0].Stusab == "" {
		return "", 0, false
	}
	state = states[0].Stusab

	var items []layerItem
	found := false
	for key, layer := range geo {
		if strings.Contains(strings.ToLower(key), "congressional district") {
			items = layer
			found = true
			break
		}
	}
	if !found || len(items) == 0 {
		return state, 0, true
	}

	basename := strings.TrimSpace(items[0].Basename)
	if strings.HasPrefix(strings.ToLower(basename), "at") {
		return state, 0, true
	}
	return state, digitsToInt(basename), true
}

func digitsToInt(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n = n*10 + int(r-'0')
		}
	}
	return n
}
