package mapgen

import (
	"strings"

	"github.com/sells-group/zipmap/internal/model"
)

// NormalizeKey canonicalizes a raw table key for the join. ZIP keys are
// zero-padded to five characters; state keys are folded to the upper-case
// abbreviation form the state dataset uses. Malformed keys are returned
// padded/folded as-is: they simply fail to match and surface as unassigned.
func NormalizeKey(raw string, geography model.Geography) string {
	if geography == model.GeographyState {
		return strings.ToUpper(strings.TrimSpace(raw))
	}
	return NormalizeZIP(raw)
}

// NormalizeZIP left-pads a ZIP key with '0' to exactly five characters:
// "501" becomes "00501", "90210" is unchanged. Spreadsheet cells that came
// through as floats ("501.0") drop the zero fraction first.
func NormalizeZIP(raw string) string {
	s := strings.TrimSpace(raw)

	if dot := strings.IndexByte(s, '.'); dot >= 0 && isDigits(s[:dot]) && isZeros(s[dot+1:]) {
		s = s[:dot]
	}

	for len(s) < 5 {
		s = "0" + s
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isZeros(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '0' {
			return false
		}
	}
	return true
}
