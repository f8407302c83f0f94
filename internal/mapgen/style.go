package mapgen

import "sort"

// DefaultHatches is the fixed hatch progression. The first entry is "no
// pattern"; the hatch index advances each time the palette wraps.
var DefaultHatches = []string{"", "//", "..", "xx", `\\`}

// HatchDotted is the hatch whose fills get white edges for contrast.
const HatchDotted = ".."

// Style is one (color, hatch) pair assigned to a value.
type Style struct {
	Color string
	Hatch string
}

// StyleAssignment maps each distinct value to a deterministic style.
// It is a pure function of the sorted distinct-value sequence and the
// supplied palette: identical inputs always yield identical assignments.
type StyleAssignment struct {
	Values []string // sorted ascending; also the legend order
	styles map[string]Style
}

// Style returns the assignment for a value.
func (a StyleAssignment) Style(value string) (Style, bool) {
	s, ok := a.styles[value]
	return s, ok
}

// DistinctValues collects the distinct non-empty values of the working set,
// sorted ascending. Post-imputation this includes the sentinel.
func DistinctValues(joined []JoinedUnit) []string {
	seen := make(map[string]bool)
	var vals []string
	for _, u := range joined {
		if u.Value == "" || seen[u.Value] {
			continue
		}
		seen[u.Value] = true
		vals = append(vals, u.Value)
	}
	sort.Strings(vals)
	return vals
}

// ClassifyValues assigns value i the color palette[i mod N] and the hatch
// hatches[i div N]. When capacity (N × len(hatches)) runs out the hatch
// index wraps too — deliberate visual duplication, never an error.
func ClassifyValues(values, palette, hatches []string) StyleAssignment {
	a := StyleAssignment{
		Values: values,
		styles: make(map[string]Style, len(values)),
	}
	for i, v := range values {
		a.styles[v] = Style{
			Color: palette[i%len(palette)],
			Hatch: hatches[(i/len(palette))%len(hatches)],
		}
	}
	return a
}
