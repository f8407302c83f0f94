package mapgen

import (
	"github.com/sells-group/zipmap/internal/geometry"
	"github.com/sells-group/zipmap/internal/refdata"
)

// smallStateOffsets enumerates the visually crowded states that get leader
// lines, with per-state label nudges in map units. Absence from this set is
// not an error; every other state just gets its label.
var smallStateOffsets = map[string]refdata.Label{
	"DC": {X: -0.3, Y: 0.2},
	"DE": {X: -0.3, Y: 0},
	"MD": {X: -0.4, Y: 0},
	"NJ": {X: -0.3, Y: 0},
	"RI": {X: 0, Y: 0.2},
	"CT": {X: 0, Y: 0.2},
}

// LeaderLine runs from a state's representative interior point to its label
// position plus the per-state offset.
type LeaderLine struct {
	Abbr           string
	X1, Y1, X2, Y2 float64
}

// BuildLeaderLines computes leader lines for the small-state set, in the
// order the states appear in the (relocated, clipped) boundary slice.
// States without a label offset entry are skipped.
func BuildLeaderLines(states []refdata.Unit, offsets map[string]refdata.Label) []LeaderLine {
	var lines []LeaderLine
	for _, st := range states {
		nudge, ok := smallStateOffsets[st.Key]
		if !ok {
			continue
		}
		loc, ok := offsets[st.Key]
		if !ok {
			continue
		}
		ax, ay := geometry.RepresentativePoint(st.Geom)
		lines = append(lines, LeaderLine{
			Abbr: st.Key,
			X1:   ax,
			Y1:   ay,
			X2:   loc.X + nudge.X,
			Y2:   loc.Y + nudge.Y,
		})
	}
	return lines
}
