package mapgen

import (
	"github.com/sells-group/zipmap/internal/geometry"
	"github.com/sells-group/zipmap/internal/refdata"
)

// extentWindows are the four pre-relocation geographic windows. A unit whose
// bounding box is not strictly inside one of them is dropped permanently.
var extentWindows = []geometry.Rect{
	{MinX: -130, MinY: 24, MaxX: -60, MaxY: 50},   // contiguous US
	{MinX: -170, MinY: 50, MaxX: -130, MaxY: 72},  // Alaska
	{MinX: -161, MinY: 18, MaxX: -154, MaxY: 23},  // Hawaii
	{MinX: -68, MinY: 17, MaxX: -65, MaxY: 19.5},  // Puerto Rico
}

// PlotWindow is the final plot bounding box applied after relocation.
var PlotWindow = geometry.Rect{MinX: -130, MinY: 18, MaxX: -60, MaxY: 55}

// FilterExtent restricts the working set to the four known windows.
func FilterExtent(joined []JoinedUnit) []JoinedUnit {
	var out []JoinedUnit
	for _, u := range joined {
		b := u.Geom.Bounds()
		for _, w := range extentWindows {
			if w.ContainsBounds(b) {
				out = append(out, u)
				break
			}
		}
	}
	return out
}

// ClipUnits intersects every unit geometry with the window, dropping units
// that fall entirely outside. Exact intersection, since relocated exclaves
// can be irregular near the window edge.
func ClipUnits(joined []JoinedUnit, w geometry.Rect) []JoinedUnit {
	var out []JoinedUnit
	for _, u := range joined {
		clipped := geometry.ClipToRect(u.Geom, w)
		if clipped == nil {
			continue
		}
		u.Geom = clipped
		out = append(out, u)
	}
	return out
}

// ClipStates clips state boundary geometries the same way.
func ClipStates(states []refdata.Unit, w geometry.Rect) []refdata.Unit {
	var out []refdata.Unit
	for _, st := range states {
		clipped := geometry.ClipToRect(st.Geom, w)
		if clipped == nil {
			continue
		}
		st.Geom = clipped
		out = append(out, st)
	}
	return out
}
