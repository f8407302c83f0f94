package mapgen

import (
	"strconv"

	"github.com/sells-group/zipmap/internal/model"
)

// maxImputeRadius bounds the numeric-neighbor search. Beyond this distance
// ZIP numbering stops correlating with geography at all.
const maxImputeRadius = 500

// Impute fills originally-unassigned ZIP units by nearest numeric neighbor.
// The lookup is built once, from units that carried a value in the input;
// imputed values never feed later imputations. At each radius the lower
// neighbor (zip-d) is tested before the higher (zip+d) — a deliberate
// tie-break that must not change, since downstream reports depend on it.
// Exhaustion resolves to the "unassigned" sentinel, not an error.
//
// ZIP numeric distance is a proxy for geographic proximity, not a true
// spatial nearest-neighbor search. That is a known approximation carried
// over from the production behavior, not an oversight.
func Impute(joined []JoinedUnit) []JoinedUnit {
	lookup := make(map[int]string)
	for _, u := range joined {
		if u.Value == "" {
			continue
		}
		if z, err := strconv.Atoi(u.Key); err == nil {
			lookup[z] = u.Value
		}
	}

	out := make([]JoinedUnit, len(joined))
	copy(out, joined)
	for i, u := range out {
		if !u.OriginallyUnassigned {
			continue
		}
		z, err := strconv.Atoi(u.Key)
		if err != nil {
			out[i].Value = model.UnassignedSentinel
			continue
		}
		out[i].Value = nearestValue(z, lookup)
	}
	return out
}

// nearestValue searches radius 1..maxImputeRadius, lower neighbor first.
func nearestValue(zip int, lookup map[int]string) string {
	for d := 1; d <= maxImputeRadius; d++ {
		if v, ok := lookup[zip-d]; ok {
			return v
		}
		if v, ok := lookup[zip+d]; ok {
			return v
		}
	}
	return model.UnassignedSentinel
}
