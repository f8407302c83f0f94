package mapgen

import "github.com/sells-group/zipmap/internal/model"

// BuildReport projects the originally-unassigned units to report rows, in
// order of first appearance among the reference units. Runs after imputation
// (so resolved values are visible) but before the extent filter, so units
// later dropped from the plot still appear in the report. A unit whose input
// value merely equals the sentinel string is not included: only the captured
// flag decides membership.
func BuildReport(joined []JoinedUnit) []model.UnassignedEntry {
	var entries []model.UnassignedEntry
	for _, u := range joined {
		if !u.OriginallyUnassigned {
			continue
		}
		resolved := u.Value
		if resolved == "" {
			resolved = model.UnassignedSentinel
		}
		entries = append(entries, model.UnassignedEntry{
			Key:           u.Key,
			ResolvedValue: resolved,
		})
	}
	return entries
}
