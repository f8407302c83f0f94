package refdata

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// offsetRecord matches the label offset file layout: a JSON array of
// per-state label anchors in final (post-relocation) map coordinates.
type offsetRecord struct {
	StateAbbr string  `json:"STATE_ABBR"`
	LabelX    float64 `json:"label_x"`
	LabelY    float64 `json:"label_y"`
}

func readOffsets(path string) (map[string]Label, error) {
	if path == "" {
		return nil, eris.New("refdata: no path configured for offsets dataset")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "refdata: read offsets %s", path)
	}

	var records []offsetRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "refdata: parse offsets %s", path)
	}
	if len(records) == 0 {
		return nil, eris.Errorf("refdata: offsets file %s is empty", path)
	}

	offsets := make(map[string]Label, len(records))
	for _, rec := range records {
		if rec.StateAbbr == "" {
			return nil, eris.Errorf("refdata: offsets file %s has a record with no STATE_ABBR", path)
		}
		offsets[rec.StateAbbr] = Label{X: rec.LabelX, Y: rec.LabelY}
	}
	return offsets, nil
}
