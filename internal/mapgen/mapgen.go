// Package mapgen implements the choropleth map pipeline: key normalization,
// value join, proximity imputation, exclave relocation, extent filtering and
// clipping, style classification, leader lines, and the unassigned-units
// report. Stages are pure functions over working slices; the only shared
// state is the refdata store handed in by the caller.
package mapgen

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/zipmap/internal/model"
	"github.com/sells-group/zipmap/internal/refdata"
	"github.com/sells-group/zipmap/internal/render"
	"github.com/sells-group/zipmap/internal/table"
)

// JoinedUnit is one reference geometry with its joined value. The
// OriginallyUnassigned flag is captured at join time and never recomputed,
// so imputation cannot erase the record of "was missing in the input".
type JoinedUnit struct {
	Key                  string
	Geom                 *geom.MultiPolygon
	Value                string // empty = unassigned
	OriginallyUnassigned bool
}

// Generate runs the whole pipeline for one request and returns the
// renderable figure plus the unassigned-units report. The pipeline is
// synchronous and stage-ordered; callers wanting a time bound run it inside
// a cancellable task of their own.
func Generate(_ context.Context, store *refdata.Store, tbl table.Table, req model.MapRequest) (*render.Figure, []model.UnassignedEntry, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	log := zap.L().With(zap.String("component", "mapgen"))

	log.Info("loading reference data", zap.String("geography", string(req.Geography)))
	var units []refdata.Unit
	var err error
	if req.Geography == model.GeographyState {
		units, err = store.StateUnits()
	} else {
		units, err = store.ZIPUnits()
	}
	if err != nil {
		return nil, nil, err
	}
	states, err := store.StateUnits()
	if err != nil {
		return nil, nil, err
	}
	offsets, err := store.LabelOffsets()
	if err != nil {
		return nil, nil, err
	}

	log.Info("joining values", zap.Int("units", len(units)), zap.Int("rows", len(tbl.Rows)))
	joined, err := Join(units, tbl, req)
	if err != nil {
		return nil, nil, err
	}

	if req.AutoFill && req.Geography == model.GeographyZIP {
		log.Info("imputing unassigned units")
		joined = Impute(joined)
	}

	report := BuildReport(joined)
	log.Info("report built", zap.Int("unassigned", len(report)))

	// State units are relocated by abbreviation like the boundary layer, so
	// fills and outlines stay registered; bbox windows only work for ZIPs.
	if req.Geography == model.GeographyState {
		joined = RelocateJoinedStates(joined)
	} else {
		joined = FilterExtent(joined)
		joined = RelocateUnits(joined)
	}
	states = RelocateStates(states)
	joined = ClipUnits(joined, PlotWindow)
	stateGeoms := ClipStates(states, PlotWindow)

	assignment := ClassifyValues(DistinctValues(joined), req.Palette, DefaultHatches)
	leaders := BuildLeaderLines(stateGeoms, offsets)

	fig, err := buildFigure(joined, stateGeoms, offsets, leaders, assignment, req)
	if err != nil {
		return nil, nil, err
	}

	log.Info("figure composed",
		zap.Int("styled_units", len(joined)),
		zap.Int("styles", len(assignment.Values)),
	)
	return fig, report, nil
}

// buildFigure projects pipeline output into the renderer's layer model.
func buildFigure(joined []JoinedUnit, states []refdata.Unit, offsets map[string]refdata.Label, leaders []LeaderLine, assignment StyleAssignment, req model.MapRequest) (*render.Figure, error) {
	fig := &render.Figure{
		Title:       req.Title,
		LegendTitle: req.ValueColumn,
		Window: render.Window{
			MinX: PlotWindow.MinX,
			MinY: PlotWindow.MinY,
			MaxX: PlotWindow.MaxX,
			MaxY: PlotWindow.MaxY,
		},
	}

	// Fill groups in style order so draw order and legend order agree.
	for _, val := range assignment.Values {
		style, _ := assignment.Style(val)
		rgba, err := render.ParseColor(style.Color)
		if err != nil {
			return nil, eris.Wrapf(err, "mapgen: palette color for %q", val)
		}
		group := render.FillGroup{Value: val, Color: rgba, Hatch: style.Hatch}
		for _, u := range joined {
			if u.Value == val {
				group.Geoms = append(group.Geoms, u.Geom)
			}
		}
		fig.Groups = append(fig.Groups, group)
	}

	for _, st := range states {
		fig.Boundaries = append(fig.Boundaries, st.Geom)
		if loc, ok := offsets[st.Key]; ok {
			fig.Labels = append(fig.Labels, render.TextLabel{Text: st.Key, X: loc.X, Y: loc.Y})
		}
	}

	for _, l := range leaders {
		fig.Leaders = append(fig.Leaders, render.Line{X1: l.X1, Y1: l.Y1, X2: l.X2, Y2: l.Y2})
	}

	return fig, nil
}
