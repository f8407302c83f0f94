package refdata

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// readShapefile reads polygon records from a shapefile, keyed by the named
// attribute field. Records with no usable geometry or a blank key are
// skipped, not fatal: reference shapefiles routinely carry a few degenerate
// water-only records.
func readShapefile(path, keyField string) ([]Unit, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "refdata: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	keyIdx := -1
	for i, f := range reader.Fields() {
		name := strings.TrimRight(f.String(), "\x00")
		if strings.EqualFold(name, keyField) {
			keyIdx = i
			break
		}
	}
	if keyIdx < 0 {
		return nil, eris.Errorf("refdata: field %q not found in %s", keyField, path)
	}

	var units []Unit
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		mp := polygonToMultiPolygon(poly)
		if mp == nil {
			skipped++
			continue
		}

		key := strings.TrimSpace(strings.TrimRight(reader.Attribute(keyIdx), "\x00"))
		if key == "" {
			skipped++
			continue
		}

		units = append(units, Unit{Key: key, Geom: mp})
	}

	if skipped > 0 {
		zap.L().Debug("refdata: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	if len(units) == 0 {
		return nil, eris.Errorf("refdata: no polygon records in %s", path)
	}
	return units, nil
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("refdata: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("refdata: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
