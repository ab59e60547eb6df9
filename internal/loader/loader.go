// Package loader parses business records and boundary segments from the
// file formats the external data layer hands over: CSV, XLSX, GeoJSON, and
// shapefiles. Loaders reject rows with missing or unparseable coordinates so
// invalid records never reach the pipeline.
package loader

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geodensity/internal/geo"
	"github.com/sells-group/geodensity/internal/model"
)

// columnIndex maps lowercased header names to their position.
type columnIndex map[string]int

func indexColumns(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}

func (c columnIndex) lookup(names ...string) (int, bool) {
	for _, name := range names {
		if i, ok := c[name]; ok {
			return i, true
		}
	}
	return 0, false
}

// rowToBusiness converts one tabular row to a Business. Columns other than
// id/name/lat/lon/category become free-form attributes.
func rowToBusiness(header []string, idx columnIndex, row []string) (model.Business, error) {
	latCol, ok := idx.lookup("lat", "latitude")
	if !ok {
		return model.Business{}, eris.New("loader: no latitude column")
	}
	lonCol, ok := idx.lookup("lon", "lng", "longitude")
	if !ok {
		return model.Business{}, eris.New("loader: no longitude column")
	}
	if latCol >= len(row) || lonCol >= len(row) {
		return model.Business{}, eris.Wrap(geo.ErrInvalidCoordinate, "loader: short row")
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(row[latCol]), 64)
	if err != nil {
		return model.Business{}, eris.Wrapf(geo.ErrInvalidCoordinate, "loader: latitude %q", row[latCol])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(row[lonCol]), 64)
	if err != nil {
		return model.Business{}, eris.Wrapf(geo.ErrInvalidCoordinate, "loader: longitude %q", row[lonCol])
	}

	b := model.Business{Location: geo.Point{Lat: lat, Lon: lon}}
	if err := b.Location.Validate(); err != nil {
		return model.Business{}, err
	}

	reserved := map[int]bool{latCol: true, lonCol: true}
	if i, ok := idx.lookup("id"); ok && i < len(row) {
		b.ID = strings.TrimSpace(row[i])
		reserved[i] = true
	}
	if i, ok := idx.lookup("name"); ok && i < len(row) {
		b.Name = strings.TrimSpace(row[i])
		reserved[i] = true
	}
	if i, ok := idx.lookup("category"); ok && i < len(row) {
		b.Category = model.CategoryID(strings.TrimSpace(row[i]))
		reserved[i] = true
	}

	for i, value := range row {
		if reserved[i] || i >= len(header) {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if b.Attributes == nil {
			b.Attributes = make(map[string]string)
		}
		b.Attributes[strings.ToLower(strings.TrimSpace(header[i]))] = value
	}

	return b, nil
}

// collectBusinesses converts rows, skipping and counting rejects.
func collectBusinesses(header []string, rows [][]string, source string) []model.Business {
	idx := indexColumns(header)

	businesses := make([]model.Business, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		b, err := rowToBusiness(header, idx, row)
		if err != nil {
			skipped++
			continue
		}
		businesses = append(businesses, b)
	}

	if skipped > 0 {
		zap.L().Warn("skipped rows with invalid coordinates",
			zap.String("source", source),
			zap.Int("skipped", skipped),
			zap.Int("loaded", len(businesses)),
		)
	}
	return businesses
}
