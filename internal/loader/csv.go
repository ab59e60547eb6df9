package loader

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/sells-group/geodensity/internal/model"
)

// CSVOptions configures the CSV record parser.
type CSVOptions struct {
	Delimiter rune   // default ','
	Comment   rune   // comment character (0 = none)
	Charset   string // IANA charset name for non-UTF-8 exports (empty = UTF-8)
}

// ReadBusinessesCSV parses business records from CSV. The first row must be
// a header containing at least latitude and longitude columns; unrecognized
// columns become free-form attributes. Rows with unparseable coordinates are
// skipped and counted, not fatal.
func ReadBusinessesCSV(r io.Reader, opts CSVOptions) ([]model.Business, error) {
	if opts.Charset != "" {
		enc, err := htmlindex.Get(opts.Charset)
		if err != nil {
			return nil, eris.Wrapf(err, "loader: unsupported charset %q", opts.Charset)
		}
		r = enc.NewDecoder().Reader(r)
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.FieldsPerRecord = -1 // allow variable fields

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("loader: empty csv")
	}
	if err != nil {
		return nil, eris.Wrap(err, "loader: read csv header")
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "loader: read csv row")
		}
		rows = append(rows, row)
	}

	return collectBusinesses(header, rows, "csv"), nil
}
