package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrNoHeader = errors.New("no header row")

// ReadCSV parses a series from comma separated values. The first row names the fields
// using their column names, e.g. rainMm or runoffDrainMmHr. Unknown columns are ignored
// and empty or null cells are missing.
func ReadCSV(r io.Reader) (Series, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read header, %w", err)
	}

	cols := make(map[int]Field)
	for i, name := range header {
		f, err := ParseField(strings.TrimSpace(name))
		if err != nil {
			log.Debug().Str("column", name).Msg("ignoring unknown series column")
			continue
		}
		cols[i] = f
	}

	var s Series
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read row %d, %w", row, err)
		}

		p := MissingPoint()
		for i, f := range cols {
			if i >= len(rec) {
				continue
			}
			v, err := parseCell(rec[i])
			if err != nil {
				return nil, fmt.Errorf("row %d column %s, %w", row, f, err)
			}
			p = p.With(f, v)
		}
		s = append(s, p)
	}
	return s, nil
}

func parseCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "null") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

// WriteCSV writes every field of the series with a header row. Missing values are
// written as empty cells.
func WriteCSV(w io.Writer, s Series) error {
	cw := csv.NewWriter(w)
	fields := Fields()

	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.String()
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	rec := make([]string, len(fields))
	for _, p := range s {
		for i, f := range fields {
			v := p.Value(f)
			if math.IsNaN(v) {
				rec[i] = ""
				continue
			}
			rec[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
