package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/pable/go-sb-features/internal/model"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// WriteFeatures writes shot feature rows in the given format.
func WriteFeatures(w io.Writer, format string, feats []model.ShotFeatures) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return WriteJSON(w, feats)
	case FormatCSV:
		return WriteCSV(w, feats)
	default:
		return fmt.Errorf("unknown export format %q (want json or csv)", format)
	}
}

// WriteJSON writes the rows as an indented JSON array; absent values are null.
func WriteJSON(w io.Writer, feats []model.ShotFeatures) error {
	if feats == nil {
		feats = []model.ShotFeatures{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(feats)
}

// CSVHeader returns the CSV column names, taken from the JSON field names.
func CSVHeader() []string {
	t := reflect.TypeOf(model.ShotFeatures{})
	cols := make([]string, t.NumField())
	for i := range cols {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		cols[i] = name
	}
	return cols
}

func csvRecord(f model.ShotFeatures) []string {
	v := reflect.ValueOf(f)
	rec := make([]string, v.NumField())
	for i := range rec {
		rec[i] = fmt.Sprint(v.Field(i).Interface())
	}
	return rec
}

// WriteCSV writes a header row and one row per shot; absent values are empty cells.
func WriteCSV(w io.Writer, feats []model.ShotFeatures) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader()); err != nil {
		return err
	}
	for _, f := range feats {
		if err := cw.Write(csvRecord(f)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
