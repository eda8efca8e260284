package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

var (
	ErrUnsupportedFormat = errors.New("storage: unsupported file format (use .json or .csv)")
	ErrMalformedRecord   = errors.New("storage: malformed body record")
)

// csvHeader is the fixed column layout of the CSV format.
var csvHeader = []string{"id", "masa", "pos_x", "pos_y", "pos_z", "vel_x", "vel_y", "vel_z"}

type Format int

const (
	FormatJSON Format = iota + 1
	FormatCSV
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	}
	return "unknown"
}

// FormatFromPath selects the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
}

// Record is the serializable form of one body.
type Record struct {
	ID       string     `json:"id"`
	Mass     float64    `json:"masa"`
	Position [3]float64 `json:"posicion"`
	Velocity [3]float64 `json:"velocidad"`
}

func FromBody(b *dynamo.Body) Record {
	return Record{
		ID:       b.ID(),
		Mass:     b.Mass(),
		Position: b.Position.Triple(),
		Velocity: b.Velocity.Triple(),
	}
}

func (r Record) ToBody() (*dynamo.Body, error) {
	return dynamo.NewBody(r.ID, r.Mass, dynamo.FromTriple(r.Position), dynamo.FromTriple(r.Velocity))
}

// RecordError locates a failure at a record index (0-based, data rows only)
// and, when known, a field name.
type RecordError struct {
	Index int
	Field string
	Err   error
}

func (e *RecordError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("record %d (%s): %v", e.Index, e.Field, e.Err)
	}
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

func malformed(index int, field, format string, args ...any) error {
	return &RecordError{
		Index: index,
		Field: field,
		Err:   fmt.Errorf("%w: %s", ErrMalformedRecord, fmt.Sprintf(format, args...)),
	}
}

// Snapshot returns the records of sys in iteration order.
func Snapshot(sys *dynamo.System) []Record {
	bodies := sys.Bodies()
	records := make([]Record, len(bodies))
	for i, b := range bodies {
		records[i] = FromBody(b)
	}
	return records
}

// Restore validates every record and, only if all are valid, replaces the
// contents of sys with them.
func Restore(sys *dynamo.System, records []Record) error {
	bodies := make([]*dynamo.Body, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if _, dup := seen[r.ID]; dup {
			return &RecordError{Index: i, Field: "id", Err: fmt.Errorf("%w: %q", dynamo.ErrDuplicateID, r.ID)}
		}
		seen[r.ID] = struct{}{}

		b, err := r.ToBody()
		if err != nil {
			return &RecordError{Index: i, Field: "masa", Err: err}
		}
		bodies = append(bodies, b)
	}

	sys.Clear()
	for _, b := range bodies {
		if err := sys.Insert(b); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the bodies of sys to path in the format chosen by its extension.
// The records are encoded before path is opened, so a failed encoding leaves
// an existing file intact.
func Save(sys *dynamo.System, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, format, Snapshot(sys)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Load replaces the bodies of sys with those stored at path. The system is
// left untouched if the file cannot be read or holds an invalid record.
func Load(sys *dynamo.System, path string) error {
	records, err := ReadFile(path)
	if err != nil {
		return err
	}
	return Restore(sys, records)
}

// ReadFile decodes the records stored at path without touching any system.
func ReadFile(path string) ([]Record, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := Decode(file, format)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}

func Encode(w io.Writer, format Format, records []Record) error {
	switch format {
	case FormatJSON:
		return encodeJSON(w, records)
	case FormatCSV:
		return encodeCSV(w, records)
	}
	return fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
}

func Decode(r io.Reader, format Format) ([]Record, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(r)
	case FormatCSV:
		return decodeCSV(r)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
}

func encodeJSON(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(records)
}

// jsonRecord mirrors Record with optional fields so missing keys can be told
// apart from zero values.
type jsonRecord struct {
	ID       *string   `json:"id"`
	Mass     *float64  `json:"masa"`
	Position []float64 `json:"posicion"`
	Velocity []float64 `json:"velocidad"`
}

func decodeJSON(r io.Reader) ([]Record, error) {
	var raw []jsonRecord
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	records := make([]Record, len(raw))
	for i, jr := range raw {
		if jr.ID == nil {
			return nil, malformed(i, "id", "missing")
		}
		if jr.Mass == nil {
			return nil, malformed(i, "masa", "missing")
		}
		pos, err := triple(i, "posicion", jr.Position)
		if err != nil {
			return nil, err
		}
		vel, err := triple(i, "velocidad", jr.Velocity)
		if err != nil {
			return nil, err
		}
		records[i] = Record{ID: *jr.ID, Mass: *jr.Mass, Position: pos, Velocity: vel}
	}
	return records, nil
}

func triple(index int, field string, v []float64) ([3]float64, error) {
	if v == nil {
		return [3]float64{}, malformed(index, field, "missing")
	}
	vec, err := dynamo.VectorFromSlice(v)
	if err != nil {
		return [3]float64{}, malformed(index, field, "%v", err)
	}
	return vec.Triple(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func encodeCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.ID, formatFloat(r.Mass),
			formatFloat(r.Position[0]), formatFloat(r.Position[1]), formatFloat(r.Position[2]),
			formatFloat(r.Velocity[0]), formatFloat(r.Velocity[1]), formatFloat(r.Velocity[2]),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func decodeCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedRecord)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if len(header) != len(csvHeader) {
		return nil, fmt.Errorf("%w: header has %d columns, want %d", ErrMalformedRecord, len(header), len(csvHeader))
	}
	for i, name := range header {
		if strings.TrimSpace(name) != csvHeader[i] {
			return nil, fmt.Errorf("%w: header column %d is %q, want %q", ErrMalformedRecord, i, name, csvHeader[i])
		}
	}

	records := make([]Record, 0)
	for i := 0; ; i++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &RecordError{Index: i, Err: fmt.Errorf("%w: %v", ErrMalformedRecord, err)}
		}
		if len(row) != len(csvHeader) {
			return nil, malformed(i, "", "%d columns, want %d", len(row), len(csvHeader))
		}

		var nums [7]float64
		for k := range nums {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[k+1]), 64)
			if err != nil {
				return nil, malformed(i, csvHeader[k+1], "not a number: %q", row[k+1])
			}
			nums[k] = v
		}

		records = append(records, Record{
			ID:       row[0],
			Mass:     nums[0],
			Position: [3]float64{nums[1], nums[2], nums[3]},
			Velocity: [3]float64{nums[4], nums[5], nums[6]},
		})
	}
	return records, nil
}
