package storage

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

func earthMoon(t *testing.T) *dynamo.System {
	t.Helper()
	sys := dynamo.NewSystem()
	require.NoError(t, sys.AddBody("Earth", 5.972e24, dynamo.Zero, dynamo.Zero))
	require.NoError(t, sys.AddBody("Moon", 7.348e22, dynamo.Vec(3.844e8, 0, 0), dynamo.Vec(0, 1022, 0)))
	return sys
}

func assertSameBodies(t *testing.T, want, got *dynamo.System) {
	t.Helper()
	require.Equal(t, want.IDs(), got.IDs())
	for _, wb := range want.Bodies() {
		gb, ok := got.Body(wb.ID())
		require.True(t, ok, "missing body %s", wb.ID())
		assert.Equal(t, wb.Mass(), gb.Mass())
		assert.Equal(t, wb.Position, gb.Position)
		assert.Equal(t, wb.Velocity, gb.Velocity)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, ext := range []string{".json", ".csv", ".JSON"} {
		t.Run(ext, func(t *testing.T) {
			src := earthMoon(t)
			b, _ := src.Body("Moon")
			b.Position = dynamo.Vec(0.1, -1.0/3.0, 1e-300)

			path := filepath.Join(t.TempDir(), "bodies"+ext)
			require.NoError(t, Save(src, path))

			dst := dynamo.NewSystem()
			require.NoError(t, Load(dst, path))
			assertSameBodies(t, src, dst)
		})
	}
}

func TestSaveEmptySystem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, Save(dynamo.NewSystem(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))

	sys := earthMoon(t)
	require.NoError(t, Load(sys, path))
	assert.Equal(t, 0, sys.Len())
}

func TestFailedSaveKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, Save(earthMoon(t), path))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	runaway := dynamo.NewSystem()
	require.NoError(t, runaway.AddBody("runaway", 1, dynamo.Zero, dynamo.Vec(math.Inf(1), 0, 0)))
	require.Error(t, Save(runaway, path))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	sys := dynamo.NewSystem()
	require.NoError(t, Load(sys, path))
	assertSameBodies(t, earthMoon(t), sys)
}

func TestJSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatJSON, Snapshot(earthMoon(t))))

	out := buf.String()
	for _, key := range []string{`"id"`, `"masa"`, `"posicion"`, `"velocidad"`} {
		assert.Contains(t, out, key)
	}
}

func TestCSVLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatCSV, Snapshot(earthMoon(t))))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id;masa;pos_x;pos_y;pos_z;vel_x;vel_y;vel_z", lines[0])
	assert.Equal(t, "Moon;7.348e+22;3.844e+08;0;0;0;1022;0", lines[2])
}

func TestUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bodies.txt")

	err := Save(earthMoon(t), path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no file may be written for an unsupported format")

	require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))
	sys := earthMoon(t)
	assert.ErrorIs(t, Load(sys, path), ErrUnsupportedFormat)
	assert.Equal(t, 2, sys.Len())
}

func TestLoadMissingFile(t *testing.T) {
	sys := earthMoon(t)
	err := Load(sys, filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, 2, sys.Len())
}

func TestMalformedJSON(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		field string
	}{
		{"not json", `{"id":`, ""},
		{"missing id", `[{"masa": 1, "posicion": [0,0,0], "velocidad": [0,0,0]}]`, "id"},
		{"missing mass", `[{"id": "a", "posicion": [0,0,0], "velocidad": [0,0,0]}]`, "masa"},
		{"missing position", `[{"id": "a", "masa": 1, "velocidad": [0,0,0]}]`, "posicion"},
		{"short velocity", `[{"id": "a", "masa": 1, "posicion": [0,0,0], "velocidad": [0,0]}]`, "velocidad"},
		{"long position", `[{"id": "a", "masa": 1, "posicion": [0,0,0,0], "velocidad": [0,0,0]}]`, "posicion"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.data), FormatJSON)
			require.ErrorIs(t, err, ErrMalformedRecord)

			if tt.field != "" {
				var recErr *RecordError
				require.True(t, errors.As(err, &recErr))
				assert.Equal(t, 0, recErr.Index)
				assert.Equal(t, tt.field, recErr.Field)
			}
		})
	}
}

func TestMalformedCSV(t *testing.T) {
	header := "id;masa;pos_x;pos_y;pos_z;vel_x;vel_y;vel_z\n"
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"wrong header", "id;mass;x;y;z;vx;vy;vz\n"},
		{"short header", "id;masa\n"},
		{"few columns", header + "a;1;0;0;0;0;0\n"},
		{"many columns", header + "a;1;0;0;0;0;0;0;0\n"},
		{"not a number", header + "a;heavy;0;0;0;0;0;0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.data), FormatCSV)
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestCSVToleratesSpacing(t *testing.T) {
	data := "id; masa; pos_x; pos_y; pos_z; vel_x; vel_y; vel_z\nsun; 1.989e30; 0; 0; 0; 0; 0; 0\n"
	records, err := Decode(strings.NewReader(data), FormatCSV)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "sun", records[0].ID)
	assert.Equal(t, 1.989e30, records[0].Mass)
}

func TestFailedLoadLeavesSystemUntouched(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
		want error
	}{
		{"malformed", "bad.json", `[{"id": "x"}]`, ErrMalformedRecord},
		{"invalid mass", "mass.json", `[{"id": "x", "masa": -1, "posicion": [0,0,0], "velocidad": [0,0,0]}]`, dynamo.ErrInvalidMass},
		{"duplicate id", "dup.csv", "id;masa;pos_x;pos_y;pos_z;vel_x;vel_y;vel_z\na;1;0;0;0;0;0;0\na;2;1;0;0;0;0;0\n", dynamo.ErrDuplicateID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0644))

			sys := earthMoon(t)
			before := earthMoon(t)

			err := Load(sys, path)
			assert.ErrorIs(t, err, tt.want)
			assertSameBodies(t, before, sys)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		err  bool
	}{
		{"a.json", FormatJSON, false},
		{"dir/a.CSV", FormatCSV, false},
		{"a.yaml", 0, true},
		{"noext", 0, true},
	}

	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if tt.err {
			assert.ErrorIs(t, err, ErrUnsupportedFormat, tt.path)
			continue
		}
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}
