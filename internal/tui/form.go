package tui

import (
	"fmt"
	"strconv"
	"strings"
)

type field struct {
	label   string
	numeric bool
	// positive additionally rejects values <= 0.
	positive bool
}

type form struct {
	title  string
	fields []field
	values []string
	cursor int
	input  string
	err    string
}

func newForm(title string, fields ...field) *form {
	return &form{
		title:  title,
		fields: fields,
		values: make([]string, 0, len(fields)),
	}
}

// submit checks the pending input against the current field. On success the
// form advances and reports whether every field has been filled. On failure
// the same field is prompted again.
func (f *form) submit() (done bool) {
	fd := f.fields[f.cursor]
	in := strings.TrimSpace(f.input)
	f.input = ""

	if fd.numeric {
		v, err := strconv.ParseFloat(in, 64)
		if err != nil {
			f.err = fmt.Sprintf("%s: %q is not a number", fd.label, in)
			return false
		}
		if fd.positive && !(v > 0) {
			f.err = fmt.Sprintf("%s must be positive", fd.label)
			return false
		}
	} else if in == "" {
		f.err = fmt.Sprintf("%s must not be empty", fd.label)
		return false
	}

	f.err = ""
	f.values = append(f.values, in)
	f.cursor++
	return f.cursor == len(f.fields)
}

func (f *form) current() field {
	return f.fields[f.cursor]
}

func (f *form) text(i int) string {
	return f.values[i]
}

// number is only called for numeric fields that passed submit.
func (f *form) number(i int) float64 {
	v, _ := strconv.ParseFloat(f.values[i], 64)
	return v
}
