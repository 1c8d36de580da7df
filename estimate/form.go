// estimate/form.go
package estimate

import (
	"regexp"
	"sort"
	"strings"
)

// Sections of a structured estimate, in display order.
var Sections = []string{"materials", "labor", "utilities", "misc"}

// structuredName matches field names like structured[materials][cement][qty].
var structuredName = regexp.MustCompile(`^structured\[(.+)\]$`)

// ParseFieldName splits a bracket-delimited field name into its path
// segments: structured[a][b][c] -> ["a","b","c"]. A single bracket group
// and segments containing underscores or digits are valid. Names outside
// the structured[...] grammar report ok == false.
func ParseFieldName(name string) (path []string, ok bool) {
	m := structuredName.FindStringSubmatch(name)
	if m == nil {
		return nil, false
	}
	return strings.Split(m[1], "]["), true
}

// SetPath assigns value at the given path inside root, creating
// intermediate objects as needed. The last segment is a leaf assignment.
func SetPath(root map[string]interface{}, path []string, value string) {
	ref := root
	for _, key := range path[:len(path)-1] {
		child, ok := ref[key].(map[string]interface{})
		if !ok {
			child = map[string]interface{}{}
			ref[key] = child
		}
		ref = child
	}
	ref[path[len(path)-1]] = value
}

// Form holds one estimate form's field values keyed by input name.
// Values are stored as raw strings, preserving user input fidelity;
// numeric interpretation happens only in the total calculator.
// Exactly one Form exists per inbox send; forms never share state.
type Form struct {
	fields   map[string]string
	readOnly map[string]bool
	derived  map[string]bool
}

func NewForm() *Form {
	return &Form{
		fields:   map[string]string{},
		readOnly: map[string]bool{},
		derived:  map[string]bool{},
	}
}

// Set records a user edit. Edits to read-only fields are ignored, the
// same way a readonly input rejects typing.
func (f *Form) Set(name, value string) {
	if f.readOnly[name] || f.derived[name] {
		return
	}
	f.fields[name] = value
}

// Bind assigns a field and marks it read-only. Identity fields bound
// from the current inbox item (client name, project name) use this so a
// stale draft can never shadow a fresh binding.
func (f *Form) Bind(name, value string) {
	f.fields[name] = value
	f.readOnly[name] = true
}

// setDerived writes a calculator-owned field. Once a derived field
// carries a computed value it is no longer independently editable.
func (f *Form) setDerived(name, value string) {
	f.fields[name] = value
	if value != "" {
		f.derived[name] = true
	}
}

func (f *Form) Get(name string) string {
	return f.fields[name]
}

func (f *Form) IsReadOnly(name string) bool {
	return f.readOnly[name] || f.derived[name]
}

// Names returns all populated field names with the given prefix, sorted
// for deterministic iteration.
func (f *Form) Names(prefix string) []string {
	var out []string
	for name := range f.fields {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Snapshot copies the non-empty fields for draft persistence. Empty
// values are omitted, matching what an autosave collects from inputs.
func (f *Form) Snapshot() map[string]string {
	out := make(map[string]string, len(f.fields))
	for name, value := range f.fields {
		if value != "" {
			out[name] = value
		}
	}
	return out
}

/// Reset returns the form to its empty state. Identity bindings belong
// to the session, not to the entered data, so they survive; computed
// fields do not.
func (f *Form) Reset() {
	for name := range f.fields {
		if !f.readOnly[name] {
			delete(f.fields, name)
		}
	}
	f.derived = map[string]bool{}
}

// StructuredPayload assembles the nested structured object from every
// structured[...] field, ready for JSON serialization.
func (f *Form) StructuredPayload() map[string]interface{} {
	root := map[string]interface{}{}
	for _, name := range f.Names("structured[") {
		path, ok := ParseFieldName(name)
		if !ok {
			continue
		}
		SetPath(root, path, f.fields[name])
	}
	return root
}
