package schema

import (
	"fmt"
	"strings"

	"github.com/go-pkgz/stringutils"
)

// Transform defines one-way encoding applied to a value before it goes to sql
type Transform int

// supported transforms
const (
	TransformNone Transform = iota
	TransformMD4
	TransformMD5
	TransformSHA1
	TransformSHA256
	TransformSHA512
)

var transformNames = map[Transform]string{
	TransformNone:   "",
	TransformMD4:    "md4",
	TransformMD5:    "md5",
	TransformSHA1:   "sha1",
	TransformSHA256: "sha256",
	TransformSHA512: "sha512",
}

// String returns transform keyword as used in wordlist spec, empty for TransformNone
func (t Transform) String() string {
	return transformNames[t]
}

// UnmarshalText parses transform keyword, case-insensitive
func (t *Transform) UnmarshalText(text []byte) error {
	for k, v := range transformNames {
		if strings.ToLower(string(text)) == v {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrTransformNotAllowed, string(text))
}

// Binding ties a column to the wordlist file feeding it
type Binding struct {
	Column    Column
	Path      string
	Transform Transform
}

// ParseBinding makes Binding from "column:path:transform" spec. The column is looked up by name
// in columns, first match wins. Transform part is optional.
func ParseBinding(spec string, columns []Column) (Binding, error) {
	parts := strings.SplitN(spec, ":", 3)
	if parts[0] == "" {
		return Binding{}, fmt.Errorf("%w: wordlist %q, expected column:path:transform", ErrMalformed, spec)
	}

	names := make([]string, 0, len(columns))
	for _, c := range columns {
		names = append(names, c.Name)
	}
	idx := stringutils.IndexOf(names, parts[0])
	if idx < 0 {
		return Binding{}, fmt.Errorf("%w: no column %q declared", ErrUnknownColumn, parts[0])
	}

	if len(parts) < 2 || parts[1] == "" {
		return Binding{}, fmt.Errorf("%w: wordlist %q has no file path", ErrMalformed, spec)
	}

	res := Binding{Column: columns[idx], Path: parts[1]}
	if len(parts) == 3 {
		if err := res.Transform.UnmarshalText([]byte(parts[2])); err != nil {
			return Binding{}, fmt.Errorf("wordlist %q: %w", spec, err)
		}
	}
	return res, nil
}
