package tracing

import (
	"bytes"
	"encoding"
	"errors"
	"fmt"
	"go/types"
	"strings"
	"unicode"
)

// Reference names a package level function or a method of a named type.
//
// Text form:
//
//	"pkg/path".Name
//	"pkg/path".Type.Name
type Reference struct {
	Package string
	Type    string
	Name    string
}

var (
	_ encoding.TextUnmarshaler = (*Reference)(nil)
	_ encoding.TextMarshaler   = Reference{}
)

func (r *Reference) UnmarshalText(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if s == "" {
		return errors.New("empty reference")
	}

	if !strings.HasPrefix(s, `"`) {
		return fmt.Errorf("reference must start with quoted package: %q", s)
	}
	end := strings.Index(s[1:], `"`)
	if end < 0 {
		return fmt.Errorf("unterminated quoted package in reference: %q", s)
	}
	end++

	pkg := s[1:end]
	if pkg == "" {
		return fmt.Errorf("package cannot be empty in reference: %q", s)
	}

	rest, ok := strings.CutPrefix(s[end+1:], ".")
	if !ok || rest == "" {
		return fmt.Errorf("reference must contain a name: %q", s)
	}

	parts := strings.Split(rest, ".")
	if len(parts) > 2 {
		return fmt.Errorf("reference must have 1 or 2 identifiers after package: %q", s)
	}
	for _, p := range parts {
		if !isIdent(p) {
			return fmt.Errorf("invalid identifier %q in reference %q", p, s)
		}
	}

	*r = Reference{Package: pkg}
	if len(parts) == 2 {
		r.Type = parts[0]
	}
	r.Name = parts[len(parts)-1]

	return nil
}

func (r Reference) MarshalText() ([]byte, error) {
	if r.Package == "" {
		return nil, fmt.Errorf("cannot marshal Reference: empty Package")
	}
	if r.Name == "" {
		return nil, fmt.Errorf("cannot marshal Reference: empty Name")
	}

	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(r.Package)
	b.WriteString(`".`)
	if r.Type != "" {
		b.WriteString(r.Type)
		b.WriteByte('.')
	}
	b.WriteString(r.Name)

	return []byte(b.String()), nil
}

func (r Reference) String() string {
	v, err := r.MarshalText()
	if err != nil {
		return fmt.Sprintf("reference-invalid(%s.%s.%s)", r.Package, r.Type, r.Name)
	}

	return string(v)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !unicode.IsLetter(r) && r != '_' {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

// referenceOf returns a reference to the given callee. Builtins belong to the
// "builtin" package. Returns false for anything that cannot be referenced,
// e.g. interface methods or function values.
func referenceOf(obj types.Object) (Reference, bool) {
	switch o := obj.(type) {
	case *types.Builtin:
		return Reference{Package: "builtin", Name: o.Name()}, true
	case *types.Func:
		if o.Pkg() == nil {
			return Reference{}, false
		}

		ref := Reference{
			Package: o.Pkg().Path(),
			Name:    o.Name(),
		}
		sig, ok := o.Type().(*types.Signature)
		if !ok || sig.Recv() == nil {
			return ref, true
		}

		recv := sig.Recv().Type()
		if p, ok := recv.(*types.Pointer); ok {
			recv = p.Elem()
		}
		nt, ok := recv.(*types.Named)
		if !ok {
			return Reference{}, false
		}
		ref.Type = nt.Obj().Name()
		return ref, true
	default:
		return Reference{}, false
	}
}
