// Package schema generates a CUE schema from the parameter registry and
// validates factory-data documents against it.
//
// The schema is a closed struct: every key must be a canonical parameter
// name and every value must have the shape its kind expects. Aliases that
// the document readers would otherwise accept are reported as unknown keys.
package schema

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cuejson "cuelang.org/go/encoding/json"
	cueyaml "cuelang.org/go/encoding/yaml"

	"github.com/roach88/factorydata/internal/registry"
)

// Syntax is a document encoding.
type Syntax int

const (
	SyntaxJSON Syntax = iota
	SyntaxYAML
)

func (s Syntax) String() string {
	if s == SyntaxYAML {
		return "yaml"
	}
	return "json"
}

// SyntaxFor picks the syntax from a file extension.
func SyntaxFor(path string) (Syntax, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return SyntaxJSON, nil
	case ".yaml", ".yml":
		return SyntaxYAML, nil
	default:
		return 0, fmt.Errorf("schema: cannot tell document syntax from %q", path)
	}
}

// Violation is one schema failure in a document.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

func (v Violation) String() string {
	if v.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", v.Line, v.Path, v.Message)
	}
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Schema validates documents for one registry.
type Schema struct {
	ctx     *cue.Context
	sources map[Syntax]string
	docs    map[Syntax]cue.Value
}

// New builds the JSON and YAML schemas for reg. A nil registry selects
// registry.Default().
func New(reg *registry.Registry) (*Schema, error) {
	if reg == nil {
		reg = registry.Default()
	}
	s := &Schema{
		ctx:     cuecontext.New(),
		sources: make(map[Syntax]string),
		docs:    make(map[Syntax]cue.Value),
	}
	for _, syntax := range []Syntax{SyntaxJSON, SyntaxYAML} {
		src := generate(reg, syntax)
		v := s.ctx.CompileString(src, cue.Filename("factorydata."+syntax.String()+".cue"))
		if err := v.Err(); err != nil {
			return nil, fmt.Errorf("schema: compile %s schema: %w", syntax, err)
		}
		s.sources[syntax] = src
		s.docs[syntax] = v.LookupPath(cue.ParsePath("#Document"))
	}
	return s, nil
}

// Source returns the generated CUE text for a syntax.
func (s *Schema) Source(syntax Syntax) string {
	return s.sources[syntax]
}

// Validate checks a document. A document that cannot be parsed at all is an
// error; schema failures are returned as violations sorted by line.
func (s *Schema) Validate(data []byte, syntax Syntax) ([]Violation, error) {
	name := "document." + syntax.String()
	return s.validate(name, data, syntax)
}

// ValidateFile checks a document that was read from path. Violation lines
// refer to that file.
func (s *Schema) ValidateFile(path string, data []byte) ([]Violation, error) {
	syntax, err := SyntaxFor(path)
	if err != nil {
		return nil, err
	}
	return s.validate(path, data, syntax)
}

func (s *Schema) validate(name string, data []byte, syntax Syntax) ([]Violation, error) {
	if strings.TrimSpace(string(data)) == "" {
		if syntax == SyntaxYAML {
			return nil, nil
		}
		return nil, fmt.Errorf("schema: %s: empty document", name)
	}

	doc, err := s.build(name, data, syntax)
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", name, err)
	}

	res := s.docs[syntax].Unify(doc)
	err = res.Validate(cue.Concrete(true))
	if err == nil {
		return nil, nil
	}
	return violations(name, err), nil
}

func (s *Schema) build(name string, data []byte, syntax Syntax) (cue.Value, error) {
	var v cue.Value
	switch syntax {
	case SyntaxYAML:
		f, err := cueyaml.Extract(name, data)
		if err != nil {
			return cue.Value{}, err
		}
		v = s.ctx.BuildFile(f)
	default:
		expr, err := cuejson.Extract(name, data)
		if err != nil {
			return cue.Value{}, err
		}
		if _, ok := expr.(*ast.StructLit); !ok {
			return cue.Value{}, fmt.Errorf("top level must be an object")
		}
		v = s.ctx.BuildExpr(expr)
	}
	if err := v.Err(); err != nil {
		return cue.Value{}, err
	}
	switch v.IncompleteKind() {
	case cue.StructKind:
		return v, nil
	case cue.NullKind:
		if syntax == SyntaxYAML {
			return s.ctx.CompileString("{}"), nil
		}
	}
	return cue.Value{}, fmt.Errorf("top level must be a mapping")
}

func violations(name string, err error) []Violation {
	var out []Violation
	seen := make(map[string]bool)
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		v := Violation{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
			Line:    lineIn(name, cueerrors.Positions(e)),
		}
		key := v.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	slices.SortStableFunc(out, func(a, b Violation) int {
		if a.Line != b.Line {
			return a.Line - b.Line
		}
		return strings.Compare(a.Path, b.Path)
	})
	return out
}

// lineIn returns the first line among positions that points into the
// document rather than the schema.
func lineIn(name string, positions []token.Pos) int {
	for _, p := range positions {
		if p.Filename() == name && p.Line() > 0 {
			return p.Line()
		}
	}
	return 0
}

// generate renders the schema text for a registry.
func generate(reg *registry.Registry, syntax Syntax) string {
	var b strings.Builder
	b.WriteString("// Code generated from the parameter registry. DO NOT EDIT.\n\n")
	for _, def := range definitions(syntax) {
		fmt.Fprintf(&b, "%s: %s\n", def.name, def.expr)
	}
	b.WriteString("\n#Document: {\n")
	for _, d := range reg.Descriptors() {
		fmt.Fprintf(&b, "\t%s?: %s\n", strconv.Quote(d.Name), kindDefinition(d.Kind))
	}
	b.WriteString("}\n")
	return b.String()
}

type definition struct {
	name string
	expr string
}

const (
	intPattern   = `=~"^[+-]?(0[xX][0-9a-fA-F]+|[0-9]+)$"`
	bytePattern  = `=~"^(0[xX])?[0-9a-fA-F]{1,2}$"`
	floatPattern = `=~"^[+-]?([0-9]+\\.?[0-9]*|\\.[0-9]+)([eE][+-]?[0-9]+)?$"`
)

// definitions lists the value shapes. YAML scalars reach the readers as
// their source text, so unquoted numbers and booleans are accepted there.
// A bare integer byte token is read as hex text ("99" is 0x99), so only
// integers of one or two digits are allowed; other tokens must be quoted.
func definitions(syntax Syntax) []definition {
	if syntax == SyntaxYAML {
		return []definition{
			{"#Int", intPattern + " | int"},
			{"#Text", "string | number | bool"},
			{"#Byte", bytePattern + " | (int & >=0 & <=99)"},
			{"#Bytes", "[...#Byte]"},
			{"#Float", floatPattern + " | number"},
			{"#Bool", `"true" | "false" | "1" | "0" | bool | 0 | 1`},
		}
	}
	return []definition{
		{"#Int", intPattern + " | int"},
		{"#Text", "string"},
		{"#Byte", bytePattern},
		{"#Bytes", "[...#Byte]"},
		{"#Float", floatPattern + " | number"},
		{"#Bool", `"true" | "false" | "1" | "0" | bool`},
	}
}

func kindDefinition(k registry.Kind) string {
	switch k {
	case registry.KindInt8, registry.KindInt16, registry.KindInt32:
		return "#Int"
	case registry.KindString:
		return "#Text"
	case registry.KindByteArray:
		return "#Bytes"
	case registry.KindFloat32:
		return "#Float"
	case registry.KindBool:
		return "#Bool"
	default:
		return "_|_"
	}
}

// ValidationError carries the violations of a document that failed the
// schema.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	switch len(e.Violations) {
	case 0:
		return "schema violation"
	case 1:
		return "schema violation: " + e.Violations[0].String()
	default:
		return fmt.Sprintf("%d schema violations, first: %s", len(e.Violations), e.Violations[0])
	}
}
