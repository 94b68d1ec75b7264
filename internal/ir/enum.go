package ir

import (
	"fortio.org/safecast"

	"kiln/internal/diag"
)

// EnumDef is a typed enumeration owned by a generator. Members are
// constants of the enum width; the code generator emits one typedef per
// definition.
type EnumDef struct {
	Name   string
	Width  uint32
	values map[string]*Var
	names  []string
}

// Enum creates an enum definition. Every value must fit the width and
// member names must be unique.
func (g *Generator) Enum(name string, values map[string]int64, width uint32) (*EnumDef, error) {
	if err := g.checkNewName(name); err != nil {
		return nil, err
	}
	if _, err := safecast.Conv[uint8](width); err != nil || width == 0 {
		return nil, diag.Newf(diag.ConstructionError, []Node{g},
			"illegal enum width %d for %s", width, name)
	}
	def := &EnumDef{
		Name:   name,
		Width:  width,
		values: make(map[string]*Var, len(values)),
	}
	for member, value := range values {
		c, err := newConst(g, value, width, false)
		if err != nil {
			return nil, err
		}
		c.Name = member
		def.values[member] = c
		def.names = append(def.names, member)
	}
	g.enums[name] = def
	g.enumNames = append(g.enumNames, name)
	return def, nil
}

// MemberNames returns member names in registration order.
func (e *EnumDef) MemberNames() []string { return e.names }

// Member returns the constant bound to a member name, nil when absent.
func (e *EnumDef) Member(name string) *Var { return e.values[name] }

// StructField is one field of a packed struct.
type StructField struct {
	Name   string
	Width  uint32
	Signed bool
}

// PackedStruct is a named packed struct type. Only the name and total
// width participate in declaration emission; the definition itself is
// assumed to live in an included header.
type PackedStruct struct {
	Name   string
	Fields []StructField
}

// Width returns the summed field width.
func (s *PackedStruct) Width() uint32 {
	var total uint32
	for _, f := range s.Fields {
		total += f.Width
	}
	return total
}
