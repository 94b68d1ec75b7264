package codegen

import (
	"kiln/internal/ir"
)

// CreateStub emits an empty module with top's name and port list, used to
// declare black-box wrappers for externally defined modules. Interface
// ports are cloned as plain logic ports; a stub stands alone without its
// definitions.
func CreateStub(top *ir.Generator) (string, error) {
	gen := ir.NewGenerator(top.Name)
	for _, name := range top.PortNames() {
		port := top.GetPort(name)
		p, err := gen.Port(port.Port.Direction, name, port.Width, port.Size, port.Port.Type, port.IsSigned)
		if err != nil {
			return "", err
		}
		p.IsPacked = port.IsPacked
		p.ExplicitArray = port.ExplicitArray
	}
	res, err := Generate(gen, Options{})
	if err != nil {
		return "", err
	}
	return res.Sources[top.Name], nil
}
