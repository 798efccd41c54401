package transform

import "github.com/roach88/optchain/internal/ir"

// Arg is a (name, type) pair used when forwarding the call.
type Arg struct {
	Name string
	Type ir.Type
}

// Partition is the split of a receiver-free parameter list.
type Partition struct {
	// Required and Optional keep original relative order within each group.
	Required []ir.Param
	Optional []ir.Param
	// Forward lists every parameter in strict original order. It is the
	// authoritative order for invoking the original logic.
	Forward []Arg
}

// PartitionParams splits params into required and optional groups. params
// must not contain the receiver and must be validated, so every pattern is a
// plain identifier.
func PartitionParams(params []ir.Param) Partition {
	var p Partition
	for _, param := range params {
		if param.IsOptional() {
			p.Optional = append(p.Optional, param)
		} else {
			p.Required = append(p.Required, param)
		}
		p.Forward = append(p.Forward, Arg{Name: param.Pattern.Name, Type: param.Type})
	}
	return p
}

// Fields returns the builder fields for ps.
func Fields(ps []ir.Param) []ir.Field {
	fields := make([]ir.Field, len(ps))
	for i, p := range ps {
		fields[i] = ir.Field{Name: p.Pattern.Name, Type: p.Type.Clone()}
	}
	return fields
}

// Names returns the forwarded argument names in order.
func (p Partition) Names() []string {
	names := make([]string, len(p.Forward))
	for i, a := range p.Forward {
		names[i] = a.Name
	}
	return names
}
