package symbol

import (
	"fmt"

	"verylcheck/internal/engine/syntax"
)

type Direction int

const (
	DirectionNone Direction = iota
	Input
	Output
	Inout
	Ref
	DirectionModport
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	case Inout:
		return "inout"
	case Ref:
		return "ref"
	case DirectionModport:
		return "modport"
	}
	return "none"
}

// Writable reports whether a port or modport member with this direction may
// be driven from inside its declaring unit.
func (d Direction) Writable() bool {
	return d == Output || d == Inout || d == Ref
}

// DirectionFromToken maps a direction keyword to a Direction.
func DirectionFromToken(tok syntax.Token) (Direction, error) {
	switch tok.Kind {
	case syntax.KwInput:
		return Input, nil
	case syntax.KwOutput:
		return Output, nil
	case syntax.KwInout:
		return Inout, nil
	case syntax.KwRef:
		return Ref, nil
	case syntax.KwModport:
		return DirectionModport, nil
	}
	return DirectionNone, fmt.Errorf("%q is not a direction", tok.Text)
}

// Kind is the closed set of symbol kinds. Switches over Kind are expected to
// be exhaustive.
type Kind interface {
	kind()
	KindName() string
}

type Variable struct {
	Type []string
}

type Port struct {
	Direction Direction
	Type      []string
}

type Parameter struct {
	Type []string
}

type PortInfo struct {
	Name      string
	Direction Direction
}

type Module struct {
	Ports []PortInfo
}

type Interface struct{}

type Modport struct{}

type ModportMember struct {
	Direction Direction
}

type Struct struct {
	Members []string
}

type Union struct {
	Members []string
}

type StructMember struct {
	Type []string
}

type UnionMember struct {
	Type []string
}

// Connect is one named port connection of an instance. Target is empty when
// the connection is an expression rather than a plain signal reference.
type Connect struct {
	Port   string
	Target Reference
}

type Instance struct {
	TypeName []string
	Connects []Connect
}

type Function struct {
	Ports []PortInfo
}

type Genvar struct{}

type Package struct{}

// Block is a labelled generate block.
type Block struct{}

// SystemVerilog marks an opaque unit whose ports cannot be inspected.
type SystemVerilog struct{}

func (Variable) kind()      {}
func (Port) kind()          {}
func (Parameter) kind()     {}
func (Module) kind()        {}
func (Interface) kind()     {}
func (Modport) kind()       {}
func (ModportMember) kind() {}
func (Struct) kind()        {}
func (Union) kind()         {}
func (StructMember) kind()  {}
func (UnionMember) kind()   {}
func (Instance) kind()      {}
func (Function) kind()      {}
func (Genvar) kind()        {}
func (Package) kind()       {}
func (Block) kind()         {}
func (SystemVerilog) kind() {}

func (Variable) KindName() string      { return "variable" }
func (Port) KindName() string          { return "port" }
func (Parameter) KindName() string     { return "parameter" }
func (Module) KindName() string        { return "module" }
func (Interface) KindName() string     { return "interface" }
func (Modport) KindName() string       { return "modport" }
func (ModportMember) KindName() string { return "modport member" }
func (Struct) KindName() string        { return "struct" }
func (Union) KindName() string         { return "union" }
func (StructMember) KindName() string  { return "struct member" }
func (UnionMember) KindName() string   { return "union member" }
func (Instance) KindName() string      { return "instance" }
func (Function) KindName() string      { return "function" }
func (Genvar) KindName() string        { return "genvar" }
func (Package) KindName() string       { return "package" }
func (Block) KindName() string         { return "block" }
func (SystemVerilog) KindName() string { return "systemverilog" }

// typePath returns the declared type of value-like kinds.
func typePath(k Kind) []string {
	switch k := k.(type) {
	case Variable:
		return k.Type
	case Port:
		return k.Type
	case Parameter:
		return k.Type
	case StructMember:
		return k.Type
	case UnionMember:
		return k.Type
	}
	return nil
}
