package analyzer

import (
	"testing"

	"verylcheck/internal/engine/symbol"
	"verylcheck/internal/engine/syntax"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSymbolTable_Kinds(t *testing.T) {
	table, errs := analyze(t, nil, `
package P {
    union U {
        a: logic,
        b: logic,
    }
}
interface I {
    var v: logic;
    modport mp {
        v: inout,
    }
}
module M #(
    param N: u32 = 2,
) (
    i: input logic,
    o: output logic,
    port: modport I::mp,
) {
    var r: logic;
    inst u: M (
        i,
        o: r,
        port: port,
    );
    for k in 0..N :blk {
    }
}`)
	require.Empty(t, errs)

	kinds := make(map[string]string)
	for _, sym := range table.Symbols() {
		kinds[sym.Namespace.Child(sym.Name).String()] = sym.Kind.KindName()
	}
	assert.Equal(t, map[string]string{
		"prj::P":          "package",
		"prj::P::U":       "union",
		"prj::P::U::a":    "union member",
		"prj::P::U::b":    "union member",
		"prj::I":          "interface",
		"prj::I::v":       "variable",
		"prj::I::mp":      "modport",
		"prj::I::mp::v":   "modport member",
		"prj::M":          "module",
		"prj::M::N":       "parameter",
		"prj::M::i":       "port",
		"prj::M::o":       "port",
		"prj::M::port":    "port",
		"prj::M::r":       "variable",
		"prj::M::u":       "instance",
		"prj::M::blk":     "block",
		"prj::M::blk::k":  "genvar",
	}, kinds)

	res, err := table.Resolve(symbol.Reference{Name: "M"}, symbol.Namespace{testProject})
	require.NoError(t, err)
	module := res.Found.Kind.(symbol.Module)
	assert.Equal(t, []symbol.PortInfo{
		{Name: "i", Direction: symbol.Input},
		{Name: "o", Direction: symbol.Output},
		{Name: "port", Direction: symbol.DirectionModport},
	}, module.Ports)

	res, err = table.Resolve(symbol.Reference{Name: "u"}, moduleM)
	require.NoError(t, err)
	inst := res.Found.Kind.(symbol.Instance)
	assert.Equal(t, []string{"M"}, inst.TypeName)
	require.Len(t, inst.Connects, 3)
	assert.Equal(t, symbol.Reference{Name: "i"}, inst.Connects[0].Target)
	assert.Equal(t, "r", inst.Connects[1].Target.Name)
}

func TestCreateSymbolTable_Duplicates(t *testing.T) {
	_, errs := analyze(t, nil, `
module M {
    var a: logic;
    var a: logic;
    function f (a: input logic) {
    }
}`, `
module M {
}`)
	require.Len(t, errs, 2)
	assert.Equal(t, []string{CodeDuplicatedIdentifier, CodeDuplicatedIdentifier}, codes(errs))
	assert.Equal(t, "a", errs[0].Identifier)
	assert.Equal(t, 4, errs[0].Token.Line)
	assert.Equal(t, "M", errs[1].Identifier)
	assert.Equal(t, "f1.veryl", errs[1].Token.File)
}

func TestCreateSymbolTable_AnonymousBlocksDoNotCollide(t *testing.T) {
	src, err := syntax.Parse("a.veryl", `
module M {
    always_comb {
        for i: u32 in 0..2 {
        }
        for i: u32 in 0..2 {
        }
    }
    if 1 {
        let w: logic = 1;
    } else {
        let w: logic = 0;
    }
}`)
	require.NoError(t, err)

	table := symbol.NewTable()
	pass := NewCreateSymbolTable(testProject, table)
	syntax.Walk(src, pass)
	assert.Empty(t, pass.Errors)
}
