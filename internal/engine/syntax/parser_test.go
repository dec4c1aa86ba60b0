package syntax

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const counterSource = `
module Counter #(
    param WIDTH: u32 = 8,
) (
    clk: input clock,
    rst: input reset,
    en : input logic,
    cnt: output logic<WIDTH>,
) {
    var r: logic<WIDTH>;

    #[allow(missing_reset_statement)]
    always_ff (clk, rst) {
        if_reset {
            r = 0;
        } else if en {
            r += 1;
        }
    }

    assign cnt = r;
}
`

func TestParse_Module(t *testing.T) {
	src, err := Parse("counter.veryl", counterSource)
	require.NoError(t, err)
	require.Len(t, src.Items, 1)

	m, ok := src.Items[0].(*ModuleDecl)
	require.True(t, ok)
	assert.Equal(t, "Counter", m.Name.Text)
	require.Len(t, m.Params, 1)
	assert.Equal(t, "WIDTH", m.Params[0].Name.Text)
	require.Len(t, m.Ports, 4)
	assert.Equal(t, KwOutput, m.Ports[3].Direction.Kind)
	require.Len(t, m.Items, 3)

	ff, ok := m.Items[1].(*AlwaysFfDecl)
	require.True(t, ok)
	require.Len(t, ff.Attributes(), 1)
	assert.Equal(t, "allow", ff.Attrs[0].Name.Text)
	assert.Equal(t, "missing_reset_statement", ff.Attrs[0].Args[0].Text)
	assert.Equal(t, "clk", ff.Clock.Name.Text)
	assert.Equal(t, "rst", ff.Reset.Name.Text)

	ifReset, ok := ff.Body[0].(*IfResetStatement)
	require.True(t, ok)
	require.Len(t, ifReset.ElseIfs, 1)
	assert.Nil(t, ifReset.Else)

	inc, ok := ifReset.ElseIfs[0].Body[0].(*IdentifierStatement)
	require.True(t, ok)
	assert.Equal(t, AssignOp, inc.Assignment.Op.Kind)
	assert.Equal(t, "+=", inc.Assignment.Op.Text)

	assign, ok := m.Items[2].(*AssignDecl)
	require.True(t, ok)
	assert.Equal(t, "cnt", assign.Target.Name.Text)
	assert.False(t, assign.Target.Partial())
}

func TestParse_IdentifierSelects(t *testing.T) {
	src, err := Parse("t.veryl", `
module M {
    always_comb {
        a = 1;
        a[0] = 1;
        a.b = 1;
        a.b[3:0] = 1;
        P::c[i+:2] = 1;
    }
}`)
	require.NoError(t, err)
	body := src.Items[0].(*ModuleDecl).Items[0].(*AlwaysCombDecl).Body
	require.Len(t, body, 5)

	partial := make([]bool, len(body))
	for i, stmt := range body {
		partial[i] = stmt.(*IdentifierStatement).Target.Partial()
	}
	assert.Equal(t, []bool{false, true, true, true, true}, partial)

	scoped := body[4].(*IdentifierStatement).Target
	assert.Equal(t, []string{"P", "c"}, scoped.Path())
	assert.Equal(t, []string{"P"}, scoped.ScopeNames())
	require.NotNil(t, scoped.Selects[0].Op)
	assert.Equal(t, "+:", scoped.Selects[0].Op.Text)

	member := body[3].(*IdentifierStatement).Target
	assert.Equal(t, []string{"a", "b"}, member.Path())
	assert.Equal(t, "a.b", member.Text())
}

func TestParse_IfExpressionAndCase(t *testing.T) {
	src, err := Parse("t.veryl", `
module M {
    always_comb {
        if if c { x } else { y } {
            a = if d { 1 } else if e { 2 } else { 3 };
        } else {
            a = 0;
        }
        case s {
            0: b = 1;
            1, 2: {
                b = 2;
            }
            default: b = 3;
        }
    }
}`)
	require.NoError(t, err)
	body := src.Items[0].(*ModuleDecl).Items[0].(*AlwaysCombDecl).Body
	require.Len(t, body, 2)

	ifStmt := body[0].(*IfStatement)
	_, ok := ifStmt.Cond.(*IfExpression)
	assert.True(t, ok)
	require.NotNil(t, ifStmt.Else)

	rhs := ifStmt.Body[0].(*IdentifierStatement).Assignment.Value.(*IfExpression)
	assert.Len(t, rhs.ElseIfs, 1)
	assert.NotNil(t, rhs.Else)

	caseStmt := body[1].(*CaseStatement)
	require.Len(t, caseStmt.Items, 3)
	assert.Len(t, caseStmt.Items[1].Conds, 2)
	assert.NotNil(t, caseStmt.Items[2].Default)
}

func TestParse_DeclarationsAndInterfaces(t *testing.T) {
	src, err := Parse("t.veryl", `
interface Bus {
    var data: logic<8>;
    var valid: logic;
    modport master {
        data: output,
        valid: output,
    }
}

package Pkg {
    struct Pair {
        lo: logic,
        hi: logic,
    }
}

module Top (
    bus: modport Bus::master,
) {
    var p: Pkg::Pair;
    inst u: Sub (
        x: p,
        y,
        z: p.lo & 1,
    );
    if W == 1 :g1 {
        let w: logic = 1;
    } else :g2 {
        for i in 0..4 :lp {
            assign v[i] = 0;
        }
    }
    function f (a: input logic, b: output logic) -> logic {
        var t: logic;
        for i: u32 in 0..4 step += 1 {
            t = a;
        }
        b = t;
        return t;
    }
}`)
	require.NoError(t, err)
	require.Len(t, src.Items, 3)

	bus := src.Items[0].(*InterfaceDecl)
	modport := bus.Items[2].(*ModportDecl)
	assert.Equal(t, "master", modport.Name.Text)
	assert.Equal(t, KwOutput, modport.Members[1].Direction.Kind)

	pair := src.Items[1].(*PackageDecl).Items[0].(*StructDecl)
	assert.False(t, pair.IsUnion())
	assert.Len(t, pair.Members, 2)

	top := src.Items[2].(*ModuleDecl)
	assert.Equal(t, KwModport, top.Ports[0].Direction.Kind)
	assert.Equal(t, []string{"Bus", "master"}, top.Ports[0].Type.Names())

	inst := top.Items[1].(*InstDecl)
	assert.Equal(t, []string{"Sub"}, inst.TypeNames())
	require.Len(t, inst.Connections, 3)
	assert.Equal(t, []string{"p"}, inst.Connections[0].Target())
	assert.Equal(t, []string{"y"}, inst.Connections[1].Target())
	assert.Nil(t, inst.Connections[2].Target())

	gen := top.Items[2].(*IfDecl)
	require.NotNil(t, gen.Label)
	assert.Equal(t, "g1", gen.Label.Text)
	require.NotNil(t, gen.Else)
	assert.Equal(t, "g2", gen.Else.Label.Text)
	forDecl := gen.Else.Items[0].(*ForDecl)
	assert.Equal(t, "i", forDecl.Index.Text)
	assert.Equal(t, "lp", forDecl.Label.Text)

	fn := top.Items[3].(*FunctionDecl)
	assert.Len(t, fn.Ports, 2)
	assert.Len(t, fn.Vars, 1)
	require.Len(t, fn.Body, 3)
	loop := fn.Body[0].(*ForStatement)
	require.NotNil(t, loop.Step)
	assert.Equal(t, "+=", loop.Step.Op.Text)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"missing semicolon", "module M {\n  var a: logic\n}", 3},
		{"bad top level", "var a: logic;", 1},
		{"unterminated comment", "module M { /* ", 1},
		{"bad port direction", "module M (a: wire logic) {}", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.veryl", tt.src)
			require.Error(t, err)
			var se *SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.line, se.Line)
			assert.Equal(t, "bad.veryl", se.File)
		})
	}
}
