package symbol

import (
	"testing"

	"verylcheck/internal/engine/syntax"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectionFromToken(t *testing.T) {
	tests := []struct {
		kind     syntax.TokenKind
		want     Direction
		writable bool
	}{
		{syntax.KwInput, Input, false},
		{syntax.KwOutput, Output, true},
		{syntax.KwInout, Inout, true},
		{syntax.KwRef, Ref, true},
		{syntax.KwModport, DirectionModport, false},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			got, err := DirectionFromToken(syntax.Token{Kind: tt.kind})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.writable, got.Writable())
		})
	}

	_, err := DirectionFromToken(tok("x"))
	assert.Error(t, err)
}

func TestModportKindAndDirectionAreDistinct(t *testing.T) {
	var k Kind = Modport{}
	assert.Equal(t, "modport", k.KindName())
	assert.Equal(t, "modport", DirectionModport.String())
}

func TestInstanceConnectTargetResolves(t *testing.T) {
	table, ns := fixture(t)
	inst := Instance{
		TypeName: []string{"Sub"},
		Connects: []Connect{
			{Port: "a", Target: Reference{Name: "p", Members: []string{"lo"}}},
			{Port: "b"},
		},
	}
	mustInsert(t, table, "u", ns, inst)

	res, err := table.Resolve(Reference{Name: "u"}, ns)
	require.NoError(t, err)
	got := res.Found.Kind.(Instance)
	require.Len(t, got.Connects, 2)
	assert.True(t, got.Connects[1].Target.Empty())

	target, err := table.Resolve(got.Connects[0].Target, ns)
	require.NoError(t, err)
	assert.Equal(t, "p.lo", table.PathText(target.FullPath))
}
