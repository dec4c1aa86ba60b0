package syntax

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type traceHandler struct {
	events []string
}

func (h *traceHandler) Handle(point Point, node Node) {
	switch n := node.(type) {
	case *IfStatement:
		h.events = append(h.events, fmt.Sprintf("%s if", point))
	case *Else:
		h.events = append(h.events, fmt.Sprintf("%s else", point))
	case *IdentifierStatement:
		h.events = append(h.events, fmt.Sprintf("%s stmt %s", point, n.Target.Text()))
	case *IfExpression:
		h.events = append(h.events, fmt.Sprintf("%s ifexpr", point))
	}
}

func TestWalk_Order(t *testing.T) {
	src, err := Parse("w.veryl", `
module M {
    always_comb {
        if c {
            a = if d { 1 } else { 2 };
        } else if e {
            b = 1;
        } else {
            c = 1;
        }
    }
}`)
	require.NoError(t, err)

	h := &traceHandler{}
	Walk(src, h)

	assert.Equal(t, []string{
		"before if",
		"before stmt a",
		"before ifexpr",
		"before else",
		"after else",
		"after ifexpr",
		"after stmt a",
		"before else",
		"after else",
		"before stmt b",
		"after stmt b",
		"before else",
		"after else",
		"before stmt c",
		"after stmt c",
		"after if",
	}, h.events)
}

func TestWalk_MultipleHandlersSeeEveryNode(t *testing.T) {
	src, err := Parse("w.veryl", counterSource)
	require.NoError(t, err)

	var first, second int
	Walk(src,
		HandlerFunc(func(Point, Node) { first++ }),
		HandlerFunc(func(Point, Node) { second++ }),
	)
	assert.Positive(t, first)
	assert.Equal(t, first, second)
	assert.Zero(t, first%2, "every Before must have a matching After")
}

func TestWalk_HandlerOrderPerNode(t *testing.T) {
	src, err := Parse("w.veryl", "module M { var a: logic; }")
	require.NoError(t, err)

	var seen []string
	mk := func(name string) Handler {
		return HandlerFunc(func(p Point, n Node) {
			if _, ok := n.(*VarDecl); ok {
				seen = append(seen, name+" "+p.String())
			}
		})
	}
	Walk(src, mk("one"), mk("two"))
	assert.Equal(t, []string{"one before", "two before", "one after", "two after"}, seen)
}
