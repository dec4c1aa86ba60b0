package analyzer

import (
	"verylcheck/internal/engine/syntax"
)

// AllowTable answers whether a diagnostic is suppressed at the current point
// of a walk. Project-level names come from the lint configuration; item-level
// names come from `#[allow(...)]` attributes and last while the attributed
// item is walked.
type AllowTable struct {
	project map[string]bool
	stack   [][]string
}

func NewAllowTable(project []string) *AllowTable {
	t := &AllowTable{project: make(map[string]bool, len(project))}
	for _, name := range project {
		t.project[name] = true
	}
	return t
}

func (t *AllowTable) Handle(point syntax.Point, node syntax.Node) {
	item, ok := node.(syntax.Item)
	if !ok {
		return
	}
	if point == syntax.After {
		t.stack = t.stack[:len(t.stack)-1]
		return
	}
	var names []string
	for _, attr := range item.Attributes() {
		if attr.Name.Text != "allow" {
			continue
		}
		for _, arg := range attr.Args {
			names = append(names, arg.Text)
		}
	}
	t.stack = append(t.stack, names)
}

func (t *AllowTable) Contains(name string) bool {
	if t.project[name] {
		return true
	}
	for _, frame := range t.stack {
		for _, allowed := range frame {
			if allowed == name {
				return true
			}
		}
	}
	return false
}
