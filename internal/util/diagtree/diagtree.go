// Package diagtree builds a labelled tree of check outcomes and renders the
// branches that carry a status as a markdown outline.
package diagtree

import (
	"fmt"
	"io"
	"strings"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
)

type Node struct {
	Title       string
	Description string
	Status      Status

	children     []*Node
	childByTitle map[string]*Node
	doDisplay    bool
	parent       *Node
}

func (m *Node) child(name string) *Node {
	contract.Assertf(name != "", "we cannot display an empty name")
	if v, ok := m.childByTitle[name]; ok {
		return v
	}
	v := &Node{
		Title:  name,
		parent: m,
	}
	if m.childByTitle == nil {
		m.childByTitle = map[string]*Node{}
	}
	m.childByTitle[name] = v
	m.children = append(m.children, v)
	return v
}

// Label returns the child called name, creating it on first use.
func (m *Node) Label(name string) *Node {
	return m.child(name)
}

// Value is Label with the name quoted, for user data such as case names.
func (m *Node) Value(value string) *Node {
	return m.child(fmt.Sprintf("%q", value))
}

func (m *Node) PathTitles() []string {
	if m == nil {
		return nil
	}

	parts := []string{}
	for n := m; n != nil; n = n.parent {
		if n.Title == "" {
			continue
		}
		parts = append(parts, n.Title)
	}

	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}

	return parts
}

// WalkDisplayed visits every node marked for display, parents first.
func (m *Node) WalkDisplayed(visit func(*Node)) {
	if m == nil || visit == nil {
		return
	}
	m.walkDisplayed(visit)
}

func (m *Node) walkDisplayed(visit func(*Node)) {
	if m == nil || !m.doDisplay {
		return
	}
	visit(m)
	for _, child := range m.children {
		child.walkDisplayed(visit)
	}
}

// Count returns how many displayed nodes carry status s.
func (m *Node) Count(s Status) int {
	n := 0
	m.WalkDisplayed(func(v *Node) {
		if v.Status == s {
			n++
		}
	})
	return n
}

// Prune drops children that were never given a status.
func (m *Node) Prune() {
	kept := []*Node{}
	for _, v := range m.children {
		if !v.doDisplay {
			continue
		}
		kept = append(kept, v)
		v.Prune()
	}
	if len(kept) == 0 {
		m.children = nil
		m.childByTitle = nil
		return
	}
	m.children = kept
	m.childByTitle = make(map[string]*Node, len(kept))
	for _, child := range kept {
		m.childByTitle[child.Title] = child
	}
}

func (m *Node) levelPrefix(level int) string {
	switch level {
	case 0:
		return "### "
	case 1:
		return "#### "
	}
	if level < 0 {
		return ""
	}
	return strings.Repeat("  ", level-2) + "- "
}

type cappedWriter struct {
	// The number of remaining lines before we hit the cap.
	remaining int
	out       io.Writer
}

func (c *cappedWriter) incr() {
	if c.remaining > 0 {
		// Never step past 0: -1 means no cap.
		c.remaining--
	}
}

func (c *cappedWriter) Write(p []byte) (n int, err error) {
	if c.remaining > 0 || c.remaining == -1 {
		return c.out.Write(p)
	}
	return len(p), nil
}

// Display renders the displayed part of the tree, in insertion order, and
// returns the number of nodes with a description. At most max lines are
// written; -1 means no limit.
func (m *Node) Display(out io.Writer, max int) int {
	writer := &cappedWriter{max, out}
	return m.display(writer, 0)
}

func (m *Node) display(out *cappedWriter, level int) int {
	write := func(s string) {
		_, err := out.Write([]byte(s))
		contract.AssertNoErrorf(err, "failed to write display")
	}
	if m == nil || !m.doDisplay {
		return 0
	}

	var displayed int
	next := level
	if m.Title != "" {
		line := m.levelPrefix(level)
		if m.Status != None {
			line += m.Status.String() + " "
		}
		line += m.Title
		if m.Description != "" {
			displayed++
			line += ": " + m.Description
		}
		write(line + "\n")
		out.incr()
		next = level + 1
	}

	for _, child := range m.children {
		displayed += child.display(out, next)
	}
	return displayed
}

// Status is the outcome attached to a node.
type Status struct{ s string }

var (
	None = Status{""}
	Pass = Status{"`🟢`"}
	Skip = Status{"`🟡`"}
	Fail = Status{"`🔴`"}
)

func (s Status) String() string {
	return s.s
}

// SetDescription marks m and its ancestors for display.
func (m *Node) SetDescription(status Status, msg string, a ...any) {
	for v := m; v != nil && !v.doDisplay; v = v.parent {
		v.doDisplay = true
	}
	m.Description = fmt.Sprintf(msg, a...)
	m.Status = status
}
