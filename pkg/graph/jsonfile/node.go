package jsonfile

import "strings"

// Node is one item of a JSON tree document. Nodes are the items handed to
// the tree, so identity is by pointer.
type Node struct {
	Name     string         `json:"name"`
	Attrs    map[string]any `json:"attrs,omitempty"`
	Children []*Node        `json:"children,omitempty"`

	parent *Node
}

// Parent returns the enclosing node, nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Path returns the slash-joined names from the root, excluding the root.
func (n *Node) Path() string {
	var parts []string
	for p := n; p != nil && p.parent != nil; p = p.parent {
		parts = append(parts, p.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// Attr returns the attribute key, or nil.
func (n *Node) Attr(key string) any { return n.Attrs[key] }

func (n *Node) String() string {
	if n.parent == nil {
		return "/"
	}
	return n.Path()
}

// link sets parent pointers below n and counts the nodes.
func link(n *Node) int {
	count := 1
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range cur.Children {
			c.parent = cur
			count++
			stack = append(stack, c)
		}
	}
	return count
}
