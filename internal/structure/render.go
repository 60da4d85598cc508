package structure

import (
	"io"

	"github.com/ddddddO/gtree"
)

// RenderTree writes tree as an indented text tree.
func RenderTree(w io.Writer, tree *Node) error {
	root := gtree.NewRoot(tree.Name)
	addNodes(root, tree.Children)
	return gtree.OutputProgrammably(w, root)
}

func addNodes(parent *gtree.Node, nodes []*Node) {
	for _, n := range nodes {
		addNodes(parent.Add(n.Name), n.Children)
	}
}
