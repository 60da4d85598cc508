package structure

import (
	"os"
	"path/filepath"
)

// Node is one folder of a project tree snapshot. Files are never nodes.
type Node struct {
	Name     string  `json:"name"`
	Children []*Node `json:"children"`
}

// level tags how deep the bounded walk is: project -> shots -> shot.
type level int

const (
	levelProject level = iota
	levelShots
	levelShot
)

// descend reports whether the folder name at this level is expanded and at
// which level its children are read. Only the shots folder is expanded at
// the project level and nothing below a shot's subfolders is read.
func (l level) descend(name string) (level, bool) {
	switch l {
	case levelProject:
		return levelShots, name == ShotsDir
	case levelShots:
		return levelShot, true
	default:
		return l, false
	}
}

// ReadProjectStructure returns a fresh tree snapshot of projectPath.
func (e *Engine) ReadProjectStructure(projectPath string) (_ *Node, err error) {
	const op = "readProjectStructure"
	defer e.logFailure(op, &err)

	if projectPath == "" {
		return nil, newError(KindValidation, op, "", "missing projectPath")
	}
	if err := requireDir(op, projectPath, "project path"); err != nil {
		return nil, err
	}

	children, err := readLevel(op, projectPath, levelProject)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("read project structure", "path", projectPath, "top_level", len(children))
	return &Node{Name: filepath.Base(filepath.Clean(projectPath)), Children: children}, nil
}

func readLevel(op, dir string, lvl level) ([]*Node, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ioError(op, dir, err)
	}

	nodes := make([]*Node, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		node := &Node{Name: entry.Name(), Children: []*Node{}}
		if next, ok := lvl.descend(entry.Name()); ok {
			children, err := readLevel(op, filepath.Join(dir, entry.Name()), next)
			if err != nil {
				return nil, err
			}
			node.Children = children
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// Find returns the direct child with the given name.
func (n *Node) Find(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}
