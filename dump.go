package statenet

import (
	"fmt"
	"io"
	"strings"

	tp "github.com/xlab/treeprint"
	"gopkg.in/yaml.v3"
)

// Dump returns the current value of every node, keyed by node name.
func (n Network) Dump() map[string]Value {
	dump := make(map[string]Value, n.Len())
	for index := 0; index < n.Len(); index++ {
		dump[n.topo.nodes[index].name] = n.value(index)
	}
	return dump
}

// String renders the current values of all nodes in creation order, followed by the
// names of nodes with pending changes, if any.
func (n Network) String() string {
	var sb strings.Builder
	sb.WriteString("Network(")
	for index := 0; index < n.Len(); index++ {
		if index > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%s: %v", n.topo.nodes[index].name, n.value(index)))
	}
	if dirty := n.dirty(); len(dirty) > 0 {
		sb.WriteString(" | changes=")
		for k, index := range dirty {
			if k > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(n.topo.nodes[index].name)
		}
	}
	sb.WriteRune(')')
	return sb.String()
}

// Print renders the network as a tree: every node with its current value, and
// calculation nodes with their dependencies as children.
func (n Network) Print() string {
	printer := tp.New()
	root := printer.AddBranch(fmt.Sprintf("Network(%d nodes)", n.Len()))
	for index := 0; index < n.Len(); index++ {
		spec := &n.topo.nodes[index]
		label := fmt.Sprintf("%s %s = %v", n.topo.id(index), spec.name, n.value(index))
		if _, ok := n.staged.find(index).Get(); ok {
			label += " (staged)"
		}
		if spec.kind == InputNode {
			root.AddNode(label)
			continue
		}
		branch := root.AddBranch(label)
		for _, d := range spec.deps {
			branch.AddNode(fmt.Sprintf("%s %s", n.topo.id(d), n.topo.nodes[d].name))
		}
	}
	return printer.String()
}

type yamlDump struct {
	Values  map[string]Value `yaml:"values"`
	Pending []string         `yaml:"pending,omitempty"`
}

// WriteYAML writes the current values of all nodes, and the names of nodes with
// pending changes, as a YAML document.
func (n Network) WriteYAML(w io.Writer) error {
	dump := yamlDump{Values: n.Dump()}
	for _, index := range n.dirty() {
		dump.Pending = append(dump.Pending, n.topo.nodes[index].name)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(dump); err != nil {
		return fmt.Errorf("statenet: cannot encode network: %w", err)
	}
	return enc.Close()
}
