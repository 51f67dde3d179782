package compiler

import (
	"encoding/json"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DumpNode is a plain-data copy of an AST subtree for serialization.
type DumpNode struct {
	Kind     string      `yaml:"kind" json:"kind"`
	Text     string      `yaml:"text,omitempty" json:"text,omitempty"`
	Token    string      `yaml:"token,omitempty" json:"token,omitempty"`
	Loc      string      `yaml:"loc" json:"loc"`
	Children []*DumpNode `yaml:"children,omitempty" json:"children,omitempty"`
}

// Dump copies n into a DumpNode tree. The result does not alias the source
// buffer, so it stays valid after the tree is freed.
func Dump(n Node) *DumpNode {
	if isNil(n) {
		return nil
	}
	tok := n.Tok()
	d := &DumpNode{
		Kind: n.Kind().String(),
		Loc:  tok.Loc.String(),
	}
	if a, ok := n.(*Atom); ok {
		d.Text = a.Text()
		d.Token = tok.Kind.String()
	}
	for _, c := range n.Children() {
		d.Children = append(d.Children, Dump(c))
	}
	return d
}

// MarshalYAML renders the dump of n as a YAML document.
func MarshalYAML(n Node) ([]byte, error) {
	out, err := yaml.Marshal(Dump(n))
	return out, errors.Wrap(err, "marshal ast as yaml")
}

// MarshalJSON renders the dump of n as indented JSON.
func MarshalJSON(n Node) ([]byte, error) {
	out, err := json.MarshalIndent(Dump(n), "", "  ")
	return out, errors.Wrap(err, "marshal ast as json")
}
