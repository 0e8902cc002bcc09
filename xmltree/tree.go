// Package xmltree parses XML documents into a generic, namespace aware tree.
//
// Element names keep both the resolved namespace URI and the prefix the
// document used, so callers can look elements up by URI no matter which
// prefix a server picked.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrNoRootElement = errors.New("no root element found")
)

type Node struct {
	Name     xml.Name
	Prefix   string
	Attrs    []xml.Attr
	Children []*Node
	Text     string
}

// Parse builds the element tree of data.
func Parse(data []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var root *Node
	stack := make([]*Node, 0, 16)
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read xml token:%w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{Prefix: t.Name.Space, Attrs: t.Copy().Attr}
			node.Name = xml.Name{Space: resolve(stack, node, t.Name.Space), Local: t.Name.Local}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements")
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unexpected end element:%s", t.Name.Local)
			}
			top := stack[len(stack)-1]
			if top.Prefix != t.Name.Space || top.Name.Local != t.Name.Local {
				return nil, fmt.Errorf("element <%s> closed by </%s>", top.Name.Local, t.Name.Local)
			}
			top.Text = strings.TrimSpace(top.Text)
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) != 0 {
					return nil, fmt.Errorf("text outside root element")
				}
				continue
			}
			stack[len(stack)-1].Text += string(t)
		}
	}
	if root == nil {
		return nil, ErrNoRootElement
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("unclosed element:%s", stack[len(stack)-1].Name.Local)
	}
	return root, nil
}

// resolve maps prefix onto the namespace URI bound by node itself or the
// nearest ancestor declaring it.
func resolve(stack []*Node, node *Node, prefix string) string {
	if uri, ok := declared(node, prefix); ok {
		return uri
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if uri, ok := declared(stack[i], prefix); ok {
			return uri
		}
	}
	return prefix
}

func declared(n *Node, prefix string) (string, bool) {
	for _, attr := range n.Attrs {
		if len(prefix) == 0 && len(attr.Name.Space) == 0 && attr.Name.Local == "xmlns" {
			return attr.Value, true
		}
		if len(prefix) != 0 && attr.Name.Space == "xmlns" && attr.Name.Local == prefix {
			return attr.Value, true
		}
	}
	return "", false
}

// Namespaces returns the prefix to URI bindings declared on the root element
// of data. The default namespace is keyed by the empty prefix.
func Namespaces(data []byte) (map[string]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			return nil, ErrNoRootElement
		}
		if err != nil {
			return nil, fmt.Errorf("read xml token:%w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		rs := make(map[string]string, len(start.Attr))
		for _, attr := range start.Attr {
			if len(attr.Name.Space) == 0 && attr.Name.Local == "xmlns" {
				rs[""] = attr.Value
				continue
			}
			if attr.Name.Space == "xmlns" {
				rs[attr.Name.Local] = attr.Value
			}
		}
		return rs, nil
	}
}

// PrefixOf returns the prefix bound to uri in ns.
func PrefixOf(ns map[string]string, uri string) (string, bool) {
	for prefix, v := range ns {
		if v == uri {
			return prefix, true
		}
	}
	return "", false
}

func (n *Node) Is(space, local string) bool {
	return n != nil && n.Name.Space == space && n.Name.Local == local
}

func (n *Node) Child(space, local string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Is(space, local) {
			return c
		}
	}
	return nil
}

func (n *Node) ChildrenNamed(space, local string) []*Node {
	if n == nil {
		return nil
	}
	rs := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Is(space, local) {
			rs = append(rs, c)
		}
	}
	return rs
}

// ChildLocal finds the first child with the given local name in any namespace.
func (n *Node) ChildLocal(local string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name.Local == local {
			return c
		}
	}
	return nil
}

// Path walks down through children by local name.
func (n *Node) Path(locals ...string) *Node {
	cur := n
	for _, l := range locals {
		cur = cur.ChildLocal(l)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// ToMap converts the tree into nested maps keyed by local name, rooted at the
// document element. Leaves become strings, repeated siblings become []any.
func (n *Node) ToMap() map[string]interface{} {
	return map[string]interface{}{n.Name.Local: n.value()}
}

func (n *Node) value() interface{} {
	if len(n.Children) == 0 {
		return n.Text
	}
	m := make(map[string]interface{}, len(n.Children))
	for _, c := range n.Children {
		v := c.value()
		exist, ok := m[c.Name.Local]
		if !ok {
			m[c.Name.Local] = v
			continue
		}
		if lst, ok := exist.([]interface{}); ok {
			m[c.Name.Local] = append(lst, v)
			continue
		}
		m[c.Name.Local] = []interface{}{exist, v}
	}
	return m
}

// AsList normalizes a value that may be a single item or a sequence.
func AsList(v interface{}) []interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return t
	default:
		return []interface{}{t}
	}
}
