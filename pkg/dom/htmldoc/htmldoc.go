// Package htmldoc implements dom.Document over a golang.org/x/net/html tree.
package htmldoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/Sumatoshi-tech/commitviz/pkg/dom"
)

const svgNamespace = "svg"

// ErrForeignElement is returned for elements that do not belong to this
// package.
var ErrForeignElement = errors.New("element is not an htmldoc element")

// Document is a parsed HTML page.
type Document struct {
	root *html.Node
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return &Document{root: root}, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ElementByID returns the first element with the id, or nil.
func (d *Document) ElementByID(id string) dom.Element {
	n := find(d.root, func(n *html.Node) bool {
		v, ok := attr(n, "id")

		return ok && v == id
	})
	if n == nil {
		return nil
	}

	return &Element{n: n}
}

// Body returns the body element, or nil.
func (d *Document) Body() dom.Element {
	n := find(d.root, func(n *html.Node) bool { return n.DataAtom == atom.Body })
	if n == nil {
		return nil
	}

	return &Element{n: n}
}

// Render serializes the document.
func (d *Document) Render(w io.Writer) error {
	err := html.Render(w, d.root)
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	return nil
}

// String renders the document, returning an empty string on failure.
func (d *Document) String() string {
	var buf bytes.Buffer

	if err := d.Render(&buf); err != nil {
		return ""
	}

	return buf.String()
}

// AppendHTML parses fragment in the context of e and appends the resulting
// nodes to it.
func AppendHTML(e dom.Element, fragment string) error {
	el, ok := e.(*Element)
	if !ok {
		return fmt.Errorf("%w: %T", ErrForeignElement, e)
	}

	nodes, err := html.ParseFragment(strings.NewReader(fragment), el.n)
	if err != nil {
		return fmt.Errorf("parse fragment: %w", err)
	}

	for _, n := range nodes {
		el.n.AppendChild(n)
	}

	return nil
}

// Element wraps an element node.
type Element struct {
	n *html.Node
}

// Outer renders the element and its subtree.
func Outer(e dom.Element) string {
	el, ok := e.(*Element)
	if !ok {
		return ""
	}

	var buf bytes.Buffer

	if err := html.Render(&buf, el.n); err != nil {
		return ""
	}

	return buf.String()
}

// Tag returns the element name.
func (e *Element) Tag() string { return e.n.Data }

// Append adds a child element. Children of svg content stay in the svg
// namespace.
func (e *Element) Append(tag string) dom.Element {
	child := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}

	if tag == "svg" || e.n.Namespace == svgNamespace {
		child.Namespace = svgNamespace
	}

	e.n.AppendChild(child)

	return &Element{n: child}
}

// Children returns the element children.
func (e *Element) Children() []dom.Element {
	var out []dom.Element

	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, &Element{n: c})
		}
	}

	return out
}

// Attr returns the attribute value.
func (e *Element) Attr(name string) (string, bool) {
	return attr(e.n, name)
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(name, value string) {
	for i := range e.n.Attr {
		if e.n.Attr[i].Key == name {
			e.n.Attr[i].Val = value

			return
		}
	}

	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes an attribute.
func (e *Element) RemoveAttr(name string) {
	e.n.Attr = slices.DeleteFunc(e.n.Attr, func(a html.Attribute) bool { return a.Key == name })
}

// Text returns the concatenated text of the subtree.
func (e *Element) Text() string {
	var sb strings.Builder

	var walk func(*html.Node)

	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(e.n)

	return sb.String()
}

// SetText replaces the children with a single text node.
func (e *Element) SetText(text string) {
	e.Clear()
	e.n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// Style returns an inline style property.
func (e *Element) Style(prop string) string {
	for _, decl := range styleDecls(e.n) {
		if decl[0] == prop {
			return decl[1]
		}
	}

	return ""
}

// SetStyle sets an inline style property. An empty value removes it.
func (e *Element) SetStyle(prop, value string) {
	decls := styleDecls(e.n)
	idx := slices.IndexFunc(decls, func(d [2]string) bool { return d[0] == prop })

	switch {
	case value == "" && idx >= 0:
		decls = slices.Delete(decls, idx, idx+1)
	case value == "":
		return
	case idx >= 0:
		decls[idx][1] = value
	default:
		decls = append(decls, [2]string{prop, value})
	}

	if len(decls) == 0 {
		e.RemoveAttr("style")

		return
	}

	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d[0] + ": " + d[1]
	}

	e.SetAttr("style", strings.Join(parts, "; "))
}

// HasClass reports whether the class list contains name.
func (e *Element) HasClass(name string) bool {
	return slices.Contains(classes(e.n), name)
}

// SetClass adds or removes a class.
func (e *Element) SetClass(name string, on bool) {
	list := classes(e.n)
	has := slices.Contains(list, name)

	switch {
	case on && !has:
		list = append(list, name)
	case !on && has:
		list = slices.DeleteFunc(list, func(c string) bool { return c == name })
	default:
		return
	}

	if len(list) == 0 {
		e.RemoveAttr("class")

		return
	}

	e.SetAttr("class", strings.Join(list, " "))
}

// Clear removes every child node.
func (e *Element) Clear() {
	for c := e.n.FirstChild; c != nil; c = e.n.FirstChild {
		e.n.RemoveChild(c)
	}
}

// Remove detaches the element.
func (e *Element) Remove() {
	if e.n.Parent != nil {
		e.n.Parent.RemoveChild(e.n)
	}
}

// Raise moves the element to the end of its parent.
func (e *Element) Raise() {
	parent := e.n.Parent
	if parent == nil || parent.LastChild == e.n {
		return
	}

	parent.RemoveChild(e.n)
	parent.AppendChild(e.n)
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}

	return "", false
}

func classes(n *html.Node) []string {
	v, _ := attr(n, "class")

	return strings.Fields(v)
}

func styleDecls(n *html.Node) [][2]string {
	v, _ := attr(n, "style")

	var out [][2]string

	for _, decl := range strings.Split(v, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}

		out = append(out, [2]string{strings.TrimSpace(prop), strings.TrimSpace(value)})
	}

	return out
}

func find(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && pred(n) {
		return n
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, pred); found != nil {
			return found
		}
	}

	return nil
}
