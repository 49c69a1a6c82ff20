// Package dom is the narrow document interface the renderers write through.
// The htmldoc subpackage implements it over an in-memory HTML tree and the
// jsdoc subpackage over the browser DOM.
package dom

// Document gives access to the page's containers by id.
type Document interface {
	// ElementByID returns nil when no element has the id.
	ElementByID(id string) Element
}

// Element is a node the renderers can read and mutate.
type Element interface {
	Tag() string
	// Append creates a child element with the given tag as the last child.
	Append(tag string) Element
	Children() []Element

	Attr(name string) (string, bool)
	SetAttr(name, value string)
	RemoveAttr(name string)

	Text() string
	SetText(text string)

	Style(prop string) string
	SetStyle(prop, value string)

	HasClass(name string) bool
	SetClass(name string, on bool)

	// Clear removes all children.
	Clear()
	// Remove detaches the element from its parent.
	Remove()
	// Raise moves the element to the end of its parent, drawing it on top.
	Raise()
}

// FindAll returns root's descendants matching pred in document order.
func FindAll(root Element, pred func(Element) bool) []Element {
	var out []Element

	for _, child := range root.Children() {
		if pred(child) {
			out = append(out, child)
		}

		out = append(out, FindAll(child, pred)...)
	}

	return out
}

// ByTag matches elements with the tag.
func ByTag(tag string) func(Element) bool {
	return func(e Element) bool { return e.Tag() == tag }
}

// ByClass matches elements carrying the class.
func ByClass(name string) func(Element) bool {
	return func(e Element) bool { return e.HasClass(name) }
}

// AttrOr returns the attribute value or fallback when it is absent.
func AttrOr(e Element, name, fallback string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}

	return fallback
}
