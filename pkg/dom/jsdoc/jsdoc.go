//go:build js && wasm

// Package jsdoc implements dom.Document over the browser DOM.
package jsdoc

import (
	"strings"
	"syscall/js"

	"github.com/Sumatoshi-tech/commitviz/pkg/dom"
)

const svgNS = "http://www.w3.org/2000/svg"

// Document wraps window.document.
type Document struct {
	v js.Value
}

// New binds the global document.
func New() *Document {
	return &Document{v: js.Global().Get("document")}
}

// ElementByID returns the element with the id, or nil.
func (d *Document) ElementByID(id string) dom.Element {
	v := d.v.Call("getElementById", id)
	if v.IsNull() || v.IsUndefined() {
		return nil
	}

	return &Element{v: v, doc: d.v}
}

// Element wraps a DOM element.
type Element struct {
	v   js.Value
	doc js.Value
}

// Wrap adapts a raw element value.
func Wrap(v js.Value) *Element {
	return &Element{v: v, doc: js.Global().Get("document")}
}

// Value returns the underlying js.Value.
func (e *Element) Value() js.Value { return e.v }

// Tag returns the lowercase element name.
func (e *Element) Tag() string {
	return strings.ToLower(e.v.Get("tagName").String())
}

// Append adds a child element, in the svg namespace below an svg root.
func (e *Element) Append(tag string) dom.Element {
	var child js.Value

	if tag == "svg" || e.v.Get("namespaceURI").String() == svgNS {
		child = e.doc.Call("createElementNS", svgNS, tag)
	} else {
		child = e.doc.Call("createElement", tag)
	}

	e.v.Call("appendChild", child)

	return &Element{v: child, doc: e.doc}
}

// Children returns the element children.
func (e *Element) Children() []dom.Element {
	list := e.v.Get("children")
	n := list.Length()
	out := make([]dom.Element, 0, n)

	for i := range n {
		out = append(out, &Element{v: list.Index(i), doc: e.doc})
	}

	return out
}

// Attr returns an attribute. For value it reads the live property.
func (e *Element) Attr(name string) (string, bool) {
	if name == "value" {
		if p := e.v.Get("value"); !p.IsUndefined() {
			return p.String(), true
		}
	}

	v := e.v.Call("getAttribute", name)
	if v.IsNull() {
		return "", false
	}

	return v.String(), true
}

// SetAttr sets an attribute. For value it also sets the live property.
func (e *Element) SetAttr(name, value string) {
	e.v.Call("setAttribute", name, value)

	if name == "value" {
		e.v.Set("value", value)
	}
}

// RemoveAttr deletes an attribute.
func (e *Element) RemoveAttr(name string) {
	e.v.Call("removeAttribute", name)
}

// Text returns textContent.
func (e *Element) Text() string { return e.v.Get("textContent").String() }

// SetText replaces textContent.
func (e *Element) SetText(text string) { e.v.Set("textContent", text) }

// Style reads an inline style property.
func (e *Element) Style(prop string) string {
	return e.v.Get("style").Call("getPropertyValue", prop).String()
}

// SetStyle sets an inline style property. An empty value removes it.
func (e *Element) SetStyle(prop, value string) {
	if value == "" {
		e.v.Get("style").Call("removeProperty", prop)

		return
	}

	e.v.Get("style").Call("setProperty", prop, value)
}

// HasClass reports classList membership.
func (e *Element) HasClass(name string) bool {
	return e.v.Get("classList").Call("contains", name).Bool()
}

// SetClass toggles a class.
func (e *Element) SetClass(name string, on bool) {
	e.v.Get("classList").Call("toggle", name, on)
}

// Clear removes every child.
func (e *Element) Clear() { e.v.Call("replaceChildren") }

// Remove detaches the element.
func (e *Element) Remove() { e.v.Call("remove") }

// Raise re-appends the element to its parent.
func (e *Element) Raise() {
	parent := e.v.Get("parentNode")
	if parent.IsNull() {
		return
	}

	parent.Call("appendChild", e.v)
}

// On registers a DOM event listener and returns a function that removes it.
func (e *Element) On(event string, fn func(ev js.Value)) (release func()) {
	cb := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) > 0 {
			fn(args[0])
		}

		return nil
	})

	e.v.Call("addEventListener", event, cb)

	return func() {
		e.v.Call("removeEventListener", event, cb)
		cb.Release()
	}
}
