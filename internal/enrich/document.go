// Package enrich augments device events with record data from an external CSV
// source and renders the update documents pushed to the record API.
package enrich

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Record is one enrichment lookup result, keyed by source column name.
type Record map[string]any

// SerialNumber returns the record's serial_number column, when present.
func (r Record) SerialNumber() (string, bool) {
	v, ok := r["serial_number"]
	if !ok || v == nil {
		return "", false
	}
	s := stringify(v)
	return s, s != ""
}

type fieldMapping struct {
	source string
	target string
}

// fieldMap is the fixed translation table from source column names to
// document paths. The first path segment is the group; deeper segments nest.
// Source columns not listed here are dropped.
var fieldMap = []fieldMapping{
	{"barcode_1", "general/barcode_1"},
	{"barcode_2", "general/barcode_2"},
	{"asset_tag", "general/asset_tag"},
	{"site_id", "general/site/id"},
	{"site_name", "general/site/name"},
	{"username", "location/username"},
	{"real_name", "location/real_name"},
	{"email_address", "location/email_address"},
	{"position", "location/position"},
	{"phone_number", "location/phone_number"},
	{"department", "location/department"},
	{"building", "location/building"},
	{"room", "location/room"},
	{"is_purchased", "purchasing/is_purchased"}, // bool
	{"is_leased", "purchasing/is_leased"},       // bool
	{"po_number", "purchasing/po_number"},
	{"vendor", "purchasing/vendor"},
	{"applecare_id", "purchasing/applecare_id"},
	{"purchase_price", "purchasing/purchase_price"},
	{"purchasing_account", "purchasing/purchasing_account"},
	{"po_date", "purchasing/po_date"}, // date string
	{"purchasing_contact", "purchasing/purchasing_contact"},
}

// groupOrder fixes the serialization order of document groups.
var groupOrder = []string{"general", "location", "purchasing"}

type element struct {
	name     string
	text     string
	children []*element
}

func (e *element) child(name string) *element {
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	c := &element{name: name}
	e.children = append(e.children, c)
	return c
}

func (e *element) setPath(path []string, text string) {
	node := e
	for _, segment := range path {
		node = node.child(segment)
	}
	node.text = text
}

// Document is the rendered enrichment update: up to three groups of
// field/value pairs. Groups with no translated fields are omitted entirely.
type Document struct {
	groups map[string]*element
}

// NewDocument applies the translation table to a record. Boolean and date
// values pass through as their string representation; the record API's format
// dictates interpretation, not this layer.
func NewDocument(record Record) *Document {
	doc := &Document{groups: make(map[string]*element)}
	for _, m := range fieldMap {
		value, ok := record[m.source]
		if !ok || value == nil {
			continue
		}
		group, rest, _ := strings.Cut(m.target, "/")
		root, ok := doc.groups[group]
		if !ok {
			root = &element{name: group}
			doc.groups[group] = root
		}
		root.setPath(strings.Split(rest, "/"), stringify(value))
	}
	return doc
}

// Empty reports whether no source column survived translation.
func (d *Document) Empty() bool {
	return len(d.groups) == 0
}

// Render serializes the document as XML under the configured root element.
func (d *Document) Render(root string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<%s>", root)
	for _, group := range groupOrder {
		if e, ok := d.groups[group]; ok {
			writeElement(&buf, e)
		}
	}
	fmt.Fprintf(&buf, "</%s>", root)
	return buf.Bytes()
}

func writeElement(buf *bytes.Buffer, e *element) {
	fmt.Fprintf(buf, "<%s>", e.name)
	if len(e.children) == 0 {
		xml.EscapeText(buf, []byte(e.text))
	} else {
		for _, c := range e.children {
			writeElement(buf, c)
		}
	}
	fmt.Fprintf(buf, "</%s>", e.name)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
