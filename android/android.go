// Package android implements reading and writing of Android resource XML
// files (strings.xml, arrays.xml, plurals.xml).
//
// Supported resource types:
//   - <string>        — simple key/value string
//   - <string-array>  — ordered list of strings
//   - <plurals>       — quantity-keyed plural forms (zero/one/two/few/many/other)
//
// Documents preserve entry order, XML comments and CDATA wrapping so that a
// parsed file can be written back structurally intact. Resources with
// translatable="false" are parsed and kept; Clean produces a copy without
// them and ApplyTemplate copies them through verbatim.
package android

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// Kind identifies the type of a document entry.
type Kind int

const (
	// KindString is a plain <string> resource.
	KindString Kind = iota
	// KindArray is a <string-array> resource.
	KindArray
	// KindPlurals is a <plurals> resource.
	KindPlurals
	// KindComment is an XML comment between resources.
	KindComment
)

// Entry is a single item of a resource document: a resource or a comment.
type Entry struct {
	Kind Kind

	// Name is the resource name (name="…" attribute). Empty for comments.
	Name string
	// Translatable mirrors the translatable="…" attribute. Defaults to true.
	Translatable bool
	// Modified marks entries whose content diverged from the last value
	// fetched from upstream. Persisted as modified="true" in store files;
	// never emitted by Clean or ApplyTemplate output.
	Modified bool

	// Value is the text of a KindString entry. Empty means untranslated.
	Value string
	// UseCDATA restores the <![CDATA[…]]> wrapper on write.
	UseCDATA bool

	// Items holds <item> values of a KindArray entry in document order.
	Items []string
	// ItemCDATA mirrors Items.
	ItemCDATA []bool

	// Quantities maps quantity keyword to text for a KindPlurals entry.
	Quantities map[string]string
	// QuantityOrder preserves the keyword order as found in the file.
	QuantityOrder []string
	// QuantityCDATA mirrors QuantityOrder.
	QuantityCDATA map[string]bool

	// Comment is the raw comment text (without the markers).
	Comment string
}

// IsComment reports whether the entry is an XML comment.
func (e *Entry) IsComment() bool { return e.Kind == KindComment }

// IsTranslatable reports whether the entry is a resource meant to be
// translated.
func (e *Entry) IsTranslatable() bool {
	return e.Kind != KindComment && e.Translatable
}

// IsTranslated reports whether the entry carries complete content.
func (e *Entry) IsTranslated() bool {
	switch e.Kind {
	case KindString:
		return e.Value != ""
	case KindArray:
		if len(e.Items) == 0 {
			return false
		}
		for _, v := range e.Items {
			if v == "" {
				return false
			}
		}
		return true
	case KindPlurals:
		if len(e.Quantities) == 0 {
			return false
		}
		for _, v := range e.Quantities {
			if v == "" {
				return false
			}
		}
		return true
	}
	return false
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	c := *e
	c.Items = append([]string(nil), e.Items...)
	c.ItemCDATA = append([]bool(nil), e.ItemCDATA...)
	c.QuantityOrder = append([]string(nil), e.QuantityOrder...)
	if e.Quantities != nil {
		c.Quantities = make(map[string]string, len(e.Quantities))
		for q, v := range e.Quantities {
			c.Quantities[q] = v
		}
	}
	if e.QuantityCDATA != nil {
		c.QuantityCDATA = make(map[string]bool, len(e.QuantityCDATA))
		for q, v := range e.QuantityCDATA {
			c.QuantityCDATA[q] = v
		}
	}
	return &c
}

// ContentKey returns a canonical string for the entry's content, used by
// callers that compare or fingerprint content across syncs.
func (e *Entry) ContentKey() string {
	switch e.Kind {
	case KindString:
		return e.Value
	case KindArray:
		return strings.Join(e.Items, "\x00")
	case KindPlurals:
		parts := make([]string, 0, len(e.QuantityOrder))
		for _, q := range e.QuantityOrder {
			parts = append(parts, q+"="+e.Quantities[q])
		}
		return strings.Join(parts, "\x00")
	}
	return ""
}

// Document is a parsed resource file: entries in document order plus a name
// index. Resource names are unique within one document; adding a name that
// already exists replaces the previous entry in its original slot.
type Document struct {
	Entries []*Entry

	byName map[string]int
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{byName: make(map[string]int)}
}

// Len returns the number of entries, comments included.
func (d *Document) Len() int { return len(d.Entries) }

// IsEmpty reports whether the document has no resource entries (comments do
// not count).
func (d *Document) IsEmpty() bool {
	for _, e := range d.Entries {
		if !e.IsComment() {
			return false
		}
	}
	return true
}

// HasTranslatable reports whether at least one entry is translatable.
func (d *Document) HasTranslatable() bool {
	for _, e := range d.Entries {
		if e.IsTranslatable() {
			return true
		}
	}
	return false
}

// Lookup returns the named resource entry.
func (d *Document) Lookup(name string) (*Entry, bool) {
	idx, ok := d.byName[name]
	if !ok {
		return nil, false
	}
	return d.Entries[idx], true
}

// Add appends an entry, or replaces the existing entry's slot when the name
// is already present (insertion order is kept).
func (d *Document) Add(e *Entry) {
	if e.Name != "" {
		if idx, ok := d.byName[e.Name]; ok {
			d.Entries[idx] = e
			return
		}
	}
	idx := len(d.Entries)
	d.Entries = append(d.Entries, e)
	if e.Name != "" {
		d.byName[e.Name] = idx
	}
}

// Remove deletes the named entry. It reports whether the entry existed.
func (d *Document) Remove(name string) bool {
	idx, ok := d.byName[name]
	if !ok {
		return false
	}
	d.Entries = append(d.Entries[:idx], d.Entries[idx+1:]...)
	delete(d.byName, name)
	for n, i := range d.byName {
		if i > idx {
			d.byName[n] = i - 1
		}
	}
	return true
}

// Names returns all resource names in document order.
func (d *Document) Names() []string {
	var names []string
	for _, e := range d.Entries {
		if !e.IsComment() {
			names = append(names, e.Name)
		}
	}
	return names
}

// Stats returns (total, translated) counts over translatable entries.
func (d *Document) Stats() (total, translated int) {
	for _, e := range d.Entries {
		if !e.IsTranslatable() {
			continue
		}
		total++
		if e.IsTranslated() {
			translated++
		}
	}
	return
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a resource XML file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// cdataSet records which resources (or sub-items) were CDATA-wrapped in the
// source. Go's xml decoder unwraps CDATA transparently, so the raw bytes are
// scanned beforehand.
type cdataSet map[string]bool

func cdataKey(name, suffix string) string {
	if suffix == "" {
		return name
	}
	return name + suffix
}

var (
	reStringCDATA  = regexp.MustCompile(`<string\s[^>]*name="([^"]+)"[^>]*>\s*<!\[CDATA\[`)
	reArrayBlock   = regexp.MustCompile(`(?s)<string-array\s[^>]*name="([^"]+)"[^>]*>(.*?)</string-array>`)
	reItemCDATA    = regexp.MustCompile(`(?s)<item[^>]*>(\s*<!\[CDATA\[)`)
	rePluralsBlock = regexp.MustCompile(`(?s)<plurals\s[^>]*name="([^"]+)"[^>]*>(.*?)</plurals>`)
	reQtyCDATA     = regexp.MustCompile(`(?s)<item\s[^>]*quantity="([^"]+)"[^>]*>\s*<!\[CDATA\[`)
)

func scanCDATA(data []byte) cdataSet {
	set := cdataSet{}
	s := string(data)

	for _, m := range reStringCDATA.FindAllStringSubmatch(s, -1) {
		set[m[1]] = true
	}
	for _, m := range reArrayBlock.FindAllStringSubmatch(s, -1) {
		name, block := m[1], m[2]
		for i, item := range reItemCDATA.FindAllString(block, -1) {
			if strings.Contains(item, "<![CDATA[") {
				set[cdataKey(name, fmt.Sprintf("[%d]", i))] = true
			}
		}
	}
	for _, m := range rePluralsBlock.FindAllStringSubmatch(s, -1) {
		name, block := m[1], m[2]
		for _, qm := range reQtyCDATA.FindAllStringSubmatch(block, -1) {
			set[cdataKey(name, "#"+qm[1])] = true
		}
	}
	return set
}

// Parse parses resource XML data into a Document. A payload without a
// <resources> element is an error; callers that want a recoverable empty
// state handle that at the store layer.
func Parse(data []byte) (*Document, error) {
	doc := NewDocument()
	cdata := scanCDATA(data)

	dec := xml.NewDecoder(strings.NewReader(string(data)))
	inResources := false
	sawResources := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A decode error inside <resources> means a damaged file, not a
			// short one. Surfacing it keeps a store load from silently
			// coming back truncated.
			if sawResources {
				return nil, fmt.Errorf("parsing resources: %w", err)
			}
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "resources" {
				inResources = true
				sawResources = true
				continue
			}
			if !inResources {
				continue
			}
			var e *Entry
			var perr error
			switch t.Name.Local {
			case "string":
				e, perr = parseString(dec, t, cdata)
			case "string-array":
				e, perr = parseArray(dec, t, cdata)
			case "plurals":
				e, perr = parsePlurals(dec, t, cdata)
			default:
				if err := dec.Skip(); err != nil {
					return nil, fmt.Errorf("skipping <%s>: %w", t.Name.Local, err)
				}
				continue
			}
			if perr != nil {
				return nil, perr
			}
			doc.Add(e)

		case xml.Comment:
			if inResources {
				if c := strings.TrimSpace(string(t)); c != "" {
					doc.Entries = append(doc.Entries, &Entry{Kind: KindComment, Comment: c})
				}
			}

		case xml.EndElement:
			if t.Name.Local == "resources" {
				inResources = false
			}
		}
	}

	if !sawResources {
		return nil, fmt.Errorf("no <resources> element found")
	}
	return doc, nil
}

// parseElemAttrs extracts the shared attributes of a resource element.
func parseElemAttrs(elem xml.StartElement) (name string, translatable, modified bool) {
	translatable = true
	for _, attr := range elem.Attr {
		switch attr.Name.Local {
		case "name":
			name = attr.Value
		case "translatable":
			if strings.EqualFold(attr.Value, "false") {
				translatable = false
			}
		case "modified":
			if strings.EqualFold(attr.Value, "true") {
				modified = true
			}
		}
	}
	return
}

func parseString(dec *xml.Decoder, elem xml.StartElement, cdata cdataSet) (*Entry, error) {
	name, translatable, modified := parseElemAttrs(elem)
	var inner strings.Builder
	if err := readInner(dec, &inner); err != nil {
		return nil, fmt.Errorf("reading <string name=%q>: %w", name, err)
	}
	return &Entry{
		Kind:         KindString,
		Name:         name,
		Translatable: translatable,
		Modified:     modified,
		Value:        inner.String(),
		UseCDATA:     cdata[name],
	}, nil
}

func parseArray(dec *xml.Decoder, elem xml.StartElement, cdata cdataSet) (*Entry, error) {
	name, translatable, modified := parseElemAttrs(elem)
	e := &Entry{
		Kind:         KindArray,
		Name:         name,
		Translatable: translatable,
		Modified:     modified,
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading <string-array name=%q>: %w", name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "item" && depth == 1 {
				var inner strings.Builder
				if err := readInner(dec, &inner); err != nil {
					return nil, fmt.Errorf("reading <item> in <string-array name=%q>: %w", name, err)
				}
				e.ItemCDATA = append(e.ItemCDATA, cdata[cdataKey(name, fmt.Sprintf("[%d]", len(e.Items)))])
				e.Items = append(e.Items, inner.String())
			} else {
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
	return e, nil
}

func parsePlurals(dec *xml.Decoder, elem xml.StartElement, cdata cdataSet) (*Entry, error) {
	name, translatable, modified := parseElemAttrs(elem)
	e := &Entry{
		Kind:          KindPlurals,
		Name:          name,
		Translatable:  translatable,
		Modified:      modified,
		Quantities:    make(map[string]string),
		QuantityCDATA: make(map[string]bool),
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading <plurals name=%q>: %w", name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "item" && depth == 1 {
				var quantity string
				for _, attr := range t.Attr {
					if attr.Name.Local == "quantity" {
						quantity = attr.Value
						break
					}
				}
				var inner strings.Builder
				if err := readInner(dec, &inner); err != nil {
					return nil, fmt.Errorf("reading <item quantity=%q> in <plurals name=%q>: %w", quantity, name, err)
				}
				if quantity != "" {
					e.Quantities[quantity] = inner.String()
					e.QuantityOrder = append(e.QuantityOrder, quantity)
					e.QuantityCDATA[quantity] = cdata[cdataKey(name, "#"+quantity)]
				}
			} else {
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
	return e, nil
}

// readInner reads the full inner content of an element up to its matching
// close tag, reconstructing inline children (e.g. <xliff:g>) as raw text and
// unwrapping CDATA sections.
func readInner(dec *xml.Decoder, b *strings.Builder) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			// CDATA sections also arrive here; the decoder unwraps them.
			b.WriteString(unescapeApostrophe(string(t)))
		case xml.Comment, xml.ProcInst, xml.Directive:
			// ignored inside values
		case xml.StartElement:
			depth++
			b.WriteString("<")
			writeQName(b, t.Name)
			for _, attr := range t.Attr {
				fmt.Fprintf(b, ` %s="%s"`, attr.Name.Local, attr.Value)
			}
			b.WriteString(">")
		case xml.EndElement:
			depth--
			if depth > 0 {
				b.WriteString("</")
				writeQName(b, t.Name)
				b.WriteString(">")
			}
		}
	}
	return nil
}

func writeQName(b *strings.Builder, n xml.Name) {
	if n.Space != "" {
		b.WriteString(n.Space)
		b.WriteString(":")
	}
	b.WriteString(n.Local)
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// MarshalOptions control serialization of a Document.
type MarshalOptions struct {
	// IncludeModified emits modified="true" on diverged entries. Set for
	// store files; never set for cleaned baselines or exported documents.
	IncludeModified bool
}

// Marshal renders the document as resource XML with default options.
func (d *Document) Marshal() []byte {
	return d.MarshalWith(MarshalOptions{})
}

// MarshalWith renders the document as resource XML.
func (d *Document) MarshalWith(opts MarshalOptions) []byte {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString("<resources>\n")
	for _, e := range d.Entries {
		writeEntry(&b, e, opts)
	}
	b.WriteString("</resources>\n")
	return []byte(b.String())
}

// WriteFile serializes the document to a file, creating parent directories.
func (d *Document) WriteFile(path string, opts MarshalOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(path, d.MarshalWith(opts), 0644)
}

func writeEntry(b *strings.Builder, e *Entry, opts MarshalOptions) {
	switch e.Kind {
	case KindComment:
		fmt.Fprintf(b, "    <!-- %s -->\n", e.Comment)

	case KindString:
		fmt.Fprintf(b, "    <string %s>%s</string>\n",
			entryAttrs(e, opts), encodeValue(e.Value, e.UseCDATA))

	case KindArray:
		fmt.Fprintf(b, "    <string-array %s>\n", entryAttrs(e, opts))
		for i, item := range e.Items {
			useCDATA := i < len(e.ItemCDATA) && e.ItemCDATA[i]
			fmt.Fprintf(b, "        <item>%s</item>\n", encodeValue(item, useCDATA))
		}
		b.WriteString("    </string-array>\n")

	case KindPlurals:
		fmt.Fprintf(b, "    <plurals %s>\n", entryAttrs(e, opts))
		for _, q := range e.QuantityOrder {
			useCDATA := e.QuantityCDATA != nil && e.QuantityCDATA[q]
			fmt.Fprintf(b, "        <item quantity=\"%s\">%s</item>\n",
				q, encodeValue(e.Quantities[q], useCDATA))
		}
		b.WriteString("    </plurals>\n")
	}
}

func entryAttrs(e *Entry, opts MarshalOptions) string {
	attrs := fmt.Sprintf(`name="%s"`, e.Name)
	if !e.Translatable {
		attrs += ` translatable="false"`
	}
	if opts.IncludeModified && e.Modified {
		attrs += ` modified="true"`
	}
	return attrs
}

// encodeValue encodes one string value for XML output, restoring the CDATA
// wrapper when the source used one.
func encodeValue(s string, useCDATA bool) string {
	if useCDATA {
		// Inside CDATA only apostrophes need escaping (AAPT rule).
		return "<![CDATA[" + escapeApostrophe(s) + "]]>"
	}
	return xmlEscape(s)
}

// xmlEscape escapes a plain value for use inside an XML element. Values
// that carry well-formed inline markup (e.g. <xliff:g>, <b>) are passed
// through so the markup survives the round-trip.
func xmlEscape(s string) string {
	if isInlineMarkup(s) {
		return s
	}
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return escapeApostrophe(s)
}

// isInlineMarkup reports whether s is a well-formed XML fragment. A value
// like "a < b > c" has angle brackets but no markup; writing it unescaped
// would corrupt the file on the next parse.
func isInlineMarkup(s string) bool {
	if !strings.Contains(s, "<") || !strings.Contains(s, ">") {
		return false
	}
	dec := xml.NewDecoder(strings.NewReader("<v>" + s + "</v>"))
	for {
		if _, err := dec.Token(); err != nil {
			return err == io.EOF
		}
	}
}

// escapeApostrophe applies AAPT apostrophe escaping without double-escaping.
func escapeApostrophe(s string) string {
	s = strings.ReplaceAll(s, `\'`, `'`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// unescapeApostrophe converts AAPT-escaped apostrophes back to plain ones.
func unescapeApostrophe(s string) string {
	return strings.ReplaceAll(s, `\'`, `'`)
}
