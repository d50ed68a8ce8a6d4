package android

// Clean returns a copy of doc without entries whose translatable flag is
// false. Comments and the ordering of the remaining entries are preserved.
// Cleaning an already clean document yields an identical result.
func Clean(doc *Document) *Document {
	out := NewDocument()
	for _, e := range doc.Entries {
		if !e.IsComment() && !e.Translatable {
			continue
		}
		c := e.Clone()
		c.Modified = false
		out.Add(c)
	}
	return out
}

// CleanFile parses the resource file at src and writes its cleaned form to
// dst. Used when ingesting a default-locale file into the baseline.
func CleanFile(src, dst string) error {
	doc, err := ParseFile(src)
	if err != nil {
		return err
	}
	return Clean(doc).WriteFile(dst, MarshalOptions{})
}

// ContentSource supplies translated content for template substitution.
// A nil-entry or false return leaves the template entry untranslated.
type ContentSource interface {
	Lookup(name string) (*Entry, bool)
}

// ApplyTemplate walks template in document order and produces a document
// that is structurally identical to it but carries one locale's values:
//
//   - non-translatable entries and comments are copied through verbatim;
//   - translatable entries take their content from src when present there,
//     otherwise they stay blank as untranslated placeholders.
//
// The result never carries modified flags; it is an export artifact, not a
// store state.
func ApplyTemplate(template *Document, src ContentSource) *Document {
	out := NewDocument()
	for _, e := range template.Entries {
		c := e.Clone()
		c.Modified = false
		if e.IsTranslatable() {
			substitute(c, src)
		}
		out.Add(c)
	}
	return out
}

// substitute overwrites c's content with the source's same-name entry, or
// blanks it when the source has nothing usable. Structure (item count,
// quantity order) always follows the template.
func substitute(c *Entry, src ContentSource) {
	s, ok := lookupFrom(src, c.Name)
	if !ok || s.Kind != c.Kind {
		blank(c)
		return
	}
	switch c.Kind {
	case KindString:
		c.Value = s.Value
	case KindArray:
		items := make([]string, len(c.Items))
		for i := range items {
			if i < len(s.Items) {
				items[i] = s.Items[i]
			}
		}
		c.Items = items
	case KindPlurals:
		q := make(map[string]string, len(c.QuantityOrder))
		for _, k := range c.QuantityOrder {
			q[k] = s.Quantities[k]
		}
		c.Quantities = q
	}
}

func lookupFrom(src ContentSource, name string) (*Entry, bool) {
	if src == nil {
		return nil, false
	}
	return src.Lookup(name)
}

// blank clears an entry's content while keeping its structure.
func blank(c *Entry) {
	switch c.Kind {
	case KindString:
		c.Value = ""
	case KindArray:
		c.Items = make([]string, len(c.Items))
	case KindPlurals:
		q := make(map[string]string, len(c.QuantityOrder))
		for _, k := range c.QuantityOrder {
			q[k] = ""
		}
		c.Quantities = q
	}
}
