package android

import "testing"

func parseOrFail(t *testing.T, xml string) *Document {
	t.Helper()
	doc, err := Parse([]byte(xml))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return doc
}

func TestClean_DropsNonTranslatable(t *testing.T) {
	doc := parseOrFail(t, `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <!-- branding -->
    <string name="app_name" translatable="false">MyApp</string>
    <string name="greeting">Hello</string>
</resources>`)

	clean := Clean(doc)
	if _, ok := clean.Lookup("app_name"); ok {
		t.Error("app_name should have been dropped")
	}
	if _, ok := clean.Lookup("greeting"); !ok {
		t.Error("greeting should have been kept")
	}
	if !clean.Entries[0].IsComment() {
		t.Error("comment should survive cleaning")
	}
}

func TestClean_Idempotent(t *testing.T) {
	doc := parseOrFail(t, `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <string name="a" translatable="false">x</string>
    <string name="b">y</string>
    <string-array name="c">
        <item>1</item>
    </string-array>
</resources>`)

	once := Clean(doc)
	twice := Clean(once)
	if string(once.Marshal()) != string(twice.Marshal()) {
		t.Errorf("Clean is not idempotent:\nonce:\n%s\ntwice:\n%s", once.Marshal(), twice.Marshal())
	}
}

func TestClean_ClearsModifiedFlags(t *testing.T) {
	doc := NewDocument()
	doc.Add(&Entry{Kind: KindString, Name: "a", Translatable: true, Value: "x", Modified: true})

	clean := Clean(doc)
	e, _ := clean.Lookup("a")
	if e.Modified {
		t.Error("cleaned entries must not carry the modified flag")
	}
}

func TestApplyTemplate_SubstitutesTranslations(t *testing.T) {
	tmpl := parseOrFail(t, `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <string name="app_name" translatable="false">MyApp</string>
    <string name="greeting">Hello</string>
    <string name="farewell">Bye</string>
</resources>`)
	src := parseOrFail(t, `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <string name="greeting">Hola</string>
</resources>`)

	out := ApplyTemplate(tmpl, src)

	// Template order and structure are kept, non-translatable verbatim.
	if out.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", out.Len())
	}
	if e, _ := out.Lookup("app_name"); e.Value != "MyApp" {
		t.Errorf("app_name: got %q, want MyApp", e.Value)
	}
	if e, _ := out.Lookup("greeting"); e.Value != "Hola" {
		t.Errorf("greeting: got %q, want Hola", e.Value)
	}
	// Untranslated entries stay blank, not the default text.
	if e, _ := out.Lookup("farewell"); e.Value != "" {
		t.Errorf("farewell: got %q, want blank placeholder", e.Value)
	}
}

func TestApplyTemplate_ArrayStructureFollowsTemplate(t *testing.T) {
	tmpl := parseOrFail(t, `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <string-array name="sizes">
        <item>Small</item>
        <item>Medium</item>
        <item>Large</item>
    </string-array>
</resources>`)
	src := parseOrFail(t, `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <string-array name="sizes">
        <item>Pequeño</item>
        <item>Mediano</item>
    </string-array>
</resources>`)

	out := ApplyTemplate(tmpl, src)
	e, _ := out.Lookup("sizes")
	if len(e.Items) != 3 {
		t.Fatalf("item count must follow the template: got %d, want 3", len(e.Items))
	}
	if e.Items[0] != "Pequeño" || e.Items[1] != "Mediano" || e.Items[2] != "" {
		t.Errorf("items: got %v", e.Items)
	}
}

func TestApplyTemplate_KindMismatchBlanks(t *testing.T) {
	tmpl := parseOrFail(t, `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <string name="x">Default</string>
</resources>`)
	src := NewDocument()
	src.Add(&Entry{Kind: KindArray, Name: "x", Translatable: true, Items: []string{"a"}})

	out := ApplyTemplate(tmpl, src)
	if e, _ := out.Lookup("x"); e.Value != "" {
		t.Errorf("kind mismatch should blank the entry, got %q", e.Value)
	}
}

func TestApplyTemplate_NilSource(t *testing.T) {
	tmpl := parseOrFail(t, `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <string name="a">Default</string>
</resources>`)

	out := ApplyTemplate(tmpl, nil)
	if e, _ := out.Lookup("a"); e.Value != "" {
		t.Errorf("nil source should blank translatable entries, got %q", e.Value)
	}
}

func TestApplyTemplate_NeverEmitsModified(t *testing.T) {
	tmpl := NewDocument()
	tmpl.Add(&Entry{Kind: KindString, Name: "a", Translatable: true, Value: "x"})
	src := NewDocument()
	src.Add(&Entry{Kind: KindString, Name: "a", Translatable: true, Value: "y", Modified: true})

	out := ApplyTemplate(tmpl, src)
	if e, _ := out.Lookup("a"); e.Modified {
		t.Error("export output must not carry modified flags")
	}
}

// Mirrors the round-trip guarantee: substituting the locale's content into
// the original upstream file reproduces that file's full structure, with
// only the translated text changed.
func TestApplyTemplate_RoundTripScenario(t *testing.T) {
	original := parseOrFail(t, `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <!-- Identity -->
    <string name="app_name" translatable="false">Example</string>
    <string name="greeting">Hello</string>
</resources>`)
	locale := parseOrFail(t, `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <string name="greeting">Bonjour</string>
</resources>`)

	out := ApplyTemplate(original, locale)

	if out.Len() != original.Len() {
		t.Fatalf("structure lost: %d entries, want %d", out.Len(), original.Len())
	}
	if !out.Entries[0].IsComment() {
		t.Error("comment position lost")
	}
	app, _ := out.Lookup("app_name")
	if app.Value != "Example" || app.Translatable {
		t.Errorf("app_name must come through verbatim: %+v", app)
	}
	if g, _ := out.Lookup("greeting"); g.Value != "Bonjour" {
		t.Errorf("greeting: got %q, want Bonjour", g.Value)
	}
}
