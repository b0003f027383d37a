package execution

import "testing"

func TestBackendFor(t *testing.T) {
	tests := []struct {
		id   LanguageID
		want Backend
	}{
		{ScriptLanguage, BackendLocal},
		{71, BackendJudge},
		{54, BackendJudge},
		{0, BackendJudge},
		{-1, BackendJudge},
	}
	for _, tt := range tests {
		if got := BackendFor(tt.id); got != tt.want {
			t.Errorf("BackendFor(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestCatalogResolve(t *testing.T) {
	c := DefaultCatalog()

	tests := []struct {
		in     string
		want   LanguageID
		wantOK bool
	}{
		{"python", 71, true},
		{" JavaScript ", ScriptLanguage, true},
		{"71", 71, true},
		{"4242", 4242, true},
		{"cobol", 0, false},
	}
	for _, tt := range tests {
		got, ok := c.Resolve(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Resolve(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCatalogForFile(t *testing.T) {
	c := DefaultCatalog()

	if id, ok := c.ForFile("main.PY"); !ok || id != 71 {
		t.Errorf("ForFile(main.PY) = %d, %v", id, ok)
	}
	if id, ok := c.ForFile("/tmp/app.js"); !ok || id != ScriptLanguage {
		t.Errorf("ForFile(app.js) = %d, %v", id, ok)
	}
	if _, ok := c.ForFile("Makefile"); ok {
		t.Error("ForFile(Makefile) should not resolve")
	}
}

func TestCatalogLanguagesSortedWithBackends(t *testing.T) {
	langs := DefaultCatalog().Languages()
	for i := 1; i < len(langs); i++ {
		if langs[i-1].ID >= langs[i].ID {
			t.Fatalf("languages not sorted at %d", i)
		}
	}
	locals := 0
	for _, l := range langs {
		if l.Backend == BackendLocal {
			locals++
		}
	}
	if locals != 1 {
		t.Errorf("got %d local languages, want exactly 1", locals)
	}
}
