package preview

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/michaelbrown/codepad/internal/storage"
)

func TestArchiveRoundTrip(t *testing.T) {
	set := ArtifactSet{
		HTML: &Artifact{Name: "index", Content: `<link rel="stylesheet" href="styles.css">`},
		CSS:  &Artifact{Name: "styles", Content: "body{color:red}"},
		JS:   &Artifact{Name: "script", Content: "console.log(1)"},
	}

	data, err := ArchiveBytes(set)
	if err != nil {
		t.Fatalf("ArchiveBytes: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("reading zip: %v", err)
	}

	want := map[string]string{
		"index.html": set.HTML.Content,
		"styles.css": set.CSS.Content,
		"script.js":  set.JS.Content,
	}
	if len(zr.File) != len(want) {
		t.Fatalf("got %d entries, want %d", len(zr.File), len(want))
	}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		got, _ := io.ReadAll(rc)
		rc.Close()
		if string(got) != want[f.Name] {
			t.Errorf("%s = %q, want %q", f.Name, got, want[f.Name])
		}
	}
}

func TestArchiveOnlyPresentArtifacts(t *testing.T) {
	data, err := ArchiveBytes(ArtifactSet{JS: &Artifact{Name: "app.js", Content: "x"}})
	if err != nil {
		t.Fatalf("ArchiveBytes: %v", err)
	}
	zr, _ := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if len(zr.File) != 1 || zr.File[0].Name != "app.js" {
		t.Errorf("entries = %v", zr.File)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		kind Kind
		name string
		want string
	}{
		{KindHTML, "index", "index.html"},
		{KindCSS, "theme.css", "theme.css"},
		{KindJS, "", "script.js"},
		{KindCSS, " main ", "main.css"},
	}
	for _, tt := range tests {
		if got := FileName(tt.kind, tt.name); got != tt.want {
			t.Errorf("FileName(%s, %q) = %q, want %q", tt.kind, tt.name, got, tt.want)
		}
	}
}

func TestFromFiles(t *testing.T) {
	set := FromFiles([]storage.File{
		{Name: "index", Type: "html", Content: "<p>1</p>"},
		{Name: "other", Type: "html", Content: "<p>2</p>"},
		{Name: "app", Type: "javascript", Content: "x"},
		{Name: "readme", Type: "md", Content: "#"},
	})
	if set.HTML == nil || set.HTML.Content != "<p>1</p>" {
		t.Errorf("html = %+v, want first html file", set.HTML)
	}
	if set.JS == nil || set.JS.Name != "app" {
		t.Errorf("js = %+v", set.JS)
	}
	if set.CSS != nil {
		t.Errorf("css = %+v, want nil", set.CSS)
	}
}
