package preview

import (
	"strings"
	"testing"
)

const fullHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Demo</title>
  <link rel="stylesheet" href="styles.css">
</head>
<body>
  <h1>Hi</h1>
  <script src="script.js"></script>
</body>
</html>`

func TestComposeAllArtifacts(t *testing.T) {
	set := ArtifactSet{
		HTML: &Artifact{Name: "index", Content: fullHTML},
		CSS:  &Artifact{Name: "styles", Content: "body{color:red}"},
		JS:   &Artifact{Name: "script", Content: "console.log(1)"},
	}

	got := Compose(set)

	style := strings.Index(got, "<style>body{color:red}</style>")
	head := strings.Index(got, "</head>")
	if style < 0 || head < 0 || style > head {
		t.Errorf("style block not inlined before </head>:\n%s", got)
	}
	if !strings.Contains(got, "<style>body{color:red}</style></head>") {
		t.Errorf("style block should sit immediately before </head>:\n%s", got)
	}
	if !strings.Contains(got, "<script>console.log(1)</script></body>") {
		t.Errorf("script block should sit immediately before </body>:\n%s", got)
	}
	if strings.Contains(got, "<link") {
		t.Errorf("stylesheet link not removed:\n%s", got)
	}
	if strings.Contains(got, `src="script.js"`) {
		t.Errorf("external script not removed:\n%s", got)
	}
	if !strings.Contains(got, "<h1>Hi</h1>") || !strings.Contains(got, "<title>Demo</title>") {
		t.Errorf("unrelated markup changed:\n%s", got)
	}
}

func TestComposeOnlyHTMLUnchanged(t *testing.T) {
	set := ArtifactSet{HTML: &Artifact{Name: "index", Content: fullHTML}}
	if got := Compose(set); got != fullHTML {
		t.Errorf("Compose changed html-only document:\n%s", got)
	}
}

func TestComposeIdempotent(t *testing.T) {
	set := ArtifactSet{
		HTML: &Artifact{Name: "index", Content: fullHTML},
		CSS:  &Artifact{Name: "styles", Content: "p{margin:0}"},
		JS:   &Artifact{Name: "script", Content: "alert(1)"},
	}
	if a, b := Compose(set), Compose(set); a != b {
		t.Errorf("Compose not deterministic:\n%s\n---\n%s", a, b)
	}
}

func TestComposeDoesNotMutateArtifacts(t *testing.T) {
	html := &Artifact{Name: "index", Content: fullHTML}
	css := &Artifact{Name: "styles", Content: "a{}"}
	Compose(ArtifactSet{HTML: html, CSS: css})
	if html.Content != fullHTML || css.Content != "a{}" {
		t.Error("Compose mutated its input")
	}
}

func TestComposeLinkAttributeOrder(t *testing.T) {
	tests := []string{
		`<link href="styles.css" rel="stylesheet">`,
		`<LINK REL='stylesheet' HREF='./styles.css' />`,
		`<link rel=stylesheet type="text/css" href=styles.css?v=2>`,
		`<link rel="preload stylesheet" href="/styles.css">`,
	}
	for _, link := range tests {
		doc := "<html><head>" + link + "</head><body></body></html>"
		got := Compose(ArtifactSet{
			HTML: &Artifact{Name: "index", Content: doc},
			CSS:  &Artifact{Name: "styles", Content: "x{}"},
		})
		want := "<html><head><style>x{}</style></head><body></body></html>"
		if got != want {
			t.Errorf("link %s:\ngot  %s\nwant %s", link, got, want)
		}
	}
}

func TestComposeKeepsUnrelatedLinksAndScripts(t *testing.T) {
	doc := `<html><head><link rel="stylesheet" href="https://cdn.example.com/bootstrap.css"><link rel="icon" href="styles.css"></head>` +
		`<body><script src="https://cdn.example.com/lib.js"></script></body></html>`
	got := Compose(ArtifactSet{
		HTML: &Artifact{Name: "index", Content: doc},
		CSS:  &Artifact{Name: "styles", Content: "a{}"},
		JS:   &Artifact{Name: "script", Content: "b()"},
	})
	for _, keep := range []string{"bootstrap.css", `rel="icon"`, "lib.js"} {
		if !strings.Contains(got, keep) {
			t.Errorf("removed unrelated reference %q:\n%s", keep, got)
		}
	}
}

func TestComposeMatchesArtifactName(t *testing.T) {
	doc := `<html><head><link rel="stylesheet" href="main.css"></head><body><script src="app.js"></script></body></html>`
	got := Compose(ArtifactSet{
		HTML: &Artifact{Name: "index", Content: doc},
		CSS:  &Artifact{Name: "main", Content: "a{}"},
		JS:   &Artifact{Name: "app", Content: "go()"},
	})
	want := `<html><head><style>a{}</style></head><body><script>go()</script></body></html>`
	if got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestComposeMissingClosingTags(t *testing.T) {
	doc := `<link rel="stylesheet" href="styles.css"><p>fragment</p><script src="script.js"></script>`
	got := Compose(ArtifactSet{
		HTML: &Artifact{Name: "index", Content: doc},
		CSS:  &Artifact{Name: "styles", Content: "a{}"},
		JS:   &Artifact{Name: "script", Content: "b()"},
	})
	if got != "<p>fragment</p>" {
		t.Errorf("got %q, want link and script removed and nothing inserted", got)
	}
}

func TestComposeWithoutHTML(t *testing.T) {
	got := Compose(ArtifactSet{CSS: &Artifact{Name: "styles", Content: "h1{}"}})
	if !strings.Contains(got, "No HTML file found") {
		t.Errorf("placeholder missing:\n%s", got)
	}
	if !strings.Contains(got, "<style>h1{}</style>\n</head>") && !strings.Contains(got, "<style>h1{}</style></head>") {
		t.Errorf("css not inlined into placeholder:\n%s", got)
	}

	if got := Compose(ArtifactSet{}); got != placeholderDocument {
		t.Errorf("empty set should yield the placeholder, got:\n%s", got)
	}
}

func TestComposeScriptContentWithMarkup(t *testing.T) {
	doc := `<html><head></head><body><script>var s = "</head>";</script><script src="script.js"></script></body></html>`
	got := Compose(ArtifactSet{
		HTML: &Artifact{Name: "index", Content: doc},
		CSS:  &Artifact{Name: "styles", Content: "a{}"},
		JS:   &Artifact{Name: "script", Content: "x()"},
	})
	want := `<html><head><style>a{}</style></head><body><script>var s = "</head>";</script><script>x()</script></body></html>`
	if got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestFrameSandboxed(t *testing.T) {
	got := Frame(`My "App"`, `<p onclick="x()">hi</p>`)
	if !strings.Contains(got, `sandbox="allow-scripts allow-same-origin allow-popups allow-forms"`) {
		t.Errorf("frame missing sandbox attribute: %s", got)
	}
	if !strings.Contains(got, `title="My &#34;App&#34;"`) {
		t.Errorf("title not escaped: %s", got)
	}
	if strings.Contains(got, `<p onclick`) {
		t.Errorf("srcdoc not escaped: %s", got)
	}
	if !strings.Contains(FramePage("t", "d"), "<iframe") {
		t.Error("FramePage should embed the frame")
	}
}
