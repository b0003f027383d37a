// Package preview turns a project's html, css and js artifacts into a single
// renderable document, and packages the raw artifacts for download.
package preview

import (
	"strings"

	"github.com/michaelbrown/codepad/internal/storage"
)

// Kind is an artifact type.
type Kind string

const (
	KindHTML Kind = "html"
	KindCSS  Kind = "css"
	KindJS   Kind = "js"
)

var extensions = map[Kind]string{
	KindHTML: ".html",
	KindCSS:  ".css",
	KindJS:   ".js",
}

var defaultNames = map[Kind]string{
	KindHTML: "index",
	KindCSS:  "styles",
	KindJS:   "script",
}

// ParseKind maps a stored file type onto a Kind.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "html", "htm":
		return KindHTML, true
	case "css":
		return KindCSS, true
	case "js", "javascript":
		return KindJS, true
	}
	return "", false
}

// Artifact is one named source file.
type Artifact struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ArtifactSet holds at most one artifact per kind. It is read, never modified.
type ArtifactSet struct {
	HTML *Artifact `json:"html,omitempty"`
	CSS  *Artifact `json:"css,omitempty"`
	JS   *Artifact `json:"js,omitempty"`
}

// Entry pairs an artifact with its kind.
type Entry struct {
	Kind     Kind
	Artifact *Artifact
}

// FileName is the artifact's file name with its kind's extension.
func (e Entry) FileName() string {
	return FileName(e.Kind, e.Artifact.Name)
}

// Entries returns the present artifacts in html, css, js order.
func (s ArtifactSet) Entries() []Entry {
	var out []Entry
	for _, e := range []Entry{{KindHTML, s.HTML}, {KindCSS, s.CSS}, {KindJS, s.JS}} {
		if e.Artifact != nil {
			out = append(out, e)
		}
	}
	return out
}

// Empty reports whether no artifact is present.
func (s ArtifactSet) Empty() bool {
	return s.HTML == nil && s.CSS == nil && s.JS == nil
}

// FileName returns "<name>.<ext>" for kind, tolerating names that already
// carry the extension and falling back to a default name.
func FileName(kind Kind, name string) string {
	ext := extensions[kind]
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultNames[kind]
	}
	if strings.HasSuffix(strings.ToLower(name), ext) {
		return name
	}
	return name + ext
}

// FromFiles builds a set from stored files, keeping the first of each kind.
func FromFiles(files []storage.File) ArtifactSet {
	var set ArtifactSet
	for _, f := range files {
		kind, ok := ParseKind(f.Type)
		if !ok {
			continue
		}
		a := &Artifact{Name: f.Name, Content: f.Content}
		switch kind {
		case KindHTML:
			if set.HTML == nil {
				set.HTML = a
			}
		case KindCSS:
			if set.CSS == nil {
				set.CSS = a
			}
		case KindJS:
			if set.JS == nil {
				set.JS = a
			}
		}
	}
	return set
}
