package preview

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

const placeholderDocument = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Preview</title>
</head>
<body>
<p>No HTML file found in this project.</p>
</body>
</html>
`

// Compose inlines the css and js artifacts into the html artifact. Links and
// script tags that point at those artifacts by file name are removed, a
// <style> block goes right before </head> and a <script> block right before
// </body>. A missing closing tag means nothing is inserted for that kind.
// Bytes outside the edited spans are returned untouched.
func Compose(set ArtifactSet) string {
	doc := placeholderDocument
	if set.HTML != nil {
		doc = set.HTML.Content
	}
	if set.CSS == nil && set.JS == nil {
		return doc
	}

	var cssRefs, jsRefs []string
	if set.CSS != nil {
		cssRefs = refNames(KindCSS, set.CSS.Name, "styles.css", "style.css")
	}
	if set.JS != nil {
		jsRefs = refNames(KindJS, set.JS.Name, "script.js")
	}

	m := scan(doc, cssRefs, jsRefs)

	var edits []edit
	if set.CSS != nil {
		for _, s := range m.links {
			edits = append(edits, edit{start: s.start, end: s.end})
		}
		if m.headClose >= 0 {
			edits = append(edits, edit{start: m.headClose, end: m.headClose, text: "<style>" + set.CSS.Content + "</style>"})
		}
	}
	if set.JS != nil {
		for _, s := range m.scripts {
			edits = append(edits, edit{start: s.start, end: s.end})
		}
		if m.bodyClose >= 0 {
			edits = append(edits, edit{start: m.bodyClose, end: m.bodyClose, text: "<script>" + set.JS.Content + "</script>"})
		}
	}
	return apply(doc, edits)
}

type span struct{ start, end int }

type edit struct {
	start, end int
	text       string
}

type markers struct {
	links     []span
	scripts   []span
	headClose int
	bodyClose int
}

// scan walks the document's tokens, tracking byte offsets through Raw so
// edits can be spliced into the original text.
func scan(doc string, cssRefs, jsRefs []string) markers {
	m := markers{headClose: -1, bodyClose: -1}
	z := html.NewTokenizer(strings.NewReader(doc))

	offset := 0
	open := span{-1, -1} // matched <script src> awaiting its end tag
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		start := offset
		offset += len(z.Raw())

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			attrs := readAttrs(z, hasAttr)
			switch string(name) {
			case "link":
				if len(cssRefs) > 0 && isStylesheet(attrs["rel"]) && refersTo(attrs["href"], cssRefs) {
					m.links = append(m.links, span{start, offset})
				}
			case "script":
				if len(jsRefs) > 0 && refersTo(attrs["src"], jsRefs) {
					if tt == html.SelfClosingTagToken {
						m.scripts = append(m.scripts, span{start, offset})
					} else {
						open = span{start, offset}
					}
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "head":
				if m.headClose < 0 {
					m.headClose = start
				}
			case "body":
				if m.bodyClose < 0 {
					m.bodyClose = start
				}
			case "script":
				if open.start >= 0 {
					m.scripts = append(m.scripts, span{open.start, offset})
					open = span{-1, -1}
				}
			}
		}
	}
	// Unterminated external script: drop just its start tag.
	if open.start >= 0 {
		m.scripts = append(m.scripts, open)
	}
	return m
}

func readAttrs(z *html.Tokenizer, more bool) map[string]string {
	attrs := make(map[string]string)
	for more {
		var key, val []byte
		key, val, more = z.TagAttr()
		k := string(key)
		if _, dup := attrs[k]; !dup {
			attrs[k] = string(val)
		}
	}
	return attrs
}

func isStylesheet(rel string) bool {
	for _, f := range strings.Fields(strings.ToLower(rel)) {
		if f == "stylesheet" {
			return true
		}
	}
	return false
}

// refersTo reports whether ref names one of the artifact file names, ignoring
// query strings, fragments and a leading "./" or "/".
func refersTo(ref string, names []string) bool {
	ref = strings.TrimSpace(ref)
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	for strings.HasPrefix(ref, "./") {
		ref = ref[2:]
	}
	ref = strings.ToLower(strings.TrimPrefix(ref, "/"))
	if ref == "" {
		return false
	}
	for _, n := range names {
		if ref == n {
			return true
		}
	}
	return false
}

func refNames(kind Kind, name string, conventional ...string) []string {
	return append([]string{strings.ToLower(FileName(kind, name))}, conventional...)
}

func apply(doc string, edits []edit) string {
	if len(edits) == 0 {
		return doc
	}
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].start != edits[j].start {
			return edits[i].start < edits[j].start
		}
		return edits[i].end < edits[j].end
	})

	var b strings.Builder
	b.Grow(len(doc))
	pos := 0
	for _, e := range edits {
		if e.start < pos {
			continue
		}
		b.WriteString(doc[pos:e.start])
		b.WriteString(e.text)
		pos = e.end
	}
	b.WriteString(doc[pos:])
	return b.String()
}
