package preview

import (
	"fmt"

	"golang.org/x/net/html"
)

// SandboxPermissions are the only capabilities granted to a composed document.
const SandboxPermissions = "allow-scripts allow-same-origin allow-popups allow-forms"

// SandboxCSP is the Content-Security-Policy value that applies the same
// sandbox when a composed document is served directly.
const SandboxCSP = "sandbox " + SandboxPermissions

// Frame embeds doc in a sandboxed iframe through srcdoc. Composed documents
// hold untrusted code and must only reach a browser this way or under
// SandboxCSP.
func Frame(title, doc string) string {
	return fmt.Sprintf(`<iframe title="%s" sandbox="%s" srcdoc="%s" style="width:100%%;height:100%%;border:0"></iframe>`,
		html.EscapeString(title), SandboxPermissions, html.EscapeString(doc))
}

// FramePage wraps Frame in a minimal full-window page.
func FramePage(title, doc string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>html,body{margin:0;height:100%%}</style>
</head>
<body>
%s
</body>
</html>
`, html.EscapeString(title), Frame(title, doc))
}
