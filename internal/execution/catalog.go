package execution

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Language is one entry of the language catalog.
type Language struct {
	ID        LanguageID `json:"id"`
	Name      string     `json:"name"`
	Extension string     `json:"extension"`
	Backend   Backend    `json:"backend"`
}

// BackendFor is the routing rule: the script language runs locally, every
// other identifier goes to the judge.
func BackendFor(id LanguageID) Backend {
	if id == ScriptLanguage {
		return BackendLocal
	}
	return BackendJudge
}

// Catalog is the static table of languages offered to users. Routing never
// consults it; it only names ids for listings and lookups.
type Catalog struct {
	byID map[LanguageID]Language
}

var defaultLanguages = []Language{
	{ID: 50, Name: "c", Extension: ".c"},
	{ID: 51, Name: "csharp", Extension: ".cs"},
	{ID: 54, Name: "cpp", Extension: ".cpp"},
	{ID: 60, Name: "go", Extension: ".go"},
	{ID: 62, Name: "java", Extension: ".java"},
	{ID: ScriptLanguage, Name: "javascript", Extension: ".js"},
	{ID: 68, Name: "php", Extension: ".php"},
	{ID: 71, Name: "python", Extension: ".py"},
	{ID: 72, Name: "ruby", Extension: ".rb"},
	{ID: 73, Name: "rust", Extension: ".rs"},
	{ID: 74, Name: "typescript", Extension: ".ts"},
	{ID: 78, Name: "kotlin", Extension: ".kt"},
}

// DefaultCatalog returns the built-in language table.
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultLanguages)
}

// NewCatalog builds a catalog. Backend fields are derived from BackendFor.
func NewCatalog(langs []Language) *Catalog {
	c := &Catalog{byID: make(map[LanguageID]Language, len(langs))}
	for _, l := range langs {
		l.Backend = BackendFor(l.ID)
		c.byID[l.ID] = l
	}
	return c
}

// Languages returns all entries ordered by id.
func (c *Catalog) Languages() []Language {
	out := make([]Language, 0, len(c.byID))
	for _, l := range c.byID {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Lookup returns the entry for id.
func (c *Catalog) Lookup(id LanguageID) (Language, bool) {
	l, ok := c.byID[id]
	return l, ok
}

// Resolve accepts a language name ("python") or a numeric id ("71").
// Numeric ids are accepted even when they are not in the catalog.
func (c *Catalog) Resolve(s string) (LanguageID, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if n, err := strconv.Atoi(s); err == nil {
		return LanguageID(n), true
	}
	for _, l := range c.byID {
		if l.Name == s {
			return l.ID, true
		}
	}
	return 0, false
}

// ForFile infers the language from a file extension.
func (c *Catalog) ForFile(path string) (LanguageID, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return 0, false
	}
	for _, l := range c.byID {
		if l.Extension == ext {
			return l.ID, true
		}
	}
	return 0, false
}
