package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the built-in templates so callers can copy or extend
// them. Template names are rooted at "templates/".
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
