// Package template defines the template engine contract used by the HTML
// renderer. The pongo2 implementation lives in the gotemplate subpackage.
package template
