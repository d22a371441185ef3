// Package openapi imports form fields from the request body of an OpenAPI
// operation. Documents are loaded from files, an fs.FS or HTTP, parsed with
// kin-openapi and mapped property by property onto field drafts.
package openapi
