package model

import (
	"encoding/json"
	"path"
	"strings"
)

// FileMeta is the in-memory record of an uploaded file. Only the name and
// size travel with the form; the content never does.
type FileMeta struct {
	Name   string  `json:"name"`
	SizeMB float64 `json:"sizeMB"`
}

// Extension returns the lower-cased extension without the leading dot.
func (f FileMeta) Extension() string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(f.Name)), ".")
}

// ParseFiles decodes a stored file list. A value that is not a JSON list of
// files is read as a single file name of size 0.
func ParseFiles(raw string) []FileMeta {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	var files []FileMeta
	if err := json.Unmarshal([]byte(trimmed), &files); err != nil {
		return []FileMeta{{Name: trimmed}}
	}
	return files
}

// EncodeFiles serialises a file list for storage in the form values.
func EncodeFiles(files []FileMeta) string {
	if len(files) == 0 {
		return ""
	}
	payload, err := json.Marshal(files)
	if err != nil {
		return ""
	}
	return string(payload)
}
