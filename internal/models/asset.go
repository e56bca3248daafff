package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reserved variant names
// Presets registered by the host add their own names next to these
const (
	VariantOriginal  = "original"
	VariantThumbnail = "thumbnail"
)

// Variant describes one reconstructible rendition of an image asset.
// Width and height are the realized pixel values, not the preset request.
type Variant struct {
	Name     string `json:"name"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	MimeType string `json:"mime_type"`
}

// Asset is the per-asset record the gateway keeps in the metadata store.
// Once Migrated flips to true the local bytes are gone and this record is
// the sole source of truth for rendering.
type Asset struct {
	ID uuid.UUID

	// Storage-relative path, e.g. "2024/05/photo.jpg"
	RelativePath string

	// Legacy path field; records written before RelativePath existed
	// carry the remote path here instead
	AttachedFile string

	MimeType string
	Migrated bool

	// Original pixel dimensions, zero for non-images
	Width  int
	Height int

	// Ordered variant descriptors, synthesized at migration time
	Variants []Variant

	CreatedAt  time.Time
	ModifiedAt time.Time
}

func (a Asset) IsImage() bool {
	return strings.HasPrefix(a.MimeType, "image/")
}

// VariantByName returns the named variant descriptor if the record has one
func (a Asset) VariantByName(name string) (Variant, bool) {
	for _, v := range a.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// RemotePath returns the path the remote service knows the asset by,
// falling back to the legacy field for old records
func (a Asset) RemotePath() string {
	if a.RelativePath != "" {
		return a.RelativePath
	}
	return a.AttachedFile
}

// Location reports where the authoritative copy of the asset lives.
// The returned value is either LocalLocation or RemoteLocation.
func (a Asset) Location() Location {
	if !a.Migrated {
		return LocalLocation{RelativePath: a.RelativePath}
	}
	return RemoteLocation{
		RelativePath: a.RemotePath(),
		IsImage:      a.IsImage(),
		Variants:     a.Variants,
	}
}
