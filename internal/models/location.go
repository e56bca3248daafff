package models

// Location is a tagged value naming the authoritative home of an asset's
// bytes. Callers switch on the concrete type instead of consulting a flag
// next to loosely typed metadata.
type Location interface {
	isLocation()
}

// LocalLocation means the bytes still live in the host's upload directory
type LocalLocation struct {
	RelativePath string
}

// RemoteLocation means the bytes live on the media service and renditions
// are produced on demand from the recorded variants
type RemoteLocation struct {
	RelativePath string
	IsImage      bool
	Variants     []Variant
}

func (LocalLocation) isLocation()  {}
func (RemoteLocation) isLocation() {}
