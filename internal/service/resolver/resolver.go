package resolver

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/mediakit/offload/internal/apperrors"
	"github.com/mediakit/offload/internal/models"
	"github.com/mediakit/offload/internal/service/preset"
)

// Path segments of the media service URL space
const (
	segmentImage    = "i"
	segmentDownload = "dl"
	variantFull     = "full"
)

type Config struct {
	// Public base URL of the media service, e.g. https://media.example
	MediaBaseURL string

	// Base URL the host serves not-yet-migrated uploads from,
	// e.g. https://host.example/uploads
	LocalBaseURL string
}

// Resolver turns an asset record plus a requested variant into a concrete
// URL. Pure: no I/O, no locks, safe on the rendering hot path.
type Resolver struct {
	media   *url.URL
	local   *url.URL
	presets *preset.Registry
}

func New(cfg Config, presets *preset.Registry) (*Resolver, error) {
	media, err := url.Parse(strings.TrimRight(cfg.MediaBaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("bad media base url %q: %w", cfg.MediaBaseURL, err)
	}

	local, err := url.Parse(strings.TrimRight(cfg.LocalBaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("bad local base url %q: %w", cfg.LocalBaseURL, err)
	}

	if presets == nil {
		presets = preset.NewRegistry()
	}

	return &Resolver{media: media, local: local, presets: presets}, nil
}

// Request is the variant a caller wants rendered. Zero value means the
// canonical full-size rendition.
type Request struct {
	Width  int
	Height int
}

// RequestForPreset expands a host-registered preset name into a concrete
// request using the asset's recorded variant when available, falling back
// to the registry box.
func (r *Resolver) RequestForPreset(asset models.Asset, name string) (Request, error) {
	if v, ok := asset.VariantByName(name); ok {
		return Request{Width: v.Width, Height: v.Height}, nil
	}

	if s, ok := r.presets.Get(name); ok {
		width, height := s.Realize(asset.Width, asset.Height)
		return Request{Width: width, Height: height}, nil
	}

	return Request{}, fmt.Errorf("%q: %w", name, apperrors.ErrPresetNotFound)
}

// Resolve returns the URL to render the asset at the requested variant.
// Never fails: an asset that is not migrated resolves to its local URL
// exactly as the host would serve it.
func (r *Resolver) Resolve(asset models.Asset, req Request) string {
	switch loc := asset.Location().(type) {
	case models.RemoteLocation:
		if !loc.IsImage {
			return r.remoteURL(segmentDownload, "", loc.RelativePath)
		}

		transform := transformSegment(req)
		if transform == "" {
			// Empty transform is the full variant, never an empty segment
			return r.remoteURL(segmentImage, variantFull, loc.RelativePath)
		}
		return r.remoteURL(segmentImage, transform, loc.RelativePath)

	default:
		return r.localURL(asset.RelativePath)
	}
}

// PrefetchHost returns the media host in the protocol-relative form hosts
// put into dns-prefetch and preconnect hints
func (r *Resolver) PrefetchHost() string {
	if r.media.Host == "" {
		return ""
	}
	return "//" + r.media.Host
}

func (r *Resolver) remoteURL(segment string, variant string, relativePath string) string {
	u := *r.media
	u.Path = path.Join(u.Path, segment, variant, relativePath)
	return u.String()
}

func (r *Resolver) localURL(relativePath string) string {
	u := *r.local
	u.Path = path.Join(u.Path, relativePath)
	return u.String()
}

// transformSegment renders the on-the-fly transform descriptor that takes
// the place of "full" in the URL path. Parameters keep width-then-height
// order; an empty request yields an empty string.
func transformSegment(req Request) string {
	parts := make([]string, 0, 2)
	if req.Width > 0 {
		parts = append(parts, "width="+strconv.Itoa(req.Width))
	}
	if req.Height > 0 {
		parts = append(parts, "height="+strconv.Itoa(req.Height))
	}

	return strings.Join(parts, "&")
}
