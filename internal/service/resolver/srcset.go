package resolver

import (
	"github.com/mediakit/offload/internal/models"
)

// Source is one srcset candidate: the URL to fetch and the width descriptor
// the host writes next to it.
type Source struct {
	URL   string `json:"url"`
	Width int    `json:"width"`
}

// MatchSource rewrites a single srcset candidate. The candidate is matched
// against the recorded variants by exact pixel width plus an aspect-ratio
// check against the requested render size; candidates with no matching
// variant are left to the host's default URL (ok = false).
func (r *Resolver) MatchSource(asset models.Asset, candidateWidth int, renderWidth int, renderHeight int) (Source, bool) {
	loc, ok := asset.Location().(models.RemoteLocation)
	if !ok || !loc.IsImage {
		return Source{}, false
	}

	for _, v := range loc.Variants {
		if v.Width != candidateWidth {
			continue
		}
		if !matchesRatio(v.Width, v.Height, renderWidth, renderHeight) {
			continue
		}

		return Source{
			URL:   r.Resolve(asset, Request{Width: v.Width, Height: v.Height}),
			Width: v.Width,
		}, true
	}

	return Source{}, false
}

// Sources reconstructs the full srcset for an asset rendered at the given
// size: one source per distinct variant width whose ratio matches.
func (r *Resolver) Sources(asset models.Asset, renderWidth int, renderHeight int) []Source {
	loc, ok := asset.Location().(models.RemoteLocation)
	if !ok || !loc.IsImage {
		return nil
	}

	var sources []Source
	seen := make(map[int]bool, len(loc.Variants))

	for _, v := range loc.Variants {
		if v.Width <= 0 || seen[v.Width] {
			continue
		}
		if !matchesRatio(v.Width, v.Height, renderWidth, renderHeight) {
			continue
		}

		seen[v.Width] = true
		sources = append(sources, Source{
			URL:   r.Resolve(asset, Request{Width: v.Width, Height: v.Height}),
			Width: v.Width,
		})
	}

	return sources
}

// matchesRatio reports whether two sizes share an aspect ratio, tolerating
// one pixel of rounding when the source is scaled to the target width
func matchesRatio(sourceWidth, sourceHeight, targetWidth, targetHeight int) bool {
	if sourceWidth <= 0 || sourceHeight <= 0 || targetWidth <= 0 || targetHeight <= 0 {
		return false
	}

	expectedHeight := (sourceHeight*targetWidth + sourceWidth/2) / sourceWidth
	diff := expectedHeight - targetHeight
	if diff < 0 {
		diff = -diff
	}

	return diff <= 1
}
