package preset

import (
	"fmt"
	"strconv"
	"strings"
)

// Size is a host-declared named rendition box, e.g. medium = 300x200.
type Size struct {
	Name   string
	Width  int
	Height int

	// Crop sizes render the box exactly; soft sizes scale to fit it
	Crop bool
}

// Realize computes the concrete pixel dimensions this size produces for an
// original of the given dimensions. Crop boxes come back as declared; soft
// boxes shrink the original proportionally to fit (never enlarge).
// A zero side of the box means unconstrained on that axis.
func (s Size) Realize(origWidth, origHeight int) (int, int) {
	if s.Crop || origWidth <= 0 || origHeight <= 0 {
		return s.Width, s.Height
	}

	ratio := 1.0
	if s.Width > 0 && origWidth > s.Width {
		ratio = min(ratio, float64(s.Width)/float64(origWidth))
	}
	if s.Height > 0 && origHeight > s.Height {
		ratio = min(ratio, float64(s.Height)/float64(origHeight))
	}

	width := int(float64(origWidth)*ratio + 0.5)
	height := int(float64(origHeight)*ratio + 0.5)
	return width, height
}

// Registry holds the host's named size presets in declaration order.
// Read-only after construction; safe for concurrent use.
type Registry struct {
	sizes  []Size
	byName map[string]Size
}

func NewRegistry(sizes ...Size) *Registry {
	r := &Registry{
		byName: make(map[string]Size, len(sizes)),
	}

	for _, s := range sizes {
		if _, exists := r.byName[s.Name]; exists {
			continue
		}
		r.sizes = append(r.sizes, s)
		r.byName[s.Name] = s
	}

	return r
}

func (r *Registry) Get(name string) (Size, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// All returns the presets in declaration order
func (r *Registry) All() []Size {
	out := make([]Size, len(r.sizes))
	copy(out, r.sizes)
	return out
}

// Parse builds a registry from a flag-friendly spec like
// "thumbnail=150x150:crop,medium=300x200,large=1024x0"
func Parse(spec string) (*Registry, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return NewRegistry(), nil
	}

	var sizes []Size
	for _, item := range strings.Split(spec, ",") {
		size, err := parseItem(strings.TrimSpace(item))
		if err != nil {
			return nil, err
		}
		sizes = append(sizes, size)
	}

	return NewRegistry(sizes...), nil
}

func parseItem(item string) (Size, error) {
	var size Size

	name, dims, found := strings.Cut(item, "=")
	if !found || name == "" {
		return size, fmt.Errorf("preset %q: want name=WxH[:crop]", item)
	}

	dims, opt, _ := strings.Cut(dims, ":")
	switch opt {
	case "":
	case "crop":
		size.Crop = true
	default:
		return size, fmt.Errorf("preset %q: unknown option %q", item, opt)
	}

	w, h, found := strings.Cut(dims, "x")
	if !found {
		return size, fmt.Errorf("preset %q: want name=WxH[:crop]", item)
	}

	width, err := strconv.Atoi(w)
	if err != nil || width < 0 {
		return size, fmt.Errorf("preset %q: bad width %q", item, w)
	}
	height, err := strconv.Atoi(h)
	if err != nil || height < 0 {
		return size, fmt.Errorf("preset %q: bad height %q", item, h)
	}

	size.Name = name
	size.Width = width
	size.Height = height
	return size, nil
}
