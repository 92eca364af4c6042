package pixfilter

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Catalog errors.
var (
	// ErrUnknownFilter is returned when a name has no catalog entry.
	ErrUnknownFilter = errors.New("pixfilter: unknown filter")

	// ErrDuplicateFilter is returned when an extension reuses an existing name.
	ErrDuplicateFilter = errors.New("pixfilter: duplicate filter name")

	// ErrInvalidName is returned for an empty filter name.
	ErrInvalidName = errors.New("pixfilter: invalid filter name")
)

// Built-in kernels.
var (
	// SharpenKernel boosts the center against its 4-neighborhood.
	SharpenKernel = Kernel{
		{0, -1, 0},
		{-1, 5, -1},
		{0, -1, 0},
	}

	// BlurKernel is a 3x3 box blur.
	BlurKernel = Kernel{
		{1.0 / 9, 1.0 / 9, 1.0 / 9},
		{1.0 / 9, 1.0 / 9, 1.0 / 9},
		{1.0 / 9, 1.0 / 9, 1.0 / 9},
	}

	// SmoothenKernel is a 3x3 Gaussian approximation.
	SmoothenKernel = Kernel{
		{1.0 / 16, 2.0 / 16, 1.0 / 16},
		{2.0 / 16, 4.0 / 16, 2.0 / 16},
		{1.0 / 16, 2.0 / 16, 1.0 / 16},
	}

	// EdgeKernel is a Laplacian edge detector.
	EdgeKernel = Kernel{
		{-1, -1, -1},
		{-1, 8, -1},
		{-1, -1, -1},
	}
)

// Catalog is an immutable mapping from filter name to Spec.
//
// Names are matched after trimming surrounding space and Unicode case
// folding, so "Sharpen" and "sharpen" resolve to the same entry.
//
// Thread safety: a Catalog is never mutated after construction and is safe
// for concurrent use without synchronization.
type Catalog struct {
	entries map[string]Spec
}

var defaultCatalog = mustCatalog(map[string]Spec{
	"sharpen":   KernelSpec(SharpenKernel),
	"blur":      KernelSpec(BlurKernel),
	"smoothen":  KernelSpec(SmoothenKernel),
	"edge":      KernelSpec(EdgeKernel),
	"invert":    TransformSpec(Invert),
	"grayscale": TransformSpec(Grayscale),
})

// DefaultCatalog returns the built-in catalog: sharpen, blur, smoothen and
// edge kernels, plus the invert and grayscale transforms.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// NewCatalog builds a catalog from the given entries.
// Returns an error if a name is empty, two names fold to the same key,
// or a spec fails validation.
func NewCatalog(entries map[string]Spec) (*Catalog, error) {
	c := &Catalog{entries: make(map[string]Spec, len(entries))}
	if err := c.add(entries); err != nil {
		return nil, err
	}
	return c, nil
}

func mustCatalog(entries map[string]Spec) *Catalog {
	c, err := NewCatalog(entries)
	if err != nil {
		panic(err)
	}
	return c
}

// With returns a new catalog holding the receiver's entries plus extra.
// The receiver is not modified. Names already present are rejected with
// ErrDuplicateFilter.
func (c *Catalog) With(extra map[string]Spec) (*Catalog, error) {
	next := &Catalog{entries: make(map[string]Spec, len(c.entries)+len(extra))}
	for name, spec := range c.entries {
		next.entries[name] = spec
	}
	if err := next.add(extra); err != nil {
		return nil, err
	}
	return next, nil
}

// add inserts entries in sorted name order so that error reporting is stable.
func (c *Catalog) add(entries map[string]Spec) error {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		key := CanonicalName(name)
		if key == "" {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
		if _, exists := c.entries[key]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateFilter, name)
		}
		spec := entries[name]
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("filter %q: %w", name, err)
		}
		c.entries[key] = spec
	}
	return nil
}

// Lookup resolves a filter name. The returned Spec is a copy.
func (c *Catalog) Lookup(name string) (Spec, bool) {
	spec, ok := c.entries[CanonicalName(name)]
	return spec, ok
}

// Resolve is Lookup with an error that names the filter.
func (c *Catalog) Resolve(name string) (Spec, error) {
	spec, ok := c.Lookup(name)
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}
	return spec, nil
}

// Names returns all filter names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// CanonicalName returns the lookup key for a filter name.
func CanonicalName(name string) string {
	// cases.Caser keeps state, so a fresh one per call keeps this safe
	// for concurrent use.
	return cases.Fold().String(strings.TrimSpace(name))
}
