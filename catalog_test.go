package pixfilter

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultCatalogNames(t *testing.T) {
	want := []string{"blur", "edge", "grayscale", "invert", "sharpen", "smoothen"}
	if diff := cmp.Diff(want, DefaultCatalog().Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultCatalogEntries(t *testing.T) {
	tests := []struct {
		name      string
		kind      Kind
		transform Transform
		kernel    Kernel
	}{
		{"sharpen", KindKernel, 0, Kernel{{0, -1, 0}, {-1, 5, -1}, {0, -1, 0}}},
		{"edge", KindKernel, 0, Kernel{{-1, -1, -1}, {-1, 8, -1}, {-1, -1, -1}}},
		{"smoothen", KindKernel, 0, Kernel{{1.0 / 16, 2.0 / 16, 1.0 / 16}, {2.0 / 16, 4.0 / 16, 2.0 / 16}, {1.0 / 16, 2.0 / 16, 1.0 / 16}}},
		{"invert", KindTransform, Invert, Kernel{}},
		{"grayscale", KindTransform, Grayscale, Kernel{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, ok := DefaultCatalog().Lookup(tt.name)
			if !ok {
				t.Fatalf("Lookup(%q) not found", tt.name)
			}
			if spec.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", spec.Kind(), tt.kind)
			}
			switch tt.kind {
			case KindKernel:
				k, _ := spec.Kernel()
				if diff := cmp.Diff(tt.kernel, k); diff != "" {
					t.Errorf("kernel mismatch (-want +got):\n%s", diff)
				}
			case KindTransform:
				tr, _ := spec.Transform()
				if tr != tt.transform {
					t.Errorf("Transform() = %v, want %v", tr, tt.transform)
				}
			}
		})
	}
}

func TestDefaultCatalogBlurIsNormalized(t *testing.T) {
	spec, _ := DefaultCatalog().Lookup("blur")
	k, _ := spec.Kernel()
	if math.Abs(k.Sum()-1) > 1e-12 {
		t.Errorf("blur sum = %v, want 1", k.Sum())
	}
}

func TestCatalogLookupFoldsCase(t *testing.T) {
	for _, name := range []string{"Sharpen", "SHARPEN", "  sharpen ", "sharpen"} {
		if _, ok := DefaultCatalog().Lookup(name); !ok {
			t.Errorf("Lookup(%q) not found", name)
		}
	}
}

func TestCatalogLookupUnknown(t *testing.T) {
	if _, ok := DefaultCatalog().Lookup("emboss"); ok {
		t.Error("Lookup(emboss) found an entry in the default catalog")
	}
	_, err := DefaultCatalog().Resolve("emboss")
	if !errors.Is(err, ErrUnknownFilter) {
		t.Errorf("Resolve(emboss) error = %v, want ErrUnknownFilter", err)
	}
}

func TestCatalogLookupReturnsCopy(t *testing.T) {
	spec, _ := DefaultCatalog().Lookup("sharpen")
	k, _ := spec.Kernel()
	k[1][1] = 100

	again, _ := DefaultCatalog().Lookup("sharpen")
	k2, _ := again.Kernel()
	if k2[1][1] != 5 {
		t.Errorf("catalog entry mutated through a copy: center = %v", k2[1][1])
	}
}

func TestCatalogWith(t *testing.T) {
	emboss := KernelSpec(Kernel{{-2, -1, 0}, {-1, 1, 1}, {0, 1, 2}})

	ext, err := DefaultCatalog().With(map[string]Spec{"Emboss": emboss})
	if err != nil {
		t.Fatalf("With() = %v", err)
	}
	if ext.Len() != DefaultCatalog().Len()+1 {
		t.Errorf("Len() = %d, want %d", ext.Len(), DefaultCatalog().Len()+1)
	}
	if _, ok := ext.Lookup("emboss"); !ok {
		t.Error("extended catalog missing emboss")
	}
	if _, ok := DefaultCatalog().Lookup("emboss"); ok {
		t.Error("With() modified the receiver")
	}
}

func TestCatalogWithRejects(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]Spec
		want    error
	}{
		{"shadows built-in", map[string]Spec{"BLUR": KernelSpec(BlurKernel)}, ErrDuplicateFilter},
		{"empty name", map[string]Spec{"  ": KernelSpec(BlurKernel)}, ErrInvalidName},
		{"zero spec", map[string]Spec{"nothing": {}}, ErrInvalidSpec},
		{"nan weight", map[string]Spec{"bad": KernelSpec(Kernel{{math.NaN()}})}, ErrInvalidSpec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DefaultCatalog().With(tt.entries)
			if !errors.Is(err, tt.want) {
				t.Errorf("With() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewCatalogFoldCollision(t *testing.T) {
	_, err := NewCatalog(map[string]Spec{
		"Edge": KernelSpec(EdgeKernel),
		"edge": KernelSpec(EdgeKernel),
	})
	if !errors.Is(err, ErrDuplicateFilter) {
		t.Errorf("NewCatalog() error = %v, want ErrDuplicateFilter", err)
	}
}

func TestCatalogConcurrentReads(t *testing.T) {
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, name := range DefaultCatalog().Names() {
				if _, ok := DefaultCatalog().Lookup(name); !ok {
					t.Errorf("Lookup(%q) failed", name)
				}
			}
		}()
	}
	wg.Wait()
}
