package pixfilter

import (
	"fmt"
	"math"
)

// Kind identifies which variant of a Spec is active.
type Kind uint8

const (
	// KindInvalid is the zero Spec. Apply rejects it.
	KindInvalid Kind = iota

	// KindTransform selects a named pointwise transform.
	KindTransform

	// KindKernel selects a 3x3 convolution.
	KindKernel
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindTransform:
		return "transform"
	case KindKernel:
		return "kernel"
	default:
		return "invalid"
	}
}

// Transform is a filter defined by a fixed per-pixel algorithm.
type Transform uint8

const (
	// Invert replaces every sample s with 255-s.
	Invert Transform = iota + 1

	// Grayscale collapses RGB to one channel using ITU-R BT.601 weights.
	Grayscale
)

// String returns the catalog name of the transform.
func (t Transform) String() string {
	switch t {
	case Invert:
		return "invert"
	case Grayscale:
		return "grayscale"
	default:
		return fmt.Sprintf("Transform(%d)", uint8(t))
	}
}

// IsValid returns true if t is a known transform.
func (t Transform) IsValid() bool {
	return t == Invert || t == Grayscale
}

// Kernel is a 3x3 matrix of weights in row-major order: Kernel[row][col].
// Row 0 weighs the neighbor above the center pixel, column 0 the one to its left.
type Kernel [3][3]float64

// Sum returns the sum of all weights.
func (k Kernel) Sum() float64 {
	var s float64
	for ky := range 3 {
		for kx := range 3 {
			s += k[ky][kx]
		}
	}
	return s
}

// Scale returns the kernel with every weight multiplied by f.
func (k Kernel) Scale(f float64) Kernel {
	for ky := range 3 {
		for kx := range 3 {
			k[ky][kx] *= f
		}
	}
	return k
}

// Spec selects one filter: either a named Transform or a Kernel.
// Exactly one variant is active, reported by Kind. Spec is a value type;
// copying it copies the kernel, so a Spec cannot change under a running Apply.
type Spec struct {
	kind      Kind
	transform Transform
	kernel    Kernel
}

// TransformSpec returns a Spec for a named transform.
func TransformSpec(t Transform) Spec {
	return Spec{kind: KindTransform, transform: t}
}

// KernelSpec returns a Spec for a 3x3 convolution.
func KernelSpec(k Kernel) Spec {
	return Spec{kind: KindKernel, kernel: k}
}

// Kind returns the active variant.
func (s Spec) Kind() Kind {
	return s.kind
}

// Transform returns the named transform. ok is false unless Kind is KindTransform.
func (s Spec) Transform() (t Transform, ok bool) {
	if s.kind != KindTransform {
		return 0, false
	}
	return s.transform, true
}

// Kernel returns the convolution weights. ok is false unless Kind is KindKernel.
func (s Spec) Kernel() (k Kernel, ok bool) {
	if s.kind != KindKernel {
		return Kernel{}, false
	}
	return s.kernel, true
}

// Validate reports whether the spec can be applied.
func (s Spec) Validate() error {
	switch s.kind {
	case KindTransform:
		if !s.transform.IsValid() {
			return fmt.Errorf("%w: unknown transform %d", ErrInvalidSpec, s.transform)
		}
		return nil
	case KindKernel:
		for ky := range 3 {
			for kx := range 3 {
				if w := s.kernel[ky][kx]; math.IsNaN(w) || math.IsInf(w, 0) {
					return fmt.Errorf("%w: weight [%d][%d] is %v", ErrInvalidSpec, ky, kx, w)
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: no variant set", ErrInvalidSpec)
	}
}

// OutputChannels returns the channel depth Apply produces for an RGB input.
func (s Spec) OutputChannels() int {
	if s.kind == KindTransform && s.transform == Grayscale {
		return Gray
	}
	return RGB
}

// String returns a short description of the spec.
func (s Spec) String() string {
	switch s.kind {
	case KindTransform:
		return s.transform.String()
	case KindKernel:
		return fmt.Sprintf("kernel%v", s.kernel)
	default:
		return "invalid"
	}
}
