package scene

// AttributeKind tags which of the five surface behaviours an Attribute
// carries.
type AttributeKind int

const (
	Opaque AttributeKind = iota
	Mirror
	Transparent
	Refractive
	Luminous
)

// Attribute is the tagged variant describing how a surface interacts with
// a ray: Opaque(grad), Mirror(grad, abs), Transparent(grad, abs),
// Refractive(grad, abs, nIn, nOut), Luminous(grad, brightnessMult). Grad
// indexes into the owning Scene's gradient table by key; it is resolved to
// a *Gradient by Link.
type Attribute struct {
	Kind AttributeKind

	GradientKey string
	Gradient    *Gradient // resolved by Link

	// Abs is the fraction of incident tracer weight consumed at the
	// surface, in (0,1]. Used by Mirror, Transparent and Refractive.
	Abs float64

	// NIn/NOut are the refractive indices inside/outside the surface.
	// Used only by Refractive.
	NIn, NOut float64

	// BrightnessMult scales a Luminous surface's emitted contribution; it
	// is not an absorption fraction, but per the stricter weight rule it
	// still decrements the tracer's surviving weight by the same
	// 1-brightnessMult factor (see DESIGN.md).
	BrightnessMult float64
}

// NewOpaque builds an Opaque attribute referencing the gradient keyed
// gradientKey.
func NewOpaque(gradientKey string) Attribute {
	return Attribute{Kind: Opaque, GradientKey: gradientKey}
}

// NewMirror builds a Mirror attribute. Panics if abs is outside (0,1].
func NewMirror(gradientKey string, abs float64) Attribute {
	requireAbsFraction(abs)
	return Attribute{Kind: Mirror, GradientKey: gradientKey, Abs: abs}
}

// NewTransparent builds a Transparent attribute. Panics if abs is outside
// (0,1].
func NewTransparent(gradientKey string, abs float64) Attribute {
	requireAbsFraction(abs)
	return Attribute{Kind: Transparent, GradientKey: gradientKey, Abs: abs}
}

// NewRefractive builds a Refractive attribute. Panics if abs is outside
// (0,1] or either refractive index is non-positive.
func NewRefractive(gradientKey string, abs, nIn, nOut float64) Attribute {
	requireAbsFraction(abs)
	if nIn <= 0 || nOut <= 0 {
		panic("scene: refractive indices must be positive")
	}
	return Attribute{Kind: Refractive, GradientKey: gradientKey, Abs: abs, NIn: nIn, NOut: nOut}
}

// NewLuminous builds a Luminous attribute. Panics if brightnessMult is
// outside (0,1], matching the same absorption-fraction-shaped constraint
// the stricter weight-decrement rule applies to it.
func NewLuminous(gradientKey string, brightnessMult float64) Attribute {
	requireAbsFraction(brightnessMult)
	return Attribute{Kind: Luminous, GradientKey: gradientKey, BrightnessMult: brightnessMult}
}

func requireAbsFraction(abs float64) {
	if abs <= 0 || abs > 1 {
		panic("scene: absorption fraction must be in (0,1]")
	}
}
