package downscale

import (
	"fmt"
	"strings"
)

// Method selects the resampling strategy. The set is fixed; each method is a
// pure function with the same shape contract but its own interpolation
// semantics and failure behaviour.
type Method int

const (
	// MethodGaussianSmooth applies an extra fixed-width blur, then expands by
	// nearest-neighbour replication. Output keeps a blocky structure smoothed
	// at the original resolution.
	MethodGaussianSmooth Method = iota
	// MethodBilinear expands with first-order interpolation between the four
	// nearest input samples. Continuous, never overshoots.
	MethodBilinear
	// MethodCubicSpline expands with third-order spline interpolation.
	// Smoother than bilinear; may overshoot near sharp gradients.
	MethodCubicSpline
	// MethodRegressionPlane fits a single least-squares plane to the whole
	// field and evaluates it on the denser lattice. A global trend surface:
	// all local structure is deliberately discarded.
	MethodRegressionPlane
)

var methodNames = map[Method]string{
	MethodGaussianSmooth:  "gaussian-smooth",
	MethodBilinear:        "bilinear",
	MethodCubicSpline:     "cubic-spline",
	MethodRegressionPlane: "regression-plane",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// Methods lists all resampling methods in display order.
func Methods() []Method {
	return []Method{MethodGaussianSmooth, MethodBilinear, MethodCubicSpline, MethodRegressionPlane}
}

// ParseMethod maps a config or API string to a Method. Matching is
// case-insensitive and tolerates underscores in place of hyphens.
func ParseMethod(s string) (Method, error) {
	normalised := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for m, name := range methodNames {
		if normalised == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown resampling method %q (valid: gaussian-smooth, bilinear, cubic-spline, regression-plane)", s)
}
