package ffmerge

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ffmerge/ffmerge/ffxml"
)

// Unit conversions applied to the fitted epsilon and sigma.
const (
	epsilonConversion = 57.65243631675715
	sigmaConversion   = 0.1
)

// Exponents of the volume ratio in the Tkatchenko-Scheffler style scaling.
const (
	c6Scale    = 1.2207
	c6Exponent = 0.48856
)

// pyFloat formats f in the shortest form that reads back to the same
// value, with a ".0" for integral values, so 162 is written "162.0".
func pyFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if a := math.Abs(f); a != 0 && (a < 1e-4 || a >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ParameterEval returns the ForceBalance expressions giving epsilon and
// sigma of an atom of category C with DDEC volume vol. free holds the free
// atom values of the element the atom was assigned by the charge analysis.
func ParameterEval(C Category, vol float64, free FreeParams) string {
	v, vf, bf := pyFloat(vol), pyFloat(free.VFree), pyFloat(free.BFree)
	parm := fmt.Sprintf("PARM['%sElement/%s']", C.Name, C.Param())
	eps := fmt.Sprintf("epsilon=(%s*(%s/%s)**%s)*%s/(128*%s**6)*%s",
		pyFloat(c6Scale), v, vf, pyFloat(c6Exponent), bf, parm, pyFloat(epsilonConversion))
	sig := fmt.Sprintf("sigma=2**(5/6)*(%s/%s)**(1/3)*%s*%s", v, vf, parm, pyFloat(sigmaConversion))
	return eps + ", " + sig
}

// annotation returns the ForceBalance attributes of a fitted atom.
func annotation(C Category, vol float64, free FreeParams) *ffxml.Fit {
	return &ffxml.Fit{
		Volume: pyFloat(vol),
		BFree:  pyFloat(free.BFree),
		VFree:  pyFloat(free.VFree),
		Eval:   ParameterEval(C, vol, free),
	}
}

// Sigma and Epsilon evaluate the fitting expressions for a given value of
// the category radius, in the units of the force field (nm, kJ/mol).
func Sigma(vol float64, free FreeParams, rfree float64) float64 {
	return math.Pow(2, 5.0/6.0) * math.Cbrt(vol/free.VFree) * rfree * sigmaConversion
}

func Epsilon(vol float64, free FreeParams, rfree float64) float64 {
	return c6Scale * math.Pow(vol/free.VFree, c6Exponent) * free.BFree / (128 * math.Pow(rfree, 6)) * epsilonConversion
}
