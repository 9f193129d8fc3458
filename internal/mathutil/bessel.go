// Package mathutil holds the small numeric helpers shared by the filter,
// detector and spectrum packages.
package mathutil

import "math"

// BesselI0 computes the modified Bessel function of the first kind, order zero.
// It is only needed for Kaiser window generation.
//
// Polynomial approximations from Abramowitz & Stegun are used on both sides
// of |x| = 3.75; relative error is below 2e-7, far more than a spectral
// window needs.
func BesselI0(x float64) float64 {
	ax := math.Abs(x)

	if ax < besselSmallArgThreshold {
		t := x / besselSmallArgThreshold
		t *= t
		return 1.0 + t*(besselI0Coeff1+t*(besselI0Coeff2+t*(besselI0Coeff3+
			t*(besselI0Coeff4+t*(besselI0Coeff5+t*besselI0Coeff6)))))
	}

	t := besselSmallArgThreshold / ax
	poly := besselI0AsympCoeff0 + t*(besselI0AsympCoeff1+t*(besselI0AsympCoeff2+
		t*(besselI0AsympCoeff3+t*(besselI0AsympCoeff4+t*(besselI0AsympCoeff5+
			t*(besselI0AsympCoeff6+t*(besselI0AsympCoeff7+t*besselI0AsympCoeff8)))))))

	return poly * math.Exp(ax) / math.Sqrt(ax)
}

// KaiserBeta returns the Kaiser window β giving roughly the requested
// sidelobe attenuation in dB.
//
//   - att > 50 dB:        β = 0.1102 * (att - 8.7)
//   - 21 dB < att ≤ 50 dB: β = 0.5842 * (att - 21)^0.4 + 0.07886 * (att - 21)
//   - att ≤ 21 dB:        β = 0 (rectangular)
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserAttHigh:
		return kaiserBetaHighCoeff * (attenuation - kaiserBetaHighOffset)
	case attenuation > kaiserAttMedium:
		d := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(d, kaiserBetaMediumPower) + kaiserBetaMediumCoeff2*d
	default:
		return 0
	}
}
