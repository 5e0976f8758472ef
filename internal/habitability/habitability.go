// Package habitability derives a mussel survivability factor from water
// chemistry. The factor is a probability multiplier in [0,1]: settlement
// odds scale with it, and a factor of exactly 0 means mussels can never
// establish at the site.
package habitability

import "github.com/rotisserie/eris"

// Reproduction thresholds below which mussels cannot establish.
const (
	DefaultPHThreshold      = 7.4
	DefaultCalciumThreshold = 28.0 // mg/L
)

// ErrInvalidAttribute reports a physically impossible chemistry reading
// (negative pH or calcium). Callers exclude the single site rather than
// aborting the run.
var ErrInvalidAttribute = eris.New("habitability: negative attribute reading")

// Evaluate computes the survivability factor for a site from its optional
// pH and calcium readings. ok is false when neither reading is present, in
// which case the site has insufficient data and must be excluded.
//
// With a single reading, the factor is 0 below the threshold and
// asymptotically approaches 1 above it. A negative single reading is an
// input error. With both readings present the two factors multiply, and an
// out-of-range reading contributes a factor of 1 instead of erroring, so a
// partial extreme reading does not discard an otherwise usable site.
func Evaluate(pH, calcium *float64, pHThreshold, calciumThreshold float64) (factor float64, ok bool, err error) {
	switch {
	case pH == nil && calcium == nil:
		return 0, false, nil

	case pH == nil:
		f, err := calciumFactor(*calcium, calciumThreshold, false)
		if err != nil {
			return 0, false, err
		}
		return f, true, nil

	case calcium == nil:
		f, err := pHFactor(*pH, pHThreshold, false)
		if err != nil {
			return 0, false, err
		}
		return f, true, nil

	default:
		cf, _ := calciumFactor(*calcium, calciumThreshold, true)
		pf, _ := pHFactor(*pH, pHThreshold, true)
		return cf * pf, true, nil
	}
}

func calciumFactor(calcium, threshold float64, tolerant bool) (float64, error) {
	switch {
	case calcium < 0:
		if tolerant {
			return 1, nil
		}
		return 0, eris.Wrapf(ErrInvalidAttribute, "calcium %g", calcium)
	case calcium < threshold:
		return 0, nil
	default:
		return 1 - 1/(calcium-threshold+1), nil
	}
}

func pHFactor(pH, threshold float64, tolerant bool) (float64, error) {
	switch {
	case pH < 0:
		if tolerant {
			return 1, nil
		}
		return 0, eris.Wrapf(ErrInvalidAttribute, "pH %g", pH)
	case pH < threshold:
		return 0, nil
	default:
		return 1 - 1/(10*(pH-threshold)+1), nil
	}
}
