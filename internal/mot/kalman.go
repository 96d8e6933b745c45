package mot

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidObservation is returned by the estimator's correction step when
// the observed box is malformed. The track's state is left unchanged; the
// caller treats the frame as a miss.
var ErrInvalidObservation = errors.New("mot: invalid observation box")

// Dimensions of the constant-velocity state space. The state vector is
// [cx, cy, a, h, vcx, vcy, va, vh] where a is the aspect ratio w/h.
// The observation model maps a box directly onto the first four components.
const (
	stateDim = 8
	obsDim   = 4
)

// minNoiseHeight floors the height used for noise scaling so that degenerate
// boxes still produce a positive-definite covariance.
const minNoiseHeight = 1e-3

// kalmanFilter implements the per-track constant-velocity motion model.
// Process and observation noise are diagonal, scaled relative to the track's
// own height so that uncertainty grows with object size; this keeps the
// filter stable across objects of widely varying scale in the same frame.
//
// One filter instance is shared by all tracks of a tracker: the per-track
// state lives in the track's mean vector and covariance matrix, and every
// method either returns fresh state or mutates the state it is handed.
type kalmanFilter struct {
	stdWeightPos float64 // Position noise as a fraction of box height
	stdWeightVel float64 // Velocity noise as a fraction of box height

	motion *mat.Dense // 8x8 state transition matrix F (dt = 1 frame)
}

// newKalmanFilter builds a filter with the given noise scale factors.
// The conventional weights are 1/20 for position and 1/160 for velocity.
func newKalmanFilter(stdWeightPos, stdWeightVel float64) *kalmanFilter {
	f := mat.NewDense(stateDim, stateDim, nil)
	for i := 0; i < stateDim; i++ {
		f.Set(i, i, 1)
	}
	for i := 0; i < obsDim; i++ {
		f.Set(i, i+obsDim, 1) // dt = 1
	}
	return &kalmanFilter{
		stdWeightPos: stdWeightPos,
		stdWeightVel: stdWeightVel,
		motion:       f,
	}
}

// boxToObservation converts a box to the [cx, cy, a, h] observation vector.
func boxToObservation(b Box) [obsDim]float64 {
	h := b.H
	a := 0.0
	if h > 0 {
		a = b.W / h
	}
	return [obsDim]float64{b.CenterX(), b.CenterY(), a, h}
}

// observationToBox converts a [cx, cy, a, h] state prefix back to a box.
func observationToBox(cx, cy, a, h float64) Box {
	w := a * h
	return Box{X: cx - w/2, Y: cy - h/2, W: w, H: h}
}

// initiate creates the mean and covariance for a brand-new track from its
// first observed box. Velocities start at zero with high uncertainty.
func (kf *kalmanFilter) initiate(b Box) (*mat.VecDense, *mat.Dense) {
	z := boxToObservation(b)
	mean := mat.NewVecDense(stateDim, nil)
	for i := 0; i < obsDim; i++ {
		mean.SetVec(i, z[i])
	}

	h := math.Max(z[3], minNoiseHeight)
	std := [stateDim]float64{
		2 * kf.stdWeightPos * h,
		2 * kf.stdWeightPos * h,
		1e-2,
		2 * kf.stdWeightPos * h,
		10 * kf.stdWeightVel * h,
		10 * kf.stdWeightVel * h,
		1e-5,
		10 * kf.stdWeightVel * h,
	}
	cov := mat.NewDense(stateDim, stateDim, nil)
	for i, s := range std {
		cov.Set(i, i, s*s)
	}
	return mean, cov
}

// predict advances the state one frame under the constant-velocity model and
// inflates the covariance by process noise. It mutates mean and cov in place
// and always succeeds given a valid state.
func (kf *kalmanFilter) predict(mean *mat.VecDense, cov *mat.Dense) {
	var next mat.VecDense
	next.MulVec(kf.motion, mean)
	mean.CopyVec(&next)

	var fp mat.Dense
	fp.Mul(kf.motion, cov)
	cov.Mul(&fp, kf.motion.T())

	h := math.Max(mean.AtVec(3), minNoiseHeight)
	q := [stateDim]float64{
		kf.stdWeightPos * h,
		kf.stdWeightPos * h,
		1e-2,
		kf.stdWeightPos * h,
		kf.stdWeightVel * h,
		kf.stdWeightVel * h,
		1e-5,
		kf.stdWeightVel * h,
	}
	for i, s := range q {
		cov.Set(i, i, cov.At(i, i)+s*s)
	}
}

// innovationCovariance builds S = H·P·Hᵀ + R as a symmetric matrix. The
// observation matrix H selects the first four state components, so H·P·Hᵀ is
// simply the top-left 4x4 block of P.
func (kf *kalmanFilter) innovationCovariance(mean *mat.VecDense, cov *mat.Dense) *mat.SymDense {
	h := math.Max(mean.AtVec(3), minNoiseHeight)
	r := [obsDim]float64{
		kf.stdWeightPos * h,
		kf.stdWeightPos * h,
		1e-1,
		kf.stdWeightPos * h,
	}
	s := mat.NewSymDense(obsDim, nil)
	for i := 0; i < obsDim; i++ {
		for j := i; j < obsDim; j++ {
			// Average the off-diagonal pair so S is exactly symmetric even
			// if P has drifted by a rounding error.
			v := (cov.At(i, j) + cov.At(j, i)) / 2
			if i == j {
				v += r[i] * r[i]
			}
			s.SetSym(i, j, v)
		}
	}
	return s
}

// correct performs the standard Kalman update with an observed box, blending
// prediction and observation through the Kalman gain. A malformed box is
// rejected with ErrInvalidObservation and the state is left untouched.
func (kf *kalmanFilter) correct(mean *mat.VecDense, cov *mat.Dense, b Box) error {
	if !b.Valid() {
		return ErrInvalidObservation
	}

	z := boxToObservation(b)
	s := kf.innovationCovariance(mean, cov)

	var chol mat.Cholesky
	if ok := chol.Factorize(s); !ok {
		// Covariance collapsed to singular; skip the update rather than
		// propagate a garbage gain. Equivalent to a missed frame.
		return ErrInvalidObservation
	}

	// K = P·Hᵀ·S⁻¹. P·Hᵀ is the first four columns of P, so solve
	// S·Kᵀ = (P·Hᵀ)ᵀ and transpose.
	ph := cov.Slice(0, stateDim, 0, obsDim)
	var kt mat.Dense
	if err := chol.SolveTo(&kt, ph.T()); err != nil {
		return ErrInvalidObservation
	}
	var gain mat.Dense
	gain.CloneFrom(kt.T())

	// Innovation y = z − H·x.
	innov := mat.NewVecDense(obsDim, nil)
	for i := 0; i < obsDim; i++ {
		innov.SetVec(i, z[i]-mean.AtVec(i))
	}

	// x' = x + K·y
	var dx mat.VecDense
	dx.MulVec(&gain, innov)
	mean.AddVec(mean, &dx)

	// P' = P − K·S·Kᵀ (shrinks covariance, preserves symmetry)
	var ks, ksk mat.Dense
	ks.Mul(&gain, s)
	ksk.Mul(&ks, gain.T())
	cov.Sub(cov, &ksk)

	return nil
}

// stateBox returns the box implied by the current state estimate.
func stateBox(mean *mat.VecDense) Box {
	return observationToBox(mean.AtVec(0), mean.AtVec(1), mean.AtVec(2), mean.AtVec(3))
}
