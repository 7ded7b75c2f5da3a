package tracker

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// stateDim is the size of the state vector (cx, cy, w, h, vcx, vcy, vw, vh)
const stateDim = 8

// measureDim is the size of a measurement (cx, cy, w, h)
const measureDim = 4

// KalmanFilter is a constant velocity Kalman filter over the box center and
// size
type KalmanFilter struct {
	stdWeightPosition float64
	stdWeightVelocity float64
	motionMat         *mat.Dense
	updateMat         *mat.Dense
}

// NewKalmanFilter initializes and returns a new KalmanFilter.  The weights
// scale the process and measurement noise relative to the box size
func NewKalmanFilter(stdWeightPosition, stdWeightVelocity float64) *KalmanFilter {

	dt := 1.0

	// identity with dt coupling each position to its velocity
	motionMat := mat.NewDense(stateDim, stateDim, nil)

	for i := 0; i < stateDim; i++ {
		motionMat.Set(i, i, 1.0)
	}

	for i := 0; i < measureDim; i++ {
		motionMat.Set(i, measureDim+i, dt)
	}

	// updateMat selects the position components out of the state
	updateMat := mat.NewDense(measureDim, stateDim, nil)

	for i := 0; i < measureDim; i++ {
		updateMat.Set(i, i, 1.0)
	}

	return &KalmanFilter{
		stdWeightPosition: stdWeightPosition,
		stdWeightVelocity: stdWeightVelocity,
		motionMat:         motionMat,
		updateMat:         updateMat,
	}
}

// measurement converts a box into (cx, cy, w, h)
func measurement(box BoundingBox) []float64 {
	return []float64{
		float64(box.X) + float64(box.Width)/2,
		float64(box.Y) + float64(box.Height)/2,
		float64(box.Width),
		float64(box.Height),
	}
}

// sizeOf returns the larger side of the box described by v which has its
// width and height at index 2 and 3
func sizeOf(v mat.Vector) float64 {
	return math.Max(1, math.Max(v.AtVec(2), v.AtVec(3)))
}

// Initiate creates the state mean and covariance for a first measurement
func (kf *KalmanFilter) Initiate(meas []float64) (*mat.VecDense, *mat.SymDense) {

	mean := mat.NewVecDense(stateDim, nil)

	for i := 0; i < measureDim; i++ {
		mean.SetVec(i, meas[i])
	}

	size := sizeOf(mean)
	covariance := mat.NewSymDense(stateDim, nil)

	for i := 0; i < measureDim; i++ {
		pos := 2 * kf.stdWeightPosition * size
		vel := 10 * kf.stdWeightVelocity * size
		covariance.SetSym(i, i, pos*pos)
		covariance.SetSym(measureDim+i, measureDim+i, vel*vel)
	}

	return mean, covariance
}

// Predict advances the state mean and covariance by one frame
func (kf *KalmanFilter) Predict(mean *mat.VecDense, covariance *mat.SymDense) {

	size := sizeOf(mean)
	pos := kf.stdWeightPosition * size
	vel := kf.stdWeightVelocity * size

	var next mat.VecDense
	next.MulVec(kf.motionMat, mean)
	mean.CopyVec(&next)

	var tmp, nextCov mat.Dense
	tmp.Mul(kf.motionMat, covariance)
	nextCov.Mul(&tmp, kf.motionMat.T())

	for i := 0; i < stateDim; i++ {
		for j := i; j < stateDim; j++ {
			v := nextCov.At(i, j)

			if i == j {
				if i < measureDim {
					v += pos * pos
				} else {
					v += vel * vel
				}
			}

			covariance.SetSym(i, j, v)
		}
	}
}

// Update corrects the state mean and covariance with a measurement
func (kf *KalmanFilter) Update(mean *mat.VecDense, covariance *mat.SymDense,
	meas []float64) error {

	projectedMean, projectedCov := kf.project(mean, covariance)

	chol := mat.Cholesky{}

	if ok := chol.Factorize(projectedCov); !ok {
		return errors.New("failed to factorize projected covariance")
	}

	// solve S * K^T = H * P for the transposed kalman gain
	var pht mat.Dense
	pht.Mul(covariance, kf.updateMat.T())

	var gainT mat.Dense

	if err := chol.SolveTo(&gainT, pht.T()); err != nil {
		return fmt.Errorf("failed to compute kalman gain: %w", err)
	}

	innovation := mat.NewVecDense(measureDim, nil)

	for i := 0; i < measureDim; i++ {
		innovation.SetVec(i, meas[i]-projectedMean.AtVec(i))
	}

	var delta mat.VecDense
	delta.MulVec(gainT.T(), innovation)
	mean.AddVec(mean, &delta)

	// P = P - K * S * K^T
	var ks, ksk mat.Dense
	ks.Mul(gainT.T(), projectedCov)
	ksk.Mul(&ks, &gainT)

	for i := 0; i < stateDim; i++ {
		for j := i; j < stateDim; j++ {
			covariance.SetSym(i, j, covariance.At(i, j)-ksk.At(i, j))
		}
	}

	return nil
}

// project maps the state mean and covariance to measurement space
func (kf *KalmanFilter) project(mean *mat.VecDense,
	covariance *mat.SymDense) (*mat.VecDense, *mat.SymDense) {

	noise := kf.stdWeightPosition * sizeOf(mean)

	projectedMean := mat.NewVecDense(measureDim, nil)
	projectedMean.MulVec(kf.updateMat, mean)

	var tmp, hph mat.Dense
	tmp.Mul(kf.updateMat, covariance)
	hph.Mul(&tmp, kf.updateMat.T())

	projectedCov := mat.NewSymDense(measureDim, nil)

	for i := 0; i < measureDim; i++ {
		for j := i; j < measureDim; j++ {
			v := hph.At(i, j)

			if i == j {
				v += noise * noise
			}

			projectedCov.SetSym(i, j, v)
		}
	}

	return projectedMean, projectedCov
}
