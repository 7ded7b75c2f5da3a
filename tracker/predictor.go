package tracker

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Predictor follows the boxes reported for the tracked object and estimates
// where the object has moved to once the tracker has lost it
type Predictor struct {
	kf         *KalmanFilter
	mean       *mat.VecDense
	covariance *mat.SymDense
}

// NewPredictor returns a Predictor using the ByteTrack noise weights
func NewPredictor() *Predictor {
	return &Predictor{
		kf: NewKalmanFilter(1.0/20, 1.0/160),
	}
}

// Reset clears the motion history, used when a new object region is selected
func (p *Predictor) Reset() {
	p.mean = nil
	p.covariance = nil
}

// Observe records the box the object was found at in the current frame
func (p *Predictor) Observe(box BoundingBox) error {

	if !box.Valid() {
		return nil
	}

	meas := measurement(box)

	if p.mean == nil {
		p.mean, p.covariance = p.kf.Initiate(meas)
		return nil
	}

	p.kf.Predict(p.mean, p.covariance)

	return p.kf.Update(p.mean, p.covariance, meas)
}

// Predict advances the motion model by one frame and returns the estimated
// box.  False is returned if nothing has been observed yet
func (p *Predictor) Predict() (BoundingBox, bool) {

	if p.mean == nil {
		return BoundingBox{}, false
	}

	p.kf.Predict(p.mean, p.covariance)

	w := math.Max(1, p.mean.AtVec(2))
	h := math.Max(1, p.mean.AtVec(3))

	return NewBoundingBox(
		int(math.Round(p.mean.AtVec(0)-w/2)),
		int(math.Round(p.mean.AtVec(1)-h/2)),
		int(math.Round(w)),
		int(math.Round(h)),
	), true
}
