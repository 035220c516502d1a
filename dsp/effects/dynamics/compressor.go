// Package dynamics provides the feed-forward gain-reduction stage behind
// the graph's Compressor node kind: an envelope follower feeding a
// log2-domain soft-knee gain computer.
package dynamics

import (
	"fmt"
	"math"
)

const (
	defaultThresholdDB = -20.0
	defaultRatio       = 4.0
	defaultKneeDB      = 6.0
	defaultAttackMs    = 10.0
	defaultReleaseMs   = 100.0

	minRatio     = 1.0
	maxRatio     = 100.0
	minAttackMs  = 0.1
	maxAttackMs  = 1000.0
	minReleaseMs = 1.0
	maxReleaseMs = 5000.0
	minKneeDB    = 0.0
	maxKneeDB    = 24.0

	// log2Of10Div20 converts a decibel value into the log2 domain the
	// gain computer works in: log2(10)/20.
	log2Of10Div20 = 0.166096404744
)

// Compressor is a mono soft-knee feed-forward compressor. Gain reduction
// is computed in the log2 domain, which turns the knee's quadratic
// blend into a couple of multiplies instead of a call to math.Pow per
// sample. It holds no makeup-gain or metering state — those belong to
// whichever node wraps it, if it wants them.
//
// Not safe for concurrent use; parameter changes must happen outside
// the render callback that calls ProcessInPlace.
type Compressor struct {
	thresholdDB float64
	ratio       float64
	kneeDB      float64
	attackMs    float64
	releaseMs   float64
	sampleRate  float64

	envelope float64

	attackCoeff      float64
	releaseCoeff     float64
	thresholdLog2    float64
	kneeWidthLog2    float64
	invKneeWidthLog2 float64
}

// NewCompressor creates a compressor with typical musical-compression
// defaults (-20 dB threshold, 4:1 ratio, 6 dB knee, 10 ms attack,
// 100 ms release) at sampleRate, which must be positive and finite.
func NewCompressor(sampleRate float64) (*Compressor, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("compressor sample rate must be positive and finite: %f", sampleRate)
	}

	c := &Compressor{
		thresholdDB: defaultThresholdDB,
		ratio:       defaultRatio,
		kneeDB:      defaultKneeDB,
		attackMs:    defaultAttackMs,
		releaseMs:   defaultReleaseMs,
		sampleRate:  sampleRate,
	}
	c.updateGainComputer()
	c.updateTimeConstants()
	return c, nil
}

// SetThreshold sets the compression threshold in dB. Signals whose
// envelope exceeds this level get compressed by Ratio.
func (c *Compressor) SetThreshold(dB float64) error {
	if math.IsNaN(dB) || math.IsInf(dB, 0) {
		return fmt.Errorf("compressor threshold must be finite: %f", dB)
	}
	c.thresholdDB = dB
	c.updateGainComputer()
	return nil
}

// SetRatio sets the compression ratio, in [1, 100]. 1.0 is a no-op;
// 100.0 approaches limiting.
func (c *Compressor) SetRatio(ratio float64) error {
	if ratio < minRatio || ratio > maxRatio || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return fmt.Errorf("compressor ratio must be in [%f, %f]: %f", minRatio, maxRatio, ratio)
	}
	c.ratio = ratio
	c.updateGainComputer()
	return nil
}

// SetKnee sets the soft-knee width in dB, in [0, 24]. 0 is a hard knee.
func (c *Compressor) SetKnee(kneeDB float64) error {
	if kneeDB < minKneeDB || kneeDB > maxKneeDB || math.IsNaN(kneeDB) || math.IsInf(kneeDB, 0) {
		return fmt.Errorf("compressor knee must be in [%f, %f]: %f", minKneeDB, maxKneeDB, kneeDB)
	}
	c.kneeDB = kneeDB
	c.updateGainComputer()
	return nil
}

// SetAttack sets the envelope attack time in ms, in [0.1, 1000].
func (c *Compressor) SetAttack(ms float64) error {
	if ms < minAttackMs || ms > maxAttackMs || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return fmt.Errorf("compressor attack must be in [%f, %f]: %f", minAttackMs, maxAttackMs, ms)
	}
	c.attackMs = ms
	c.updateTimeConstants()
	return nil
}

// SetRelease sets the envelope release time in ms, in [1, 5000].
func (c *Compressor) SetRelease(ms float64) error {
	if ms < minReleaseMs || ms > maxReleaseMs || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return fmt.Errorf("compressor release must be in [%f, %f]: %f", minReleaseMs, maxReleaseMs, ms)
	}
	c.releaseMs = ms
	c.updateTimeConstants()
	return nil
}

// ProcessInPlace runs the envelope follower and gain computer over buf,
// overwriting each sample with its compressed value.
func (c *Compressor) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		level := math.Abs(x)
		if level > c.envelope {
			c.envelope += (level - c.envelope) * c.attackCoeff
		} else {
			c.envelope = level + (c.envelope-level)*c.releaseCoeff
		}
		buf[i] = x * c.gainForLevel(c.envelope)
	}
}

func (c *Compressor) updateTimeConstants() {
	c.attackCoeff = 1.0 - math.Exp(-math.Ln2/(c.attackMs*0.001*c.sampleRate))
	c.releaseCoeff = math.Exp(-math.Ln2 / (c.releaseMs * 0.001 * c.sampleRate))
}

// updateGainComputer recalculates the threshold and knee-width caches
// the log2-domain gain formula reads on every sample.
func (c *Compressor) updateGainComputer() {
	c.thresholdLog2 = c.thresholdDB * log2Of10Div20
	c.kneeWidthLog2 = c.kneeDB * log2Of10Div20
	if c.kneeDB > 0 {
		c.invKneeWidthLog2 = 1.0 / c.kneeWidthLog2
	} else {
		c.invKneeWidthLog2 = 0
	}
}

// gainForLevel maps an envelope level to a linear gain multiplier using
// the quadratic soft-knee blend around the threshold.
func (c *Compressor) gainForLevel(level float64) float64 {
	if level <= 0 {
		return 1.0
	}

	overshoot := math.Log2(level) - c.thresholdLog2
	compressionFactor := 1.0 - 1.0/c.ratio

	if c.kneeDB <= 0 {
		if overshoot <= 0 {
			return 1.0
		}
		return math.Exp2(-overshoot * compressionFactor)
	}

	halfWidth := c.kneeWidthLog2 * 0.5
	var effective float64
	switch {
	case overshoot < -halfWidth:
		return 1.0
	case overshoot > halfWidth:
		effective = overshoot
	default:
		blended := overshoot + halfWidth
		effective = blended * blended * 0.5 * c.invKneeWidthLog2
	}

	return math.Exp2(-effective * compressionFactor)
}
