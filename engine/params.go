package engine

import (
	"fmt"

	"github.com/wajuce/audiograph/kernel"
	"github.com/wajuce/audiograph/node"
	"github.com/wajuce/audiograph/timeline"
)

// ParamSet writes value immediately as the parameter's base value and
// seeds its timeline's last value, so a later scheduled call ramps
// from here rather than from a stale prior value.
func (e *Engine) ParamSet(id int32, param string, value float64) error {
	n := e.registry.Get(id)
	if n == nil {
		return fmt.Errorf("engine: no such node %d", id)
	}
	if tl, ok := n.ExistingTimeline(param); ok {
		tl.SetLastValue(value)
	}
	applyScalarParam(n, param, value)
	return nil
}

// ParamSetAtTime schedules an instantaneous value change at t.
func (e *Engine) ParamSetAtTime(id int32, param string, value, t float64) error {
	if err := e.ParamSet(id, param, value); err != nil {
		return err
	}
	n := e.registry.Get(id)
	n.Timeline(param, value).SetValueAt(value, t)
	return nil
}

// ParamLinearRamp schedules a linear ramp to value ending at tEnd.
func (e *Engine) ParamLinearRamp(id int32, param string, value, tEnd float64) error {
	n := e.registry.Get(id)
	if n == nil {
		return fmt.Errorf("engine: no such node %d", id)
	}
	n.Timeline(param, value).LinearRampTo(value, tEnd)
	return nil
}

// ParamExpRamp schedules an exponential ramp to value ending at tEnd.
func (e *Engine) ParamExpRamp(id int32, param string, value, tEnd float64) error {
	n := e.registry.Get(id)
	if n == nil {
		return fmt.Errorf("engine: no such node %d", id)
	}
	n.Timeline(param, value).ExpRampTo(value, tEnd)
	return nil
}

// ParamSetTarget schedules an exponential approach toward target
// starting at tStart with time constant tau.
func (e *Engine) ParamSetTarget(id int32, param string, target, tStart, tau float64) error {
	n := e.registry.Get(id)
	if n == nil {
		return fmt.Errorf("engine: no such node %d", id)
	}
	n.Timeline(param, target).SetTargetAt(target, tStart, tau)
	return nil
}

// ParamCancel drops every scheduled event at or after tCancel.
func (e *Engine) ParamCancel(id int32, param string, tCancel float64) error {
	n := e.registry.Get(id)
	if n == nil {
		return fmt.Errorf("engine: no such node %d", id)
	}
	if tl, ok := n.ExistingTimeline(param); ok {
		tl.CancelScheduled(tCancel)
	}
	return nil
}

// ParamCancelAndHold drops every scheduled event at or after tCancel
// and freezes the parameter at the value its timeline holds at tCancel
// (see timeline.Timeline.CancelAndHold).
func (e *Engine) ParamCancelAndHold(id int32, param string, tCancel float64) error {
	n := e.registry.Get(id)
	if n == nil {
		return fmt.Errorf("engine: no such node %d", id)
	}
	if tl, ok := n.ExistingTimeline(param); ok {
		held := tl.CancelAndHold(tCancel)
		applyScalarParam(n, param, held)
	}
	return nil
}

// seedTimelines eagerly creates a timeline for every parameter n's
// kind recognizes, seeded with the kernel's current value for that
// parameter. This guarantees a later ParamLinearRamp/ParamExpRamp call
// (which lazily creates a timeline if none exists) ramps from the
// parameter's actual current value rather than from the ramp's own
// target value.
func seedTimelines(n *node.Node) {
	for param := range recognizedParamsFor(n.Kind) {
		n.Timeline(param, scalarParam(n, param))
	}
}

func recognizedParamsFor(kind node.Kind) map[string]bool {
	names := map[string]bool{}
	for _, param := range []string{
		"gain", "frequency", "detune", "Q", "delayTime", "feedback",
		"pan", "playbackRate", "decay", "threshold", "knee", "ratio",
		"attack", "release",
	} {
		if node.Recognizes(kind, param) {
			names[param] = true
		}
	}
	return names
}

// scalarParam reads n's current value for param directly off its
// kernel, mirroring applyScalarParam's write side.
func scalarParam(n *node.Node, param string) float64 {
	switch k := n.Kernel.(type) {
	case *kernel.Gain:
		if param == "gain" {
			return k.Value
		}
	case *kernel.Oscillator:
		switch param {
		case "frequency":
			return k.Frequency
		case "detune":
			return k.Detune
		}
	case *kernel.BiquadFilter:
		switch param {
		case "frequency":
			return k.Frequency
		case "Q":
			return k.Q
		}
	case *kernel.Delay:
		switch param {
		case "delayTime":
			return k.DelayTime
		case "feedback":
			return k.Feedback
		}
	case *kernel.StereoPanner:
		if param == "pan" {
			return k.Pan
		}
	case *kernel.BufferSource:
		switch param {
		case "playbackRate":
			return k.PlaybackRate
		case "detune":
			return k.Detune
		case "decay":
			return k.Decay
		}
	case *kernel.Compressor:
		switch param {
		case "threshold":
			return k.Threshold
		case "knee":
			return k.Knee
		case "ratio":
			return k.Ratio
		case "attack":
			return k.Attack
		case "release":
			return k.Release
		}
	}
	return 0
}

// applyScalarParam pushes value directly into the kernel's field for
// param, for node kinds/params that support an immediate scalar
// write. Unrecognized (kind, param) pairs are no-ops: the value still
// lives in the timeline for later automation.
func applyScalarParam(n *node.Node, param string, value float64) {
	switch k := n.Kernel.(type) {
	case *kernel.Gain:
		if param == "gain" {
			k.Value = value
		}
	case *kernel.Oscillator:
		switch param {
		case "frequency":
			k.Frequency = value
		case "detune":
			k.Detune = value
		}
	case *kernel.BiquadFilter:
		switch param {
		case "frequency":
			k.Frequency = value
		case "Q":
			k.Q = value
		}
	case *kernel.Delay:
		switch param {
		case "delayTime":
			k.DelayTime = value
		case "feedback":
			k.Feedback = value
		}
	case *kernel.StereoPanner:
		if param == "pan" {
			k.Pan = value
		}
	case *kernel.BufferSource:
		switch param {
		case "playbackRate":
			k.PlaybackRate = value
		case "detune":
			k.Detune = value
		case "decay":
			k.Decay = value
		}
	case *kernel.Compressor:
		switch param {
		case "threshold":
			k.Threshold = value
		case "knee":
			k.Knee = value
		case "ratio":
			k.Ratio = value
		case "attack":
			k.Attack = value
		case "release":
			k.Release = value
		}
	}
}

// runAutomation advances every node's parameter timelines by one
// block, writing sample-accurate arrays into Automated kernels (Gain,
// Delay) and scalar values elsewhere. Gain and Delay have their
// automated flag reset before the loop so a node with no active
// timeline for that param falls back to its plain scalar field.
func (e *Engine) runAutomation(startTime, sr float64, n int) {
	e.registry.Each(func(rec *node.Node) {
		arrayParam, hasArrayParam := automatedArrayParam[rec.Kind]
		automated, _ := rec.Kernel.(kernel.Automated)
		if automated != nil && hasArrayParam {
			automated.ClearAutomatedParam(arrayParam)
		}

		rec.EachTimeline(func(param string, tl *timeline.Timeline) {
			if automated != nil && hasArrayParam && param == arrayParam {
				buf := make([]float64, n)
				tl.ProcessBlock(startTime, sr, n, buf)
				automated.SetAutomatedParam(arrayParam, buf)
				return
			}

			val := tl.ProcessBlock(startTime, sr, n, e.scratch[:n])
			switch k := rec.Kernel.(type) {
			case *kernel.Delay:
				if param == "feedback" {
					k.Feedback = val
				}
			case *kernel.Oscillator:
				switch param {
				case "frequency":
					k.Frequency = val
				case "detune":
					k.Detune = val
				}
			case *kernel.BiquadFilter:
				switch param {
				case "frequency":
					k.Frequency = val
				case "Q":
					k.Q = val
				}
			case *kernel.StereoPanner:
				if param == "pan" {
					k.Pan = val
				}
			case *kernel.BufferSource:
				switch param {
				case "playbackRate":
					k.PlaybackRate = val
				case "detune":
					k.Detune = val
				case "decay":
					k.Decay = val
				}
			case *kernel.Compressor:
				switch param {
				case "threshold":
					k.Threshold = val
				case "knee":
					k.Knee = val
				case "ratio":
					k.Ratio = val
				case "attack":
					k.Attack = val
				case "release":
					k.Release = val
				}
			}
		})
	})
}

// automatedArrayParam names, per node kind, the single parameter that
// gets a sample-accurate array via the Automated interface rather than
// a block-final scalar. Only Gain and Delay have a kernel-side
// per-sample path; every other automated parameter takes its block's
// final value.
var automatedArrayParam = map[node.Kind]string{
	node.Gain:  "gain",
	node.Delay: "delayTime",
}
