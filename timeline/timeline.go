// Package timeline implements per-parameter automation: a time-sorted
// event list evaluated block-by-block into either a single scalar or a
// per-sample array, in the manner of a Web Audio AudioParam.
package timeline

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
)

// EventKind tags the shape an automation event contributes.
type EventKind int

const (
	SetValue EventKind = iota
	LinearRamp
	ExponentialRamp
	SetTarget
)

// Event is one scheduled automation point.
type Event struct {
	Kind         EventKind
	Time         float64
	Value        float64
	TimeConstant float64 // SetTarget only
}

// Timeline is the ordered event list for a single (node, parameter)
// pair. Mutators run on control threads under Timeline's own lock; the
// render thread evaluates it via ProcessBlock using try-lock so a
// stuck mutator can never stall audio.
type Timeline struct {
	mu        sync.Mutex
	events    []Event
	lastValue atomic.Uint64 // float64 bits, updated by the renderer
}

// New returns a timeline whose implicit value before any event is
// initial.
func New(initial float64) *Timeline {
	t := &Timeline{}
	t.lastValue.Store(math.Float64bits(initial))
	return t
}

// LastValue returns the most recently computed value, safe to call
// from any thread.
func (t *Timeline) LastValue() float64 {
	return math.Float64frombits(t.lastValue.Load())
}

// SetLastValue overwrites the implicit baseline value directly,
// bypassing the event list. Used by immediate (non-scheduled)
// parameter writes, which per the automation model take effect on the
// next block even without an event.
func (t *Timeline) SetLastValue(v float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastValue.Store(math.Float64bits(v))
}

// SetValueAt schedules a discrete value at time.
func (t *Timeline) SetValueAt(value, time float64) {
	t.addEvent(Event{Kind: SetValue, Time: time, Value: value})
}

// LinearRampTo schedules a linear ramp ending at value at tEnd. A ramp
// scheduled with nothing before it in the timeline needs an anchor to
// ramp from; one is snapshotted from the current value at time zero so
// the ramp's start point stays fixed across every future block rather
// than drifting toward whatever the render thread last computed.
func (t *Timeline) LinearRampTo(value, tEnd float64) {
	t.anchorIfEmpty()
	t.addEvent(Event{Kind: LinearRamp, Time: tEnd, Value: value})
}

// ExpRampTo schedules an exponential ramp ending at value at tEnd. See
// LinearRampTo for why an empty timeline gets an anchor first.
func (t *Timeline) ExpRampTo(value, tEnd float64) {
	t.anchorIfEmpty()
	t.addEvent(Event{Kind: ExponentialRamp, Time: tEnd, Value: value})
}

// anchorIfEmpty inserts a SetValue event at time zero carrying the
// timeline's current value, if no event exists yet. Caller must not
// hold mu.
func (t *Timeline) anchorIfEmpty() {
	t.mu.Lock()
	empty := len(t.events) == 0
	v := t.LastValue()
	t.mu.Unlock()
	if empty {
		t.addEvent(Event{Kind: SetValue, Time: 0, Value: v})
	}
}

// SetTargetAt schedules an exponential approach toward target starting
// at tStart with time constant tau.
func (t *Timeline) SetTargetAt(target, tStart, tau float64) {
	t.addEvent(Event{Kind: SetTarget, Time: tStart, Value: target, TimeConstant: tau})
}

func (t *Timeline) addEvent(e Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, e)
	n := len(t.events)
	if n > 1 && t.events[n-2].Time > t.events[n-1].Time {
		sort.SliceStable(t.events, func(i, j int) bool {
			return t.events[i].Time < t.events[j].Time
		})
	}
}

// CancelScheduled drops every event with Time >= tCancel.
func (t *Timeline) CancelScheduled(tCancel float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dropFrom(tCancel)
}

// CancelAndHold drops every event with Time >= tCancel and inserts a
// SetValue event at tCancel carrying the value the timeline would have
// produced there, freezing output from tCancel onward. The captured
// value is evaluated before the events are erased, so it reflects the
// trajectory the pre-cancel timeline was on. Before the first event,
// or while a SetTarget approach is in progress at tCancel, the held
// value is LastValue, the last value the renderer computed.
func (t *Timeline) CancelAndHold(tCancel float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	held := t.LastValue()
	idx := -1
	for i, e := range t.events {
		if e.Time > tCancel {
			break
		}
		idx = i
	}
	if idx >= 0 {
		nextIsRamp := idx+1 < len(t.events) &&
			(t.events[idx+1].Kind == LinearRamp || t.events[idx+1].Kind == ExponentialRamp)
		if t.events[idx].Kind != SetTarget || nextIsRamp {
			held = evaluate(t.events, held, held, idx, tCancel, 1)
		}
	}
	t.dropFrom(tCancel)
	t.events = append(t.events, Event{Kind: SetValue, Time: tCancel, Value: held})
	return held
}

func (t *Timeline) dropFrom(tCancel float64) {
	kept := t.events[:0]
	for _, e := range t.events {
		if e.Time < tCancel {
			kept = append(kept, e)
		}
	}
	t.events = kept
}

// ProcessBlock advances the timeline over n samples starting at t0 with
// the given sample rate. If out is non-nil, it is filled with the
// per-sample trajectory (len(out) must be >= n); the returned value is
// always the value at the end of the block.
//
// If the timeline's lock is contested, ProcessBlock never blocks: it
// fills out with the current LastValue and returns it unchanged. This
// guarantees the render thread cannot stall on a busy control thread.
func (t *Timeline) ProcessBlock(t0, sampleRate float64, n int, out []float64) float64 {
	if !t.mu.TryLock() {
		held := t.LastValue()
		if out != nil {
			for i := 0; i < n; i++ {
				out[i] = held
			}
		}
		return held
	}
	defer t.mu.Unlock()

	if sampleRate <= 0 || n <= 0 {
		return t.LastValue()
	}

	t.prunePast(t0)

	initial := t.LastValue()
	val := initial
	currentIdx := -1
	nextIdx := 0
	for nextIdx < len(t.events) && t.events[nextIdx].Time <= t0 {
		currentIdx = nextIdx
		nextIdx++
	}

	for i := 0; i < n; i++ {
		ti := t0 + float64(i)/sampleRate
		for nextIdx < len(t.events) && t.events[nextIdx].Time <= ti {
			currentIdx = nextIdx
			nextIdx++
		}
		val = evaluate(t.events, initial, val, currentIdx, ti, sampleRate)
		if out != nil {
			out[i] = val
		}
	}
	t.lastValue.Store(math.Float64bits(val))
	return val
}

// evaluate computes the value at time ti given the event preceding or
// at ti (currentIdx, -1 meaning "before any event"). Mirrors the
// original engine's getValueAtEventIndex.
func evaluate(events []Event, initial, current float64, currentIdx int, ti, sampleRate float64) float64 {
	if currentIdx < 0 {
		return initial
	}
	e := events[currentIdx]
	val := current

	if currentIdx+1 < len(events) {
		next := events[currentIdx+1]
		if next.Kind == LinearRamp || next.Kind == ExponentialRamp {
			startValue := e.Value
			startTime := e.Time
			endTime := next.Time
			duration := endTime - startTime
			if duration > 0 {
				tau := (ti - startTime) / duration
				if tau < 0 {
					tau = 0
				} else if tau > 1 {
					tau = 1
				}
				switch next.Kind {
				case LinearRamp:
					return startValue + tau*(next.Value-startValue)
				case ExponentialRamp:
					if startValue > 0 && next.Value > 0 {
						return startValue * math.Pow(next.Value/startValue, tau)
					}
				}
			}
			return next.Value
		}
	}

	switch e.Kind {
	case SetValue, LinearRamp, ExponentialRamp:
		val = e.Value
	case SetTarget:
		if ti >= e.Time && e.TimeConstant > 0 {
			dt := 1.0 / sampleRate
			val = e.Value + (val-e.Value)*math.Exp(-dt/e.TimeConstant)
		}
	}
	return val
}

// prunePast keeps at most one event at or before currentTime, plus all
// future events, so the previous discrete event remains available as
// a ramp anchor. Caller must hold mu.
func (t *Timeline) prunePast(currentTime float64) {
	keepFrom := 0
	for keepFrom+1 < len(t.events) && t.events[keepFrom+1].Time <= currentTime {
		keepFrom++
	}
	if keepFrom > 0 {
		t.events = t.events[keepFrom:]
	}
}
