package core

import "time"

// FixedStep paces replay frames at a steady frames-per-second rate,
// independent of how often it is polled.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
	now         func() time.Time
}

// NewFixedStep constructs a FixedStep targeting fps. The first poll always
// yields a frame.
func NewFixedStep(fps int) *FixedStep {
	fs := &FixedStep{now: time.Now}
	fs.SetFPS(fps)
	fs.accumulator = fs.step
	return fs
}

// SetFPS changes the frame rate; non-positive values fall back to 10.
func (f *FixedStep) SetFPS(fps int) {
	if fps <= 0 {
		fps = 10
	}
	f.step = time.Second / time.Duration(fps)
}

// Interval is the duration of one frame.
func (f *FixedStep) Interval() time.Duration { return f.step }

// ShouldStep reports whether the replay should advance by one frame.
func (f *FixedStep) ShouldStep() bool {
	now := f.now()
	if f.last.IsZero() {
		f.last = now
	}
	delta := now.Sub(f.last)
	f.last = now
	f.accumulator += delta
	if f.accumulator >= f.step {
		f.accumulator -= f.step
		return true
	}
	return false
}
