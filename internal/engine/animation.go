package engine

import "time"

// tween is one time-based animation. step receives eased progress in [0,1].
type tween struct {
	key       string
	start     time.Time
	duration  time.Duration
	step      func(t float64)
	done      func()
	cancelled bool
}

// Animator advances tweens from the host's frame clock.
type Animator struct {
	now    func() time.Time
	tweens []*tween
}

// NewAnimator creates an animator reading start times from now.
func NewAnimator(now func() time.Time) *Animator {
	return &Animator{now: now}
}

// Start begins a tween. A running tween with the same non-empty key is
// cancelled without running its done callback. Non-positive durations
// complete immediately.
func (a *Animator) Start(key string, d time.Duration, step func(t float64), done func()) {
	a.Cancel(key)
	if d <= 0 {
		if step != nil {
			step(1)
		}
		if done != nil {
			done()
		}
		return
	}
	a.tweens = append(a.tweens, &tween{
		key:      key,
		start:    a.now(),
		duration: d,
		step:     step,
		done:     done,
	})
}

// Cancel stops the tween registered under key, if any.
func (a *Animator) Cancel(key string) {
	if key == "" {
		return
	}
	kept := a.tweens[:0]
	for _, tw := range a.tweens {
		if tw.key == key {
			tw.cancelled = true
			continue
		}
		kept = append(kept, tw)
	}
	a.tweens = kept
}

// Active reports whether any tween is still running.
func (a *Animator) Active() bool {
	return len(a.tweens) > 0
}

// Advance steps every tween to now and returns whether any are still running.
// done callbacks run after all steps and may start new tweens.
func (a *Animator) Advance(now time.Time) bool {
	active := a.tweens
	a.tweens = nil

	var survivors, finished []*tween
	for _, tw := range active {
		if tw.cancelled {
			continue
		}
		t := float64(now.Sub(tw.start)) / float64(tw.duration)
		if t < 0 {
			t = 0
		}
		if t >= 1 {
			t = 1
			finished = append(finished, tw)
		} else {
			survivors = append(survivors, tw)
		}
		if tw.step != nil {
			tw.step(easeInOut(t))
		}
	}
	a.tweens = append(survivors, a.tweens...)

	for _, tw := range finished {
		if tw.done != nil && !tw.cancelled {
			tw.done()
		}
	}
	return a.Active()
}

// easeInOut is a quadratic ease-in-out curve.
func easeInOut(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	u := -2*t + 2
	return 1 - u*u/2
}
