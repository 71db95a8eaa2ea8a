package game

import (
	"time"
)

// Pacer caps how often the frame loop iterates. It sleeps until shortly
// before the next slot and spins the rest. After a hitch it starts over from
// the current time instead of bursting to catch up.
type Pacer struct {
	interval time.Duration
	spin     time.Duration
	now      func() time.Time
	sleep    func(time.Duration)

	next    time.Time
	resyncs int
}

// NewPacer returns a pacer allowing rate iterations per second.
func NewPacer(rate int) *Pacer {
	p := &Pacer{
		spin:  200 * time.Microsecond,
		now:   time.Now,
		sleep: time.Sleep,
	}
	p.SetRate(rate)
	return p
}

// SetRate changes the cap. Zero or less removes it.
func (p *Pacer) SetRate(rate int) {
	p.interval = 0
	if rate > 0 {
		p.interval = time.Second / time.Duration(rate)
	}
	p.next = time.Time{}
}

// Wait blocks until the next slot is due and returns how long it blocked.
func (p *Pacer) Wait() time.Duration {
	if p.interval == 0 {
		return 0
	}
	start := p.now()
	if p.next.IsZero() {
		p.next = start
	}
	p.next = p.next.Add(p.interval)

	for {
		remaining := p.next.Sub(p.now())
		if remaining <= 0 {
			break
		}
		if remaining > p.spin {
			p.sleep(remaining - p.spin)
		}
	}

	end := p.now()
	if end.Sub(p.next) > p.interval {
		p.next = end
		p.resyncs++
	}
	return end.Sub(start)
}

// Resyncs counts the hitches after which the schedule was reset.
func (p *Pacer) Resyncs() int { return p.resyncs }
