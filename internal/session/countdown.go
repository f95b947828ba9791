package session

import (
	"context"
	"sync"
	"time"
)

// countdown is one running timer. Ticks are matched against the session's
// current countdown by pointer, so a stopped timer can never touch a newer
// attempt.
type countdown struct {
	stop chan struct{}
	once sync.Once
}

func (c *countdown) halt() {
	c.once.Do(func() { close(c.stop) })
}

func (s *Session) startCountdownLocked() {
	s.stopCountdownLocked()
	c := &countdown{stop: make(chan struct{})}
	s.countdown = c
	go s.runCountdown(c)
}

func (s *Session) stopCountdownLocked() {
	if s.countdown == nil {
		return
	}
	s.countdown.halt()
	s.countdown = nil
}

func (s *Session) runCountdown(c *countdown) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			s.tickFrom(c)
		}
	}
}

// Tick advances the running countdown by one second. The background ticker
// calls it on every interval; callers may drive it by hand.
func (s *Session) Tick() {
	s.mu.Lock()
	c := s.countdown
	s.mu.Unlock()

	if c == nil {
		return
	}
	s.tickFrom(c)
}

func (s *Session) tickFrom(c *countdown) {
	s.mu.Lock()
	if s.countdown != c || s.state != StateInProgress || s.remaining <= 0 {
		s.mu.Unlock()
		return
	}
	s.remaining--
	remaining := s.remaining
	expired := remaining == 0
	if expired {
		s.stopCountdownLocked()
	}
	s.mu.Unlock()

	s.renderer.ShowTimer(remaining, timerLevel(remaining))
	if !expired {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.submitTimeout)
	defer cancel()
	if err := s.submit(ctx, true); err != nil {
		s.logger.Printf("automatic submit failed: %v", err)
	}
}
