package netsim

import (
	"context"
	"log"
	"time"

	"github.com/milk9111/huddle/netcode"
	"github.com/milk9111/huddle/voice"
)

// DefaultInterval is roughly one snapshot per frame at 30 Hz.
const DefaultInterval = 33 * time.Millisecond

// Source drives Bots on its own goroutine and publishes each step as a
// snapshot, the way a network transport would.
type Source struct {
	Bots     *Bots
	Feed     *netcode.Feed
	Voice    *voice.Tracker
	Local    string
	Interval time.Duration
}

// Run publishes snapshots until ctx is done or the script fails. Speaking
// flags are published before the snapshot so the scene sees both together.
func (s *Source) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if err := s.publish(ctx); err != nil {
			return err
		}
	}
}

func (s *Source) publish(ctx context.Context) error {
	bots, err := s.Bots.Step(ctx)
	if err != nil {
		return err
	}
	data, err := Encode(s.Local, bots)
	if err != nil {
		return err
	}
	snap, err := netcode.ParseSnapshot(data)
	if err != nil {
		// A bad frame from the script is skipped; the next tick may be fine.
		log.Printf("netsim: tick %d: %v", s.Bots.Tick()-1, err)
		return nil
	}
	for _, b := range bots {
		s.Voice.Set(b.Identity, b.Speaking)
	}
	s.Feed.Push(snap)
	return nil
}
