// Package lifecycle bridges silt's change events into the generic
// lifecycle event pipeline, so applications supervising their components
// with aretw0/lifecycle can consume collection changes like any other
// event source.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/silt/pkg/core"
)

type siltSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits silt collection events.
// It bridges the typed event channel (as returned by Database.Watch) to
// the generic lifecycle Event interface.
func NewSource(events <-chan core.Event) lifecycle.Source {
	return &siltSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *siltSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *siltSource) Start(ctx context.Context) error {
	// Uses lifecycle.Go so the bridge itself is tracked and safe.
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				// core.Event implements lifecycle.Event (has String())
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
