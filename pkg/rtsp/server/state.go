package server

import (
	"context"
	"log/slog"

	"github.com/looplab/fsm"
)

// Session phases. The phase is explicit state, not something inferred from
// which handlers have already run: SETUP is legal only while idle, PLAY
// only once negotiated, TEARDOWN from negotiated or playing. Torndown is
// terminal; after it only OPTIONS and DESCRIBE remain legal.
const (
	phaseIdle       = "idle"
	phaseNegotiated = "negotiated"
	phasePlaying    = "playing"
	phaseTorndown   = "torndown"
)

// Phase transition events
const (
	eventSetup    = "setup"
	eventPlay     = "play"
	eventTeardown = "teardown"
)

// newPhaseFSM builds the per-session phase machine
func newPhaseFSM(log *slog.Logger) *fsm.FSM {
	return fsm.NewFSM(
		phaseIdle,
		fsm.Events{
			{Name: eventSetup, Src: []string{phaseIdle}, Dst: phaseNegotiated},
			{Name: eventPlay, Src: []string{phaseNegotiated}, Dst: phasePlaying},
			{Name: eventTeardown, Src: []string{phaseNegotiated, phasePlaying}, Dst: phaseTorndown},
		},
		fsm.Callbacks{
			"after_event": func(_ context.Context, e *fsm.Event) {
				log.Debug("session phase changed",
					slog.String("from", e.Src),
					slog.String("to", e.Dst))
			},
		},
	)
}
