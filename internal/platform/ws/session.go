package ws

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/axiom-drop/internal/config"
	"github.com/vovakirdan/axiom-drop/internal/level"
	"github.com/vovakirdan/axiom-drop/internal/progress"
	"github.com/vovakirdan/axiom-drop/internal/sim"
	"github.com/vovakirdan/axiom-drop/internal/storage"
)

// SessionConfig holds what a session needs to play one level.
type SessionConfig struct {
	ID       string
	Player   string
	Level    level.Level
	Config   config.Config
	Progress *progress.Service // nil disables progress tracking
	Store    *storage.Store    // nil disables run history
	Logger   *log.Logger
	Clock    sim.Clock // nil uses the system clock
}

// Session is the actor that owns one simulation. Only Run touches the
// simulation; everything else talks to it through Send.
type Session struct {
	cfg    SessionConfig
	sim    *sim.Simulation
	logger *log.Logger

	inbox  chan Command
	pulses chan int // attempt whose pulse has expired
	outbox *Outbox

	attempt  int
	done     chan struct{}
	doneOnce sync.Once
}

// NewSession creates a session. Run starts it.
func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		cfg:    cfg,
		sim:    sim.New(cfg.Config.Simulation, cfg.Config.Viewport, cfg.Clock),
		logger: logger.With("session", cfg.ID, "level", cfg.Level.ID),
		inbox:  make(chan Command, 64),
		pulses: make(chan int, 8),
		outbox: NewOutbox(256),
		done:   make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.cfg.ID
}

// Outbox returns the queue of messages for the client.
func (s *Session) Outbox() *Outbox {
	return s.outbox
}

// Done is closed when the session stops.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Send queues a command. Non-blocking; commands are dropped when the
// inbox is full or the session has stopped.
func (s *Session) Send(cmd Command) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.inbox <- cmd:
	default:
	}
}

// Stop ends the session. Safe to call multiple times.
func (s *Session) Stop() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

// Run starts the level and drives the simulation until ctx is cancelled or
// Stop is called. A level with mismatched geometry is refused before any
// message is sent.
func (s *Session) Run(ctx context.Context) error {
	defer s.outbox.Close()
	defer s.Stop()

	if err := s.start(); err != nil {
		return err
	}

	host := s.cfg.Config.Host
	ticker := time.NewTicker(time.Second / time.Duration(host.TickRate))
	defer ticker.Stop()
	every := max(host.TickRate/max(host.BroadcastRate, 1), 1)

	for tick := 1; ; tick++ {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return nil

		case cmd := <-s.inbox:
			s.handle(cmd)

		case attempt := <-s.pulses:
			if attempt == s.attempt {
				s.sim.EndPulse()
			}

		case <-ticker.C:
			res := s.sim.Step()
			if !res.Empty() {
				s.report(res)
			}
			if tick%every == 0 || res.Outcome != nil {
				s.pushSnapshot()
			}
		}
	}
}

// start begins a fresh attempt and announces it.
func (s *Session) start() error {
	if err := s.sim.Start(s.cfg.Level); err != nil {
		return err
	}
	s.attempt++
	s.push(TypeLevel, s.cfg.Level)
	s.pushSnapshot()
	return nil
}

func (s *Session) handle(cmd Command) {
	switch cmd.Type {
	case CmdTilt:
		s.sim.ApplyTilt(cmd.dir)
	case CmdStabilize:
		s.sim.ActivateStabilizer()
	case CmdPause:
		s.sim.Pause()
	case CmdResume:
		s.sim.Resume()
	case CmdRestart:
		if err := s.start(); err != nil {
			s.push(TypeError, err.Error())
		}
		return
	}
	s.pushSnapshot()
}

// report forwards step events to the client and records a finished attempt.
func (s *Session) report(res sim.StepResult) {
	if res.Pulse != nil {
		attempt := s.attempt
		time.AfterFunc(res.Pulse.RevertAfter, func() {
			select {
			case s.pulses <- attempt:
			case <-s.done:
			}
		})
	}

	evt := Event{Hits: res.Hits, Outcome: res.Outcome}
	if res.Outcome != nil {
		evt.Milestones = s.record(*res.Outcome)
	}
	if len(evt.Hits) > 0 || evt.Outcome != nil {
		s.push(TypeEvent, evt)
	}
}

// record saves a finished attempt and returns any milestones it granted.
func (s *Session) record(o sim.Outcome) []progress.Milestone {
	s.logger.Info("level finished", "player", s.cfg.Player, "state", o.State, "cause", o.Cause, "score", o.Score)

	if s.cfg.Store != nil {
		outcome := storage.OutcomeFailed
		if o.State == sim.StateCompleted {
			outcome = storage.OutcomeCompleted
		}
		run := storage.Run{
			LevelID:  s.cfg.Level.ID,
			Player:   s.cfg.Player,
			Score:    o.Score,
			Outcome:  outcome,
			Duration: s.sim.PlayTime(),
		}
		if _, err := s.cfg.Store.SaveRun(run); err != nil {
			s.logger.Warn("could not save run", "error", err)
		}
	}

	if o.State != sim.StateCompleted || s.cfg.Progress == nil {
		return nil
	}
	granted, err := s.cfg.Progress.CompleteLevel(s.cfg.Level.ID)
	if err != nil {
		s.logger.Warn("could not save progress", "error", err)
	}
	return granted
}

func (s *Session) pushSnapshot() {
	s.push(TypeSnapshot, s.sim.Snapshot())
}

func (s *Session) push(msgType string, payload any) {
	data, err := encode(msgType, payload)
	if err != nil {
		s.logger.Error("could not encode message", "error", err)
		return
	}
	s.outbox.Push(data)
}
