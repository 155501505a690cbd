package ws

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/axiom-drop/internal/config"
	"github.com/vovakirdan/axiom-drop/internal/core"
	"github.com/vovakirdan/axiom-drop/internal/level"
	"github.com/vovakirdan/axiom-drop/internal/progress"
	"github.com/vovakirdan/axiom-drop/internal/sim"
)

// envelope is a decoded Message with its payload left raw.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func decode(t *testing.T, data []byte) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("bad message %s: %v", data, err)
	}
	return env
}

// waitFor reads messages until match accepts one or the timeout passes.
func waitFor(t *testing.T, read func() ([]byte, bool), match func(envelope) bool) envelope {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		data, ok := read()
		if !ok {
			t.Fatal("message stream ended")
		}
		if env := decode(t, data); match(env) {
			return env
		}
	}
	t.Fatal("timed out waiting for message")
	return envelope{}
}

func outboxReader(o *Outbox) func() ([]byte, bool) {
	return func() ([]byte, bool) {
		select {
		case msg := <-o.Messages():
			return msg, true
		case <-time.After(3 * time.Second):
			return nil, false
		}
	}
}

func snapshotOf(t *testing.T, env envelope) sim.Snapshot {
	t.Helper()
	var snap sim.Snapshot
	if err := json.Unmarshal(env.Payload, &snap); err != nil {
		t.Fatalf("bad snapshot %s: %v", env.Payload, err)
	}
	return snap
}

func isType(typ string) func(envelope) bool {
	return func(e envelope) bool { return e.Type == typ }
}

func startSession(t *testing.T, cfg SessionConfig) *Session {
	t.Helper()
	if cfg.Config.Host.TickRate == 0 {
		cfg.Config = config.DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	s := NewSession(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in      string
		typ     string
		wantErr string
	}{
		{`{"type":"tilt","direction":"left"}`, CmdTilt, ""},
		{`{"type":"tilt","direction":"right"}`, CmdTilt, ""},
		{`{"type":"stabilize"}`, CmdStabilize, ""},
		{`{"type":"pause"}`, CmdPause, ""},
		{`{"type":"resume"}`, CmdResume, ""},
		{`{"type":"restart"}`, CmdRestart, ""},
		{`{"type":"tilt","direction":"up"}`, "", "left or right"},
		{`{"type":"warp"}`, "", "unknown command"},
		{`{}`, "", "no type"},
		{`not json`, "", "decode"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			cmd, err := ParseCommand([]byte(tc.in))
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Errorf("ParseCommand() error = %v, expected %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCommand() failed: %v", err)
			}
			if cmd.Type != tc.typ {
				t.Errorf("type = %q, expected %q", cmd.Type, tc.typ)
			}
		})
	}

	cmd, _ := ParseCommand([]byte(`{"type":"tilt","direction":"right"}`))
	if cmd.dir != sim.Right {
		t.Errorf("direction = %v, expected right", cmd.dir)
	}
}

func TestOutboxDropsOldest(t *testing.T) {
	o := NewOutbox(2)
	o.Push([]byte("a"))
	o.Push([]byte("b"))
	o.Push([]byte("c"))

	got := []string{string(<-o.Messages()), string(<-o.Messages())}
	if got[0] != "b" || got[1] != "c" {
		t.Errorf("outbox kept %v, expected [b c]", got)
	}

	o.Close()
	o.Close()
	o.Push([]byte("d"))
	select {
	case msg := <-o.Messages():
		t.Errorf("closed outbox accepted %q", msg)
	default:
	}
}

func TestSessionAnnouncesLevel(t *testing.T) {
	lvl := level.Level{ID: 7, Name: "Seven", DescentSpeed: 10}
	s := startSession(t, SessionConfig{ID: "s1", Level: lvl})
	read := outboxReader(s.Outbox())

	first := decode(t, mustRead(t, read))
	if first.Type != TypeLevel {
		t.Fatalf("first message = %s, expected level", first.Type)
	}
	var got level.Level
	if err := json.Unmarshal(first.Payload, &got); err != nil || got.ID != 7 {
		t.Errorf("level payload = %+v, %v", got, err)
	}

	snap := snapshotOf(t, waitFor(t, read, isType(TypeSnapshot)))
	if snap.State != sim.StatePlaying || snap.LevelID != 7 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func mustRead(t *testing.T, read func() ([]byte, bool)) []byte {
	t.Helper()
	data, ok := read()
	if !ok {
		t.Fatal("no message")
	}
	return data
}

func TestSessionCommands(t *testing.T) {
	lvl := level.Level{ID: 1, DescentSpeed: 1}
	s := startSession(t, SessionConfig{ID: "s2", Level: lvl})
	read := outboxReader(s.Outbox())

	s.Send(TiltCommand(sim.Right))
	waitFor(t, read, func(e envelope) bool {
		return e.Type == TypeSnapshot && snapshotOf(t, e).Position.X == 215
	})

	s.Send(Command{Type: CmdStabilize})
	snap := snapshotOf(t, waitFor(t, read, func(e envelope) bool {
		return e.Type == TypeSnapshot && snapshotOf(t, e).Stabilizers == 2
	}))
	if !snap.StabilizerActive {
		t.Error("stabilizer should be active right after activation")
	}

	s.Send(Command{Type: CmdPause})
	waitFor(t, read, func(e envelope) bool {
		return e.Type == TypeSnapshot && snapshotOf(t, e).State == sim.StatePaused
	})

	s.Send(Command{Type: CmdResume})
	waitFor(t, read, func(e envelope) bool {
		return e.Type == TypeSnapshot && snapshotOf(t, e).State == sim.StatePlaying
	})
}

func TestSessionCompletesAndRestarts(t *testing.T) {
	svc, err := progress.NewService(progress.NewMemoryKV(), "p")
	if err != nil {
		t.Fatal(err)
	}
	lvl := level.Level{
		ID:           1,
		DescentSpeed: 100,
		TargetZones:  []core.Zone{core.NewZone(0, 0, 390, 844)},
	}
	s := startSession(t, SessionConfig{ID: "s3", Player: "p", Level: lvl, Progress: svc})
	read := outboxReader(s.Outbox())

	evt := waitFor(t, read, isType(TypeEvent))
	var payload Event
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Outcome == nil || payload.Outcome.State != sim.StateCompleted || payload.Outcome.Cause != sim.CauseTarget {
		t.Fatalf("outcome = %+v", payload.Outcome)
	}
	if !svc.IsLevelCompleted(1) {
		t.Error("completion should be saved to progress")
	}

	s.Send(Command{Type: CmdRestart})
	waitFor(t, read, isType(TypeLevel))
}

func TestSessionPulseReverts(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Simulation.PulseDuration = 20 * time.Millisecond
	lvl := level.Level{
		ID:            1,
		DescentSpeed:  1,
		NodePositions: []core.Point{core.Pt(195, 110)},
		NodeTypes:     []level.NodeType{level.NodePatternTrigger},
	}
	s := startSession(t, SessionConfig{ID: "s4", Level: lvl, Config: cfg})
	read := outboxReader(s.Outbox())

	evt := waitFor(t, read, isType(TypeEvent))
	var payload Event
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.Hits) != 1 || payload.Hits[0].Points != 20 {
		t.Fatalf("hits = %+v", payload.Hits)
	}

	waitFor(t, read, func(e envelope) bool {
		if e.Type != TypeSnapshot {
			return false
		}
		snap := snapshotOf(t, e)
		return snap.Score == 20 && snap.Scale == 1
	})
}

func TestSessionRefusesMismatchedLevel(t *testing.T) {
	lvl := level.Level{ID: 1, DescentSpeed: 1, NodePositions: []core.Point{core.Pt(1, 1)}}
	s := NewSession(SessionConfig{ID: "bad", Level: lvl, Config: config.DefaultConfig(), Logger: log.New(io.Discard)})

	if err := s.Run(context.Background()); err == nil {
		t.Fatal("Run() should refuse mismatched geometry")
	}
	select {
	case msg := <-s.Outbox().Messages():
		t.Errorf("refused session sent %s", msg)
	default:
	}
	select {
	case <-s.Done():
	default:
		t.Error("refused session should be stopped")
	}
}
