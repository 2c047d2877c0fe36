package netsim

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/milk9111/huddle/anim"
	"github.com/milk9111/huddle/netcode"
	"github.com/milk9111/huddle/prefabs"
	"github.com/milk9111/huddle/voice"
)

func loadBots(t *testing.T, count int) *Bots {
	t.Helper()
	src, err := prefabs.LoadScript("bots.tengo")
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	b, err := NewBots(src, count)
	if err != nil {
		t.Fatalf("NewBots: %v", err)
	}
	return b
}

func TestBundledScriptProducesValidBots(t *testing.T) {
	b := loadBots(t, 3)
	ctx := context.Background()

	for i := 0; i < 600; i += 37 {
		b.tick = int64(i)
		bots, err := b.Step(ctx)
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if len(bots) != 3 {
			t.Fatalf("tick %d: expected 3 bots, got %d", i, len(bots))
		}
		seen := map[string]bool{}
		for _, bot := range bots {
			if !strings.HasPrefix(bot.Identity, "bot-") || seen[bot.Identity] {
				t.Fatalf("tick %d: bad identity %q", i, bot.Identity)
			}
			seen[bot.Identity] = true
			if _, err := anim.Parse(bot.Animation); err != nil {
				t.Fatalf("tick %d: %v", i, err)
			}
		}
	}
}

func TestStepAdvancesTick(t *testing.T) {
	b := loadBots(t, 1)
	first, err := b.Step(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Step(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if b.Tick() != 2 {
		t.Fatalf("expected tick 2, got %d", b.Tick())
	}
	if first[0].Position == second[0].Position {
		t.Fatalf("bot should move between ticks, stayed at %+v", first[0].Position)
	}
}

func TestBadScripts(t *testing.T) {
	cases := []struct {
		name    string
		src     string
		compile bool
		wantErr error
	}{
		{"syntax", "bots := [", false, nil},
		{"not_array", "bots := 5", true, ErrBadScriptOutput},
		{"missing_output", "x := 1", true, ErrBadScriptOutput},
		{"item_not_map", "bots := [1]", true, ErrBadScriptOutput},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b, err := NewBots([]byte(c.src), 1)
			if !c.compile {
				if err == nil {
					t.Fatal("expected compile error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBots: %v", err)
			}
			if _, err := b.Step(context.Background()); !errors.Is(err, c.wantErr) {
				t.Fatalf("expected %v, got %v", c.wantErr, err)
			}
		})
	}
}

func TestEncodeParsesAsSnapshot(t *testing.T) {
	bots := []Bot{
		{Identity: "bot-1", Animation: "walk_left"},
		{Identity: "bot.two", Animation: "idle_up"},
	}
	bots[0].Position.X, bots[0].Position.Y = 12.5, 40
	data, err := Encode("me", bots)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	snap, err := netcode.ParseSnapshot(data)
	if err != nil {
		t.Fatalf("ParseSnapshot(%s): %v", data, err)
	}
	if snap.LocalIdentity != "me" || len(snap.RemotePlayers) != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	p := snap.RemotePlayers[0]
	if p.Identity != "bot-1" || p.Position.X != 12.5 || p.Position.Y != 40 || p.Animation != anim.WalkLeft {
		t.Fatalf("unexpected first player %+v", p)
	}
	if snap.RemotePlayers[1].Identity != "bot.two" {
		t.Fatalf("identity with a dot was mangled: %+v", snap.RemotePlayers[1])
	}
}

func TestEncodeEmpty(t *testing.T) {
	data, err := Encode("", nil)
	if err != nil {
		t.Fatal(err)
	}
	snap, err := netcode.ParseSnapshot(data)
	if err != nil || len(snap.RemotePlayers) != 0 {
		t.Fatalf("expected empty snapshot, got %+v err=%v", snap, err)
	}
}

func TestSourcePublishes(t *testing.T) {
	feed := netcode.NewFeed(0)
	tracker := voice.NewTracker()
	src := &Source{
		Bots:     loadBots(t, 2),
		Feed:     feed,
		Voice:    tracker,
		Local:    "me",
		Interval: time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	var got []netcode.Snapshot
	for len(got) < 3 && time.Now().Before(deadline) {
		got = append(got, feed.Drain()...)
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}

	if len(got) < 3 {
		t.Fatalf("expected at least 3 snapshots, got %d", len(got))
	}
	for _, snap := range got {
		if snap.LocalIdentity != "me" || len(snap.RemotePlayers) != 2 {
			t.Fatalf("unexpected snapshot %+v", snap)
		}
	}
}

func TestSourceStopsOnScriptError(t *testing.T) {
	b, err := NewBots([]byte("bots := 5"), 1)
	if err != nil {
		t.Fatal(err)
	}
	src := &Source{Bots: b, Feed: netcode.NewFeed(0), Voice: voice.NewTracker(), Interval: time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := src.Run(ctx); !errors.Is(err, ErrBadScriptOutput) {
		t.Fatalf("expected ErrBadScriptOutput, got %v", err)
	}
}
