package netsim

import (
	"context"
	"errors"
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/tidwall/sjson"

	"github.com/milk9111/huddle/common"
)

var ErrBadScriptOutput = errors.New("netsim: bad script output")

// Bot is one simulated participant as produced by the bot script.
type Bot struct {
	Identity  string
	Position  common.Position
	Animation string
	Speaking  bool
}

// Bots runs a tengo script that places count participants for a given tick.
// The script reads the globals tick and count and must leave an array of
// maps in bots.
type Bots struct {
	compiled *tengo.Compiled
	count    int
	tick     int64
}

func NewBots(src []byte, count int) (*Bots, error) {
	if count < 0 {
		count = 0
	}
	script := tengo.NewScript(src)
	_ = script.Add("tick", 0)
	_ = script.Add("count", count)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("netsim: compile bots: %w", err)
	}
	return &Bots{compiled: compiled, count: count}, nil
}

// Tick returns the tick the next Step will simulate.
func (b *Bots) Tick() int64 { return b.tick }

// Step runs the script for the current tick and advances it.
func (b *Bots) Step(ctx context.Context) ([]Bot, error) {
	if err := b.compiled.Set("tick", b.tick); err != nil {
		return nil, err
	}
	if err := b.compiled.RunContext(ctx); err != nil {
		return nil, fmt.Errorf("netsim: run bots at tick %d: %w", b.tick, err)
	}
	b.tick++

	v := b.compiled.Get("bots")
	if v == nil || v.IsUndefined() {
		return nil, fmt.Errorf("%w: bots is undefined", ErrBadScriptOutput)
	}
	raw, ok := v.Value().([]any)
	if !ok {
		return nil, fmt.Errorf("%w: bots is %s, not an array", ErrBadScriptOutput, v.ValueType())
	}

	out := make([]Bot, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: bots[%d] is not a map", ErrBadScriptOutput, i)
		}
		identity, _ := m["identity"].(string)
		animation, _ := m["animation"].(string)
		speaking, _ := m["speaking"].(bool)
		out = append(out, Bot{
			Identity:  identity,
			Position:  common.Position{X: number(m["x"]), Y: number(m["y"])},
			Animation: animation,
			Speaking:  speaking,
		})
	}
	return out, nil
}

func number(v any) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

// Encode writes bots in the transport's snapshot JSON form.
func Encode(localIdentity string, bots []Bot) ([]byte, error) {
	data, err := sjson.SetBytes([]byte(`{}`), "localIdentity", localIdentity)
	if err != nil {
		return nil, err
	}
	data, err = sjson.SetRawBytes(data, "remotePlayers", []byte(`[]`))
	if err != nil {
		return nil, err
	}
	for _, b := range bots {
		p := []byte(`{}`)
		if p, err = sjson.SetBytes(p, "identity", b.Identity); err != nil {
			return nil, err
		}
		if p, err = sjson.SetBytes(p, "position.x", b.Position.X); err != nil {
			return nil, err
		}
		if p, err = sjson.SetBytes(p, "position.y", b.Position.Y); err != nil {
			return nil, err
		}
		if p, err = sjson.SetBytes(p, "animation", b.Animation); err != nil {
			return nil, err
		}
		if data, err = sjson.SetRawBytes(data, "remotePlayers.-1", p); err != nil {
			return nil, err
		}
	}
	return data, nil
}
