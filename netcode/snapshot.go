package netcode

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/milk9111/huddle/anim"
	"github.com/milk9111/huddle/common"
)

var ErrMalformedSnapshot = errors.New("netcode: malformed snapshot")

// RemotePlayer is one remote participant as reported by the transport.
type RemotePlayer struct {
	Identity  string
	Position  common.Position
	Animation anim.State
}

// Snapshot is one update from the transport. It is read-only to consumers.
type Snapshot struct {
	LocalIdentity string
	RemotePlayers []RemotePlayer
}

// ParseSnapshot decodes the transport's JSON form:
//
//	{"localIdentity": "...", "remotePlayers": [{"identity": "...",
//	  "position": {"x": 0, "y": 0}, "animation": "walk_down"}]}
//
// An unknown animation name fails the whole snapshot so producer bugs are
// not masked.
func ParseSnapshot(data []byte) (Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return Snapshot{}, fmt.Errorf("%w: invalid json", ErrMalformedSnapshot)
	}
	root := gjson.ParseBytes(data)

	snap := Snapshot{LocalIdentity: root.Get("localIdentity").String()}
	players := root.Get("remotePlayers")
	if players.Exists() && !players.IsArray() {
		return Snapshot{}, fmt.Errorf("%w: remotePlayers is not an array", ErrMalformedSnapshot)
	}

	var parseErr error
	idx := -1
	players.ForEach(func(_, p gjson.Result) bool {
		idx++
		identity := p.Get("identity")
		if identity.Type != gjson.String || identity.String() == "" {
			parseErr = fmt.Errorf("%w: remotePlayers[%d] has no identity", ErrMalformedSnapshot, idx)
			return false
		}
		state, err := anim.Parse(p.Get("animation").String())
		if err != nil {
			parseErr = fmt.Errorf("netcode: remote player %q: %w", identity.String(), err)
			return false
		}
		snap.RemotePlayers = append(snap.RemotePlayers, RemotePlayer{
			Identity: identity.String(),
			Position: common.Position{
				X: p.Get("position.x").Float(),
				Y: p.Get("position.y").Float(),
			},
			Animation: state,
		})
		return true
	})
	if parseErr != nil {
		return Snapshot{}, parseErr
	}
	return snap, nil
}
