package scene

import (
	"fmt"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/time/rate"

	"github.com/milk9111/huddle/character"
	"github.com/milk9111/huddle/ecs"
	"github.com/milk9111/huddle/ecs/system"
	"github.com/milk9111/huddle/netcode"
	"github.com/milk9111/huddle/player"
	"github.com/milk9111/huddle/voice"
)

// DeviceScale is the ratio of render surface pixels to viewport pixels.
const DeviceScale = 2

// DefaultLocalIdentity labels the local character until a snapshot names it.
const DefaultLocalIdentity = "you"

// errorLogInterval bounds how often one participant's render errors are
// logged; a broken participant fails on every tick.
const errorLogInterval = 2 * time.Second

type Config struct {
	Character     character.Options
	LocalIdentity string
}

type remote struct {
	visual    *character.Visual
	player    netcode.RemotePlayer
	loadNoted bool
}

// Composer owns the scene: one local character driven by the controller and
// one character per remote participant, reconciled from snapshots.
type Composer struct {
	world *ecs.World
	feed  *netcode.Feed
	voice *voice.Tracker
	local *player.Controller
	opts  character.Options

	localIdentity  string
	localVisual    *character.Visual
	localLoadNoted bool

	remotes map[string]*remote
	order   []string
	limits  map[string]*rate.Limiter

	width, height int
}

// New mounts the local character and returns a composer with an empty
// roster.
func New(feed *netcode.Feed, tracker *voice.Tracker, local *player.Controller, cfg Config) (*Composer, error) {
	if local == nil {
		return nil, fmt.Errorf("scene: nil local controller")
	}
	identity := cfg.LocalIdentity
	if identity == "" {
		identity = DefaultLocalIdentity
	}

	w := ecs.NewWorld()
	w.AddSystem(system.NewAnimationSystem())
	w.AddSystem(system.NewRenderSystem())

	v, err := character.Mount(w, identity, cfg.Character)
	if err != nil {
		return nil, fmt.Errorf("scene: mount local: %w", err)
	}

	return &Composer{
		world:         w,
		feed:          feed,
		voice:         tracker,
		local:         local,
		opts:          cfg.Character,
		localIdentity: identity,
		localVisual:   v,
		remotes:       make(map[string]*remote),
		limits:        make(map[string]*rate.Limiter),
	}, nil
}

// Layout records the viewport and sizes the render surface to it at
// DeviceScale. The roster is untouched.
func (c *Composer) Layout(outsideWidth, outsideHeight int) (int, int) {
	c.width, c.height = outsideWidth, outsideHeight
	return outsideWidth * DeviceScale, outsideHeight * DeviceScale
}

// Viewport returns the size last passed to Layout.
func (c *Composer) Viewport() (int, int) {
	return c.width, c.height
}

// SetCharacterOptions changes the options used for characters mounted from
// now on. Characters already on screen keep their atlas.
func (c *Composer) SetCharacterOptions(opts character.Options) {
	c.opts = opts
}

// Apply reconciles the remote roster with snap. New identities get a fresh
// character, known ones keep theirs, and missing ones are released along
// with their speaking flag and log throttle. Only the
// first entry of a repeated identity counts, and the local identity is never
// drawn as a remote.
func (c *Composer) Apply(snap netcode.Snapshot) {
	if snap.LocalIdentity != "" {
		c.localIdentity = snap.LocalIdentity
	}

	seen := make(map[string]bool, len(snap.RemotePlayers))
	order := make([]string, 0, len(snap.RemotePlayers))
	for _, p := range snap.RemotePlayers {
		if p.Identity == c.localIdentity || seen[p.Identity] {
			continue
		}
		seen[p.Identity] = true

		if r, ok := c.remotes[p.Identity]; ok {
			r.player = p
			order = append(order, p.Identity)
			continue
		}

		v, err := character.Mount(c.world, p.Identity, c.opts)
		if err != nil {
			c.report(p.Identity, err)
			continue
		}
		c.remotes[p.Identity] = &remote{visual: v, player: p}
		order = append(order, p.Identity)
	}

	for identity, r := range c.remotes {
		if seen[identity] {
			continue
		}
		r.visual.Release()
		delete(c.remotes, identity)
		c.voice.Forget(identity)
	}
	for identity := range c.limits {
		if !seen[identity] && identity != c.localIdentity {
			delete(c.limits, identity)
		}
	}
	c.order = order
}

// Update applies queued snapshots in arrival order, renders every character
// and advances the world. One participant failing to render never stops the
// others.
func (c *Composer) Update() {
	for _, snap := range c.feed.Drain() {
		c.Apply(snap)
	}

	c.isolate(c.localIdentity, func() error {
		speaking := c.local.Speaking || c.voice.Speaking(c.localIdentity)
		if err := c.localVisual.Render(c.local.Position, c.localIdentity, c.local.State, speaking); err != nil {
			return err
		}
		if err := c.localVisual.LoadErr(); err != nil && !c.localLoadNoted {
			c.localLoadNoted = true
			return err
		}
		return nil
	})

	for _, identity := range c.order {
		r := c.remotes[identity]
		c.isolate(identity, func() error {
			p := r.player
			if err := r.visual.Render(p.Position, p.Identity, p.Animation, c.voice.Speaking(p.Identity)); err != nil {
				return err
			}
			if err := r.visual.LoadErr(); err != nil && !r.loadNoted {
				r.loadNoted = true
				return err
			}
			return nil
		})
	}

	c.world.Update()
}

// isolate runs fn for one participant, logging its error and, outside strict
// mode, recovering its panic.
func (c *Composer) isolate(identity string, fn func() error) {
	if !c.opts.Strict {
		defer func() {
			if r := recover(); r != nil {
				c.report(identity, fmt.Errorf("panic: %v", r))
			}
		}()
	}
	if err := fn(); err != nil {
		c.report(identity, err)
	}
}

func (c *Composer) report(identity string, err error) {
	l, ok := c.limits[identity]
	if !ok {
		l = rate.NewLimiter(rate.Every(errorLogInterval), 1)
		c.limits[identity] = l
	}
	if l.Allow() {
		log.Printf("scene: %q: %v", identity, err)
	}
}

// Draw paints the scene onto the render surface.
func (c *Composer) Draw(screen *ebiten.Image) {
	c.world.Draw(screen, DeviceScale)
}

// Identities returns the remote identities in the order of the latest
// snapshot.
func (c *Composer) Identities() []string {
	return append([]string(nil), c.order...)
}

// Visual returns the character for a remote identity.
func (c *Composer) Visual(identity string) (*character.Visual, bool) {
	r, ok := c.remotes[identity]
	if !ok {
		return nil, false
	}
	return r.visual, true
}

func (c *Composer) LocalVisual() *character.Visual { return c.localVisual }

func (c *Composer) LocalIdentity() string { return c.localIdentity }

func (c *Composer) World() *ecs.World { return c.world }

// Close releases every character.
func (c *Composer) Close() {
	for identity, r := range c.remotes {
		r.visual.Release()
		delete(c.remotes, identity)
	}
	c.order = nil
	c.localVisual.Release()
}
