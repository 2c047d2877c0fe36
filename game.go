package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/milk9111/huddle/assets"
	"github.com/milk9111/huddle/character"
	"github.com/milk9111/huddle/netcode"
	"github.com/milk9111/huddle/netsim"
	"github.com/milk9111/huddle/player"
	"github.com/milk9111/huddle/prefabs"
	"github.com/milk9111/huddle/scene"
	"github.com/milk9111/huddle/voice"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

var background = color.RGBA{R: 0x2b, G: 0x3a, B: 0x2f, A: 0xff}

type Options struct {
	Debug         bool
	Watch         bool
	Bots          int
	LocalIdentity string
}

type Game struct {
	frames int
	opts   Options

	scene    *prefabs.SceneSpec
	feed     *netcode.Feed
	voice    *voice.Tracker
	local    *player.Controller
	composer *scene.Composer

	watcher  *prefabs.Watcher
	stopBots context.CancelFunc
	botsDone chan struct{}
}

func NewGame(opts Options) (*Game, error) {
	sceneSpec, err := prefabs.LoadSceneSpec()
	if err != nil {
		return nil, err
	}
	charOpts, err := loadCharacterOptions(opts.Debug)
	if err != nil {
		return nil, err
	}

	g := &Game{
		opts:  opts,
		scene: sceneSpec,
		feed:  netcode.NewFeed(sceneSpec.FeedLimit),
		voice: voice.NewTracker(),
		local: player.NewController(sceneSpec.Spawn, sceneSpec.MoveSpeed),
	}
	g.composer, err = scene.New(g.feed, g.voice, g.local, scene.Config{
		Character:     charOpts,
		LocalIdentity: opts.LocalIdentity,
	})
	if err != nil {
		return nil, err
	}

	if opts.Bots > 0 {
		if err := g.startBots(); err != nil {
			g.Close()
			return nil, err
		}
	}
	if opts.Watch {
		w, err := prefabs.NewWatcher(prefabs.Dir, filepath.Join(prefabs.Dir, "scripts"))
		if err != nil {
			log.Printf("game: watch prefabs: %v", err)
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

func loadCharacterOptions(strict bool) (character.Options, error) {
	spec, err := prefabs.LoadCharacterSpec()
	if err != nil {
		return character.Options{}, err
	}
	clips, err := spec.ClipTable()
	if err != nil {
		return character.Options{}, err
	}
	return character.Options{
		Layout:        spec.Sheet.Layout,
		Clips:         clips,
		Loader:        assets.SheetLoader(spec.Sheet.Image),
		PlaybackSpeed: spec.Animation.Speed,
		SheetScale:    spec.Sheet.Scale,
		Strict:        strict,
	}, nil
}

func (g *Game) startBots() error {
	src, err := prefabs.LoadScript(g.scene.Bots.Script)
	if err != nil {
		return fmt.Errorf("game: load bots script: %w", err)
	}
	bots, err := netsim.NewBots(src, g.opts.Bots)
	if err != nil {
		return err
	}
	source := &netsim.Source{
		Bots:     bots,
		Feed:     g.feed,
		Voice:    g.voice,
		Local:    g.composer.LocalIdentity(),
		Interval: time.Duration(g.scene.Bots.IntervalMS) * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	g.stopBots, g.botsDone = cancel, done
	go func() {
		defer close(done)
		if err := source.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("game: bots stopped: %v", err)
		}
	}()
	return nil
}

func (g *Game) haltBots() {
	if g.stopBots == nil {
		return
	}
	g.stopBots()
	<-g.botsDone
	g.stopBots, g.botsDone = nil, nil
}

func (g *Game) Update() error {
	g.frames++

	g.reloadPrefabs()
	g.local.Update()
	g.composer.Update()

	return nil
}

// reloadPrefabs applies prefab edits reported by the watcher. Characters
// already on screen keep their atlas; new ones use the new table.
func (g *Game) reloadPrefabs() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(name)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("game: watcher: %v", err)
		default:
			return
		}
	}
}

func (g *Game) reload(name string) {
	switch {
	case name == prefabs.CharacterFile:
		opts, err := loadCharacterOptions(g.opts.Debug)
		if err != nil {
			log.Printf("game: reload %s: %v", name, err)
			return
		}
		g.composer.SetCharacterOptions(opts)
		log.Printf("game: reloaded %s", name)
	case name == filepath.Base(g.scene.Bots.Script) && g.stopBots != nil:
		g.haltBots()
		if err := g.startBots(); err != nil {
			log.Printf("game: reload %s: %v", name, err)
			return
		}
		log.Printf("game: restarted bots from %s", name)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	g.composer.Draw(screen)

	if g.opts.Debug {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("Frames: %d    FPS: %.2f    Remotes: %d    Dropped: %d",
			g.frames, ebiten.ActualFPS(), len(g.composer.Identities()), g.feed.Dropped()))
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.composer.Layout(outsideWidth, outsideHeight)
}

// Close stops background producers and releases every character.
func (g *Game) Close() {
	g.haltBots()
	if g.watcher != nil {
		_ = g.watcher.Close()
		g.watcher = nil
	}
	g.composer.Close()
}
