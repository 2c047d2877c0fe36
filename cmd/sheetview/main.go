package main

import (
	"flag"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/huddle/anim"
	"github.com/milk9111/huddle/assets"
	"github.com/milk9111/huddle/character"
	"github.com/milk9111/huddle/common"
	"github.com/milk9111/huddle/ecs"
	"github.com/milk9111/huddle/ecs/system"
	"github.com/milk9111/huddle/prefabs"
)

const (
	viewWidth  = 640
	viewHeight = 360
	scale      = 2
)

// sheetView shows one character per animation state so a sheet and its clip
// table can be checked by eye.
type sheetView struct {
	world    *ecs.World
	visuals  []*character.Visual
	speaking bool
}

func newSheetView(opts character.Options) (*sheetView, error) {
	w := ecs.NewWorld()
	w.AddSystem(system.NewAnimationSystem())
	w.AddSystem(system.NewRenderSystem())

	v := &sheetView{world: w}
	for _, s := range anim.States() {
		c, err := character.Mount(w, s.String(), opts)
		if err != nil {
			v.release()
			return nil, err
		}
		v.visuals = append(v.visuals, c)
	}
	return v, nil
}

func (v *sheetView) release() {
	for _, c := range v.visuals {
		c.Release()
	}
}

func (v *sheetView) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyV) {
		v.speaking = !v.speaking
	}
	for i, s := range anim.States() {
		col, row := i%4, i/4
		pos := common.Position{X: 80 + float64(col)*160, Y: 150 + float64(row)*160}
		if err := v.visuals[i].Render(pos, s.String(), s, v.speaking); err != nil {
			return err
		}
		if err := v.visuals[i].LoadErr(); err != nil {
			return err
		}
	}
	v.world.Update()
	return nil
}

func (v *sheetView) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0x20, 0x20, 0x20, 0xff})
	v.world.Draw(screen, scale)
}

func (v *sheetView) Layout(int, int) (int, int) {
	return viewWidth * scale, viewHeight * scale
}

func main() {
	sheet := flag.String("sheet", "", "assets path of the sprite sheet to view (defaults to the one in character.yaml)")
	flag.Parse()

	spec, err := prefabs.LoadCharacterSpec()
	if err != nil {
		log.Fatal(err)
	}
	clips, err := spec.ClipTable()
	if err != nil {
		log.Fatal(err)
	}
	path := spec.Sheet.Image
	if *sheet != "" {
		path = *sheet
	}

	view, err := newSheetView(character.Options{
		Layout:        spec.Sheet.Layout,
		Clips:         clips,
		Loader:        assets.SheetLoader(path),
		PlaybackSpeed: spec.Animation.Speed,
		SheetScale:    spec.Sheet.Scale,
		Strict:        true,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer view.release()

	ebiten.SetWindowSize(viewWidth, viewHeight)
	ebiten.SetWindowTitle("sheetview: " + path)
	if err := ebiten.RunGame(view); err != nil {
		log.Fatal(err)
	}
}
