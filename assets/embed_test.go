package assets

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/milk9111/huddle/atlas"
)

func TestCharacterSheetMatchesLayout(t *testing.T) {
	img, err := DecodeImage("character.png")
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	l := atlas.DefaultLayout()
	if b := img.Bounds(); b.Dx() != l.Width || b.Dy() != l.Height {
		t.Fatalf("expected %dx%d sheet, got %v", l.Width, l.Height, b)
	}
}

func TestDecodeImageErrors(t *testing.T) {
	prev := Dir
	Dir = t.TempDir()
	t.Cleanup(func() { Dir = prev })

	if _, err := DecodeImage("missing.png"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if err := os.WriteFile(Dir+"/broken.png", []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeImage("broken.png"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSheetLoaderHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sheet, err := SheetLoader("character.png")(ctx)
	if !errors.Is(err, context.Canceled) || sheet != nil {
		t.Fatalf("expected cancellation, got sheet=%v err=%v", sheet, err)
	}
}

func TestCleanAssetPath(t *testing.T) {
	cases := map[string]string{
		"":                         "",
		"character.png":            "character.png",
		"assets/character.png":     "character.png",
		"/src/assets/sub/a.png":    "sub/a.png",
		"/elsewhere/character.png": "character.png",
	}
	for in, want := range cases {
		if got := cleanAssetPath(in); got != want {
			t.Fatalf("cleanAssetPath(%q) = %q, want %q", in, got, want)
		}
	}
}
