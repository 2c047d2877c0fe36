package prefabs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/milk9111/huddle/anim"
	"github.com/milk9111/huddle/atlas"
)

// useDir points disk overrides at dir for the duration of the test.
func useDir(t *testing.T, dir string) {
	t.Helper()
	prev := Dir
	Dir = dir
	t.Cleanup(func() { Dir = prev })
}

func TestEmbeddedCharacterSpecMatchesDefaults(t *testing.T) {
	useDir(t, t.TempDir())

	spec, err := LoadCharacterSpec()
	if err != nil {
		t.Fatalf("LoadCharacterSpec: %v", err)
	}
	if spec.Sheet.Layout != atlas.DefaultLayout() {
		t.Fatalf("unexpected layout %+v", spec.Sheet.Layout)
	}
	if spec.Sheet.Image != "character.png" || spec.Sheet.Scale != 0.5 || spec.Animation.Speed != 0.1 {
		t.Fatalf("unexpected sheet/animation settings %+v %+v", spec.Sheet, spec.Animation)
	}

	table, err := spec.ClipTable()
	if err != nil {
		t.Fatalf("ClipTable: %v", err)
	}
	want := atlas.DefaultClipTable()
	for _, s := range anim.States() {
		if len(table[s]) != len(want[s]) {
			t.Fatalf("%s: expected %v, got %v", s, want[s], table[s])
		}
		for i := range want[s] {
			if table[s][i] != want[s][i] {
				t.Fatalf("%s: expected %v, got %v", s, want[s], table[s])
			}
		}
	}
}

func TestDiskOverride(t *testing.T) {
	dir := t.TempDir()
	useDir(t, dir)

	cases := []struct {
		name    string
		body    string
		wantErr error
	}{
		{
			name:    "missing_clip",
			body:    "name: broken\nanimation:\n  clips:\n    idle_down: [0]\n",
			wantErr: atlas.ErrInvalidClipTable,
		},
		{
			name:    "bad_layout",
			body:    "name: broken\nsheet:\n  layout: {width: 256, height: 256, tile_width: 64, tile_height: 64, rows: 8, cols: 8}\n",
			wantErr: atlas.ErrInvalidLayout,
		},
		{
			name:    "infinite_speed",
			body:    "name: broken\nanimation:\n  speed: .inf\n",
			wantErr: atlas.ErrInvalidPlaybackSpeed,
		},
		{
			name:    "runaway_speed",
			body:    "name: broken\nanimation:\n  speed: 1e12\n",
			wantErr: atlas.ErrInvalidPlaybackSpeed,
		},
		{
			name:    "negative_speed",
			body:    "name: broken\nanimation:\n  speed: -0.1\n",
			wantErr: atlas.ErrInvalidPlaybackSpeed,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := os.WriteFile(filepath.Join(dir, CharacterFile), []byte(c.body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadCharacterSpec(); !errors.Is(err, c.wantErr) {
				t.Fatalf("expected %v, got %v", c.wantErr, err)
			}
		})
	}

	t.Run("defaults_when_sections_missing", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, CharacterFile), []byte("name: minimal\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		spec, err := LoadCharacterSpec()
		if err != nil {
			t.Fatalf("LoadCharacterSpec: %v", err)
		}
		if spec.Name != "minimal" || spec.Sheet.Layout != atlas.DefaultLayout() {
			t.Fatalf("unexpected spec %+v", spec)
		}
		if _, err := spec.ClipTable(); err != nil {
			t.Fatalf("default clip table: %v", err)
		}
	})
}

func TestSceneSpec(t *testing.T) {
	useDir(t, t.TempDir())

	spec, err := LoadSceneSpec()
	if err != nil {
		t.Fatalf("LoadSceneSpec: %v", err)
	}
	if spec.Spawn.X != 320 || spec.Spawn.Y != 240 {
		t.Fatalf("unexpected spawn %+v", spec.Spawn)
	}
	if spec.Bots.Script != "bots.tengo" || spec.FeedLimit != 64 {
		t.Fatalf("unexpected scene spec %+v", spec)
	}
	if _, err := LoadScript(spec.Bots.Script); err != nil {
		t.Fatalf("bots script should be embedded: %v", err)
	}
}

func TestCleanPaths(t *testing.T) {
	cases := []struct {
		in, prefab, script string
	}{
		{"character.yaml", "character.yaml", "scripts/character.yaml"},
		{"prefabs/scene.yaml", "scene.yaml", "scripts/scene.yaml"},
		{"scripts/bots.tengo", "scripts/bots.tengo", "scripts/bots.tengo"},
		{"prefabs/scripts/bots.tengo", "scripts/bots.tengo", "scripts/bots.tengo"},
	}
	for _, c := range cases {
		if got := cleanPrefabPath(c.in); got != c.prefab {
			t.Fatalf("cleanPrefabPath(%q) = %q, want %q", c.in, got, c.prefab)
		}
		if got := cleanScriptPath(c.in); got != c.script {
			t.Fatalf("cleanScriptPath(%q) = %q, want %q", c.in, got, c.script)
		}
	}
}

func TestWatcherReportsSpecWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, CharacterFile), []byte("name: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case name := <-w.Events:
		if name != CharacterFile {
			t.Fatalf("expected %s, got %s", CharacterFile, name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no watcher event")
	}
}
