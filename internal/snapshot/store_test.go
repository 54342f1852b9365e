package snapshot

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/the-judge/playlist-sync/internal/models"
)

func TestStore(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "nested", "data"))

		in := []string{"t1", "t2", "t3"}
		if err := store.Save(TracksName, in); err != nil {
			t.Fatalf("failed to save snapshot: %v", err)
		}

		var out []string
		found, err := store.Load(TracksName, &out)
		if err != nil {
			t.Fatalf("failed to load snapshot: %v", err)
		}
		if !found {
			t.Fatal("expected snapshot to be found")
		}
		if !reflect.DeepEqual(in, out) {
			t.Errorf("round trip mismatch: saved %v, loaded %v", in, out)
		}
	})

	t.Run("missing snapshot is absent not an error", func(t *testing.T) {
		store := NewStore(t.TempDir())

		var out []string
		found, err := store.Load(TracksName, &out)
		if err != nil {
			t.Fatalf("unexpected error for missing snapshot: %v", err)
		}
		if found {
			t.Error("missing snapshot reported as found")
		}
		if out != nil {
			t.Errorf("missing snapshot modified output: %v", out)
		}
	})

	t.Run("save overwrites existing snapshot", func(t *testing.T) {
		store := NewStore(t.TempDir())

		if err := store.Save(AlbumsName, []string{"old"}); err != nil {
			t.Fatalf("failed to save snapshot: %v", err)
		}
		if err := store.Save(AlbumsName, []string{"new1", "new2"}); err != nil {
			t.Fatalf("failed to overwrite snapshot: %v", err)
		}

		var out []string
		if _, err := store.Load(AlbumsName, &out); err != nil {
			t.Fatalf("failed to load snapshot: %v", err)
		}
		if !reflect.DeepEqual(out, []string{"new1", "new2"}) {
			t.Errorf("expected overwritten contents, got %v", out)
		}
	})

	t.Run("corrupt snapshot is an error", func(t *testing.T) {
		dir := t.TempDir()
		store := NewStore(dir)

		if err := os.WriteFile(filepath.Join(dir, "tracks.p"), []byte("{not json"), 0644); err != nil {
			t.Fatalf("failed to write corrupt file: %v", err)
		}

		var out []string
		if _, err := store.Load(TracksName, &out); err == nil {
			t.Error("expected error for corrupt snapshot")
		}
	})

	t.Run("library round trip", func(t *testing.T) {
		store := NewStore(t.TempDir())

		lib := &models.Library{
			Tracks:  []string{"t1"},
			Artists: []string{"a1", "a2"},
			Albums:  []string{"al1"},
			Playlists: []models.Playlist{
				{ID: "p1", Name: "Mix", Owner: "alice", Public: true},
			},
		}
		if err := store.SaveLibrary(lib); err != nil {
			t.Fatalf("failed to save library: %v", err)
		}

		for _, name := range []string{"tracks", "artists", "albums", "playlists"} {
			if _, err := os.Stat(filepath.Join(store.dir, name+".p")); err != nil {
				t.Errorf("expected snapshot file %s.p: %v", name, err)
			}
		}

		got, err := store.LoadLibrary()
		if err != nil {
			t.Fatalf("failed to load library: %v", err)
		}
		if !reflect.DeepEqual(lib, got) {
			t.Errorf("library round trip mismatch: %+v != %+v", lib, got)
		}
	})

	t.Run("empty library loads as empty lists", func(t *testing.T) {
		store := NewStore(t.TempDir())

		lib, err := store.LoadLibrary()
		if err != nil {
			t.Fatalf("failed to load empty library: %v", err)
		}
		if lib.Total() != 0 {
			t.Errorf("expected empty library, got %d items", lib.Total())
		}
	})
}
