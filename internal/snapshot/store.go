// package snapshot persists the collected library lists between the read and
// write phases so each phase can run as a separate invocation.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/the-judge/playlist-sync/internal/models"
)

// Snapshot file names under the data directory.
const (
	TracksName    = "tracks"
	ArtistsName   = "artists"
	AlbumsName    = "albums"
	PlaylistsName = "playlists"
)

// Store reads and writes named snapshot files under a data directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir. The directory is created lazily on
// the first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".p")
}

// Save serializes v to <dir>/<name>.p, creating the directory tree if absent.
// An existing snapshot of the same name is overwritten.
func (s *Store) Save(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", name, err)
	}

	if err := os.WriteFile(s.path(name), data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", name, err)
	}

	return nil
}

// Load deserializes <dir>/<name>.p into out. A missing file is not an
// error: Load reports found=false and leaves out untouched, so a write-only
// run degrades to "nothing to write".
func (s *Store) Load(name string, out any) (bool, error) {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read snapshot %s: %w", name, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to decode snapshot %s: %w", name, err)
	}

	return true, nil
}

// SaveLibrary writes the four per-kind snapshot files for the collected
// library.
func (s *Store) SaveLibrary(lib *models.Library) error {
	for _, part := range []struct {
		name string
		v    any
	}{
		{TracksName, lib.Tracks},
		{ArtistsName, lib.Artists},
		{AlbumsName, lib.Albums},
		{PlaylistsName, lib.Playlists},
	} {
		if err := s.Save(part.name, part.v); err != nil {
			return err
		}
	}
	return nil
}

// LoadLibrary reads whichever snapshot files exist into a Library. Missing
// files leave the corresponding list empty.
func (s *Store) LoadLibrary() (*models.Library, error) {
	lib := &models.Library{}

	if _, err := s.Load(TracksName, &lib.Tracks); err != nil {
		return nil, err
	}
	if _, err := s.Load(ArtistsName, &lib.Artists); err != nil {
		return nil, err
	}
	if _, err := s.Load(AlbumsName, &lib.Albums); err != nil {
		return nil, err
	}
	if _, err := s.Load(PlaylistsName, &lib.Playlists); err != nil {
		return nil, err
	}

	return lib, nil
}
