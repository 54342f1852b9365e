// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"

	"github.com/the-judge/playlist-sync/internal/models"
)

// MockService is a test double for [services.Service]: reads serve the
// backing slices in a single page and every mutation is recorded in order.
type MockService struct {
	User          string
	Tracks        []string
	Artists       []string
	Albums        []string
	PlaylistItems []models.Playlist
	// TracksByPlaylist backs PlaylistTracks lookups.
	TracksByPlaylist map[string][]string

	SavedTrackIDs     []string
	FollowedArtistIDs []string
	SavedAlbumIDs     []string
	FollowedPlaylists []string
	Created           []models.Playlist
	Added             map[string][]string

	// Err fails every call when set.
	Err error
}

func (m *MockService) Username() string { return m.User }

func (m *MockService) SavedTracks(ctx context.Context, limit, offset int) ([]string, bool, error) {
	if m.Err != nil {
		return nil, false, m.Err
	}
	if offset > 0 {
		return nil, false, nil
	}
	return m.Tracks, false, nil
}

func (m *MockService) FollowedArtists(ctx context.Context, limit int, after string) ([]string, string, error) {
	if m.Err != nil {
		return nil, "", m.Err
	}
	if after != "" {
		return nil, "", nil
	}
	return m.Artists, "", nil
}

func (m *MockService) SavedAlbums(ctx context.Context, limit, offset int) ([]string, bool, error) {
	if m.Err != nil {
		return nil, false, m.Err
	}
	if offset > 0 {
		return nil, false, nil
	}
	return m.Albums, false, nil
}

func (m *MockService) Playlists(ctx context.Context, limit, offset int) ([]models.Playlist, bool, error) {
	if m.Err != nil {
		return nil, false, m.Err
	}
	if offset > 0 {
		return nil, false, nil
	}
	return m.PlaylistItems, false, nil
}

func (m *MockService) PlaylistTracks(ctx context.Context, playlistID string) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	tracks, ok := m.TracksByPlaylist[playlistID]
	if !ok {
		return nil, fmt.Errorf("unknown playlist %s", playlistID)
	}
	return tracks, nil
}

func (m *MockService) SaveTracks(ctx context.Context, trackIDs ...string) error {
	if m.Err != nil {
		return m.Err
	}
	m.SavedTrackIDs = append(m.SavedTrackIDs, trackIDs...)
	return nil
}

func (m *MockService) FollowArtists(ctx context.Context, artistIDs ...string) error {
	if m.Err != nil {
		return m.Err
	}
	m.FollowedArtistIDs = append(m.FollowedArtistIDs, artistIDs...)
	return nil
}

func (m *MockService) SaveAlbums(ctx context.Context, albumIDs ...string) error {
	if m.Err != nil {
		return m.Err
	}
	m.SavedAlbumIDs = append(m.SavedAlbumIDs, albumIDs...)
	return nil
}

func (m *MockService) FollowPlaylist(ctx context.Context, playlistID string, public bool) error {
	if m.Err != nil {
		return m.Err
	}
	m.FollowedPlaylists = append(m.FollowedPlaylists, playlistID)
	return nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, name string, public bool) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	id := fmt.Sprintf("created-%d", len(m.Created)+1)
	m.Created = append(m.Created, models.Playlist{ID: id, Name: name, Owner: m.User, Public: public})
	return id, nil
}

func (m *MockService) AddPlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if m.Err != nil {
		return m.Err
	}
	if m.Added == nil {
		m.Added = map[string][]string{}
	}
	m.Added[playlistID] = append(m.Added[playlistID], trackIDs...)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
