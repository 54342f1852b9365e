// package services wraps the Spotify Web API behind the [Service] interface
// consumed by the sync engine.
//
// The paged read methods return an explicit continuation value (a hasMore
// flag for offset pagination, a cursor string for the followed-artists
// endpoint) so callers never need sentinel-seeded loops.
package services

import (
	"context"

	"github.com/the-judge/playlist-sync/internal/models"
)

// Service is an authorized session against a single Spotify account.
type Service interface {
	// Username returns the account the session is bound to.
	Username() string

	// SavedTracks returns one page of the account's saved track IDs together
	// with a flag indicating whether further pages exist.
	SavedTracks(ctx context.Context, limit, offset int) ([]string, bool, error)

	// FollowedArtists returns one page of followed artist IDs. The returned
	// cursor is passed to the next call; an empty cursor means exhaustion.
	FollowedArtists(ctx context.Context, limit int, after string) ([]string, string, error)

	// SavedAlbums returns one page of the account's saved album IDs.
	SavedAlbums(ctx context.Context, limit, offset int) ([]string, bool, error)

	// Playlists returns one page of playlist descriptors from the account's
	// library, both owned and followed.
	Playlists(ctx context.Context, limit, offset int) ([]models.Playlist, bool, error)

	// PlaylistTracks returns every track ID in the given playlist, paging
	// internally until exhaustion.
	PlaylistTracks(ctx context.Context, playlistID string) ([]string, error)

	// SaveTracks adds tracks to the account's library.
	SaveTracks(ctx context.Context, trackIDs ...string) error

	// FollowArtists follows artists on behalf of the account.
	FollowArtists(ctx context.Context, artistIDs ...string) error

	// SaveAlbums adds albums to the account's library.
	SaveAlbums(ctx context.Context, albumIDs ...string) error

	// FollowPlaylist creates a follow relationship with a foreign playlist.
	FollowPlaylist(ctx context.Context, playlistID string, public bool) error

	// CreatePlaylist creates an empty playlist owned by the account and
	// returns its ID.
	CreatePlaylist(ctx context.Context, name string, public bool) (string, error)

	// AddPlaylistTracks inserts tracks into a playlist owned by the account.
	AddPlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error
}
