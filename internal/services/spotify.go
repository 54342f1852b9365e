// Spotify implementation of [Service] on top of the zmb3/spotify client.
package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/time/rate"

	"github.com/the-judge/playlist-sync/internal/models"
	"github.com/the-judge/playlist-sync/internal/shared"
)

const (
	// playlistPageSize is the page size used when draining a playlist's
	// track list; 100 is the API maximum for playlist items.
	playlistPageSize = 100

	// addTracksBatchSize is the API maximum for a single add-tracks call.
	addTracksBatchSize = 100

	albumsEndpoint = "https://api.spotify.com/v1/me/albums"
)

// SpotifySession implements [Service] for one authorized Spotify account.
//
// All typed calls go through the zmb3 client; saving albums is issued
// directly against the Web API because the client library does not cover
// that endpoint. Requests share a rate limiter to stay polite.
type SpotifySession struct {
	username   string
	client     *spotify.Client
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSpotifySession builds a session from an OAuth2-authenticated
// [http.Client], as produced by the authorizer.
func NewSpotifySession(username string, httpClient *http.Client) *SpotifySession {
	return &SpotifySession{
		username:   username,
		client:     spotify.New(httpClient),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
	}
}

func (s *SpotifySession) Username() string { return s.username }

func (s *SpotifySession) wait(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return nil
}

// SavedTracks returns one page of saved track IDs from the user's library.
func (s *SpotifySession) SavedTracks(ctx context.Context, limit, offset int) ([]string, bool, error) {
	if err := s.wait(ctx); err != nil {
		return nil, false, err
	}

	page, err := s.client.CurrentUsersTracks(ctx, spotify.Limit(limit), spotify.Offset(offset))
	if err != nil {
		return nil, false, fmt.Errorf("%w: saved tracks for %s: %v", shared.ErrAPIRequest, s.username, err)
	}

	ids := make([]string, 0, len(page.Tracks))
	for _, saved := range page.Tracks {
		ids = append(ids, string(saved.ID))
	}

	return ids, page.Next != "", nil
}

// FollowedArtists returns one page of followed artist IDs. Spotify exposes
// this endpoint with cursor pagination rather than offsets.
func (s *SpotifySession) FollowedArtists(ctx context.Context, limit int, after string) ([]string, string, error) {
	if err := s.wait(ctx); err != nil {
		return nil, "", err
	}

	opts := []spotify.RequestOption{spotify.Limit(limit)}
	if after != "" {
		opts = append(opts, spotify.After(after))
	}

	page, err := s.client.CurrentUsersFollowedArtists(ctx, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("%w: followed artists for %s: %v", shared.ErrAPIRequest, s.username, err)
	}

	ids := make([]string, 0, len(page.Artists))
	for _, artist := range page.Artists {
		ids = append(ids, string(artist.ID))
	}

	next := ""
	if len(page.Artists) == limit {
		next = page.Cursor.After
	}

	return ids, next, nil
}

// SavedAlbums returns one page of saved album IDs from the user's library.
func (s *SpotifySession) SavedAlbums(ctx context.Context, limit, offset int) ([]string, bool, error) {
	if err := s.wait(ctx); err != nil {
		return nil, false, err
	}

	page, err := s.client.CurrentUsersAlbums(ctx, spotify.Limit(limit), spotify.Offset(offset))
	if err != nil {
		return nil, false, fmt.Errorf("%w: saved albums for %s: %v", shared.ErrAPIRequest, s.username, err)
	}

	ids := make([]string, 0, len(page.Albums))
	for _, saved := range page.Albums {
		ids = append(ids, string(saved.ID))
	}

	return ids, page.Next != "", nil
}

// Playlists returns one page of playlist descriptors from the user's library.
func (s *SpotifySession) Playlists(ctx context.Context, limit, offset int) ([]models.Playlist, bool, error) {
	if err := s.wait(ctx); err != nil {
		return nil, false, err
	}

	page, err := s.client.CurrentUsersPlaylists(ctx, spotify.Limit(limit), spotify.Offset(offset))
	if err != nil {
		return nil, false, fmt.Errorf("%w: playlists for %s: %v", shared.ErrAPIRequest, s.username, err)
	}

	playlists := make([]models.Playlist, 0, len(page.Playlists))
	for _, pl := range page.Playlists {
		playlists = append(playlists, descriptor(pl))
	}

	return playlists, page.Next != "", nil
}

// PlaylistTracks returns every track ID in the playlist, paging internally.
// Episode items and local files carry no track ID and are skipped.
func (s *SpotifySession) PlaylistTracks(ctx context.Context, playlistID string) ([]string, error) {
	var ids []string
	offset := 0

	for {
		if err := s.wait(ctx); err != nil {
			return nil, err
		}

		page, err := s.client.GetPlaylistItems(ctx, spotify.ID(playlistID),
			spotify.Limit(playlistPageSize), spotify.Offset(offset))
		if err != nil {
			return nil, fmt.Errorf("%w: tracks of playlist %s: %v", shared.ErrAPIRequest, playlistID, err)
		}

		for _, item := range page.Items {
			if item.Track.Track == nil || item.Track.Track.ID == "" {
				continue
			}
			ids = append(ids, string(item.Track.Track.ID))
		}

		if page.Next == "" {
			return ids, nil
		}
		offset += playlistPageSize
	}
}

// SaveTracks adds the given tracks to the user's library.
func (s *SpotifySession) SaveTracks(ctx context.Context, trackIDs ...string) error {
	if len(trackIDs) == 0 {
		return nil
	}
	if err := s.wait(ctx); err != nil {
		return err
	}
	if err := s.client.AddTracksToLibrary(ctx, toIDs(trackIDs)...); err != nil {
		return fmt.Errorf("%w: save tracks for %s: %v", shared.ErrAPIRequest, s.username, err)
	}
	return nil
}

// FollowArtists follows the given artists.
func (s *SpotifySession) FollowArtists(ctx context.Context, artistIDs ...string) error {
	if len(artistIDs) == 0 {
		return nil
	}
	if err := s.wait(ctx); err != nil {
		return err
	}
	if err := s.client.FollowArtist(ctx, toIDs(artistIDs)...); err != nil {
		return fmt.Errorf("%w: follow artists for %s: %v", shared.ErrAPIRequest, s.username, err)
	}
	return nil
}

// SaveAlbums adds the given albums to the user's library via a direct
// PUT /v1/me/albums call; the endpoint is not covered by the client library.
func (s *SpotifySession) SaveAlbums(ctx context.Context, albumIDs ...string) error {
	if len(albumIDs) == 0 {
		return nil
	}
	if err := s.wait(ctx); err != nil {
		return err
	}

	endpoint := albumsEndpoint + "?ids=" + url.QueryEscape(strings.Join(albumIDs, ","))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: save albums for %s: %v", shared.ErrAPIRequest, s.username, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: save albums for %s: status %d", shared.ErrAPIRequest, s.username, resp.StatusCode)
	}
	return nil
}

// FollowPlaylist creates a follow relationship with the given playlist.
func (s *SpotifySession) FollowPlaylist(ctx context.Context, playlistID string, public bool) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	if err := s.client.FollowPlaylist(ctx, spotify.ID(playlistID), public); err != nil {
		return fmt.Errorf("%w: follow playlist %s for %s: %v", shared.ErrAPIRequest, playlistID, s.username, err)
	}
	return nil
}

// CreatePlaylist creates an empty playlist under the session's user and
// returns the new playlist's ID.
func (s *SpotifySession) CreatePlaylist(ctx context.Context, name string, public bool) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	playlist, err := s.client.CreatePlaylistForUser(ctx, s.username, name, "", public, false)
	if err != nil {
		return "", fmt.Errorf("%w: create playlist %q for %s: %v", shared.ErrAPIRequest, name, s.username, err)
	}
	return string(playlist.ID), nil
}

// AddPlaylistTracks inserts tracks into the playlist in API-sized batches,
// preserving order.
func (s *SpotifySession) AddPlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	for _, batch := range chunk(trackIDs, addTracksBatchSize) {
		if err := s.wait(ctx); err != nil {
			return err
		}
		if _, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), toIDs(batch)...); err != nil {
			return fmt.Errorf("%w: add tracks to playlist %s for %s: %v", shared.ErrAPIRequest, playlistID, s.username, err)
		}
	}
	return nil
}

func descriptor(pl spotify.SimplePlaylist) models.Playlist {
	return models.Playlist{
		ID:     string(pl.ID),
		Name:   pl.Name,
		Owner:  pl.Owner.ID,
		Public: pl.IsPublic,
	}
}

func toIDs(ids []string) []spotify.ID {
	out := make([]spotify.ID, len(ids))
	for i, id := range ids {
		out[i] = spotify.ID(id)
	}
	return out
}

// chunk splits ids into consecutive slices of at most size elements.
func chunk(ids []string, size int) [][]string {
	if len(ids) == 0 {
		return nil
	}
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}
