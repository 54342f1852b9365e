// package tasks implements the two phases of a library sync.
//
// The core abstraction is SyncEngine: Collect drains every paginated list
// endpoint of the source accounts into a [models.Library], and Write replays
// a Library into the destination accounts. Operations emit progress updates
// via channels for non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"fmt"
	"sort"

	"github.com/the-judge/playlist-sync/internal/models"
	"github.com/the-judge/playlist-sync/internal/services"
	"github.com/the-judge/playlist-sync/internal/shared"
)

// defaultPageSize is the page size requested from every list endpoint.
const defaultPageSize = 20

// WriteResult counts the mutations issued during the write phase.
type WriteResult struct {
	TracksSaved       int // save-track calls issued
	ArtistsFollowed   int // follow-artist calls issued
	AlbumsSaved       int // save-album calls issued
	PlaylistsFollowed int // foreign playlists followed
	PlaylistsCopied   int // owned playlists recreated with their tracks
}

// SyncEngine defines the two phases of a sync run.
type SyncEngine interface {
	// Collect drains the libraries of all source accounts into a Library.
	// Results are concatenated across accounts without deduplication.
	Collect(ctx context.Context, sources map[string]services.Service, progress chan<- ProgressUpdate) (*models.Library, error)

	// Write replays a collected Library into every destination account.
	// The sources map is consulted to distinguish owned playlists (copied)
	// from foreign ones (followed) and to fetch owned playlists' tracks.
	Write(ctx context.Context, sources, destinations map[string]services.Service, lib *models.Library, progress chan<- ProgressUpdate) (*WriteResult, error)
}

// LibraryEngine implements SyncEngine with sequential, per-account paging.
type LibraryEngine struct {
	pageSize int
}

// NewLibraryEngine creates a LibraryEngine. A non-positive pageSize falls
// back to the default.
func NewLibraryEngine(pageSize int) *LibraryEngine {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &LibraryEngine{pageSize: pageSize}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *LibraryEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// usernames returns the map keys in deterministic order so runs are
// reproducible regardless of map iteration.
func usernames(group map[string]services.Service) []string {
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Collect drains saved tracks, followed artists, saved albums and playlists
// from every source account.
func (e *LibraryEngine) Collect(ctx context.Context, sources map[string]services.Service, progress chan<- ProgressUpdate) (*models.Library, error) {
	lib := &models.Library{}

	for _, username := range usernames(sources) {
		svc := sources[username]

		e.sendProgress(progress, collectUpdate(CollectTracks, username))
		tracks, err := e.collectOffsetPaged(ctx, svc.SavedTracks)
		if err != nil {
			return nil, fmt.Errorf("collecting tracks of %s: %w", username, err)
		}
		lib.Tracks = append(lib.Tracks, tracks...)

		e.sendProgress(progress, collectUpdate(CollectArtists, username))
		artists, err := e.collectArtists(ctx, svc)
		if err != nil {
			return nil, fmt.Errorf("collecting artists of %s: %w", username, err)
		}
		lib.Artists = append(lib.Artists, artists...)

		e.sendProgress(progress, collectUpdate(CollectAlbums, username))
		albums, err := e.collectOffsetPaged(ctx, svc.SavedAlbums)
		if err != nil {
			return nil, fmt.Errorf("collecting albums of %s: %w", username, err)
		}
		lib.Albums = append(lib.Albums, albums...)

		e.sendProgress(progress, collectUpdate(CollectPlaylists, username))
		playlists, err := e.collectPlaylists(ctx, svc)
		if err != nil {
			return nil, fmt.Errorf("collecting playlists of %s: %w", username, err)
		}
		lib.Playlists = append(lib.Playlists, playlists...)
	}

	return lib, nil
}

// collectOffsetPaged walks an offset-paginated ID endpoint from offset zero
// until the provider reports no further pages, advancing by the page size.
func (e *LibraryEngine) collectOffsetPaged(ctx context.Context, fetch func(context.Context, int, int) ([]string, bool, error)) ([]string, error) {
	var all []string
	offset := 0

	for {
		ids, hasMore, err := fetch(ctx, e.pageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, ids...)
		if !hasMore {
			return all, nil
		}
		offset += e.pageSize
	}
}

// collectArtists walks the cursor-paginated followed-artists endpoint.
func (e *LibraryEngine) collectArtists(ctx context.Context, svc services.Service) ([]string, error) {
	var all []string
	after := ""

	for {
		ids, next, err := svc.FollowedArtists(ctx, e.pageSize, after)
		if err != nil {
			return nil, err
		}
		all = append(all, ids...)
		if next == "" {
			return all, nil
		}
		after = next
	}
}

func (e *LibraryEngine) collectPlaylists(ctx context.Context, svc services.Service) ([]models.Playlist, error) {
	var all []models.Playlist
	offset := 0

	for {
		playlists, hasMore, err := svc.Playlists(ctx, e.pageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, playlists...)
		if !hasMore {
			return all, nil
		}
		offset += e.pageSize
	}
}

// Write pushes every collected item into every destination account, one
// mutation call per (account, item) pair, preserving collection order.
func (e *LibraryEngine) Write(ctx context.Context, sources, destinations map[string]services.Service, lib *models.Library, progress chan<- ProgressUpdate) (*WriteResult, error) {
	if lib == nil {
		return nil, fmt.Errorf("%w: no library to write", shared.ErrInvalidInput)
	}

	result := &WriteResult{}

	for _, username := range usernames(destinations) {
		dest := destinations[username]

		for i, id := range lib.Tracks {
			e.sendProgress(progress, writeUpdate(WriteTracks, username, i+1, len(lib.Tracks)))
			if err := dest.SaveTracks(ctx, id); err != nil {
				return result, fmt.Errorf("saving track %s for %s: %w", id, username, err)
			}
			result.TracksSaved++
		}

		for i, id := range lib.Artists {
			e.sendProgress(progress, writeUpdate(WriteArtists, username, i+1, len(lib.Artists)))
			if err := dest.FollowArtists(ctx, id); err != nil {
				return result, fmt.Errorf("following artist %s for %s: %w", id, username, err)
			}
			result.ArtistsFollowed++
		}

		for i, id := range lib.Albums {
			e.sendProgress(progress, writeUpdate(WriteAlbums, username, i+1, len(lib.Albums)))
			if err := dest.SaveAlbums(ctx, id); err != nil {
				return result, fmt.Errorf("saving album %s for %s: %w", id, username, err)
			}
			result.AlbumsSaved++
		}

		for i, pl := range lib.Playlists {
			e.sendProgress(progress, writeUpdate(WritePlaylists, username, i+1, len(lib.Playlists)))
			if err := e.writePlaylist(ctx, sources, dest, pl, result); err != nil {
				return result, fmt.Errorf("transferring playlist %q for %s: %w", pl.Name, username, err)
			}
		}
	}

	return result, nil
}

// writePlaylist transfers a single playlist descriptor into one destination.
//
// A playlist whose owner is not a configured source account is foreign: the
// destination only follows it. An owned playlist is recreated under the
// destination user with the same name and visibility, then filled with the
// owning source account's track list.
func (e *LibraryEngine) writePlaylist(ctx context.Context, sources map[string]services.Service, dest services.Service, pl models.Playlist, result *WriteResult) error {
	owner, owned := sources[pl.Owner]
	if !owned {
		if err := dest.FollowPlaylist(ctx, pl.ID, pl.Public); err != nil {
			return err
		}
		result.PlaylistsFollowed++
		return nil
	}

	newID, err := dest.CreatePlaylist(ctx, pl.Name, pl.Public)
	if err != nil {
		return err
	}

	tracks, err := owner.PlaylistTracks(ctx, pl.ID)
	if err != nil {
		return err
	}

	if err := dest.AddPlaylistTracks(ctx, newID, tracks); err != nil {
		return err
	}

	result.PlaylistsCopied++
	return nil
}
