package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running phase.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Account string // Account being processed
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	CollectTracks Phase = iota
	CollectArtists
	CollectAlbums
	CollectPlaylists
	WriteTracks
	WriteArtists
	WriteAlbums
	WritePlaylists
)

func (p Phase) String() string {
	switch p {
	case CollectTracks:
		return "collect_tracks"
	case CollectArtists:
		return "collect_artists"
	case CollectAlbums:
		return "collect_albums"
	case CollectPlaylists:
		return "collect_playlists"
	case WriteTracks:
		return "write_tracks"
	case WriteArtists:
		return "write_artists"
	case WriteAlbums:
		return "write_albums"
	case WritePlaylists:
		return "write_playlists"
	default:
		return ""
	}
}

// kind returns the item noun for a phase, shared by both update builders.
func (p Phase) kind() string {
	switch p {
	case CollectTracks, WriteTracks:
		return "tracks"
	case CollectArtists, WriteArtists:
		return "artists"
	case CollectAlbums, WriteAlbums:
		return "albums"
	case CollectPlaylists, WritePlaylists:
		return "playlists"
	default:
		return "items"
	}
}

func collectUpdate(phase Phase, account string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Account: account,
		Message: fmt.Sprintf("Collecting %s from %s...", phase.kind(), account),
	}
}

func writeUpdate(phase Phase, account string, step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Account: account,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Writing %s to %s...", step, total, phase.kind(), account),
	}
}
