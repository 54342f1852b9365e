// package models defines the data carried between the read and write phases.
package models

import "time"

// Playlist is the descriptor persisted for every playlist found in a source
// library. Owner decides whether a destination copies the playlist (owned by
// a configured source) or merely follows it (foreign).
type Playlist struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Owner  string `json:"owner"`
	Public bool   `json:"public"`
}

// Library aggregates everything collected from the source accounts. Each
// slice preserves collection order and may contain duplicates when the same
// item is saved by more than one source account.
type Library struct {
	Tracks    []string   `json:"tracks"`
	Artists   []string   `json:"artists"`
	Albums    []string   `json:"albums"`
	Playlists []Playlist `json:"playlists"`
}

// Total returns the number of collected items across all four lists.
func (l *Library) Total() int {
	return len(l.Tracks) + len(l.Artists) + len(l.Albums) + len(l.Playlists)
}

// SyncRun records a single invocation for the history database.
type SyncRun struct {
	ID         string
	Mode       string // "sync", "read-only" or "write-only"
	StartedAt  time.Time
	FinishedAt time.Time
	Tracks     int
	Artists    int
	Albums     int
	Playlists  int
	Error      string
}
