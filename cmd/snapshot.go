package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/the-judge/playlist-sync/internal/snapshot"
	"github.com/the-judge/playlist-sync/internal/ui"
)

// SnapshotShow prints what the snapshot files in the data directory contain.
func (r *Runner) SnapshotShow(ctx context.Context, cmd *cli.Command) error {
	_, dataDir, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	lib, err := snapshot.NewStore(dataDir).LoadLibrary()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(lib, cmd.Bool("pretty"))
	}

	if lib.Total() == 0 {
		return r.writePlain("%s\n", ui.Warn("No snapshots found in "+dataDir))
	}

	r.writePlain("%s\n", ui.Title("Snapshots in "+dataDir))
	r.writePlain("  Tracks:    %d\n", len(lib.Tracks))
	r.writePlain("  Artists:   %d\n", len(lib.Artists))
	r.writePlain("  Albums:    %d\n", len(lib.Albums))
	r.writePlain("  Playlists: %d\n", len(lib.Playlists))

	for _, pl := range lib.Playlists {
		r.writePlain("    - %s (%s)\n", pl.Name, pl.Owner)
	}

	return nil
}
