package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/the-judge/playlist-sync/internal/auth"
	"github.com/the-judge/playlist-sync/internal/models"
	"github.com/the-judge/playlist-sync/internal/repositories"
	"github.com/the-judge/playlist-sync/internal/services"
	"github.com/the-judge/playlist-sync/internal/shared"
	"github.com/the-judge/playlist-sync/internal/snapshot"
	"github.com/the-judge/playlist-sync/internal/tasks"
	"github.com/the-judge/playlist-sync/internal/ui"
)

// historyFile is the SQLite database kept next to the snapshots.
const historyFile = "history.db"

// Sync is the default action: collect the source libraries, snapshot them,
// and replay the snapshots into the destinations. The read-only and
// write-only flags each skip one of the two phases.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	readOnly := cmd.Bool("read-only")
	writeOnly := cmd.Bool("write-only")
	if readOnly && writeOnly {
		return fmt.Errorf("%w: --read-only and --write-only are mutually exclusive", shared.ErrInvalidFlag)
	}

	config, dataDir, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.ValidateCredentials(); err != nil {
		return err
	}

	mode := "sync"
	switch {
	case readOnly:
		mode = "read-only"
	case writeOnly:
		mode = "write-only"
	}

	run := &models.SyncRun{Mode: mode, StartedAt: time.Now()}
	runErr := r.runSync(ctx, config, dataDir, readOnly, writeOnly, run)

	run.FinishedAt = time.Now()
	if runErr != nil {
		run.Error = runErr.Error()
	}
	r.recordRun(dataDir, run)

	return runErr
}

func (r *Runner) runSync(ctx context.Context, config *shared.Config, dataDir string, readOnly, writeOnly bool, run *models.SyncRun) error {
	store := snapshot.NewStore(dataDir)

	progress := make(chan tasks.ProgressUpdate, 16)
	drained := make(chan struct{})
	go func() {
		for update := range progress {
			r.logger.Info(update.Message)
		}
		close(drained)
	}()
	defer func() {
		close(progress)
		<-drained
	}()

	var lib *models.Library
	var sources map[string]services.Service

	if !writeOnly {
		var err error
		sources, err = r.authorize(ctx, config, dataDir, config.Sources, auth.ReadScopes())
		if err != nil {
			return err
		}

		lib, err = r.engine.Collect(ctx, sources, progress)
		if err != nil {
			return err
		}
		if err := store.SaveLibrary(lib); err != nil {
			return err
		}
		r.logger.Infof("collected %d items from %d source accounts", lib.Total(), len(sources))
	}

	if readOnly {
		run.Tracks = len(lib.Tracks)
		run.Artists = len(lib.Artists)
		run.Albums = len(lib.Albums)
		run.Playlists = len(lib.Playlists)
		return r.collectSummary(lib)
	}

	if lib == nil {
		var err error
		lib, err = store.LoadLibrary()
		if err != nil {
			return err
		}
		if lib.Total() == 0 {
			r.writePlain("%s\n", ui.Warn("Nothing to write: no snapshots found, run with --read-only first"))
			return nil
		}
	}

	// Owned playlists are copied track by track, which needs the owner's
	// session even in a write-only run.
	if sources == nil && hasOwnedPlaylists(config, lib) {
		var err error
		sources, err = r.authorize(ctx, config, dataDir, config.Sources, auth.ReadScopes())
		if err != nil {
			return err
		}
	}

	destinations, err := r.authorize(ctx, config, dataDir, config.Destinations, auth.WriteScopes())
	if err != nil {
		return err
	}

	result, err := r.engine.Write(ctx, sources, destinations, lib, progress)
	if result != nil {
		run.Tracks = result.TracksSaved
		run.Artists = result.ArtistsFollowed
		run.Albums = result.AlbumsSaved
		run.Playlists = result.PlaylistsFollowed + result.PlaylistsCopied
	}
	if err != nil {
		return err
	}

	return r.writeSummary(result, len(destinations))
}

// hasOwnedPlaylists reports whether any snapshotted playlist belongs to a
// configured source account.
func hasOwnedPlaylists(config *shared.Config, lib *models.Library) bool {
	owners := map[string]bool{}
	for label, account := range config.Sources {
		owners[shared.AccountUsername(label, account)] = true
	}
	for _, pl := range lib.Playlists {
		if owners[pl.Owner] {
			return true
		}
	}
	return false
}

func (r *Runner) collectSummary(lib *models.Library) error {
	r.writePlain("%s\n", ui.Title("Collection complete"))
	r.writePlain("  Tracks:    %d\n", len(lib.Tracks))
	r.writePlain("  Artists:   %d\n", len(lib.Artists))
	r.writePlain("  Albums:    %d\n", len(lib.Albums))
	r.writePlain("  Playlists: %d\n", len(lib.Playlists))
	return r.writePlain("%s\n", ui.Help("Snapshots saved; run with --write-only to replay them"))
}

func (r *Runner) writeSummary(result *tasks.WriteResult, destinations int) error {
	r.writePlain("%s\n", ui.Title("Sync complete"))
	r.writePlain("  Tracks saved:       %d\n", result.TracksSaved)
	r.writePlain("  Artists followed:   %d\n", result.ArtistsFollowed)
	r.writePlain("  Albums saved:       %d\n", result.AlbumsSaved)
	r.writePlain("  Playlists followed: %d\n", result.PlaylistsFollowed)
	r.writePlain("  Playlists copied:   %d\n", result.PlaylistsCopied)
	return r.writePlain("%s\n", ui.OK(fmt.Sprintf("✓ Wrote to %d destination account(s)", destinations)))
}

// recordRun appends the run to the local history database. History is best
// effort and never fails a sync.
func (r *Runner) recordRun(dataDir string, run *models.SyncRun) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		r.logger.Warnf("failed to create data directory: %v", err)
		return
	}

	db, err := shared.NewDatabase(filepath.Join(dataDir, historyFile))
	if err != nil {
		r.logger.Warnf("failed to open history database: %v", err)
		return
	}
	defer db.Close()

	repo, err := repositories.NewSyncRunRepository(db)
	if err != nil {
		r.logger.Warnf("failed to prepare history database: %v", err)
		return
	}
	if err := repo.Create(run); err != nil {
		r.logger.Warnf("failed to record sync run: %v", err)
	}
}
