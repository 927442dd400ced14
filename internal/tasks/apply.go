package tasks

import (
	"context"

	"github.com/desertthunder/immich-screens/internal/immich"
	"github.com/desertthunder/immich-screens/internal/shared"
	"golang.org/x/time/rate"
)

// addAssets adds asset ids to an album in chunks of at most AddChunkSize and
// returns the count of assets newly added.
//
// Best-effort semantics: a "duplicate" result is the expected steady state on
// repeat runs and stays silent; any other per-asset failure is a warning. A
// chunk-level HTTP failure is logged and that chunk skipped, never retried —
// a rerun repairs it since membership adds are duplicate tolerant.
func (o *Organizer) addAssets(ctx context.Context, albumID, albumName string, assetIDs []string) int {
	added := 0
	for _, chunk := range shared.Chunk(assetIDs, o.opts.AddChunkSize) {
		results, err := o.api.AddAssets(ctx, albumID, chunk)
		if err != nil {
			o.logger.Error("failed to add chunk to album", "album", albumName, "size", len(chunk), "err", err)
			continue
		}

		count := 0
		for _, result := range results {
			if result.Success {
				count++
				continue
			}
			if result.Error != immich.BulkErrorDuplicate {
				o.logger.Warn("error adding an asset to an album", "album", albumName, "asset", result.ID, "reason", result.Error)
			}
		}

		added += count
	}

	if added > 0 {
		o.logger.Info("new assets added", "album", albumName, "count", added)
	}

	return added
}

// archiveAssets archives each asset with one call per id, paced by a rate
// limiter. Unlike membership adds, any failure here aborts the run.
func (o *Organizer) archiveAssets(ctx context.Context, progress chan<- ProgressUpdate, assetIDs []string) (int, error) {
	o.logger.Info("archiving screenshots", "count", len(assetIDs))
	limiter := rate.NewLimiter(rate.Limit(o.opts.ArchiveRate), 1)

	archived := 0
	for i, id := range assetIDs {
		if err := limiter.Wait(ctx); err != nil {
			return archived, err
		}

		confirmed, err := o.api.SetArchived(ctx, id, true)
		if err != nil {
			return archived, err
		}
		if !confirmed {
			o.logger.Warn("server did not confirm archive flag", "asset", id)
		}

		archived++
		o.sendProgress(progress, archiveUpdate(i+1, len(assetIDs)))
	}

	return archived, nil
}
