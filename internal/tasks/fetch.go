package tasks

import (
	"context"
	"fmt"
	"slices"

	"github.com/desertthunder/immich-screens/internal/immich"
)

// resolveLibraryID maps the configured library name or import path to a
// library id. A miss resolves to "" (unscoped retrieval), not an error.
func (o *Organizer) resolveLibraryID(ctx context.Context, progress chan<- ProgressUpdate) (string, error) {
	if o.opts.LibraryName == "" && o.opts.ImportPath == "" {
		return "", nil
	}

	libraries, err := o.api.Libraries(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list libraries: %w", err)
	}

	libraryID := ""
	if o.opts.LibraryName != "" {
		for _, library := range libraries {
			if library.Name == o.opts.LibraryName {
				libraryID = library.ID
				break
			}
		}
	} else {
		for _, library := range libraries {
			if slices.Contains(library.ImportPaths, o.opts.ImportPath) {
				libraryID = library.ID
				break
			}
		}
	}

	if libraryID == "" {
		o.logger.Debug("no matching library, searching all libraries", "name", o.opts.LibraryName, "path", o.opts.ImportPath)
	} else {
		o.logger.Debug("scoping retrieval to library", "id", libraryID)
	}
	o.sendProgress(progress, resolveLibraryUpdate(libraryID))

	return libraryID, nil
}

// fetchAssets retrieves the full candidate asset set with sequential
// page-based metadata searches.
//
// The loop terminates on the first page holding strictly fewer items than the
// requested size; a full page is never assumed to be the last one, so an
// exactly-full final page costs one extra empty request.
func (o *Organizer) fetchAssets(ctx context.Context, progress chan<- ProgressUpdate, libraryID string) ([]immich.Asset, error) {
	size := o.opts.FetchChunkSize
	if size > immich.MaxSearchPageSize {
		size = immich.MaxSearchPageSize
	}

	var assets []immich.Asset
	for page := 1; ; page++ {
		items, err := o.api.SearchAssets(ctx, page, size, !o.opts.IncludeExifless, libraryID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch assets page %d: %w", page, err)
		}

		o.logger.Debug("received assets", "count", len(items), "page", page)
		o.sendProgress(progress, fetchPageUpdate(page, len(items)))

		assets = append(assets, items...)
		if len(items) < size {
			return assets, nil
		}
	}
}
