package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/immich-screens/internal/immich"
)

// reconcileAlbums builds the album name -> id mapping covering every planned
// album, creating the ones missing from the server listing.
//
// When two server albums share a name the first listed wins. Creation checks
// the accumulated lookup first, so the same name is never created twice even
// on repeated calls. names must be sorted for reproducible logs.
func (o *Organizer) reconcileAlbums(ctx context.Context, progress chan<- ProgressUpdate, names []string, existing []immich.Album) (map[string]string, int, error) {
	albumIDs := make(map[string]string, len(existing))
	for _, album := range existing {
		if _, ok := albumIDs[album.Name]; !ok {
			albumIDs[album.Name] = album.ID
		}
	}

	created := 0
	for _, name := range names {
		if _, ok := albumIDs[name]; ok {
			continue
		}

		id, err := o.api.CreateAlbum(ctx, name)
		if err != nil {
			return nil, created, fmt.Errorf("failed to create album %q: %w", name, err)
		}

		albumIDs[name] = id
		created++
		o.logger.Info("album added", "album", name, "id", id)
		o.sendProgress(progress, createAlbumUpdate(name, id, created, len(names)))
	}

	return albumIDs, created, nil
}
