package tasks

import (
	"fmt"

	"github.com/desertthunder/immich-screens/internal/immich"
)

// ProgressUpdate represents a progress event during a run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ProbeVersion Phase = iota
	ResolveLibrary
	FetchAssets
	ClassifyAssets
	ListAlbums
	CreateAlbums
	AddAssets
	ArchiveAssets
)

func (p Phase) String() string {
	switch p {
	case ProbeVersion:
		return "probe_version"
	case ResolveLibrary:
		return "resolve_library"
	case FetchAssets:
		return "fetch_assets"
	case ClassifyAssets:
		return "classify_assets"
	case ListAlbums:
		return "list_albums"
	case CreateAlbums:
		return "create_albums"
	case AddAssets:
		return "add_assets"
	case ArchiveAssets:
		return "archive_assets"
	default:
		return ""
	}
}

func probeUpdate(version immich.ServerVersion, detected bool) ProgressUpdate {
	message := fmt.Sprintf("Server version %s", version)
	if !detected {
		message = fmt.Sprintf("Server version %s or older", version)
	}
	return ProgressUpdate{
		Phase:   ProbeVersion,
		Step:    1,
		Total:   1,
		Message: message,
		Data:    version,
	}
}

func resolveLibraryUpdate(libraryID string) ProgressUpdate {
	message := "Searching all libraries"
	if libraryID != "" {
		message = fmt.Sprintf("Scoped to library %s", libraryID)
	}
	return ProgressUpdate{
		Phase:   ResolveLibrary,
		Step:    1,
		Total:   1,
		Message: message,
	}
}

func fetchPageUpdate(page, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAssets,
		Step:    page,
		Message: fmt.Sprintf("Fetched page %d (%d assets)", page, count),
	}
}

func classifiedUpdate(matched, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ClassifyAssets,
		Step:    matched,
		Total:   total,
		Message: fmt.Sprintf("Classified %d of %d assets as screenshots", matched, total),
	}
}

func listAlbumsUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListAlbums,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d existing albums", count),
	}
}

func createAlbumUpdate(name, id string, step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateAlbums,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Album created: %s (ID: %s)", name, id),
	}
}

func addAssetsUpdate(album string, added int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddAssets,
		Step:    added,
		Message: fmt.Sprintf("%d new assets added to %s", added, album),
	}
}

func archiveUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ArchiveAssets,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Archiving...", step, total),
	}
}
