package tasks

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/immich-screens/internal/immich"
	"github.com/desertthunder/immich-screens/internal/shared"
)

// API defines the Immich operations the organizer needs.
// This abstraction allows for easier testing and decoupling from the concrete client.
type API interface {
	// ServerVersion probes the version endpoint; detected is false when the fallback was assumed.
	ServerVersion(ctx context.Context) (version immich.ServerVersion, detected bool, err error)

	// Libraries returns the full library listing.
	Libraries(ctx context.Context) ([]immich.Library, error)

	// SearchAssets fetches one page of image assets via metadata search.
	SearchAssets(ctx context.Context, page, size int, withExif bool, libraryID string) ([]immich.Asset, error)

	// Albums returns all albums visible to the API key.
	Albums(ctx context.Context) ([]immich.Album, error)

	// CreateAlbum creates an album and returns its id.
	CreateAlbum(ctx context.Context, name string) (string, error)

	// AddAssets adds asset ids to an album and returns per-asset results.
	AddAssets(ctx context.Context, albumID string, assetIDs []string) ([]immich.BulkIDResult, error)

	// SetArchived sets an asset's archive flag and returns the confirmed value.
	SetArchived(ctx context.Context, assetID string, archived bool) (bool, error)
}

// OrganizeOpts is the immutable per-run configuration for an Organizer.
type OrganizeOpts struct {
	AlbumName       string  // Target album for screenshots (required)
	IncludeExifless bool    // Treat assets without any EXIF data as screenshots
	ArchiveScreens  bool    // Archive matched assets to hide them from the timeline
	LibraryName     string  // Scope retrieval to the library with this name
	ImportPath      string  // Scope retrieval to the library containing this import path
	AddChunkSize    int     // Assets per membership-add call (default 2000)
	FetchChunkSize  int     // Assets per search page (default 5000, server caps at 1000)
	ArchiveRate     float64 // Archive calls per second (default 10)
}

// OrganizePlan is the materialized reconciliation plan produced by [Organizer.Plan].
type OrganizePlan struct {
	Version     immich.ServerVersion // Probed (or assumed) server version
	AssetsFound int                  // Candidate assets retrieved
	Albums      map[string][]string  // Album name -> asset ids to ensure membership for
	AlbumNames  []string             // Album names in lexicographic order
	Archive     []string             // Asset ids to archive
}

// Matched returns the total number of classified assets across all albums.
func (p *OrganizePlan) Matched() int {
	matched := 0
	for _, ids := range p.Albums {
		matched += len(ids)
	}
	return matched
}

// OrganizeResult summarizes the mutations applied by [Organizer.Apply].
type OrganizeResult struct {
	AlbumIDs       map[string]string // Album name -> id, pre-existing and created
	ExistingAlbums int               // Albums already present on the server
	AlbumsCreated  int               // Albums created this run
	AssetsAdded    int               // Assets newly added across all albums
	AssetsArchived int               // Assets archived this run
}

// Organizer reconciles an Immich server's album structure with the
// screenshot classification of its assets. A run is strictly sequential:
// every remote call is a blocking round trip and no phase re-enters an
// earlier one.
type Organizer struct {
	api    API
	opts   OrganizeOpts
	logger *log.Logger
}

// NewOrganizer creates an Organizer with the provided API client and options.
func NewOrganizer(api API, opts OrganizeOpts, logger *log.Logger) *Organizer {
	if opts.AddChunkSize <= 0 {
		opts.AddChunkSize = 2000
	}
	if opts.FetchChunkSize <= 0 {
		opts.FetchChunkSize = 5000
	}
	if opts.ArchiveRate <= 0 {
		opts.ArchiveRate = 10.0
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Organizer{
		api:    api,
		opts:   opts,
		logger: logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (o *Organizer) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Plan derives the reconciliation plan: probe the server capability, resolve
// the library scope, fetch all candidate assets and classify them. No
// mutating call is issued.
func (o *Organizer) Plan(ctx context.Context, progress chan<- ProgressUpdate) (*OrganizePlan, error) {
	if o.opts.AlbumName == "" {
		return nil, fmt.Errorf("%w: empty album name", shared.ErrInvalidConfig)
	}

	version, detected, err := o.api.ServerVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to probe server version: %w", err)
	}
	if detected {
		o.logger.Info("detected Immich server version", "version", version.String())
	} else {
		o.logger.Info("detected Immich server version or older", "version", version.String())
	}
	o.sendProgress(progress, probeUpdate(version, detected))

	capability := immich.Negotiate(version)
	if capability != immich.CapabilityMetadataSearch {
		return nil, fmt.Errorf("%w: metadata search requires a server newer than 1.105, got %s", shared.ErrUnsupportedServer, version)
	}

	libraryID, err := o.resolveLibraryID(ctx, progress)
	if err != nil {
		return nil, err
	}

	o.logger.Info("requesting all assets")
	assets, err := o.fetchAssets(ctx, progress, libraryID)
	if err != nil {
		return nil, err
	}
	o.logger.Info("photos found", "count", len(assets))

	plan := &OrganizePlan{
		Version:     version,
		AssetsFound: len(assets),
		Albums:      map[string][]string{},
	}

	for _, asset := range assets {
		if !IsScreenshot(asset, o.opts.IncludeExifless) {
			continue
		}
		plan.Albums[o.opts.AlbumName] = append(plan.Albums[o.opts.AlbumName], asset.ID)
		if o.opts.ArchiveScreens {
			plan.Archive = append(plan.Archive, asset.ID)
		}
	}

	for name := range plan.Albums {
		plan.AlbumNames = append(plan.AlbumNames, name)
	}
	sort.Strings(plan.AlbumNames)

	o.logger.Info("albums identified", "count", len(plan.AlbumNames), "albums", plan.AlbumNames)
	o.sendProgress(progress, classifiedUpdate(plan.Matched(), len(assets)))

	return plan, nil
}

// Apply converges the server onto the plan: list existing albums, create
// missing ones, add members in chunks and archive flagged assets. Membership
// adds are best effort; album creation and archive failures abort the run.
func (o *Organizer) Apply(ctx context.Context, progress chan<- ProgressUpdate, plan *OrganizePlan) (*OrganizeResult, error) {
	o.logger.Info("listing existing albums")
	existing, err := o.api.Albums(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	o.logger.Info("existing albums identified", "count", len(existing))
	o.sendProgress(progress, listAlbumsUpdate(len(existing)))

	albumIDs, created, err := o.reconcileAlbums(ctx, progress, plan.AlbumNames, existing)
	if err != nil {
		return nil, err
	}
	o.logger.Info("albums created", "count", created)

	result := &OrganizeResult{
		AlbumIDs:       albumIDs,
		ExistingAlbums: len(existing),
		AlbumsCreated:  created,
	}

	o.logger.Info("adding assets to albums")
	for _, name := range plan.AlbumNames {
		added := o.addAssets(ctx, albumIDs[name], name, plan.Albums[name])
		result.AssetsAdded += added
		o.sendProgress(progress, addAssetsUpdate(name, added))
	}

	if len(plan.Archive) > 0 {
		archived, err := o.archiveAssets(ctx, progress, plan.Archive)
		result.AssetsArchived = archived
		if err != nil {
			return result, err
		}
	}

	return result, nil
}

// Run plans and applies in one pass, for unattended invocations.
func (o *Organizer) Run(ctx context.Context, progress chan<- ProgressUpdate) (*OrganizePlan, *OrganizeResult, error) {
	plan, err := o.Plan(ctx, progress)
	if err != nil {
		return nil, nil, err
	}

	result, err := o.Apply(ctx, progress, plan)
	if err != nil {
		return plan, result, err
	}

	return plan, result, nil
}
