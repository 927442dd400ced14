package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/immich-screens/internal/immich"
	"github.com/desertthunder/immich-screens/internal/repositories"
	"github.com/desertthunder/immich-screens/internal/shared"
	"github.com/desertthunder/immich-screens/internal/tasks"
	"github.com/desertthunder/immich-screens/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, versionCommand, librariesCommand, albumsCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// apiClient builds an Immich client from the command's connection flags,
// falling back to the loaded configuration.
func (r *Runner) apiClient(cmd *cli.Command) (*immich.Client, error) {
	serverURL := cmd.String("server")
	apiKey := cmd.String("api-key")

	if serverURL == "" {
		return nil, fmt.Errorf("%w: server URL (--server or [server].url)", shared.ErrMissingArgument)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key (--api-key or [server].api_key)", shared.ErrMissingArgument)
	}

	return immich.NewClient(serverURL, apiKey, r.httpClient), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Run performs the full plan/confirm/apply reconciliation cycle.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	albumName := cmd.StringArg("album")
	if albumName == "" {
		return fmt.Errorf("%w: album name", shared.ErrMissingArgument)
	}

	level, err := log.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return fmt.Errorf("%w: log-level %q", shared.ErrInvalidFlag, cmd.String("log-level"))
	}
	shared.SetLogLevel(r.logger, level)

	client, err := r.apiClient(cmd)
	if err != nil {
		return err
	}

	runID := shared.GenerateID()
	logger := shared.WithLogger(r.logger, "run_id", runID)

	organizer := tasks.NewOrganizer(client, tasks.OrganizeOpts{
		AlbumName:       albumName,
		IncludeExifless: cmd.Bool("include-exifless"),
		ArchiveScreens:  cmd.Bool("archive-screens"),
		LibraryName:     cmd.String("library-name"),
		ImportPath:      cmd.String("import-path"),
		AddChunkSize:    cmd.Int("chunk-size"),
		FetchChunkSize:  cmd.Int("fetch-chunk-size"),
		ArchiveRate:     r.config.Organizer.ArchiveRate,
	}, logger)

	started := time.Now()

	plan, err := organizer.Plan(ctx, nil)
	if err != nil {
		r.recordRun(runID, albumName, repositories.RunStatusFailed, nil, nil, started, err)
		return err
	}

	if !cmd.Bool("unattended") {
		accepted, err := r.confirm(plan)
		if err != nil {
			return err
		}
		if !accepted {
			logger.Warn("run aborted before applying mutations")
			r.recordRun(runID, albumName, repositories.RunStatusAborted, plan, nil, started, nil)
			return shared.ErrRunAborted
		}
	}

	result, err := organizer.Apply(ctx, nil, plan)
	if err != nil {
		r.recordRun(runID, albumName, repositories.RunStatusFailed, plan, result, started, err)
		return err
	}

	logger.Info("done",
		"assets_found", plan.AssetsFound,
		"assets_matched", plan.Matched(),
		"albums_created", result.AlbumsCreated,
		"assets_added", result.AssetsAdded,
		"assets_archived", result.AssetsArchived,
	)
	r.recordRun(runID, albumName, repositories.RunStatusSucceeded, plan, result, started, nil)

	return nil
}

// confirm renders the plan and waits for the operator's decision.
func (r *Runner) confirm(plan *tasks.OrganizePlan) (bool, error) {
	summary := planSummary(plan)
	program := tea.NewProgram(ui.NewConfirm("Planned changes", summary), tea.WithOutput(r.output))

	final, err := program.Run()
	if err != nil {
		return false, fmt.Errorf("error running confirmation prompt: %v", err)
	}

	model, ok := final.(ui.Model)
	return ok && model.Accepted(), nil
}

func planSummary(plan *tasks.OrganizePlan) []string {
	lines := []string{
		fmt.Sprintf("%d assets found, %d classified as screenshots", plan.AssetsFound, plan.Matched()),
	}
	for _, name := range plan.AlbumNames {
		lines = append(lines, fmt.Sprintf("album %q: ensure %d members", name, len(plan.Albums[name])))
	}
	if len(plan.Archive) > 0 {
		lines = append(lines, fmt.Sprintf("%d assets will be archived", len(plan.Archive)))
	}
	return lines
}

// recordRun persists a run-history row. Best effort: history must never fail a run.
func (r *Runner) recordRun(id, albumName, status string, plan *tasks.OrganizePlan, result *tasks.OrganizeResult, started time.Time, runErr error) {
	path := r.config.Database.Path
	if path == "" {
		return
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		r.logger.Warn("failed to open history database", "path", path, "err", err)
		return
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		r.logger.Warn("failed to migrate history database", "err", err)
		return
	}

	run := &repositories.Run{
		ID:         id,
		AlbumName:  albumName,
		Status:     status,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if plan != nil {
		run.AssetsFound = plan.AssetsFound
		run.AssetsMatched = plan.Matched()
	}
	if result != nil {
		run.AlbumsCreated = result.AlbumsCreated
		run.AssetsAdded = result.AssetsAdded
		run.AssetsArchived = result.AssetsArchived
	}
	if runErr != nil {
		run.ErrorMessage = runErr.Error()
	}

	if err := repositories.NewRunRepository(db).Create(run); err != nil {
		r.logger.Warn("failed to record run", "err", err)
	}
}

// ServerVersion probes the server's version endpoint.
func (r *Runner) ServerVersion(ctx context.Context, cmd *cli.Command) error {
	client, err := r.apiClient(cmd)
	if err != nil {
		return err
	}

	version, detected, err := client.ServerVersion(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"version":  version,
			"detected": detected,
		}, false)
	}

	if detected {
		return r.writePlain("Immich server version %s\n", version)
	}
	return r.writePlain("Immich server version %s or older\n", version)
}

// Libraries lists the server's libraries.
func (r *Runner) Libraries(ctx context.Context, cmd *cli.Command) error {
	client, err := r.apiClient(cmd)
	if err != nil {
		return err
	}

	libraries, err := client.Libraries(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(libraries, cmd.Bool("pretty"))
	}

	for _, library := range libraries {
		r.writePlain("%s  %s  [%s]\n", library.ID, library.Name, strings.Join(library.ImportPaths, ", "))
	}
	return nil
}

// Albums lists the server's albums.
func (r *Runner) Albums(ctx context.Context, cmd *cli.Command) error {
	client, err := r.apiClient(cmd)
	if err != nil {
		return err
	}

	albums, err := client.Albums(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(albums, cmd.Bool("pretty"))
	}

	for _, album := range albums {
		r.writePlain("%s  %s\n", album.ID, album.Name)
	}
	return nil
}

// History lists recent organizer runs.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("db")
	if path == "" {
		return fmt.Errorf("%w: history database path (--db or [database].path)", shared.ErrMissingArgument)
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	runs, err := repositories.NewRunRepository(db).Recent(cmd.Int("limit"))
	if err != nil {
		return err
	}

	for _, run := range runs {
		r.writePlain("%s  %-9s  %s  found=%d matched=%d created=%d added=%d archived=%d\n",
			run.StartedAt.Format(time.RFC3339), run.Status, run.AlbumName,
			run.AssetsFound, run.AssetsMatched, run.AlbumsCreated, run.AssetsAdded, run.AssetsArchived)
	}
	return nil
}

// SetupConfig writes a starter config.toml.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("configuration file created", "path", path)
	return nil
}

// SetupDatabase initializes the run-history database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("db")
	if path == "" {
		return fmt.Errorf("%w: history database path (--db or [database].path)", shared.ErrMissingArgument)
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return err
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	r.logger.Info("database initialized", "path", path)
	return nil
}
