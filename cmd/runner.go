package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelfsync/internal/repositories"
	"github.com/desertthunder/shelfsync/internal/services"
	"github.com/desertthunder/shelfsync/internal/shared"
	"github.com/desertthunder/shelfsync/internal/tasks"
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
		opts.HTTPClient = &http.Client{Timeout: opts.Config.HTTP.Timeout()}
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
		setupCommand, importCommand, reconcileCommand, wishlistCommand, indexCommand, syncCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig reads the config file at path, falling back to the runner's
// config when the file is absent or malformed.
func (r *Runner) loadConfig(path string) *shared.Config {
	if _, err := os.Stat(path); err != nil {
		return r.config
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "error", err)
		return r.config
	}
	return config
}

// openPipeline loads configuration, opens the database, and wires the batch
// engine with its collaborators. The returned closer releases the database
// handle.
//
// The index and download client are wired only when their base URLs are
// configured; without them the engine stops after the diff stage.
func (r *Runner) openPipeline(config *shared.Config, mutate ...func(*tasks.EngineOpts)) (*tasks.ShelfEngine, func(), error) {
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	opts := tasks.EngineOpts{
		Collection: repositories.NewCollectionRepository(db),
		Tracked:    repositories.NewTrackedBookRepository(db),
		Inventory:  services.NewInventoryService(config.Inventory.CSVPath),
		Fetcher:    services.NewFeedService(config.Wishlist.AuthorField, r.httpClient),
		FeedURLs:   config.Wishlist.Feeds,
		Category:   config.Downloader.Category,
		RateLimit:  config.Search.RateLimit,
		Credentials: map[string]string{
			"username": config.Downloader.Username,
			"password": config.Downloader.Password,
		},
	}

	if config.Search.BaseURL != "" {
		opts.Index = services.NewIndexService(
			config.Search.BaseURL, config.Search.APIKey,
			config.Search.Category, config.Search.Limit, r.httpClient,
		)
	}

	if config.Downloader.BaseURL != "" {
		downloader, err := services.NewDownloadClient(
			config.Downloader.BaseURL,
			&http.Client{Timeout: config.HTTP.Timeout()},
		)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		opts.Downloader = downloader
	}

	for _, fn := range mutate {
		fn(&opts)
	}

	return tasks.NewShelfEngine(opts), func() { db.Close() }, nil
}

// reportProgress drains engine progress updates to the output writer.
// Returns the channel and a done signal to wait on after closing it.
func (r *Runner) reportProgress() (chan tasks.ProgressUpdate, chan struct{}) {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	return progress, done
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

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
