package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/shelfsync/internal/services"
	"github.com/desertthunder/shelfsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// IndexSearch queries the search index directly and prints the candidates,
// useful for tuning match policies against real listings.
func (r *Runner) IndexSearch(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	if config.Search.BaseURL == "" {
		return fmt.Errorf("%w: search.base_url is not configured", shared.ErrMissingConfig)
	}

	title, author := cmd.String("title"), cmd.String("author")
	r.logger.Info("searching index", "title", title, "author", author)

	index := services.NewIndexService(
		config.Search.BaseURL, config.Search.APIKey,
		config.Search.Category, config.Search.Limit, r.httpClient,
	)

	results, err := index.Search(ctx, title, author)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		return r.writePlain("No candidates found.\n")
	}

	return r.writeJSON(results, cmd.Bool("pretty"))
}
