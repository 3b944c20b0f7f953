package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Belphemur/titlovi/internal/models"
	"github.com/spf13/cobra"
)

type searchOptions struct {
	contentType  string
	name         string
	imdbID       string
	series       string
	seriesImdbID string
	season       int
	episode      int
	language     string
	mediaPath    string
	limit        int
	jsonOutput   bool
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search subtitles for a movie or an episode",
		Example: `  titlovi search --imdb tt1160419 --name Dune --lang hr
  titlovi search --series Dark --series-imdb tt5753856 --season 2 --episode 5 --lang bs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request()
			if err != nil {
				return err
			}
			return ctx.withApp(func(a *app) error {
				req.DisabledProviders = append(req.DisabledProviders, a.cfg.DisabledProviders...)

				candidates, err := a.registry.Search(cmd.Context(), req)
				if err != nil {
					return err
				}
				if opts.limit > 0 && len(candidates) > opts.limit {
					candidates = candidates[:opts.limit]
				}
				if opts.jsonOutput {
					return writeJSON(cmd, candidates)
				}
				if len(candidates) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No subtitles found")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderCandidates(candidates))
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.contentType, "type", "t", "", "Content type: movie or episode (inferred when empty)")
	flags.StringVar(&opts.name, "name", "", "Movie title")
	flags.StringVar(&opts.imdbID, "imdb", "", "Movie IMDB id (tt1234567)")
	flags.StringVar(&opts.series, "series", "", "Series name")
	flags.StringVar(&opts.seriesImdbID, "series-imdb", "", "Series IMDB id")
	flags.IntVarP(&opts.season, "season", "s", 0, "Season number")
	flags.IntVarP(&opts.episode, "episode", "e", 0, "Episode number")
	flags.StringVarP(&opts.language, "lang", "l", "", "Subtitle language (ISO 639-1 or 639-2)")
	flags.StringVar(&opts.mediaPath, "media", "", "Local media file used to score releases")
	flags.IntVar(&opts.limit, "limit", 0, "Show at most this many candidates")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Output JSON")

	return cmd
}

func (o searchOptions) request() (models.SearchRequest, error) {
	contentType := models.ContentTypeMovie
	switch {
	case o.contentType != "":
		parsed, err := models.ParseContentType(o.contentType)
		if err != nil {
			return models.SearchRequest{}, err
		}
		contentType = parsed
	case o.series != "" || o.seriesImdbID != "" || o.episode > 0:
		contentType = models.ContentTypeEpisode
	}

	return models.SearchRequest{
		ContentType:  contentType,
		Name:         strings.TrimSpace(o.name),
		ImdbID:       strings.TrimSpace(o.imdbID),
		SeriesName:   strings.TrimSpace(o.series),
		SeriesImdbID: strings.TrimSpace(o.seriesImdbID),
		Language:     o.language,
		Season:       o.season,
		Episode:      o.episode,
		MediaPath:    o.mediaPath,
	}, nil
}

func renderCandidates(candidates []models.RankedCandidate) string {
	headers := []string{"#", "Name", "Release", "Lang", "Downloads", "Rating", "Score", "ID"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft}

	rows := make([][]string, 0, len(candidates))
	for i, c := range candidates {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			c.Name,
			c.Release,
			c.Language,
			strconv.Itoa(c.DownloadCount),
			strconv.FormatFloat(c.Rating, 'f', 1, 64),
			strconv.FormatFloat(c.Score, 'f', 0, 64),
			c.ID,
		})
	}
	return renderTable(headers, rows, aligns)
}
