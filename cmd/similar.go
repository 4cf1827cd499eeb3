package cmd

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kamusis/movierec/internal/poster"
	"github.com/kamusis/movierec/internal/search/index"
)

var (
	flagSimilarK       int
	flagSimilarPosters bool
	flagSimilarScores  bool
)

var similarCmd = &cobra.Command{
	Use:   "similar <title...>",
	Short: "List movies whose overviews are most similar to a title",
	Long: `Find the movies whose plot overviews are closest to the given title's.

The title is matched case-insensitively against the catalog; the movie
itself is never part of the results.

Examples:
  movierec similar Avatar
  movierec similar "The Dark Knight" -k 10 --posters`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().IntVarP(&flagSimilarK, "k", "k", 0, "Number of results to show (default: top_n from config)")
	similarCmd.Flags().BoolVar(&flagSimilarPosters, "posters", false, "Look up a poster for each result")
	similarCmd.Flags().BoolVar(&flagSimilarScores, "scores", false, "Show similarity scores")
	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	k := cfg.TopN
	if cmd.Flags().Changed("k") {
		k = flagSimilarK
	}

	idx, err := loadIndex(cfg)
	if err != nil {
		return err
	}

	var resolver *poster.Resolver
	if wantPosters(cfg, flagSimilarPosters) {
		r, closeFn, err := openResolver(cfg)
		if err != nil {
			return err
		}
		defer closeFn()
		resolver = r
	}

	return showSimilar(idx, resolver, strings.Join(args, " "), k, flagSimilarScores)
}

// showSimilar prints the recommendations for title. An unknown title is
// reported with suggestions and is not an error.
func showSimilar(idx *index.Index, resolver *poster.Resolver, title string, k int, scores bool) error {
	matches, err := idx.Rank(title, k)
	var nf *index.NotFoundError
	switch {
	case errors.As(err, &nf):
		printMiss("", nf.Error())
		if sugg := idx.Suggest(title, 5); len(sugg) > 0 {
			printBullet("Did you mean:")
			for _, s := range sugg {
				printInfo("", s)
			}
		}
		return nil
	case errors.Is(err, index.ErrInvalidLimit):
		return fmt.Errorf("-k must be at least 1")
	case err != nil:
		return err
	}

	printSection(fmt.Sprintf("Movies similar to %q", title))
	if len(matches) == 0 {
		printSkip("", "the catalog has no other movies")
		return nil
	}

	titles := make([]string, len(matches))
	for i, m := range matches {
		titles[i] = m.Title
	}
	posters := resolvePosters(resolver, titles)

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	for i, m := range matches {
		score := ""
		if scores {
			score = fmt.Sprintf("[%.3f]", m.Score)
		}
		fmt.Fprintf(w, "  %d.\t%s\t%s\t%s\n", i+1, score, m.Title, strings.Join(m.Genres, ", "))
		if posters != nil {
			fmt.Fprintf(w, "  \t\t  poster: %s\n", posterLabel(posters[i]))
		}
	}
	return w.Flush()
}
