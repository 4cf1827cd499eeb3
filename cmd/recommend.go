package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamusis/movierec/internal/poster"
)

var (
	flagRecommendGenres  []string
	flagRecommendTitle   string
	flagRecommendK       int
	flagRecommendPosters bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Genre picks and title-based recommendations in one go",
	Long: `Show movies in the selected genres, then movies similar to a title.

Either part may be omitted; with neither --genre nor --title a hint is
printed.

Examples:
  movierec recommend --genre Comedy --genre Romance
  movierec recommend --genre Action --title Avatar -k 8 --posters`,
	Args: cobra.NoArgs,
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().StringArrayVar(&flagRecommendGenres, "genre", nil, "Genre to pick from (repeatable)")
	recommendCmd.Flags().StringVar(&flagRecommendTitle, "title", "", "Movie to base recommendations on")
	recommendCmd.Flags().IntVarP(&flagRecommendK, "k", "k", 0, "Number of movies per section (default: top_n from config)")
	recommendCmd.Flags().BoolVar(&flagRecommendPosters, "posters", false, "Look up a poster for each movie")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	if len(flagRecommendGenres) == 0 && flagRecommendTitle == "" {
		printInfo("", "select at least one genre (--genre) or a movie (--title) to get recommendations")
		return nil
	}

	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	k := cfg.TopN
	if cmd.Flags().Changed("k") {
		k = flagRecommendK
	}
	if k < 1 {
		return fmt.Errorf("-k must be at least 1")
	}

	idx, err := loadIndex(cfg)
	if err != nil {
		return err
	}

	var resolver *poster.Resolver
	if wantPosters(cfg, flagRecommendPosters) {
		r, closeFn, err := openResolver(cfg)
		if err != nil {
			return err
		}
		defer closeFn()
		resolver = r
	}

	if len(flagRecommendGenres) > 0 {
		showGenreMovies(idx.Movies(), resolver, flagRecommendGenres, k)
	}
	if flagRecommendTitle != "" {
		return showSimilar(idx, resolver, flagRecommendTitle, k, false)
	}
	return nil
}
