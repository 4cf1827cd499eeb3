package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamusis/movierec/internal/catalog"
	"github.com/kamusis/movierec/internal/poster"
)

var (
	flagGenresK       int
	flagGenresList    bool
	flagGenresPosters bool
)

var genresCmd = &cobra.Command{
	Use:   "genres [genre...]",
	Short: "List catalog genres, or movies in any of the given genres",
	Long: `Without arguments (or with --list), print every genre in the catalog.

With one or more genres, print the first movies (in catalog order) that
belong to any of them. Genre names are case-insensitive; quote names that
contain spaces.

Examples:
  movierec genres
  movierec genres Action "Science Fiction" -k 10`,
	RunE: runGenres,
}

func init() {
	genresCmd.Flags().IntVarP(&flagGenresK, "k", "k", 0, "Number of movies to show (default: top_n from config)")
	genresCmd.Flags().BoolVar(&flagGenresList, "list", false, "List all genres")
	genresCmd.Flags().BoolVar(&flagGenresPosters, "posters", false, "Look up a poster for each movie")
	rootCmd.AddCommand(genresCmd)
}

func runGenres(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	movies, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	if flagGenresList || len(args) == 0 {
		showGenreList(movies)
		return nil
	}

	k := cfg.TopN
	if cmd.Flags().Changed("k") {
		k = flagGenresK
	}
	if k < 1 {
		return fmt.Errorf("-k must be at least 1")
	}

	var resolver *poster.Resolver
	if wantPosters(cfg, flagGenresPosters) {
		r, closeFn, err := openResolver(cfg)
		if err != nil {
			return err
		}
		defer closeFn()
		resolver = r
	}
	showGenreMovies(movies, resolver, args, k)
	return nil
}

func showGenreList(movies []catalog.Movie) {
	genres := catalog.AllGenres(movies)
	printSection(fmt.Sprintf("Genres (%d)", len(genres)))
	for _, g := range genres {
		fmt.Fprintf(stdout, "  %s\n", g)
	}
}

func showGenreMovies(movies []catalog.Movie, resolver *poster.Resolver, selected []string, k int) {
	refs := catalog.FilterByGenres(movies, selected, k)
	printSection(fmt.Sprintf("Movies in %s", strings.Join(selected, " / ")))
	if len(refs) == 0 {
		printMiss("", "no movies match the selected genres")
		return
	}

	titles := make([]string, len(refs))
	for i, r := range refs {
		titles[i] = r.Title
	}
	posters := resolvePosters(resolver, titles)
	for i, r := range refs {
		fmt.Fprintf(stdout, "  %d. %s (%s)\n", i+1, r.Title, strings.Join(r.Genres, ", "))
		if posters != nil {
			fmt.Fprintf(stdout, "     poster: %s\n", posterLabel(posters[i]))
		}
	}
}
