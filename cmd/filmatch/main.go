package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"

	"github.com/filmatch/filmatch/internal/config"
	"github.com/filmatch/filmatch/internal/logger"
	"github.com/filmatch/filmatch/internal/resolve"
	"github.com/filmatch/filmatch/internal/store"
	"github.com/filmatch/filmatch/internal/tmdb"
)

// multiFlag collects repeated string flags.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}

func main() {
	var (
		configPath = flag.String("config", "", "path to config file")
		title      = flag.String("title", "", "movie title to resolve (required)")
		year       = flag.Int("year", 0, "release year hint")
		duration   = flag.Int("duration", 0, "runtime hint in minutes")
		forceID    = flag.Int("force-id", 0, "override: force this TMDB ID for the lookup")
		forceConf  = flag.Float64("force-confidence", 100, "override: confidence to store with -force-id")
		asJSON     = flag.Bool("json", false, "print the result as JSON")

		directors multiFlag
		actors    multiFlag
		languages multiFlag
	)
	flag.Var(&directors, "director", "director name hint (repeatable)")
	flag.Var(&actors, "actor", "actor name hint (repeatable)")
	flag.Var(&languages, "language", "spoken language hint (repeatable or comma-separated)")
	flag.Parse()

	var langHints []string
	for _, l := range languages {
		for _, part := range strings.Split(l, ",") {
			if part = strings.TrimSpace(part); part != "" {
				langHints = append(langHints, part)
			}
		}
	}

	if *title == "" {
		fmt.Fprintln(os.Stderr, "error: -title is required")
		flag.Usage()
		os.Exit(2)
	}

	// Optional .env for TMDB_API_KEY and friends.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := tmdb.NewClient(cfg.TMDB, log.Logger)

	var cacheStore resolve.CacheStore
	db, err := store.New(cfg.Database.Path)
	if err != nil {
		// Memory-only is a supported degraded mode; keep going.
		log.Warn().Err(err).Msg("lookup cache store unavailable, running memory-only")
	} else {
		cacheStore = db
		defer db.Close()
	}

	resolver := resolve.New(client, cacheStore, cfg.Resolver, log.Logger)

	req := resolve.LookupRequest{
		Title:           *title,
		Directors:       directors,
		Actors:          actors,
		Year:            *year,
		DurationMinutes: *duration,
		Languages:       langHints,
	}

	if *forceID != 0 {
		override, err := resolver.Override(ctx, req, *forceID, *forceConf)
		if err != nil {
			log.Error().Err(err).Msg("override failed")
			os.Exit(1)
		}
		printOverride(override, *asJSON)
		return
	}

	result, err := resolver.Resolve(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("lookup failed")
		os.Exit(1)
	}
	printResult(result, *asJSON)
}

func printResult(result resolve.LookupResult, asJSON bool) {
	if asJSON {
		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))
		return
	}

	// No confident match is a normal outcome, still exit 0.
	if result.TmdbID == nil {
		fmt.Printf("no match (%s)\n", result.Trace.Reason)
		return
	}
	fmt.Printf("tmdb_id=%d confidence=%.0f reason=%s\n", *result.TmdbID, *result.Confidence, result.Trace.Reason)
	if result.Winner != nil {
		fmt.Printf("title=%q year=%d\n", result.Winner.Title, result.Winner.Year)
	}
}

func printOverride(override resolve.OverrideResult, asJSON bool) {
	if asJSON {
		out, _ := json.MarshalIndent(override, "", "  ")
		fmt.Println(string(out))
		return
	}
	fmt.Printf("stored tmdb_id=%d confidence=%.0f hash=%s\n", override.TmdbID, override.Confidence, override.LookupHash)
}
