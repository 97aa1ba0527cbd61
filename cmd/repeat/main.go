package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/conorfennell/repeat/internal/config"
	"github.com/conorfennell/repeat/internal/domain"
	"github.com/conorfennell/repeat/internal/drill"
	"github.com/conorfennell/repeat/internal/session"
	"github.com/conorfennell/repeat/internal/stats"
	"github.com/conorfennell/repeat/internal/storage"
	"github.com/conorfennell/repeat/internal/sync"
)

const usage = `Usage: repeat <command> [flags]

Commands:
  drill    Review due cards interactively
  create   Create or append to a card file
  check    Register all cards from sources and print collection stats
  stats    Print collection stats without registering anything
  sync     Sync all sources and register new cards
  sources  Manage card sources: list, add <path-or-url>, remove <id>

Run 'repeat <command> --help' for command flags.`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()
	var err error
	switch cmd := os.Args[1]; cmd {
	case "drill":
		err = runDrill(ctx, os.Args[2:])
	case "create":
		err = runCreate(os.Args[2:])
	case "check":
		err = runCheck(ctx, os.Args[2:])
	case "stats":
		err = runStats(ctx, os.Args[2:])
	case "sync":
		err = runSync(ctx, os.Args[2:])
	case "sources":
		err = runSources(ctx, os.Args[2:])
	case "help", "-h", "--help":
		fmt.Println(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// commonFlags declares the flags every subcommand shares. Defaults mirror
// config.Default so unset flags do not override file or env settings with
// something else.
func commonFlags(fs *pflag.FlagSet) {
	defaults := config.Default()
	fs.String("config", "repeat.yaml", "Path to the YAML config file")
	fs.String("db-path", defaults.DBPath, "Path to the SQLite database file")
	fs.String("repos-dir", defaults.ReposDir, "Directory git sources are cloned into")
}

// setup parses flags, loads configuration, and opens the store.
func setup(fs *pflag.FlagSet, args []string) (config.Config, *storage.DB, error) {
	if err := fs.Parse(args); err != nil {
		return config.Config{}, nil, err
	}
	configPath, _ := fs.GetString("config")
	cfg, err := config.Load(configPath, fs)
	if err != nil {
		return config.Config{}, nil, err
	}
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, db, nil
}

func runDrill(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("drill", pflag.ContinueOnError)
	commonFlags(fs)
	defaults := config.Default()
	fs.Int("card-limit", defaults.CardLimit, "Maximum cards per session, 0 for unbounded")
	fs.Int("new-card-limit", defaults.NewCardLimit, "Maximum new cards per session, 0 for unbounded")
	dir := fs.String("dir", "", "Drill a directory directly instead of the registered sources")

	cfg, db, err := setup(fs, args)
	if err != nil {
		return err
	}
	defer db.Close()

	known, err := buildKnown(ctx, db, *dir, cfg.ReposDir)
	if err != nil {
		return err
	}

	limits := session.Unbounded
	if cfg.CardLimit > 0 {
		limits.Cards = session.Limit(cfg.CardLimit)
	}
	if cfg.NewCardLimit > 0 {
		limits.NewCards = session.Limit(cfg.NewCardLimit)
	}
	return drill.New(db, &cfg.Scheduler, os.Stdin, os.Stdout).Run(ctx, known, limits)
}

func runCheck(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("check", pflag.ContinueOnError)
	commonFlags(fs)
	dir := fs.String("dir", "", "Check a directory directly instead of the registered sources")

	cfg, db, err := setup(fs, args)
	if err != nil {
		return err
	}
	defer db.Close()

	known, err := buildKnown(ctx, db, *dir, cfg.ReposDir)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d unique cards and registered them.\n", len(known))

	return printStats(ctx, db, known, cfg)
}

func runStats(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("stats", pflag.ContinueOnError)
	commonFlags(fs)
	dir := fs.String("dir", "", "Scan a directory directly instead of the registered sources")

	cfg, db, err := setup(fs, args)
	if err != nil {
		return err
	}
	defer db.Close()

	known, err := buildKnown(ctx, db, *dir, cfg.ReposDir)
	if err != nil {
		return err
	}
	return printStats(ctx, db, known, cfg)
}

func runSync(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("sync", pflag.ContinueOnError)
	commonFlags(fs)

	cfg, db, err := setup(fs, args)
	if err != nil {
		return err
	}
	defer db.Close()

	known, err := sync.Run(ctx, db, cfg.ReposDir)
	if err != nil {
		return err
	}
	fmt.Printf("Sync complete: %d cards known.\n", len(known))
	return nil
}

func runSources(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("sources", pflag.ContinueOnError)
	commonFlags(fs)

	_, db, err := setup(fs, args)
	if err != nil {
		return err
	}
	defer db.Close()

	rest := fs.Args()
	if len(rest) == 0 {
		rest = []string{"list"}
	}
	switch rest[0] {
	case "list":
		return listSources(ctx, db)
	case "add":
		if len(rest) != 2 {
			return fmt.Errorf("usage: repeat sources add <path-or-url>")
		}
		return addSource(ctx, db, rest[1])
	case "remove":
		if len(rest) != 2 {
			return fmt.Errorf("usage: repeat sources remove <id>")
		}
		id, err := strconv.ParseInt(rest[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid source ID %q", rest[1])
		}
		return db.DeleteSource(ctx, id)
	default:
		return fmt.Errorf("unknown sources subcommand %q", rest[0])
	}
}

func listSources(ctx context.Context, db *storage.DB) error {
	sources, err := db.GetAllSources(ctx)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		fmt.Println("No sources registered.")
		return nil
	}
	for _, s := range sources {
		scanned := "never"
		if s.LastScanned.Valid {
			scanned = s.LastScanned.Time.Local().Format("2006-01-02 15:04")
		}
		fmt.Printf("%d\t%s\t%s\tlast scanned %s\n", s.ID, s.Kind, s.Path, scanned)
	}
	return nil
}

func addSource(ctx context.Context, db *storage.DB, path string) error {
	existing, err := db.FindSourceByPath(ctx, path)
	if err != nil {
		return err
	}
	if existing != nil {
		fmt.Printf("Source already registered with ID %d.\n", existing.ID)
		return nil
	}
	kind := sync.DetectKind(path)
	id, err := db.InsertSource(ctx, path, kind)
	if err != nil {
		return err
	}
	fmt.Printf("Added %s source %s with ID %d.\n", kind, path, id)
	return nil
}

// buildKnown resolves the known-card set either from a single directory or
// from the registered sources.
func buildKnown(ctx context.Context, db *storage.DB, dir, reposDir string) (domain.KnownCards, error) {
	if dir != "" {
		return sync.Scan(ctx, db, dir)
	}
	return sync.Run(ctx, db, reposDir)
}

func printStats(ctx context.Context, db *storage.DB, known domain.KnownCards, cfg config.Config) error {
	rows, err := db.ScanAll(ctx)
	if err != nil {
		return err
	}
	opts := stats.Options{
		MatureThresholdDays: cfg.MatureThresholdDays,
		HistogramBuckets:    cfg.HistogramBuckets,
	}
	report(stats.Aggregate(known, rows, time.Now(), &cfg.Scheduler, opts))
	return nil
}
