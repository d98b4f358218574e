package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/halcyondb/halcyon/pkg/catalog"
	"github.com/halcyondb/halcyon/pkg/catalog/migrate"
	"github.com/halcyondb/halcyon/pkg/fixture"
	"github.com/halcyondb/halcyon/pkg/log"
	"github.com/halcyondb/halcyon/pkg/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("halcyon", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		// Catalog storage
		storageDriver = fs.String("storage", "sqlite", "Storage backend: sqlite, postgres, sqlserver")
		storageDSN    = fs.String("storage-dsn", "halcyon.db", "Storage connection string (for sqlite: file path or :memory:)")

		// Fixtures
		fixtureDir  = fs.String("d", "", "Directory of .sql fixtures to seed the catalog from")
		fixtureDirL = fs.String("fixture-dir", "", "Directory of .sql fixtures to seed the catalog from")
		watchFiles  = fs.Bool("w", false, "Watch the fixture directory and hot-reload")
		watchFilesL = fs.Bool("watch", false, "Watch the fixture directory and hot-reload")

		// Logging
		logLevel  = fs.String("log-level", "info", "Log level (debug, info, warn, error)")
		logFormat = fs.String("log-format", "text", "Log format (text, json)")

		// Help and version
		showHelp     = fs.Bool("h", false, "Show help")
		showHelpL    = fs.Bool("help", false, "Show help")
		showVersion  = fs.Bool("v", false, "Show version")
		showVersionL = fs.Bool("version", false, "Show version")
	)

	fs.Usage = func() {
		printUsage(stderr)
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	// Coalesce short and long flags
	if *fixtureDirL != "" {
		*fixtureDir = *fixtureDirL
	}
	if *watchFilesL {
		*watchFiles = true
	}
	if *showHelpL {
		*showHelp = true
	}
	if *showVersionL {
		*showVersion = true
	}

	if *showHelp {
		printUsage(stdout)
		return 0
	}

	if *showVersion {
		fmt.Fprintln(stdout, version.Full())
		return 0
	}

	// Configure logging
	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	format, err := log.ParseFormat(*logFormat)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	logCfg := log.DefaultConfig()
	logCfg.DefaultLevel = level
	logCfg.Format = format
	logger := log.New(logCfg)
	log.SetDefault(logger)

	ctx := context.Background()

	// Open the catalog store
	cat, err := catalog.Open(ctx, catalog.StoreConfig{
		Driver: *storageDriver,
		DSN:    *storageDSN,
	})
	if err != nil {
		fmt.Fprintf(stderr, "error opening catalog: %v\n", err)
		return 1
	}
	defer cat.Close()

	logger.System().Info("catalog opened",
		"driver", *storageDriver,
		"dsn", *storageDSN,
	)

	// Seed fixtures before migrating so stored text written in an older
	// syntax gets upgraded like any other persisted item.
	var loader *fixture.Loader
	if *fixtureDir != "" {
		loader = fixture.NewLoader(cat, logger)
		result, err := loader.LoadDirectory(ctx, *fixtureDir)
		if err != nil {
			fmt.Fprintf(stderr, "error loading fixtures: %v\n", err)
			return 1
		}
		for _, le := range result.Errors {
			logger.Application().Warn("fixture skipped",
				"path", le.Path,
				"error", le.Error.Error(),
			)
		}
	}

	// Run content migrations. A failure here means the persisted catalog
	// cannot be brought up to the current syntax; serving it anyway would
	// silently misbehave, so the process refuses to start.
	if err := migrate.Run(ctx, cat); err != nil {
		logger.Migration().Fatal("content migration failed", err)
		fmt.Fprintf(stderr, "error migrating catalog: %v\n", err)
		return 1
	}

	count, err := cat.ItemCount(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "error counting items: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "halcyon catalog ready (version %s)\n", version.Version)
	fmt.Fprintf(stdout, "  Storage: %s (%s)\n", *storageDriver, *storageDSN)
	fmt.Fprintf(stdout, "  Items: %d\n", count)
	fmt.Fprintf(stdout, "  Migrations applied: %d\n", len(migrate.ContentMigrations))

	if !*watchFiles {
		return 0
	}

	if loader == nil {
		fmt.Fprintln(stderr, "error: -w requires a fixture directory (-d)")
		return 2
	}

	watcher, err := fixture.NewWatcher(*fixtureDir, loader, logger)
	if err != nil {
		fmt.Fprintf(stderr, "error creating watcher: %v\n", err)
		return 1
	}
	if err := watcher.Start(); err != nil {
		fmt.Fprintf(stderr, "error starting watcher: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "  Watching: %s\n", *fixtureDir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.System().Info("shutdown signal received", "signal", sig.String())
	fmt.Fprintln(stdout, "\nShutting down...")

	if err := watcher.Stop(); err != nil {
		fmt.Fprintf(stderr, "error stopping watcher: %v\n", err)
		return 1
	}

	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `halcyon - SQL catalog with startup content migrations

Usage:
  halcyon [options]

Storage Options:
  --storage <type>         Storage backend: sqlite, postgres, sqlserver (default: sqlite)
  --storage-dsn <dsn>      Connection string (default: halcyon.db; use :memory: for a throwaway catalog)

Fixture Options:
  -d, --fixture-dir <path> Directory of .sql fixtures to seed the catalog from
  -w, --watch              Watch the fixture directory and hot-reload

Logging:
  --log-level <level>      Log level: debug, info, warn, error (default: info)
  --log-format <format>    Log format: text, json (default: text)

General:
  -h, --help               Show help
  -v, --version            Show version

Examples:
  # Migrate a durable catalog in place
  halcyon --storage-dsn ./catalog.db

  # Seed a throwaway catalog from fixtures and migrate it
  halcyon --storage-dsn :memory: -d ./fixtures

  # Keep reloading fixtures as they change
  halcyon --storage-dsn :memory: -d ./fixtures -w

  # Migrate a catalog kept in PostgreSQL
  halcyon --storage postgres --storage-dsn "postgres://halcyon@localhost/catalog"

Behaviour:
  halcyon opens the catalog store, optionally seeds it from fixture files,
  then runs every registered content migration in order. Each migration
  rewrites the persisted CREATE statements of catalog objects to match the
  current release's name-resolution rules, committing per step, all items
  or none. The process exits non-zero if any migration fails: serving an
  unmigrated catalog would silently misbehave.

Exit Codes:
  0  Success
  1  Runtime error
  2  CLI usage error
`)
}
