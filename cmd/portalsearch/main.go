// Package main is the portalsearch CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/portalsearch/internal/config"
	"github.com/hyperjump/portalsearch/internal/history"
	"github.com/hyperjump/portalsearch/internal/search"
	"github.com/hyperjump/portalsearch/internal/server"
	"github.com/hyperjump/portalsearch/internal/storage"
	"github.com/hyperjump/portalsearch/internal/watcher"
	"github.com/hyperjump/portalsearch/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/portalsearch/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory wins if present; when neither exists, built-in
// defaults are used. Returns the config and the path actually loaded ("" for
// built-in defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
			var cfg config.Config
			config.ApplyDefaults(&cfg)
			return &cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "global":
		runGlobal()
	case "history":
		runHistory()
	case "popular":
		runPopular()
	case "import":
		runImport()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("portalsearch version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (scores, import events, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if len(cfg.Watch.Directories) > 0 {
		importer := watcher.NewImporter(components.Storage, logger)
		watchSvc := watcher.New(
			cfg.Watch.Directories,
			importer,
			watcher.WithExtensions(cfg.Watch.Extensions),
			watcher.WithRecursive(cfg.Watch.RecursiveOrDefault()),
			watcher.WithLogger(logger),
		)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		watchSvc.SyncExisting()
	}

	srv := server.NewServer(components.Engine, components.Storage, components.History, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(reorderArgs(fs, os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: portalsearch import [flags] <file-or-directory>...")
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	importer := watcher.NewImporter(components.Storage, logger)
	ctx := context.Background()
	failed := false
	for _, root := range fs.Args() {
		files, err := importFiles(root, cfg.Watch.Extensions)
		if err != nil {
			fmt.Printf("Failed to read %s: %v\n", root, err)
			failed = true
			continue
		}
		for _, path := range files {
			name, n, err := importer.Import(ctx, path)
			if err != nil {
				fmt.Printf("Import failed: %v\n", err)
				failed = true
				continue
			}
			fmt.Printf("Imported %d record(s) into %s from %s\n", n, name, path)
		}
	}
	if failed {
		os.Exit(1)
	}
}

// importFiles returns path itself when it is a file, or every file below it
// whose extension is in exts when it is a directory.
func importFiles(path string, exts []string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := strings.ToLower(filepath.Ext(p))
		for _, e := range exts {
			if strings.ToLower(e) == ext {
				files = append(files, p)
				break
			}
		}
		return nil
	})
	return files, err
}

// Components holds initialized services.
type Components struct {
	Storage *storage.SQLiteStorage
	Engine  *search.Engine
	History *history.Service
}

// Close releases the storage handle.
func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	engine := search.NewEngine(&cfg.Search, search.WithLogger(logger))
	hist := history.NewService(store, cfg.History, history.WithLogger(logger))
	return &Components{
		Storage: store,
		Engine:  engine,
		History: hist,
	}, nil
}

func printUsage() {
	fmt.Println(`portalsearch - Search engine for the parent/student portal

Usage:
  portalsearch server [flags]                        Start the HTTP server
  portalsearch search [flags] <collection> <query>   Search one collection
  portalsearch global [flags] <query>                Search recordings, notes and exercises
  portalsearch history [list|clear] [flags]          Show or clear recent searches
  portalsearch popular [flags]                       Show popular search terms
  portalsearch import [flags] <file-or-directory>    Import .json, .yaml or .xlsx collections
  portalsearch status [flags]                        Show storage status
  portalsearch version                               Show version
  portalsearch help                                  Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/portalsearch/config.yaml)
  --debug            Enable debug logging

Search Flags (search and global):
  --config string        Config file path (for direct storage mode)
  --server string        Server URL, e.g. http://localhost:8080 (empty = direct storage)
  --limit int            Page size (default from config)
  --offset int           Page offset
  --fields string        Comma-separated fields to search (default from collection profile)
  --facets string        Comma-separated facet fields
  --filter expr          Filter, repeatable: field=value, field!=value, field>=70, field~text, field^prefix, field$suffix
  --order-by string      Field to order by
  --order string         asc or desc
  --fuzzy                Enable typo tolerance
  --collections string   (global only) Comma-separated collections
  --output string        Output format: text, compact or json (default: text)

Examples:
  portalsearch server
  portalsearch search notes arabic grammar
  portalsearch search --filter "status>=70" --order-by title exercises tajweed
  portalsearch global --output json quran
  portalsearch import ./imports
  portalsearch history clear
  portalsearch status --output json`)
}
