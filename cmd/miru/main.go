// Package main is the Miru CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/miru/internal/archive"
	"github.com/hyperjump/miru/internal/catalog"
	"github.com/hyperjump/miru/internal/cli"
	"github.com/hyperjump/miru/internal/config"
	"github.com/hyperjump/miru/internal/metrics"
	"github.com/hyperjump/miru/internal/models"
	"github.com/hyperjump/miru/internal/ranking"
	"github.com/hyperjump/miru/internal/rerank"
	"github.com/hyperjump/miru/internal/search"
	"github.com/hyperjump/miru/internal/server"
	"github.com/hyperjump/miru/internal/watcher"
	"github.com/hyperjump/miru/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/miru/config.yaml"
	defaultServerURL  = "http://localhost:8201"
)

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "miru server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded.
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
	case "index":
		runIndex()
	case "locations":
		runLocations()
	case "fetch":
		runFetch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("miru version %s\n", version)
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
	debug := fs.Bool("debug", false, "enable debug logging (corpus scans, per-query timing, etc.)")
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
		zap.Bool("vlm_enabled", cfg.VLM.Enabled),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	metrics.RegisterSearchMetrics()

	ctx := context.Background()
	// Serve the last persisted catalog immediately, then refresh from disk.
	if _, restoreErr := components.Rebuilder.Restore(ctx); restoreErr != nil {
		logger.Warn("snapshot restore failed", zap.Error(restoreErr))
	}
	go func() {
		cat, buildErr := components.Rebuilder.Rebuild(ctx)
		if buildErr != nil {
			logger.Error("initial corpus scan failed", zap.Error(buildErr))
			return
		}
		metrics.CatalogItems.Set(float64(cat.Len()))
	}()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	var watchSvc *watcher.Watcher
	if cfg.Corpus.WatchOrDefault() {
		watchOpts := []watcher.WatcherOption{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watchSvc = watcher.NewWatcher(
			cfg.Corpus.Root,
			cfg.Corpus.Extensions,
			func() {
				cat, rebuildErr := components.Rebuilder.Rebuild(context.Background())
				if rebuildErr != nil {
					logger.Warn("corpus rebuild after change failed", zap.Error(rebuildErr))
					return
				}
				metrics.CatalogItems.Set(float64(cat.Len()))
			},
			watchOpts...,
		)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
	}

	srv := server.NewServer(
		components.Engine,
		components.Retriever,
		components.Store,
		components.Rebuilder,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watchSvc != nil {
		watchSvc.Stop()
	}
	watchCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}

// printSearchUsage prints search subcommand usage and filter hints.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: miru search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Results are ranked by fused relevance (filename filter + image analysis when
the server runs with a VLM backend).
  • --location and --weather narrow results by extracted metadata.
  • --min-relevance drops low-scoring hits; --limit/--offset page through the rest.

Examples:
  miru search fog at the harbor
  miru search "fog at the harbor"            # same as above
  miru search --location daebudo fog
  miru search --weather fog --limit 50 cctv
  miru search --output json fog              # structured JSON for other apps
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "miru search \"query\" -limit 50"
// would otherwise leave -limit unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch() {
	searchArgs := searchArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = scan the corpus directly when server is not running)")
	limit := fs.Int("limit", 0, "number of results per page (0 = server default)")
	offset := fs.Int("offset", 0, "number of results to skip")
	location := fs.String("location", "", "filter by location name (substring)")
	weather := fs.String("weather", "", "filter by weather tag (substring)")
	minRelevance := fs.Float64("min-relevance", 0, "minimum fused relevance score")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	if fs.NArg() < 1 {
		printSearchUsage(fs)
		os.Exit(1)
	}
	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
		format = cli.OutputText
	case "compact":
		format = cli.OutputCompact
	default:
		fmt.Printf("Unknown output format %q; use text, compact, or json\n", *outputFormat)
		os.Exit(1)
	}

	searchQuery := &models.SearchQuery{
		Query:        queryStr,
		Limit:        *limit,
		Offset:       *offset,
		Location:     *location,
		Weather:      *weather,
		MinRelevance: *minRelevance,
	}

	if *serverURL != "" {
		// Use the HTTP API when the server is running so results include VLM
		// scores from the shared analysis cache.
		response, err := searchViaHTTP(*serverURL, searchQuery)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Direct corpus access (when server is not running). Fast filter only;
	// the VLM backend is not dialed from one-shot CLI invocations.
	cfg, _, err := loadConfig(*configPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.VLM.Enabled = false
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	if _, err := components.Rebuilder.Rebuild(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Corpus scan failed: %v\n", err)
		os.Exit(1)
	}
	response, err := components.Engine.Search(ctx, searchQuery)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	params := url.Values{}
	params.Set("query", query.Query)
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		params.Set("offset", strconv.Itoa(query.Offset))
	}
	if query.Location != "" {
		params.Set("location", query.Location)
	}
	if query.Weather != "" {
		params.Set("weather", query.Weather)
	}
	if query.MinRelevance > 0 {
		params.Set("min_relevance", strconv.FormatFloat(query.MinRelevance, 'f', -1, 64))
	}
	resp, err := http.Get(serverURL + "/api/v1/search?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = scan the corpus directly)")
	_ = fs.Parse(os.Args[2:])

	if *serverURL != "" {
		resp, err := http.Post(*serverURL+"/api/v1/reindex", "application/json", nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Reindex failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Reindex failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		var out struct {
			Items int `json:"items"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Reindexed %d item(s)\n", out.Items)
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.VLM.Enabled = false
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

	cat, err := components.Rebuilder.Rebuild(context.Background())
	if err != nil {
		fmt.Printf("Indexing failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Indexed %d item(s) from %s\n", cat.Len(), cfg.Corpus.Root)
}

func runLocations() {
	fs := flag.NewFlagSet("locations", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/locations")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Locations failed (%d): %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var out struct {
		Locations []models.LocationCount `json:"locations"`
		Total     int                    `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		for _, lc := range out.Locations {
			fmt.Printf("%-24s %d\n", lc.Location, lc.Count)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func runFetch() {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outPath := fs.String("out", "", "output file path (default: the item's filename in the current directory)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: miru fetch [flags] <item-id>")
		fmt.Println("  item-id is location/filename, e.g. daebudo/TS.daebudo_fog.jpg")
		os.Exit(1)
	}
	itemID := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.VLM.Enabled = false
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

	ctx := context.Background()
	if _, err := components.Rebuilder.Rebuild(ctx); err != nil {
		fmt.Printf("Corpus scan failed: %v\n", err)
		os.Exit(1)
	}
	data, rec, err := components.Retriever.Fetch(ctx, itemID)
	if err != nil {
		fmt.Printf("Fetch failed: %v\n", err)
		os.Exit(1)
	}
	dest := *outPath
	if dest == "" {
		dest = rec.Filename
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		fmt.Printf("Write failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d bytes to %s\n", len(data), dest)
}

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	CorpusRoot   string `json:"corpus_root,omitempty"`
	VLMEnabled   bool   `json:"vlm_enabled"`
	VLMModel     string `json:"vlm_model,omitempty"`
	CandidateCap int    `json:"candidate_cap,omitempty"`
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Items       int                   `json:"items"`
	Locations   int                   `json:"locations"`
	LastIndexed string                `json:"last_indexed,omitempty"`
	Config      *statusConfigResponse `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = scan the corpus directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg.VLM.Enabled = false
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		cat, err := components.Rebuilder.Rebuild(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Corpus scan failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Items:     cat.Len(),
			Locations: len(cat.Locations()),
			Config: &statusConfigResponse{
				CorpusRoot:   cfg.Corpus.Root,
				VLMEnabled:   cfg.VLM.Enabled,
				VLMModel:     cfg.VLM.Model,
				CandidateCap: cfg.Search.CandidateCap,
			},
		}
		if last := components.Rebuilder.LastBuilt(); !last.IsZero() {
			status.LastIndexed = last.Format(time.RFC3339)
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("items:        %d   # images in the catalog\n", status.Items)
		fmt.Printf("locations:    %d   # distinct camera locations\n", status.Locations)
		if status.LastIndexed != "" {
			fmt.Printf("last_indexed: %s\n", status.LastIndexed)
		}
		if status.Config != nil {
			fmt.Println()
			fmt.Println("# configuration")
			if status.Config.CorpusRoot != "" {
				fmt.Printf("corpus_root:   %s\n", status.Config.CorpusRoot)
			}
			fmt.Printf("vlm_enabled:   %t\n", status.Config.VLMEnabled)
			if status.Config.VLMModel != "" {
				fmt.Printf("vlm_model:     %s\n", status.Config.VLMModel)
			}
			if status.Config.CandidateCap > 0 {
				fmt.Printf("candidate_cap: %d\n", status.Config.CandidateCap)
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Store     *catalog.Store
	Snapshot  *catalog.Snapshot
	Rebuilder *catalog.Rebuilder
	Engine    *search.Engine
	Retriever *archive.Retriever
	Reranker  *rerank.Reranker
}

func (c *Components) Close() {
	if c.Reranker != nil {
		c.Reranker.Release()
	}
	if c.Snapshot != nil {
		_ = c.Snapshot.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store := catalog.NewStore()

	builder := catalog.NewBuilder(cfg.Corpus.Root,
		catalog.WithExtensions(cfg.Corpus.Extensions),
		catalog.WithLogger(logger),
	)

	var snapshot *catalog.Snapshot
	if cfg.Corpus.SnapshotPath != "" {
		var err error
		snapshot, err = catalog.OpenSnapshot(cfg.Corpus.SnapshotPath)
		if err != nil {
			// The snapshot only speeds up restarts; run without it.
			logger.Warn("snapshot unavailable, continuing without persistence",
				zap.String("path", cfg.Corpus.SnapshotPath), zap.Error(err))
			snapshot = nil
		}
	}
	rebuilder := catalog.NewRebuilder(builder, store, snapshot, logger)

	retrieverOpts := []archive.RetrieverOption{
		archive.WithLogger(logger),
		archive.WithRoot(cfg.Corpus.Root),
	}
	if cfg.Corpus.TempDir != "" {
		retrieverOpts = append(retrieverOpts, archive.WithTempDir(cfg.Corpus.TempDir))
	}
	retriever := archive.NewRetriever(store, retrieverOpts...)

	scorer := ranking.NewQuickScorer(cfg.Search.Ranking)
	engineOpts := []search.EngineOption{
		search.WithCandidateCap(cfg.Search.CandidateCap),
		search.WithLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit),
		search.WithThreshold(cfg.Search.SimilarityThreshold),
		search.WithLogger(logger),
	}

	var reranker *rerank.Reranker
	if cfg.VLM.Enabled {
		client := rerank.NewClient(&rerank.ClientConfig{
			BaseURL:     cfg.VLM.BaseURL,
			APIKey:      cfg.VLM.APIKey,
			Model:       cfg.VLM.Model,
			Temperature: cfg.VLM.Temperature,
			MaxTokens:   cfg.VLM.MaxTokens,
		})
		healthCtx, healthCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.HealthCheck(healthCtx); err != nil {
			// Degraded rerank falls back to fast scores per item, so an
			// unreachable backend at startup is not fatal.
			logger.Warn("analysis backend unreachable",
				zap.String("base_url", cfg.VLM.BaseURL), zap.Error(err))
		}
		healthCancel()

		var err error
		reranker, err = rerank.NewReranker(client, retriever, cfg.VLM.Workers,
			rerank.WithWeights(cfg.Search.FastWeight, cfg.Search.VLMWeight),
			rerank.WithTimeout(time.Duration(cfg.VLM.TimeoutSeconds)*time.Second),
			rerank.WithCache(rerank.NewAnalysisCache(cfg.VLM.CacheSize)),
			rerank.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize reranker: %w", err)
		}
		engineOpts = append(engineOpts, search.WithReranker(reranker))
	}

	engine := search.NewEngine(store, scorer, engineOpts...)

	return &Components{
		Store:     store,
		Snapshot:  snapshot,
		Rebuilder: rebuilder,
		Engine:    engine,
		Retriever: retriever,
		Reranker:  reranker,
	}, nil
}

func printUsage() {
	fmt.Println(`miru - CCTV image corpus search server

Usage:
  miru server [flags]             Start the HTTP server
  miru search [flags] <query>     Search the image catalog
  miru index [flags]              Rescan the corpus and rebuild the catalog
  miru locations [flags]          List locations with image counts
  miru fetch [flags] <item-id>    Extract one image to a local file
  miru status [flags]             Show catalog and configuration status
  miru version                    Show version
  miru help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/miru/config.yaml)
  --debug            Enable debug logging (corpus scans, per-query timing, etc.)

Search Flags:
  --config string          Config file path (for direct corpus mode)
  --server string          Server URL (default: http://localhost:8201). Use empty (--server "") to scan the corpus directly.
  --limit int              Results per page (0 = server default)
  --offset int             Results to skip
  --location string        Filter by location name (substring)
  --weather string         Filter by weather tag (substring)
  --min-relevance float    Minimum fused relevance score
  --output string          Output format: text, compact, or json (default: text)

Index Flags:
  --config string    Config file path (for direct corpus mode)
  --server string    Server URL (default: http://localhost:8201). Use empty (--server "") to scan directly.

Fetch Flags:
  --config string    Config file path
  --out string       Output file path (default: the item's filename)

Status Flags:
  --config string    Config file path (for direct corpus mode)
  --server string    Server URL (default: http://localhost:8201). Use empty (--server "") to scan directly.
  --output string    Output format: text or json (default: text)

Examples:
  miru server
  miru search fog at the harbor
  miru search --location daebudo --output json fog
  miru index
  miru locations
  miru fetch daebudo/TS.daebudo_fog.jpg
  miru status --output json`)
}
