package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/portalsearch/internal/cli"
	"github.com/hyperjump/portalsearch/internal/config"
	"github.com/hyperjump/portalsearch/internal/history"
	"github.com/hyperjump/portalsearch/internal/models"
	"github.com/hyperjump/portalsearch/internal/storage"
	"github.com/hyperjump/portalsearch/pkg/utils"
)

// filterFlag collects repeated --filter expressions.
type filterFlag []string

func (f *filterFlag) String() string { return strings.Join(*f, ",") }

func (f *filterFlag) Set(v string) error {
	*f = append(*f, v)
	return nil
}

// searchFlags are shared by search and global.
type searchFlags struct {
	configPath  *string
	serverURL   *string
	limit       *int
	offset      *int
	fuzzy       *bool
	fields      *string
	facets      *string
	orderBy     *string
	order       *string
	output      *string
	collections *string
	filters     filterFlag
}

func newSearchFlagSet(name string, global bool) (*flag.FlagSet, *searchFlags) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	sf := &searchFlags{
		configPath: fs.String("config", defaultConfigPath, "config file path"),
		serverURL:  fs.String("server", "", "server URL (empty = use direct storage)"),
		limit:      fs.Int("limit", 0, "page size (0 = config default_limit)"),
		offset:     fs.Int("offset", 0, "number of results to skip"),
		fuzzy:      fs.Bool("fuzzy", false, "enable typo tolerance"),
		fields:     fs.String("fields", "", "comma-separated fields to search"),
		facets:     fs.String("facets", "", "comma-separated facet fields"),
		orderBy:    fs.String("order-by", "", "field to order by"),
		order:      fs.String("order", "", "order direction: asc or desc"),
		output:     fs.String("output", "text", "output format: text, compact or json"),
	}
	if global {
		sf.collections = fs.String("collections", "", "comma-separated collections (default from config)")
	}
	fs.Var(&sf.filters, "filter", "filter expression, repeatable (field=value, field>=70, field~text)")
	return fs, sf
}

// request turns parsed flags and the query into a search request.
func (sf *searchFlags) request(query string) (models.SearchRequest, error) {
	req := models.SearchRequest{Query: query}
	req.Fields = splitList(*sf.fields)
	req.Facets = splitList(*sf.facets)
	req.Fuzzy = *sf.fuzzy
	req.Offset = *sf.offset
	req.Limit = *sf.limit
	req.OrderBy = *sf.orderBy
	req.OrderDirection = strings.ToLower(*sf.order)
	if sf.collections != nil {
		req.Collections = splitList(*sf.collections)
	}
	if len(sf.filters) > 0 {
		req.Filters = make(map[string]any, len(sf.filters))
		for _, expr := range sf.filters {
			field, value, err := parseFilterArg(expr)
			if err != nil {
				return req, err
			}
			req.Filters[field] = value
		}
	}
	return req, req.Validate()
}

// filterOperators are matched longest first.
var filterOperators = []struct {
	token string
	name  string
}{
	{"!=", "ne"},
	{">=", "gte"},
	{"<=", "lte"},
	{"=", "eq"},
	{">", "gt"},
	{"<", "lt"},
	{"~", "contains"},
	{"^", "startsWith"},
	{"$", "endsWith"},
}

// parseFilterArg parses "field<op>value". Values that are valid JSON (numbers,
// booleans, null, arrays) are decoded; anything else is a string. Equality
// yields a bare literal, other operators an {"operator", "value"} object.
func parseFilterArg(expr string) (string, any, error) {
	i := strings.IndexAny(expr, "=!<>~^$")
	if i <= 0 {
		return "", nil, fmt.Errorf("invalid filter %q: want field<op>value", expr)
	}
	field := strings.TrimSpace(expr[:i])
	rest := expr[i:]
	for _, op := range filterOperators {
		if !strings.HasPrefix(rest, op.token) {
			continue
		}
		value := parseFilterValue(strings.TrimSpace(rest[len(op.token):]))
		if op.name == "eq" {
			return field, value, nil
		}
		return field, map[string]any{"operator": op.name, "value": value}, nil
	}
	return "", nil, fmt.Errorf("invalid filter %q: unknown operator", expr)
}

func parseFilterValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		switch v.(type) {
		case float64, bool, nil, []any:
			return v
		}
	}
	return s
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// buildSearchQuery joins positional args with spaces and trims the result.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// reorderArgs moves flags (and their values) ahead of positional args so the
// standard flag package, which stops at the first positional, sees them all.
// "--" ends flag processing.
func reorderArgs(fs *flag.FlagSet, args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			positional = append(positional, a)
			continue
		}
		flags = append(flags, a)
		name := strings.TrimLeft(a, "-")
		if strings.Contains(name, "=") {
			continue
		}
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
			continue
		}
		if i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	if len(positional) == 0 {
		return flags
	}
	out := append(flags, "--")
	return append(out, positional...)
}

// setupDirect loads config and opens storage for commands that run without a server.
func setupDirect(configPath string) (*config.Config, *zap.Logger, *Components) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	return cfg, logger, components
}

func parseFormat(s string) cli.OutputFormat {
	format, err := cli.ParseOutputFormat(s)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return format
}

// applyLimits mirrors the server: 0 takes the default, anything above the maximum is capped.
func applyLimits(cfg *config.SearchConfig, opts *models.SearchOptions) {
	if opts.Limit == 0 {
		opts.Limit = cfg.DefaultLimit
	}
	if cfg.MaxLimit > 0 && opts.Limit > cfg.MaxLimit {
		opts.Limit = cfg.MaxLimit
	}
}

func runSearch() {
	fs, sf := newSearchFlagSet("search", false)
	_ = fs.Parse(reorderArgs(fs, os.Args[2:]))

	if fs.NArg() < 2 {
		fmt.Println("Usage: portalsearch search [flags] <collection> <query>")
		os.Exit(1)
	}
	collection := fs.Arg(0)
	req, err := sf.request(buildSearchQuery(fs.Args()[1:]))
	if err != nil {
		fmt.Printf("Invalid search: %v\n", err)
		os.Exit(1)
	}
	format := parseFormat(*sf.output)

	var result *models.SearchResult
	if *sf.serverURL != "" {
		result = &models.SearchResult{}
		if err := newAPIClient(*sf.serverURL).do(http.MethodPost, collectionPath(collection), req, result, true); err != nil {
			fmt.Printf("Search failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, logger, components := setupDirect(*sf.configPath)
		defer logger.Sync()
		defer components.Close()
		applyLimits(&cfg.Search, &req.SearchOptions)
		ctx := context.Background()
		result, _ = components.Engine.SearchCollection(ctx, components.Storage, collection, req.Query, req.SearchOptions)
		if !result.Failed() && cfg.History.RecordSearchesOrDefault() {
			components.History.Record(ctx, req.Query)
		}
	}

	if err := cli.WriteSearchResult(os.Stdout, collection, result, format); err != nil {
		fmt.Printf("Output failed: %v\n", err)
		os.Exit(1)
	}
	if result.Failed() {
		os.Exit(1)
	}
}

func runGlobal() {
	fs, sf := newSearchFlagSet("global", true)
	_ = fs.Parse(reorderArgs(fs, os.Args[2:]))

	query := buildSearchQuery(fs.Args())
	if query == "" {
		fmt.Println("Usage: portalsearch global [flags] <query>")
		os.Exit(1)
	}
	req, err := sf.request(query)
	if err != nil {
		fmt.Printf("Invalid search: %v\n", err)
		os.Exit(1)
	}
	format := parseFormat(*sf.output)

	var result *models.GlobalSearchResult
	if *sf.serverURL != "" {
		result = &models.GlobalSearchResult{}
		if err := newAPIClient(*sf.serverURL).do(http.MethodPost, "/api/v1/search", req, result, false); err != nil {
			fmt.Printf("Search failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, logger, components := setupDirect(*sf.configPath)
		defer logger.Sync()
		defer components.Close()
		applyLimits(&cfg.Search, &req.SearchOptions)
		ctx := context.Background()
		result = components.Engine.GlobalSearch(ctx, components.Storage, req.Query, req.SearchOptions, req.Collections...)
		if cfg.History.RecordSearchesOrDefault() {
			components.History.Record(ctx, req.Query)
		}
	}

	if err := cli.WriteGlobalResult(os.Stdout, result, format); err != nil {
		fmt.Printf("Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runHistory() {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text, compact or json")
	_ = fs.Parse(reorderArgs(fs, os.Args[2:]))

	action := "list"
	if fs.NArg() > 0 {
		action = fs.Arg(0)
	}
	if action != "list" && action != "clear" {
		fmt.Println("Usage: portalsearch history [list|clear] [flags]")
		os.Exit(1)
	}
	format := parseFormat(*outputFormat)

	if *serverURL != "" {
		client := newAPIClient(*serverURL)
		if action == "clear" {
			if err := client.do(http.MethodDelete, "/api/v1/history", nil, nil, false); err != nil {
				fmt.Printf("Clear history failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Search history cleared.")
			return
		}
		var resp struct {
			History []string `json:"history"`
		}
		if err := client.do(http.MethodGet, "/api/v1/history", nil, &resp, false); err != nil {
			fmt.Printf("History failed: %v\n", err)
			os.Exit(1)
		}
		_ = cli.WriteHistory(os.Stdout, resp.History, format)
		return
	}

	_, logger, components := setupDirect(*configPath)
	defer logger.Sync()
	defer components.Close()
	ctx := context.Background()
	if action == "clear" {
		if err := components.History.ClearHistory(ctx); err != nil {
			fmt.Printf("Clear history failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Search history cleared.")
		return
	}
	entries, err := components.History.History(ctx)
	if err != nil {
		fmt.Printf("History failed: %v\n", err)
		os.Exit(1)
	}
	_ = cli.WriteHistory(os.Stdout, entries, format)
}

func runPopular() {
	fs := flag.NewFlagSet("popular", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text, compact or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	var terms []history.TermCount
	if *serverURL != "" {
		var resp struct {
			Terms []history.TermCount `json:"terms"`
		}
		if err := newAPIClient(*serverURL).do(http.MethodGet, "/api/v1/popular", nil, &resp, false); err != nil {
			fmt.Printf("Popular terms failed: %v\n", err)
			os.Exit(1)
		}
		terms = resp.Terms
	} else {
		_, logger, components := setupDirect(*configPath)
		defer logger.Sync()
		defer components.Close()
		var err error
		terms, err = components.History.PopularSearchTerms(context.Background())
		if err != nil {
			fmt.Printf("Popular terms failed: %v\n", err)
			os.Exit(1)
		}
	}
	_ = cli.WritePopular(os.Stdout, terms, format)
}

// statusResponse is the shape of GET /api/v1/status.
type statusResponse struct {
	Records        int64                   `json:"records"`
	Collections    []models.CollectionInfo `json:"collections"`
	DiskUsageBytes *int64                  `json:"disk_usage_bytes,omitempty"`
	Config         map[string]any          `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	var status statusResponse
	if *serverURL != "" {
		if err := newAPIClient(*serverURL).do(http.MethodGet, "/api/v1/status", nil, &status, false); err != nil {
			fmt.Printf("Status failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, logger, components := setupDirect(*configPath)
		defer logger.Sync()
		defer components.Close()
		ctx := context.Background()
		var err error
		if status.Records, err = components.Storage.CountRecords(ctx, ""); err != nil {
			fmt.Printf("Status failed: %v\n", err)
			os.Exit(1)
		}
		if status.Collections, err = components.Storage.ListCollections(ctx); err != nil {
			fmt.Printf("Status failed: %v\n", err)
			os.Exit(1)
		}
		if n, err := storage.DiskUsageBytes(storage.DatabaseFiles(cfg.Storage.DatabasePath)...); err == nil {
			status.DiskUsageBytes = &n
		}
		status.Config = map[string]any{
			"database_path":      cfg.Storage.DatabasePath,
			"default_limit":      cfg.Search.DefaultLimit,
			"max_limit":          cfg.Search.MaxLimit,
			"global_collections": cfg.Search.GlobalCollections,
			"watch_directories":  cfg.Watch.Directories,
		}
	}

	if format == cli.OutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(status)
		return
	}
	fmt.Printf("Records:     %d\n", status.Records)
	fmt.Printf("Collections: %d\n", len(status.Collections))
	for _, c := range status.Collections {
		fmt.Printf("  %-20s %d\n", c.Name, c.Count)
	}
	if status.DiskUsageBytes != nil {
		fmt.Printf("Disk usage:  %d bytes\n", *status.DiskUsageBytes)
	}
	if p, ok := status.Config["database_path"]; ok {
		fmt.Printf("Database:    %v\n", p)
	}
}
