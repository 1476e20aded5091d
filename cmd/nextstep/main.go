// Package main is the NextStep CLI entry point.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/nextstep/internal/cli"
	"github.com/hyperjump/nextstep/internal/config"
	"github.com/hyperjump/nextstep/internal/keyword"
	"github.com/hyperjump/nextstep/internal/models"
	"github.com/hyperjump/nextstep/internal/server"
	"github.com/hyperjump/nextstep/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/nextstep/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in the
// current directory wins if present; when neither exists the built-in defaults are used.
// Returns the config and the path that was actually loaded ("" for defaults).
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
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func newLogger(cfg *config.Config, debug bool) (*zap.Logger, error) {
	return utils.NewFileLogger(debug, utils.FileLogOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
}

// setup loads .env, the config and the logger for a subcommand.
func setup(configPath string, debugFlag bool) (*config.Config, *zap.Logger) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debug := cfg.Debug || debugFlag
	logger, err := newLogger(cfg, debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debug))
	return cfg, logger
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
	case "chat":
		runChat()
	case "search":
		runSearch()
	case "resources":
		runResources()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("nextstep version %s\n", version)
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
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()
	if err := startDatasetWatch(ctx, components, cfg, logger); err != nil {
		logger.Fatal("Failed to watch dataset", zap.Error(err))
	}

	srv := server.NewServer(components.Agent, components.Engine, components.Catalog, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

func runChat() {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	location := fs.String("location", "", "location for every message (default: background location)")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()
	if err := startDatasetWatch(ctx, components, cfg, logger); err != nil {
		logger.Fatal("Failed to watch dataset", zap.Error(err))
	}

	runREPL(ctx, components, os.Stdin, os.Stdout, *location)
}

// runREPL reads one message per line. "/clear" resets the conversation, "/quit" exits.
func runREPL(ctx context.Context, c *Components, in io.Reader, out io.Writer, location string) {
	a := c.Agent
	cli.WriteReply(out, a.Introduce(ctx))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return
		case "/clear":
			a.Clear()
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		}
		resp, err := a.HandleQuery(ctx, line, location)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		cli.WriteReply(out, resp)
		if ctx.Err() != nil {
			return
		}
	}
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: nextstep search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  nextstep search food pantry
  nextstep search --location "Austin, TX" --category food groceries for my family
  nextstep search --server "" --output json emergency shelter   # no running server needed
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
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

// parseCategories splits a comma-separated list into categories.
func parseCategories(s string) ([]models.Category, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []models.Category
	for _, part := range strings.Split(s, ",") {
		c, err := models.ParseCategory(part)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = search in-process)")
	location := fs.String("location", "", "location to match, e.g. \"Austin, TX\"")
	categories := fs.String("category", "", "comma-separated categories, e.g. food,housing")
	urgency := fs.String("urgency", "", "low, medium or high")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cats, err := parseCategories(*categories)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	query := &models.Query{
		Text:       buildSearchQuery(fs.Args()),
		Location:   *location,
		Urgency:    models.Urgency(*urgency),
		Categories: cats,
	}
	if query.Text == "" && query.Location == "" && len(query.Categories) == 0 {
		printSearchUsage(fs)
		os.Exit(1)
	}

	var response *models.SearchResponse
	if *serverURL != "" {
		response, err = searchViaHTTP(*serverURL, query)
	} else {
		cfg, logger := setup(*configPath, false)
		defer logger.Sync()
		components, initErr := initializeComponents(context.Background(), cfg, logger)
		if initErr != nil {
			logger.Fatal("Failed to initialize", zap.Error(initErr))
		}
		defer components.Close()
		response, err = components.Engine.Search(context.Background(), query)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL string, query *models.Query) (*models.SearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(strings.TrimRight(serverURL, "/")+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runResources() {
	fs := flag.NewFlagSet("resources", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	category := fs.String("category", "", "only list this category")
	text := fs.String("q", "", "full-text query over name, description, services and city")
	fuzzy := fs.Bool("fuzzy", false, "enable fuzzy matching for typo tolerance")
	limit := fs.Int("limit", 50, "maximum resources to list")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var cat models.Category
	if *category != "" {
		if cat, err = models.ParseCategory(*category); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	cfg, logger := setup(*configPath, false)
	defer logger.Sync()
	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	var resources []*models.Resource
	switch {
	case *text != "":
		resources, err = components.Catalog.TextSearch(context.Background(), *text, *limit, &keyword.SearchOptions{
			NameBoost:    2.0,
			Category:     cat,
			FuzzyEnabled: *fuzzy || cfg.Search.FuzzyText,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	case cat != "":
		resources = components.Catalog.GetResourcesByCategory(cat)
	default:
		resources = components.Catalog.GetAllResources()
	}
	if *limit > 0 && len(resources) > *limit {
		resources = resources[:*limit]
	}
	if err := cli.WriteResources(os.Stdout, resources, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	u, err := url.JoinPath(*serverURL, "/api/v1/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid server URL: %v\n", err)
		os.Exit(1)
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(u)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	var out bytes.Buffer
	if err := json.Indent(&out, mustRead(resp.Body), "", "  "); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid status response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out.String())
}

func mustRead(r io.Reader) []byte {
	b, err := io.ReadAll(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Read failed: %v\n", err)
		os.Exit(1)
	}
	return b
}

func printUsage() {
	fmt.Println(`nextstep - Conversational social-service resource referral

Usage:
  nextstep server [flags]             Start the HTTP server
  nextstep chat [flags]               Chat in the terminal
  nextstep search [flags] <query>     Rank resources for a query
  nextstep resources [flags]          List or full-text search the catalog
  nextstep status [flags]             Show status of a running server
  nextstep version                    Show version
  nextstep help                       Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/nextstep/config.yaml, then ./config.yaml)
  --debug            Enable debug logging (server, chat)

Chat:
  --location string  Location sent with every message (default: background location)
  Type /clear to start over and /quit to exit.

Search Flags:
  --server string    Server URL (default: http://localhost:8080). Use --server "" to search in-process.
  --location string  Location to match
  --category string  Comma-separated categories
  --urgency string   low, medium or high
  --output string    text or json

Resources Flags:
  --category string  Only this category
  --q string         Full-text query
  --fuzzy            Typo-tolerant matching
  --limit int        Maximum resources (default: 50)
  --output string    text or json

Environment:
  OPENAI_API_KEY     Enables the embedding and completion services (read from .env when present)

Examples:
  nextstep server
  nextstep chat --location "Austin, TX"
  nextstep search --category housing emergency shelter tonight
  nextstep resources --q "food pantry" --output json`)
}
