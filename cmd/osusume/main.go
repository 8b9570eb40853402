// Package main is the Osusume CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/osusume/internal/cache"
	"github.com/hyperjump/osusume/internal/cli"
	"github.com/hyperjump/osusume/internal/config"
	"github.com/hyperjump/osusume/internal/embedding"
	"github.com/hyperjump/osusume/internal/extract"
	"github.com/hyperjump/osusume/internal/keyword"
	"github.com/hyperjump/osusume/internal/models"
	"github.com/hyperjump/osusume/internal/recommend"
	"github.com/hyperjump/osusume/internal/server"
	"github.com/hyperjump/osusume/internal/storage"
	"github.com/hyperjump/osusume/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/osusume/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "osusume server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded (for saving, etc.).
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
	case "recommend":
		runRecommend()
	case "feedback":
		runFeedback()
	case "ingest":
		runIngest()
	case "delete":
		runDelete()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("osusume version %s\n", version)
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
	debug := fs.Bool("debug", false, "enable debug logging (cache hits, pool sizes, etc.)")
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

	reloader := config.NewReloader(resolvedConfigPath, components.Engine.ApplyConfig, logger)
	reloadCtx, reloadCancel := context.WithCancel(context.Background())
	defer reloadCancel()
	if err := reloader.Start(reloadCtx); err != nil {
		logger.Warn("config reloader not started", zap.Error(err))
	} else {
		defer reloader.Stop()
	}

	srv := server.NewServer(components.Engine, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildQueryText joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildQueryText(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "osusume recommend \"query\" -k 5"
// would otherwise leave -k unparsed.
func argsReorder(args []string) []string {
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

func runRecommend() {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	userID := fs.String("user", "", "requesting user ID (required)")
	k := fs.Int("k", 0, "number of recommendations (0 = server default)")
	title := fs.String("title", "", "goal title to rank against")
	technologies := fs.String("technologies", "", "comma-separated technologies")
	interests := fs.String("interests", "", "comma-separated interests")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	fs.Usage = func() { printRecommendUsage(fs) }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "recommend requires --user")
		printRecommendUsage(fs)
		os.Exit(1)
	}
	description := buildQueryText(fs.Args())
	if description == "" && *title == "" && *technologies == "" && *interests == "" {
		printRecommendUsage(fs)
		os.Exit(1)
	}

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	req := &models.RecommendRequest{
		UserID:           *userID,
		Title:            *title,
		Description:      description,
		TechnologiesText: *technologies,
		InterestsText:    *interests,
		K:                *k,
	}
	response, err := recommendViaHTTP(*serverURL, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Recommend failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteRecommendations(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func printRecommendUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: osusume recommend [flags] <goal description>\n\n")
	fmt.Fprintf(fs.Output(), "The goal description is all remaining arguments joined by spaces.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  osusume recommend --user alice learn python web development
  osusume recommend --user alice --technologies python,flask --k 5 "build a REST API"
  osusume recommend --user alice --output json microservices
`)
}

func runFeedback() {
	fs := flag.NewFlagSet("feedback", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	userID := fs.String("user", "", "user ID (required)")
	sessionID := fs.String("session", "", "session ID the recommendation came from")
	queryContext := fs.String("context", "", "free-form query context")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if *userID == "" || fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: osusume feedback --user <id> <content-id> <type>")
		fmt.Fprintf(os.Stderr, "Types: %s\n", strings.Join(feedbackTypeNames(), ", "))
		os.Exit(1)
	}
	event := &models.FeedbackEvent{
		UserID:    *userID,
		ContentID: fs.Arg(0),
		Type:      models.FeedbackType(fs.Arg(1)),
		SessionID: *sessionID,
		Context:   *queryContext,
	}
	id, err := feedbackViaHTTP(*serverURL, event)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Feedback failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("recorded %s\n", id)
}

func feedbackTypeNames() []string {
	types := []models.FeedbackType{
		models.FeedbackClicked, models.FeedbackSaved, models.FeedbackCompleted,
		models.FeedbackHelpful, models.FeedbackDismissed, models.FeedbackNotRelevant,
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	ownerID := fs.String("owner", "", "owning user ID")
	title := fs.String("title", "", "item title")
	itemURL := fs.String("url", "", "item URL")
	quality := fs.Int("quality", 0, "editorial quality score")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: osusume ingest [flags] <file>   (use - for stdin)")
		os.Exit(1)
	}
	raw, err := readIngestSource(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Read failed: %v\n", err)
		os.Exit(1)
	}
	input := &models.CandidateItemInput{
		OwnerID:      *ownerID,
		Title:        *title,
		RawText:      raw,
		URL:          *itemURL,
		QualityScore: *quality,
	}
	if input.Title == "" && fs.Arg(0) != "-" {
		base := filepath.Base(fs.Arg(0))
		input.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	id, err := ingestViaHTTP(*serverURL, input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("stored %s\n", id)
}

// readIngestSource returns the item text for path. Stdin is treated as
// plain text; files go through format-aware extraction so PDFs, Office
// documents, and spreadsheets ingest as readable text.
func readIngestSource(path string) (string, error) {
	if path == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	return extract.NewExtractor().Extract(path)
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: osusume delete [flags] <item-id>")
		os.Exit(1)
	}
	id := fs.Arg(0)
	if err := deleteViaHTTP(*serverURL, id); err != nil {
		fmt.Fprintf(os.Stderr, "Delete failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("deleted %s\n", id)
}

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	DefaultK            int    `json:"default_k,omitempty"`
	MaxK                int    `json:"max_k,omitempty"`
	PoolLimit           int    `json:"pool_limit,omitempty"`
	EmbeddingDimensions int    `json:"embedding_dimensions,omitempty"`
	DatabasePath        string `json:"database_path,omitempty"`
	BleveIndexPath      string `json:"bleve_index_path,omitempty"`
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Items          int64                 `json:"items"`
	FeedbackEvents int64                 `json:"feedback_events"`
	DiskUsageBytes *int64                `json:"disk_usage_bytes,omitempty"`
	Config         *statusConfigResponse `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
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
		items, feedback, err := components.Engine.Status(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Items:          items,
			FeedbackEvents: feedback,
			Config: &statusConfigResponse{
				DefaultK:            cfg.Recommend.DefaultK,
				MaxK:                cfg.Recommend.MaxK,
				PoolLimit:           cfg.Recommend.PoolLimit,
				EmbeddingDimensions: cfg.Embedding.Dimensions,
				DatabasePath:        cfg.Storage.DatabasePath,
				BleveIndexPath:      cfg.Storage.BleveIndexPath,
			},
		}
		diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.CachePath, cfg.Storage.BleveIndexPath)
		if err == nil {
			status.DiskUsageBytes = &diskBytes
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
		fmt.Printf("items:            %d   # count of stored candidate items\n", status.Items)
		fmt.Printf("feedback_events:  %d   # count of recorded feedback events\n", status.FeedbackEvents)
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes: %d   # storage + indices on disk\n", *status.DiskUsageBytes)
		}
		if status.Config != nil {
			fmt.Println()
			fmt.Println("# configuration")
			fmt.Printf("default_k:        %d\n", status.Config.DefaultK)
			fmt.Printf("max_k:            %d\n", status.Config.MaxK)
			fmt.Printf("pool_limit:       %d\n", status.Config.PoolLimit)
			if status.Config.EmbeddingDimensions > 0 {
				fmt.Printf("embedding_dims:   %d\n", status.Config.EmbeddingDimensions)
			}
			if status.Config.DatabasePath != "" {
				fmt.Printf("database_path:    %s\n", status.Config.DatabasePath)
			}
			if status.Config.BleveIndexPath != "" {
				fmt.Printf("bleve_index_path: %s\n", status.Config.BleveIndexPath)
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func recommendViaHTTP(serverURL string, req *models.RecommendRequest) (*models.RecommendResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/recommend", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.RecommendResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func feedbackViaHTTP(serverURL string, event *models.FeedbackEvent) (string, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	resp, err := http.Post(serverURL+"/api/v1/feedback", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var ack struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return ack.ID, nil
}

func ingestViaHTTP(serverURL string, input *models.CandidateItemInput) (string, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	resp, err := http.Post(serverURL+"/api/v1/items", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var ack struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return ack.ID, nil
}

func deleteViaHTTP(serverURL, id string) error {
	req, err := http.NewRequest(http.MethodDelete, serverURL+"/api/v1/items/"+id, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	return nil
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

// Components bundles everything the server and direct-mode commands need.
type Components struct {
	Storage  storage.Storage
	Cache    cache.Cache
	Recall   keyword.RecallIndex
	Embedder embedding.Embedder
	Engine   *recommend.Engine
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.Recall != nil {
		_ = c.Recall.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	resultCache, err := cache.NewBadgerCache(cfg.Storage.CachePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	recall, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize recall index: %w", err)
	}

	var embedder embedding.Embedder
	onnxEmbedder, err := embedding.NewONNXEmbedder(
		cfg.Embedding.ModelPath,
		cfg.Embedding.Dimensions,
		cfg.Embedding.MaxTokens,
		cfg.Embedding.CacheSize,
	)
	if err != nil {
		if logger != nil {
			logger.Warn("ONNX embedder unavailable, using mock embedder", zap.Error(err))
		}
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	} else {
		embedder = onnxEmbedder
	}
	if cfg.Embedding.Timeout > 0 {
		embedder = embedding.NewTimeoutEmbedder(embedder, cfg.Embedding.Timeout)
	}

	engine := recommend.NewEngine(cfg, store, recall, resultCache, embedder, logger)

	return &Components{
		Storage:  store,
		Cache:    resultCache,
		Recall:   recall,
		Embedder: embedder,
		Engine:   engine,
	}, nil
}

func printUsage() {
	fmt.Println(`osusume - Personalized content recommendation engine

Usage:
  osusume server [flags]                  Start the HTTP server
  osusume recommend [flags] <goal>        Rank stored items against a goal
  osusume feedback [flags] <id> <type>    Record feedback on a recommended item
  osusume ingest [flags] <file>           Store a candidate item (use - for stdin)
  osusume delete [flags] <id>             Delete a candidate item
  osusume status [flags]                  Show engine/storage status
  osusume version                         Show version
  osusume help                            Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/osusume/config.yaml)
  --debug            Enable debug logging (cache hits, pool sizes, etc.)

Recommend Flags:
  --server string        Server URL (default: http://localhost:8080)
  --user string          Requesting user ID (required)
  --k int                Number of recommendations (0 = server default)
  --title string         Goal title to rank against
  --technologies string  Comma-separated technologies
  --interests string     Comma-separated interests
  --output string        Output format: text, compact, or json (default: text)

Feedback Flags:
  --server string    Server URL (default: http://localhost:8080)
  --user string      User ID (required)
  --session string   Session ID the recommendation came from
  --context string   Free-form query context

Ingest Flags:
  --server string    Server URL (default: http://localhost:8080)
  --owner string     Owning user ID
  --title string     Item title (default: derived from filename)
  --url string       Item URL
  --quality int      Editorial quality score

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Examples:
  osusume server
  osusume recommend --user alice learn python web development
  osusume recommend --user alice --technologies python,flask --k 5 "build a REST API"
  osusume feedback --user alice item-123 clicked
  osusume ingest --owner alice --title "Flask Guide" guide.md
  osusume delete item-123
  osusume status --output json`)
}
