package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"rfpqa/internal/chunker"
	"rfpqa/internal/config"
	"rfpqa/internal/domain"
	"rfpqa/internal/embedding/openai"
	"rfpqa/internal/extractor"
	"rfpqa/internal/formatter"
	llmopenai "rfpqa/internal/llm/openai"
	"rfpqa/internal/metrics"
	"rfpqa/internal/prompts"
	"rfpqa/internal/service"
	"rfpqa/internal/summarizer"
	"rfpqa/internal/tui"
	"rfpqa/internal/vectorstore/memory"
	"rfpqa/internal/vectorstore/qdrant"
)

const usage = `Usage:
  rfpqa [flags] init              recreate the collection (drops existing records)
  rfpqa [flags] index file...     extract, chunk and index documents
  rfpqa [flags] ask <question>    answer one question and exit
  rfpqa [flags] [file...]         index the files (if any) and open the ask TUI

Flags:
  -config path   YAML config file (default: ./config.yaml, then ~/.config/rfpqa/)
  -limit n       number of results to retrieve (default from config)
  -no-llm        answer from the top retrieved record, no model call
`

type app struct {
	cfg      *config.AppConfig
	indexer  *service.Indexer
	pipeline *service.Pipeline
	store    domain.VectorStore
	counters *metrics.Counters
	limit    int
	useModel bool
}

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var limit int
	var noLLM bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file")
	flag.IntVar(&limit, "limit", 0, "Number of results to retrieve")
	flag.BoolVar(&noLLM, "no-llm", false, "Skip LLM synthesis")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	args := flag.Args()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if limit <= 0 {
		limit = cfg.Search.DefaultLimit
	}

	a, err := assemble(cfg, limit, !noLLM)
	if err != nil {
		log.Fatalf("failed to assemble pipeline: %v", err)
	}

	ctx := context.Background()
	switch {
	case len(args) > 0 && args[0] == "init":
		runInit(ctx, a)
	case len(args) > 0 && args[0] == "index":
		if len(args) < 2 {
			log.Fatal("index: no files given")
		}
		runIndex(ctx, a, args[1:])
	case len(args) > 0 && args[0] == "ask":
		if len(args) < 2 {
			log.Fatal("ask: no question given")
		}
		runAsk(ctx, a, strings.Join(args[1:], " "))
	default:
		if len(args) > 0 {
			runIndex(ctx, a, args)
		}
		m := tui.New(a.pipeline, a.counters, a.limit, a.useModel)
		if _, err := tea.NewProgram(m).Run(); err != nil {
			log.Fatal(err)
		}
	}
}

func assemble(cfg *config.AppConfig, limit int, useModel bool) (*app, error) {
	embedder, err := openai.NewClient(openai.Config{
		BaseURL:    cfg.Embedding.BaseURL,
		APIKeyEnv:  cfg.Embedding.APIKeyEnv,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding client: %w", err)
	}

	var store domain.VectorStore
	switch cfg.VectorStore.Type {
	case "qdrant", "":
		if cfg.VectorStore.Qdrant == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		store = qdrant.New(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     os.Getenv(cfg.VectorStore.Qdrant.APIKeyEnv),
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	case "memory":
		mem := memory.New()
		if err := mem.CreateCollection(context.Background(), embedder.Dimension()); err != nil {
			return nil, err
		}
		store = mem
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	var completer domain.Completer
	if useModel {
		completer, err = llmopenai.NewClient(llmopenai.Config{
			BaseURL:     cfg.LLM.BaseURL,
			APIKeyEnv:   cfg.LLM.APIKeyEnv,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Printf("LLM disabled: %v", err)
			completer = nil
			useModel = false
		}
	}

	splitter, err := chunker.New(cfg.Chunker.Size, cfg.Chunker.Overlap)
	if err != nil {
		return nil, fmt.Errorf("chunker: %w", err)
	}

	counters := metrics.New()
	indexer := service.NewIndexer(extractor.New(), splitter, embedder, store,
		summarizer.New(), cfg.Summary.MaxSentences, counters)
	searcher := service.NewSearcher(embedder, store, cfg.Search.DefaultLimit, counters)
	synth := service.NewSynthesizer(completer, prompts.NewStore(cfg.Prompts.AnswerPath))
	pipeline := service.NewPipeline(searcher, synth, formatter.New(), counters)

	return &app{
		cfg:      cfg,
		indexer:  indexer,
		pipeline: pipeline,
		store:    store,
		counters: counters,
		limit:    limit,
		useModel: useModel,
	}, nil
}

func runInit(ctx context.Context, a *app) {
	fmt.Println("Recreating the collection drops all existing records.")
	if err := a.indexer.CreateCollection(ctx); err != nil {
		log.Fatalf("init failed: %v", err)
	}
	fmt.Println("Collection created.")
}

func runIndex(ctx context.Context, a *app, paths []string) {
	for _, path := range paths {
		report, err := a.indexer.IndexDocument(ctx, path)
		if err != nil {
			log.Fatalf("index %s: %v", path, err)
		}
		fmt.Printf("%s: %d characters, %d chunks indexed\n",
			report.Source, report.Characters, report.Chunks)
		if report.Summary != "" {
			fmt.Printf("  summary: %s\n", report.Summary)
		}
	}
	if count, err := a.store.Count(ctx); err == nil {
		fmt.Printf("Collection now holds %d records.\n", count)
	}
}

func runAsk(ctx context.Context, a *app, question string) {
	answer, err := a.pipeline.Ask(ctx, question, a.limit, a.useModel)
	if err != nil {
		log.Fatalf("ask failed: %v", err)
	}
	fmt.Printf("%s (%s)\n\n%s\n", answer.ConfidenceLabel, answer.ConfidencePct, answer.Answer)
	for i, src := range answer.Sources {
		fmt.Printf("\nSource %d (score %.3f)", i+1, src.Score)
		if src.Question != "" {
			fmt.Printf("\n  Q: %s", src.Question)
		}
		if src.Text != "" {
			fmt.Printf("\n  A: %s", src.Text)
		}
		if src.Date != "" {
			fmt.Printf("\n  date: %s", src.Date)
		}
		fmt.Println()
	}
}
