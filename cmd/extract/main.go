package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"secrecon/pkg/core/document"
	"secrecon/pkg/core/engine"
	"secrecon/pkg/core/enrich"
	"secrecon/pkg/core/store"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	var (
		inPath     = flag.String("in", "", "input document (.txt, .md or .html)")
		configPath = flag.String("config", "", "optional YAML config file")
		doEnrich   = flag.Bool("enrich", false, "fill descriptive gaps via Gemini")
		doSave     = flag.Bool("save", false, "persist the run (Postgres or local cache)")
		model      = flag.String("model", "", "Gemini model override for enrichment")
	)
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: extract -in <document> [-config <file>] [-enrich] [-save]")
		os.Exit(2)
	}

	cfg := engine.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = engine.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("[Extract] config: %v", err)
		}
	}

	doc, err := loadDocument(*inPath)
	if err != nil {
		log.Fatalf("[Extract] reading %s: %v", *inPath, err)
	}

	ctx := context.Background()
	records, report := engine.New(cfg).Extract(doc)

	if *doEnrich {
		records = enrich.New(&enrich.GeminiProvider{Model: *model}).Enrich(ctx, records)
	}

	if *doSave {
		runStore, err := store.Open(ctx, "")
		if err != nil {
			log.Fatalf("[Extract] opening store: %v", err)
		}
		defer runStore.Close()
		id, err := runStore.SaveRun(ctx, filepath.Base(*inPath), records, report)
		if err != nil {
			log.Fatalf("[Extract] saving run: %v", err)
		}
		log.Printf("[Extract] saved run %s", id)
	}

	out := struct {
		Records interface{} `json:"records"`
		Report  interface{} `json:"report"`
	}{records, report}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("[Extract] encoding output: %v", err)
	}
}

// loadDocument reads and converts the input by file extension.
func loadDocument(path string) (document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return document.Document{}, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return document.FromHTML(string(data))
	case ".md", ".markdown":
		return document.FromMarkdown(string(data))
	default:
		return document.FromText(string(data)), nil
	}
}
