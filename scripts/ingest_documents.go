package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"placementhelper/ats-agent/internal/config"
	"placementhelper/ats-agent/internal/services"
)

// Loads resume-writing guidance (PDF/DOCX) into the Qdrant collection used by
// the optimize endpoint. Each file's topic is its parent directory name.
func main() {
	dir := flag.String("dir", "./reference_docs", "directory of guidance documents")
	chunkSize := flag.Int("chunk", services.DefaultChunkRunes, "max chunk size in characters")
	overlap := flag.Int("overlap", services.DefaultChunkOverlap, "chunk overlap in characters")
	flag.Parse()

	cfg := config.Load()
	config.InitLogger(cfg)
	slog.Info("🚀 Starting guidance ingestion...", "dir", *dir)

	if cfg.Qdrant.URL == "" {
		fatal("❌ QDRANT_URL is not set", nil)
	}

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.EmbedModel)
	if err != nil {
		fatal("❌ Failed to initialize Gemini", err)
	}

	store, err := services.NewQdrantStore(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, uint64(cfg.Qdrant.VectorSize))
	if err != nil {
		fatal("❌ Failed to initialize Qdrant", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := store.EnsureCollection(ctx); err != nil {
		fatal("❌ Failed to initialize collection", err)
	}

	extractor := services.NewDocumentExtractor()
	ingester := services.NewGuidanceIngester(geminiService, store, services.NewChunker(*chunkSize, *overlap))

	var paths []string
	err = filepath.WalkDir(*dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && services.SupportedExtension(filepath.Ext(path)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		fatal("❌ Failed to list guidance documents", err)
	}

	successCount := 0
	failCount := 0

	for _, path := range paths {
		source, _ := filepath.Rel(*dir, path)
		topic := filepath.Base(filepath.Dir(path))
		if filepath.Dir(source) == "." {
			topic = "general"
		}
		log := slog.With("source", source, "topic", topic)

		log.Info("📄 Processing")

		doc, err := extractor.ExtractFile(path)
		if err != nil {
			log.Error("❌ Failed to extract text", "error", err)
			failCount++
			continue
		}
		log.Info("✅ Extracted", "chars", len(doc.Text))

		stored, err := ingester.Ingest(ctx, source, topic, doc.Text)
		if err != nil {
			log.Error("❌ Failed to ingest", "error", err)
			failCount++
			continue
		}

		log.Info("✅ Ingested", "chunks", stored)
		successCount++
	}

	slog.Info(strings.Repeat("=", 60))
	slog.Info("📊 Ingestion Summary", "successful", successCount, "failed", failCount)
	slog.Info(strings.Repeat("=", 60))

	if failCount > 0 {
		slog.Warn("⚠️  Some documents failed to ingest. Please check the logs above.")
		os.Exit(1)
	}

	slog.Info("✅ All documents ingested successfully!")
}

func fatal(msg string, err error) {
	if err != nil {
		slog.Error(msg, "error", err)
	} else {
		slog.Error(msg)
	}
	os.Exit(1)
}
