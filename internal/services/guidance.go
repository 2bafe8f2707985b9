package services

import (
	"context"
	"fmt"
	"log/slog"
)

// Embedder turns text into a vector. GeminiService satisfies it.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type guidanceRetriever struct {
	embedder Embedder
	store    GuidanceStore
	topic    string
}

// NewGuidanceRetriever searches store for guidance close to a query. An empty
// topic searches every topic.
func NewGuidanceRetriever(embedder Embedder, store GuidanceStore, topic string) GuidanceRetriever {
	return &guidanceRetriever{
		embedder: embedder,
		store:    store,
		topic:    topic,
	}
}

func (r *guidanceRetriever) Retrieve(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	embedding, err := r.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	results, err := r.store.Search(ctx, embedding, r.topic, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search guidance: %w", err)
	}
	return results, nil
}

// GuidanceIngester chunks, embeds and stores guidance documents.
type GuidanceIngester struct {
	embedder Embedder
	store    GuidanceStore
	chunker  *Chunker
}

func NewGuidanceIngester(embedder Embedder, store GuidanceStore, chunker *Chunker) *GuidanceIngester {
	return &GuidanceIngester{
		embedder: embedder,
		store:    store,
		chunker:  chunker,
	}
}

// Ingest replaces every stored chunk of source with the chunks of text and
// returns how many were stored. Chunks that fail to embed or store are skipped.
func (g *GuidanceIngester) Ingest(ctx context.Context, source, topic, text string) (int, error) {
	chunks := g.chunker.Chunk(text)
	if len(chunks) == 0 {
		return 0, ErrEmptyDocument
	}

	if err := g.store.DeleteSource(ctx, source); err != nil {
		return 0, err
	}

	stored := 0
	for i, chunk := range chunks {
		embedding, err := g.embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			slog.Warn("⚠️  Failed to embed chunk", "source", source, "chunk", i+1, "error", err)
			continue
		}

		err = g.store.Upsert(ctx, GuidanceChunk{
			Source: source,
			Topic:  topic,
			Index:  i,
			Text:   chunk,
		}, embedding)
		if err != nil {
			slog.Warn("⚠️  Failed to store chunk", "source", source, "chunk", i+1, "error", err)
			continue
		}
		stored++

		if stored%5 == 0 || i == len(chunks)-1 {
			slog.Info("📊 Progress", "source", source, "stored", stored, "total", len(chunks))
		}
	}

	if stored == 0 {
		return 0, fmt.Errorf("failed to store any chunk of %s", source)
	}
	return stored, nil
}
