package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type lengthEmbedder struct {
	failOn string
}

func (e lengthEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if e.failOn != "" && strings.Contains(text, e.failOn) {
		return nil, errors.New("embedding quota exceeded")
	}
	return []float32{float32(len(text)), 1}, nil
}

type memoryGuidanceStore struct {
	chunks  []GuidanceChunk
	deleted []string
	topics  []string
	results []SearchResult
}

func (m *memoryGuidanceStore) EnsureCollection(context.Context) error { return nil }

func (m *memoryGuidanceStore) Upsert(ctx context.Context, chunk GuidanceChunk, embedding []float32) error {
	m.chunks = append(m.chunks, chunk)
	return nil
}

func (m *memoryGuidanceStore) Search(ctx context.Context, embedding []float32, topic string, limit int) ([]SearchResult, error) {
	m.topics = append(m.topics, topic)
	if len(m.results) > limit {
		return m.results[:limit], nil
	}
	return m.results, nil
}

func (m *memoryGuidanceStore) DeleteSource(ctx context.Context, source string) error {
	m.deleted = append(m.deleted, source)
	return nil
}

func TestGuidanceIngester(t *testing.T) {
	Convey("Given a guidance ingester", t, func() {
		ctx := context.Background()
		store := &memoryGuidanceStore{}
		text := "Lead with impact.\n\nQuantify every result.\n\nKeep one page."

		Convey("When a document is ingested", func() {
			ingester := NewGuidanceIngester(lengthEmbedder{}, store, NewChunker(25, 0))
			stored, err := ingester.Ingest(ctx, "tips/ats.pdf", "tips", text)

			Convey("Then old chunks are replaced and every chunk is stored", func() {
				So(err, ShouldBeNil)
				So(stored, ShouldEqual, 3)
				So(store.deleted, ShouldResemble, []string{"tips/ats.pdf"})
				So(store.chunks[2], ShouldResemble, GuidanceChunk{
					Source: "tips/ats.pdf", Topic: "tips", Index: 2, Text: "Keep one page.",
				})
			})
		})

		Convey("When one chunk fails to embed", func() {
			ingester := NewGuidanceIngester(lengthEmbedder{failOn: "Quantify"}, store, NewChunker(25, 0))
			stored, err := ingester.Ingest(ctx, "tips.docx", "general", text)

			So(err, ShouldBeNil)
			So(stored, ShouldEqual, 2)
		})

		Convey("When the document is blank", func() {
			ingester := NewGuidanceIngester(lengthEmbedder{}, store, NewChunker(25, 0))
			_, err := ingester.Ingest(ctx, "blank.pdf", "general", "  \n\n ")

			So(errors.Is(err, ErrEmptyDocument), ShouldBeTrue)
			So(store.deleted, ShouldBeEmpty)
		})
	})
}

func TestGuidanceRetriever(t *testing.T) {
	Convey("Given stored guidance", t, func() {
		store := &memoryGuidanceStore{results: []SearchResult{
			{Score: 0.9, Text: "Lead with impact."},
			{Score: 0.8, Text: "Quantify every result."},
		}}

		Convey("When guidance is retrieved for a topic", func() {
			results, err := NewGuidanceRetriever(lengthEmbedder{}, store, "tips").Retrieve(context.Background(), "go developer", 1)

			So(err, ShouldBeNil)
			So(results, ShouldHaveLength, 1)
			So(store.topics, ShouldResemble, []string{"tips"})
			So(FormatGuidanceContext(results), ShouldEqual, "--- Guidance 1 (Score: 0.90) ---\nLead with impact.")
		})

		Convey("When the query cannot be embedded", func() {
			_, err := NewGuidanceRetriever(lengthEmbedder{failOn: "go"}, store, "").Retrieve(context.Background(), "go developer", 3)

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "failed to generate query embedding")
		})
	})
}
