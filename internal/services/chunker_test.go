package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNewChunker(t *testing.T) {
	Convey("Given chunker settings", t, func() {
		So(*NewChunker(0, -1), ShouldResemble, Chunker{MaxRunes: DefaultChunkRunes, Overlap: 0})
		So(*NewChunker(100, 100), ShouldResemble, Chunker{MaxRunes: 100, Overlap: 25})
		So(*NewChunker(100, 20), ShouldResemble, Chunker{MaxRunes: 100, Overlap: 20})
	})
}

func TestChunker(t *testing.T) {
	Convey("Given a chunker", t, func() {
		Convey("When the text fits in one chunk", func() {
			chunks := NewChunker(100, 10).Chunk("First paragraph.\n\nSecond   paragraph\nwrapped.")

			So(chunks, ShouldResemble, []string{"First paragraph. Second paragraph wrapped."})
		})

		Convey("When the text is blank", func() {
			So(NewChunker(100, 10).Chunk(" \n\n \r\n"), ShouldBeEmpty)
		})

		Convey("When paragraphs overflow a chunk", func() {
			text := "alpha beta gamma delta\n\nepsilon zeta eta theta\n\niota kappa lambda mu"
			chunks := NewChunker(30, 10).Chunk(text)

			Convey("Then each chunk stays within the limit", func() {
				So(len(chunks), ShouldBeGreaterThan, 1)
				for _, c := range chunks {
					So(utf8.RuneCountInString(c), ShouldBeLessThanOrEqualTo, 30)
				}
			})

			Convey("Then no paragraph is lost", func() {
				joined := strings.Join(chunks, " ")
				for _, word := range strings.Fields(text) {
					So(joined, ShouldContainSubstring, word)
				}
			})
		})

		Convey("When a chunk has room for the overlap", func() {
			chunks := NewChunker(35, 12).Chunk("one two three four five six\n\nseven eight")

			Convey("Then the next chunk starts with the previous tail", func() {
				So(chunks, ShouldHaveLength, 2)
				So(chunks[0], ShouldEqual, "one two three four five six")
				So(chunks[1], ShouldEqual, "five six seven eight")
			})
		})

		Convey("When a paragraph is longer than a chunk", func() {
			para := "Lead with impact. Quantify results! Keep it short? Use verbs."
			chunks := NewChunker(20, 0).Chunk(para)

			Convey("Then it is packed sentence by sentence", func() {
				So(chunks, ShouldResemble, []string{
					"Lead with impact.",
					"Quantify results!",
					"Keep it short?",
					"Use verbs.",
				})
			})
		})
	})
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("Version 1.25 shipped. Next one? Soon")
	want := []string{"Version 1.25 shipped.", "Next one?", "Soon"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("splitSentences = %q, want %q", got, want)
	}
}
