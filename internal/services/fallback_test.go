package services

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTokenizeAndMostCommon(t *testing.T) {
	Convey("Tokenize keeps lowercase alphabetic words of three or more letters", t, func() {
		So(Tokenize("Go, C++ and CI/CD on AWS-EC2!"), ShouldResemble, []string{"and", "aws"})
	})

	Convey("Tokenize treats accented and digit-bearing words as whole words", t, func() {
		So(Tokenize("Résumé naïve python"), ShouldResemble, []string{"python"})
		So(Tokenize("über-Java k8s snake_case Go1 sql"), ShouldResemble, []string{"java", "sql"})
	})

	Convey("MostCommon orders by frequency and keeps first-seen order on ties", t, func() {
		tokens := []string{"beta", "alpha", "beta", "gamma", "alpha", "delta"}
		So(MostCommon(tokens, 3), ShouldResemble, []string{"beta", "alpha", "gamma"})
		So(MostCommon(tokens, 10), ShouldHaveLength, 4)
	})

	Convey("ImportantTerms drops words of three letters", t, func() {
		So(ImportantTerms("AWS and Docker and Kubernetes", 30), ShouldResemble, []string{"docker", "kubernetes"})
	})
}

func TestFallbackAnalysis(t *testing.T) {
	Convey("Given a full remote outage", t, func() {
		Convey("When the resume contains every important term", func() {
			text := "Python AWS Docker Kubernetes Agile Scrum"
			result := FallbackAnalysis(text, text)

			Convey("Then the match is 100 but the score is capped at 85", func() {
				So(result.KeywordMatch.MatchPercentage, ShouldEqual, 100)
				So(result.Score, ShouldEqual, OfflineScoreCap)
				So(result.KeywordMatch.MissingKeywords, ShouldBeEmpty)
				So(result.Suggestions, ShouldHaveLength, 3)
			})
		})

		Convey("When the job description has no important terms", func() {
			result := FallbackAnalysis("Senior engineer", "a an of to")

			Convey("Then match is 0 and score is the bonus alone", func() {
				So(result.KeywordMatch.MatchPercentage, ShouldEqual, 0)
				So(result.Score, ShouldEqual, 15)
				So(result.KeywordMatch.MatchedKeywords, ShouldNotBeNil)
				So(result.MissingSkills.TechnicalSkills, ShouldNotBeNil)
			})
		})

		Convey("When a Python developer applies to a Kubernetes role", func() {
			result := FallbackAnalysis(
				"Experienced Python developer with AWS and Docker skills",
				"Looking for Python developer with AWS Docker Kubernetes and CI/CD experience",
			)

			Convey("Then matched and missing terms are split and title-cased", func() {
				So(result.KeywordMatch.MatchedKeywords, ShouldResemble, []string{"Python", "Developer", "With", "Docker"})
				So(result.KeywordMatch.MissingKeywords, ShouldResemble, []string{"Looking", "Kubernetes", "Experience"})
				So(result.KeywordMatch.MatchPercentage, ShouldEqual, 57)
				So(result.Score, ShouldEqual, 72)
			})

			Convey("And missing terms are categorized", func() {
				So(result.MissingSkills.TechnicalSkills, ShouldResemble, []string{"Kubernetes"})
				So(result.MissingSkills.ToolsPlatforms, ShouldResemble, []string{"Kubernetes"})
				So(result.MissingSkills.ProgrammingLanguages, ShouldBeEmpty)
				So(result.MissingSkills.LibrariesFrameworks, ShouldBeEmpty)
			})

			Convey("And a fourth suggestion names up to three missing terms", func() {
				So(result.Suggestions, ShouldHaveLength, 4)
				So(result.Suggestions[3], ShouldEqual, "Consider adding skills like: Looking, Kubernetes, Experience")
				So(result.SoftSkills, ShouldResemble, []string{"Communication", "Leadership", "Problem-solving"})
			})
		})

		Convey("When the job description is long", func() {
			var reference string
			for _, w := range []string{
				"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel", "india",
				"juliet", "kilo", "lima", "mike", "november", "oscar", "papa", "quebec", "romeo",
				"sierra", "tango", "uniform", "victor", "whiskey", "xray", "yankee", "zulu",
			} {
				reference += w + " "
			}
			result := FallbackAnalysis("nothing relevant", reference)

			Convey("Then keyword lists are capped at 20", func() {
				So(result.KeywordMatch.MissingKeywords, ShouldHaveLength, 20)
				So(result.Score, ShouldBeBetweenOrEqual, 0, OfflineScoreCap)
			})
		})
	})
}

func TestOfflineOptimization(t *testing.T) {
	Convey("Given the offline optimization template", t, func() {
		resume := "Backend engineer with Python and SQL experience building services."
		text := OfflineOptimization(resume, "We need Python, Docker and React engineers. Python Python Docker.", 20)

		Convey("It lists job keywords and missing core skills", func() {
			So(text, ShouldStartWith, "OFFLINE OPTIMIZATION SUGGESTIONS")
			So(text, ShouldContainSubstring, "python, docker")
			So(text, ShouldContainSubstring, "react")
		})

		Convey("It quotes a truncated resume with an ellipsis", func() {
			So(text, ShouldContainSubstring, "Backend engineer wit...")
			So(text, ShouldContainSubstring, "offline optimization")
		})
	})
}
