package services

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	"placementhelper/ats-agent/internal/models"
)

// Offline scoring constants. These are tuning values, not derived ones.
const (
	ImportantTermCount = 30
	OfflineScoreBonus  = 15
	OfflineScoreCap    = 85

	maxKeywordListLen   = 20
	maxTechnicalSkills  = 10
	maxCategorySkills   = 5
	maxSuggestedMissing = 3

	optimizeTermCount     = 20
	optimizeKeywordsShown = 10
)

const minTokenLetters = 3

// Word runs count Unicode letters and digits, so "résumé" is one word and
// never yields "sum".
var wordRunPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

var (
	technicalKeywords = lookupSet(
		"python", "java", "javascript", "react", "node", "sql", "aws", "docker",
		"kubernetes", "git", "linux", "mongodb", "postgresql", "redis", "api",
		"rest", "microservices", "agile", "scrum", "ci/cd", "jenkins", "terraform",
	)
	programmingLanguages = lookupSet("python", "java", "javascript", "c++", "c#", "go", "rust")
	frameworkKeywords    = lookupSet("react", "angular", "vue", "django", "flask", "spring")
	toolKeywords         = lookupSet("aws", "docker", "kubernetes", "jenkins", "git")
	coreOptimizeSkills   = lookupSet("python", "java", "aws", "docker", "react", "sql")

	offlineSoftSkills  = []string{"Communication", "Leadership", "Problem-solving"}
	genericSuggestions = []string{
		"Add more keywords from the job description",
		"Quantify your achievements with specific numbers",
		"Use strong action verbs to describe your experience",
	}
)

func lookupSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Tokenize lowercases text and returns its alphabetic words of three or more letters.
func Tokenize(text string) []string {
	var tokens []string
	for _, run := range wordRunPattern.FindAllString(strings.ToLower(text), -1) {
		if len(run) >= minTokenLetters && asciiLetters(run) {
			tokens = append(tokens, run)
		}
	}
	return tokens
}

func asciiLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// MostCommon returns up to n distinct tokens by descending frequency.
// Equal counts keep first-seen order.
func MostCommon(tokens []string, n int) []string {
	counts := make(map[string]int, len(tokens))
	var order []string
	for _, t := range tokens {
		if _, seen := counts[t]; !seen {
			order = append(order, t)
		}
		counts[t]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	return order
}

// ImportantTerms picks the n most frequent reference tokens, then keeps those
// longer than three letters.
func ImportantTerms(reference string, n int) []string {
	var terms []string
	for _, t := range MostCommon(Tokenize(reference), n) {
		if len(t) > 3 {
			terms = append(terms, t)
		}
	}
	return terms
}

// FallbackAnalysis scores a resume against a job description without any
// network call. It never fails; a panic inside yields CanonicalErrorResult.
func FallbackAnalysis(candidate, reference string) (result *models.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("❌ Offline analysis failed", "panic", r)
			result = CanonicalErrorResult()
		}
	}()

	candidateWords := make(map[string]struct{})
	for _, t := range Tokenize(candidate) {
		candidateWords[t] = struct{}{}
	}

	important := ImportantTerms(reference, ImportantTermCount)

	matched := []string{}
	missing := []string{}
	for _, term := range important {
		if _, ok := candidateWords[term]; ok {
			matched = append(matched, titleWord(term))
		} else {
			missing = append(missing, titleWord(term))
		}
	}

	matchPercentage := 0
	if total := len(important); total > 0 {
		matchPercentage = int(math.Round(float64(len(matched)) / float64(total) * 100))
	}
	score := min(OfflineScoreCap, matchPercentage+OfflineScoreBonus)

	suggestions := append([]string{}, genericSuggestions...)
	if len(missing) > 0 {
		suggestions = append(suggestions,
			fmt.Sprintf("Consider adding skills like: %s", strings.Join(head(missing, maxSuggestedMissing), ", ")))
	}

	return &models.AnalysisResult{
		Score: score,
		KeywordMatch: models.KeywordMatch{
			MatchedKeywords: head(matched, maxKeywordListLen),
			MissingKeywords: head(missing, maxKeywordListLen),
			MatchPercentage: matchPercentage,
		},
		MissingSkills: models.MissingSkills{
			TechnicalSkills:      filterIn(missing, technicalKeywords, maxTechnicalSkills),
			ProgrammingLanguages: filterIn(missing, programmingLanguages, maxCategorySkills),
			LibrariesFrameworks:  filterIn(missing, frameworkKeywords, maxCategorySkills),
			ToolsPlatforms:       filterIn(missing, toolKeywords, maxCategorySkills),
		},
		SoftSkills:  append([]string{}, offlineSoftSkills...),
		Suggestions: suggestions,
	}
}

// OfflineOptimization builds the static improvement template used when no
// model is reachable. echoChars bounds how much of the resume is quoted back.
func OfflineOptimization(candidate, reference string, echoChars int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("❌ Offline optimization failed", "panic", r)
			text = offlineOptimizationFailed
		}
	}()

	keywords := ImportantTerms(reference, optimizeTermCount)
	var coreMissing []string
	for _, k := range keywords {
		if _, ok := coreOptimizeSkills[k]; ok {
			coreMissing = append(coreMissing, k)
		}
	}

	excerpt := truncateRunes(candidate, echoChars)
	if excerpt != candidate {
		excerpt += "..."
	}

	var b strings.Builder
	b.WriteString("OFFLINE OPTIMIZATION SUGGESTIONS\n")
	b.WriteString("================================\n\n")
	b.WriteString("KEYWORD INTEGRATION:\n")
	b.WriteString("Try to naturally incorporate these important keywords from the job description:\n")
	b.WriteString(strings.Join(head(keywords, optimizeKeywordsShown), ", "))
	b.WriteString("\n\nACTION VERBS TO USE:\n")
	b.WriteString("Replace weak verbs with: Led, Architected, Optimized, Implemented, Designed,\n")
	b.WriteString("Developed, Managed, Created, Improved, Achieved\n\n")
	b.WriteString("QUANTIFICATION EXAMPLES:\n")
	b.WriteString("- \"Improved system performance\" -> \"Improved system performance by 40%\"\n")
	b.WriteString("- \"Managed team\" -> \"Managed team of 8 developers\"\n")
	b.WriteString("- \"Reduced costs\" -> \"Reduced operational costs by $50K annually\"\n\n")
	b.WriteString("ATS OPTIMIZATION TIPS:\n")
	b.WriteString("- Use standard section headings (Experience, Skills, Education)\n")
	b.WriteString("- Include both acronyms and full forms (AI/Artificial Intelligence)\n")
	b.WriteString("- Use bullet points for achievements\n")
	b.WriteString("- Avoid images, tables, or complex formatting\n\n")
	b.WriteString("MISSING SKILLS TO ADD (if applicable):\n")
	b.WriteString("Based on the job description, consider adding experience with:\n")
	b.WriteString(strings.Join(head(coreMissing, maxCategorySkills), ", "))
	b.WriteString("\n\nYOUR CURRENT RESUME:\n")
	b.WriteString(excerpt)
	b.WriteString("\n\nNOTE: This is an offline optimization. For AI-powered optimization,\n")
	b.WriteString("please try again when the API service is available.\n")

	return b.String()
}

const offlineOptimizationFailed = `OFFLINE OPTIMIZATION FAILED

Due to technical issues, we couldn't process your resume optimization.

Here are some general tips to improve your resume:

1. Include keywords from the job description
2. Quantify your achievements with numbers
3. Use strong action verbs (Led, Implemented, Optimized)
4. Keep formatting simple for ATS compatibility
5. Tailor your resume for each specific job application

Please try again later when the service is restored.
`

func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

func head(items []string, n int) []string {
	if len(items) > n {
		return append([]string{}, items[:n]...)
	}
	return append([]string{}, items...)
}

func filterIn(items []string, set map[string]struct{}, limit int) []string {
	out := []string{}
	for _, it := range items {
		if len(out) == limit {
			break
		}
		if _, ok := set[strings.ToLower(it)]; ok {
			out = append(out, it)
		}
	}
	return out
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
