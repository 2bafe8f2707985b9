package models

// AnalysisRequest is one user-initiated comparison of a resume against a job description.
type AnalysisRequest struct {
	CandidateText string
	ReferenceText string
	Model         ModelSelector
}

// AnalysisResult is the structured ATS analysis contract shared by the remote
// and offline paths.
type AnalysisResult struct {
	Score         int           `json:"score"`
	KeywordMatch  KeywordMatch  `json:"keyword_match"`
	MissingSkills MissingSkills `json:"missing_skills"`
	SoftSkills    []string      `json:"soft_skills"`
	Suggestions   []string      `json:"suggestions"`
}

type KeywordMatch struct {
	MatchedKeywords []string `json:"matched_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
	MatchPercentage int      `json:"match_percentage"`
}

type MissingSkills struct {
	TechnicalSkills      []string `json:"technical_skills"`
	ProgrammingLanguages []string `json:"programming_languages"`
	LibrariesFrameworks  []string `json:"libraries_frameworks"`
	ToolsPlatforms       []string `json:"tools_platforms"`
}

// OptimizationRequest carries the inputs of a resume rewrite.
type OptimizationRequest struct {
	CandidateText   string
	ReferenceText   string
	AnalysisContext string
	Model           ModelSelector
}
