package models

// InterviewPlanRequest asks for a question plan tailored to a resume and role.
type InterviewPlanRequest struct {
	ResumeText      string
	JobRole         string
	DurationMinutes int
	Model           ModelSelector
}

type InterviewPlan struct {
	Greeting  string              `json:"greeting"`
	Questions []InterviewQuestion `json:"questions"`
	Closing   string              `json:"closing"`
}

type InterviewQuestion struct {
	Question         string   `json:"question"`
	Category         string   `json:"category"`
	ExpectedKeywords []string `json:"expected_keywords"`
	TimeLimit        int      `json:"time_limit"` // seconds
}

// AnswerRequest is a candidate's answer to a single interview question.
type AnswerRequest struct {
	Question         string
	Answer           string
	ExpectedKeywords []string
	Model            ModelSelector
}

type AnswerEvaluation struct {
	Score               int      `json:"score"` // 0-10
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areas_for_improvement"`
	KeywordMatch        int      `json:"keyword_match"` // 0-100
	Feedback            string   `json:"feedback"`
}
