package models

type UploadResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	FileType     string `json:"file_type"`
	CharCount    int    `json:"char_count"`
}

type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type AnalyzeRequest struct {
	ResumeText       string `json:"resume_text"`
	ResumeDocumentID string `json:"resume_document_id"`
	JobDescription   string `json:"job_description" validate:"required"`
	Model            string `json:"model"`
}

type AnalyzeResponse struct {
	Result     *AnalysisResult `json:"result"`
	Model      string          `json:"model"`
	Offline    bool            `json:"offline"`
	DurationMS int64           `json:"duration_ms"`
	Notices    []Notice        `json:"notices"`
}

type OptimizeRequest struct {
	ResumeText       string `json:"resume_text"`
	ResumeDocumentID string `json:"resume_document_id"`
	JobDescription   string `json:"job_description" validate:"required"`
	AnalysisContext  string `json:"analysis_context"`
	Model            string `json:"model"`
}

type OptimizeResponse struct {
	OptimizedResume string   `json:"optimized_resume"`
	Model           string   `json:"model"`
	Offline         bool     `json:"offline"`
	DurationMS      int64    `json:"duration_ms"`
	Notices         []Notice `json:"notices"`
}

type EvaluateRequest struct {
	ResumeDocumentID string `json:"resume_document_id" validate:"required,uuid"`
	JobDescription   string `json:"job_description" validate:"required"`
	Model            string `json:"model"`
}

type EvaluateResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type ResultResponse struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	Model        string          `json:"model"`
	Result       *AnalysisResult `json:"result,omitempty"`
	Offline      bool            `json:"offline"`
	DurationMS   *int64          `json:"duration_ms,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
}

type InterviewPlanHTTPRequest struct {
	ResumeText       string `json:"resume_text"`
	ResumeDocumentID string `json:"resume_document_id"`
	JobRole          string `json:"job_role" validate:"required"`
	DurationMinutes  int    `json:"duration_minutes"`
	Model            string `json:"model"`
}

type InterviewPlanResponse struct {
	Plan       *InterviewPlan `json:"plan"`
	Complexity string         `json:"complexity"`
	Offline    bool           `json:"offline"`
	Notices    []Notice       `json:"notices"`
}

type AnswerHTTPRequest struct {
	Question         string   `json:"question" validate:"required"`
	Answer           string   `json:"answer"`
	ExpectedKeywords []string `json:"expected_keywords"`
	Model            string   `json:"model"`
}

type AnswerResponse struct {
	Evaluation *AnswerEvaluation `json:"evaluation"`
	Offline    bool              `json:"offline"`
	Notices    []Notice          `json:"notices"`
}
