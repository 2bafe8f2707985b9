package services

import (
	"fmt"
	"strings"
)

// PromptLimits caps each text placed into a prompt, in characters.
type PromptLimits struct {
	AnalysisResume   int
	AnalysisJob      int
	OptimizeResume   int
	OptimizeJob      int
	OptimizeAnalysis int
	InterviewResume  int
}

func DefaultPromptLimits() PromptLimits {
	return PromptLimits{
		AnalysisResume:   4000,
		AnalysisJob:      3000,
		OptimizeResume:   3500,
		OptimizeJob:      2500,
		OptimizeAnalysis: 1500,
		InterviewResume:  1000,
	}
}

type PromptBuilder struct {
	limits PromptLimits
}

func NewPromptBuilder(limits PromptLimits) *PromptBuilder {
	return &PromptBuilder{limits: limits}
}

// BuildAnalysisPrompt asks for the ATS analysis JSON contract.
func (pb *PromptBuilder) BuildAnalysisPrompt(resumeText, jobDescription string) string {
	return fmt.Sprintf(`You are an expert ATS (Applicant Tracking System) resume analyzer. Analyze this resume against the job description.

Return ONLY a valid JSON object with this EXACT structure (no other text):
{
  "score": <number 0-100>,
  "keyword_match": {
    "matched_keywords": ["keyword1", "keyword2"],
    "missing_keywords": ["missing1", "missing2"],
    "match_percentage": <number 0-100>
  },
  "missing_skills": {
    "technical_skills": ["skill1", "skill2"],
    "programming_languages": ["lang1", "lang2"],
    "libraries_frameworks": ["lib1", "lib2"],
    "tools_platforms": ["tool1", "tool2"]
  },
  "soft_skills": ["soft_skill1", "soft_skill2"],
  "suggestions": ["suggestion1", "suggestion2", "suggestion3"]
}

JOB DESCRIPTION:
%s

RESUME CONTENT:
%s

JSON Response:`,
		truncateRunes(jobDescription, pb.limits.AnalysisJob),
		truncateRunes(resumeText, pb.limits.AnalysisResume))
}

// BuildOptimizationPrompt asks for a rewritten resume. guidance may be empty.
func (pb *PromptBuilder) BuildOptimizationPrompt(resumeText, jobDescription, analysisContext, guidance string) string {
	var guidanceBlock string
	if strings.TrimSpace(guidance) != "" {
		guidanceBlock = fmt.Sprintf("\nRESUME WRITING GUIDANCE:\n%s\n", guidance)
	}

	return fmt.Sprintf(`You are a professional resume writer. Optimize this resume for the target job.

Guidelines:
1. Incorporate relevant keywords naturally from the job description
2. Quantify achievements with specific metrics where possible
3. Use strong action verbs (Led, Architected, Optimized, Implemented, etc.)
4. Ensure ATS-friendly formatting
5. Maintain professional tone and factual accuracy
6. Keep the original structure but enhance content
%s
JOB DESCRIPTION:
%s

CURRENT RESUME:
%s

ANALYSIS INSIGHTS:
%s

Return ONLY the optimized resume content (no explanations or additional text):`,
		guidanceBlock,
		truncateRunes(jobDescription, pb.limits.OptimizeJob),
		truncateRunes(resumeText, pb.limits.OptimizeResume),
		truncateRunes(analysisContext, pb.limits.OptimizeAnalysis))
}

// BuildInterviewPlanPrompt asks for a JSON interview plan.
func (pb *PromptBuilder) BuildInterviewPlanPrompt(resumeText, jobRole string, durationMinutes, numQuestions int, complexity string) string {
	return fmt.Sprintf(`You are a professional HR interviewer conducting a %d-minute interview for a %s position.

RESUME SUMMARY:
%s

Generate an interview plan with %d questions of %s complexity covering technical skills,
behavioral questions, role-specific questions and problem-solving scenarios.

Return ONLY JSON with this structure:
{
  "greeting": "Professional greeting message",
  "questions": [
    {
      "question": "Question text",
      "category": "technical/behavioral/role-specific",
      "expected_keywords": ["keyword1", "keyword2"],
      "time_limit": <estimated time in seconds>
    }
  ],
  "closing": "Professional closing message"
}`,
		durationMinutes, jobRole,
		truncateRunes(resumeText, pb.limits.InterviewResume),
		numQuestions, complexity)
}

// BuildAnswerEvaluationPrompt asks for a JSON grade of one interview answer.
func (pb *PromptBuilder) BuildAnswerEvaluationPrompt(question, answer string, expectedKeywords []string) string {
	return fmt.Sprintf(`Evaluate this interview answer.

QUESTION: %s
ANSWER: %s
EXPECTED KEYWORDS: %s

Return ONLY JSON in this format:
{
  "score": <score out of 10>,
  "strengths": ["strength1", "strength2"],
  "areas_for_improvement": ["area1", "area2"],
  "keyword_match": <percentage of keywords mentioned, 0-100>,
  "feedback": "detailed feedback message"
}

Be constructive and specific. Return score as a number (0-10), not as a fraction.`,
		question, answer, strings.Join(expectedKeywords, ", "))
}

// BuildGuidanceQuery turns an optimization request into a retrieval query.
func (pb *PromptBuilder) BuildGuidanceQuery(jobDescription string) string {
	return fmt.Sprintf("Resume writing and ATS optimization advice for: %s",
		truncateRunes(jobDescription, 500))
}

// FormatGuidanceContext renders retrieved guidance chunks for a prompt.
func FormatGuidanceContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Guidance %d (Score: %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}
