package services

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"placementhelper/ats-agent/internal/models"
)

const validPlanJSON = `{
  "greeting": "Hi, thanks for joining.",
  "questions": [
    {"question": "How do you design a worker pool in Go?", "category": "technical", "expected_keywords": ["goroutine", "channel"], "time_limit": 180},
    {"question": "Tell me about a production incident.", "category": "behavioral"},
    {"question": "   ", "category": "technical"}
  ]
}`

func newTestInterviews(gens GeneratorSource, observer AgentObserver, runLog RunRecorder) (InterviewService, *recordedSleeps) {
	sleeps := &recordedSleeps{}
	backoff := NewBackoffController(DefaultRetryPolicy()).WithSleeper(sleeps.sleep)
	return NewInterviewService(gens, backoff, NewPromptBuilder(DefaultPromptLimits()), observer, runLog), sleeps
}

func TestInterviewComplexity(t *testing.T) {
	tests := []struct {
		minutes    int
		complexity string
		questions  int
	}{
		{5, ComplexityBasic, 3},
		{15, ComplexityBasic, 3},
		{16, ComplexityIntermediate, 5},
		{30, ComplexityIntermediate, 5},
		{45, ComplexityAdvanced, 7},
	}

	for _, tt := range tests {
		complexity, n := InterviewComplexity(tt.minutes)
		if complexity != tt.complexity || n != tt.questions {
			t.Errorf("InterviewComplexity(%d) = (%s, %d), want (%s, %d)",
				tt.minutes, complexity, n, tt.complexity, tt.questions)
		}
		if got := len(DefaultInterviewPlan(tt.minutes).Questions); got != tt.questions {
			t.Errorf("DefaultInterviewPlan(%d) has %d questions, want %d", tt.minutes, got, tt.questions)
		}
	}
}

func TestParseInterviewPlan(t *testing.T) {
	Convey("Given generated interview plans", t, func() {
		Convey("When the plan is valid", func() {
			plan, err := ParseInterviewPlan("```json\n" + validPlanJSON + "\n```")

			Convey("Then blank questions are dropped and defaults filled", func() {
				So(err, ShouldBeNil)
				So(plan.Greeting, ShouldEqual, "Hi, thanks for joining.")
				So(plan.Questions, ShouldHaveLength, 2)
				So(plan.Questions[0].TimeLimit, ShouldEqual, 180)
				So(plan.Questions[1].TimeLimit, ShouldEqual, defaultTimeLimit)
				So(plan.Questions[1].ExpectedKeywords, ShouldResemble, []string{})
				So(plan.Closing, ShouldEqual, interviewClosing)
			})
		})

		Convey("When the greeting is missing", func() {
			_, err := ParseInterviewPlan(`{"questions": [{"question": "Why Go?"}]}`)
			So(err, ShouldNotBeNil)
		})

		Convey("When there are no questions", func() {
			_, err := ParseInterviewPlan(`{"greeting": "Hello", "questions": []}`)
			So(err, ShouldNotBeNil)
		})

		Convey("When the output is not JSON", func() {
			_, err := ParseInterviewPlan("Sure! Here are some questions.")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestParseAnswerEvaluation(t *testing.T) {
	Convey("Given generated answer evaluations", t, func() {
		Convey("When values are out of range", func() {
			eval, err := ParseAnswerEvaluation(`{"score": 12.4, "keyword_match": -3, "feedback": " Solid. "}`)

			So(err, ShouldBeNil)
			So(eval.Score, ShouldEqual, 10)
			So(eval.KeywordMatch, ShouldEqual, 0)
			So(eval.Feedback, ShouldEqual, "Solid.")
			So(eval.Strengths, ShouldResemble, []string{})
			So(eval.AreasForImprovement, ShouldResemble, []string{})
		})

		Convey("When fractional values are given", func() {
			eval, err := ParseAnswerEvaluation(`{"score": 6.5, "keyword_match": 66.6, "strengths": ["clear"]}`)

			So(err, ShouldBeNil)
			So(eval.Score, ShouldEqual, 7)
			So(eval.KeywordMatch, ShouldEqual, 67)
			So(eval.Strengths, ShouldResemble, []string{"clear"})
		})

		Convey("When the score is missing", func() {
			_, err := ParseAnswerEvaluation(`{"feedback": "ok"}`)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestOfflineAnswerEvaluation(t *testing.T) {
	Convey("Given an offline grader", t, func() {
		Convey("When the answer covers some keywords", func() {
			eval := OfflineAnswerEvaluation(
				"I rely on Time Management and clear communication.",
				[]string{"time management", "prioritization"},
			)

			So(eval.Score, ShouldEqual, 5)
			So(eval.KeywordMatch, ShouldEqual, 50)
			So(eval.Strengths, ShouldResemble, []string{"Mentioned time management"})
			So(eval.AreasForImprovement, ShouldResemble, []string{"Consider discussing prioritization"})
			So(eval.Feedback, ShouldContainSubstring, "covered 1 of 2")
		})

		Convey("When a keyword only appears inside another word", func() {
			eval := OfflineAnswerEvaluation("I love golang", []string{"go"})
			So(eval.Score, ShouldEqual, 0)
		})

		Convey("When there are no expected keywords", func() {
			eval := OfflineAnswerEvaluation("Something thoughtful.", nil)
			So(eval.Score, ShouldEqual, neutralAnswerScore)
			So(eval.KeywordMatch, ShouldEqual, 0)
		})

		Convey("When the answer is empty", func() {
			eval := OfflineAnswerEvaluation("  ...  ", []string{"go"})
			So(eval.Score, ShouldEqual, 0)
			So(eval.Feedback, ShouldEqual, "No answer was received.")
		})
	})
}

func TestInterviewServiceGeneratePlan(t *testing.T) {
	Convey("Given an interview service", t, func() {
		ctx := context.Background()
		observer := newCountingObserver()

		Convey("When the model returns a plan", func() {
			gens := &fakeGenerators{generate: always(validPlanJSON, nil)}
			svc, _ := newTestInterviews(gens, observer, nil)

			outcome, err := svc.GeneratePlan(ctx, models.InterviewPlanRequest{
				JobRole:         "Backend Engineer",
				ResumeText:      "Go developer",
				DurationMinutes: 20,
			}, nil)

			Convey("Then the remote plan is used with Gemini Flash", func() {
				So(err, ShouldBeNil)
				So(outcome.Offline, ShouldBeFalse)
				So(outcome.Complexity, ShouldEqual, ComplexityIntermediate)
				So(outcome.Model.Selector, ShouldEqual, models.ModelGeminiFlash)
				So(outcome.Plan.Questions, ShouldHaveLength, 2)
				So(gens.prompts[0], ShouldContainSubstring, "Backend Engineer")
			})
		})

		Convey("When the model cannot be reached", func() {
			gens := &fakeGenerators{err: ErrProviderNotConfigured}
			svc, _ := newTestInterviews(gens, observer, nil)

			outcome, err := svc.GeneratePlan(ctx, models.InterviewPlanRequest{JobRole: "Backend Engineer"}, nil)

			Convey("Then the default basic plan is used", func() {
				So(err, ShouldBeNil)
				So(outcome.Offline, ShouldBeTrue)
				So(outcome.Complexity, ShouldEqual, ComplexityBasic)
				So(outcome.Plan, ShouldResemble, DefaultInterviewPlan(defaultInterviewMinutes))
				So(observer.fallbacks[OperationInterviewPlan], ShouldEqual, 1)
			})
		})

		Convey("When the plan cannot be parsed", func() {
			gens := &fakeGenerators{generate: always("no plan today", nil)}
			svc, _ := newTestInterviews(gens, observer, nil)

			outcome, err := svc.GeneratePlan(ctx, models.InterviewPlanRequest{JobRole: "SRE", DurationMinutes: 60}, nil)

			So(err, ShouldBeNil)
			So(outcome.Offline, ShouldBeTrue)
			So(outcome.Plan.Questions, ShouldHaveLength, 7)
			So(observer.normalize, ShouldEqual, 1)
		})

		Convey("When the job role is blank", func() {
			svc, _ := newTestInterviews(&fakeGenerators{generate: always("", nil)}, nil, nil)

			_, err := svc.GeneratePlan(ctx, models.InterviewPlanRequest{JobRole: " "}, nil)

			So(errors.Is(err, ErrNoInput), ShouldBeTrue)
		})
	})
}

func TestInterviewServiceEvaluateAnswer(t *testing.T) {
	Convey("Given an interview service", t, func() {
		ctx := context.Background()
		runLog := &memoryRunLog{}
		req := models.AnswerRequest{
			Question:         "How do you handle tight deadlines?",
			Answer:           "I focus on prioritization first.",
			ExpectedKeywords: []string{"time management", "prioritization"},
		}

		Convey("When the model grades the answer", func() {
			gens := &fakeGenerators{generate: always(`{"score": 8, "keyword_match": 50, "feedback": "Good"}`, nil)}
			svc, _ := newTestInterviews(gens, nil, runLog)

			outcome, err := svc.EvaluateAnswer(ctx, req, nil)

			So(err, ShouldBeNil)
			So(outcome.Offline, ShouldBeFalse)
			So(outcome.Evaluation.Score, ShouldEqual, 8)
			So(runLog.records, ShouldHaveLength, 1)
			So(runLog.records[0].Operation, ShouldEqual, OperationInterviewAnswer)
		})

		Convey("When the model is unavailable", func() {
			gens := &fakeGenerators{generate: always("", errors.New("503 overloaded"))}
			svc, sleeps := newTestInterviews(gens, nil, runLog)

			outcome, err := svc.EvaluateAnswer(ctx, req, nil)

			Convey("Then keyword coverage is used instead", func() {
				So(err, ShouldBeNil)
				So(outcome.Offline, ShouldBeTrue)
				So(outcome.Evaluation.KeywordMatch, ShouldEqual, 50)
				So(sleeps.waits, ShouldHaveLength, 2)
				So(runLog.records[0].Offline, ShouldBeTrue)
			})
		})

		Convey("When the answer is empty", func() {
			gens := &fakeGenerators{generate: always(`{"score": 9}`, nil)}
			svc, _ := newTestInterviews(gens, nil, nil)
			req.Answer = ""

			outcome, err := svc.EvaluateAnswer(ctx, req, nil)

			Convey("Then no remote call is made", func() {
				So(err, ShouldBeNil)
				So(outcome.Offline, ShouldBeTrue)
				So(outcome.Evaluation.Score, ShouldEqual, 0)
				So(gens.calls(), ShouldEqual, 0)
			})
		})

		Convey("When the question is blank", func() {
			svc, _ := newTestInterviews(&fakeGenerators{generate: always("", nil)}, nil, nil)
			req.Question = ""

			_, err := svc.EvaluateAnswer(ctx, req, nil)

			So(errors.Is(err, ErrNoInput), ShouldBeTrue)
		})
	})
}
