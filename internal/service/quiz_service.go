package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unisphere/unisphere-api/internal/quiz"
	"github.com/unisphere/unisphere-api/pkg/completion"
)

const (
	defaultQuizCount = 5
	maxQuizContent   = 12000
)

type completer interface {
	Complete(ctx context.Context, messages []completion.Message) (string, error)
}

// GenerateQuizRequest asks for questions about a topic or a pasted document.
type GenerateQuizRequest struct {
	Topic      string `json:"topic" validate:"required_without=Content,max=200"`
	Content    string `json:"content" validate:"required_without=Topic"`
	Count      int    `json:"count" validate:"omitempty,min=1,max=20"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

// GeneratedQuiz is the generated question set. Fallback is set when any
// placeholder question had to be added.
type GeneratedQuiz struct {
	Topic     string          `json:"topic"`
	Questions []quiz.Question `json:"questions"`
	Fallback  bool            `json:"fallback"`
}

// CheckAnswerRequest grades one free-text answer.
type CheckAnswerRequest struct {
	UserAnswer      string `json:"userAnswer"`
	ReferenceAnswer string `json:"referenceAnswer" validate:"required"`
}

// GradeQuizRequest grades a full attempt.
type GradeQuizRequest struct {
	Answers []GradeAnswer `json:"answers" validate:"required,min=1,dive"`
}

// GradeAnswer is one answered question.
type GradeAnswer struct {
	Question        string `json:"question"`
	UserAnswer      string `json:"userAnswer"`
	ReferenceAnswer string `json:"referenceAnswer" validate:"required"`
}

// GradedAnswer pairs a question with its check result.
type GradedAnswer struct {
	Question string `json:"question"`
	quiz.Result
}

// QuizGrade summarises a graded attempt.
type QuizGrade struct {
	Results []GradedAnswer `json:"results"`
	Correct int            `json:"correct"`
	Total   int            `json:"total"`
	Score   float64        `json:"score"`
}

// QuizService generates quizzes through a completion endpoint and grades answers.
type QuizService struct {
	client    completer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewQuizService constructs the service.
func NewQuizService(client completer, validate *validator.Validate, logger *zap.Logger) *QuizService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizService{client: client, validator: validate, logger: logger}
}

// Generate produces req.Count questions. Completion or parse failures never
// fail the call; missing items are filled with placeholders.
func (s *QuizService) Generate(ctx context.Context, req GenerateQuizRequest) (*GeneratedQuiz, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid quiz request")
	}
	count := req.Count
	if count == 0 {
		count = defaultQuizCount
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		topic = "the provided material"
	}

	var questions []quiz.Question
	if s.client != nil {
		text, err := s.client.Complete(ctx, buildQuizPrompt(topic, req.Content, req.Difficulty, count))
		if err != nil {
			s.logger.Warn("quiz completion failed, using placeholders", zap.String("topic", topic), zap.Error(err))
		} else {
			questions = quiz.Parse(text)
		}
	}
	if len(questions) > count {
		questions = questions[:count]
	}

	fallback := len(questions) < count
	if fallback {
		questions = append(questions, quiz.Placeholders(topic, len(questions), count-len(questions))...)
	}
	return &GeneratedQuiz{Topic: topic, Questions: questions, Fallback: fallback}, nil
}

// Check grades one answer.
func (s *QuizService) Check(req CheckAnswerRequest) (quiz.Result, error) {
	if err := s.validator.Struct(req); err != nil {
		return quiz.Result{}, invalid(err, "invalid answer payload")
	}
	return quiz.Check(req.UserAnswer, req.ReferenceAnswer), nil
}

// Grade checks every answer and returns the percentage score.
func (s *QuizService) Grade(req GradeQuizRequest) (*QuizGrade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid grading payload")
	}
	grade := &QuizGrade{Results: make([]GradedAnswer, 0, len(req.Answers)), Total: len(req.Answers)}
	for _, a := range req.Answers {
		res := quiz.Check(a.UserAnswer, a.ReferenceAnswer)
		if res.Correct {
			grade.Correct++
		}
		grade.Results = append(grade.Results, GradedAnswer{Question: a.Question, Result: res})
	}
	grade.Score = roundCents(float64(grade.Correct) / float64(grade.Total) * 100)
	return grade, nil
}

func buildQuizPrompt(topic, content, difficulty string, count int) []completion.Message {
	if difficulty == "" {
		difficulty = "medium"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Create %d %s-difficulty quiz questions about %s.\n", count, difficulty, topic)
	if content = strings.TrimSpace(content); content != "" {
		content = truncateRunes(content, maxQuizContent)
		b.WriteString("Base every question only on the following material:\n\n")
		b.WriteString(content)
		b.WriteString("\n\n")
	}
	b.WriteString("Format each item exactly as:\n1. <question>\nAnswer: <short answer>\n")
	return []completion.Message{
		{Role: "system", Content: "You are a university teaching assistant who writes concise quiz questions."},
		{Role: "user", Content: b.String()},
	}
}

// truncateRunes cuts s to at most max bytes without splitting a UTF-8 sequence.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
