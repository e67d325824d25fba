package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
	"github.com/unisphere/unisphere-api/pkg/completion"
)

type stubCompleter struct {
	text     string
	err      error
	messages []completion.Message
}

func (s *stubCompleter) Complete(ctx context.Context, messages []completion.Message) (string, error) {
	s.messages = messages
	return s.text, s.err
}

func TestQuizServiceGenerateParsesCompletion(t *testing.T) {
	client := &stubCompleter{text: "1. What is H2O?\nAnswer: Water\n\n2. What is NaCl?\nAnswer: Salt\n\n3. What is O2?\nAnswer: Oxygen"}
	svc := NewQuizService(client, nil, nil)

	quiz, err := svc.Generate(context.Background(), GenerateQuizRequest{Topic: "Chemistry", Count: 2, Difficulty: "easy"})
	require.NoError(t, err)
	assert.False(t, quiz.Fallback)
	require.Len(t, quiz.Questions, 2)
	assert.Equal(t, "Water", quiz.Questions[0].Answer)

	require.Len(t, client.messages, 2)
	assert.Contains(t, client.messages[1].Content, "Create 2 easy-difficulty quiz questions about Chemistry")
}

func TestQuizServiceGenerateFillsWithPlaceholders(t *testing.T) {
	client := &stubCompleter{text: "1. What is H2O?\nAnswer: Water"}
	svc := NewQuizService(client, nil, nil)

	quiz, err := svc.Generate(context.Background(), GenerateQuizRequest{Topic: "Chemistry"})
	require.NoError(t, err)
	assert.True(t, quiz.Fallback)
	require.Len(t, quiz.Questions, defaultQuizCount)
	assert.Equal(t, "What is H2O?", quiz.Questions[0].Question)
	assert.Contains(t, quiz.Questions[1].Question, "Chemistry")
}

func TestQuizServiceGenerateSurvivesUpstreamFailure(t *testing.T) {
	svc := NewQuizService(&stubCompleter{err: errors.New("503")}, nil, nil)

	quiz, err := svc.Generate(context.Background(), GenerateQuizRequest{Content: "Cells are the basic unit of life.", Count: 3})
	require.NoError(t, err)
	assert.True(t, quiz.Fallback)
	assert.Len(t, quiz.Questions, 3)
	assert.Equal(t, "the provided material", quiz.Topic)
}

func TestQuizServiceGenerateValidation(t *testing.T) {
	svc := NewQuizService(nil, nil, nil)

	_, err := svc.Generate(context.Background(), GenerateQuizRequest{})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Generate(context.Background(), GenerateQuizRequest{Topic: "x", Count: 50})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestQuizServiceGrade(t *testing.T) {
	svc := NewQuizService(nil, nil, nil)

	grade, err := svc.Grade(GradeQuizRequest{Answers: []GradeAnswer{
		{Question: "Q1", UserAnswer: "water", ReferenceAnswer: "Water"},
		{Question: "Q2", UserAnswer: "bananas", ReferenceAnswer: "Sodium chloride"},
		{Question: "Q3", UserAnswer: "the mitochondria", ReferenceAnswer: "mitochondria"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, grade.Correct)
	assert.Equal(t, 3, grade.Total)
	assert.InDelta(t, 66.67, grade.Score, 1e-9)
	assert.False(t, grade.Results[1].Correct)

	res, err := svc.Check(CheckAnswerRequest{UserAnswer: "Water", ReferenceAnswer: "water"})
	require.NoError(t, err)
	assert.True(t, res.Correct)

	_, err = svc.Check(CheckAnswerRequest{UserAnswer: "Water"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestQuizServiceGenerateTruncatesContentOnRuneBoundary(t *testing.T) {
	client := &stubCompleter{err: errors.New("offline")}
	svc := NewQuizService(client, nil, nil)

	content := "a" + strings.Repeat("é", maxQuizContent)
	_, err := svc.Generate(context.Background(), GenerateQuizRequest{Content: content, Count: 1})
	require.NoError(t, err)

	require.Len(t, client.messages, 2)
	prompt := client.messages[1].Content
	assert.True(t, utf8.ValidString(prompt))
	assert.NotContains(t, prompt, string(utf8.RuneError))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("short", 10))
	assert.Equal(t, "a", truncateRunes("aé", 2))
	assert.Equal(t, "aé", truncateRunes("aéb", 3))
}

func TestQuizServiceGradeRejectsSingleLetterAnswers(t *testing.T) {
	svc := NewQuizService(nil, nil, nil)
	grade, err := svc.Grade(GradeQuizRequest{Answers: []GradeAnswer{
		{Question: "Capital of France?", UserAnswer: "a", ReferenceAnswer: "Paris"},
		{Question: "Powerhouse of the cell?", UserAnswer: "e", ReferenceAnswer: "Mitochondria"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 0, grade.Correct)
	assert.Zero(t, grade.Score)
}
