package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisphere/unisphere-api/internal/service"
	"github.com/unisphere/unisphere-api/pkg/completion"
)

type cannedCompleter struct {
	text string
	err  error
}

func (c cannedCompleter) Complete(context.Context, []completion.Message) (string, error) {
	return c.text, c.err
}

func TestQuizHandlerGenerate(t *testing.T) {
	svc := service.NewQuizService(cannedCompleter{text: "1. What is Go?\nAnswer: A programming language\n2. Who created Go?\nAnswer: Google"}, nil, nil)
	handler := NewQuizHandler(svc)
	c, rec := newTestContext(http.MethodPost, "/virtual-quiz/generate", map[string]interface{}{"topic": "Go", "count": 2})

	handler.Generate(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var quiz service.GeneratedQuiz
	decodeData(t, rec, &quiz)
	assert.False(t, quiz.Fallback)
	require.Len(t, quiz.Questions, 2)
	assert.Equal(t, "Who created Go?", quiz.Questions[1].Question)
}

func TestQuizHandlerGenerateFallsBackWhenCompletionFails(t *testing.T) {
	svc := service.NewQuizService(cannedCompleter{err: errors.New("timeout")}, nil, nil)
	handler := NewQuizHandler(svc)
	c, rec := newTestContext(http.MethodPost, "/virtual-quiz/generate", map[string]interface{}{"topic": "Photosynthesis", "count": 3})

	handler.Generate(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var quiz service.GeneratedQuiz
	decodeData(t, rec, &quiz)
	assert.True(t, quiz.Fallback)
	assert.Len(t, quiz.Questions, 3)
}

func TestQuizHandlerGenerateRequiresTopicOrContent(t *testing.T) {
	handler := NewQuizHandler(service.NewQuizService(nil, nil, nil))
	c, rec := newTestContext(http.MethodPost, "/virtual-quiz/generate", map[string]interface{}{"count": 3})

	handler.Generate(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuizHandlerCheckAndGrade(t *testing.T) {
	handler := NewQuizHandler(service.NewQuizService(nil, nil, nil))

	c, rec := newTestContext(http.MethodPost, "/virtual-quiz/check", map[string]string{"userAnswer": "Paris!", "referenceAnswer": "paris"})
	handler.Check(c)
	require.Equal(t, http.StatusOK, rec.Code)
	var result map[string]interface{}
	decodeData(t, rec, &result)
	assert.Equal(t, true, result["correct"])
	assert.Equal(t, "exact", result["method"])

	c, rec = newTestContext(http.MethodPost, "/virtual-quiz/grade", map[string]interface{}{
		"answers": []map[string]string{
			{"question": "Capital of France?", "userAnswer": "Paris", "referenceAnswer": "Paris"},
			{"question": "Largest planet?", "userAnswer": "Mars", "referenceAnswer": "Jupiter"},
		},
	})
	handler.Grade(c)
	require.Equal(t, http.StatusOK, rec.Code)
	var grade service.QuizGrade
	decodeData(t, rec, &grade)
	assert.Equal(t, 1, grade.Correct)
	assert.Equal(t, 50.0, grade.Score)
}
