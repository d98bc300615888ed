package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mzalewski/examtrainer/config"
	"github.com/mzalewski/examtrainer/internal/model"
	"github.com/mzalewski/examtrainer/internal/repository"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// ExplanationService backfills missing question explanations through Gemini.
// Generation is admin-triggered; quiz flows only read the stored text.
type ExplanationService interface {
	BackfillExplanation(ctx context.Context, questionID uint) (string, error)
}

type explanationService struct {
	client    *genai.GenerativeModel
	questions repository.QuestionRepository
}

func NewExplanationService(cfg *config.Config, questions repository.QuestionRepository) (ExplanationService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. ExplanationService will be non-functional.")
		return &explanationService{questions: questions}, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return &explanationService{
		client:    client.GenerativeModel("gemini-1.5-flash"),
		questions: questions,
	}, nil
}

func (s *explanationService) BackfillExplanation(ctx context.Context, questionID uint) (string, error) {
	question, err := s.questions.FindByIDWithAnswers(questionID)
	if err != nil {
		return "", ErrQuestionNotFound
	}
	if question.Explanation != nil && *question.Explanation != "" {
		return *question.Explanation, nil
	}
	if s.client == nil {
		return "", fmt.Errorf("explanation generation unavailable: Gemini is not configured")
	}

	explanation, err := s.generate(ctx, question)
	if err != nil {
		return "", err
	}

	question.Explanation = &explanation
	if err := s.questions.Update(question); err != nil {
		return "", fmt.Errorf("failed to store explanation: %w", err)
	}
	return explanation, nil
}

func (s *explanationService) generate(ctx context.Context, question *model.Question) (string, error) {
	var prompt strings.Builder
	prompt.WriteString("You are preparing study material for an IT qualification exam.\n")
	prompt.WriteString("Explain in 2-4 sentences why the correct answer to the following multiple-choice question is correct. ")
	prompt.WriteString("Do not restate the question. Write for a student reviewing a mistake.\n\n")
	prompt.WriteString("Question: " + question.Content + "\n")
	for _, a := range question.Answers {
		marker := "-"
		if a.IsCorrect {
			marker = "* (correct)"
		}
		prompt.WriteString(fmt.Sprintf("%s %s\n", marker, a.Content))
	}

	resp, err := s.client.GenerateContent(ctx, genai.Text(prompt.String()))
	if err != nil {
		log.Error().Err(err).Uint("questionID", question.ID).Msg("Gemini explanation generation failed")
		return "", fmt.Errorf("explanation generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("explanation generation returned no content")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			out.WriteString(string(txt))
		}
	}
	explanation := strings.TrimSpace(out.String())
	if explanation == "" {
		return "", fmt.Errorf("explanation generation returned empty text")
	}
	return explanation, nil
}
