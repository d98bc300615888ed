package service

import (
	"errors"
	"testing"

	"github.com/mzalewski/examtrainer/internal/dto"
	"github.com/mzalewski/examtrainer/internal/model"
)

func TestCreateQuestionAnswerCardinality(t *testing.T) {
	subjects := &fakeSubjectRepo{subjects: []model.Subject{{ID: 1, ExamCode: "matura", Name: "algebra"}}}
	questions := &fakeQuestionRepo{}
	svc := NewAdminService(subjects, questions)

	base := dto.CreateQuestionRequest{
		SubjectID: 1,
		ExamCode:  "matura",
		Content:   "2+2?",
	}

	noCorrect := base
	noCorrect.Answers = []dto.CreateAnswerRequest{
		{Content: "3"}, {Content: "5"},
	}
	if _, err := svc.CreateQuestion(noCorrect); !errors.Is(err, ErrAnswerCardinality) {
		t.Errorf("no correct answer: expected ErrAnswerCardinality, got %v", err)
	}

	twoCorrect := base
	twoCorrect.Answers = []dto.CreateAnswerRequest{
		{Content: "4", IsCorrect: true}, {Content: "4.0", IsCorrect: true},
	}
	if _, err := svc.CreateQuestion(twoCorrect); !errors.Is(err, ErrAnswerCardinality) {
		t.Errorf("two correct answers: expected ErrAnswerCardinality, got %v", err)
	}

	single := base
	single.Answers = []dto.CreateAnswerRequest{
		{Content: "4", IsCorrect: true},
	}
	if _, err := svc.CreateQuestion(single); !errors.Is(err, ErrAnswerCardinality) {
		t.Errorf("single answer option: expected ErrAnswerCardinality, got %v", err)
	}

	if len(questions.created) != 0 {
		t.Fatalf("expected no questions persisted, got %d", len(questions.created))
	}

	valid := base
	valid.Answers = []dto.CreateAnswerRequest{
		{Content: "4", IsCorrect: true}, {Content: "5"},
	}
	q, err := svc.CreateQuestion(valid)
	if err != nil {
		t.Fatalf("valid question rejected: %v", err)
	}
	if q == nil || len(questions.created) != 1 {
		t.Fatalf("expected one question persisted, got %d", len(questions.created))
	}
}

func TestCreateQuestionUnknownSubject(t *testing.T) {
	svc := NewAdminService(&fakeSubjectRepo{}, &fakeQuestionRepo{})

	req := dto.CreateQuestionRequest{
		SubjectID: 99,
		ExamCode:  "matura",
		Content:   "2+2?",
		Answers: []dto.CreateAnswerRequest{
			{Content: "4", IsCorrect: true}, {Content: "5"},
		},
	}
	if _, err := svc.CreateQuestion(req); !errors.Is(err, ErrUnknownSubject) {
		t.Fatalf("expected ErrUnknownSubject, got %v", err)
	}
}
