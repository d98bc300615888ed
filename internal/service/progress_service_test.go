package service

import (
	"errors"
	"testing"
	"time"

	"github.com/mzalewski/examtrainer/internal/dto"
	"github.com/mzalewski/examtrainer/internal/model"
	"github.com/mzalewski/examtrainer/internal/repository"
)

type fakeProgressRepo struct {
	rows    map[[2]uint]*model.UserProgress
	failFor map[uint]error
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: make(map[[2]uint]*model.UserProgress)}
}

func (r *fakeProgressRepo) Record(userID, questionID uint, isCorrect bool, at time.Time) error {
	if err, ok := r.failFor[questionID]; ok {
		return err
	}
	key := [2]uint{userID, questionID}
	row, ok := r.rows[key]
	if !ok {
		row = &model.UserProgress{UserID: userID, QuestionID: questionID}
		r.rows[key] = row
	}
	if isCorrect {
		row.CorrectAttempts++
	} else {
		row.WrongAttempts++
	}
	row.LastResult = isCorrect
	row.LastAttempt = at
	return nil
}

func (r *fakeProgressRepo) FindByUser(userID uint) ([]model.UserProgress, error) {
	var out []model.UserProgress
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) Summary(userID uint) (*repository.ProgressSummary, error) {
	s := repository.ProgressSummary{}
	for _, row := range r.rows {
		if row.UserID != userID {
			continue
		}
		s.QuestionsAnswered++
		s.CorrectAttempts += row.CorrectAttempts
		s.WrongAttempts += row.WrongAttempts
	}
	return &s, nil
}

func TestRecordAccumulates(t *testing.T) {
	repo := newFakeProgressRepo()
	svc := NewProgressService(repo, &fakeAttemptRepo{})

	if err := svc.Record(1, dto.ProgressEntry{QuestionID: 10, IsCorrect: true}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := svc.Record(1, dto.ProgressEntry{QuestionID: 10, IsCorrect: false}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	row := repo.rows[[2]uint{1, 10}]
	if row.CorrectAttempts != 1 || row.WrongAttempts != 1 {
		t.Errorf("expected 1/1 counters, got %d/%d", row.CorrectAttempts, row.WrongAttempts)
	}
	if row.LastResult {
		t.Error("expected last_result to reflect the most recent entry")
	}
}

func TestRecordBulkToleratesPartialFailure(t *testing.T) {
	repo := newFakeProgressRepo()
	repo.failFor = map[uint]error{20: errors.New("constraint violation")}
	svc := NewProgressService(repo, &fakeAttemptRepo{})

	err := svc.RecordBulk(1, []dto.ProgressEntry{
		{QuestionID: 10, IsCorrect: true},
		{QuestionID: 20, IsCorrect: true},
		{QuestionID: 30, IsCorrect: false},
	})
	if err == nil {
		t.Fatal("expected an error reporting the failed entry")
	}
	if len(repo.rows) != 2 {
		t.Errorf("expected the other entries applied, got %d rows", len(repo.rows))
	}
}

func TestStatsCombinesProgressAndAttempts(t *testing.T) {
	progress := newFakeProgressRepo()
	attempts := &fakeAttemptRepo{}
	svc := NewProgressService(progress, attempts)

	svc.Record(1, dto.ProgressEntry{QuestionID: 10, IsCorrect: true})
	svc.Record(1, dto.ProgressEntry{QuestionID: 10, IsCorrect: true})
	svc.Record(1, dto.ProgressEntry{QuestionID: 11, IsCorrect: false})
	svc.Record(2, dto.ProgressEntry{QuestionID: 10, IsCorrect: true})

	attempts.Create(&model.ExamAttempt{UserID: 1, ScorePercent: 50})
	attempts.Create(&model.ExamAttempt{UserID: 1, ScorePercent: 80})

	stats, err := svc.Stats(1)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.QuestionsAnswered != 2 {
		t.Errorf("questions answered = %d, want 2", stats.QuestionsAnswered)
	}
	if stats.CorrectAttempts != 2 || stats.WrongAttempts != 1 {
		t.Errorf("counters = %d/%d, want 2/1", stats.CorrectAttempts, stats.WrongAttempts)
	}
	if want := 2.0 / 3.0; stats.Accuracy != want {
		t.Errorf("accuracy = %v, want %v", stats.Accuracy, want)
	}
	if stats.AttemptCount != 2 || stats.BestScore != 80 || stats.AverageScore != 65 {
		t.Errorf("attempt stats = %d/%v/%v, want 2/65/80",
			stats.AttemptCount, stats.AverageScore, stats.BestScore)
	}
}
