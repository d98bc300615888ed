package repository

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mzalewski/examtrainer/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// openTestDB connects to the integration database and migrates the schema.
// Tests are gated behind EXAMTRAINER_INTEGRATION=1 so the unit suite stays
// hermetic.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("EXAMTRAINER_INTEGRATION") != "1" {
		t.Skip("set EXAMTRAINER_INTEGRATION=1 to run integration tests")
	}

	dsn := os.Getenv("EXAMTRAINER_TEST_DSN")
	if strings.TrimSpace(dsn) == "" {
		dsn = "host=localhost user=examtrainer password=examtrainer dbname=examtrainer_test port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{}, &model.ActionToken{},
		&model.Subject{}, &model.Question{}, &model.Answer{},
		&model.UserProgress{},
		&model.ExamAttempt{}, &model.ExamAttemptTopic{}, &model.ExamAttemptAnswer{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	suffix := time.Now().UnixNano()
	user := model.User{
		Name:         "Integration Tester",
		Email:        fmt.Sprintf("itest-%d@example.com", suffix),
		AuthProvider: model.ProviderLocal,
		Role:         model.RoleUser,
		Verified:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	t.Cleanup(func() { db.Unscoped().Delete(&user) })
	return &user
}

func seedBank(t *testing.T, db *gorm.DB, questionCount int) (*model.Subject, []model.Question) {
	t.Helper()
	suffix := time.Now().UnixNano()
	examCode := fmt.Sprintf("IT%d", suffix%100000)

	subject := model.Subject{ExamCode: examCode, Name: fmt.Sprintf("itest subject %d", suffix)}
	if err := db.Create(&subject).Error; err != nil {
		t.Fatalf("seed subject: %v", err)
	}

	questions := make([]model.Question, questionCount)
	for i := range questions {
		questions[i] = model.Question{
			SubjectID: subject.ID,
			ExamCode:  examCode,
			Content:   fmt.Sprintf("question %d", i),
			Answers: []model.Answer{
				{Content: "right", IsCorrect: true},
				{Content: "wrong a"},
				{Content: "wrong b"},
			},
		}
		if err := db.Create(&questions[i]).Error; err != nil {
			t.Fatalf("seed question: %v", err)
		}
	}

	t.Cleanup(func() {
		for i := range questions {
			db.Unscoped().Where("question_id = ?", questions[i].ID).Delete(&model.Answer{})
			db.Unscoped().Delete(&questions[i])
		}
		db.Unscoped().Delete(&subject)
	})
	return &subject, questions
}

func TestProgressUpsertAccumulates(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	_, questions := seedBank(t, db, 1)

	repo := NewProgressRepository(db)
	q := questions[0]

	first := time.Now().Add(-time.Minute).Truncate(time.Millisecond)
	second := time.Now().Truncate(time.Millisecond)

	if err := repo.Record(user.ID, q.ID, true, first); err != nil {
		t.Fatalf("first Record: %v", err)
	}
	if err := repo.Record(user.ID, q.ID, false, second); err != nil {
		t.Fatalf("second Record: %v", err)
	}
	t.Cleanup(func() {
		db.Where("user_id = ?", user.ID).Delete(&model.UserProgress{})
	})

	var row model.UserProgress
	err := db.Where("user_id = ? AND question_id = ?", user.ID, q.ID).First(&row).Error
	if err != nil {
		t.Fatalf("load progress row: %v", err)
	}
	if row.CorrectAttempts != 1 || row.WrongAttempts != 1 {
		t.Errorf("counters = %d/%d, want 1/1", row.CorrectAttempts, row.WrongAttempts)
	}
	if row.LastResult {
		t.Error("last_result should reflect the second (wrong) submission")
	}
	if !row.LastAttempt.After(first) {
		t.Errorf("last_attempt = %v, want the second timestamp", row.LastAttempt)
	}

	var count int64
	db.Model(&model.UserProgress{}).
		Where("user_id = ? AND question_id = ?", user.ID, q.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected a single progress row, got %d", count)
	}
}

func TestAttemptRollbackOnBadChild(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	subject, _ := seedBank(t, db, 1)

	repo := NewAttemptRepository(db)

	attempt := model.ExamAttempt{
		UserID:         user.ID,
		ExamCode:       subject.ExamCode,
		TestType:       model.TestTypePersonalized,
		StartedAt:      time.Now().Add(-time.Minute),
		CompletedAt:    time.Now(),
		CorrectAnswers: 1,
		TotalQuestions: 2,
		ScorePercent:   50,
		// Duplicate topic rows violate the (attempt_id, subject_id) unique
		// index, failing the child insert after the header is written.
		Topics: []model.ExamAttemptTopic{
			{SubjectID: subject.ID},
			{SubjectID: subject.ID},
		},
	}

	if err := repo.Create(&attempt); err == nil {
		t.Fatal("expected the duplicate topic to fail the transaction")
	}

	var headers int64
	db.Model(&model.ExamAttempt{}).Where("user_id = ?", user.ID).Count(&headers)
	if headers != 0 {
		t.Errorf("expected the header rolled back, found %d rows", headers)
	}
}

func TestAttemptCreateAndStats(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	subject, questions := seedBank(t, db, 2)

	repo := NewAttemptRepository(db)

	answerID := questions[0].Answers[0].ID
	attempt := model.ExamAttempt{
		UserID:         user.ID,
		ExamCode:       subject.ExamCode,
		TestType:       model.TestTypeFullExam,
		StartedAt:      time.Now().Add(-10 * time.Minute),
		CompletedAt:    time.Now(),
		CorrectAnswers: 1,
		TotalQuestions: 2,
		ScorePercent:   50,
		Topics:         []model.ExamAttemptTopic{{SubjectID: subject.ID}},
		Answers: []model.ExamAttemptAnswer{
			{QuestionID: questions[0].ID, AnswerID: &answerID, IsCorrect: true},
			{QuestionID: questions[1].ID, AnswerID: nil, IsCorrect: false},
		},
	}
	if err := repo.Create(&attempt); err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() {
		db.Unscoped().Where("attempt_id = ?", attempt.ID).Delete(&model.ExamAttemptAnswer{})
		db.Unscoped().Where("attempt_id = ?", attempt.ID).Delete(&model.ExamAttemptTopic{})
		db.Unscoped().Delete(&attempt)
	})

	loaded, err := repo.FindByIDWithDetails(attempt.ID)
	if err != nil {
		t.Fatalf("FindByIDWithDetails: %v", err)
	}
	if len(loaded.Topics) != 1 || len(loaded.Answers) != 2 {
		t.Errorf("expected 1 topic and 2 answers, got %d/%d", len(loaded.Topics), len(loaded.Answers))
	}

	stats, err := repo.Stats(user.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.AttemptCount != 1 || stats.BestScore != 50 {
		t.Errorf("stats = %+v, want one attempt with best 50", stats)
	}
}

func TestToDiscoverMatchesRandomPoolWhenUnseen(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	subject, questions := seedBank(t, db, 5)

	repo := NewQuestionRepository(db)
	scope := []uint{subject.ID}

	random, err := repo.FindRandom(subject.ExamCode, scope, 100)
	if err != nil {
		t.Fatalf("FindRandom: %v", err)
	}
	unseen, err := repo.FindUnseen(user.ID, subject.ExamCode, scope, 100)
	if err != nil {
		t.Fatalf("FindUnseen: %v", err)
	}

	if len(random) != len(questions) || len(unseen) != len(questions) {
		t.Fatalf("expected both pools to hold all %d questions, got %d/%d",
			len(questions), len(random), len(unseen))
	}

	ids := func(qs []model.Question) map[uint]bool {
		m := make(map[uint]bool, len(qs))
		for _, q := range qs {
			m[q.ID] = true
		}
		return m
	}
	randomIDs, unseenIDs := ids(random), ids(unseen)
	for id := range randomIDs {
		if !unseenIDs[id] {
			t.Errorf("question %d in random pool but not in unseen pool", id)
		}
	}
}

func TestToDiscoverExcludesSeen(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	subject, questions := seedBank(t, db, 3)

	progress := NewProgressRepository(db)
	if err := progress.Record(user.ID, questions[0].ID, true, time.Now()); err != nil {
		t.Fatalf("Record: %v", err)
	}
	t.Cleanup(func() {
		db.Where("user_id = ?", user.ID).Delete(&model.UserProgress{})
	})

	repo := NewQuestionRepository(db)
	unseen, err := repo.FindUnseen(user.ID, subject.ExamCode, []uint{subject.ID}, 100)
	if err != nil {
		t.Fatalf("FindUnseen: %v", err)
	}
	if len(unseen) != 2 {
		t.Fatalf("expected 2 unseen questions, got %d", len(unseen))
	}
	for _, q := range unseen {
		if q.ID == questions[0].ID {
			t.Error("attempted question leaked into the unseen pool")
		}
	}
}

func TestToImproveThreshold(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	subject, questions := seedBank(t, db, 3)

	progress := NewProgressRepository(db)
	now := time.Now()

	// questions[0]: 1/4 correct (0.25), questions[1]: 3/4 correct (0.75),
	// questions[2]: never attempted.
	record := func(questionID uint, correct, wrong int) {
		for i := 0; i < correct; i++ {
			if err := progress.Record(user.ID, questionID, true, now); err != nil {
				t.Fatalf("Record: %v", err)
			}
		}
		for i := 0; i < wrong; i++ {
			if err := progress.Record(user.ID, questionID, false, now); err != nil {
				t.Fatalf("Record: %v", err)
			}
		}
	}
	record(questions[0].ID, 1, 3)
	record(questions[1].ID, 3, 1)
	t.Cleanup(func() {
		db.Where("user_id = ?", user.ID).Delete(&model.UserProgress{})
	})

	repo := NewQuestionRepository(db)
	low, err := repo.FindLowAccuracy(user.ID, subject.ExamCode, []uint{subject.ID}, 100, 0.70)
	if err != nil {
		t.Fatalf("FindLowAccuracy: %v", err)
	}
	if len(low) != 1 {
		t.Fatalf("expected exactly the 0.25-accuracy question, got %d rows", len(low))
	}
	if low[0].ID != questions[0].ID {
		t.Errorf("expected question %d, got %d", questions[0].ID, low[0].ID)
	}
}

func TestLastMistakesOrdering(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	subject, questions := seedBank(t, db, 3)

	progress := NewProgressRepository(db)
	base := time.Now().Add(-time.Hour)

	// Two wrong answers at different times and one question last answered
	// correctly, which must not appear.
	if err := progress.Record(user.ID, questions[0].ID, false, base); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := progress.Record(user.ID, questions[1].ID, false, base.Add(time.Minute)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := progress.Record(user.ID, questions[2].ID, false, base); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := progress.Record(user.ID, questions[2].ID, true, base.Add(2*time.Minute)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	t.Cleanup(func() {
		db.Where("user_id = ?", user.ID).Delete(&model.UserProgress{})
	})

	repo := NewQuestionRepository(db)
	mistakes, err := repo.FindRecentMistakes(user.ID, subject.ExamCode, []uint{subject.ID}, 100)
	if err != nil {
		t.Fatalf("FindRecentMistakes: %v", err)
	}
	if len(mistakes) != 2 {
		t.Fatalf("expected 2 recent mistakes, got %d", len(mistakes))
	}
	if mistakes[0].ID != questions[1].ID {
		t.Errorf("expected the most recent mistake first, got question %d", mistakes[0].ID)
	}
	if mistakes[0].ID == questions[2].ID || mistakes[1].ID == questions[2].ID {
		t.Error("question last answered correctly must not appear in lastMistakes")
	}
}

func TestToRemindOldestFirst(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	subject, questions := seedBank(t, db, 3)

	progress := NewProgressRepository(db)
	base := time.Now().Add(-2 * time.Hour)

	// questions[1] answered longest ago, questions[0] more recently,
	// questions[2] never attempted and therefore out of scope.
	if err := progress.Record(user.ID, questions[0].ID, true, base.Add(time.Hour)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := progress.Record(user.ID, questions[1].ID, true, base); err != nil {
		t.Fatalf("Record: %v", err)
	}
	t.Cleanup(func() {
		db.Where("user_id = ?", user.ID).Delete(&model.UserProgress{})
	})

	repo := NewQuestionRepository(db)
	stale, err := repo.FindStale(user.ID, subject.ExamCode, []uint{subject.ID}, 100)
	if err != nil {
		t.Fatalf("FindStale: %v", err)
	}
	if len(stale) != 2 {
		t.Fatalf("expected 2 attempted questions, got %d", len(stale))
	}
	if stale[0].ID != questions[1].ID {
		t.Errorf("expected the oldest attempt first, got question %d", stale[0].ID)
	}
	if stale[0].ID == questions[2].ID || stale[1].ID == questions[2].ID {
		t.Error("never-attempted question must not appear in the reminder pool")
	}
}
