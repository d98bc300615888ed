package dto

import "time"

// CheckAnswerForm is form-encoded, matching the client quiz runtime.
type CheckAnswerForm struct {
	QuestionID uint `form:"question_id" binding:"required"`
	AnswerID   uint `form:"answer_id" binding:"required"`
}

// SaveTestResultRequest is the JSON body of POST /save-test-result.
type SaveTestResultRequest struct {
	ScorePercent    float64              `json:"score_percent"`
	CorrectAnswers  int                  `json:"correct_answers"`
	TotalQuestions  int                  `json:"total_questions" binding:"required"`
	DurationSeconds int                  `json:"duration_seconds"`
	TopicIDs        []uint               `json:"topic_ids"`
	IsFullExam      bool                 `json:"is_full_exam"`
	ExamCode        string               `json:"exam_code" binding:"required"`
	Answers         []AttemptAnswerEntry `json:"answers"`
}

// AttemptAnswerEntry is one answered question within a finished test.
type AttemptAnswerEntry struct {
	QuestionID uint  `json:"question_id" binding:"required"`
	AnswerID   *uint `json:"answer_id"`
	IsCorrect  bool  `json:"is_correct"`
}

// ProgressEntry is one element of the POST /save-progress-bulk array.
type ProgressEntry struct {
	QuestionID uint `json:"questionId" binding:"required"`
	IsCorrect  bool `json:"isCorrect"`
}

type AttemptSummaryDTO struct {
	ID              uint      `json:"id"`
	ExamCode        string    `json:"exam_code"`
	TestType        string    `json:"test_type"`
	CompletedAt     time.Time `json:"completed_at"`
	CorrectAnswers  int       `json:"correct_answers"`
	TotalQuestions  int       `json:"total_questions"`
	ScorePercent    float64   `json:"score_percent"`
	DurationSeconds int       `json:"duration_seconds"`
}

type AttemptListResponse struct {
	Success  bool                `json:"success"`
	Attempts []AttemptSummaryDTO `json:"attempts"`
}

// UserStatsResponse aggregates progress and attempt history for the stats view.
type UserStatsResponse struct {
	Success           bool    `json:"success"`
	QuestionsAnswered int     `json:"questions_answered"`
	CorrectAttempts   int     `json:"correct_attempts"`
	WrongAttempts     int     `json:"wrong_attempts"`
	Accuracy          float64 `json:"accuracy"`
	AttemptCount      int     `json:"attempt_count"`
	AverageScore      float64 `json:"average_score"`
	BestScore         float64 `json:"best_score"`
}

type SaveResultResponse struct {
	Success bool              `json:"success"`
	Attempt AttemptSummaryDTO `json:"attempt"`
}
