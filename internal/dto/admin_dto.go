package dto

type CreateSubjectRequest struct {
	ExamCode string `json:"exam_code" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

type CreateAnswerRequest struct {
	Content   string `json:"content" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// CreateQuestionRequest carries the full answer set; exactly one answer must
// be flagged correct or the request is rejected.
type CreateQuestionRequest struct {
	SubjectID   uint                  `json:"subject_id" binding:"required"`
	ExamCode    string                `json:"exam_code" binding:"required"`
	Content     string                `json:"content" binding:"required"`
	ImageURL    *string               `json:"image_url"`
	Explanation *string               `json:"explanation"`
	Answers     []CreateAnswerRequest `json:"answers" binding:"required,dive"`
}

type QuestionCreatedResponse struct {
	Success  bool        `json:"success"`
	Question QuestionDTO `json:"question"`
}

type ExplanationResponse struct {
	Success     bool   `json:"success"`
	Explanation string `json:"explanation"`
}
