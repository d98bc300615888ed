package dto

// AnswerDTO never exposes the correctness flag; the client learns it only
// through /check-answer.
type AnswerDTO struct {
	ID      uint   `json:"id"`
	Content string `json:"content"`
}

type QuestionDTO struct {
	ID          uint    `json:"id"`
	SubjectID   uint    `json:"subject_id"`
	ExamCode    string  `json:"exam_code"`
	Content     string  `json:"content"`
	ImageURL    *string `json:"image_url,omitempty"`
	Explanation *string `json:"explanation,omitempty"`
}

// QuestionWithAnswers pairs a question with its shuffled options.
type QuestionWithAnswers struct {
	Question QuestionDTO `json:"question"`
	Answers  []AnswerDTO `json:"answers"`
}

// SingleQuestionResponse is the payload of GET /question/{examCode}.
type SingleQuestionResponse struct {
	Success  bool        `json:"success"`
	Question QuestionDTO `json:"question"`
	Answers  []AnswerDTO `json:"answers"`
}

// NoQuestionsLeftResponse signals an exhausted adaptive pool; this is not an
// error, the client renders the message and offers other modes.
type NoQuestionsLeftResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TestResponse is the payload of GET /test/full/... and /test/personalized/...
type TestResponse struct {
	Success bool     `json:"success"`
	Data    TestData `json:"data"`
}

type TestData struct {
	Questions []QuestionWithAnswers `json:"questions"`
}

// CheckAnswerResponse is the payload of POST /check-answer.
type CheckAnswerResponse struct {
	Success         bool `json:"success"`
	IsCorrect       bool `json:"is_correct"`
	CorrectAnswerID uint `json:"correct_answer_id"`
}
