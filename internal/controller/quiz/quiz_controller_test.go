package quiz

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mzalewski/examtrainer/internal/dto"
	"github.com/mzalewski/examtrainer/internal/service"
)

type stubQuestionService struct {
	question *dto.QuestionWithAnswers
	batch    []dto.QuestionWithAnswers
	err      error
}

func (s *stubQuestionService) GetQuestion(userID *uint, examCode string, subjectIDs []uint, mode service.SelectionMode) (*dto.QuestionWithAnswers, error) {
	return s.question, s.err
}

func (s *stubQuestionService) BuildFullExam(examCode string) ([]dto.QuestionWithAnswers, error) {
	return s.batch, s.err
}

func (s *stubQuestionService) BuildPersonalizedTest(userID *uint, examCode string, subjectIDs []uint, mode service.SelectionMode, count int) ([]dto.QuestionWithAnswers, error) {
	return s.batch, s.err
}

type stubAnswerService struct {
	resp *dto.CheckAnswerResponse
	err  error
}

func (s *stubAnswerService) CheckAnswer(questionID, answerID uint) (*dto.CheckAnswerResponse, error) {
	return s.resp, s.err
}

func newTestRouter(qs service.QuestionService, as service.AnswerService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctrl := NewQuizController(qs, as)
	r := gin.New()
	r.GET("/question/:exam_code", ctrl.GetQuestion)
	r.GET("/test/personalized/:exam_code", ctrl.GetPersonalizedTest)
	r.POST("/check-answer", ctrl.CheckAnswer)
	return r
}

func doGet(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestGetQuestionMissingSubjects(t *testing.T) {
	r := newTestRouter(&stubQuestionService{}, &stubAnswerService{})

	w := doGet(t, r, "/question/matura")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	resp := decodeError(t, w)
	if resp.Success {
		t.Error("error envelope must carry success=false")
	}
	if resp.Message == "" {
		t.Error("error envelope must carry a message")
	}
}

func TestGetQuestionMalformedSubject(t *testing.T) {
	r := newTestRouter(&stubQuestionService{}, &stubAnswerService{})

	w := doGet(t, r, "/question/matura?subject[]=abc")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetQuestionUnknownMode(t *testing.T) {
	r := newTestRouter(&stubQuestionService{}, &stubAnswerService{})

	w := doGet(t, r, "/question/matura?subject[]=1&premium_option=bogus")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetQuestionPremiumAnonymous(t *testing.T) {
	r := newTestRouter(&stubQuestionService{err: service.ErrPremiumRequired}, &stubAnswerService{})

	w := doGet(t, r, "/question/matura?subject[]=1&premium_option=toImprove")
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if decodeError(t, w).Success {
		t.Error("error envelope must carry success=false")
	}
}

func TestGetQuestionPoolExhausted(t *testing.T) {
	r := newTestRouter(&stubQuestionService{
		err: &service.PoolExhaustedError{Mode: service.ModeToDiscover},
	}, &stubAnswerService{})

	w := doGet(t, r, "/question/matura?subject[]=1&premium_option=toDiscover")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; an exhausted pool is not an error", w.Code)
	}
	var resp dto.NoQuestionsLeftResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Status != "no_questions_left" || resp.Message == "" {
		t.Errorf("unexpected exhaustion envelope: %+v", resp)
	}
}

func TestGetQuestionSuccess(t *testing.T) {
	question := &dto.QuestionWithAnswers{
		Question: dto.QuestionDTO{ID: 7, Content: "2+2?"},
		Answers:  []dto.AnswerDTO{{ID: 1, Content: "4"}, {ID: 2, Content: "5"}},
	}
	r := newTestRouter(&stubQuestionService{question: question}, &stubAnswerService{})

	w := doGet(t, r, "/question/matura?subject[]=1&subject[]=2")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp dto.SingleQuestionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Question.ID != 7 || len(resp.Answers) != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if strings.Contains(w.Body.String(), "is_correct") {
		t.Error("response must not disclose answer correctness")
	}
}

func TestPersonalizedTestInvalidCount(t *testing.T) {
	r := newTestRouter(&stubQuestionService{}, &stubAnswerService{})

	for _, raw := range []string{"abc", "0", "-5"} {
		w := doGet(t, r, "/test/personalized/matura?subject[]=1&question_count="+url.QueryEscape(raw))
		if w.Code != http.StatusBadRequest {
			t.Errorf("question_count=%q: status = %d, want 400", raw, w.Code)
		}
	}
}

func TestCheckAnswerFormBinding(t *testing.T) {
	r := newTestRouter(&stubQuestionService{}, &stubAnswerService{
		resp: &dto.CheckAnswerResponse{Success: true, IsCorrect: true, CorrectAnswerID: 3},
	})

	form := url.Values{"question_id": {"10"}, "answer_id": {"3"}}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/check-answer", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp dto.CheckAnswerResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.IsCorrect || resp.CorrectAnswerID != 3 {
		t.Errorf("unexpected judgment: %+v", resp)
	}
}

func TestCheckAnswerMissingFields(t *testing.T) {
	r := newTestRouter(&stubQuestionService{}, &stubAnswerService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/check-answer", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCheckAnswerNoCorrectOnRecord(t *testing.T) {
	r := newTestRouter(&stubQuestionService{}, &stubAnswerService{err: service.ErrNoCorrectAnswer})

	form := url.Values{"question_id": {"10"}, "answer_id": {"3"}}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/check-answer", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
