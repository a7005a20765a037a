package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"exam-service/internal/logger"
	"exam-service/internal/models"
	"exam-service/internal/repository"
	"exam-service/internal/scoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExamStore is the slice of exam persistence the orchestrator needs.
type ExamStore interface {
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	AddCompletion(ctx context.Context, examID, studentID string) error
	SetCompletionMark(ctx context.Context, examID, studentID string, mark float64) error
	AddAIMarkingComplete(ctx context.Context, examID, studentID string) error
}

type QuestionStore interface {
	FindByID(ctx context.Context, id string) (*models.Question, error)
	AppendResponse(ctx context.Context, questionID string, entry models.StudentResponse) error
	EnsureResponseEntry(ctx context.Context, questionID, studentID string) error
	SetResponseFeedback(ctx context.Context, questionID, studentID string, mark *models.Mark, feedback *models.Feedback) error
}

// CompletionStore reserves the one completion slot per (exam, student)
// pair. Reserve returns repository.ErrDuplicateCompletion when the slot
// is taken.
type CompletionStore interface {
	Reserve(ctx context.Context, examID, studentID string) error
	Release(ctx context.Context, examID, studentID string) error
}

type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// SubmittedResponse mirrors a studentResponse entry on the wire. The
// submit path reads Response; the feedback path reads Mark and Feedback.
type SubmittedResponse struct {
	StudentID string           `json:"studentId"`
	Response  string           `json:"response"`
	Mark      *models.Mark     `json:"mark,omitempty"`
	Feedback  *models.Feedback `json:"feedback,omitempty"`
}

// SubmittedQuestion mirrors the exam's question list with the student's
// in-progress responses attached.
type SubmittedQuestion struct {
	ID              string              `json:"_id"`
	SubQuestions    []SubmittedQuestion `json:"subQuestions,omitempty"`
	StudentResponse []SubmittedResponse `json:"studentResponse,omitempty"`
}

type SubmitExamRequest struct {
	CurrentUserID string              `json:"currentUserId"`
	Questions     []SubmittedQuestion `json:"questions"`
}

type SubmitFeedbackRequest struct {
	CurrentUserID     string              `json:"currentUserId"`
	StudentID         string              `json:"studentId"`
	Questions         []SubmittedQuestion `json:"questions"`
	Score             *float64            `json:"score,omitempty"`
	AIMarkingComplete bool                `json:"aiMarkingComplete,omitempty"`
}

// SubmissionService drives the per-(exam, student) workflow: Not Started
// -> In Progress -> Submitted -> Marked. Submission stages every mutation
// in memory first, reserves the completion slot, then flushes, so a
// half-written submission is never visible as a success.
type SubmissionService struct {
	exams       ExamStore
	questions   QuestionStore
	completions CompletionStore
	objects     ObjectStore
}

func NewSubmissionService(exams ExamStore, questions QuestionStore, completions CompletionStore, objects ObjectStore) *SubmissionService {
	return &SubmissionService{
		exams:       exams,
		questions:   questions,
		completions: completions,
		objects:     objects,
	}
}

// leafVisit pairs a canonical leaf question with the student's submitted
// entry for it.
type leafVisit struct {
	question *models.Question
	response *SubmittedResponse
}

// resolveLeaves walks the exam's question list, expanding sections one
// level deep, and maps each leaf to the student's submitted response.
// Leaves the student skipped are not visited. A question id that cannot
// be resolved fails the whole walk.
func (s *SubmissionService) resolveLeaves(ctx context.Context, exam *models.Exam, submitted []SubmittedQuestion, studentID string) ([]leafVisit, error) {
	var visits []leafVisit
	for _, qid := range exam.Questions {
		q, err := s.questions.FindByID(ctx, qid)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, qid)
		}

		if q.IsSection() && len(q.SubQuestions) > 0 {
			section := findSubmittedQuestion(submitted, qid)
			if section == nil {
				continue
			}
			for _, subID := range q.SubQuestions {
				sub, err := s.questions.FindByID(ctx, subID)
				if err != nil {
					return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, subID)
				}
				if sub.IsSection() {
					// Sections never nest; a nested one is skipped.
					continue
				}
				if resp := findSubmittedResponse(findSubmittedQuestion(section.SubQuestions, subID), studentID); resp != nil {
					visits = append(visits, leafVisit{question: sub, response: resp})
				}
			}
			continue
		}

		if resp := findSubmittedResponse(findSubmittedQuestion(submitted, qid), studentID); resp != nil {
			visits = append(visits, leafVisit{question: q, response: resp})
		}
	}
	return visits, nil
}

type stagedWrite struct {
	questionID string
	entry      models.StudentResponse
}

// SubmitExam records one student's answers for the exam. Audio responses
// are moved to object storage, objectively-gradable responses are scored,
// and the exam gains a completion entry with a nil mark. Submitting twice
// for the same (exam, student) pair is rejected.
func (s *SubmissionService) SubmitExam(ctx context.Context, examID string, req SubmitExamRequest) error {
	if req.CurrentUserID == "" {
		return fmt.Errorf("%w: currentUserId is required", ErrValidation)
	}

	exam, err := s.exams.FindByID(ctx, examID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrExamNotFound, examID)
	}
	if exam.HasCompleted(req.CurrentUserID) {
		return ErrDuplicateSubmission
	}

	visits, err := s.resolveLeaves(ctx, exam, req.Questions, req.CurrentUserID)
	if err != nil {
		return err
	}

	var staged []stagedWrite
	var uploadedKeys []string
	abort := func(cause error) error {
		for _, key := range uploadedKeys {
			if derr := s.objects.Delete(ctx, key); derr != nil {
				logger.Log.Warn("failed to delete orphaned upload",
					zap.String("key", key), zap.Error(derr))
			}
		}
		return cause
	}

	for _, v := range visits {
		entry := models.StudentResponse{
			StudentID: req.CurrentUserID,
			Response:  v.response.Response,
		}

		switch {
		case v.question.RequiresAudioUpload():
			if !isRemoteURL(entry.Response) {
				data, contentType, err := decodeAudioPayload(entry.Response)
				if err != nil {
					return abort(fmt.Errorf("%w: question %s: %v", ErrValidation, v.question.ID, err))
				}
				key := fmt.Sprintf("%s/exam-question-responses/%s/%s-%s.wav",
					exam.School, exam.ID, v.question.ID, uuid.NewString())
				url, err := s.objects.Upload(ctx, key, data, contentType)
				if err != nil {
					return abort(fmt.Errorf("upload audio response for question %s: %w", v.question.ID, err))
				}
				uploadedKeys = append(uploadedKeys, key)
				entry.Response = url
			}
		case v.question.AutoScorable():
			mark, err := scoring.Score(v.question, entry.Response)
			if err != nil {
				return abort(fmt.Errorf("%w: question %s: %v", ErrValidation, v.question.ID, err))
			}
			entry.Mark = &models.Mark{TotalMark: &mark}
		}

		staged = append(staged, stagedWrite{questionID: v.question.ID, entry: entry})
	}

	// The reservation is the atomic duplicate guard: a unique index makes
	// concurrent submissions for the same pair fail here, not after the
	// question writes.
	if err := s.completions.Reserve(ctx, examID, req.CurrentUserID); err != nil {
		if errors.Is(err, repository.ErrDuplicateCompletion) {
			return abort(ErrDuplicateSubmission)
		}
		return abort(fmt.Errorf("reserve completion: %w", err))
	}

	for _, w := range staged {
		if err := s.questions.AppendResponse(ctx, w.questionID, w.entry); err != nil {
			if rerr := s.completions.Release(ctx, examID, req.CurrentUserID); rerr != nil {
				logger.Log.Warn("failed to release completion reservation",
					zap.String("examId", examID), zap.Error(rerr))
			}
			return abort(fmt.Errorf("save response for question %s: %w", w.questionID, err))
		}
	}

	if err := s.exams.AddCompletion(ctx, examID, req.CurrentUserID); err != nil {
		return fmt.Errorf("record completion: %w", err)
	}
	return nil
}

// SubmitFeedback attaches teacher- or AI-supplied marks and feedback to
// the student's response entries. A placeholder entry is created for
// questions the student skipped; the response text is never modified.
// An aggregate score moves the completion entry from Submitted to Marked.
func (s *SubmissionService) SubmitFeedback(ctx context.Context, examID string, req SubmitFeedbackRequest) error {
	if req.StudentID == "" {
		return fmt.Errorf("%w: studentId is required", ErrValidation)
	}

	exam, err := s.exams.FindByID(ctx, examID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrExamNotFound, examID)
	}

	visits, err := s.resolveLeaves(ctx, exam, req.Questions, req.StudentID)
	if err != nil {
		return err
	}

	for _, v := range visits {
		if v.response.Mark == nil && v.response.Feedback == nil {
			continue
		}
		if err := s.questions.EnsureResponseEntry(ctx, v.question.ID, req.StudentID); err != nil {
			return fmt.Errorf("ensure response entry for question %s: %w", v.question.ID, err)
		}
		if err := s.questions.SetResponseFeedback(ctx, v.question.ID, req.StudentID, v.response.Mark, v.response.Feedback); err != nil {
			return fmt.Errorf("save feedback for question %s: %w", v.question.ID, err)
		}
	}

	if req.Score != nil {
		if !exam.HasCompleted(req.StudentID) {
			return fmt.Errorf("%w: student %s has not submitted this exam", ErrValidation, req.StudentID)
		}
		if err := s.exams.SetCompletionMark(ctx, examID, req.StudentID, *req.Score); err != nil {
			return fmt.Errorf("record exam mark: %w", err)
		}
	}

	if req.AIMarkingComplete {
		if err := s.exams.AddAIMarkingComplete(ctx, examID, req.StudentID); err != nil {
			return fmt.Errorf("record ai marking completion: %w", err)
		}
	}
	return nil
}

func findSubmittedQuestion(list []SubmittedQuestion, id string) *SubmittedQuestion {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

func findSubmittedResponse(q *SubmittedQuestion, studentID string) *SubmittedResponse {
	if q == nil {
		return nil
	}
	for i := range q.StudentResponse {
		if q.StudentResponse[i].StudentID == studentID {
			return &q.StudentResponse[i]
		}
	}
	return nil
}

func isRemoteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// decodeAudioPayload decodes a base64 audio payload, accepting an
// optional data-URI prefix carrying the content type.
func decodeAudioPayload(payload string) ([]byte, string, error) {
	contentType := "audio/wav"
	if strings.HasPrefix(payload, "data:") {
		semi := strings.Index(payload, ";base64,")
		if semi < 0 {
			return nil, "", fmt.Errorf("malformed data URI")
		}
		if mime := payload[len("data:"):semi]; mime != "" {
			contentType = mime
		}
		payload = payload[semi+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode base64 audio: %v", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty audio payload")
	}
	return data, contentType, nil
}
