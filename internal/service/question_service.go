package service

import (
	"context"
	"fmt"

	"exam-service/internal/models"
	"exam-service/internal/repository"
)

// QuestionService serves the question catalog reads.
type QuestionService struct {
	Questions *repository.QuestionRepository
	Exams     *repository.ExamRepository
}

func NewQuestionService(questions *repository.QuestionRepository, exams *repository.ExamRepository) *QuestionService {
	return &QuestionService{Questions: questions, Exams: exams}
}

// ListQuestions returns the exam's questions in stored order, or every
// question when no exam id is given.
func (s *QuestionService) ListQuestions(ctx context.Context, examID string) ([]models.Question, error) {
	if examID == "" {
		return s.Questions.FindAll(ctx)
	}
	exam, err := s.Exams.FindByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrExamNotFound, examID)
	}
	return s.Questions.FindByIDs(ctx, exam.Questions)
}
