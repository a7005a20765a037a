package service

import (
	"context"

	"exam-service/internal/models"
	"exam-service/internal/repository"
)

// ExamService serves the exam catalog reads.
type ExamService struct {
	Exams *repository.ExamRepository
}

func NewExamService(exams *repository.ExamRepository) *ExamService {
	return &ExamService{Exams: exams}
}

func (s *ExamService) ListExams(ctx context.Context) ([]models.Exam, error) {
	return s.Exams.FindAll(ctx)
}
