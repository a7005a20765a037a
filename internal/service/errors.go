package service

import "errors"

var (
	ErrExamNotFound        = errors.New("exam not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrDuplicateSubmission = errors.New("student has already completed this exam")
	ErrValidation          = errors.New("invalid request")
)
