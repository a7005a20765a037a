package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateCompletion is returned when a completion is already reserved
// for the (exam, student) pair.
var ErrDuplicateCompletion = errors.New("completion already reserved")

// CompletionRepository backs the exam_completions collection. A unique
// compound index on (examId, studentId) makes the reservation atomic, so
// two concurrent submissions for the same pair cannot both pass the
// duplicate check. The embedded studentsCompleted array on the exam stays
// authoritative for reads.
type CompletionRepository struct {
	Col *mongo.Collection
}

func NewCompletionRepository(db *mongo.Database) *CompletionRepository {
	return &CompletionRepository{Col: db.Collection("exam_completions")}
}

// EnsureIndexes creates the uniqueness constraint. Called once at startup.
func (r *CompletionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.Col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "examId", Value: 1}, {Key: "studentId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Reserve claims the completion slot for the pair. Returns
// ErrDuplicateCompletion if the student has already submitted.
func (r *CompletionRepository) Reserve(ctx context.Context, examID, studentID string) error {
	_, err := r.Col.InsertOne(ctx, bson.M{"examId": examID, "studentId": studentID})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateCompletion
	}
	return err
}

// Release frees the reservation after a failed submission so the student
// can retry.
func (r *CompletionRepository) Release(ctx context.Context, examID, studentID string) error {
	_, err := r.Col.DeleteOne(ctx, bson.M{"examId": examID, "studentId": studentID})
	return err
}
