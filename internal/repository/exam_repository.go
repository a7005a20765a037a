package repository

import (
	"context"

	"exam-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type ExamRepository struct {
	Col *mongo.Collection
}

func NewExamRepository(db *mongo.Database) *ExamRepository {
	return &ExamRepository{Col: db.Collection("exams")}
}

func (r *ExamRepository) FindAll(ctx context.Context) ([]models.Exam, error) {
	cur, err := r.Col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var exams []models.Exam
	for cur.Next(ctx) {
		var e models.Exam
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, cur.Err()
}

func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	var exam models.Exam
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&exam)
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

// AddCompletion appends a completion entry with a nil mark.
func (r *ExamRepository) AddCompletion(ctx context.Context, examID, studentID string) error {
	_, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": examID},
		bson.M{"$push": bson.M{"studentsCompleted": models.CompletionEntry{StudentID: studentID}}},
	)
	return err
}

// SetCompletionMark writes the aggregate score into the student's
// completion entry, moving them from Submitted to Marked.
func (r *ExamRepository) SetCompletionMark(ctx context.Context, examID, studentID string, mark float64) error {
	_, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": examID, "studentsCompleted.studentId": studentID},
		bson.M{"$set": bson.M{"studentsCompleted.$.mark": mark}},
	)
	return err
}

// AddAIMarkingComplete records, idempotently, that AI-assisted marking has
// finished for the student.
func (r *ExamRepository) AddAIMarkingComplete(ctx context.Context, examID, studentID string) error {
	_, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": examID},
		bson.M{"$addToSet": bson.M{"aiMarkingComplete": studentID}},
	)
	return err
}
