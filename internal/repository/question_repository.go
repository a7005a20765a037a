package repository

import (
	"context"

	"exam-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type QuestionRepository struct {
	Col *mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{Col: db.Collection("questions")}
}

func (r *QuestionRepository) FindAll(ctx context.Context) ([]models.Question, error) {
	cur, err := r.Col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var questions []models.Question
	for cur.Next(ctx) {
		var q models.Question
		if err := cur.Decode(&q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, cur.Err()
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// FindByIDs returns the questions in the order of the given id list.
// Missing ids are omitted, not errors; callers that need strict
// resolution fetch one by one.
func (r *QuestionRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	cur, err := r.Col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	byID := make(map[string]models.Question, len(ids))
	for cur.Next(ctx) {
		var q models.Question
		if err := cur.Decode(&q); err != nil {
			return nil, err
		}
		byID[q.ID] = q
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	ordered := make([]models.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	_, err := r.Col.InsertOne(ctx, question)
	return err
}

// AppendResponse appends a student response entry to the question.
func (r *QuestionRepository) AppendResponse(ctx context.Context, questionID string, entry models.StudentResponse) error {
	_, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": questionID},
		bson.M{"$push": bson.M{"studentResponse": entry}},
	)
	return err
}

// EnsureResponseEntry inserts a placeholder response entry for the student
// unless one already exists. Used by the feedback step so a teacher can
// leave feedback on a question the student skipped.
func (r *QuestionRepository) EnsureResponseEntry(ctx context.Context, questionID, studentID string) error {
	_, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": questionID, "studentResponse.studentId": bson.M{"$ne": studentID}},
		bson.M{"$push": bson.M{"studentResponse": models.StudentResponse{StudentID: studentID}}},
	)
	return err
}

// SetResponseFeedback overwrites the mark and feedback fields of the
// student's existing response entry. The response text is never touched.
func (r *QuestionRepository) SetResponseFeedback(ctx context.Context, questionID, studentID string, mark *models.Mark, feedback *models.Feedback) error {
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"entry.studentId": studentID}},
	})
	_, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": questionID},
		bson.M{"$set": bson.M{
			"studentResponse.$[entry].mark":     mark,
			"studentResponse.$[entry].feedback": feedback,
		}},
		opts,
	)
	return err
}
