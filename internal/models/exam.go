package models

// CompletionEntry marks that a student has submitted the exam. Mark stays
// nil until the feedback step supplies an aggregate score.
type CompletionEntry struct {
	StudentID string   `bson:"studentId" json:"studentId"`
	Mark      *float64 `bson:"mark" json:"mark"`
}

type Exam struct {
	ID                string            `bson:"_id,omitempty" json:"_id"`
	Name              string            `bson:"name" json:"name"`
	Description       string            `bson:"description" json:"description"`
	Instructions      string            `bson:"instructions" json:"instructions"`
	School            string            `bson:"school" json:"school"`
	AssignedTeacher   string            `bson:"assignedTeacher" json:"assignedTeacher"`
	AutoMarking       bool              `bson:"autoMarking" json:"autoMarking"`
	Questions         []string          `bson:"questions" json:"questions"`
	StudentsEnrolled  []string          `bson:"studentsEnrolled" json:"studentsEnrolled"`
	StudentsCompleted []CompletionEntry `bson:"studentsCompleted" json:"studentsCompleted"`
	AIMarkingComplete []string          `bson:"aiMarkingComplete" json:"aiMarkingComplete"`
}

// HasCompleted reports whether the student already has a completion entry.
func (e *Exam) HasCompleted(studentID string) bool {
	for _, c := range e.StudentsCompleted {
		if c.StudentID == studentID {
			return true
		}
	}
	return false
}

// AIMarkingDone reports whether AI-assisted marking has already run for
// the student.
func (e *Exam) AIMarkingDone(studentID string) bool {
	for _, id := range e.AIMarkingComplete {
		if id == studentID {
			return true
		}
	}
	return false
}
