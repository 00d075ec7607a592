package models

import "time"

// GradeType tags the kind of assessment a grade row records.
type GradeType string

const (
	GradeTypeQuiz    GradeType = "Quiz"
	GradeTypeExam    GradeType = "Exam"
	GradeTypeProject GradeType = "Project"
	GradeTypeFinal   GradeType = "Final"
	// GradeTypeRegistered is reserved: a row with this type and value 0
	// represents an enrollment, not an assessment result.
	GradeTypeRegistered GradeType = "Registered"
)

// Valid reports whether the type tag belongs to the closed set.
func (t GradeType) Valid() bool {
	switch t {
	case GradeTypeQuiz, GradeTypeExam, GradeTypeProject, GradeTypeFinal, GradeTypeRegistered:
		return true
	}
	return false
}

// Grade is a student's mark for one assessment in a subject. StudentID and
// SubjectID are immutable after creation; only value, date and type change.
type Grade struct {
	ID           int64     `db:"grade_id" json:"id"`
	StudentID    int64     `db:"student_id" json:"student_id"`
	SubjectID    int64     `db:"subject_id" json:"subject_id"`
	Value        float64   `db:"grade_value" json:"value"`
	DateRecorded time.Time `db:"date_recorded" json:"date_recorded"`
	Type         GradeType `db:"type" json:"type"`
	SubjectName  string    `db:"subject_name" json:"subject_name,omitempty"`
}

// IsEnrollment reports whether the row is an enrollment sentinel.
func (g *Grade) IsEnrollment() bool {
	return g.Type == GradeTypeRegistered
}

// TeacherGradeRow enriches a grade with the student's display name for
// teacher-scoped listings.
type TeacherGradeRow struct {
	Grade
	StudentName string `db:"student_name" json:"student_name"`
}
