package models

// Subject represents an academic subject owned by a teacher.
type Subject struct {
	ID        int64  `db:"subject_id" json:"id"`
	Name      string `db:"subject_name" json:"name"`
	TeacherID int64  `db:"teacher_id" json:"teacher_id"`
}
