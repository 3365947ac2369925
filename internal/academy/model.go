package academy

import "time"

// Class is a training group taught by one teacher.
type Class struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
	TeacherID int64     `json:"teacher_id"`
	Capacity  int       `json:"capacity"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Enrollment links a student to a class. It is created inactive, activated
// by confirmation and deactivated by cancellation.
type Enrollment struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"student_id"`
	ClassID   int64     `json:"class_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Attendance is one presence record taken by a teacher.
type Attendance struct {
	ID        int64     `json:"id"`
	ClassID   int64     `json:"class_id"`
	StudentID int64     `json:"student_id"`
	TeacherID int64     `json:"teacher_id"`
	Present   bool      `json:"present"`
	TakenOn   time.Time `json:"taken_on"`
}
