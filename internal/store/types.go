package store

import "github.com/miumc/portal/internal/models"

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

// EnrollmentRow joins a subject with the schedule blob of one
// enrollment. Handlers flatten the two into a single JSON object.
type EnrollmentRow struct {
	models.Subject
	ScheduleData models.Schedule `db:"schedule_data"`
}

// EvaluationStatusRow is an evaluation left-joined with one student's
// submission. Status falls back to pending when no submission exists.
type EvaluationStatusRow struct {
	models.Evaluation
	Status string   `db:"status" json:"status"`
	Score  *float64 `db:"score" json:"score"`
}

type ClassmateRow struct {
	StudentCode string `db:"student_code" json:"student_code"`
	FullName    string `db:"full_name" json:"full_name"`
}
