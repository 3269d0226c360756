package models

import "github.com/go-playground/validator/v10"

const (
	SubmissionPending   = "pending"
	SubmissionSubmitted = "submitted"
)

type ClassMaterial struct {
	ID        int64  `db:"id" json:"id"`
	SubjectID int64  `db:"subject_id" json:"subject_id"`
	Title     string `db:"title" json:"title"`
	FileURL   string `db:"file_url" json:"file_url"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
}

type Evaluation struct {
	ID        int64  `db:"id" json:"id"`
	SubjectID int64  `db:"subject_id" json:"subject_id"`
	Title     string `db:"title" json:"title"`
	DueDate   int64  `db:"due_date" json:"due_date"`
	MaxScore  int    `db:"max_score" json:"max_score"`
}

type SubmitRequest struct {
	EvaluationID int64  `json:"evaluationId" validate:"required"`
	StudentCode  string `json:"studentCode" validate:"required"`
	FileURL      string `json:"fileUrl"`
}

func (r *SubmitRequest) Validate() error {
	return validator.New().Struct(r)
}
