package models

type Career struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Specialization struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	CareerID int64  `db:"career_id" json:"career_id"`
}

// Subject is catalog reference data. A NULL specialization_id marks a
// subject that is common to every specialization of its career.
type Subject struct {
	ID               int64  `db:"id" json:"id"`
	Code             string `db:"code" json:"code"`
	Name             string `db:"name" json:"name"`
	Semester         int    `db:"semester" json:"semester"`
	SpecializationID *int64 `db:"specialization_id" json:"specialization_id"`
}
