package models

import (
	"github.com/go-playground/validator/v10"
)

const (
	RoleCadete = "cadete"
	RoleAdmin  = "admin"
)

type User struct {
	ID               int64   `db:"id" json:"id"`
	StudentCode      string  `db:"student_code" json:"student_code"`
	Email            string  `db:"email" json:"email"`
	PasswordHash     string  `db:"password_hash" json:"-"`
	FullName         string  `db:"full_name" json:"full_name"`
	Role             string  `db:"role" json:"role"`
	Age              *int    `db:"age" json:"age"`
	BirthDate        *string `db:"birth_date" json:"birth_date"`
	Phone            *string `db:"phone" json:"phone"`
	CareerID         *int64  `db:"career_id" json:"career_id"`
	SpecializationID *int64  `db:"specialization_id" json:"specialization_id"`
}

// Account is a User joined with display names of its career and
// specialization. The names are NULL when the association is unset.
type Account struct {
	User
	CareerName  *string `db:"career_name" json:"career_name"`
	MencionName *string `db:"mencion_name" json:"mencion_name"`
}

type LoginRequest struct {
	StudentCode string `json:"studentCode" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	StudentCode string `json:"studentCode" validate:"required,max=16"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
}

// OnboardingRequest carries the profile fields a student fills in after
// first login plus the subject codes they already passed elsewhere.
type OnboardingRequest struct {
	StudentCode      string   `json:"studentCode" validate:"required"`
	FullName         string   `json:"fullName" validate:"required"`
	Age              int      `json:"age"`
	BirthDate        string   `json:"birthDate"`
	Phone            string   `json:"phone"`
	CareerID         int64    `json:"careerId"`
	MencionID        int64    `json:"mencionId"`
	ApprovedSubjects []string `json:"approvedSubjects"`
}

type AdminUserUpdate struct {
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Role             string `json:"role"`
	CareerID         int64  `json:"career_id"`
	SpecializationID int64  `json:"specialization_id"`
}

func (r *LoginRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *RegisterRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *OnboardingRequest) Validate() error {
	return validator.New().Struct(r)
}
