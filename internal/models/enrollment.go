package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Schedule is the per-section scheduling blob embedded in an enrollment
// row. It has no identity of its own and is stored serialized as JSON.
type Schedule struct {
	Day       string `json:"day"`
	DayIdx    int    `json:"dayIdx"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Room      string `json:"room"`
	Color     string `json:"color"`
	Duration  int    `json:"duration"`
	Professor string `json:"professor"`
}

func (s Schedule) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *Schedule) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into Schedule", src)
	}
}

// EnrolledSubject is one entry of a save request: an external subject
// code with its schedule fields as siblings in the JSON payload.
type EnrolledSubject struct {
	Code string `json:"codigo" validate:"required"`
	Schedule
}

type SaveEnrollmentRequest struct {
	StudentCode      string            `json:"studentCode" validate:"required"`
	Period           string            `json:"period"`
	EnrolledSubjects []EnrolledSubject `json:"enrolledSubjects" validate:"dive"`
}

func (r *SaveEnrollmentRequest) Validate() error {
	return validator.New().Struct(r)
}
