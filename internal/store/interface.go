package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/miumc/portal/internal/models"
)

type PortalStore interface {
	Close() error
	ApplyMigrations(dir string) error
	HasClassroomTables() (bool, error)

	ListCareers() ([]models.Career, error)
	ListSpecializations(careerID int64) ([]models.Specialization, error)
	ListSubjects(specializationID int64) ([]models.Subject, error)
	ListApprovedSubjectCodes(studentCode string) ([]string, error)

	GetUserIDByStudentCode(studentCode string) (int64, error)
	GetAccountByStudentCode(studentCode string) (*models.Account, error)
	CreateUser(studentCode, email, password string) error
	CompleteOnboarding(req models.OnboardingRequest) error

	ListEnrollments(studentCode, period string) ([]EnrollmentRow, error)
	ReplaceEnrollments(studentCode, period string, subjects []models.EnrolledSubject) error

	ListUsers() ([]models.Account, error)
	UpdateUser(id int64, upd models.AdminUserUpdate) error
	DeleteUser(id int64) error
	ReplaceAcademicRecords(userID int64, codes []string) error

	ListClassmates(subjectID int64, period, excludeStudentCode string) ([]ClassmateRow, error)
	ListMaterials(subjectID int64) ([]models.ClassMaterial, error)
	ListEvaluationStatuses(subjectID, userID int64) ([]EvaluationStatusRow, error)
	UpsertSubmission(evaluationID, userID int64, fileURL string) error
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
	// IsConflict reports whether err is a unique-constraint violation
	// in the backing database's dialect.
	IsConflict func(error) bool
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		logger.Info.Printf("Applying migration: %s", file.Name())
		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) ListCareers() ([]models.Career, error) {
	var careers []models.Career
	err := s.DB.Select(&careers, `
		SELECT id, name
		FROM careers
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list careers: %w", err)
	}
	return careers, nil
}

func (s *BaseStore) ListSpecializations(careerID int64) ([]models.Specialization, error) {
	var specs []models.Specialization
	query := s.Converter(`
		SELECT id, name, career_id
		FROM specializations
		WHERE career_id = ?
		ORDER BY id ASC
	`)

	err := s.DB.Select(&specs, query, careerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list specializations: %w", err)
	}
	return specs, nil
}

// ListSubjects returns subjects visible to a specialization: those
// bound to it plus the ones common to the whole career.
func (s *BaseStore) ListSubjects(specializationID int64) ([]models.Subject, error) {
	var subjects []models.Subject
	query := s.Converter(`
		SELECT id, code, name, semester, specialization_id
		FROM subjects
		WHERE specialization_id IS NULL OR specialization_id = ?
		ORDER BY semester ASC
	`)

	err := s.DB.Select(&subjects, query, specializationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

func (s *BaseStore) ListApprovedSubjectCodes(studentCode string) ([]string, error) {
	var codes []string
	query := s.Converter(`
		SELECT s.code
		FROM academic_records ar
		JOIN users u ON ar.user_id = u.id
		JOIN subjects s ON ar.subject_id = s.id
		WHERE u.student_code = ?
		AND ar.status = 'aprobada'
	`)

	err := s.DB.Select(&codes, query, studentCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved subjects: %w", err)
	}
	return codes, nil
}

func (s *BaseStore) GetUserIDByStudentCode(studentCode string) (int64, error) {
	var id int64
	query := s.Converter(`SELECT id FROM users WHERE student_code = ?`)

	err := s.DB.Get(&id, query, studentCode)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("student %s: %w", studentCode, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve student code: %w", err)
	}
	return id, nil
}

func (s *BaseStore) GetAccountByStudentCode(studentCode string) (*models.Account, error) {
	var account models.Account
	query := s.Converter(`
		SELECT
			u.id, u.student_code, u.email, u.password_hash, u.full_name,
			u.role, u.age, u.birth_date, u.phone, u.career_id, u.specialization_id,
			c.name AS career_name,
			sp.name AS mencion_name
		FROM users u
		LEFT JOIN careers c ON u.career_id = c.id
		LEFT JOIN specializations sp ON u.specialization_id = sp.id
		WHERE u.student_code = ?
	`)

	err := s.DB.Get(&account, query, studentCode)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("student %s: %w", studentCode, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (s *BaseStore) CreateUser(studentCode, email, password string) error {
	query := s.Converter(`
		INSERT INTO users (student_code, email, password_hash, full_name, role)
		VALUES (?, ?, ?, '', 'cadete')
	`)

	if _, err := s.DB.Exec(query, studentCode, email, password); err != nil {
		if s.IsConflict != nil && s.IsConflict(err) {
			return fmt.Errorf("student %s: %w", studentCode, ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// CompleteOnboarding updates the profile and grants the previously
// approved subjects. The grant is duplicate-safe so re-running
// onboarding never errors on records that already exist.
func (s *BaseStore) CompleteOnboarding(req models.OnboardingRequest) error {
	query := s.Converter(`
		UPDATE users
		SET full_name = ?, age = ?, birth_date = ?, phone = ?, career_id = ?, specialization_id = ?
		WHERE student_code = ?
	`)

	_, err := s.DB.Exec(query,
		req.FullName,
		req.Age,
		req.BirthDate,
		req.Phone,
		req.CareerID,
		req.MencionID,
		req.StudentCode,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if len(req.ApprovedSubjects) == 0 {
		return nil
	}

	userID, err := s.GetUserIDByStudentCode(req.StudentCode)
	if err != nil {
		return err
	}

	ids, err := s.resolveSubjectIDs(s.DB, req.ApprovedSubjects)
	if err != nil {
		return err
	}

	insert := s.Converter(`
		INSERT INTO academic_records (user_id, subject_id, status)
		VALUES (?, ?, 'aprobada')
		ON CONFLICT (user_id, subject_id) DO NOTHING
	`)
	for _, id := range ids {
		if _, err := s.DB.Exec(insert, userID, id); err != nil {
			return fmt.Errorf("failed to grant approved subject: %w", err)
		}
	}
	return nil
}

func (s *BaseStore) ListEnrollments(studentCode, period string) ([]EnrollmentRow, error) {
	var rows []EnrollmentRow
	query := s.Converter(`
		SELECT s.id, s.code, s.name, s.semester, s.specialization_id, e.schedule_data
		FROM enrollments e
		JOIN users u ON e.user_id = u.id
		JOIN subjects s ON e.subject_id = s.id
		WHERE u.student_code = ?
		AND e.period = ?
	`)

	err := s.DB.Select(&rows, query, studentCode, period)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return rows, nil
}

// ReplaceEnrollments atomically swaps the enrollment set of one
// (student, period): the prior rows are deleted and the submitted ones
// inserted inside a single transaction, so a failure anywhere leaves
// the prior set untouched. Submitted codes with no catalog subject are
// skipped silently.
func (s *BaseStore) ReplaceEnrollments(studentCode, period string, subjects []models.EnrolledSubject) error {
	userID, err := s.GetUserIDByStudentCode(studentCode)
	if err != nil {
		return err
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	del := s.Converter(`DELETE FROM enrollments WHERE user_id = ? AND period = ?`)
	if _, err := tx.Exec(del, userID, period); err != nil {
		return fmt.Errorf("failed to clear prior enrollment: %w", err)
	}

	if len(subjects) > 0 {
		codes := make([]string, len(subjects))
		for i, sub := range subjects {
			codes[i] = sub.Code
		}

		idByCode, err := s.resolveSubjectCodes(tx, codes)
		if err != nil {
			return err
		}

		insert := s.Converter(`
			INSERT INTO enrollments (user_id, subject_id, period, schedule_data)
			VALUES (?, ?, ?, ?)
		`)
		for _, sub := range subjects {
			subjectID, ok := idByCode[sub.Code]
			if !ok {
				logger.Debug.Printf("Skipping unknown subject code %s for student %s", sub.Code, studentCode)
				continue
			}
			if _, err := tx.Exec(insert, userID, subjectID, period, sub.Schedule); err != nil {
				return fmt.Errorf("failed to insert enrollment for %s: %w", sub.Code, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit enrollment: %w", err)
	}
	return nil
}

func (s *BaseStore) ListUsers() ([]models.Account, error) {
	var users []models.Account
	err := s.DB.Select(&users, `
		SELECT
			u.id, u.student_code, u.email, u.password_hash, u.full_name,
			u.role, u.age, u.birth_date, u.phone, u.career_id, u.specialization_id,
			c.name AS career_name,
			sp.name AS mencion_name
		FROM users u
		LEFT JOIN careers c ON u.career_id = c.id
		LEFT JOIN specializations sp ON u.specialization_id = sp.id
		ORDER BY u.role ASC, u.full_name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *BaseStore) UpdateUser(id int64, upd models.AdminUserUpdate) error {
	query := s.Converter(`
		UPDATE users
		SET full_name = ?, email = ?, phone = ?, role = ?, career_id = ?, specialization_id = ?
		WHERE id = ?
	`)

	_, err := s.DB.Exec(query,
		upd.FullName,
		upd.Email,
		upd.Phone,
		upd.Role,
		upd.CareerID,
		upd.SpecializationID,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update user %d: %w", id, err)
	}
	return nil
}

func (s *BaseStore) DeleteUser(id int64) error {
	query := s.Converter(`DELETE FROM users WHERE id = ?`)
	if _, err := s.DB.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return nil
}

// ReplaceAcademicRecords is the same transactional replace pattern as
// ReplaceEnrollments, keyed by internal user id: delete every record
// of the user, then insert one approved record per resolved code.
func (s *BaseStore) ReplaceAcademicRecords(userID int64, codes []string) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	del := s.Converter(`DELETE FROM academic_records WHERE user_id = ?`)
	if _, err := tx.Exec(del, userID); err != nil {
		return fmt.Errorf("failed to clear academic records: %w", err)
	}

	if len(codes) > 0 {
		idByCode, err := s.resolveSubjectCodes(tx, codes)
		if err != nil {
			return err
		}

		insert := s.Converter(`
			INSERT INTO academic_records (user_id, subject_id, status)
			VALUES (?, ?, 'aprobada')
		`)
		for _, code := range codes {
			subjectID, ok := idByCode[code]
			if !ok {
				logger.Debug.Printf("Skipping unknown subject code %s for user %d", code, userID)
				continue
			}
			if _, err := tx.Exec(insert, userID, subjectID); err != nil {
				return fmt.Errorf("failed to insert academic record for %s: %w", code, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit academic records: %w", err)
	}
	return nil
}

func (s *BaseStore) ListClassmates(subjectID int64, period, excludeStudentCode string) ([]ClassmateRow, error) {
	var mates []ClassmateRow
	query := s.Converter(`
		SELECT u.student_code, u.full_name
		FROM enrollments e
		JOIN users u ON e.user_id = u.id
		WHERE e.subject_id = ?
		AND e.period = ?
		AND u.student_code <> ?
		ORDER BY u.full_name ASC
	`)

	err := s.DB.Select(&mates, query, subjectID, period, excludeStudentCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list classmates: %w", err)
	}
	return mates, nil
}

func (s *BaseStore) ListMaterials(subjectID int64) ([]models.ClassMaterial, error) {
	var materials []models.ClassMaterial
	query := s.Converter(`
		SELECT id, subject_id, title, file_url, created_at
		FROM class_materials
		WHERE subject_id = ?
		ORDER BY created_at DESC
	`)

	err := s.DB.Select(&materials, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	return materials, nil
}

func (s *BaseStore) ListEvaluationStatuses(subjectID, userID int64) ([]EvaluationStatusRow, error) {
	var rows []EvaluationStatusRow
	query := s.Converter(`
		SELECT
			ev.id, ev.subject_id, ev.title, ev.due_date, ev.max_score,
			COALESCE(ss.status, 'pending') AS status,
			ss.score
		FROM evaluations ev
		LEFT JOIN student_submissions ss
			ON ss.evaluation_id = ev.id
			AND ss.user_id = ?
		WHERE ev.subject_id = ?
		ORDER BY ev.due_date ASC
	`)

	err := s.DB.Select(&rows, query, userID, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	return rows, nil
}

func (s *BaseStore) UpsertSubmission(evaluationID, userID int64, fileURL string) error {
	query := s.Converter(`
		INSERT INTO student_submissions (evaluation_id, user_id, status, file_url, submitted_at)
		VALUES (?, ?, 'submitted', ?, ?)
		ON CONFLICT (evaluation_id, user_id) DO UPDATE SET
		status = 'submitted',
		file_url = excluded.file_url,
		submitted_at = excluded.submitted_at
	`)

	if _, err := s.DB.Exec(query, evaluationID, userID, fileURL, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to upsert submission: %w", err)
	}
	return nil
}

// resolveSubjectCodes maps external subject codes to internal ids in
// one batched lookup. Codes absent from the catalog are simply missing
// from the result map.
func (s *BaseStore) resolveSubjectCodes(q sqlx.Ext, codes []string) (map[string]int64, error) {
	query, args, err := sqlx.In(`SELECT id, code FROM subjects WHERE code IN (?)`, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to build subject lookup: %w", err)
	}

	var rows []struct {
		ID   int64  `db:"id"`
		Code string `db:"code"`
	}
	if err := sqlx.Select(q, &rows, s.Converter(query), args...); err != nil {
		return nil, fmt.Errorf("failed to resolve subject codes: %w", err)
	}

	idByCode := make(map[string]int64, len(rows))
	for _, row := range rows {
		idByCode[row.Code] = row.ID
	}
	return idByCode, nil
}

func (s *BaseStore) resolveSubjectIDs(q sqlx.Ext, codes []string) ([]int64, error) {
	idByCode, err := s.resolveSubjectCodes(q, codes)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(idByCode))
	for _, id := range idByCode {
		ids = append(ids, id)
	}
	return ids, nil
}
