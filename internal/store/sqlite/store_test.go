// internal/store/sqlite/store_test.go
package sqlite

import (
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miumc/portal/internal/models"
	"github.com/miumc/portal/internal/store"
)

// setupTestDB creates an in-memory SQLite database and initializes schema
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err, "Failed to create store")

	err = s.ApplyMigrations("../../../migrations")
	require.NoError(t, err, "Failed to apply migrations")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

func setupTestData(t *testing.T) (*SQLiteStore, func()) {
	s, cleanup := setupTestDB(t)

	_, err := s.DB.Exec(`
		INSERT INTO careers (id, name) VALUES
		(1, 'Ingeniería de Sistemas'),
		(2, 'Administración')`)
	require.NoError(t, err, "Failed to insert careers")

	_, err = s.DB.Exec(`
		INSERT INTO specializations (id, name, career_id) VALUES
		(5, 'Desarrollo de Software', 1),
		(6, 'Redes', 1),
		(7, 'Finanzas', 2)`)
	require.NoError(t, err, "Failed to insert specializations")

	_, err = s.DB.Exec(`
		INSERT INTO subjects (id, code, name, semester, specialization_id) VALUES
		(1, 'MAT101', 'Matemática I', 1, NULL),
		(2, 'FIS201', 'Física II', 3, 5),
		(3, 'QUI301', 'Química General', 2, 6)`)
	require.NoError(t, err, "Failed to insert subjects")

	_, err = s.DB.Exec(`
		INSERT INTO users (id, student_code, email, password_hash, full_name, role, career_id, specialization_id) VALUES
		(1, 'C-001', 'ana@miumc.edu', 'secreto', 'Ana Torres', 'cadete', 1, 5),
		(2, 'C-002', 'luis@miumc.edu', 'clave', 'Luis Rojas', 'cadete', NULL, NULL)`)
	require.NoError(t, err, "Failed to insert users")

	return s, cleanup
}

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func TestCatalogQueries(t *testing.T) {
	s, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("careers ordered by id", func(t *testing.T) {
		careers, err := s.ListCareers()
		require.NoError(t, err)
		require.Len(t, careers, 2)
		assert.Equal(t, "Ingeniería de Sistemas", careers[0].Name)
		assert.Equal(t, "Administración", careers[1].Name)
	})

	t.Run("specializations filtered by career", func(t *testing.T) {
		specs, err := s.ListSpecializations(1)
		require.NoError(t, err)
		assert.Len(t, specs, 2)

		specs, err = s.ListSpecializations(99)
		require.NoError(t, err)
		assert.Empty(t, specs)
	})

	t.Run("common subjects visible everywhere", func(t *testing.T) {
		subjects, err := s.ListSubjects(5)
		require.NoError(t, err)
		require.Len(t, subjects, 2)
		assert.Equal(t, "MAT101", subjects[0].Code)
		assert.Equal(t, "FIS201", subjects[1].Code)

		subjects, err = s.ListSubjects(6)
		require.NoError(t, err)
		require.Len(t, subjects, 2)
		assert.Equal(t, "MAT101", subjects[0].Code)
		assert.Equal(t, "QUI301", subjects[1].Code)

		subjects, err = s.ListSubjects(7)
		require.NoError(t, err)
		require.Len(t, subjects, 1)
		assert.Equal(t, "MAT101", subjects[0].Code)
	})

	t.Run("no approved subjects yields empty list", func(t *testing.T) {
		codes, err := s.ListApprovedSubjectCodes("C-001")
		require.NoError(t, err)
		assert.Empty(t, codes)
	})
}

func TestReplaceEnrollments(t *testing.T) {
	s, cleanup := setupTestData(t)
	defer cleanup()

	const period = "2026-I"

	first := []models.EnrolledSubject{
		{Code: "MAT101", Schedule: models.Schedule{Day: "Lunes", DayIdx: 0, StartTime: "07:00", EndTime: "09:00", Room: "A-101", Professor: "Dr. Peña"}},
		{Code: "FIS201", Schedule: models.Schedule{Day: "Martes", DayIdx: 1, StartTime: "09:00", EndTime: "11:00", Room: "B-202"}},
	}

	t.Run("initial save", func(t *testing.T) {
		err := s.ReplaceEnrollments("C-001", period, first)
		require.NoError(t, err)

		rows, err := s.ListEnrollments("C-001", period)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Lunes", rows[0].ScheduleData.Day)
		assert.Equal(t, "Dr. Peña", rows[0].ScheduleData.Professor)
	})

	t.Run("second save replaces the set completely", func(t *testing.T) {
		second := []models.EnrolledSubject{
			{Code: "QUI301", Schedule: models.Schedule{Day: "Viernes", DayIdx: 4, StartTime: "14:00", EndTime: "16:00"}},
		}
		err := s.ReplaceEnrollments("C-001", period, second)
		require.NoError(t, err)

		rows, err := s.ListEnrollments("C-001", period)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "QUI301", rows[0].Code)
	})

	t.Run("unknown subject code is skipped silently", func(t *testing.T) {
		err := s.ReplaceEnrollments("C-001", period, []models.EnrolledSubject{
			{Code: "MAT101", Schedule: models.Schedule{Day: "Lunes"}},
			{Code: "NOPE999", Schedule: models.Schedule{Day: "Sábado"}},
		})
		require.NoError(t, err)

		rows, err := s.ListEnrollments("C-001", period)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "MAT101", rows[0].Code)
	})

	t.Run("failed save leaves the prior set untouched", func(t *testing.T) {
		// A duplicated code violates the primary key mid-transaction,
		// after the delete already ran.
		err := s.ReplaceEnrollments("C-001", period, []models.EnrolledSubject{
			{Code: "FIS201", Schedule: models.Schedule{Day: "Martes"}},
			{Code: "FIS201", Schedule: models.Schedule{Day: "Jueves"}},
		})
		require.Error(t, err)

		rows, err := s.ListEnrollments("C-001", period)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "MAT101", rows[0].Code)
	})

	t.Run("empty list clears the enrollment", func(t *testing.T) {
		err := s.ReplaceEnrollments("C-001", period, nil)
		require.NoError(t, err)

		rows, err := s.ListEnrollments("C-001", period)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("unknown student performs no writes", func(t *testing.T) {
		err := s.ReplaceEnrollments("C-404", period, first)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("periods are independent", func(t *testing.T) {
		require.NoError(t, s.ReplaceEnrollments("C-001", "2025-II", first))
		require.NoError(t, s.ReplaceEnrollments("C-001", period, first[:1]))

		rows, err := s.ListEnrollments("C-001", "2025-II")
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})
}

func TestAccountOperations(t *testing.T) {
	s, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("account joined with career and mencion names", func(t *testing.T) {
		account, err := s.GetAccountByStudentCode("C-001")
		require.NoError(t, err)
		require.NotNil(t, account.CareerName)
		require.NotNil(t, account.MencionName)
		assert.Equal(t, "Ingeniería de Sistemas", *account.CareerName)
		assert.Equal(t, "Desarrollo de Software", *account.MencionName)
		assert.Equal(t, "secreto", account.PasswordHash)
	})

	t.Run("account without associations has null names", func(t *testing.T) {
		account, err := s.GetAccountByStudentCode("C-002")
		require.NoError(t, err)
		assert.Nil(t, account.CareerName)
		assert.Nil(t, account.MencionName)
	})

	t.Run("unknown student code", func(t *testing.T) {
		_, err := s.GetAccountByStudentCode("C-404")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("register new user", func(t *testing.T) {
		err := s.CreateUser("C-003", "eva@miumc.edu", "pass")
		require.NoError(t, err)

		account, err := s.GetAccountByStudentCode("C-003")
		require.NoError(t, err)
		assert.Equal(t, "cadete", account.Role)
		assert.Equal(t, "", account.FullName)
	})

	t.Run("duplicate student code conflicts and keeps the row", func(t *testing.T) {
		err := s.CreateUser("C-001", "other@miumc.edu", "otra")
		assert.ErrorIs(t, err, store.ErrConflict)

		account, err := s.GetAccountByStudentCode("C-001")
		require.NoError(t, err)
		assert.Equal(t, "ana@miumc.edu", account.Email)
	})
}

func TestCompleteOnboarding(t *testing.T) {
	s, cleanup := setupTestData(t)
	defer cleanup()

	req := models.OnboardingRequest{
		StudentCode:      "C-002",
		FullName:         "Luis Rojas Vega",
		Age:              21,
		BirthDate:        "2005-03-12",
		Phone:            "999888777",
		CareerID:         1,
		MencionID:        5,
		ApprovedSubjects: []string{"MAT101", "FIS201", "NOPE999"},
	}

	t.Run("profile updated and subjects granted", func(t *testing.T) {
		err := s.CompleteOnboarding(req)
		require.NoError(t, err)

		account, err := s.GetAccountByStudentCode("C-002")
		require.NoError(t, err)
		assert.Equal(t, "Luis Rojas Vega", account.FullName)
		require.NotNil(t, account.Phone)
		assert.Equal(t, "999888777", *account.Phone)

		codes, err := s.ListApprovedSubjectCodes("C-002")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"MAT101", "FIS201"}, codes)
	})

	t.Run("re-running onboarding does not duplicate records", func(t *testing.T) {
		err := s.CompleteOnboarding(req)
		require.NoError(t, err)

		codes, err := s.ListApprovedSubjectCodes("C-002")
		require.NoError(t, err)
		assert.Len(t, codes, 2)
	})
}

func TestReplaceAcademicRecords(t *testing.T) {
	s, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("replace builds the new set", func(t *testing.T) {
		err := s.ReplaceAcademicRecords(1, []string{"MAT101", "QUI301"})
		require.NoError(t, err)

		codes, err := s.ListApprovedSubjectCodes("C-001")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"MAT101", "QUI301"}, codes)
	})

	t.Run("failed replace rolls back to the prior set", func(t *testing.T) {
		err := s.ReplaceAcademicRecords(1, []string{"FIS201", "FIS201"})
		require.Error(t, err)

		codes, err := s.ListApprovedSubjectCodes("C-001")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"MAT101", "QUI301"}, codes)
	})

	t.Run("empty list clears the record", func(t *testing.T) {
		err := s.ReplaceAcademicRecords(1, nil)
		require.NoError(t, err)

		codes, err := s.ListApprovedSubjectCodes("C-001")
		require.NoError(t, err)
		assert.Empty(t, codes)
	})
}

func TestAdminOperations(t *testing.T) {
	s, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("list users ordered by role then name", func(t *testing.T) {
		_, err := s.DB.Exec(`
			INSERT INTO users (id, student_code, email, password_hash, full_name, role) VALUES
			(3, 'A-001', 'admin@miumc.edu', 'root', 'Marta Díaz', 'admin')`)
		require.NoError(t, err)

		users, err := s.ListUsers()
		require.NoError(t, err)
		require.Len(t, users, 3)
		assert.Equal(t, "admin", users[0].Role)
		assert.Equal(t, "Ana Torres", users[1].FullName)
		assert.Equal(t, "Luis Rojas", users[2].FullName)
	})

	t.Run("update user fields", func(t *testing.T) {
		err := s.UpdateUser(2, models.AdminUserUpdate{
			FullName:         "Luis R.",
			Email:            "luis.r@miumc.edu",
			Phone:            "111222333",
			Role:             "cadete",
			CareerID:         2,
			SpecializationID: 7,
		})
		require.NoError(t, err)

		account, err := s.GetAccountByStudentCode("C-002")
		require.NoError(t, err)
		assert.Equal(t, "Luis R.", account.FullName)
		require.NotNil(t, account.CareerName)
		assert.Equal(t, "Administración", *account.CareerName)
	})

	t.Run("delete user cascades its rows", func(t *testing.T) {
		require.NoError(t, s.ReplaceEnrollments("C-002", "2026-I", []models.EnrolledSubject{
			{Code: "MAT101", Schedule: models.Schedule{Day: "Lunes"}},
		}))

		err := s.DeleteUser(2)
		require.NoError(t, err)

		_, err = s.GetAccountByStudentCode("C-002")
		assert.ErrorIs(t, err, store.ErrNotFound)

		rows, err := s.ListEnrollments("C-002", "2026-I")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestClassroomOperations(t *testing.T) {
	s, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("probe reports unprovisioned tables", func(t *testing.T) {
		available, err := s.HasClassroomTables()
		require.NoError(t, err)
		assert.False(t, available)
	})

	err := s.ApplyMigrations("../../../migrations/classroom")
	require.NoError(t, err, "Failed to apply classroom migrations")

	t.Run("probe reports provisioned tables", func(t *testing.T) {
		available, err := s.HasClassroomTables()
		require.NoError(t, err)
		assert.True(t, available)
	})

	_, err = s.DB.Exec(`
		INSERT INTO evaluations (id, subject_id, title, due_date, max_score) VALUES
		(1, 1, 'Parcial I', 1767225600, 20),
		(2, 1, 'Parcial II', 1772496000, 20)`)
	require.NoError(t, err)

	_, err = s.DB.Exec(`
		INSERT INTO class_materials (subject_id, title, file_url, created_at) VALUES
		(1, 'Sílabo', 'https://files.miumc.edu/silabo.pdf', 100),
		(1, 'Semana 1', 'https://files.miumc.edu/s1.pdf', 200)`)
	require.NoError(t, err)

	t.Run("materials newest first", func(t *testing.T) {
		materials, err := s.ListMaterials(1)
		require.NoError(t, err)
		require.Len(t, materials, 2)
		assert.Equal(t, "Semana 1", materials[0].Title)
	})

	t.Run("evaluations default to pending", func(t *testing.T) {
		rows, err := s.ListEvaluationStatuses(1, 1)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "pending", rows[0].Status)
		assert.Nil(t, rows[0].Score)
	})

	t.Run("submission upsert is idempotent on resubmit", func(t *testing.T) {
		err := s.UpsertSubmission(1, 1, "https://files.miumc.edu/entrega-v1.pdf")
		require.NoError(t, err)
		err = s.UpsertSubmission(1, 1, "https://files.miumc.edu/entrega-v2.pdf")
		require.NoError(t, err)

		rows, err := s.ListEvaluationStatuses(1, 1)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "submitted", rows[0].Status)
		assert.Equal(t, "pending", rows[1].Status)
	})

	t.Run("classmates exclude the requesting student", func(t *testing.T) {
		require.NoError(t, s.ReplaceEnrollments("C-001", "2026-I", []models.EnrolledSubject{
			{Code: "MAT101", Schedule: models.Schedule{Day: "Lunes"}},
		}))
		require.NoError(t, s.ReplaceEnrollments("C-002", "2026-I", []models.EnrolledSubject{
			{Code: "MAT101", Schedule: models.Schedule{Day: "Lunes"}},
		}))

		mates, err := s.ListClassmates(1, "2026-I", "C-001")
		require.NoError(t, err)
		require.Len(t, mates, 1)
		assert.Equal(t, "C-002", mates[0].StudentCode)
	})
}
