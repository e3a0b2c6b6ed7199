package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saransh482003/healthassist/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func hospitalColumns() []string {
	return []string{"id", "name", "place_id", "address", "latitude", "longitude", "website", "phone", "rating", "num_rating", "type", "created_at"}
}

func TestPostgres_GetHospitalByPlaceID_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM hospitals WHERE place_id = \$1`).
		WithArgs("missing-place").
		WillReturnError(pgx.ErrNoRows)

	h, err := s.GetHospitalByPlaceID(context.Background(), "missing-place")
	require.NoError(t, err)
	assert.Nil(t, h)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpsertHospital_ReturnsStoredRow(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectExec(`INSERT INTO hospitals .+ ON CONFLICT \(place_id\) DO NOTHING`).
		WithArgs(pgxmock.AnyArg(), "Apollo", "place-1", "", 12.97, 77.59, "https://apollo.test", "", 4.5, 120, "hospital", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	// The fetch-back returns the previously stored row, not the input.
	mock.ExpectQuery(`SELECT .+ FROM hospitals WHERE place_id = \$1`).
		WithArgs("place-1").
		WillReturnRows(pgxmock.NewRows(hospitalColumns()).
			AddRow("existing-id", "Apollo Original", "place-1", "", 12.97, 77.59, "https://apollo.test", "", 4.5, 120, "hospital", now))

	h, err := s.UpsertHospital(context.Background(), model.Hospital{
		Name:      "Apollo",
		PlaceID:   "place-1",
		Latitude:  12.97,
		Longitude: 77.59,
		Website:   "https://apollo.test",
		Rating:    4.5,
		NumRating: 120,
		Type:      "hospital",
	})
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, "existing-id", h.ID)
	assert.Equal(t, "Apollo Original", h.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpsertHospital_MissingPlaceID(t *testing.T) {
	s, _ := newMockPostgresStore(t)
	_, err := s.UpsertHospital(context.Background(), model.Hospital{Name: "No ID"})
	assert.Error(t, err)
}

func TestPostgres_CreateDoctors_StagedCopySkipsDuplicates(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	// COPY lands in a staging table; the merge into doctors drops rows
	// that collide on (hospital_id, name) so repeat runs stay clean.
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE doctors_stage`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"doctors_stage"},
		[]string{"id", "name", "hospital_id", "specialization", "experience", "rating", "num_rating"}).
		WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO doctors SELECT \* FROM doctors_stage\s+ON CONFLICT \(hospital_id, name\) DO NOTHING`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	err := s.CreateDoctors(context.Background(), []model.Doctor{
		{Name: "Dr. A Rao", HospitalID: "h1", Specialization: "Cardiology"},
		{Name: "Dr. B Shah", HospitalID: "h1", Specialization: "Cardiology"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateDoctors_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	require.NoError(t, s.CreateDoctors(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SearchDoctors(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM doctors d JOIN hospitals h ON h.id = d.hospital_id`).
		WithArgs("%cardio%", 100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "hospital_id", "specialization", "experience", "rating", "num_rating", "name"}).
			AddRow("d1", "Dr. A Rao", "h1", "Cardiology", 12, 4.8, 200, "City Clinic"))

	got, err := s.SearchDoctors(context.Background(), DoctorFilter{Specialization: "cardio"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Dr. A Rao", got[0].Name)
	assert.Equal(t, "City Clinic", got[0].HospitalName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetUserByEmail_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("ghost@example.com").
		WillReturnError(pgx.ErrNoRows)

	u, err := s.GetUserByEmail(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateUser_UniqueViolationMapsToDuplicateEmail(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := s.CreateUser(context.Background(), model.User{
		UserName: "asha", PasswordHash: "h", Email: "asha@example.com",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateEmail))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpdateUser_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE users SET .+ WHERE id = \$7`).
		WithArgs("x", "", "", "", "", "", "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateUser(context.Background(), model.User{ID: "missing", UserName: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateReminder_KeepsInactiveFlag(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	// The is_active argument carries the caller's value through
	// unchanged; a paused reminder is inserted paused.
	mock.ExpectExec(`INSERT INTO reminders`).
		WithArgs(pgxmock.AnyArg(), "u1", "Atorvastatin", "", "21:00", "", "", "", false, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	r, err := s.CreateReminder(context.Background(), model.Reminder{
		UserID:       "u1",
		MedicineName: "Atorvastatin",
		TimeOfDay:    "21:00",
		IsActive:     false,
	})
	require.NoError(t, err)
	assert.False(t, r.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DeleteReminder_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM reminders WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := s.DeleteReminder(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_TopSymptoms(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	since := time.Now().UTC().Add(-24 * time.Hour)

	mock.ExpectQuery(`SELECT symptom_term, COUNT\(\*\) AS n FROM symptom_logs`).
		WithArgs(since, "560001", 5).
		WillReturnRows(pgxmock.NewRows([]string{"symptom_term", "n"}).
			AddRow("fever", 7).
			AddRow("cough", 3))

	got, err := s.TopSymptoms(context.Background(), "560001", since, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "fever", got[0].SymptomTerm)
	assert.Equal(t, 7, got[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
