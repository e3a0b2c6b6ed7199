package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/saransh482003/healthassist/internal/db"
	"github.com/saransh482003/healthassist/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hottest store operations.
var preparedStatements = map[string]string{
	"get_hospital_by_place": `SELECT id, name, place_id, address, latitude, longitude, website, phone, rating, num_rating, type, created_at FROM hospitals WHERE place_id = $1`,
	"get_pharmacy_by_place": `SELECT id, name, place_id, address, latitude, longitude, phone, website, rating, user_rating_count, opening_hours, business_status, created_at FROM pharmacies WHERE place_id = $1`,
	"get_user_by_email":     `SELECT id, user_name, password_hash, email, mobile_number, gender, dob, address, pincode, created_at FROM users WHERE email = $1`,
	"insert_symptom_log":    `INSERT INTO symptom_logs (id, symptom_term, pincode, logged_at) VALUES ($1, $2, $3, $4)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need
// direct query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS hospitals (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL,
	place_id   TEXT NOT NULL UNIQUE,
	address    TEXT NOT NULL DEFAULT '',
	latitude   DOUBLE PRECISION NOT NULL DEFAULT 0,
	longitude  DOUBLE PRECISION NOT NULL DEFAULT 0,
	website    TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	rating     DOUBLE PRECISION NOT NULL DEFAULT 0,
	num_rating INTEGER NOT NULL DEFAULT 0,
	type       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS pharmacies (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name              TEXT NOT NULL,
	place_id          TEXT NOT NULL UNIQUE,
	address           TEXT NOT NULL DEFAULT '',
	latitude          DOUBLE PRECISION NOT NULL DEFAULT 0,
	longitude         DOUBLE PRECISION NOT NULL DEFAULT 0,
	phone             TEXT NOT NULL DEFAULT '',
	website           TEXT NOT NULL DEFAULT '',
	rating            DOUBLE PRECISION NOT NULL DEFAULT 0,
	user_rating_count INTEGER NOT NULL DEFAULT 0,
	opening_hours     TEXT NOT NULL DEFAULT '',
	business_status   TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS doctors (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name           TEXT NOT NULL,
	hospital_id    TEXT NOT NULL REFERENCES hospitals(id),
	specialization TEXT NOT NULL,
	experience     INTEGER NOT NULL DEFAULT 0,
	rating         DOUBLE PRECISION NOT NULL DEFAULT 0,
	num_rating     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_name     TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	mobile_number TEXT NOT NULL DEFAULT '',
	gender        TEXT NOT NULL DEFAULT '',
	dob           TEXT NOT NULL DEFAULT '',
	address       TEXT NOT NULL DEFAULT '',
	pincode       TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reminders (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id           TEXT NOT NULL REFERENCES users(id),
	medicine_name     TEXT NOT NULL,
	dosage            TEXT NOT NULL DEFAULT '',
	time_of_day       TEXT NOT NULL,
	relation_to_meal  TEXT NOT NULL DEFAULT '',
	frequency         TEXT NOT NULL DEFAULT '',
	notification_type TEXT NOT NULL DEFAULT '',
	is_active         BOOLEAN NOT NULL DEFAULT true,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS medicine_logs (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	reminder_id TEXT NOT NULL REFERENCES reminders(id),
	status      TEXT NOT NULL DEFAULT 'taken',
	logged_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS emergency_contacts (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id        TEXT NOT NULL REFERENCES users(id),
	contact_name   TEXT NOT NULL,
	contact_number TEXT NOT NULL,
	relation       TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS yoga_videos (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	title            TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	video_url        TEXT NOT NULL,
	difficulty       TEXT NOT NULL DEFAULT '',
	duration_minutes INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS symptom_logs (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	symptom_term TEXT NOT NULL,
	pincode      TEXT NOT NULL DEFAULT '',
	logged_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_hospitals_place_id ON hospitals(place_id);
CREATE INDEX IF NOT EXISTS idx_pharmacies_place_id ON pharmacies(place_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_doctors_hospital_name ON doctors(hospital_id, name);
CREATE INDEX IF NOT EXISTS idx_doctors_specialization ON doctors(specialization);
CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
CREATE INDEX IF NOT EXISTS idx_reminders_user_id ON reminders(user_id);
CREATE INDEX IF NOT EXISTS idx_medicine_logs_reminder_id ON medicine_logs(reminder_id);
CREATE INDEX IF NOT EXISTS idx_medicine_logs_logged_at ON medicine_logs(logged_at);
CREATE INDEX IF NOT EXISTS idx_emergency_contacts_user_id ON emergency_contacts(user_id);
CREATE INDEX IF NOT EXISTS idx_symptom_logs_term ON symptom_logs(symptom_term);
CREATE INDEX IF NOT EXISTS idx_symptom_logs_logged_at ON symptom_logs(logged_at);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// UpsertHospital caches a hospital under its place ID. First-seen wins:
// a conflicting insert is a no-op and the stored row is returned.
func (s *PostgresStore) UpsertHospital(ctx context.Context, h model.Hospital) (*model.Hospital, error) {
	if h.PlaceID == "" {
		return nil, eris.New("postgres: hospital missing place_id")
	}
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO hospitals (id, name, place_id, address, latitude, longitude, website, phone, rating, num_rating, type, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (place_id) DO NOTHING`,
		h.ID, h.Name, h.PlaceID, h.Address, h.Latitude, h.Longitude,
		h.Website, h.Phone, h.Rating, h.NumRating, h.Type, h.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert hospital %s", h.PlaceID)
	}
	return s.GetHospitalByPlaceID(ctx, h.PlaceID)
}

func (s *PostgresStore) GetHospitalByPlaceID(ctx context.Context, placeID string) (*model.Hospital, error) {
	var h model.Hospital
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, place_id, address, latitude, longitude, website, phone, rating, num_rating, type, created_at
		 FROM hospitals WHERE place_id = $1`,
		placeID,
	).Scan(&h.ID, &h.Name, &h.PlaceID, &h.Address, &h.Latitude, &h.Longitude,
		&h.Website, &h.Phone, &h.Rating, &h.NumRating, &h.Type, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get hospital %s", placeID)
	}
	return &h, nil
}

// UpsertPharmacy caches a pharmacy under its place ID, first-seen wins.
func (s *PostgresStore) UpsertPharmacy(ctx context.Context, p model.Pharmacy) (*model.Pharmacy, error) {
	if p.PlaceID == "" {
		return nil, eris.New("postgres: pharmacy missing place_id")
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO pharmacies (id, name, place_id, address, latitude, longitude, phone, website, rating, user_rating_count, opening_hours, business_status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (place_id) DO NOTHING`,
		p.ID, p.Name, p.PlaceID, p.Address, p.Latitude, p.Longitude, p.Phone,
		p.Website, p.Rating, p.UserRatingCount, p.OpeningHours, p.BusinessStatus, p.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert pharmacy %s", p.PlaceID)
	}
	return s.GetPharmacyByPlaceID(ctx, p.PlaceID)
}

func (s *PostgresStore) GetPharmacyByPlaceID(ctx context.Context, placeID string) (*model.Pharmacy, error) {
	var p model.Pharmacy
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, place_id, address, latitude, longitude, phone, website, rating, user_rating_count, opening_hours, business_status, created_at
		 FROM pharmacies WHERE place_id = $1`,
		placeID,
	).Scan(&p.ID, &p.Name, &p.PlaceID, &p.Address, &p.Latitude, &p.Longitude,
		&p.Phone, &p.Website, &p.Rating, &p.UserRatingCount, &p.OpeningHours, &p.BusinessStatus, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get pharmacy %s", placeID)
	}
	return &p, nil
}

// CreateDoctors bulk-loads roster rows via COPY into a temp staging
// table, then folds them into doctors skipping rows whose
// (hospital_id, name) is already cached. COPY itself cannot skip
// conflicts, and repeat finder runs over a cached hospital re-submit
// the same roster.
func (s *PostgresStore) CreateDoctors(ctx context.Context, doctors []model.Doctor) error {
	if len(doctors) == 0 {
		return nil
	}

	columns := []string{"id", "name", "hospital_id", "specialization", "experience", "rating", "num_rating"}
	rows := make([][]any, 0, len(doctors))
	for _, d := range doctors {
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		rows = append(rows, []any{d.ID, d.Name, d.HospitalID, d.Specialization, d.Experience, d.Rating, d.NumRating})
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin doctors tx")
	}

	if _, err := tx.Exec(ctx,
		`CREATE TEMP TABLE doctors_stage (LIKE doctors INCLUDING DEFAULTS) ON COMMIT DROP`,
	); err != nil {
		_ = tx.Rollback(ctx)
		return eris.Wrap(err, "postgres: create doctors stage")
	}

	if _, err := db.CopyFrom(ctx, tx, "doctors_stage", columns, rows); err != nil {
		_ = tx.Rollback(ctx)
		return eris.Wrap(err, "postgres: copy doctors stage")
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO doctors SELECT * FROM doctors_stage
		 ON CONFLICT (hospital_id, name) DO NOTHING`,
	); err != nil {
		_ = tx.Rollback(ctx)
		return eris.Wrap(err, "postgres: merge doctors stage")
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit doctors")
}

func (s *PostgresStore) SearchDoctors(ctx context.Context, filter DoctorFilter) ([]model.Doctor, error) {
	query := `SELECT d.id, d.name, d.hospital_id, d.specialization, d.experience, d.rating, d.num_rating, h.name
	          FROM doctors d JOIN hospitals h ON h.id = d.hospital_id WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Name != "" {
		query += fmt.Sprintf(` AND d.name ILIKE $%d`, argIdx)
		args = append(args, "%"+filter.Name+"%")
		argIdx++
	}
	if filter.Specialization != "" {
		query += fmt.Sprintf(` AND d.specialization ILIKE $%d`, argIdx)
		args = append(args, "%"+filter.Specialization+"%")
		argIdx++
	}
	if filter.HospitalID != "" {
		query += fmt.Sprintf(` AND d.hospital_id = $%d`, argIdx)
		args = append(args, filter.HospitalID)
		argIdx++
	}
	query += ` ORDER BY d.rating DESC, d.name ASC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: search doctors")
	}
	defer rows.Close()

	var doctors []model.Doctor
	for rows.Next() {
		var d model.Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.HospitalID, &d.Specialization,
			&d.Experience, &d.Rating, &d.NumRating, &d.HospitalName); err != nil {
			return nil, eris.Wrap(err, "postgres: scan doctor")
		}
		doctors = append(doctors, d)
	}
	return doctors, eris.Wrap(rows.Err(), "postgres: search doctors iterate")
}

func (s *PostgresStore) CreateUser(ctx context.Context, u model.User) (*model.User, error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, user_name, password_hash, email, mobile_number, gender, dob, address, pincode, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID, u.UserName, u.PasswordHash, u.Email, u.MobileNumber,
		u.Gender, u.DOB, u.Address, u.Pincode, u.CreatedAt,
	)
	if err != nil {
		// 23505 is unique_violation; users.email carries the only
		// unique constraint reachable from this insert.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, eris.Wrapf(err, "postgres: insert user %s", u.Email)
	}
	return &u, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, user_name, password_hash, email, mobile_number, gender, dob, address, pincode, created_at
		 FROM users WHERE id = $1`, id))
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, user_name, password_hash, email, mobile_number, gender, dob, address, pincode, created_at
		 FROM users WHERE email = $1`, email))
}

// UpdateUser rewrites the mutable profile fields. Email and password
// hash are not touched here.
func (s *PostgresStore) UpdateUser(ctx context.Context, u model.User) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET user_name = $1, mobile_number = $2, gender = $3, dob = $4, address = $5, pincode = $6
		 WHERE id = $7`,
		u.UserName, u.MobileNumber, u.Gender, u.DOB, u.Address, u.Pincode, u.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update user %s", u.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("user not found: %s", u.ID)
	}
	return nil
}

func (s *PostgresStore) scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.UserName, &u.PasswordHash, &u.Email, &u.MobileNumber,
		&u.Gender, &u.DOB, &u.Address, &u.Pincode, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: scan user")
	}
	return &u, nil
}

func (s *PostgresStore) CreateReminder(ctx context.Context, r model.Reminder) (*model.Reminder, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO reminders (id, user_id, medicine_name, dosage, time_of_day, relation_to_meal, frequency, notification_type, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		r.ID, r.UserID, r.MedicineName, r.Dosage, r.TimeOfDay,
		r.RelationToMeal, r.Frequency, r.NotificationType, r.IsActive, r.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert reminder for user %s", r.UserID)
	}
	return &r, nil
}

func (s *PostgresStore) ListReminders(ctx context.Context, userID string) ([]model.Reminder, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, medicine_name, dosage, time_of_day, relation_to_meal, frequency, notification_type, is_active, created_at
		 FROM reminders WHERE user_id = $1 ORDER BY time_of_day ASC`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list reminders")
	}
	defer rows.Close()

	var reminders []model.Reminder
	for rows.Next() {
		var r model.Reminder
		if err := rows.Scan(&r.ID, &r.UserID, &r.MedicineName, &r.Dosage, &r.TimeOfDay,
			&r.RelationToMeal, &r.Frequency, &r.NotificationType, &r.IsActive, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan reminder")
		}
		reminders = append(reminders, r)
	}
	return reminders, eris.Wrap(rows.Err(), "postgres: list reminders iterate")
}

func (s *PostgresStore) UpdateReminder(ctx context.Context, r model.Reminder) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE reminders SET medicine_name = $1, dosage = $2, time_of_day = $3, relation_to_meal = $4, frequency = $5, notification_type = $6, is_active = $7
		 WHERE id = $8`,
		r.MedicineName, r.Dosage, r.TimeOfDay, r.RelationToMeal,
		r.Frequency, r.NotificationType, r.IsActive, r.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update reminder %s", r.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("reminder not found: %s", r.ID)
	}
	return nil
}

func (s *PostgresStore) DeleteReminder(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete reminder %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("reminder not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) CreateMedicineLog(ctx context.Context, l model.MedicineLog) (*model.MedicineLog, error) {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.LoggedAt.IsZero() {
		l.LoggedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO medicine_logs (id, reminder_id, status, logged_at) VALUES ($1, $2, $3, $4)`,
		l.ID, l.ReminderID, l.Status, l.LoggedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert medicine log for reminder %s", l.ReminderID)
	}
	return &l, nil
}

// ListMedicineLogs returns the user's intake events for the calendar
// day containing the given instant, in UTC.
func (s *PostgresStore) ListMedicineLogs(ctx context.Context, userID string, day time.Time) ([]model.MedicineLog, error) {
	start := day.UTC().Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)

	rows, err := s.pool.Query(ctx,
		`SELECT ml.id, ml.reminder_id, ml.status, ml.logged_at, r.medicine_name
		 FROM medicine_logs ml JOIN reminders r ON r.id = ml.reminder_id
		 WHERE r.user_id = $1 AND ml.logged_at >= $2 AND ml.logged_at < $3
		 ORDER BY ml.logged_at ASC`,
		userID, start, end,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list medicine logs")
	}
	defer rows.Close()

	var logs []model.MedicineLog
	for rows.Next() {
		var l model.MedicineLog
		if err := rows.Scan(&l.ID, &l.ReminderID, &l.Status, &l.LoggedAt, &l.MedicineName); err != nil {
			return nil, eris.Wrap(err, "postgres: scan medicine log")
		}
		logs = append(logs, l)
	}
	return logs, eris.Wrap(rows.Err(), "postgres: list medicine logs iterate")
}

func (s *PostgresStore) CreateEmergencyContact(ctx context.Context, c model.EmergencyContact) (*model.EmergencyContact, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO emergency_contacts (id, user_id, contact_name, contact_number, relation) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.UserID, c.Name, c.Number, c.Relation,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert emergency contact for user %s", c.UserID)
	}
	return &c, nil
}

func (s *PostgresStore) ListEmergencyContacts(ctx context.Context, userID string) ([]model.EmergencyContact, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, contact_name, contact_number, relation
		 FROM emergency_contacts WHERE user_id = $1 ORDER BY contact_name ASC`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list emergency contacts")
	}
	defer rows.Close()

	var contacts []model.EmergencyContact
	for rows.Next() {
		var c model.EmergencyContact
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Number, &c.Relation); err != nil {
			return nil, eris.Wrap(err, "postgres: scan emergency contact")
		}
		contacts = append(contacts, c)
	}
	return contacts, eris.Wrap(rows.Err(), "postgres: list emergency contacts iterate")
}

func (s *PostgresStore) DeleteEmergencyContact(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM emergency_contacts WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete emergency contact %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("emergency_contact not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) AddYogaVideo(ctx context.Context, v model.YogaVideo) (*model.YogaVideo, error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO yoga_videos (id, title, description, video_url, difficulty, duration_minutes) VALUES ($1, $2, $3, $4, $5, $6)`,
		v.ID, v.Title, v.Description, v.VideoURL, v.Difficulty, v.DurationMinutes,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert yoga video %s", v.Title)
	}
	return &v, nil
}

func (s *PostgresStore) ListYogaVideos(ctx context.Context, difficulty string) ([]model.YogaVideo, error) {
	query := `SELECT id, title, description, video_url, difficulty, duration_minutes FROM yoga_videos WHERE true`
	args := []any{}
	if difficulty != "" {
		query += ` AND difficulty = $1`
		args = append(args, difficulty)
	}
	query += ` ORDER BY title ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list yoga videos")
	}
	defer rows.Close()

	var videos []model.YogaVideo
	for rows.Next() {
		var v model.YogaVideo
		if err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.VideoURL, &v.Difficulty, &v.DurationMinutes); err != nil {
			return nil, eris.Wrap(err, "postgres: scan yoga video")
		}
		videos = append(videos, v)
	}
	return videos, eris.Wrap(rows.Err(), "postgres: list yoga videos iterate")
}

func (s *PostgresStore) LogSymptom(ctx context.Context, l model.SymptomLog) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.LoggedAt.IsZero() {
		l.LoggedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO symptom_logs (id, symptom_term, pincode, logged_at) VALUES ($1, $2, $3, $4)`,
		l.ID, l.SymptomTerm, l.Pincode, l.LoggedAt,
	)
	return eris.Wrap(err, "postgres: insert symptom log")
}

func (s *PostgresStore) TopSymptoms(ctx context.Context, pincode string, since time.Time, limit int) ([]model.SymptomCount, error) {
	query := `SELECT symptom_term, COUNT(*) AS n FROM symptom_logs WHERE logged_at >= $1`
	args := []any{since}
	argIdx := 2

	if pincode != "" {
		query += fmt.Sprintf(` AND pincode = $%d`, argIdx)
		args = append(args, pincode)
		argIdx++
	}
	if limit <= 0 {
		limit = 10
	}
	query += fmt.Sprintf(` GROUP BY symptom_term ORDER BY n DESC, symptom_term ASC LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: top symptoms")
	}
	defer rows.Close()

	var counts []model.SymptomCount
	for rows.Next() {
		var c model.SymptomCount
		if err := rows.Scan(&c.SymptomTerm, &c.Count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan symptom count")
		}
		counts = append(counts, c)
	}
	return counts, eris.Wrap(rows.Err(), "postgres: top symptoms iterate")
}
