package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/saransh482003/healthassist/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS hospitals (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	place_id   TEXT NOT NULL UNIQUE,
	address    TEXT,
	latitude   REAL NOT NULL DEFAULT 0,
	longitude  REAL NOT NULL DEFAULT 0,
	website    TEXT,
	phone      TEXT,
	rating     REAL NOT NULL DEFAULT 0,
	num_rating INTEGER NOT NULL DEFAULT 0,
	type       TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS pharmacies (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	place_id          TEXT NOT NULL UNIQUE,
	address           TEXT,
	latitude          REAL NOT NULL DEFAULT 0,
	longitude         REAL NOT NULL DEFAULT 0,
	phone             TEXT,
	website           TEXT,
	rating            REAL NOT NULL DEFAULT 0,
	user_rating_count INTEGER NOT NULL DEFAULT 0,
	opening_hours     TEXT,
	business_status   TEXT,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS doctors (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	hospital_id    TEXT NOT NULL REFERENCES hospitals(id),
	specialization TEXT NOT NULL,
	experience     INTEGER NOT NULL DEFAULT 0,
	rating         REAL NOT NULL DEFAULT 0,
	num_rating     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	user_name     TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	mobile_number TEXT,
	gender        TEXT,
	dob           TEXT,
	address       TEXT,
	pincode       TEXT,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS reminders (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL REFERENCES users(id),
	medicine_name     TEXT NOT NULL,
	dosage            TEXT,
	time_of_day       TEXT NOT NULL,
	relation_to_meal  TEXT,
	frequency         TEXT,
	notification_type TEXT,
	is_active         INTEGER NOT NULL DEFAULT 1,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS medicine_logs (
	id          TEXT PRIMARY KEY,
	reminder_id TEXT NOT NULL REFERENCES reminders(id),
	status      TEXT NOT NULL DEFAULT 'taken',
	logged_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS emergency_contacts (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL REFERENCES users(id),
	contact_name   TEXT NOT NULL,
	contact_number TEXT NOT NULL,
	relation       TEXT
);

CREATE TABLE IF NOT EXISTS yoga_videos (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	description      TEXT,
	video_url        TEXT NOT NULL,
	difficulty       TEXT,
	duration_minutes INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS symptom_logs (
	id           TEXT PRIMARY KEY,
	symptom_term TEXT NOT NULL,
	pincode      TEXT,
	logged_at    DATETIME NOT NULL DEFAULT (datetime('now'))
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

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertHospital caches a hospital under its place ID. First-seen wins:
// a conflicting insert is a no-op and the stored row is returned.
func (s *SQLiteStore) UpsertHospital(ctx context.Context, h model.Hospital) (*model.Hospital, error) {
	if h.PlaceID == "" {
		return nil, eris.New("sqlite: hospital missing place_id")
	}
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO hospitals (id, name, place_id, address, latitude, longitude, website, phone, rating, num_rating, type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (place_id) DO NOTHING`,
		h.ID, h.Name, h.PlaceID, h.Address, h.Latitude, h.Longitude,
		h.Website, h.Phone, h.Rating, h.NumRating, h.Type, h.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: upsert hospital %s", h.PlaceID)
	}
	return s.GetHospitalByPlaceID(ctx, h.PlaceID)
}

func (s *SQLiteStore) GetHospitalByPlaceID(ctx context.Context, placeID string) (*model.Hospital, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, place_id, address, latitude, longitude, website, phone, rating, num_rating, type, created_at
		 FROM hospitals WHERE place_id = ?`,
		placeID,
	)

	var h model.Hospital
	err := row.Scan(&h.ID, &h.Name, &h.PlaceID, &h.Address, &h.Latitude, &h.Longitude,
		&h.Website, &h.Phone, &h.Rating, &h.NumRating, &h.Type, &h.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get hospital %s", placeID)
	}
	return &h, nil
}

// UpsertPharmacy caches a pharmacy under its place ID, first-seen wins.
func (s *SQLiteStore) UpsertPharmacy(ctx context.Context, p model.Pharmacy) (*model.Pharmacy, error) {
	if p.PlaceID == "" {
		return nil, eris.New("sqlite: pharmacy missing place_id")
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pharmacies (id, name, place_id, address, latitude, longitude, phone, website, rating, user_rating_count, opening_hours, business_status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (place_id) DO NOTHING`,
		p.ID, p.Name, p.PlaceID, p.Address, p.Latitude, p.Longitude, p.Phone,
		p.Website, p.Rating, p.UserRatingCount, p.OpeningHours, p.BusinessStatus, p.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: upsert pharmacy %s", p.PlaceID)
	}
	return s.GetPharmacyByPlaceID(ctx, p.PlaceID)
}

func (s *SQLiteStore) GetPharmacyByPlaceID(ctx context.Context, placeID string) (*model.Pharmacy, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, place_id, address, latitude, longitude, phone, website, rating, user_rating_count, opening_hours, business_status, created_at
		 FROM pharmacies WHERE place_id = ?`,
		placeID,
	)

	var p model.Pharmacy
	err := row.Scan(&p.ID, &p.Name, &p.PlaceID, &p.Address, &p.Latitude, &p.Longitude,
		&p.Phone, &p.Website, &p.Rating, &p.UserRatingCount, &p.OpeningHours, &p.BusinessStatus, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get pharmacy %s", placeID)
	}
	return &p, nil
}

func (s *SQLiteStore) CreateDoctors(ctx context.Context, doctors []model.Doctor) error {
	if len(doctors) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, d := range doctors {
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		// Re-running the pipeline over a cached hospital must not
		// duplicate its roster; the first-seen row stays.
		_, err := tx.ExecContext(ctx,
			`INSERT INTO doctors (id, name, hospital_id, specialization, experience, rating, num_rating)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (hospital_id, name) DO NOTHING`,
			d.ID, d.Name, d.HospitalID, d.Specialization, d.Experience, d.Rating, d.NumRating,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert doctor %s", d.Name)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit doctors")
}

func (s *SQLiteStore) SearchDoctors(ctx context.Context, filter DoctorFilter) ([]model.Doctor, error) {
	query := `SELECT d.id, d.name, d.hospital_id, d.specialization, d.experience, d.rating, d.num_rating, h.name
	          FROM doctors d JOIN hospitals h ON h.id = d.hospital_id WHERE 1=1`
	var args []any

	if filter.Name != "" {
		query += ` AND d.name LIKE ?`
		args = append(args, "%"+filter.Name+"%")
	}
	if filter.Specialization != "" {
		query += ` AND d.specialization LIKE ?`
		args = append(args, "%"+filter.Specialization+"%")
	}
	if filter.HospitalID != "" {
		query += ` AND d.hospital_id = ?`
		args = append(args, filter.HospitalID)
	}
	query += ` ORDER BY d.rating DESC, d.name ASC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: search doctors")
	}
	defer rows.Close()

	var doctors []model.Doctor
	for rows.Next() {
		var d model.Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.HospitalID, &d.Specialization,
			&d.Experience, &d.Rating, &d.NumRating, &d.HospitalName); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan doctor")
		}
		doctors = append(doctors, d)
	}
	return doctors, eris.Wrap(rows.Err(), "sqlite: search doctors iterate")
}

func (s *SQLiteStore) CreateUser(ctx context.Context, u model.User) (*model.User, error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, user_name, password_hash, email, mobile_number, gender, dob, address, pincode, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.UserName, u.PasswordHash, u.Email, u.MobileNumber,
		u.Gender, u.DOB, u.Address, u.Pincode, u.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return nil, ErrDuplicateEmail
		}
		return nil, eris.Wrapf(err, "sqlite: insert user %s", u.Email)
	}
	return &u, nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, user_name, password_hash, email, mobile_number, gender, dob, address, pincode, created_at
		 FROM users WHERE id = ?`, id))
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, user_name, password_hash, email, mobile_number, gender, dob, address, pincode, created_at
		 FROM users WHERE email = ?`, email))
}

// UpdateUser rewrites the mutable profile fields. Email and password
// hash are not touched here.
func (s *SQLiteStore) UpdateUser(ctx context.Context, u model.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET user_name = ?, mobile_number = ?, gender = ?, dob = ?, address = ?, pincode = ?
		 WHERE id = ?`,
		u.UserName, u.MobileNumber, u.Gender, u.DOB, u.Address, u.Pincode, u.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update user %s", u.ID)
	}
	return checkRowsAffected(res, "user", u.ID)
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.UserName, &u.PasswordHash, &u.Email, &u.MobileNumber,
		&u.Gender, &u.DOB, &u.Address, &u.Pincode, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan user")
	}
	return &u, nil
}

func (s *SQLiteStore) CreateReminder(ctx context.Context, r model.Reminder) (*model.Reminder, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (id, user_id, medicine_name, dosage, time_of_day, relation_to_meal, frequency, notification_type, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.MedicineName, r.Dosage, r.TimeOfDay,
		r.RelationToMeal, r.Frequency, r.NotificationType, r.IsActive, r.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert reminder for user %s", r.UserID)
	}
	return &r, nil
}

func (s *SQLiteStore) ListReminders(ctx context.Context, userID string) ([]model.Reminder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, medicine_name, dosage, time_of_day, relation_to_meal, frequency, notification_type, is_active, created_at
		 FROM reminders WHERE user_id = ? ORDER BY time_of_day ASC`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list reminders")
	}
	defer rows.Close()

	var reminders []model.Reminder
	for rows.Next() {
		var r model.Reminder
		if err := rows.Scan(&r.ID, &r.UserID, &r.MedicineName, &r.Dosage, &r.TimeOfDay,
			&r.RelationToMeal, &r.Frequency, &r.NotificationType, &r.IsActive, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan reminder")
		}
		reminders = append(reminders, r)
	}
	return reminders, eris.Wrap(rows.Err(), "sqlite: list reminders iterate")
}

func (s *SQLiteStore) UpdateReminder(ctx context.Context, r model.Reminder) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reminders SET medicine_name = ?, dosage = ?, time_of_day = ?, relation_to_meal = ?, frequency = ?, notification_type = ?, is_active = ?
		 WHERE id = ?`,
		r.MedicineName, r.Dosage, r.TimeOfDay, r.RelationToMeal,
		r.Frequency, r.NotificationType, r.IsActive, r.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update reminder %s", r.ID)
	}
	return checkRowsAffected(res, "reminder", r.ID)
}

func (s *SQLiteStore) DeleteReminder(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete reminder %s", id)
	}
	return checkRowsAffected(res, "reminder", id)
}

func (s *SQLiteStore) CreateMedicineLog(ctx context.Context, l model.MedicineLog) (*model.MedicineLog, error) {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.LoggedAt.IsZero() {
		l.LoggedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO medicine_logs (id, reminder_id, status, logged_at) VALUES (?, ?, ?, ?)`,
		l.ID, l.ReminderID, l.Status, l.LoggedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert medicine log for reminder %s", l.ReminderID)
	}
	return &l, nil
}

// ListMedicineLogs returns the user's intake events for the calendar
// day containing the given instant, in UTC.
func (s *SQLiteStore) ListMedicineLogs(ctx context.Context, userID string, day time.Time) ([]model.MedicineLog, error) {
	start := day.UTC().Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)

	rows, err := s.db.QueryContext(ctx,
		`SELECT ml.id, ml.reminder_id, ml.status, ml.logged_at, r.medicine_name
		 FROM medicine_logs ml JOIN reminders r ON r.id = ml.reminder_id
		 WHERE r.user_id = ? AND ml.logged_at >= ? AND ml.logged_at < ?
		 ORDER BY ml.logged_at ASC`,
		userID, start, end,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list medicine logs")
	}
	defer rows.Close()

	var logs []model.MedicineLog
	for rows.Next() {
		var l model.MedicineLog
		if err := rows.Scan(&l.ID, &l.ReminderID, &l.Status, &l.LoggedAt, &l.MedicineName); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan medicine log")
		}
		logs = append(logs, l)
	}
	return logs, eris.Wrap(rows.Err(), "sqlite: list medicine logs iterate")
}

func (s *SQLiteStore) CreateEmergencyContact(ctx context.Context, c model.EmergencyContact) (*model.EmergencyContact, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO emergency_contacts (id, user_id, contact_name, contact_number, relation) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.Number, c.Relation,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert emergency contact for user %s", c.UserID)
	}
	return &c, nil
}

func (s *SQLiteStore) ListEmergencyContacts(ctx context.Context, userID string) ([]model.EmergencyContact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, contact_name, contact_number, relation
		 FROM emergency_contacts WHERE user_id = ? ORDER BY contact_name ASC`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list emergency contacts")
	}
	defer rows.Close()

	var contacts []model.EmergencyContact
	for rows.Next() {
		var c model.EmergencyContact
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Number, &c.Relation); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan emergency contact")
		}
		contacts = append(contacts, c)
	}
	return contacts, eris.Wrap(rows.Err(), "sqlite: list emergency contacts iterate")
}

func (s *SQLiteStore) DeleteEmergencyContact(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM emergency_contacts WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete emergency contact %s", id)
	}
	return checkRowsAffected(res, "emergency_contact", id)
}

func (s *SQLiteStore) AddYogaVideo(ctx context.Context, v model.YogaVideo) (*model.YogaVideo, error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO yoga_videos (id, title, description, video_url, difficulty, duration_minutes) VALUES (?, ?, ?, ?, ?, ?)`,
		v.ID, v.Title, v.Description, v.VideoURL, v.Difficulty, v.DurationMinutes,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert yoga video %s", v.Title)
	}
	return &v, nil
}

func (s *SQLiteStore) ListYogaVideos(ctx context.Context, difficulty string) ([]model.YogaVideo, error) {
	query := `SELECT id, title, description, video_url, difficulty, duration_minutes FROM yoga_videos WHERE 1=1`
	var args []any
	if difficulty != "" {
		query += ` AND difficulty = ?`
		args = append(args, difficulty)
	}
	query += ` ORDER BY title ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list yoga videos")
	}
	defer rows.Close()

	var videos []model.YogaVideo
	for rows.Next() {
		var v model.YogaVideo
		if err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.VideoURL, &v.Difficulty, &v.DurationMinutes); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan yoga video")
		}
		videos = append(videos, v)
	}
	return videos, eris.Wrap(rows.Err(), "sqlite: list yoga videos iterate")
}

func (s *SQLiteStore) LogSymptom(ctx context.Context, l model.SymptomLog) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.LoggedAt.IsZero() {
		l.LoggedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO symptom_logs (id, symptom_term, pincode, logged_at) VALUES (?, ?, ?, ?)`,
		l.ID, l.SymptomTerm, l.Pincode, l.LoggedAt,
	)
	return eris.Wrap(err, "sqlite: insert symptom log")
}

func (s *SQLiteStore) TopSymptoms(ctx context.Context, pincode string, since time.Time, limit int) ([]model.SymptomCount, error) {
	query := `SELECT symptom_term, COUNT(*) AS n FROM symptom_logs WHERE logged_at >= ?`
	args := []any{since}

	if pincode != "" {
		query += ` AND pincode = ?`
		args = append(args, pincode)
	}
	if limit <= 0 {
		limit = 10
	}
	query += ` GROUP BY symptom_term ORDER BY n DESC, symptom_term ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: top symptoms")
	}
	defer rows.Close()

	var counts []model.SymptomCount
	for rows.Next() {
		var c model.SymptomCount
		if err := rows.Scan(&c.SymptomTerm, &c.Count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan symptom count")
		}
		counts = append(counts, c)
	}
	return counts, eris.Wrap(rows.Err(), "sqlite: top symptoms iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}
