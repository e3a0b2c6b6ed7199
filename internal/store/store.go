package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/saransh482003/healthassist/internal/model"
)

// ErrDuplicateEmail reports a user insert that collided with an
// existing account's email. Both backends map their unique-violation
// errors to this sentinel so the API can answer with a conflict even
// when two signups race past the pre-insert lookup.
var ErrDuplicateEmail = eris.New("email already registered")

// DoctorFilter specifies criteria for searching doctors.
type DoctorFilter struct {
	Name           string `json:"name,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	HospitalID     string `json:"hospital_id,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for the service.
//
// Place upserts are first-seen wins: once a hospital or pharmacy is
// cached under its place ID the stored row is authoritative and later
// lookups never overwrite it.
type Store interface {
	// Hospitals
	UpsertHospital(ctx context.Context, h model.Hospital) (*model.Hospital, error)
	GetHospitalByPlaceID(ctx context.Context, placeID string) (*model.Hospital, error)

	// Pharmacies
	UpsertPharmacy(ctx context.Context, p model.Pharmacy) (*model.Pharmacy, error)
	GetPharmacyByPlaceID(ctx context.Context, placeID string) (*model.Pharmacy, error)

	// Doctors
	CreateDoctors(ctx context.Context, doctors []model.Doctor) error
	SearchDoctors(ctx context.Context, filter DoctorFilter) ([]model.Doctor, error)

	// Users
	CreateUser(ctx context.Context, u model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, u model.User) error

	// Reminders
	CreateReminder(ctx context.Context, r model.Reminder) (*model.Reminder, error)
	ListReminders(ctx context.Context, userID string) ([]model.Reminder, error)
	UpdateReminder(ctx context.Context, r model.Reminder) error
	DeleteReminder(ctx context.Context, id string) error

	// Medicine logs
	CreateMedicineLog(ctx context.Context, l model.MedicineLog) (*model.MedicineLog, error)
	ListMedicineLogs(ctx context.Context, userID string, day time.Time) ([]model.MedicineLog, error)

	// Emergency contacts
	CreateEmergencyContact(ctx context.Context, c model.EmergencyContact) (*model.EmergencyContact, error)
	ListEmergencyContacts(ctx context.Context, userID string) ([]model.EmergencyContact, error)
	DeleteEmergencyContact(ctx context.Context, id string) error

	// Yoga videos
	AddYogaVideo(ctx context.Context, v model.YogaVideo) (*model.YogaVideo, error)
	ListYogaVideos(ctx context.Context, difficulty string) ([]model.YogaVideo, error)

	// Symptom analytics
	LogSymptom(ctx context.Context, l model.SymptomLog) error
	TopSymptoms(ctx context.Context, pincode string, since time.Time, limit int) ([]model.SymptomCount, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
