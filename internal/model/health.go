package model

import "time"

// Hospital is a cached hospital place, keyed by its external place ID.
// Upsert semantics are first-seen wins; fields are never reconciled.
type Hospital struct {
	ID        string    `json:"hospital_id"`
	Name      string    `json:"hospital_name"`
	PlaceID   string    `json:"place_id"`
	Address   string    `json:"address,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Website   string    `json:"website,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Rating    float64   `json:"rating,omitempty"`
	NumRating int       `json:"num_rating,omitempty"`
	Type      string    `json:"type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Pharmacy is a cached pharmacy place, keyed by its external place ID.
type Pharmacy struct {
	ID              string    `json:"pharmacy_id"`
	Name            string    `json:"name"`
	PlaceID         string    `json:"place_id"`
	Address         string    `json:"address,omitempty"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	Phone           string    `json:"phone_number,omitempty"`
	Website         string    `json:"website,omitempty"`
	Rating          float64   `json:"rating,omitempty"`
	UserRatingCount int       `json:"user_ratings_total,omitempty"`
	OpeningHours    string    `json:"opening_hours_json,omitempty"`
	BusinessStatus  string    `json:"business_status,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Doctor is a practitioner persisted against a hospital.
type Doctor struct {
	ID             string  `json:"doctor_id"`
	Name           string  `json:"name"`
	HospitalID     string  `json:"hospital_id"`
	Specialization string  `json:"specialization"`
	Experience     int     `json:"experience"`
	Rating         float64 `json:"rating,omitempty"`
	NumRating      int     `json:"num_rating,omitempty"`
	HospitalName   string  `json:"hospital_name,omitempty"`
}

// User is a registered account.
type User struct {
	ID           string    `json:"user_id"`
	UserName     string    `json:"user_name"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email"`
	MobileNumber string    `json:"mobile_number"`
	Gender       string    `json:"gender,omitempty"`
	DOB          string    `json:"dob,omitempty"`
	Address      string    `json:"address,omitempty"`
	Pincode      string    `json:"pincode,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Reminder is a medication reminder belonging to a user.
type Reminder struct {
	ID               string    `json:"reminder_id"`
	UserID           string    `json:"user_id"`
	MedicineName     string    `json:"medicine_name"`
	Dosage           string    `json:"dosage,omitempty"`
	TimeOfDay        string    `json:"time_of_day"`
	RelationToMeal   string    `json:"relation_to_meal,omitempty"`
	Frequency        string    `json:"frequency,omitempty"`
	NotificationType string    `json:"notification_type,omitempty"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

// MedicineLog records one intake event against a reminder: the dose
// was either taken or skipped.
type MedicineLog struct {
	ID         string    `json:"log_id"`
	ReminderID string    `json:"reminder_id"`
	Status     string    `json:"status"`
	LoggedAt   time.Time `json:"logged_at"`
	// MedicineName is joined from the reminder on reads.
	MedicineName string `json:"medicine_name,omitempty"`
}

// EmergencyContact is a user's emergency contact entry.
type EmergencyContact struct {
	ID       string `json:"emergency_contact_id"`
	UserID   string `json:"user_id"`
	Name     string `json:"contact_name"`
	Number   string `json:"contact_number"`
	Relation string `json:"relation,omitempty"`
}

// YogaVideo is a curated exercise video.
type YogaVideo struct {
	ID              string `json:"video_id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	VideoURL        string `json:"video_url"`
	Difficulty      string `json:"difficulty,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

// SymptomLog is an anonymous symptom search record used for analytics.
type SymptomLog struct {
	ID          string    `json:"log_id"`
	SymptomTerm string    `json:"symptom_term"`
	Pincode     string    `json:"pincode,omitempty"`
	LoggedAt    time.Time `json:"logged_at"`
}

// SymptomCount is an aggregated analytics row.
type SymptomCount struct {
	SymptomTerm string `json:"symptom_term"`
	Count       int    `json:"count"`
}
