package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/saransh482003/healthassist/internal/model"
)

type reminderRequest struct {
	MedicineName     string `json:"medicine_name"`
	Dosage           string `json:"dosage"`
	TimeOfDay        string `json:"time_of_day"`
	RelationToMeal   string `json:"relation_to_meal"`
	Frequency        string `json:"frequency"`
	NotificationType string `json:"notification_type"`
	IsActive         *bool  `json:"is_active"`
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if err := decode(r, &req); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MedicineName == "" || req.TimeOfDay == "" {
		respondErr(w, http.StatusBadRequest, "medicine_name and time_of_day are required")
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	reminder, err := s.store.CreateReminder(r.Context(), model.Reminder{
		UserID:           userID(r.Context()),
		MedicineName:     req.MedicineName,
		Dosage:           req.Dosage,
		TimeOfDay:        req.TimeOfDay,
		RelationToMeal:   req.RelationToMeal,
		Frequency:        req.Frequency,
		NotificationType: req.NotificationType,
		IsActive:         active,
	})
	if err != nil {
		zap.L().Error("api: create reminder", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "could not create reminder")
		return
	}
	respond(w, http.StatusCreated, reminder)
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := s.store.ListReminders(r.Context(), userID(r.Context()))
	if err != nil {
		zap.L().Error("api: list reminders", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "could not load reminders")
		return
	}
	if r.URL.Query().Get("active") == "true" {
		filtered := reminders[:0]
		for _, rem := range reminders {
			if rem.IsActive {
				filtered = append(filtered, rem)
			}
		}
		reminders = filtered
	}
	if reminders == nil {
		reminders = []model.Reminder{}
	}
	respond(w, http.StatusOK, reminders)
}

func (s *Server) handleUpdateReminder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, ok := s.ownedReminder(w, r, id)
	if !ok {
		return
	}

	var req reminderRequest
	if err := decode(r, &req); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Partial update: absent fields keep their stored value.
	if req.MedicineName != "" {
		existing.MedicineName = req.MedicineName
	}
	if req.Dosage != "" {
		existing.Dosage = req.Dosage
	}
	if req.TimeOfDay != "" {
		existing.TimeOfDay = req.TimeOfDay
	}
	if req.RelationToMeal != "" {
		existing.RelationToMeal = req.RelationToMeal
	}
	if req.Frequency != "" {
		existing.Frequency = req.Frequency
	}
	if req.NotificationType != "" {
		existing.NotificationType = req.NotificationType
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if err := s.store.UpdateReminder(r.Context(), *existing); err != nil {
		if isNotFound(err) {
			respondErr(w, http.StatusNotFound, "reminder not found")
			return
		}
		zap.L().Error("api: update reminder", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "could not update reminder")
		return
	}
	respond(w, http.StatusOK, existing)
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, ok := s.ownedReminder(w, r, id); !ok {
		return
	}

	if err := s.store.DeleteReminder(r.Context(), id); err != nil {
		if isNotFound(err) {
			respondErr(w, http.StatusNotFound, "reminder not found")
			return
		}
		zap.L().Error("api: delete reminder", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "could not delete reminder")
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ownedReminder loads the reminder and enforces that it belongs to the
// session user. Writes the error response itself when the check fails.
func (s *Server) ownedReminder(w http.ResponseWriter, r *http.Request, id string) (*model.Reminder, bool) {
	reminders, err := s.store.ListReminders(r.Context(), userID(r.Context()))
	if err != nil {
		zap.L().Error("api: list reminders", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "could not load reminders")
		return nil, false
	}
	for i := range reminders {
		if reminders[i].ID == id {
			return &reminders[i], true
		}
	}
	respondErr(w, http.StatusNotFound, "reminder not found")
	return nil, false
}

type medicineLogRequest struct {
	ReminderID string `json:"reminder_id"`
	Status     string `json:"status"`
}

// handleLogMedicine records that a dose on one of the session user's
// reminders was taken or skipped. Status defaults to taken.
func (s *Server) handleLogMedicine(w http.ResponseWriter, r *http.Request) {
	var req medicineLogRequest
	if err := decode(r, &req); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ReminderID == "" {
		respondErr(w, http.StatusBadRequest, "reminder_id is required")
		return
	}
	if _, ok := s.ownedReminder(w, r, req.ReminderID); !ok {
		return
	}

	status := req.Status
	if status == "" {
		status = "taken"
	}
	if status != "taken" && status != "skipped" {
		respondErr(w, http.StatusBadRequest, "status must be taken or skipped")
		return
	}

	log, err := s.store.CreateMedicineLog(r.Context(), model.MedicineLog{
		ReminderID: req.ReminderID,
		Status:     status,
	})
	if err != nil {
		zap.L().Error("api: log medicine", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "could not log medicine intake")
		return
	}
	respond(w, http.StatusCreated, log)
}

// handleHealthSummary reports today's adherence: doses taken, doses
// skipped, and the individual intake events.
func (s *Server) handleHealthSummary(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()

	logs, err := s.store.ListMedicineLogs(r.Context(), userID(r.Context()), now)
	if err != nil {
		zap.L().Error("api: list medicine logs", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "could not load health summary")
		return
	}

	taken, skipped := 0, 0
	details := make([]map[string]any, 0, len(logs))
	for _, l := range logs {
		switch l.Status {
		case "taken":
			taken++
		case "skipped":
			skipped++
		}
		details = append(details, map[string]any{
			"medicine_name": l.MedicineName,
			"status":        l.Status,
			"time":          l.LoggedAt.Format("15:04:05"),
		})
	}

	respond(w, http.StatusOK, map[string]any{
		"date":             now.Format("2006-01-02"),
		"medicine_taken":   taken,
		"medicine_skipped": skipped,
		"log_details":      details,
	})
}

type contactRequest struct {
	Name     string `json:"contact_name"`
	Number   string `json:"contact_number"`
	Relation string `json:"relation"`
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decode(r, &req); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Number == "" {
		respondErr(w, http.StatusBadRequest, "contact_name and contact_number are required")
		return
	}

	contact, err := s.store.CreateEmergencyContact(r.Context(), model.EmergencyContact{
		UserID:   userID(r.Context()),
		Name:     req.Name,
		Number:   req.Number,
		Relation: req.Relation,
	})
	if err != nil {
		zap.L().Error("api: create contact", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "could not create contact")
		return
	}
	respond(w, http.StatusCreated, contact)
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.store.ListEmergencyContacts(r.Context(), userID(r.Context()))
	if err != nil {
		zap.L().Error("api: list contacts", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "could not load contacts")
		return
	}
	if contacts == nil {
		contacts = []model.EmergencyContact{}
	}
	respond(w, http.StatusOK, contacts)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	contacts, err := s.store.ListEmergencyContacts(r.Context(), userID(r.Context()))
	if err != nil {
		zap.L().Error("api: list contacts", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "could not load contacts")
		return
	}
	owned := false
	for _, c := range contacts {
		if c.ID == id {
			owned = true
			break
		}
	}
	if !owned {
		respondErr(w, http.StatusNotFound, "contact not found")
		return
	}

	if err := s.store.DeleteEmergencyContact(r.Context(), id); err != nil {
		if isNotFound(err) {
			respondErr(w, http.StatusNotFound, "contact not found")
			return
		}
		zap.L().Error("api: delete contact", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "could not delete contact")
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not found")
}
