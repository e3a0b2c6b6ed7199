package api

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/saransh482003/healthassist/internal/chat"
	"github.com/saransh482003/healthassist/internal/finder"
	"github.com/saransh482003/healthassist/internal/model"
	"github.com/saransh482003/healthassist/internal/rank"
	"github.com/saransh482003/healthassist/internal/store"
)

func (s *Server) handleDoctorSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.DoctorFilter{
		Name:           q.Get("name"),
		Specialization: q.Get("specialization"),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}

	doctors, err := s.store.SearchDoctors(r.Context(), filter)
	if err != nil {
		zap.L().Error("api: search doctors", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "search failed")
		return
	}
	if doctors == nil {
		doctors = []model.Doctor{}
	}
	respond(w, http.StatusOK, doctors)
}

func (s *Server) handleNearbyPlaces(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(q.Get("latitude"), 64)
	lon, lonErr := strconv.ParseFloat(q.Get("longitude"), 64)
	if latErr != nil || lonErr != nil {
		respondErr(w, http.StatusBadRequest, "latitude and longitude are required")
		return
	}

	placeType := q.Get("place_type")
	if placeType == "" {
		placeType = "hospital"
	}
	radius, _ := strconv.Atoi(q.Get("radius"))

	results, err := s.places.NearbySearch(r.Context(), lat, lon, placeType, radius)
	if err != nil {
		zap.L().Error("api: nearby search", zap.Error(err))
		respondErr(w, http.StatusBadGateway, "nearby lookup failed")
		return
	}

	if placeType == "pharmacy" {
		s.cachePharmacies(r, results)
	}

	respond(w, http.StatusOK, results)
}

// cachePharmacies persists pharmacy results, first-seen wins. Best-effort.
func (s *Server) cachePharmacies(r *http.Request, results []model.Place) {
	for _, p := range results {
		if p.PlaceID == "" {
			continue
		}
		_, err := s.store.UpsertPharmacy(r.Context(), model.Pharmacy{
			Name:            p.Name,
			PlaceID:         p.PlaceID,
			Address:         p.Vicinity,
			Latitude:        p.Latitude,
			Longitude:       p.Longitude,
			Rating:          rank.SafeFloat(p.Rating),
			UserRatingCount: rank.SafeInt(p.UserRatingCount),
			BusinessStatus:  p.BusinessStatus,
		})
		if err != nil {
			zap.L().Warn("api: cache pharmacy", zap.String("place_id", p.PlaceID), zap.Error(err))
		}
	}
}

func (s *Server) handlePlaceDetails(w http.ResponseWriter, r *http.Request) {
	placeID := r.URL.Query().Get("place_id")
	if placeID == "" {
		respondErr(w, http.StatusBadRequest, "place_id is required")
		return
	}

	details, err := s.places.Details(r.Context(), placeID)
	if err != nil {
		zap.L().Error("api: place details", zap.Error(err))
		respondErr(w, http.StatusBadGateway, "details lookup failed")
		return
	}
	if details == nil {
		respondErr(w, http.StatusNotFound, "place not found")
		return
	}
	respond(w, http.StatusOK, details)
}

func (s *Server) handleDoctorFinder(w http.ResponseWriter, r *http.Request) {
	var req finder.Request
	if err := decode(r, &req); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Latitude == 0 && req.Longitude == 0 {
		respondErr(w, http.StatusBadRequest, "latitude and longitude are required")
		return
	}

	report, err := s.finder.FindDoctors(r.Context(), req)

	if s.recorder != nil {
		doctors := 0
		for _, pr := range report {
			doctors += len(pr.Doctors)
		}
		s.recorder.RecordRun(err != nil, len(report), doctors)
	}

	if err != nil {
		zap.L().Error("api: doctor finder", zap.Error(err))
		respondErr(w, http.StatusBadGateway, "doctor discovery failed")
		return
	}
	respond(w, http.StatusOK, report)
}

type chatbotRequest struct {
	Question string       `json:"question"`
	History  chat.History `json:"history"`
}

func (s *Server) handleChatbot(w http.ResponseWriter, r *http.Request) {
	var req chatbotRequest
	if err := decode(r, &req); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		respondErr(w, http.StatusBadRequest, "question is required")
		return
	}

	reply, err := s.assistant.Reply(r.Context(), req.Question, req.History)
	if err != nil {
		zap.L().Error("api: chatbot", zap.Error(err))
		respondErr(w, http.StatusBadGateway, "assistant unavailable")
		return
	}
	respond(w, http.StatusOK, reply)
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	ip := r.URL.Query().Get("ip")
	if ip == "" {
		// RealIP middleware rewrites RemoteAddr from forwarding headers.
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ip = host
	}

	loc, err := s.geo.Lookup(r.Context(), ip)
	if err != nil {
		zap.L().Error("api: geoip lookup", zap.String("ip", ip), zap.Error(err))
		respondErr(w, http.StatusBadGateway, "location lookup failed")
		return
	}
	respond(w, http.StatusOK, loc)
}

func (s *Server) handleYogaVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := s.store.ListYogaVideos(r.Context(), r.URL.Query().Get("difficulty"))
	if err != nil {
		zap.L().Error("api: list yoga videos", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "could not load videos")
		return
	}
	if videos == nil {
		videos = []model.YogaVideo{}
	}
	respond(w, http.StatusOK, videos)
}

type yogaVideoRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	VideoURL        string `json:"video_url"`
	Difficulty      string `json:"difficulty"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (s *Server) handleAddYogaVideo(w http.ResponseWriter, r *http.Request) {
	var req yogaVideoRequest
	if err := decode(r, &req); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.VideoURL == "" {
		respondErr(w, http.StatusBadRequest, "title and video_url are required")
		return
	}

	video, err := s.store.AddYogaVideo(r.Context(), model.YogaVideo{
		Title:           req.Title,
		Description:     req.Description,
		VideoURL:        req.VideoURL,
		Difficulty:      req.Difficulty,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		zap.L().Error("api: add yoga video", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "could not add video")
		return
	}
	respond(w, http.StatusCreated, video)
}

type symptomRequest struct {
	SymptomTerm string `json:"symptom_term"`
	Pincode     string `json:"pincode"`
}

func (s *Server) handleLogSymptom(w http.ResponseWriter, r *http.Request) {
	var req symptomRequest
	if err := decode(r, &req); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SymptomTerm == "" {
		respondErr(w, http.StatusBadRequest, "symptom_term is required")
		return
	}

	err := s.store.LogSymptom(r.Context(), model.SymptomLog{
		SymptomTerm: req.SymptomTerm,
		Pincode:     req.Pincode,
	})
	if err != nil {
		zap.L().Error("api: log symptom", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "could not log symptom")
		return
	}
	respond(w, http.StatusCreated, map[string]string{"status": "logged"})
}

func (s *Server) handleSymptomAnalytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	hours := 24
	if h, err := strconv.Atoi(q.Get("hours")); err == nil && h > 0 {
		hours = h
	}

	// A pincode filter bypasses the full snapshot and queries directly.
	if pincode := q.Get("pincode"); pincode != "" {
		since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
		counts, err := s.store.TopSymptoms(r.Context(), pincode, since, 10)
		if err != nil {
			zap.L().Error("api: symptom analytics", zap.Error(err))
			respondErr(w, http.StatusInternalServerError, "analytics unavailable")
			return
		}
		if counts == nil {
			counts = []model.SymptomCount{}
		}
		respond(w, http.StatusOK, counts)
		return
	}

	if s.collector == nil {
		respondErr(w, http.StatusServiceUnavailable, "analytics not enabled")
		return
	}

	snap, err := s.collector.Collect(r.Context(), hours)
	if err != nil {
		zap.L().Error("api: symptom analytics", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "analytics unavailable")
		return
	}
	respond(w, http.StatusOK, snap)
}
