package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/saransh482003/healthassist/internal/model"
	"github.com/saransh482003/healthassist/internal/store"
)

type contextKey string

const userIDKey contextKey = "user_id"

type registerRequest struct {
	UserName     string `json:"user_name"`
	Password     string `json:"password"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	Gender       string `json:"gender"`
	DOB          string `json:"dob"`
	Address      string `json:"address"`
	Pincode      string `json:"pincode"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserName == "" || req.Password == "" || req.Email == "" {
		respondErr(w, http.StatusBadRequest, "user_name, password and email are required")
		return
	}

	existing, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		zap.L().Error("api: lookup user", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "could not create user")
		return
	}
	if existing != nil {
		respondErr(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("api: hash password", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "could not create user")
		return
	}

	user, err := s.store.CreateUser(r.Context(), model.User{
		UserName:     req.UserName,
		PasswordHash: string(hash),
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		Gender:       req.Gender,
		DOB:          req.DOB,
		Address:      req.Address,
		Pincode:      req.Pincode,
	})
	if err != nil {
		// Concurrent signups can slip past the lookup above; the
		// unique constraint settles it and the loser gets the same
		// conflict answer.
		if errors.Is(err, store.ErrDuplicateEmail) {
			respondErr(w, http.StatusConflict, "email already registered")
			return
		}
		zap.L().Error("api: create user", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "could not create user")
		return
	}

	respond(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		zap.L().Error("api: lookup user", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "login failed")
		return
	}
	// Identical rejection for unknown email and wrong password.
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respondErr(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token := uuid.New().String()
	s.sessions.put(token, user.ID)

	respond(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUser(r.Context(), userID(r.Context()))
	if err != nil {
		zap.L().Error("api: get user", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "could not load user")
		return
	}
	if user == nil {
		respondErr(w, http.StatusNotFound, "user not found")
		return
	}
	respond(w, http.StatusOK, user)
}

type profileRequest struct {
	UserName     string `json:"user_name"`
	MobileNumber string `json:"mobile_number"`
	Gender       string `json:"gender"`
	DOB          string `json:"dob"`
	Address      string `json:"address"`
	Pincode      string `json:"pincode"`
}

// handleUpdateProfile is a partial update: absent fields keep their
// stored value. Email and password are immutable through this route.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decode(r, &req); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.store.GetUser(r.Context(), userID(r.Context()))
	if err != nil {
		zap.L().Error("api: get user", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "could not update user")
		return
	}
	if user == nil {
		respondErr(w, http.StatusNotFound, "user not found")
		return
	}

	if req.UserName != "" {
		user.UserName = req.UserName
	}
	if req.MobileNumber != "" {
		user.MobileNumber = req.MobileNumber
	}
	if req.Gender != "" {
		user.Gender = req.Gender
	}
	if req.DOB != "" {
		user.DOB = req.DOB
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	if req.Pincode != "" {
		user.Pincode = req.Pincode
	}

	if err := s.store.UpdateUser(r.Context(), *user); err != nil {
		zap.L().Error("api: update user", zap.Error(err))
		respondErr(w, http.StatusInternalServerError, "could not update user")
		return
	}
	respond(w, http.StatusOK, user)
}

// requireAuth resolves the bearer token to a user ID.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondErr(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		id, ok := s.sessions.get(token)
		if !ok {
			respondErr(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
