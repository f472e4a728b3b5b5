package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/theswapneil/school-management-system/internal/config"
	"github.com/theswapneil/school-management-system/internal/model"
	"github.com/theswapneil/school-management-system/internal/ratelimit"
	"github.com/theswapneil/school-management-system/internal/repository"
	"github.com/theswapneil/school-management-system/internal/service"
)

type Server struct {
	cfg     config.Config
	logger  *zap.Logger
	auth    *service.AuthService
	store   *repository.Store
	limiter *ratelimit.LoginLimiter
}

func NewServer(cfg config.Config, logger *zap.Logger, authSvc *service.AuthService, store *repository.Store, limiter *ratelimit.LoginLimiter) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger,
		auth:    authSvc,
		store:   store,
		limiter: limiter,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	authOnly := pipeline(newAuthGate(s.cfg.JWTSecret))
	adminOnly := pipeline(newAuthGate(s.cfg.JWTSecret), newRoleGate(model.RoleAdmin))
	staffOnly := pipeline(newAuthGate(s.cfg.JWTSecret), newRoleGate(model.RoleAdmin, model.RoleTeacher))
	feeViewers := pipeline(newAuthGate(s.cfg.JWTSecret), newRoleGate(model.RoleAdmin, model.RoleTeacher, model.RoleParent))

	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Server is running"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)
		r.With(authOnly).Get("/me", s.handleMe)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.With(adminOnly).Get("/", s.handleListUsers)
		r.With(adminOnly).Patch("/{userID}", s.handleUpdateUser)
	})

	r.Route("/api/students", func(r chi.Router) {
		r.With(authOnly).Get("/", s.handleListStudents)
		r.With(authOnly).Get("/{studentID}", s.handleGetStudent)
		r.With(adminOnly).Post("/", s.handleCreateStudent)
		r.With(adminOnly).Patch("/{studentID}", s.handleUpdateStudent)
		r.With(adminOnly).Delete("/{studentID}", s.handleDeleteStudent)
	})

	r.Route("/api/classes", func(r chi.Router) {
		r.Get("/", s.handleListClasses)
		r.Get("/{classID}", s.handleGetClass)
		r.With(adminOnly).Post("/", s.handleCreateClass)
		r.With(adminOnly).Patch("/{classID}", s.handleUpdateClass)
		r.With(adminOnly).Delete("/{classID}", s.handleDeleteClass)
	})

	r.Route("/api/attendance", func(r chi.Router) {
		r.With(staffOnly).Post("/", s.handleCreateAttendance)
		r.With(authOnly).Get("/student/{studentID}", s.handleListAttendance)
		r.With(staffOnly).Patch("/{recordID}", s.handleUpdateAttendance)
	})

	r.Route("/api/fees", func(r chi.Router) {
		r.With(adminOnly).Post("/", s.handleCreateFee)
		r.With(feeViewers).Get("/student/{studentID}", s.handleListFees)
		r.With(adminOnly).Patch("/{feeID}", s.handleUpdateFee)
	})

	return r
}

// Auth handlers

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type authResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    userResponse `json:"user"`
}

func toUserResponse(user model.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password required")
		return
	}

	// Limiter counters key on the same spelling the store does, so case
	// variants of one address share one failure budget.
	email := service.NormalizeEmail(req.Email)

	if !s.limiter.Allow(r.Context(), email) {
		writeError(w, http.StatusTooManyRequests, "Too many login attempts, try again later")
		return
	}

	result, err := s.auth.Login(r.Context(), email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			writeError(w, http.StatusBadRequest, "Email and password required")
		case errors.Is(err, service.ErrNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrInvalidCredential):
			s.limiter.RecordFailure(r.Context(), email)
			writeError(w, http.StatusUnauthorized, "Invalid password")
		default:
			s.logger.Error("login failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Login error")
		}
		return
	}

	s.limiter.Reset(r.Context(), email)
	writeJSON(w, http.StatusOK, authResponse{
		Message: "Login successful",
		Token:   result.Token,
		User:    toUserResponse(result.User),
	})
}

type registerRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Role      string  `json:"role,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.auth.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			writeError(w, http.StatusBadRequest, "All fields are required")
		case errors.Is(err, service.ErrConflict):
			writeError(w, http.StatusConflict, "Email already registered")
		default:
			s.logger.Error("registration failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Registration error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Message: "User registered successfully",
		Token:   result.Token,
		User:    toUserResponse(result.User),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	user, err := s.auth.GetUser(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		s.logger.Error("get user failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User retrieved successfully",
		"data":    toUserResponse(user),
	})
}

// Helpers

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

const dateLayout = "2006-01-02"

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}
