package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/integrations/cbr"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/report"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/repository"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/service"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/valuation"
)

// BondService is the business logic behind the API
type BondService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Calculate(ctx context.Context, spec models.BondSpecification) (*valuation.Result, error)
	CreateBond(ctx context.Context, spec models.BondSpecification) (*models.BondRecord, error)
	GetBond(ctx context.Context, id string) (*models.BondRecord, error)
	ListBonds(ctx context.Context) ([]models.BondRecord, error)
	DeleteBond(ctx context.Context, id string) error
	Schedule(ctx context.Context, id string) (*service.Schedule, error)
	SendReport(ctx context.Context, id string) error
	ReferenceRate(ctx context.Context) (cbr.ReferenceRate, error)
}

type Handler struct {
	svc BondService
	log *logrus.Logger
}

func NewHandler(svc BondService, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// NewRouter wires the public routes and the routes behind auth. The
// calculation routes also pass through limit.
func NewRouter(h *Handler, auth, limit mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/reference-rate", h.ReferenceRate).Methods(http.MethodGet)

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(auth)
	authRouter.HandleFunc("/bonds", h.CreateBond).Methods(http.MethodPost)
	authRouter.HandleFunc("/bonds", h.ListBonds).Methods(http.MethodGet)
	authRouter.HandleFunc("/bonds/{id}", h.GetBond).Methods(http.MethodGet)
	authRouter.HandleFunc("/bonds/{id}", h.DeleteBond).Methods(http.MethodDelete)
	authRouter.HandleFunc("/bonds/{id}/report", h.SendReport).Methods(http.MethodPost)

	calcRouter := authRouter.PathPrefix("/").Subrouter()
	calcRouter.Use(limit)
	calcRouter.HandleFunc("/calculate", h.Calculate).Methods(http.MethodPost)
	calcRouter.HandleFunc("/bonds/{id}/schedule", h.Schedule).Methods(http.MethodGet)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service and engine errors to status codes
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var cfgErr *valuation.ConfigurationError
	var schedErr *valuation.ScheduleError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &cfgErr), errors.As(err, &schedErr):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.WithField("path", r.URL.Path).Errorf("Request failed: %v", err)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decode(w, r, &req) {
		return
	}
	user, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decode(w, r, &req) {
		return
	}
	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

type calculation struct {
	Result *valuation.Result `json:"result"`
	Report report.Report     `json:"report"`
}

// Calculate values an ad-hoc bond without storing it
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var spec models.BondSpecification
	if !decode(w, r, &spec) {
		return
	}
	res, err := h.svc.Calculate(r.Context(), spec)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, calculation{Result: res, Report: report.Render(spec, res)})
}

// CreateBond stores a bond for the current user
func (h *Handler) CreateBond(w http.ResponseWriter, r *http.Request) {
	var spec models.BondSpecification
	if !decode(w, r, &spec) {
		return
	}
	bond, err := h.svc.CreateBond(r.Context(), spec)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bond)
}

// ListBonds returns the bonds of the current user
func (h *Handler) ListBonds(w http.ResponseWriter, r *http.Request) {
	bonds, err := h.svc.ListBonds(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bonds)
}

func (h *Handler) GetBond(w http.ResponseWriter, r *http.Request) {
	bond, err := h.svc.GetBond(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bond)
}

func (h *Handler) DeleteBond(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteBond(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Schedule values a stored bond
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	sched, err := h.svc.Schedule(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

// SendReport mails the schedule of a stored bond to its owner
func (h *Handler) SendReport(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SendReport(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

// ReferenceRate returns the suggested COK
func (h *Handler) ReferenceRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.svc.ReferenceRate(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rate)
}
