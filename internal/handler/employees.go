package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cafe-republic/api/internal/database"
	"github.com/cafe-republic/api/internal/enum"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/bcrypt"
)

// EmployeeStore defines the database methods needed by employee handlers.
type EmployeeStore interface {
	ListEmployees(ctx context.Context) ([]database.Employee, error)
	GetEmployee(ctx context.Context, id uuid.UUID) (database.Employee, error)
	CreateEmployee(ctx context.Context, arg database.CreateEmployeeParams) (database.Employee, error)
	UpdateEmployee(ctx context.Context, arg database.UpdateEmployeeParams) (database.Employee, error)
	SetEmployeeActive(ctx context.Context, arg database.SetEmployeeActiveParams) (database.Employee, error)
	SetEmployeePassword(ctx context.Context, arg database.SetEmployeePasswordParams) error
	DeleteEmployee(ctx context.Context, id uuid.UUID) error
}

// EmployeeHandler handles employee management endpoints.
type EmployeeHandler struct {
	store EmployeeStore
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(store EmployeeStore) *EmployeeHandler {
	return &EmployeeHandler{store: store}
}

// --- Request / Response types ---

type createEmployeeRequest struct {
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Password   string `json:"password"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`
}

type updateEmployeeRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

type setActiveRequest struct {
	IsActive bool `json:"is_active"`
}

type setPasswordRequest struct {
	Password string `json:"password"`
}

// employeeResponse never carries the password hash.
type employeeResponse struct {
	ID         uuid.UUID `json:"id"`
	EmployeeID string    `json:"employee_id"`
	FullName   string    `json:"full_name"`
	Email      *string   `json:"email"`
	Phone      *string   `json:"phone"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// --- Handlers ---

// List handles GET /admin/employees.
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.store.ListEmployees(r.Context())
	if err != nil {
		log.Printf("ERROR: list employees: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]employeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = toEmployeeResponse(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /admin/employees/{id}.
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEmployeeID(w, r)
	if !ok {
		return
	}

	employee, err := h.store.GetEmployee(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "employee not found"})
			return
		}
		log.Printf("ERROR: get employee: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeResponse(employee))
}

// Create handles POST /admin/employees.
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.EmployeeID))
	if code == "" || req.FullName == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "employee_id, full_name and password are required"})
		return
	}
	if len(req.Password) < 8 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password must be at least 8 characters"})
		return
	}
	if !enum.IsValidRole(req.Role) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: hash password: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	params := database.CreateEmployeeParams{
		EmployeeID:     code,
		FullName:       req.FullName,
		HashedPassword: string(hashed),
		Role:           req.Role,
	}
	if req.Email != "" {
		params.Email = pgtype.Text{String: req.Email, Valid: true}
	}
	if req.Phone != "" {
		params.Phone = pgtype.Text{String: req.Phone, Valid: true}
	}

	employee, err := h.store.CreateEmployee(r.Context(), params)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "employee ID already exists"})
			return
		}
		log.Printf("ERROR: create employee: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeResponse(employee))
}

// Update handles PUT /admin/employees/{id}. Employee code and password
// are not updatable here; password has its own endpoint.
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEmployeeID(w, r)
	if !ok {
		return
	}

	var req updateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.FullName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "full_name is required"})
		return
	}
	if !enum.IsValidRole(req.Role) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role"})
		return
	}

	params := database.UpdateEmployeeParams{
		ID:       id,
		FullName: req.FullName,
		Role:     req.Role,
	}
	if req.Email != "" {
		params.Email = pgtype.Text{String: req.Email, Valid: true}
	}
	if req.Phone != "" {
		params.Phone = pgtype.Text{String: req.Phone, Valid: true}
	}

	employee, err := h.store.UpdateEmployee(r.Context(), params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "employee not found"})
			return
		}
		log.Printf("ERROR: update employee: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeResponse(employee))
}

// SetActive handles PATCH /admin/employees/{id}/active. Deactivation
// takes effect on the next token validation.
func (h *EmployeeHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEmployeeID(w, r)
	if !ok {
		return
	}

	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	employee, err := h.store.SetEmployeeActive(r.Context(), database.SetEmployeeActiveParams{
		ID:       id,
		IsActive: req.IsActive,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "employee not found"})
			return
		}
		log.Printf("ERROR: set employee active: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeResponse(employee))
}

// SetPassword handles PATCH /admin/employees/{id}/password.
func (h *EmployeeHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEmployeeID(w, r)
	if !ok {
		return
	}

	var req setPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if len(req.Password) < 8 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password must be at least 8 characters"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: hash password: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := h.store.SetEmployeePassword(r.Context(), database.SetEmployeePasswordParams{
		ID:             id,
		HashedPassword: string(hashed),
	}); err != nil {
		log.Printf("ERROR: set employee password: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

// Delete handles DELETE /admin/employees/{id}.
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEmployeeID(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteEmployee(r.Context(), id); err != nil {
		log.Printf("ERROR: delete employee: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Helpers ---

func parseEmployeeID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid employee ID"})
		return uuid.Nil, false
	}
	return id, true
}

func toEmployeeResponse(e database.Employee) employeeResponse {
	resp := employeeResponse{
		ID:         e.ID,
		EmployeeID: e.EmployeeID,
		FullName:   e.FullName,
		Role:       e.Role,
		IsActive:   e.IsActive,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
	if e.Email.Valid {
		resp.Email = &e.Email.String
	}
	if e.Phone.Valid {
		resp.Phone = &e.Phone.String
	}
	return resp
}
