package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"usuarios-service/models"
	"usuarios-service/services"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

// UserHandler serves the /usuarios resource.
type UserHandler struct {
	users    *services.UserService
	validate *validator.Validate
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *services.UserService) *UserHandler {
	validate := validator.New()
	// report fields by their JSON name
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &UserHandler{
		users:    users,
		validate: validate,
	}
}

// Register handles POST /usuarios/cadastrar
func (h *UserHandler) Register(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeUser(ctx, w, r)
	if !ok {
		return
	}

	logRequest(ctx, "info", "Registering user", zap.String("email", req.Email))

	user, err := h.users.Register(ctx, req)
	if errors.Is(err, services.ErrUserExists) {
		logRequest(ctx, "info", "User already exists", zap.String("email", req.Email))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("User already exists"))
		return
	}
	if err != nil {
		logRequest(ctx, "error", "Failed to register user", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to register user"))
		return
	}

	logRequest(ctx, "info", "User registered successfully", zap.Int64("user_id", user.ID))
	writeJSON(w, http.StatusCreated, user)
}

// Update handles PUT /usuarios/atualizar
func (h *UserHandler) Update(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeUser(ctx, w, r)
	if !ok {
		return
	}
	if req.ID <= 0 {
		logRequest(ctx, "error", "Missing user ID")
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("id is required"))
		return
	}

	logRequest(ctx, "info", "Updating user", zap.Int64("user_id", req.ID))

	user, err := h.users.Update(ctx, req)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		logRequest(ctx, "info", "User not found for update", zap.Int64("user_id", req.ID))
		writeJSON(w, http.StatusNotFound, errs.NewNotFoundError("User not found"))
		return
	case errors.Is(err, services.ErrUserExists):
		logRequest(ctx, "info", "Email taken by another user", zap.Int64("user_id", req.ID))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("User already exists"))
		return
	case err != nil:
		logRequest(ctx, "error", "Failed to update user", zap.Error(err), zap.Int64("user_id", req.ID))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Failed to update user"))
		return
	}

	logRequest(ctx, "info", "User updated successfully", zap.Int64("user_id", user.ID))
	writeJSON(w, http.StatusOK, user)
}

// GetAll handles GET /usuarios/all
func (h *UserHandler) GetAll(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(ctx, "info", "Listing users")

	users, err := h.users.List(ctx)
	if err != nil {
		logRequest(ctx, "error", "Failed to list users", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	logRequest(ctx, "info", "Users retrieved successfully", zap.Int("count", len(users)))
	writeJSON(w, http.StatusOK, users)
}

// GetByID handles GET /usuarios/{id}
func (h *UserHandler) GetByID(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		logRequest(ctx, "error", "Invalid user ID", zap.String("id", idStr))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Invalid user ID"))
		return
	}

	logRequest(ctx, "info", "Getting user", zap.Int64("user_id", id))

	user, err := h.users.Get(ctx, id)
	if errors.Is(err, services.ErrUserNotFound) {
		logRequest(ctx, "info", "User not found", zap.Int64("user_id", id))
		writeJSON(w, http.StatusNotFound, errs.NewNotFoundError("User not found"))
		return
	}
	if err != nil {
		logRequest(ctx, "error", "Failed to query user", zap.Error(err), zap.Int64("user_id", id))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	logRequest(ctx, "info", "User retrieved successfully", zap.Int64("user_id", id))
	writeJSON(w, http.StatusOK, user)
}

// Login handles POST /usuarios/logar
func (h *UserHandler) Login(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(ctx, "info", "Login request")

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(ctx, "error", "Invalid login body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Invalid JSON"))
		return
	}
	if req.Email == "" || req.Password == "" {
		logRequest(ctx, "error", "Missing credentials")
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("usuario and senha are required"))
		return
	}

	resp, err := h.users.Login(ctx, req)
	if errors.Is(err, services.ErrInvalidCredentials) {
		logRequest(ctx, "error", "Invalid credentials", zap.String("email", req.Email))
		writeJSON(w, http.StatusUnauthorized, errs.NewAuthenticationError("Invalid credentials"))
		return
	}
	if err != nil {
		logRequest(ctx, "error", "Login failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Server error"))
		return
	}

	logRequest(ctx, "info", "Login successful", zap.Int64("user_id", resp.ID))
	writeJSON(w, http.StatusOK, resp)
}

// decodeUser reads and validates a UserRequest, writing the 400 itself on failure.
func (h *UserHandler) decodeUser(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.UserRequest, bool) {
	var req models.UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(ctx, "error", "Invalid request body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Invalid JSON"))
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		msg := validationMessage(err)
		logRequest(ctx, "error", "Invalid user", zap.String("reason", msg))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError(msg))
		return req, false
	}
	return req, true
}

// validationMessage names the failing fields by their JSON name.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: failed %q", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
