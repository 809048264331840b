package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rm/user-service/middleware"
	"github.com/rm/user-service/models"
	"github.com/rm/user-service/services"
	"github.com/rm/user-service/utils"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// SignInRequest represents a sign-in request
type SignInRequest struct {
	UID      string `json:"uid" validate:"notblank"`
	Password string `json:"password" validate:"required,password"`
}

// SignUpRequest represents a sign-up request
type SignUpRequest struct {
	UID         string   `json:"uid" validate:"notblank,max=64"`
	Password    string   `json:"password" validate:"required,password"`
	Name        string   `json:"name" validate:"notblank,max=100"`
	PhoneNumber string   `json:"phoneNumber" validate:"omitempty,phone"`
	Email       string   `json:"email" validate:"required,email"`
	Roles       []string `json:"roles" validate:"required,dive,notblank"`
}

// UpdateUserRequest represents a profile update. UID is accepted for compatibility but never changes.
type UpdateUserRequest struct {
	UID         string `json:"uid"`
	Password    string `json:"password" validate:"required,password"`
	Name        string `json:"name" validate:"notblank,max=100"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,phone"`
}

// ProfileResponse represents a user in API responses
type ProfileResponse struct {
	User        models.UserSummary `json:"user"`
	PhoneNumber string             `json:"phoneNumber"`
	Email       string             `json:"email"`
}

// UserService defines the account operations behind the user endpoints
type UserService interface {
	ExistsByUID(ctx context.Context, uid string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	SignUp(ctx context.Context, in services.SignUpInput) (*models.User, error)
	SignIn(ctx context.Context, uid, password string) (*services.SignInResult, error)
	Update(ctx context.Context, id uuid.UUID, in services.UpdateInput) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	service UserService
	logger  *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

// HandleUIDExists handles GET /auth/uid/{uid}
func (h *UserHandler) HandleUIDExists(w http.ResponseWriter, r *http.Request) {
	exists, err := h.service.ExistsByUID(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteSuccess(w, exists)
}

// HandleEmailExists handles GET /auth/email/{email}
func (h *UserHandler) HandleEmailExists(w http.ResponseWriter, r *http.Request) {
	exists, err := h.service.ExistsByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteSuccess(w, exists)
}

// HandleSignIn handles POST /auth/signin
func (h *UserHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.SignIn(r.Context(), req.UID, req.Password)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteSuccess(w, result)
}

// HandleSignUp handles POST /auth/signup
func (h *UserHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.service.SignUp(r.Context(), services.SignUpInput{
		UID:         req.UID,
		Password:    req.Password,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Roles:       req.Roles,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteSuccess(w, toProfileResponse(user))
}

// HandleGetUser handles GET /id/{id}
func (h *UserHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteSuccess(w, toProfileResponse(user))
}

// HandleUpdateUser handles PUT /id/{id}
func (h *UserHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.service.Update(r.Context(), id, services.UpdateInput{
		Password:    req.Password,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteSuccess(w, toProfileResponse(user))
}

// HandleDeleteUser handles DELETE /id/{id}
func (h *UserHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteSuccess(w, nil)
}

// decode reads and validates a JSON body, writing the 400 envelope on failure
func (h *UserHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	requestID := middleware.GetRequestIDFromContext(r.Context())

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return false
	}

	if err := utils.ValidateStruct(dst); err != nil {
		h.logger.Info("request validation failed",
			zap.String("request_id", requestID),
			zap.Any("fields", utils.GetValidationFields(err)))
		HandleValidationError(w, err, h.logger)
		return false
	}
	return true
}

func (h *UserHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, map[string]string{"id": "id must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func toProfileResponse(u *models.User) ProfileResponse {
	return ProfileResponse{
		User:        u.Summary(),
		PhoneNumber: u.PhoneNumber,
		Email:       u.Email,
	}
}
