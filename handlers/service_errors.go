package handlers

import (
	"net/http"

	"github.com/rm/user-service/services"
	"github.com/rm/user-service/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to the response envelope.
// Only the code and its fixed message reach the client; the wrapped cause is logged.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	code := services.GetErrorCode(err)

	switch {
	case code.Status >= http.StatusInternalServerError:
		logger.Error("internal server error",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
	default:
		logger.Debug("handled service error",
			zap.String("code", code.Code),
			zap.String("error_type", string(services.GetErrorType(err))),
			zap.Error(err))
	}

	if err := utils.WriteFail(w, code); err != nil {
		logger.Error("failed to write error response", zap.Error(err))
	}
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if utils.IsValidationError(err) {
		if err := utils.WriteBadRequest(w, utils.GetValidationFields(err)); err != nil {
			logger.Error("failed to write validation error response", zap.Error(err))
		}
		return
	}

	// Malformed body
	HandleServiceError(w, services.ErrInvalidInput.Wrap(err), logger)
}
