package utils

import (
	"errors"
	"intake-service/internal/pkg/constvars"
	"intake-service/internal/pkg/dto/responses"
	"intake-service/internal/pkg/exceptions"
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

func BuildSuccessResponse(w http.ResponseWriter, code int, message string, data interface{}) {
	writeJSON(w, code, responses.ResponseDTO{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// BuildErrorResponse writes err as a CustomError envelope. Errors that are not
// a CustomError become a 500 with a generic message. Dev details are only
// included outside production.
func BuildErrorResponse(log *zap.Logger, w http.ResponseWriter, err error) {
	response := exceptions.CustomError{
		StatusCode:    constvars.StatusInternalServerError,
		ClientMessage: constvars.ErrClientSomethingWrongWithApplication,
	}

	var customErr *exceptions.CustomError
	if errors.As(err, &customErr) {
		response.StatusCode = customErr.StatusCode
		response.ClientMessage = customErr.ClientMessage
		logLocations(log, customErr)
	} else {
		log.Error(err.Error())
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		response.StatusCode = constvars.StatusRequestEntityTooLarge
		response.ClientMessage = constvars.ErrClientRequestBodyTooLarge
	}

	if customErr != nil && GetEnvString("APP_ENV", "development") != "production" {
		response.DevMessage = customErr.DevMessage
		response.Locations = customErr.Locations
	}
	writeJSON(w, response.StatusCode, response)
}

func logLocations(log *zap.Logger, customErr *exceptions.CustomError) {
	for _, location := range customErr.Locations {
		log.Error(customErr.DevMessage,
			zap.String("file", location.File),
			zap.Int("line", location.Line),
			zap.String("function_name", location.FunctionName),
		)
	}
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
