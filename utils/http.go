package utils

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Response is the envelope written for every response, success or failure
type Response struct {
	Success bool        `json:"success"`
	Status  string      `json:"status"`
	Code    string      `json:"code"`
	Msg     string      `json:"msg"`
	Data    interface{} `json:"data"`
}

// StatusName renders an HTTP status as an upper snake case name, e.g. 401 -> "UNAUTHORIZED"
func StatusName(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(strings.ReplaceAll(strings.ReplaceAll(text, "-", "_"), " ", "_"))
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a 200 envelope carrying data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, CodeSuccess.Status, Response{
		Success: true,
		Status:  StatusName(CodeSuccess.Status),
		Code:    CodeSuccess.Code,
		Msg:     CodeSuccess.Msg,
		Data:    data,
	})
}

// WriteFail writes a failure envelope for code with a null data field
func WriteFail(w http.ResponseWriter, code ErrorCode) error {
	return WriteFailWithData(w, code, nil)
}

// WriteFailWithData writes a failure envelope for code carrying data, e.g. field validation messages
func WriteFailWithData(w http.ResponseWriter, code ErrorCode, data interface{}) error {
	return WriteJSON(w, code.Status, Response{
		Success: false,
		Status:  StatusName(code.Status),
		Code:    code.Code,
		Msg:     code.Msg,
		Data:    data,
	})
}

// WriteNotFound writes the route-not-found envelope
func WriteNotFound(w http.ResponseWriter) error {
	return WriteFail(w, CodeRouteNotFound)
}

// WriteMethodNotAllowed writes the method-not-allowed envelope
func WriteMethodNotAllowed(w http.ResponseWriter) error {
	return WriteFail(w, CodeMethodNotAllowed)
}

// WriteBadRequest writes the invalid-input envelope with per-field messages
func WriteBadRequest(w http.ResponseWriter, fields map[string]string) error {
	if len(fields) == 0 {
		return WriteFail(w, CodeInvalidInput)
	}
	return WriteFailWithData(w, CodeInvalidInput, fields)
}

// WriteInternalServerError writes the catch-all server error envelope
func WriteInternalServerError(w http.ResponseWriter) error {
	return WriteFail(w, CodeInternal)
}
