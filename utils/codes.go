package utils

// ErrorCode pairs an HTTP status with the machine-readable code and message written in the envelope
type ErrorCode struct {
	Status int
	Code   string
	Msg    string
}

// Response codes. Codes are stable; messages are English.
var (
	CodeSuccess = ErrorCode{Status: 200, Code: "S001", Msg: "success"}

	CodeNotAuthenticated = ErrorCode{Status: 401, Code: "AUTH-001", Msg: "authentication is required"}
	CodeAccessDenied     = ErrorCode{Status: 403, Code: "AUTH-002", Msg: "access is denied"}
	CodeIdentityMissing  = ErrorCode{Status: 401, Code: "AUTH-003", Msg: "caller identity is missing"}

	CodeCredentialMismatch = ErrorCode{Status: 403, Code: "E101", Msg: "uid or password does not match"}
	CodeUserNotFound       = ErrorCode{Status: 404, Code: "E102", Msg: "user not found"}
	CodeDuplicateUID       = ErrorCode{Status: 409, Code: "E103", Msg: "uid is already in use"}
	CodeDuplicateEmail     = ErrorCode{Status: 409, Code: "E104", Msg: "email is already in use"}
	CodeInvalidInput       = ErrorCode{Status: 400, Code: "E400", Msg: "invalid input"}
	CodeRouteNotFound      = ErrorCode{Status: 404, Code: "E404", Msg: "route not found"}
	CodeMethodNotAllowed   = ErrorCode{Status: 405, Code: "E405", Msg: "method not allowed"}
	CodeInternal           = ErrorCode{Status: 500, Code: "E500", Msg: "internal server error"}
	CodeUnavailable        = ErrorCode{Status: 503, Code: "E503", Msg: "service unavailable"}
)
