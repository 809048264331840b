package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rm/user-service/utils"
	"go.uber.org/zap"
)

// Recover turns a panic in a downstream handler into the E500 envelope
func Recover(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic recovered",
					zap.String("request_id", GetRequestIDFromContext(r.Context())),
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()))
				_ = utils.WriteInternalServerError(w)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
