package logging

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// Middleware wraps an http.Handler, attaches a fresh LogData to the request
// context, and logs one structured line per request with accumulated
// timings and fields.
func Middleware(log *logrus.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		logData := NewLogData(log)
		logData.AddData("method", req.Method)
		logData.AddData("path", req.URL.Path)

		endTimer := logData.AddTiming("duration")

		next.ServeHTTP(w, req.WithContext(WithLogData(req.Context(), logData)))

		endTimer()
		logData.Log().Info("Request.Complete")
	})
}
