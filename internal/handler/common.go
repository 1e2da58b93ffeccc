package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/folio-social/folio-api/internal/middleware"
)

// pathID parses a numeric path parameter. ok is false when the value
// is missing or not a positive integer; callers respond 400.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// logError records a server-side failure with enough context to match
// it to a client report. Internal detail never reaches the response
// body; it lives only in this log line.
func logError(c echo.Context, err error, msg string) {
	log.WithFields(log.Fields{
		"error":      err,
		"request_id": middleware.RequestIDFrom(c),
		"method":     c.Request().Method,
		"path":       c.Path(),
	}).Error(msg)
}
