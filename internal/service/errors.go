package service

import (
	"errors"

	"github.com/sirupsen/logrus"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrNoCredentials   = errors.New("no Odoo credentials stored")
	ErrAccessDenied    = errors.New("access denied: admin only")
	ErrInvalidRegion   = errors.New("unknown region")
	ErrNotConfigured   = errors.New("feature not configured")
	ErrLeaveOverlap    = errors.New("leave overlaps an existing period")
	ErrInvalidArgument = errors.New("invalid argument")
)

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return logger
}
