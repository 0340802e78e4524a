package repository

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidData  = errors.New("invalid data")
)

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return logger
}

// Open opens the sqlite database at dsn and enables foreign keys.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		logrus.Warnf("Failed to enable foreign keys: %v", err)
	}
	// sqlite allows a single writer
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// Repositories bundles every repository of the bot.
type Repositories struct {
	Users      UserRepository
	Schedules  WorkScheduleRepository
	Holidays   HolidayRepository
	Leaves     LeaveRepository
	HalfDays   HalfDayRepository
	Attendance AttendanceRepository
	Balances   MonthlyBalanceRepository
}

// NewRepositories migrates all tables and builds the repositories.
func NewRepositories(db *gorm.DB) (*Repositories, error) {
	users, err := NewGormUserRepository(db)
	if err != nil {
		return nil, fmt.Errorf("user repository: %w", err)
	}
	schedules, err := NewGormWorkScheduleRepository(db)
	if err != nil {
		return nil, fmt.Errorf("work schedule repository: %w", err)
	}
	holidays, err := NewGormHolidayRepository(db)
	if err != nil {
		return nil, fmt.Errorf("holiday repository: %w", err)
	}
	leaves, err := NewGormLeaveRepository(db)
	if err != nil {
		return nil, fmt.Errorf("leave repository: %w", err)
	}
	halfDays, err := NewGormHalfDayRepository(db)
	if err != nil {
		return nil, fmt.Errorf("half day repository: %w", err)
	}
	attendance, err := NewGormAttendanceRepository(db)
	if err != nil {
		return nil, fmt.Errorf("attendance repository: %w", err)
	}
	balances, err := NewGormMonthlyBalanceRepository(db)
	if err != nil {
		return nil, fmt.Errorf("monthly balance repository: %w", err)
	}

	return &Repositories{
		Users:      users,
		Schedules:  schedules,
		Holidays:   holidays,
		Leaves:     leaves,
		HalfDays:   halfDays,
		Attendance: attendance,
		Balances:   balances,
	}, nil
}
