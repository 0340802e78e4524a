package repository

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"worktime-bot/internal/models"
)

type HalfDayRepository interface {
	Upsert(day *models.HalfDay) error
	GetInRange(start, end time.Time) ([]models.HalfDay, error)
	GetAll() ([]models.HalfDay, error)
	DeleteByDate(date time.Time) error
}

type GormHalfDayRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormHalfDayRepository(db *gorm.DB) (*GormHalfDayRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.HalfDay{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate half_days table")
		return nil, err
	}

	return &GormHalfDayRepository{db: db, logger: logger}, nil
}

func (r *GormHalfDayRepository) Upsert(day *models.HalfDay) error {
	day.Date = models.DateKey(day.Date)
	if !day.Value.IsPositive() {
		return ErrInvalidData
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"mode", "value", "description", "updated_at"}),
	}).Create(day).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to save half day")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"date":  day.Date.Format("2006-01-02"),
		"mode":  day.Mode,
		"value": day.Value.String(),
	}).Info("Half day saved")
	return nil
}

func (r *GormHalfDayRepository) GetInRange(start, end time.Time) ([]models.HalfDay, error) {
	var days []models.HalfDay
	err := r.db.Where("date >= ? AND date <= ?", models.DateKey(start), models.DateKey(end)).
		Order("date ASC").Find(&days).Error
	return days, err
}

func (r *GormHalfDayRepository) GetAll() ([]models.HalfDay, error) {
	var days []models.HalfDay
	err := r.db.Order("date ASC").Find(&days).Error
	return days, err
}

func (r *GormHalfDayRepository) DeleteByDate(date time.Time) error {
	return r.db.Where("date = ?", models.DateKey(date)).Delete(&models.HalfDay{}).Error
}
