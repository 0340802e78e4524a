package repository

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"worktime-bot/internal/models"
)

type WorkScheduleRepository interface {
	Upsert(ws *models.WorkSchedule) error
	GetByUserID(userID uint) (*models.WorkSchedule, error)
	GetAll() ([]*models.WorkSchedule, error)
	DeleteByUserID(userID uint) error
}

type GormWorkScheduleRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormWorkScheduleRepository(db *gorm.DB) (*GormWorkScheduleRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.WorkSchedule{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate work_schedules table")
		return nil, err
	}

	return &GormWorkScheduleRepository{db: db, logger: logger}, nil
}

// Upsert replaces the user's schedule.
func (r *GormWorkScheduleRepository) Upsert(ws *models.WorkSchedule) error {
	if !ws.IsValid() {
		r.logger.WithField("user_id", ws.UserID).Warn("Invalid work schedule data")
		return ErrInvalidData
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"kind", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
			"week_start", "updated_at",
		}),
	}).Create(ws).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to save work schedule")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"user_id": ws.UserID,
		"kind":    ws.Kind,
	}).Info("Work schedule saved")
	return nil
}

func (r *GormWorkScheduleRepository) GetByUserID(userID uint) (*models.WorkSchedule, error) {
	var ws models.WorkSchedule
	result := r.db.Where("user_id = ?", userID).First(&ws)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &ws, nil
}

func (r *GormWorkScheduleRepository) GetAll() ([]*models.WorkSchedule, error) {
	var all []*models.WorkSchedule
	if err := r.db.Order("user_id ASC").Find(&all).Error; err != nil {
		return nil, err
	}
	return all, nil
}

func (r *GormWorkScheduleRepository) DeleteByUserID(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.WorkSchedule{}).Error
}
