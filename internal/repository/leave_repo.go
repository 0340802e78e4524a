package repository

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"worktime-bot/internal/models"
)

type LeaveRepository interface {
	Create(leave *models.LeavePeriod) error
	GetByID(id uint) (*models.LeavePeriod, error)
	GetByUserID(userID uint) ([]models.LeavePeriod, error)
	GetOverlapping(userID uint, start, end time.Time) ([]models.LeavePeriod, error)
	ReplaceBySource(userID uint, source string, leaves []models.LeavePeriod) error
	Delete(userID, id uint) error
}

type GormLeaveRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormLeaveRepository(db *gorm.DB) (*GormLeaveRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.LeavePeriod{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate leave_periods table")
		return nil, err
	}

	return &GormLeaveRepository{db: db, logger: logger}, nil
}

func normalizeLeave(l *models.LeavePeriod) {
	l.StartDate = models.DateKey(l.StartDate)
	l.EndDate = models.DateKey(l.EndDate)
}

func (r *GormLeaveRepository) Create(leave *models.LeavePeriod) error {
	normalizeLeave(leave)
	if !leave.IsValid() {
		return ErrInvalidData
	}
	if err := r.db.Create(leave).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create leave period")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"user_id": leave.UserID,
		"kind":    leave.Kind,
		"start":   leave.StartDate.Format("2006-01-02"),
		"end":     leave.EndDate.Format("2006-01-02"),
	}).Info("Leave period created")
	return nil
}

func (r *GormLeaveRepository) GetByID(id uint) (*models.LeavePeriod, error) {
	var leave models.LeavePeriod
	result := r.db.First(&leave, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &leave, nil
}

func (r *GormLeaveRepository) GetByUserID(userID uint) ([]models.LeavePeriod, error) {
	var leaves []models.LeavePeriod
	err := r.db.Where("user_id = ?", userID).Order("start_date ASC").Find(&leaves).Error
	return leaves, err
}

// GetOverlapping returns periods that touch [start, end].
func (r *GormLeaveRepository) GetOverlapping(userID uint, start, end time.Time) ([]models.LeavePeriod, error) {
	var leaves []models.LeavePeriod
	err := r.db.Where("user_id = ? AND start_date <= ? AND end_date >= ?",
		userID, models.DateKey(end), models.DateKey(start)).
		Order("start_date ASC, id ASC").
		Find(&leaves).Error
	return leaves, err
}

// ReplaceBySource swaps all periods of one source in a single transaction,
// so a sync never leaves a half-written state.
func (r *GormLeaveRepository) ReplaceBySource(userID uint, source string, leaves []models.LeavePeriod) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND source = ?", userID, source).Delete(&models.LeavePeriod{}).Error; err != nil {
			return err
		}
		if len(leaves) == 0 {
			return nil
		}
		for i := range leaves {
			leaves[i].UserID = userID
			leaves[i].Source = source
			normalizeLeave(&leaves[i])
		}
		return tx.CreateInBatches(&leaves, 200).Error
	})
}

func (r *GormLeaveRepository) Delete(userID, id uint) error {
	result := r.db.Where("user_id = ? AND id = ?", userID, id).Delete(&models.LeavePeriod{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
