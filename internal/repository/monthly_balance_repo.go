package repository

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"worktime-bot/internal/models"
)

type MonthlyBalanceRepository interface {
	Upsert(mb *models.MonthlyBalance) error
	GetByUserID(userID uint) ([]*models.MonthlyBalance, error)
	GetByUserAndMonth(userID uint, year, month int) (*models.MonthlyBalance, error)
	DeleteByUserID(userID uint) error
}

type GormMonthlyBalanceRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormMonthlyBalanceRepository(db *gorm.DB) (*GormMonthlyBalanceRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.MonthlyBalance{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate monthly_balances table")
		return nil, err
	}

	logger.Info("Monthly balance repository initialized")
	return &GormMonthlyBalanceRepository{db: db, logger: logger}, nil
}

func (r *GormMonthlyBalanceRepository) Upsert(mb *models.MonthlyBalance) error {
	fields := logrus.Fields{
		"user_id": mb.UserID,
		"year":    mb.Year,
		"month":   mb.Month,
	}

	if !mb.IsValid() {
		r.logger.WithFields(fields).Warn("Invalid monthly balance data")
		return ErrInvalidData
	}
	mb.Recalculate()

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "year"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"expected_hours", "actual_hours", "difference_hours",
			"holiday_days", "leave_days", "report_id", "updated_at",
		}),
	}).Create(mb).Error
	if err != nil {
		r.logger.WithError(err).WithFields(fields).Error("Failed to save monthly balance")
		return err
	}

	r.logger.WithFields(fields).Debug("Monthly balance saved")
	return nil
}

func (r *GormMonthlyBalanceRepository) GetByUserID(userID uint) ([]*models.MonthlyBalance, error) {
	var all []*models.MonthlyBalance
	err := r.db.Where("user_id = ?", userID).Order("year ASC, month ASC").Find(&all).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to get monthly balances by user ID")
		return nil, err
	}
	return all, nil
}

func (r *GormMonthlyBalanceRepository) GetByUserAndMonth(userID uint, year, month int) (*models.MonthlyBalance, error) {
	var mb models.MonthlyBalance
	result := r.db.Where("user_id = ? AND year = ? AND month = ?", userID, year, month).First(&mb)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &mb, nil
}

func (r *GormMonthlyBalanceRepository) DeleteByUserID(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.MonthlyBalance{}).Error
}
