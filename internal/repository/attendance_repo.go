package repository

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"worktime-bot/internal/models"
)

type AttendanceRepository interface {
	ReplaceInRange(userID uint, start, end time.Time, rows []models.Attendance) error
	GetInRange(userID uint, start, end time.Time) ([]models.Attendance, error)
	GetLatest(userID uint, limit int) ([]models.Attendance, error)
	CountByUserID(userID uint) (int64, error)
	DeleteByUserID(userID uint) error
}

type GormAttendanceRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormAttendanceRepository(db *gorm.DB) (*GormAttendanceRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.Attendance{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate attendances table")
		return nil, err
	}

	logger.Info("Attendance repository initialized")
	return &GormAttendanceRepository{db: db, logger: logger}, nil
}

// ReplaceInRange deletes the user's rows whose date lies in [start, end]
// and inserts rows in their place. Dates are calendar dates.
func (r *GormAttendanceRepository) ReplaceInRange(userID uint, start, end time.Time, rows []models.Attendance) error {
	from, to := models.DateKey(start), models.DateKey(end)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
			Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].UserID = userID
			rows[i].Date = models.DateKey(rows[i].CheckIn)
			rows[i].CheckIn = rows[i].CheckIn.UTC()
			rows[i].CheckOut = rows[i].CheckOut.UTC()
		}
		return tx.CreateInBatches(&rows, 200).Error
	})
	if err != nil {
		r.logger.WithError(err).WithField("user_id", userID).Error("Failed to replace attendance")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"from":    from.Format("2006-01-02"),
		"to":      to.Format("2006-01-02"),
		"rows":    len(rows),
	}).Info("Attendance replaced")
	return nil
}

// GetInRange returns rows whose date lies in [start, end], ordered by check-in.
func (r *GormAttendanceRepository) GetInRange(userID uint, start, end time.Time) ([]models.Attendance, error) {
	var rows []models.Attendance
	err := r.db.Where("user_id = ? AND date >= ? AND date <= ?", userID, models.DateKey(start), models.DateKey(end)).
		Order("check_in ASC").Find(&rows).Error
	return rows, err
}

func (r *GormAttendanceRepository) GetLatest(userID uint, limit int) ([]models.Attendance, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []models.Attendance
	err := r.db.Where("user_id = ?", userID).Order("check_in DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *GormAttendanceRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Attendance{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *GormAttendanceRepository) DeleteByUserID(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.Attendance{}).Error
}
