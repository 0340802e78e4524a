package repository

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"worktime-bot/internal/models"
)

type HolidayRepository interface {
	BulkUpsert(days []models.Holiday) (int64, error)
	GetInRange(start, end time.Time, regions ...string) ([]models.Holiday, error)
	GetByYear(year int) ([]models.Holiday, error)
	DeleteBySource(source string) error
	Count() (int64, error)
}

type GormHolidayRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormHolidayRepository(db *gorm.DB) (*GormHolidayRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.Holiday{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate holidays table")
		return nil, err
	}

	return &GormHolidayRepository{db: db, logger: logger}, nil
}

// BulkUpsert inserts holidays, updating the description of existing
// (date, region) rows. It returns the number of affected rows.
func (r *GormHolidayRepository) BulkUpsert(days []models.Holiday) (int64, error) {
	if len(days) == 0 {
		return 0, nil
	}
	for i := range days {
		days[i].Date = models.DateKey(days[i].Date)
		days[i].Year = days[i].Date.Year()
	}

	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "region"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "source", "updated_at"}),
	}).CreateInBatches(&days, 200)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to store holidays")
		return 0, result.Error
	}

	r.logger.WithField("count", len(days)).Info("Holidays stored")
	return result.RowsAffected, nil
}

// GetInRange returns holidays between start and end inclusive, optionally
// limited to the given regions.
func (r *GormHolidayRepository) GetInRange(start, end time.Time, regions ...string) ([]models.Holiday, error) {
	var days []models.Holiday
	q := r.db.Where("date >= ? AND date <= ?", models.DateKey(start), models.DateKey(end))
	if len(regions) > 0 {
		q = q.Where("region IN ?", regions)
	}
	err := q.Order("date ASC, region ASC").Find(&days).Error
	return days, err
}

func (r *GormHolidayRepository) GetByYear(year int) ([]models.Holiday, error) {
	var days []models.Holiday
	err := r.db.Where("year = ?", year).Order("date ASC, region ASC").Find(&days).Error
	return days, err
}

func (r *GormHolidayRepository) DeleteBySource(source string) error {
	return r.db.Where("source = ?", source).Delete(&models.Holiday{}).Error
}

func (r *GormHolidayRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Holiday{}).Count(&count).Error
	return count, err
}
