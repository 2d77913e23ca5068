// Package repository contains the repository layer for the Tunely API
package repository

import (
	"fmt"
	"time"

	"github.com/tunely/tunelyapi/internal/models"
	"gorm.io/gorm"
)

// StockRepository is the database repository for quote snapshots and
// daily price history
type StockRepository struct {
	DB *gorm.DB
}

// NewStockRepository creates a new stock repository
func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{DB: db}
}

// GetTodayStockData returns the snapshot collected today, if any. The
// same-day check is what keeps snapshots at one per calendar day.
func (r *StockRepository) GetTodayStockData(companyID uint, now time.Time) (*models.StockDataModel, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var stockData models.StockDataModel
	err := r.DB.Where("company_id = ? AND collected_at >= ?", companyID, dayStart).
		First(&stockData).Error
	if err != nil {
		return nil, err
	}
	return &stockData, nil
}

// CreateStockData inserts a new quote snapshot
func (r *StockRepository) CreateStockData(stockData *models.StockDataModel) error {
	return r.DB.Create(stockData).Error
}

// GetStockDataByCompany returns snapshots for a company, newest first
func (r *StockRepository) GetStockDataByCompany(companyID uint) ([]models.StockDataModel, error) {
	var stockData []models.StockDataModel
	err := r.DB.Where("company_id = ?", companyID).
		Order("collected_at DESC").
		Find(&stockData).Error
	if err != nil {
		return nil, err
	}
	return stockData, nil
}

// GetHistoryDates returns the set of trading days already stored for a
// company, keyed by yyyy-mm-dd
func (r *StockRepository) GetHistoryDates(companyID uint) (map[string]bool, error) {
	var rows []models.StockHistoryModel
	err := r.DB.Select("date").
		Where("company_id = ?", companyID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load history dates: %v", err)
	}

	dates := make(map[string]bool, len(rows))
	for _, row := range rows {
		dates[row.Date.Format("2006-01-02")] = true
	}
	return dates, nil
}

// InsertHistory inserts the staged history points in one batch
func (r *StockRepository) InsertHistory(points []models.StockHistoryModel) (int64, error) {
	if len(points) == 0 {
		return 0, nil
	}
	result := r.DB.CreateInBatches(points, 200)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to insert history batch: %v", result.Error)
	}
	return result.RowsAffected, nil
}

// GetHistoryRange returns history points within [from, to], ascending by date
func (r *StockRepository) GetHistoryRange(companyID uint, from, to time.Time) ([]models.StockHistoryModel, error) {
	var points []models.StockHistoryModel
	err := r.DB.Where("company_id = ? AND date >= ? AND date <= ?", companyID, from, to).
		Order("date ASC").
		Find(&points).Error
	if err != nil {
		return nil, err
	}
	return points, nil
}

// CountHistoryByCompany returns the number of history points stored for a company
func (r *StockRepository) CountHistoryByCompany(companyID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&models.StockHistoryModel{}).
		Where("company_id = ?", companyID).
		Count(&count).Error
	return count, err
}
