// Package repository contains the repository layer for the Tunely API
package repository

import (
	"fmt"

	"github.com/tunely/tunelyapi/internal/models"
	"gorm.io/gorm"
)

// FinancialRepository is the database repository for financial statements
type FinancialRepository struct {
	DB *gorm.DB
}

// NewFinancialRepository creates a new financial repository
func NewFinancialRepository(db *gorm.DB) *FinancialRepository {
	return &FinancialRepository{DB: db}
}

// Period identifies one collected (year, quarter) pair
type Period struct {
	Year    int
	Quarter int
}

// GetCollectedPeriods returns every (year, quarter) pair already stored for a
// company. The collector uses this to skip periods without touching the
// disclosure API again.
func (r *FinancialRepository) GetCollectedPeriods(companyID uint) (map[Period]bool, error) {
	var rows []Period
	err := r.DB.Model(&models.FinancialModel{}).
		Select("year", "quarter").
		Where("company_id = ?", companyID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load collected periods: %v", err)
	}

	periods := make(map[Period]bool, len(rows))
	for _, row := range rows {
		periods[row] = true
	}
	return periods, nil
}

// GetByCompanyYearQuarter returns the statement for one period
func (r *FinancialRepository) GetByCompanyYearQuarter(companyID uint, year, quarter int) (*models.FinancialModel, error) {
	var financial models.FinancialModel
	err := r.DB.Where("company_id = ? AND year = ? AND quarter = ?", companyID, year, quarter).
		First(&financial).Error
	if err != nil {
		return nil, err
	}
	return &financial, nil
}

// GetByCompany returns all statements for a company, newest period first
func (r *FinancialRepository) GetByCompany(companyID uint) ([]models.FinancialModel, error) {
	var financials []models.FinancialModel
	err := r.DB.Where("company_id = ?", companyID).
		Order("year DESC, quarter DESC").
		Find(&financials).Error
	if err != nil {
		return nil, err
	}
	return financials, nil
}

// InsertFinancials inserts the staged statements in one batch
func (r *FinancialRepository) InsertFinancials(financials []models.FinancialModel) (int64, error) {
	if len(financials) == 0 {
		return 0, nil
	}
	result := r.DB.CreateInBatches(financials, 100)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to insert financials batch: %v", result.Error)
	}
	return result.RowsAffected, nil
}

// CountByCompany returns the number of statements stored for a company
func (r *FinancialRepository) CountByCompany(companyID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&models.FinancialModel{}).
		Where("company_id = ?", companyID).
		Count(&count).Error
	return count, err
}
