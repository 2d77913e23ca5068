// Package repository contains the repository layer for the Tunely API
package repository

import (
	"github.com/tunely/tunelyapi/internal/models"
	"gorm.io/gorm"
)

// CompanyRepository is the database repository for companies
type CompanyRepository struct {
	DB *gorm.DB
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{DB: db}
}

// GetByID returns a company by its primary key
func (r *CompanyRepository) GetByID(id uint) (*models.CompanyModel, error) {
	var company models.CompanyModel
	if err := r.DB.First(&company, id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// GetByCorpCode returns a company by its corp code
func (r *CompanyRepository) GetByCorpCode(corpCode string) (*models.CompanyModel, error) {
	var company models.CompanyModel
	if err := r.DB.Where("corp_code = ?", corpCode).First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// Create inserts a new company
func (r *CompanyRepository) Create(company *models.CompanyModel) error {
	return r.DB.Create(company).Error
}

// GetByIDWithRelations returns a company with its collected data populated:
// financials newest period first, quote snapshots newest first, history in
// date order.
func (r *CompanyRepository) GetByIDWithRelations(id uint) (*models.CompanyModel, error) {
	var company models.CompanyModel
	err := r.DB.
		Preload("Financials", func(db *gorm.DB) *gorm.DB {
			return db.Order("year DESC, quarter DESC")
		}).
		Preload("StockData", func(db *gorm.DB) *gorm.DB {
			return db.Order("collected_at DESC")
		}).
		Preload("StockHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("date ASC")
		}).
		First(&company, id).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// GetAll returns every registered company
func (r *CompanyRepository) GetAll() ([]models.CompanyModel, error) {
	var companies []models.CompanyModel
	if err := r.DB.Order("id ASC").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}
