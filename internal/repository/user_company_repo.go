// Package repository contains the repository layer for the Tunely API
package repository

import (
	"github.com/tunely/tunelyapi/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserCompanyRepository is the database repository for user-company links
type UserCompanyRepository struct {
	DB *gorm.DB
}

// NewUserCompanyRepository creates a new user-company repository
func NewUserCompanyRepository(db *gorm.DB) *UserCompanyRepository {
	return &UserCompanyRepository{DB: db}
}

// GetByUserAndCompany returns the link between a user and a company
func (r *UserCompanyRepository) GetByUserAndCompany(userID string, companyID uint) (*models.UserCompanyModel, error) {
	var link models.UserCompanyModel
	err := r.DB.Where("user_id = ? AND company_id = ?", userID, companyID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// CreateIfAbsent inserts the link unless the (user, company) pair already
// exists; concurrent registrations collapse onto the unique index.
func (r *UserCompanyRepository) CreateIfAbsent(link *models.UserCompanyModel) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "company_id"}},
		DoNothing: true,
	}).Create(link).Error
}

// GetByUserID returns every link for a user with the companies populated
func (r *UserCompanyRepository) GetByUserID(userID string) ([]models.UserCompanyModel, error) {
	var links []models.UserCompanyModel
	err := r.DB.Where("user_id = ?", userID).
		Preload("Company").
		Preload("Company.Financials", func(db *gorm.DB) *gorm.DB {
			return db.Order("year DESC, quarter DESC")
		}).
		Preload("Company.StockData", func(db *gorm.DB) *gorm.DB {
			return db.Order("collected_at DESC")
		}).
		Order("created_at ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

// Delete removes a single user-company link
func (r *UserCompanyRepository) Delete(userID string, companyID uint) (int64, error) {
	result := r.DB.Where("user_id = ? AND company_id = ?", userID, companyID).
		Delete(&models.UserCompanyModel{})
	return result.RowsAffected, result.Error
}

// CountByCompany returns how many users still link a company
func (r *UserCompanyRepository) CountByCompany(companyID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&models.UserCompanyModel{}).
		Where("company_id = ?", companyID).
		Count(&count).Error
	return count, err
}
