// Package models contains the models for the Tunely API
package models

import "time"

// UserCompaniesTableName is the name of the table for user-company links
var UserCompaniesTableName = "user_companies"

// UserCompanyModel links an opaque user identifier to a company. The user id
// is a partition key supplied by the frontend, not a verified credential.
type UserCompanyModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:36;uniqueIndex:idx_user_company" json:"user_id"`
	CompanyID uint      `gorm:"uniqueIndex:idx_user_company" json:"company_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Company CompanyModel `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"company,omitempty"`
}

// TableName specifies the table name for the UserCompanyModel
func (UserCompanyModel) TableName() string {
	return UserCompaniesTableName
}
