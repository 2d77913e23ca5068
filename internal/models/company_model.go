// Package models contains the models for the Tunely API
package models

import "time"

// CompaniesTableName is the name of the table for companies
var CompaniesTableName = "companies"

// CompanyModel represents a company registered for data collection.
// A company row is shared by every user that links it; only the user link
// is removed on unregister.
type CompanyModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CorpCode  string    `gorm:"size:8;uniqueIndex" json:"corp_code"`
	CorpName  string    `gorm:"size:100" json:"corp_name"`
	StockCode *string   `gorm:"size:6" json:"stock_code,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Financials   []FinancialModel    `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"financials,omitempty"`
	StockData    []StockDataModel    `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"stock_data,omitempty"`
	StockHistory []StockHistoryModel `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"stock_history,omitempty"`
}

// TableName specifies the table name for the CompanyModel
func (CompanyModel) TableName() string {
	return CompaniesTableName
}
