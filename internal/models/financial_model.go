// Package models contains the models for the Tunely API
package models

import "time"

// FinancialsTableName is the name of the table for financial statements
var FinancialsTableName = "financials"

// FinancialModel represents one collected financial statement for a
// (company, year, quarter) period. Amounts are kept as strings because the
// raw filing values exceed the safe integer range of JSON consumers.
type FinancialModel struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CompanyID       uint      `gorm:"uniqueIndex:idx_company_year_quarter" json:"-"`
	Year            int       `gorm:"uniqueIndex:idx_company_year_quarter" json:"year"`
	Quarter         int       `gorm:"uniqueIndex:idx_company_year_quarter" json:"quarter"`
	Revenue         *string   `gorm:"type:bigint" json:"revenue,omitempty"`
	OperatingProfit *string   `gorm:"type:bigint" json:"operating_profit,omitempty"`
	NetIncome       *string   `gorm:"type:bigint" json:"net_income,omitempty"`
	CollectedAt     time.Time `gorm:"autoCreateTime" json:"collected_at"`
}

// TableName specifies the table name for the FinancialModel
func (FinancialModel) TableName() string {
	return FinancialsTableName
}
