// Package models contains the models for the Tunely API
package models

import "time"

// StockDataTableName is the name of the table for stock quote snapshots
var StockDataTableName = "stock_data"

// StockHistoryTableName is the name of the table for daily price history
var StockHistoryTableName = "stock_history"

// StockDataModel represents a quote snapshot collected from the finance
// portal. Every field scraped from markup is nullable; snapshots accumulate
// at most once per calendar day.
type StockDataModel struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CompanyID    uint      `gorm:"index" json:"-"`
	Price        *int      `json:"price,omitempty"`
	PER          *string   `gorm:"type:decimal(10,2)" json:"per,omitempty"`
	PBR          *string   `gorm:"type:decimal(10,2)" json:"pbr,omitempty"`
	ForeignRatio *string   `gorm:"type:decimal(5,2)" json:"foreign_ratio,omitempty"`
	CollectedAt  time.Time `gorm:"autoCreateTime;index" json:"collected_at"`
}

// TableName specifies the table name for the StockDataModel
func (StockDataModel) TableName() string {
	return StockDataTableName
}

// StockHistoryModel represents one trading day of price history, unique per
// (company, date). Volume is kept as a string for the same bigint reason as
// the financial amounts.
type StockHistoryModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CompanyID uint      `gorm:"uniqueIndex:idx_company_date" json:"-"`
	Date      time.Time `gorm:"type:date;uniqueIndex:idx_company_date" json:"date"`
	Open      int       `json:"open"`
	High      int       `json:"high"`
	Low       int       `json:"low"`
	Close     int       `json:"close"`
	Volume    string    `gorm:"type:bigint" json:"volume"`
}

// TableName specifies the table name for the StockHistoryModel
func (StockHistoryModel) TableName() string {
	return StockHistoryTableName
}
