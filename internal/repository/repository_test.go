package repository

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/tunely/tunelyapi/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory database with the full schema migrated
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func seedTestCompany(t *testing.T, db *gorm.DB, corpCode string) *models.CompanyModel {
	t.Helper()
	stockCode := "005930"
	company := &models.CompanyModel{
		CorpCode:  corpCode,
		CorpName:  "삼성전자",
		StockCode: &stockCode,
	}
	require.NoError(t, NewCompanyRepository(db).Create(company))
	return company
}
