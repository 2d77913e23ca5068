package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tunely/tunelyapi/internal/models"
)

func TestGetCollectedPeriods(t *testing.T) {
	db := newTestDB(t)
	repo := NewFinancialRepository(db)
	company := seedTestCompany(t, db, "00126380")

	periods, err := repo.GetCollectedPeriods(company.ID)
	require.NoError(t, err)
	assert.Empty(t, periods)

	inserted, err := repo.InsertFinancials([]models.FinancialModel{
		{CompanyID: company.ID, Year: 2023, Quarter: 1},
		{CompanyID: company.ID, Year: 2023, Quarter: 4},
		{CompanyID: company.ID, Year: 2022, Quarter: 4},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, inserted)

	periods, err = repo.GetCollectedPeriods(company.ID)
	require.NoError(t, err)
	assert.True(t, periods[Period{Year: 2023, Quarter: 1}])
	assert.True(t, periods[Period{Year: 2023, Quarter: 4}])
	assert.True(t, periods[Period{Year: 2022, Quarter: 4}])
	assert.False(t, periods[Period{Year: 2022, Quarter: 1}])
}

func TestGetCollectedPeriodsScopedToCompany(t *testing.T) {
	db := newTestDB(t)
	repo := NewFinancialRepository(db)
	first := seedTestCompany(t, db, "00126380")
	second := seedTestCompany(t, db, "00164742")

	_, err := repo.InsertFinancials([]models.FinancialModel{
		{CompanyID: first.ID, Year: 2023, Quarter: 4},
	})
	require.NoError(t, err)

	periods, err := repo.GetCollectedPeriods(second.ID)
	require.NoError(t, err)
	assert.Empty(t, periods)
}

func TestInsertFinancialsEmptyBatch(t *testing.T) {
	db := newTestDB(t)
	repo := NewFinancialRepository(db)

	inserted, err := repo.InsertFinancials(nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, inserted)
}

func TestGetByCompanyOrdersNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewFinancialRepository(db)
	company := seedTestCompany(t, db, "00126380")

	_, err := repo.InsertFinancials([]models.FinancialModel{
		{CompanyID: company.ID, Year: 2022, Quarter: 3},
		{CompanyID: company.ID, Year: 2023, Quarter: 2},
		{CompanyID: company.ID, Year: 2023, Quarter: 1},
	})
	require.NoError(t, err)

	financials, err := repo.GetByCompany(company.ID)
	require.NoError(t, err)
	require.Len(t, financials, 3)
	assert.Equal(t, Period{Year: 2023, Quarter: 2}, Period{Year: financials[0].Year, Quarter: financials[0].Quarter})
	assert.Equal(t, Period{Year: 2023, Quarter: 1}, Period{Year: financials[1].Year, Quarter: financials[1].Quarter})
	assert.Equal(t, Period{Year: 2022, Quarter: 3}, Period{Year: financials[2].Year, Quarter: financials[2].Quarter})
}
