package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tunely/tunelyapi/internal/dart"
	"github.com/tunely/tunelyapi/internal/models"
	"github.com/tunely/tunelyapi/internal/repository"
	"gorm.io/gorm"
)

func newCompanyServiceFixture(t *testing.T, disclosure *fakeDisclosure) (*CompanyService, *CollectorService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	collector := NewCollectorService(db, disclosure, &fakeScraper{})
	return NewCompanyService(db, disclosure, collector), collector, db
}

func knownCompanies() map[string]*dart.CorpInfo {
	return map[string]*dart.CorpInfo{
		"00126380": {CorpCode: "00126380", CorpName: "삼성전자", StockCode: "005930"},
	}
}

func TestRegisterCreatesCompanyAndLink(t *testing.T) {
	disclosure := &fakeDisclosure{companies: knownCompanies()}
	svc, _, db := newCompanyServiceFixture(t, disclosure)

	company, err := svc.Register(context.Background(), "user-a", "00126380", "삼성전자", nil)
	require.NoError(t, err)
	assert.Equal(t, "00126380", company.CorpCode)
	assert.NotZero(t, company.ID)

	link, err := repository.NewUserCompanyRepository(db).GetByUserAndCompany("user-a", company.ID)
	require.NoError(t, err)
	assert.Equal(t, company.ID, link.CompanyID)
}

func TestRegisterUnknownCorpCode(t *testing.T) {
	disclosure := &fakeDisclosure{companies: knownCompanies()}
	svc, _, _ := newCompanyServiceFixture(t, disclosure)

	_, err := svc.Register(context.Background(), "user-a", "99999999", "없는회사", nil)
	assert.ErrorIs(t, err, ErrUnknownCorpCode)
}

func TestRegisterSharedCompany(t *testing.T) {
	disclosure := &fakeDisclosure{companies: knownCompanies()}
	svc, _, db := newCompanyServiceFixture(t, disclosure)

	first, err := svc.Register(context.Background(), "user-a", "00126380", "삼성전자", nil)
	require.NoError(t, err)
	second, err := svc.Register(context.Background(), "user-b", "00126380", "삼성전자", nil)
	require.NoError(t, err)

	// both users share the one company row
	assert.Equal(t, first.ID, second.ID)

	var companyCount int64
	require.NoError(t, db.Model(&models.CompanyModel{}).Count(&companyCount).Error)
	assert.EqualValues(t, 1, companyCount)

	var linkCount int64
	require.NoError(t, db.Model(&models.UserCompanyModel{}).Count(&linkCount).Error)
	assert.EqualValues(t, 2, linkCount)

	// the registry is only consulted for the first registration
	assert.Equal(t, 1, disclosure.infoCallCount())
}

func TestRegisterSameUserTwice(t *testing.T) {
	disclosure := &fakeDisclosure{companies: knownCompanies()}
	svc, _, db := newCompanyServiceFixture(t, disclosure)

	_, err := svc.Register(context.Background(), "user-a", "00126380", "삼성전자", nil)
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "user-a", "00126380", "삼성전자", nil)
	require.NoError(t, err)

	var linkCount int64
	require.NoError(t, db.Model(&models.UserCompanyModel{}).Count(&linkCount).Error)
	assert.EqualValues(t, 1, linkCount)
}

func TestRegisterRunsFirstCollection(t *testing.T) {
	disclosure := &fakeDisclosure{
		companies:     knownCompanies(),
		statementsFor: allPeriodsStatements(),
	}
	svc, collector, db := newCompanyServiceFixture(t, disclosure)
	financialRepo := repository.NewFinancialRepository(db)

	company, err := svc.Register(context.Background(), "user-a", "00126380", "삼성전자", nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		count, err := financialRepo.CountByCompany(company.ID)
		if err != nil || count != totalBackfillPeriods {
			return false
		}
		_, busy := collector.inFlight.Load(company.ID)
		return !busy
	}, 5*time.Second, 20*time.Millisecond, "background backfill should finish")

	// a manual pass right after the backfill finds everything stored and
	// writes nothing new
	callsAfterBackfill := disclosure.statementCallCount()
	result, err := svc.Collect(context.Background(), "user-a", company.ID)
	require.NoError(t, err)
	assert.True(t, result.Financial)
	assert.Equal(t, callsAfterBackfill, disclosure.statementCallCount())

	count, err := financialRepo.CountByCompany(company.ID)
	require.NoError(t, err)
	assert.EqualValues(t, totalBackfillPeriods, count)
}

func TestGetCompanyRequiresLink(t *testing.T) {
	disclosure := &fakeDisclosure{companies: knownCompanies()}
	svc, _, _ := newCompanyServiceFixture(t, disclosure)

	company, err := svc.Register(context.Background(), "user-a", "00126380", "삼성전자", nil)
	require.NoError(t, err)

	_, err = svc.GetCompany("user-b", company.ID)
	assert.ErrorIs(t, err, ErrCompanyNotFound)

	loaded, err := svc.GetCompany("user-a", company.ID)
	require.NoError(t, err)
	assert.Equal(t, company.CorpCode, loaded.CorpCode)
}

func TestGetCompanyOrdersFinancials(t *testing.T) {
	disclosure := &fakeDisclosure{companies: knownCompanies()}
	svc, _, db := newCompanyServiceFixture(t, disclosure)
	financialRepo := repository.NewFinancialRepository(db)

	company, err := svc.Register(context.Background(), "user-a", "00126380", "삼성전자", nil)
	require.NoError(t, err)

	_, err = financialRepo.InsertFinancials([]models.FinancialModel{
		{CompanyID: company.ID, Year: 2022, Quarter: 3},
		{CompanyID: company.ID, Year: 2023, Quarter: 1},
		{CompanyID: company.ID, Year: 2022, Quarter: 4},
	})
	require.NoError(t, err)

	loaded, err := svc.GetCompany("user-a", company.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Financials, 3)

	// newest period first
	assert.Equal(t, 2023, loaded.Financials[0].Year)
	assert.Equal(t, 2022, loaded.Financials[1].Year)
	assert.Equal(t, 4, loaded.Financials[1].Quarter)
	assert.Equal(t, 3, loaded.Financials[2].Quarter)
}

func TestGetFinancialDetail(t *testing.T) {
	disclosure := &fakeDisclosure{companies: knownCompanies()}
	svc, _, db := newCompanyServiceFixture(t, disclosure)
	financialRepo := repository.NewFinancialRepository(db)

	company, err := svc.Register(context.Background(), "user-a", "00126380", "삼성전자", nil)
	require.NoError(t, err)

	revenue := "302231063"
	_, err = financialRepo.InsertFinancials([]models.FinancialModel{
		{CompanyID: company.ID, Year: 2023, Quarter: 4, Revenue: &revenue},
	})
	require.NoError(t, err)

	financial, err := svc.GetFinancialDetail("user-a", company.ID, 2023, 4)
	require.NoError(t, err)
	require.NotNil(t, financial.Revenue)
	assert.Equal(t, revenue, *financial.Revenue)

	_, err = svc.GetFinancialDetail("user-a", company.ID, 2023, 1)
	assert.ErrorIs(t, err, ErrFinancialNotFound)

	_, err = svc.GetFinancialDetail("user-b", company.ID, 2023, 4)
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestUnregisterKeepsSharedData(t *testing.T) {
	disclosure := &fakeDisclosure{companies: knownCompanies()}
	svc, _, db := newCompanyServiceFixture(t, disclosure)
	financialRepo := repository.NewFinancialRepository(db)

	company, err := svc.Register(context.Background(), "user-a", "00126380", "삼성전자", nil)
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "user-b", "00126380", "삼성전자", nil)
	require.NoError(t, err)

	_, err = financialRepo.InsertFinancials([]models.FinancialModel{
		{CompanyID: company.ID, Year: 2023, Quarter: 4},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Unregister("user-a", company.ID))

	// the company row and its collected data survive for the other user
	var companyCount int64
	require.NoError(t, db.Model(&models.CompanyModel{}).Count(&companyCount).Error)
	assert.EqualValues(t, 1, companyCount)

	count, err := financialRepo.CountByCompany(company.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	_, err = svc.GetCompany("user-b", company.ID)
	assert.NoError(t, err)
	_, err = svc.GetCompany("user-a", company.ID)
	assert.ErrorIs(t, err, ErrCompanyNotFound)

	// a second unregister finds no link
	assert.ErrorIs(t, svc.Unregister("user-a", company.ID), ErrCompanyNotFound)
}

func TestGetCompanies(t *testing.T) {
	disclosure := &fakeDisclosure{companies: knownCompanies()}
	svc, _, _ := newCompanyServiceFixture(t, disclosure)

	companies, err := svc.GetCompanies("user-a")
	require.NoError(t, err)
	assert.Empty(t, companies)

	_, err = svc.Register(context.Background(), "user-a", "00126380", "삼성전자", nil)
	require.NoError(t, err)

	companies, err = svc.GetCompanies("user-a")
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "00126380", companies[0].CorpCode)
}
