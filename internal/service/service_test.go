package service

import (
	"context"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/tunely/tunelyapi/internal/dart"
	"github.com/tunely/tunelyapi/internal/naver"
	"github.com/tunely/tunelyapi/internal/repository"
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
	require.NoError(t, repository.AutoMigrate(db))
	return db
}

// fakeDisclosure is an in-memory DisclosureClient. The statement hook is
// shared across periods; the call counter tracks how often the collector
// actually went upstream.
type fakeDisclosure struct {
	mu             sync.Mutex
	companies      map[string]*dart.CorpInfo
	searchResults  []dart.SearchResult
	statementsFor  func(year int, reportCode string) []dart.FinancialItem
	infoCalls      int
	statementCalls int
}

func (f *fakeDisclosure) GetCompanyInfo(_ context.Context, corpCode string) (*dart.CorpInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infoCalls++
	return f.companies[corpCode], nil
}

func (f *fakeDisclosure) GetFinancialStatements(_ context.Context, _ string, year int, reportCode string) ([]dart.FinancialItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statementCalls++
	if f.statementsFor == nil {
		return nil, nil
	}
	return f.statementsFor(year, reportCode), nil
}

func (f *fakeDisclosure) SearchCompanyByName(_ context.Context, _ string) ([]dart.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searchResults, nil
}

func (f *fakeDisclosure) statementCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statementCalls
}

func (f *fakeDisclosure) infoCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.infoCalls
}

// fakeScraper is an in-memory StockScraper serving fixed data
type fakeScraper struct {
	mu           sync.Mutex
	info         *naver.StockInfo
	history      []naver.HistoryPoint
	quoteCalls   int
	historyCalls int
}

func (f *fakeScraper) GetStockInfo(_ context.Context, _ string) (*naver.StockInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quoteCalls++
	if f.info != nil {
		return f.info, nil
	}
	return &naver.StockInfo{}, nil
}

func (f *fakeScraper) GetStockHistory(_ context.Context, _ string, _ int) ([]naver.HistoryPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls++
	return f.history, nil
}

func (f *fakeScraper) quoteCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quoteCalls
}

// allPeriodsStatements returns a statement hook that serves consolidated
// line items for every requested period
func allPeriodsStatements() func(year int, reportCode string) []dart.FinancialItem {
	return func(_ int, _ string) []dart.FinancialItem {
		return []dart.FinancialItem{
			{AccountNm: dart.AccountRevenue, FsDiv: dart.ConsolidatedFS, ThstrmAmount: "302,231,063"},
			{AccountNm: dart.AccountOperatingProfit, FsDiv: dart.ConsolidatedFS, ThstrmAmount: "51,633,856"},
			{AccountNm: dart.AccountNetIncome, FsDiv: dart.ConsolidatedFS, ThstrmAmount: "39,907,450"},
		}
	}
}

func strPtr(s string) *string {
	return &s
}
