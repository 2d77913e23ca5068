// Package service contains the service layer for the Tunely API
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tunely/tunelyapi/internal/dart"
	"github.com/tunely/tunelyapi/internal/models"
	"github.com/tunely/tunelyapi/internal/naver"
	"github.com/tunely/tunelyapi/internal/repository"
	"github.com/tunely/tunelyapi/pkg/utils/zaplogger"
	"gorm.io/gorm"
)

const (
	// backfillYears is how many completed fiscal years the financial
	// backfill walks, newest first
	backfillYears = 20

	// historyPages covers roughly 600 trading days at the portal's fixed
	// page size of 10 rows
	historyPages = 60
)

// DisclosureClient is the slice of the DART client the collector needs
type DisclosureClient interface {
	GetCompanyInfo(ctx context.Context, corpCode string) (*dart.CorpInfo, error)
	GetFinancialStatements(ctx context.Context, corpCode string, year int, reportCode string) ([]dart.FinancialItem, error)
	SearchCompanyByName(ctx context.Context, name string) ([]dart.SearchResult, error)
}

// StockScraper is the slice of the finance-portal scraper the collector needs
type StockScraper interface {
	GetStockInfo(ctx context.Context, stockCode string) (*naver.StockInfo, error)
	GetStockHistory(ctx context.Context, stockCode string, pages int) ([]naver.HistoryPoint, error)
}

// CollectResult reports which collection stages ran to completion
type CollectResult struct {
	Financial bool `json:"financial"`
	Stock     bool `json:"stock"`
	History   bool `json:"history"`
}

// CollectorService backfills financial statements and refreshes stock data
// for one company at a time. Idempotency comes from pre-checking stored
// rows, not from any resumable cursor.
type CollectorService struct {
	companyRepo   *repository.CompanyRepository
	financialRepo *repository.FinancialRepository
	stockRepo     *repository.StockRepository
	dart          DisclosureClient
	scraper       StockScraper
	inFlight      sync.Map // company id -> struct{}
}

// NewCollectorService creates a new CollectorService
func NewCollectorService(db *gorm.DB, dartClient DisclosureClient, scraper StockScraper) *CollectorService {
	return &CollectorService{
		companyRepo:   repository.NewCompanyRepository(db),
		financialRepo: repository.NewFinancialRepository(db),
		stockRepo:     repository.NewStockRepository(db),
		dart:          dartClient,
		scraper:       scraper,
	}
}

// Collect runs the full collection pass for a company: financial backfill,
// same-day quote refresh, and history backfill. At most one pass per company
// is in flight at a time; a stage flag is true when its stage completed
// without a fatal error, even if it staged zero new rows.
func (s *CollectorService) Collect(ctx context.Context, companyID uint) (*CollectResult, error) {
	if _, busy := s.inFlight.LoadOrStore(companyID, struct{}{}); busy {
		return nil, ErrCollectionInProgress
	}
	defer s.inFlight.Delete(companyID)

	company, err := s.companyRepo.GetByID(companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}

	result := &CollectResult{}

	if err := s.collectFinancials(ctx, company); err != nil {
		return nil, err
	}
	result.Financial = true

	if company.StockCode != nil && *company.StockCode != "" {
		if err := s.collectStockData(ctx, company); err != nil {
			return nil, err
		}
		result.Stock = true

		if err := s.collectHistory(ctx, company); err != nil {
			return nil, err
		}
		result.History = true
	}

	zaplogger.Info("collection completed", zaplogger.Fields{
		"corp_code": company.CorpCode,
		"financial": result.Financial,
		"stock":     result.Stock,
		"history":   result.History,
	})
	return result, nil
}

// collectFinancials walks the last 20 completed years quarter by quarter,
// fetching only the periods not yet stored, and flushes the staged rows in
// one batch.
func (s *CollectorService) collectFinancials(ctx context.Context, company *models.CompanyModel) error {
	collected, err := s.financialRepo.GetCollectedPeriods(company.ID)
	if err != nil {
		return err
	}

	currentYear := time.Now().Year()
	var staged []models.FinancialModel

	for year := currentYear - 1; year >= currentYear-backfillYears; year-- {
		for quarter := 1; quarter <= 4; quarter++ {
			if collected[repository.Period{Year: year, Quarter: quarter}] {
				continue
			}

			items, err := s.dart.GetFinancialStatements(ctx, company.CorpCode, year, dart.ReportCodeForQuarter(quarter))
			if err != nil {
				return err
			}
			if len(items) == 0 {
				continue
			}

			staged = append(staged, models.FinancialModel{
				CompanyID:       company.ID,
				Year:            year,
				Quarter:         quarter,
				Revenue:         extractAmount(items, dart.AccountRevenue),
				OperatingProfit: extractAmount(items, dart.AccountOperatingProfit),
				NetIncome:       extractAmount(items, dart.AccountNetIncome),
			})
		}
	}

	inserted, err := s.financialRepo.InsertFinancials(staged)
	if err != nil {
		return err
	}
	if inserted > 0 {
		zaplogger.Info("financial backfill staged new rows", zaplogger.Fields{
			"corp_code":     company.CorpCode,
			"rows_inserted": inserted,
		})
	}
	return nil
}

// collectStockData fetches a fresh quote snapshot unless one was already
// collected today
func (s *CollectorService) collectStockData(ctx context.Context, company *models.CompanyModel) error {
	_, err := s.stockRepo.GetTodayStockData(company.ID, time.Now())
	if err == nil {
		return nil // today's snapshot already exists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	info, err := s.scraper.GetStockInfo(ctx, *company.StockCode)
	if err != nil {
		return err
	}

	return s.stockRepo.CreateStockData(&models.StockDataModel{
		CompanyID:    company.ID,
		Price:        info.Price,
		PER:          decimalString(info.PER),
		PBR:          decimalString(info.PBR),
		ForeignRatio: decimalString(info.ForeignRatio),
	})
}

// collectHistory backfills the recent trading-day history, skipping dates
// already stored
func (s *CollectorService) collectHistory(ctx context.Context, company *models.CompanyModel) error {
	existing, err := s.stockRepo.GetHistoryDates(company.ID)
	if err != nil {
		return err
	}

	points, err := s.scraper.GetStockHistory(ctx, *company.StockCode, historyPages)
	if err != nil {
		return err
	}

	var staged []models.StockHistoryModel
	for _, point := range points {
		key := point.Date.Format("2006-01-02")
		if existing[key] {
			continue
		}
		existing[key] = true // adjacent pages can overlap on the same day

		staged = append(staged, models.StockHistoryModel{
			CompanyID: company.ID,
			Date:      point.Date,
			Open:      point.Open,
			High:      point.High,
			Low:       point.Low,
			Close:     point.Close,
			Volume:    point.Volume,
		})
	}

	inserted, err := s.stockRepo.InsertHistory(staged)
	if err != nil {
		return err
	}
	if inserted > 0 {
		zaplogger.Info("history backfill staged new rows", zaplogger.Fields{
			"corp_code":     company.CorpCode,
			"rows_inserted": inserted,
		})
	}
	return nil
}

// extractAmount pulls the consolidated amount for one account name and
// normalizes the thousands-separated string. A missing line item or an
// unparseable amount resolves to nil.
func extractAmount(items []dart.FinancialItem, accountName string) *string {
	for _, item := range items {
		if item.AccountNm != accountName || item.FsDiv != dart.ConsolidatedFS {
			continue
		}
		amount := strings.TrimSpace(strings.ReplaceAll(item.ThstrmAmount, ",", ""))
		if amount == "" {
			return nil
		}
		if _, err := decimal.NewFromString(amount); err != nil {
			return nil
		}
		return &amount
	}
	return nil
}

func decimalString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
