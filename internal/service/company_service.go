// Package service contains the service layer for the Tunely API
package service

import (
	"context"
	"errors"
	"time"

	"github.com/tunely/tunelyapi/internal/dart"
	"github.com/tunely/tunelyapi/internal/models"
	"github.com/tunely/tunelyapi/internal/repository"
	"github.com/tunely/tunelyapi/pkg/utils/zaplogger"
	"gorm.io/gorm"
)

// CompanyService manages company registration and lookup for one user at a
// time. Companies are shared rows; the user link is the only thing a user
// owns.
type CompanyService struct {
	companyRepo     *repository.CompanyRepository
	userCompanyRepo *repository.UserCompanyRepository
	financialRepo   *repository.FinancialRepository
	dart            DisclosureClient
	collector       *CollectorService
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(db *gorm.DB, dartClient DisclosureClient, collector *CollectorService) *CompanyService {
	return &CompanyService{
		companyRepo:     repository.NewCompanyRepository(db),
		userCompanyRepo: repository.NewUserCompanyRepository(db),
		financialRepo:   repository.NewFinancialRepository(db),
		dart:            dartClient,
		collector:       collector,
	}
}

// Search looks up registry entries whose name contains the query substring
func (s *CompanyService) Search(ctx context.Context, name string) ([]dart.SearchResult, error) {
	return s.dart.SearchCompanyByName(ctx, name)
}

// Register links a company to the user, creating the company row first if no
// user has registered the corp code yet. A brand-new company gets its first
// collection run in the background so registration does not wait on the
// 20-year backfill.
func (s *CompanyService) Register(ctx context.Context, userID, corpCode, corpName string, stockCode *string) (*models.CompanyModel, error) {
	company, err := s.companyRepo.GetByCorpCode(corpCode)
	isNew := false
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		info, err := s.dart.GetCompanyInfo(ctx, corpCode)
		if err != nil {
			return nil, err
		}
		if info == nil {
			return nil, ErrUnknownCorpCode
		}

		company = &models.CompanyModel{
			CorpCode:  corpCode,
			CorpName:  corpName,
			StockCode: stockCode,
		}
		if createErr := s.companyRepo.Create(company); createErr != nil {
			// A concurrent registration may have won the corp_code unique
			// index; fall back to the row that made it in.
			company, err = s.companyRepo.GetByCorpCode(corpCode)
			if err != nil {
				return nil, createErr
			}
		} else {
			isNew = true
		}
	}

	if err := s.userCompanyRepo.CreateIfAbsent(&models.UserCompanyModel{
		UserID:    userID,
		CompanyID: company.ID,
	}); err != nil {
		return nil, err
	}

	if isNew {
		s.collectInBackground(company.ID, company.CorpCode)
	}
	return company, nil
}

// collectInBackground runs the first collection pass without blocking the
// registration request
func (s *CompanyService) collectInBackground(companyID uint, corpCode string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if _, err := s.collector.Collect(ctx, companyID); err != nil {
			zaplogger.Error("initial collection failed", zaplogger.Fields{
				"corp_code": corpCode,
				"error":     err.Error(),
			})
		}
	}()
}

// GetCompanies returns the companies linked to the user, with their
// collected data populated
func (s *CompanyService) GetCompanies(userID string) ([]models.CompanyModel, error) {
	links, err := s.userCompanyRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	companies := make([]models.CompanyModel, 0, len(links))
	for _, link := range links {
		companies = append(companies, link.Company)
	}
	return companies, nil
}

// GetCompany returns one company with relations, but only when the user has
// it linked
func (s *CompanyService) GetCompany(userID string, companyID uint) (*models.CompanyModel, error) {
	if err := s.requireLink(userID, companyID); err != nil {
		return nil, err
	}
	company, err := s.companyRepo.GetByIDWithRelations(companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return company, nil
}

// GetFinancialDetail returns the statement for one (company, year, quarter)
func (s *CompanyService) GetFinancialDetail(userID string, companyID uint, year, quarter int) (*models.FinancialModel, error) {
	if err := s.requireLink(userID, companyID); err != nil {
		return nil, err
	}
	financial, err := s.financialRepo.GetByCompanyYearQuarter(companyID, year, quarter)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFinancialNotFound
		}
		return nil, err
	}
	return financial, nil
}

// Collect runs the collection pass for a company the user has linked
func (s *CompanyService) Collect(ctx context.Context, userID string, companyID uint) (*CollectResult, error) {
	if err := s.requireLink(userID, companyID); err != nil {
		return nil, err
	}
	return s.collector.Collect(ctx, companyID)
}

// Unregister removes the user's link to a company. The company row and its
// collected data stay behind for the other users that still link it.
func (s *CompanyService) Unregister(userID string, companyID uint) error {
	deleted, err := s.userCompanyRepo.Delete(userID, companyID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrCompanyNotFound
	}

	remaining, err := s.userCompanyRepo.CountByCompany(companyID)
	if err == nil && remaining == 0 {
		zaplogger.Info("company no longer linked by any user", zaplogger.Fields{
			"company_id": companyID,
		})
	}
	return nil
}

func (s *CompanyService) requireLink(userID string, companyID uint) error {
	_, err := s.userCompanyRepo.GetByUserAndCompany(userID, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCompanyNotFound
		}
		return err
	}
	return nil
}
