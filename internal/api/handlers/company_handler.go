// Package handlers contains the handlers for the API
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/tunely/tunelyapi/internal/api/middleware"
	"github.com/tunely/tunelyapi/internal/service"
	"github.com/tunely/tunelyapi/pkg/utils/response"
)

// CompanyHandler serves the company endpoints
type CompanyHandler struct {
	CompanyService *service.CompanyService
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(companyService *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{CompanyService: companyService}
}

// RegisterCompanyRequest is the request body for the register endpoint
type RegisterCompanyRequest struct {
	CorpCode  string  `json:"corpCode"`
	CorpName  string  `json:"corpName"`
	StockCode *string `json:"stockCode,omitempty"`
}

// SearchCompanies returns registry entries matching the name query
func (h *CompanyHandler) SearchCompanies(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "`name` is required")
	}

	results, err := h.CompanyService.Search(c.Request().Context(), name)
	if err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}
	return response.SuccessResponse(c, results)
}

// RegisterCompany registers a company for the calling user
func (h *CompanyHandler) RegisterCompany(c echo.Context) error {
	var req RegisterCompanyRequest
	if err := c.Bind(&req); err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "Invalid request body")
	}
	if len(req.CorpCode) != 8 {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "`corpCode` must be 8 characters")
	}
	if req.CorpName == "" {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "`corpName` is required")
	}
	if req.StockCode != nil && len(*req.StockCode) != 6 {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "`stockCode` must be 6 characters")
	}

	company, err := h.CompanyService.Register(c.Request().Context(), middleware.UserID(c), req.CorpCode, req.CorpName, req.StockCode)
	if err != nil {
		if errors.Is(err, service.ErrUnknownCorpCode) {
			return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "Unknown corp code")
		}
		return response.ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}
	return response.CreatedResponse(c, company)
}

// GetCompanies returns the companies linked to the calling user
func (h *CompanyHandler) GetCompanies(c echo.Context) error {
	companies, err := h.CompanyService.GetCompanies(middleware.UserID(c))
	if err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}
	return response.SuccessResponse(c, companies)
}

// GetCompany returns one company with its collected data
func (h *CompanyHandler) GetCompany(c echo.Context) error {
	companyID, err := parseIDParam(c)
	if err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "Invalid `id`, must be digits")
	}

	company, err := h.CompanyService.GetCompany(middleware.UserID(c), companyID)
	if err != nil {
		if errors.Is(err, service.ErrCompanyNotFound) {
			return response.ErrorResponse(c, http.StatusNotFound, "NotFoundException", "Company not found")
		}
		return response.ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}
	return response.SuccessResponse(c, company)
}

// GetFinancialDetail returns the statement for one (company, year, quarter)
func (h *CompanyHandler) GetFinancialDetail(c echo.Context) error {
	companyID, err := parseIDParam(c)
	if err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "Invalid `id`, must be digits")
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "Invalid `year`, must be digits")
	}
	quarter, err := strconv.Atoi(c.Param("quarter"))
	if err != nil || quarter < 1 || quarter > 4 {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "Invalid `quarter`, must be 1-4")
	}

	financial, err := h.CompanyService.GetFinancialDetail(middleware.UserID(c), companyID, year, quarter)
	if err != nil {
		if errors.Is(err, service.ErrCompanyNotFound) {
			return response.ErrorResponse(c, http.StatusNotFound, "NotFoundException", "Company not found")
		}
		if errors.Is(err, service.ErrFinancialNotFound) {
			return response.ErrorResponse(c, http.StatusNotFound, "NotFoundException", "Financial statement not found")
		}
		return response.ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}
	return response.SuccessResponse(c, financial)
}

// CollectCompany runs a collection pass for one company
func (h *CompanyHandler) CollectCompany(c echo.Context) error {
	companyID, err := parseIDParam(c)
	if err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "Invalid `id`, must be digits")
	}

	result, err := h.CompanyService.Collect(c.Request().Context(), middleware.UserID(c), companyID)
	if err != nil {
		if errors.Is(err, service.ErrCompanyNotFound) {
			return response.ErrorResponse(c, http.StatusNotFound, "NotFoundException", "Company not found")
		}
		if errors.Is(err, service.ErrCollectionInProgress) {
			return response.ErrorResponse(c, http.StatusConflict, "CollectionException", "Collection already in progress")
		}
		return response.ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}
	return response.SuccessResponse(c, result)
}

// DeleteCompany removes the calling user's link to a company
func (h *CompanyHandler) DeleteCompany(c echo.Context) error {
	companyID, err := parseIDParam(c)
	if err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "Invalid `id`, must be digits")
	}

	if err := h.CompanyService.Unregister(middleware.UserID(c), companyID); err != nil {
		if errors.Is(err, service.ErrCompanyNotFound) {
			return response.ErrorResponse(c, http.StatusNotFound, "NotFoundException", "Company not found")
		}
		return response.ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}
	return response.SuccessResponse(c, map[string]bool{"deleted": true})
}

func parseIDParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
