// Package dart contains the client for the DART open disclosure API
package dart

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"
	"github.com/tunely/tunelyapi/pkg/utils/zaplogger"
)

// Report codes understood by the fnlttSinglAcnt endpoint
const (
	ReportCodeQ1     = "11013"
	ReportCodeQ2     = "11012"
	ReportCodeQ3     = "11014"
	ReportCodeAnnual = "11011" // Q4 is only available through the annual filing
)

// Account names and consolidation flag used to extract the summary line items
const (
	AccountRevenue         = "매출액"
	AccountOperatingProfit = "영업이익"
	AccountNetIncome       = "당기순이익"
	ConsolidatedFS         = "CFS"
)

const (
	statusOK         = "000"
	registryCacheKey = "dart:corp_registry"
	registryCacheTTL = 24 * time.Hour
	searchResultCap  = 20
)

// ReportCodeForQuarter maps a fiscal quarter to its report code
func ReportCodeForQuarter(quarter int) string {
	switch quarter {
	case 1:
		return ReportCodeQ1
	case 2:
		return ReportCodeQ2
	case 3:
		return ReportCodeQ3
	default:
		return ReportCodeAnnual
	}
}

// CorpInfo is the company identity returned by company.json
type CorpInfo struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	CorpCode   string `json:"corp_code"`
	CorpName   string `json:"corp_name"`
	StockCode  string `json:"stock_code"`
	ModifyDate string `json:"modify_date"`
}

// FinancialItem is one line item returned by fnlttSinglAcnt.json. Amounts
// arrive thousands-separated and must be normalized before numeric use.
type FinancialItem struct {
	RceptNo       string `json:"rcept_no"`
	BsnsYear      string `json:"bsns_year"`
	CorpCode      string `json:"corp_code"`
	StockCode     string `json:"stock_code"`
	ReprtCode     string `json:"reprt_code"`
	AccountNm     string `json:"account_nm"`
	FsDiv         string `json:"fs_div"`
	FsNm          string `json:"fs_nm"`
	SjDiv         string `json:"sj_div"`
	SjNm          string `json:"sj_nm"`
	ThstrmNm      string `json:"thstrm_nm"`
	ThstrmAmount  string `json:"thstrm_amount"`
	FrmtrmNm      string `json:"frmtrm_nm"`
	FrmtrmAmount  string `json:"frmtrm_amount"`
	BfefrmtrmNm   string `json:"bfefrmtrm_nm"`
	BfefrmtrmAmnt string `json:"bfefrmtrm_amount"`
}

type financialResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	List    []FinancialItem `json:"list"`
}

// SearchResult is one registry match returned by SearchCompanyByName
type SearchResult struct {
	CorpCode   string `json:"corp_code"`
	CorpName   string `json:"corp_name"`
	StockCode  string `json:"stock_code"`
	ModifyDate string `json:"modify_date"`
}

// registryEntry is one <list> element of CORPCODE.xml
type registryEntry struct {
	CorpCode   string `xml:"corp_code" json:"corp_code"`
	CorpName   string `xml:"corp_name" json:"corp_name"`
	StockCode  string `xml:"stock_code" json:"stock_code"`
	ModifyDate string `xml:"modify_date" json:"modify_date"`
}

type registryFile struct {
	XMLName xml.Name        `xml:"result"`
	List    []registryEntry `xml:"list"`
}

// Client is the DART API client. The redis client is optional; without it
// the corp registry is fetched on every search.
type Client struct {
	client *resty.Client
	apiKey string
	cache  *redis.Client
}

// NewClient creates a new DART client
func NewClient(baseURL, apiKey string, cache *redis.Client) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second)
	return &Client{client: client, apiKey: apiKey, cache: cache}
}

// GetCompanyInfo looks up a company by corp code. A non-success upstream
// status resolves to (nil, nil); transport failures propagate.
func (c *Client) GetCompanyInfo(ctx context.Context, corpCode string) (*CorpInfo, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"crtfc_key": c.apiKey,
			"corp_code": corpCode,
		}).
		Get("/company.json")
	if err != nil {
		return nil, err
	}

	var info CorpInfo
	if err := json.Unmarshal(resp.Body(), &info); err != nil {
		return nil, fmt.Errorf("failed to decode company.json response: %v", err)
	}
	if info.Status != statusOK {
		return nil, nil
	}
	return &info, nil
}

// GetFinancialStatements fetches the line items for one filing period.
// The upstream "no data" status resolves to an empty list.
func (c *Client) GetFinancialStatements(ctx context.Context, corpCode string, year int, reportCode string) ([]FinancialItem, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"crtfc_key":  c.apiKey,
			"corp_code":  corpCode,
			"bsns_year":  fmt.Sprintf("%d", year),
			"reprt_code": reportCode,
		}).
		Get("/fnlttSinglAcnt.json")
	if err != nil {
		return nil, err
	}

	var body financialResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("failed to decode fnlttSinglAcnt.json response: %v", err)
	}
	if body.Status != statusOK {
		return []FinancialItem{}, nil
	}
	return body.List, nil
}

// SearchCompanyByName scans the corp registry for names containing the query
// substring. Entries without a tradable stock code are excluded and the
// result is capped at 20 matches in registry order.
func (c *Client) SearchCompanyByName(ctx context.Context, name string) ([]SearchResult, error) {
	entries, err := c.loadRegistry(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, searchResultCap)
	for _, entry := range entries {
		if !strings.Contains(entry.CorpName, name) {
			continue
		}
		stockCode := strings.TrimSpace(entry.StockCode)
		if stockCode == "" {
			continue
		}
		results = append(results, SearchResult{
			CorpCode:   entry.CorpCode,
			CorpName:   entry.CorpName,
			StockCode:  stockCode,
			ModifyDate: entry.ModifyDate,
		})
		if len(results) == searchResultCap {
			break
		}
	}
	return results, nil
}

// loadRegistry returns the decompressed corp registry, from cache when fresh
func (c *Client) loadRegistry(ctx context.Context) ([]registryEntry, error) {
	if c.cache != nil {
		cached, err := c.cache.Get(ctx, registryCacheKey).Bytes()
		if err == nil {
			var entries []registryEntry
			if err := json.Unmarshal(cached, &entries); err == nil {
				return entries, nil
			}
		} else if err != redis.Nil {
			zaplogger.Warn("registry cache read failed", zaplogger.Fields{"error": err.Error()})
		}
	}

	entries, err := c.fetchRegistry(ctx)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		encoded, err := json.Marshal(entries)
		if err == nil {
			if err := c.cache.Set(ctx, registryCacheKey, encoded, registryCacheTTL).Err(); err != nil {
				zaplogger.Warn("registry cache write failed", zaplogger.Fields{"error": err.Error()})
			}
		}
	}
	return entries, nil
}

// fetchRegistry downloads corpCode.xml (a ZIP archive holding CORPCODE.xml)
// and parses the full registry snapshot
func (c *Client) fetchRegistry(ctx context.Context) ([]registryEntry, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("crtfc_key", c.apiKey).
		Get("/corpCode.xml")
	if err != nil {
		return nil, err
	}

	archive, err := zip.NewReader(bytes.NewReader(resp.Body()), int64(len(resp.Body())))
	if err != nil {
		return nil, fmt.Errorf("failed to open corp registry archive: %v", err)
	}

	var xmlContent []byte
	for _, file := range archive.File {
		if file.Name != "CORPCODE.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open CORPCODE.xml: %v", err)
		}
		xmlContent, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read CORPCODE.xml: %v", err)
		}
		break
	}
	if xmlContent == nil {
		return nil, fmt.Errorf("corp registry archive has no CORPCODE.xml")
	}

	var file registryFile
	if err := xml.Unmarshal(xmlContent, &file); err != nil {
		return nil, fmt.Errorf("failed to parse corp registry: %v", err)
	}
	return file.List, nil
}
