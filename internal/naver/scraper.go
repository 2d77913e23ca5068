// Package naver contains the scraper for the Naver Finance pages
package naver

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const (
	quotePath   = "/item/main.naver"
	historyPath = "/item/sise_day.naver"
	userAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	historyDateLayout = "2006.01.02"
	historyRowColumns = 7
)

// StockInfo is a scraped quote snapshot. Every field is independently
// nullable: a missing or non-numeric markup node resolves to nil, never to
// an error.
type StockInfo struct {
	Price        *int
	PER          *decimal.Decimal
	PBR          *decimal.Decimal
	ForeignRatio *decimal.Decimal
}

// HistoryPoint is one trading day scraped from the daily price listing
type HistoryPoint struct {
	Date   time.Time
	Open   int
	High   int
	Low    int
	Close  int
	Volume string
}

// Scraper extracts quote and history data from the finance portal markup.
// The selectors track the live page and are expected to break when the
// upstream markup changes; callers see that as absent fields.
type Scraper struct {
	client *resty.Client
}

// NewScraper creates a new scraper for the given portal base URL
func NewScraper(baseURL string) *Scraper {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("User-Agent", userAgent)
	return &Scraper{client: client}
}

// GetStockInfo scrapes the current quote page for a ticker
func (s *Scraper) GetStockInfo(ctx context.Context, stockCode string) (*StockInfo, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("code", stockCode).
		Get(quotePath)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse quote page: %v", err)
	}

	info := &StockInfo{
		Price:        parsePrice(doc.Find("p.no_today .blind").First().Text()),
		PER:          parseDecimal(doc.Find("#_per").Text()),
		PBR:          parseDecimal(doc.Find("#_pbr").Text()),
		ForeignRatio: parseForeignRatio(doc),
	}
	return info, nil
}

// GetStockHistory scrapes the paginated daily price listing. Pages are
// fetched one at a time in calling order so the portal is never hit
// concurrently. Separator and summary rows are dropped; the result is
// sorted ascending by date.
func (s *Scraper) GetStockHistory(ctx context.Context, stockCode string, pages int) ([]HistoryPoint, error) {
	points := make([]HistoryPoint, 0, pages*10)

	for page := 1; page <= pages; page++ {
		resp, err := s.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"code": stockCode,
				"page": strconv.Itoa(page),
			}).
			Get(historyPath)
		if err != nil {
			return nil, err
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
		if err != nil {
			return nil, fmt.Errorf("failed to parse history page %d: %v", page, err)
		}

		doc.Find("table.type2 tr").Each(func(_ int, row *goquery.Selection) {
			if point, ok := parseHistoryRow(row); ok {
				points = append(points, point)
			}
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points, nil
}

// parseHistoryRow parses one listing row. Columns are
// date, close, diff, open, high, low, volume.
func parseHistoryRow(row *goquery.Selection) (HistoryPoint, bool) {
	cells := row.Find("td")
	if cells.Length() < historyRowColumns {
		return HistoryPoint{}, false
	}

	date, err := time.Parse(historyDateLayout, strings.TrimSpace(cells.Eq(0).Text()))
	if err != nil {
		return HistoryPoint{}, false
	}

	closePrice, ok := parseCellInt(cells.Eq(1).Text())
	if !ok {
		return HistoryPoint{}, false
	}
	open, ok := parseCellInt(cells.Eq(3).Text())
	if !ok {
		return HistoryPoint{}, false
	}
	high, ok := parseCellInt(cells.Eq(4).Text())
	if !ok {
		return HistoryPoint{}, false
	}
	low, ok := parseCellInt(cells.Eq(5).Text())
	if !ok {
		return HistoryPoint{}, false
	}

	volume := stripSeparators(cells.Eq(6).Text())
	if _, ok := parseCellInt(volume); !ok {
		return HistoryPoint{}, false
	}

	return HistoryPoint{
		Date:   date,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}, true
}

// parseForeignRatio walks the summary table for the foreign-ownership row
func parseForeignRatio(doc *goquery.Document) *decimal.Decimal {
	var ratio *decimal.Decimal
	doc.Find("table.lwidth").First().Find("tr").Each(func(_ int, row *goquery.Selection) {
		if !strings.Contains(row.Find("th").Text(), "외국인소진율") {
			return
		}
		if parsed := parseDecimal(row.Find("td").Text()); parsed != nil {
			ratio = parsed
		}
	})
	return ratio
}

func stripSeparators(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
}

func parsePrice(text string) *int {
	price, ok := parseCellInt(text)
	if !ok {
		return nil
	}
	return &price
}

func parseCellInt(text string) (int, bool) {
	value, err := strconv.Atoi(stripSeparators(text))
	if err != nil {
		return 0, false
	}
	return value, true
}

// parseDecimal strips thousands separators and percent signs before parsing;
// any failure resolves to nil
func parseDecimal(text string) *decimal.Decimal {
	cleaned := strings.TrimSpace(strings.ReplaceAll(stripSeparators(text), "%", ""))
	if cleaned == "" {
		return nil
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	return &value
}
