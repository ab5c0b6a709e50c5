package http

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/nekogravitycat/link-catalog-backend/internal/resource"
)

const (
	exportFilename  = "resources.xlsx"
	exportSheet     = "Resources"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeader = []string{
	"id", "resource_id", "resource", "main_category", "other_categories",
	"email", "currency", "price", "casino_price", "cbd_price", "adult_price", "usd_price",
	"payment_method", "promotions", "notes",
	"da", "dr", "rd", "tr", "pa", "tf", "cf", "organic_keywords",
	"metrics_update_date", "social_media", "other_info",
}

// writeWorkbook renders rows as a single-sheet xlsx file.
func writeWorkbook(rows []*resource.Listing) (*bytes.Buffer, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet failed: %w", err)
	}
	if err := xl.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header failed: %w", err)
	}

	for i, l := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		record := exportRecord(l)
		if err := xl.SetSheetRow(exportSheet, cell, &record); err != nil {
			return nil, fmt.Errorf("write row %d failed: %w", i+1, err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook failed: %w", err)
	}
	return buf, nil
}

func exportRecord(l *resource.Listing) []any {
	p, r := l.Provider, l.Resource
	date := ""
	if r.MetricsUpdateDate != nil {
		date = r.MetricsUpdateDate.Format(resource.DateLayout)
	}
	return []any{
		p.ID, r.ID, r.Resource, r.MainCategory, str(r.OtherCategories),
		p.Email, str(p.Currency), p.Price, num(p.CasinoPrice), num(p.CBDPrice), num(p.AdultPrice), num(p.USDPrice),
		str(p.PaymentMethod), str(p.Promotions), str(p.Notes),
		integer(r.DA), integer(r.DR), integer(r.RD), integer(r.TR), integer(r.PA), integer(r.TF), integer(r.CF),
		integer(r.OrganicKeywords),
		date, str(r.SocialMedia), str(r.OtherInfo),
	}
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// num and integer leave NULLs as empty cells.
func num(f *float64) any {
	if f == nil {
		return ""
	}
	return *f
}

func integer(n *int64) any {
	if n == nil {
		return ""
	}
	return *n
}
