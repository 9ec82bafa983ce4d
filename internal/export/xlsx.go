// Package export renders catalog data as spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/tealeg/xlsx"

	"github.com/dungpham-npc/storefront/internal/domain"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	sheetName  = "Products"
	timeLayout = "2006-01-02 15:04:05"
)

var productHeaders = []string{
	"ID", "Name", "Description", "Price", "Category", "Active", "Featured",
	"Average Rating", "Ratings", "Thumbnail", "Created At", "Updated At",
}

// WriteProducts writes one workbook with a header row and one row per product.
func WriteProducts(w io.Writer, products []domain.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range productHeaders {
		header.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Description)
		row.AddCell().SetString(p.Price.StringFixed(2))
		row.AddCell().SetString(p.CategoryName)
		row.AddCell().SetBool(p.IsActive)
		row.AddCell().SetBool(p.IsFeatured)
		row.AddCell().SetFloat(p.AverageRating)
		row.AddCell().SetInt(p.RatingCount)

		thumb := ""
		if t := p.Thumbnail(); t != nil {
			thumb = t.URL
		}
		row.AddCell().SetString(thumb)
		row.AddCell().SetString(formatTime(p.CreatedAt))
		row.AddCell().SetString(formatTime(p.UpdatedAt))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Filename returns a dated download name such as "products-20250615.xlsx".
func Filename(now time.Time) string {
	return fmt.Sprintf("products-%s.xlsx", now.Format("20060102"))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}
