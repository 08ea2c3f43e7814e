// Package documents renders invoices and prescriptions as PDF and revenue
// reports as spreadsheets.
package documents

import (
	"strings"

	"github.com/shopspring/decimal"

	"smart-clinic-server/internal/config"
	"smart-clinic-server/internal/models"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	dateLayout = "02/01/2006"
)

// Renderer prints the clinic's letterhead on every document.
type Renderer struct {
	Clinic config.ClinicConfig
}

// NewRenderer creates a new Renderer.
func NewRenderer(clinic config.ClinicConfig) *Renderer {
	return &Renderer{Clinic: clinic}
}

// Money formats d as rupees with thousands separators, e.g. "Rs. 2,300.00".
func Money(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	whole, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return "Rs. " + sign + b.String() + frac
}

func fullName(u *models.User) string {
	if u == nil {
		return "-"
	}
	return u.FullName()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
