package program

import (
	"strings"
	"time"

	"centerdir/internal/domain/directory"
	"centerdir/internal/domain/locale"
)

// StatusActive is the default status for programs.
const StatusActive = "Active"

// Program is an offering belonging to exactly one center.
type Program struct {
	ID          string    `json:"id"`
	CenterID    string    `json:"center_id"`
	NameEn      string    `json:"name_en"`
	NameAr      string    `json:"name_ar"`
	Code        string    `json:"code"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks the fields required before submission.
// PRE: Program struct is populated
// POST: Returns nil if valid, a *directory.ValidationError otherwise
func (p *Program) Validate() error {
	if strings.TrimSpace(p.CenterID) == "" {
		return &directory.ValidationError{Field: "center_id", Message: "center is required"}
	}
	if strings.TrimSpace(p.NameEn) == "" && strings.TrimSpace(p.NameAr) == "" {
		return &directory.ValidationError{Field: "name", Message: "program name is required"}
	}
	return nil
}

// Normalize trims text fields, normalizes the code, and applies defaults.
// POST: Status is non-empty; Code is trimmed, single-spaced and uppercase
func (p *Program) Normalize() {
	p.CenterID = strings.TrimSpace(p.CenterID)
	p.NameEn = strings.TrimSpace(p.NameEn)
	p.NameAr = strings.TrimSpace(p.NameAr)
	p.Code = NormalizeCode(p.Code)
	p.Description = strings.TrimSpace(p.Description)
	p.CreatedBy = strings.TrimSpace(p.CreatedBy)
	p.Status = strings.TrimSpace(p.Status)
	if p.Status == "" {
		p.Status = StatusActive
	}
}

// NormalizeCode trims, collapses internal whitespace and uppercases an abbreviation.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.Join(strings.Fields(code), " "))
}

// Name returns the display name in the given language.
func (p Program) Name(lang locale.Lang) string {
	return lang.Pick(p.NameEn, p.NameAr)
}

// IsActive reports whether the status is active, ignoring case.
func (p Program) IsActive() bool {
	return strings.EqualFold(p.Status, StatusActive)
}

// DisplayStatus returns the status, defaulting to Active when blank.
func (p Program) DisplayStatus() string {
	if p.Status == "" {
		return StatusActive
	}
	return p.Status
}
