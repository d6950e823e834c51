package postgrest

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"centerdir/internal/domain/center"
	"centerdir/internal/domain/program"
)

// text accepts a JSON string, number or null. Older tables use integer keys.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	*t = text(b)
	return nil
}

func firstOf(values ...text) string {
	for _, v := range values {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return ""
}

// centerRow covers both attested center tables:
// {center_id, code, name_en, name_ar, status} and {id, code, name}.
type centerRow struct {
	CenterID text `json:"center_id"`
	ID       text `json:"id"`
	Code     text `json:"code"`
	NameEn   text `json:"name_en"`
	NameAr   text `json:"name_ar"`
	Name     text `json:"name"`
	Status   text `json:"status"`
}

func (r centerRow) toDomain() center.Center {
	c := center.Center{
		ID:     firstOf(r.CenterID, r.ID),
		Code:   string(r.Code),
		NameEn: firstOf(r.NameEn, r.Name),
		NameAr: string(r.NameAr),
		Status: string(r.Status),
	}
	c.Normalize()
	return c
}

// programRow covers both attested program tables: the bilingual
// {program_id, code, name_en, name_ar} shape and {id, program_code, program_name}.
type programRow struct {
	ProgramID   text `json:"program_id"`
	ID          text `json:"id"`
	CenterID    text `json:"center_id"`
	Code        text `json:"code"`
	ProgramCode text `json:"program_code"`
	NameEn      text `json:"name_en"`
	ProgramName text `json:"program_name"`
	NameAr      text `json:"name_ar"`
	Status      text `json:"status"`
	Description text `json:"description"`
	CreatedBy   text `json:"created_by"`
	CreatedAt   text `json:"created_at"`
}

func (r programRow) toDomain() program.Program {
	p := program.Program{
		ID:          firstOf(r.ProgramID, r.ID),
		CenterID:    string(r.CenterID),
		NameEn:      firstOf(r.NameEn, r.ProgramName),
		NameAr:      string(r.NameAr),
		Code:        firstOf(r.Code, r.ProgramCode),
		Status:      string(r.Status),
		Description: string(r.Description),
		CreatedBy:   string(r.CreatedBy),
		CreatedAt:   parseTimestamp(string(r.CreatedAt)),
	}
	p.Normalize()
	return p
}

// programInsert is the body sent on create; the bilingual shape is canonical.
type programInsert struct {
	CenterID    string `json:"center_id"`
	Code        string `json:"code,omitempty"`
	NameEn      string `json:"name_en"`
	NameAr      string `json:"name_ar,omitempty"`
	Status      string `json:"status,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedBy   string `json:"created_by,omitempty"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
