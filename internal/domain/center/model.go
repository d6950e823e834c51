package center

import (
	"errors"
	"strings"

	"centerdir/internal/domain/locale"
)

// StatusActive is the default status for centers.
const StatusActive = "active"

// Domain errors
var (
	ErrEmptyID   = errors.New("center id cannot be empty")
	ErrEmptyName = errors.New("center name cannot be empty")
)

// Center is an organizational unit owning zero or more programs.
type Center struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	NameEn string `json:"name_en"`
	NameAr string `json:"name_ar"`
	Status string `json:"status"`
}

// Validate checks if the Center has valid data.
// PRE: Center struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Center) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(c.NameEn) == "" && strings.TrimSpace(c.NameAr) == "" {
		return ErrEmptyName
	}
	return nil
}

// Normalize trims fields and applies the status default.
// POST: Status is non-empty
func (c *Center) Normalize() {
	c.ID = strings.TrimSpace(c.ID)
	c.Code = strings.TrimSpace(c.Code)
	c.NameEn = strings.TrimSpace(c.NameEn)
	c.NameAr = strings.TrimSpace(c.NameAr)
	c.Status = strings.TrimSpace(c.Status)
	if c.Status == "" {
		c.Status = StatusActive
	}
}

// Name returns the display name in the given language.
func (c Center) Name(lang locale.Lang) string {
	return lang.Pick(c.NameEn, c.NameAr)
}

// DisplayCode returns the code as shown to users.
func (c Center) DisplayCode() string {
	return strings.ToUpper(c.Code)
}

// heroCodes lists center codes with a dedicated hero cover on the detail page.
var heroCodes = map[string]bool{
	"EBRC": true, "ELSRC": true, "WRC": true, "PRC": true,
	"TED": true, "QHSWED": true, "SSDD": true,
}

// HeroClass returns the CSS class for the detail page cover.
func (c Center) HeroClass() string {
	if code := c.DisplayCode(); heroCodes[code] {
		return "hero-" + code
	}
	return "hero-ENG"
}

// DefaultTileImage is used when a center code has no tile of its own.
const DefaultTileImage = "/static/img/energy.svg"

var tileImages = map[string]string{
	"ENG":  "/static/img/energy.svg",
	"ENV":  "/static/img/environment.svg",
	"WAT":  "/static/img/water.svg",
	"PET":  "/static/img/petroleum.svg",
	"TE":   "/static/img/technology.svg",
	"QHSW": "/static/img/qhsw.svg",
	"SSDD": "/static/img/development.svg",
}

// TileImage returns the landing tile image path for the center.
func (c Center) TileImage() string {
	if src, ok := tileImages[c.DisplayCode()]; ok {
		return src
	}
	return DefaultTileImage
}
