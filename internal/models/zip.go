package models

import "errors"

// ZIP lookup error codes. Every lookup terminates in exactly one of
// Resolved or one of these rejections.
const (
	ZipErrInvalidFormat = "INVALID_ZIP_FORMAT"
	ZipErrNotTexas      = "NOT_TEXAS"
	ZipErrCooperative   = "COOPERATIVE"
	ZipErrNotFound      = "NOT_FOUND"
)

var (
	ErrInvalidZipFormat = errors.New("zip code must be exactly 5 digits")
	ErrNotTexas         = errors.New("zip code is outside Texas")
	ErrCooperative      = errors.New("zip code is served by an electric cooperative")
	ErrZipNotFound      = errors.New("zip code not found in coverage table")
)

// ZipMappingEntry is one row of the static ZIP-to-city table, loaded once
// at startup and read-only for the process lifetime.
type ZipMappingEntry struct {
	Zip         string `yaml:"zip" json:"zip"`
	CitySlug    string `yaml:"city" json:"city"`
	TDSPName    string `yaml:"tdsp" json:"tdsp"`
	TDSPDuns    string `yaml:"tdsp_duns" json:"tdsp_duns"`
	Deregulated bool   `yaml:"deregulated" json:"deregulated"`
	Cooperative string `yaml:"cooperative,omitempty" json:"cooperative,omitempty"`
	CoopPhone   string `yaml:"coop_phone,omitempty" json:"coop_phone,omitempty"`
}

// CityInfo is static city/TDSP metadata.
type CityInfo struct {
	Slug       string `yaml:"slug" json:"slug"`
	Name       string `yaml:"name" json:"name"`
	TDSPName   string `yaml:"tdsp" json:"tdsp"`
	TDSPDuns   string `yaml:"tdsp_duns" json:"tdsp_duns"`
	Population int    `yaml:"population,omitempty" json:"population,omitempty"`
}

// ZipResolution is the success payload of a ZIP lookup.
type ZipResolution struct {
	Zip        string  `json:"zip"`
	CitySlug   string  `json:"city"`
	CityName   string  `json:"city_name,omitempty"`
	TDSPName   string  `json:"tdsp"`
	TDSPDuns   string  `json:"tdsp_duns,omitempty"`
	RoutingURL string  `json:"routing_url"`
	PlanCount  int     `json:"plan_count"`
	Confidence float64 `json:"confidence"`
}

// ZipError is the typed rejection payload of a ZIP lookup.
type ZipError struct {
	Zip         string `json:"zip"`
	Code        string `json:"code"`
	Message     string `json:"message"`
	Cooperative string `json:"cooperative,omitempty"`
	CoopPhone   string `json:"coop_phone,omitempty"`
}

func (e *ZipError) Error() string { return e.Code + ": " + e.Message }

// Unwrap maps the rejection code to its sentinel so callers can branch
// with errors.Is instead of comparing code strings.
func (e *ZipError) Unwrap() error {
	switch e.Code {
	case ZipErrInvalidFormat:
		return ErrInvalidZipFormat
	case ZipErrNotTexas:
		return ErrNotTexas
	case ZipErrCooperative:
		return ErrCooperative
	case ZipErrNotFound:
		return ErrZipNotFound
	default:
		return nil
	}
}
