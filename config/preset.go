package config

import (
	"fmt"
	"os"
	"time"

	"equity-dashboard/models"

	"gopkg.in/yaml.v3"
)

// DefaultCompany is preselected when no preset names any company
const DefaultCompany = "TATA CONSULTANCY SERVICES LTD."

// DefaultDashboardOptions mirrors the dashboard's initial sidebar state
func DefaultDashboardOptions() models.DashboardOptions {
	return models.DashboardOptions{
		Companies:          []string{DefaultCompany},
		Start:              time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		End:                time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC),
		ShowClose:          true,
		ShowMovingAverages: true,
	}
}

// Preset is the YAML form of the dashboard defaults. Omitted keys keep the
// built-in value.
type Preset struct {
	Companies          []string `yaml:"companies"`
	StartDate          string   `yaml:"start_date"`
	EndDate            string   `yaml:"end_date"`
	ShowClose          *bool    `yaml:"show_close"`
	ShowMovingAverages *bool    `yaml:"show_moving_averages"`
	ShowBollingerBands *bool    `yaml:"show_bollinger_bands"`
	ShowRSI            *bool    `yaml:"show_rsi"`
	ShowVolatility     *bool    `yaml:"show_volatility"`
}

// LoadPreset reads a preset file
func LoadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}
	return ParsePreset(data)
}

// ParsePreset parses preset YAML
func ParsePreset(data []byte) (*Preset, error) {
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse preset: %w", err)
	}
	return &p, nil
}

// Apply overlays the preset on base
func (p *Preset) Apply(base models.DashboardOptions) (models.DashboardOptions, error) {
	out := base
	if len(p.Companies) > 0 {
		out.Companies = append([]string(nil), p.Companies...)
	}
	if p.StartDate != "" {
		t, err := time.Parse(models.DateLayout, p.StartDate)
		if err != nil {
			return base, fmt.Errorf("invalid start_date %q: %w", p.StartDate, err)
		}
		out.Start = t
	}
	if p.EndDate != "" {
		t, err := time.Parse(models.DateLayout, p.EndDate)
		if err != nil {
			return base, fmt.Errorf("invalid end_date %q: %w", p.EndDate, err)
		}
		out.End = t
	}
	setBool(&out.ShowClose, p.ShowClose)
	setBool(&out.ShowMovingAverages, p.ShowMovingAverages)
	setBool(&out.ShowBollingerBands, p.ShowBollingerBands)
	setBool(&out.ShowRSI, p.ShowRSI)
	setBool(&out.ShowVolatility, p.ShowVolatility)
	return out, nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
