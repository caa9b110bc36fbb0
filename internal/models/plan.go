// Package models defines the core domain entities: daily plans, trade
// ideas, and model-quality payloads from the anjaylytics scoring service.
package models

import (
	"errors"
	"fmt"
	"time"
)

// Idea is a single trade suggestion inside a daily plan. Field names
// mirror the scoring-service JSON.
type Idea struct {
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name"`
	Market    string   `json:"market"`
	Price     float64  `json:"price"`
	P         float64  `json:"p"`
	EV        float64  `json:"ev"`
	Entry     float64  `json:"entry"`
	Stop      float64  `json:"stop"`
	Take      float64  `json:"take"`
	SizeBWP   float64  `json:"size_bwp"`
	Rationale string   `json:"rationale"`
	Headlines []string `json:"headlines"`
}

// Validate checks idea field constraints.
func (i *Idea) Validate() error {
	if i.Symbol == "" {
		return errors.New("idea symbol must not be empty")
	}
	if i.Market == "" {
		return errors.New("idea market must not be empty")
	}
	if i.P < 0.0 || i.P > 1.0 {
		return errors.New("idea probability must be between 0.0 and 1.0")
	}
	if i.Price < 0 {
		return errors.New("idea price must not be negative")
	}
	if i.Entry <= 0 {
		return errors.New("idea entry must be positive")
	}
	if i.Stop <= 0 {
		return errors.New("idea stop must be positive")
	}
	if i.Take <= 0 {
		return errors.New("idea take must be positive")
	}
	if i.SizeBWP < 0 {
		return errors.New("idea size must not be negative")
	}
	return nil
}

// CashAdvice is the service's suggestion for the part of the budget to
// keep out of the market today.
type CashAdvice struct {
	Suggested float64 `json:"suggested"`
	Reason    string  `json:"reason"`
}

// Plan is the daily trade plan returned by GET /plan/today.
type Plan struct {
	AsOf   string     `json:"asof"`
	Preset Preset     `json:"preset"`
	Ideas  []Idea     `json:"ideas"`
	Cash   CashAdvice `json:"cash"`
}

// Validate checks plan field constraints, including every idea.
func (p *Plan) Validate() error {
	if _, err := time.Parse("2006-01-02", p.AsOf); err != nil {
		return fmt.Errorf("plan asof must be YYYY-MM-DD: %w", err)
	}
	if err := p.Preset.Validate(); err != nil {
		return err
	}
	for idx := range p.Ideas {
		if err := p.Ideas[idx].Validate(); err != nil {
			return fmt.Errorf("idea %d: %w", idx, err)
		}
	}
	if p.Cash.Suggested < 0 {
		return errors.New("cash suggestion must not be negative")
	}
	return nil
}

// BrierResponse is the GET /metrics payload. Brier stays nil until the
// service has resolved predictions to score.
type BrierResponse struct {
	Brier *float64 `json:"brier"`
}

// ReliabilityBin is one calibration bucket from GET /reliability.
type ReliabilityBin struct {
	PAvg  float64 `json:"p_avg"`
	YRate float64 `json:"y_rate"`
	N     int     `json:"n"`
}

// ReliabilityResponse is the GET /reliability payload.
type ReliabilityResponse struct {
	Calibration []ReliabilityBin `json:"calibration"`
}
