package models

import (
	"fmt"
	"strconv"
)

// Preset selects the market universe the scoring service draws ideas from.
type Preset string

const (
	PresetBotswana Preset = "Botswana"
	PresetGlobal   Preset = "Global"
)

// Validate checks that the preset is one the service understands.
func (p Preset) Validate() error {
	switch p {
	case PresetBotswana, PresetGlobal:
		return nil
	}
	return fmt.Errorf("unknown preset %q", string(p))
}

// RiskCategory is the request-level risk mode derived from the slider.
type RiskCategory string

const (
	RiskConservative RiskCategory = "conservative"
	RiskBalanced     RiskCategory = "balanced"
	RiskAggressive   RiskCategory = "aggressive"
)

// Validate checks that the category is one the service understands.
func (c RiskCategory) Validate() error {
	switch c {
	case RiskConservative, RiskBalanced, RiskAggressive:
		return nil
	}
	return fmt.Errorf("unknown risk category %q", string(c))
}

// Display-level floors. The scoring service accepts smaller values, so
// these are enforced by the views, not the wire.
const (
	MinDailyBudgetPula = 50
	MinBankrollPula    = 500
)

// PlanRequest is the parameter tuple for one GET /plan/today call.
type PlanRequest struct {
	DailyBudgetPula float64
	BankrollPula    float64
	Risk            RiskCategory
	Preset          Preset
}

// Validate checks the request against the display floors and the enums.
func (r *PlanRequest) Validate() error {
	if r.DailyBudgetPula < MinDailyBudgetPula {
		return fmt.Errorf("daily budget must be at least %d pula", MinDailyBudgetPula)
	}
	if r.BankrollPula < MinBankrollPula {
		return fmt.Errorf("bankroll must be at least %d pula", MinBankrollPula)
	}
	if err := r.Risk.Validate(); err != nil {
		return err
	}
	return r.Preset.Validate()
}

// Key returns a stable identity for the tuple so callers can recognize
// a repeat of the request they already issued.
func (r *PlanRequest) Key() string {
	return strconv.FormatFloat(r.DailyBudgetPula, 'f', -1, 64) + "|" +
		strconv.FormatFloat(r.BankrollPula, 'f', -1, 64) + "|" +
		string(r.Risk) + "|" + string(r.Preset)
}
