package models

import (
	"encoding/json"
	"fmt"

	"github.com/mmynk/timecard/internal/apperr"
)

// RoundMode selects how elapsed shift time is turned into billable hours.
type RoundMode string

const (
	RoundExact       RoundMode = "exact"
	RoundQuarterHour RoundMode = "quarter_hour"
	RoundHalfHour    RoundMode = "half_hour"
	RoundCustom      RoundMode = "custom"
)

// RoundPolicy is an employment's rounding rule.
//
// The interval only exists for RoundCustom; the other modes carry a fixed interval
// (or none, for exact). Build values with the constructors below so a custom policy
// always has a positive interval.
type RoundPolicy struct {
	mode     RoundMode
	interval int
}

func ExactRounding() RoundPolicy       { return RoundPolicy{mode: RoundExact} }
func QuarterHourRounding() RoundPolicy { return RoundPolicy{mode: RoundQuarterHour} }
func HalfHourRounding() RoundPolicy    { return RoundPolicy{mode: RoundHalfHour} }

// CustomRounding snaps to a caller-chosen interval in minutes.
func CustomRounding(minutes int) (RoundPolicy, error) {
	if minutes <= 0 {
		return RoundPolicy{}, apperr.Validation(apperr.CodeInvalidRounding,
			"Round interval must be a positive number of minutes for custom rounding")
	}
	return RoundPolicy{mode: RoundCustom, interval: minutes}, nil
}

// ParseRoundPolicy builds a policy from its persisted form.
// interval is ignored unless mode is custom.
func ParseRoundPolicy(mode string, interval int) (RoundPolicy, error) {
	switch RoundMode(mode) {
	case RoundExact:
		return ExactRounding(), nil
	case RoundQuarterHour:
		return QuarterHourRounding(), nil
	case RoundHalfHour:
		return HalfHourRounding(), nil
	case RoundCustom:
		return CustomRounding(interval)
	default:
		return RoundPolicy{}, apperr.Validation(apperr.CodeInvalidRounding,
			fmt.Sprintf("Round mode %q is not one of exact, quarter_hour, half_hour, custom", mode))
	}
}

// Mode returns the rounding mode. The zero RoundPolicy reports RoundExact.
func (p RoundPolicy) Mode() RoundMode {
	if p.mode == "" {
		return RoundExact
	}
	return p.mode
}

// Interval returns the snapping interval in minutes, 0 for exact rounding.
func (p RoundPolicy) Interval() int {
	switch p.Mode() {
	case RoundQuarterHour:
		return 15
	case RoundHalfHour:
		return 30
	case RoundCustom:
		return p.interval
	default:
		return 0
	}
}

// CustomInterval returns the stored interval for custom policies and 0 otherwise.
// This is the value persisted in the round_interval column.
func (p RoundPolicy) CustomInterval() int {
	if p.Mode() != RoundCustom {
		return 0
	}
	return p.interval
}

func (p RoundPolicy) String() string {
	if p.Mode() == RoundCustom {
		return fmt.Sprintf("custom(%dm)", p.interval)
	}
	return string(p.Mode())
}

type roundPolicyJSON struct {
	Mode     RoundMode `json:"round_mode"`
	Interval *int      `json:"round_interval,omitempty"`
}

func (p RoundPolicy) MarshalJSON() ([]byte, error) {
	out := roundPolicyJSON{Mode: p.Mode()}
	if p.Mode() == RoundCustom {
		interval := p.interval
		out.Interval = &interval
	}
	return json.Marshal(out)
}

func (p *RoundPolicy) UnmarshalJSON(data []byte) error {
	var in roundPolicyJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	interval := 0
	if in.Interval != nil {
		interval = *in.Interval
	}
	parsed, err := ParseRoundPolicy(string(in.Mode), interval)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
