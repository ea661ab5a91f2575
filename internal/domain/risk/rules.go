package risk

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/drivefit/riskd/internal/domain/model"
)

// Recognized metric names, matched case-insensitively.
const (
	metricHR   = "hr"
	metricHRV  = "hrv"
	metricSpO2 = "spo2"
	metricRR   = "rr"
)

// Threshold constants for the rule table.
var (
	hrModerateLow  = decimal.NewFromInt(101)
	hrHigh         = decimal.NewFromInt(120)
	hrvHigh        = decimal.NewFromInt(30)
	hrvModerateMax = decimal.NewFromInt(49)
	spo2High       = decimal.NewFromInt(93)
	spo2ModerateHi = decimal.NewFromInt(94)
	rrModerateLow  = decimal.NewFromInt(21)
	rrHigh         = decimal.NewFromInt(24)
)

// thresholdRule evaluates one metric against one band condition.
type thresholdRule struct {
	Metric string
	Match  func(v decimal.Decimal) bool
}

// highRules: HR > 120 OR HRV < 30 OR SpO2 < 93 OR RR > 24.
var highRules = []thresholdRule{
	{Metric: metricHR, Match: func(v decimal.Decimal) bool { return v.GreaterThan(hrHigh) }},
	{Metric: metricHRV, Match: func(v decimal.Decimal) bool { return v.LessThan(hrvHigh) }},
	{Metric: metricSpO2, Match: func(v decimal.Decimal) bool { return v.LessThan(spo2High) }},
	{Metric: metricRR, Match: func(v decimal.Decimal) bool { return v.GreaterThan(rrHigh) }},
}

// moderateRules: 101 <= HR <= 120 OR 30 <= HRV <= 49 OR 93 <= SpO2 <= 94 OR 21 <= RR <= 24.
var moderateRules = []thresholdRule{
	{Metric: metricHR, Match: func(v decimal.Decimal) bool {
		return v.GreaterThanOrEqual(hrModerateLow) && v.LessThanOrEqual(hrHigh)
	}},
	{Metric: metricHRV, Match: func(v decimal.Decimal) bool {
		return v.GreaterThanOrEqual(hrvHigh) && v.LessThanOrEqual(hrvModerateMax)
	}},
	{Metric: metricSpO2, Match: func(v decimal.Decimal) bool {
		return v.GreaterThanOrEqual(spo2High) && v.LessThanOrEqual(spo2ModerateHi)
	}},
	{Metric: metricRR, Match: func(v decimal.Decimal) bool {
		return v.GreaterThanOrEqual(rrModerateLow) && v.LessThanOrEqual(rrHigh)
	}},
}

// RuleClassifier applies the threshold table locally. It is the primary
// classifier; the delegate remains selectable for parity with the hosted
// labeler.
type RuleClassifier struct{}

// NewRuleClassifier creates the deterministic rule evaluator.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

// Classify evaluates high rules first, then moderate, then falls back to
// normal when at least one recognized metric is present. A sample with no
// usable recognized metric is unknown; absent metrics imply no risk.
func (c *RuleClassifier) Classify(_ context.Context, sample model.Sample) model.Label {
	readings := recognizedReadings(sample)
	if len(readings) == 0 {
		return model.LabelUnknown
	}

	for _, rule := range highRules {
		if v, ok := readings[rule.Metric]; ok && rule.Match(v) {
			return model.LabelHigh
		}
	}
	for _, rule := range moderateRules {
		if v, ok := readings[rule.Metric]; ok && rule.Match(v) {
			return model.LabelModerate
		}
	}
	return model.LabelNormal
}

// recognizedReadings collects values for known metrics, skipping entries
// that carried no parseable value.
func recognizedReadings(sample model.Sample) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(sample))
	for metric, r := range sample {
		if r.Unparsed {
			continue
		}
		switch strings.ToLower(metric) {
		case metricHR, metricHRV, metricSpO2, metricRR:
			out[strings.ToLower(metric)] = r.Value
		}
	}
	return out
}
