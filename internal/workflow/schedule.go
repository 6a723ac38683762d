package workflow

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/brickline/lead-api/internal/domain"
)

// dateLayouts are the input formats accepted for schedule dates. All
// dates leaving this package are normalized to YYYY-MM-DD.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"02-01-2006",
	"02/01/2006",
}

// ParseMoney parses a monetary amount from user input. Display
// formatting is tolerated: every character other than digits and the
// decimal point is discarded before parsing, so "₹ 1,00,000" and
// "100000" yield the same value. An empty or unparsable input returns
// ok=false.
func ParseMoney(raw string) (float64, bool) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// round2 rounds to two decimal places, half up.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// ComputeCommission derives the commission amount for a sale value at
// the fixed commission percentage, rounded to two decimals.
func ComputeCommission(totalSaleValue float64) float64 {
	return round2(totalSaleValue * domain.CommissionPercentage / 100)
}

// NormalizeDate parses a date in any accepted layout and returns it as
// YYYY-MM-DD. Past dates are accepted; the calendar restriction in the
// capture UI is cosmetic only.
func NormalizeDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// SchedulePaymentStage is one normalized row of a validated payment
// schedule. Amounts are parsed and dates are in YYYY-MM-DD form.
type SchedulePaymentStage struct {
	StageName string
	Amount    float64
	DueDate   string
	Status    domain.PaymentStatus
	PaidDate  string
	Remark    string
}

// ScheduleInput is the raw payment schedule as captured. Amounts and
// dates arrive as strings and are normalized during validation.
type ScheduleInput struct {
	TotalSaleValue string
	PaymentStages  []domain.PaymentStageInput
}

// ValidatedSchedule is the outcome of a successful schedule
// validation: the parsed sale value, derived commission and the
// normalized stage rows in their original order.
type ValidatedSchedule struct {
	TotalSaleValue       float64
	CommissionPercentage float64
	CommissionAmount     float64
	PaymentStages        []SchedulePaymentStage
}

// ValidateSaleValue parses a raw sale value and rejects missing,
// non-numeric or non-positive input.
func ValidateSaleValue(raw string) (float64, error) {
	v, ok := ParseMoney(raw)
	if !ok || v <= 0 {
		return 0, errMissingSaleValue()
	}
	return v, nil
}

// ValidatePaymentSchedule checks every row of a payment schedule for
// completeness and returns the normalized rows. The schedule must hold
// at least one row; each row needs a stage name, a positive amount, a
// due date and a recognized status. Validation is idempotent: the
// normalized output validates to itself.
func ValidatePaymentSchedule(stages []domain.PaymentStageInput) ([]SchedulePaymentStage, error) {
	if len(stages) == 0 {
		return nil, errEmptySchedule()
	}

	out := make([]SchedulePaymentStage, 0, len(stages))
	for i, in := range stages {
		name := strings.TrimSpace(in.StageName)
		if name == "" {
			return nil, errIncompleteStage(i, "stage name is required")
		}

		amount, ok := ParseMoney(in.Amount)
		if !ok || amount <= 0 {
			return nil, errIncompleteStage(i, "amount is required")
		}

		dueDate, ok := NormalizeDate(in.DueDate)
		if !ok {
			return nil, errIncompleteStage(i, "due date is required")
		}

		status := domain.PaymentStatus(strings.ToLower(strings.TrimSpace(in.Status)))
		if status == "" {
			return nil, errIncompleteStage(i, "status is required")
		}
		if !status.IsValid() {
			return nil, errIncompleteStage(i, "status must be one of unpaid, paid, overdue")
		}

		// paidDate is recorded whenever supplied; it is not
		// cross-checked against status.
		paidDate := ""
		if strings.TrimSpace(in.PaidDate) != "" {
			paidDate, ok = NormalizeDate(in.PaidDate)
			if !ok {
				return nil, errIncompleteStage(i, "paid date is not a valid date")
			}
		}

		out = append(out, SchedulePaymentStage{
			StageName: name,
			Amount:    amount,
			DueDate:   dueDate,
			Status:    status,
			PaidDate:  paidDate,
			Remark:    strings.TrimSpace(in.Remark),
		})
	}

	return out, nil
}

// ValidateSchedule validates a complete booking input: the sale value
// and every payment stage. On success the commission is derived from
// the parsed sale value.
func ValidateSchedule(in ScheduleInput) (*ValidatedSchedule, error) {
	saleValue, err := ValidateSaleValue(in.TotalSaleValue)
	if err != nil {
		return nil, err
	}

	stages, err := ValidatePaymentSchedule(in.PaymentStages)
	if err != nil {
		return nil, err
	}

	return &ValidatedSchedule{
		TotalSaleValue:       saleValue,
		CommissionPercentage: domain.CommissionPercentage,
		CommissionAmount:     ComputeCommission(saleValue),
		PaymentStages:        stages,
	}, nil
}
