package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickline/lead-api/internal/domain"
	"github.com/brickline/lead-api/internal/workflow"
)

func TestParseMoney(t *testing.T) {
	t.Run("plain number", func(t *testing.T) {
		v, ok := workflow.ParseMoney("1000000")
		assert.True(t, ok)
		assert.Equal(t, 1000000.0, v)
	})

	t.Run("display formatting is stripped", func(t *testing.T) {
		v, ok := workflow.ParseMoney("₹ 10,00,000")
		assert.True(t, ok)
		assert.Equal(t, 1000000.0, v)

		v, ok = workflow.ParseMoney("Rs. 2,50,000.50")
		assert.True(t, ok)
		assert.Equal(t, 250000.50, v)
	})

	t.Run("decimal value", func(t *testing.T) {
		v, ok := workflow.ParseMoney("2.5")
		assert.True(t, ok)
		assert.Equal(t, 2.5, v)
	})

	t.Run("empty input", func(t *testing.T) {
		_, ok := workflow.ParseMoney("")
		assert.False(t, ok)
	})

	t.Run("no digits", func(t *testing.T) {
		_, ok := workflow.ParseMoney("tbd")
		assert.False(t, ok)
	})

	t.Run("multiple decimal points", func(t *testing.T) {
		_, ok := workflow.ParseMoney("1.2.3")
		assert.False(t, ok)
	})
}

func TestComputeCommission(t *testing.T) {
	t.Run("reference value", func(t *testing.T) {
		assert.Equal(t, 25000.0, workflow.ComputeCommission(1000000))
	})

	t.Run("rounded to two decimals", func(t *testing.T) {
		assert.Equal(t, 18750.0, workflow.ComputeCommission(750000))
		assert.Equal(t, 3086.4, workflow.ComputeCommission(123456))
		assert.Equal(t, 0.03, workflow.ComputeCommission(1.10))
	})
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"iso date", "2024-05-10", "2024-05-10", true},
		{"day first slashes", "10/05/2024", "2024-05-10", true},
		{"day first dashes", "10-05-2024", "2024-05-10", true},
		{"rfc3339", "2024-05-10T09:30:00Z", "2024-05-10", true},
		{"past date accepted", "1999-12-31", "1999-12-31", true},
		{"whitespace trimmed", "  2024-05-10 ", "2024-05-10", true},
		{"empty", "", "", false},
		{"garbage", "next tuesday", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := workflow.NormalizeDate(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidateSaleValue(t *testing.T) {
	t.Run("valid value", func(t *testing.T) {
		v, err := workflow.ValidateSaleValue("1,000,000")
		require.NoError(t, err)
		assert.Equal(t, 1000000.0, v)
	})

	t.Run("missing value", func(t *testing.T) {
		_, err := workflow.ValidateSaleValue("")
		verr, ok := workflow.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, workflow.KindMissingSaleValue, verr.Kind)
	})

	t.Run("zero value", func(t *testing.T) {
		_, err := workflow.ValidateSaleValue("0")
		verr, ok := workflow.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, workflow.KindMissingSaleValue, verr.Kind)
	})
}

func validStageInput() domain.PaymentStageInput {
	return domain.PaymentStageInput{
		StageName: "Token Amount",
		Amount:    "100000",
		DueDate:   "2024-06-01",
		Status:    "unpaid",
	}
}

func TestValidatePaymentSchedule(t *testing.T) {
	t.Run("empty schedule", func(t *testing.T) {
		_, err := workflow.ValidatePaymentSchedule(nil)
		verr, ok := workflow.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, workflow.KindEmptySchedule, verr.Kind)
	})

	t.Run("missing stage name reports the row index", func(t *testing.T) {
		bad := validStageInput()
		bad.StageName = "  "
		_, err := workflow.ValidatePaymentSchedule([]domain.PaymentStageInput{validStageInput(), bad})
		verr, ok := workflow.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, workflow.KindIncompleteStage, verr.Kind)
		assert.Equal(t, 1, verr.Index)
	})

	t.Run("missing amount", func(t *testing.T) {
		bad := validStageInput()
		bad.Amount = ""
		_, err := workflow.ValidatePaymentSchedule([]domain.PaymentStageInput{bad})
		verr, ok := workflow.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, workflow.KindIncompleteStage, verr.Kind)
		assert.Equal(t, 0, verr.Index)
	})

	t.Run("missing due date", func(t *testing.T) {
		bad := validStageInput()
		bad.DueDate = ""
		_, err := workflow.ValidatePaymentSchedule([]domain.PaymentStageInput{bad})
		verr, ok := workflow.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, workflow.KindIncompleteStage, verr.Kind)
	})

	t.Run("unknown status", func(t *testing.T) {
		bad := validStageInput()
		bad.Status = "pending"
		_, err := workflow.ValidatePaymentSchedule([]domain.PaymentStageInput{bad})
		verr, ok := workflow.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, workflow.KindIncompleteStage, verr.Kind)
	})

	t.Run("missing status reports the row index", func(t *testing.T) {
		bad := validStageInput()
		bad.Status = "  "
		_, err := workflow.ValidatePaymentSchedule([]domain.PaymentStageInput{validStageInput(), bad})
		verr, ok := workflow.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, workflow.KindIncompleteStage, verr.Kind)
		assert.Equal(t, 1, verr.Index)
	})

	t.Run("status is case-insensitive", func(t *testing.T) {
		in := validStageInput()
		in.StageName = "On Possession"
		in.Status = "PAID"
		in.PaidDate = "15/06/2024"

		out, err := workflow.ValidatePaymentSchedule([]domain.PaymentStageInput{in})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, domain.PaymentStatusPaid, out[0].Status)
		assert.Equal(t, "2024-06-15", out[0].PaidDate)
	})

	t.Run("paid date is kept regardless of status", func(t *testing.T) {
		in := validStageInput()
		in.Status = "unpaid"
		in.PaidDate = "2024-06-15"

		out, err := workflow.ValidatePaymentSchedule([]domain.PaymentStageInput{in})
		require.NoError(t, err)
		assert.Equal(t, "2024-06-15", out[0].PaidDate)
	})

	t.Run("normalizes amounts and dates", func(t *testing.T) {
		in := domain.PaymentStageInput{
			StageName: "  Token Amount  ",
			Amount:    "₹ 1,00,000",
			DueDate:   "01/06/2024",
			Status:    "unpaid",
			Remark:    "  on signing  ",
		}
		out, err := workflow.ValidatePaymentSchedule([]domain.PaymentStageInput{in})
		require.NoError(t, err)
		assert.Equal(t, "Token Amount", out[0].StageName)
		assert.Equal(t, 100000.0, out[0].Amount)
		assert.Equal(t, "2024-06-01", out[0].DueDate)
		assert.Equal(t, "on signing", out[0].Remark)
	})

	t.Run("validation is idempotent over its own output", func(t *testing.T) {
		in := domain.PaymentStageInput{
			StageName: "Token Amount",
			Amount:    "₹ 1,00,000",
			DueDate:   "01/06/2024",
			Status:    "UNPAID",
		}
		first, err := workflow.ValidatePaymentSchedule([]domain.PaymentStageInput{in})
		require.NoError(t, err)

		again := []domain.PaymentStageInput{{
			StageName: first[0].StageName,
			Amount:    "100000",
			DueDate:   first[0].DueDate,
			Status:    string(first[0].Status),
			PaidDate:  first[0].PaidDate,
			Remark:    first[0].Remark,
		}}
		second, err := workflow.ValidatePaymentSchedule(again)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestValidateSchedule(t *testing.T) {
	t.Run("derives commission from the sale value", func(t *testing.T) {
		out, err := workflow.ValidateSchedule(workflow.ScheduleInput{
			TotalSaleValue: "1000000",
			PaymentStages:  []domain.PaymentStageInput{validStageInput()},
		})
		require.NoError(t, err)
		assert.Equal(t, 1000000.0, out.TotalSaleValue)
		assert.Equal(t, domain.CommissionPercentage, out.CommissionPercentage)
		assert.Equal(t, 25000.0, out.CommissionAmount)
		require.Len(t, out.PaymentStages, 1)
	})

	t.Run("sale value is checked before the schedule", func(t *testing.T) {
		_, err := workflow.ValidateSchedule(workflow.ScheduleInput{
			TotalSaleValue: "",
			PaymentStages:  nil,
		})
		verr, ok := workflow.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, workflow.KindMissingSaleValue, verr.Kind)
	})
}
