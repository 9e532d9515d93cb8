package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/motofin/motofin-api/internal/models"
	"github.com/motofin/motofin-api/pkg/money"
)

// PaymentScheduleService generates amortization schedules. It is pure: it
// touches no storage, the caller persists the returned lines.
type PaymentScheduleService struct{}

// NewPaymentScheduleService creates a payment schedule service
func NewPaymentScheduleService() *PaymentScheduleService {
	return &PaymentScheduleService{}
}

// BuildSchedule produces the loan's monthly installments using simple
// interest: a flat payment for every month except the last, which absorbs
// the rounding remainder so the principal and interest columns sum exactly
// to the loan's principal and total interest. Due dates advance one
// calendar month per installment from the start date, clamped to month
// length. A loan with nothing left to finance gets an empty schedule.
// Requires loan.FinancingTerm to be loaded.
func (s *PaymentScheduleService) BuildSchedule(loan *models.LoanApplication, startDate time.Time) ([]models.PaymentSchedule, error) {
	principal := loan.PrincipalAmount
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, nil
	}

	totalMonths := loan.FinancingTerm.TotalMonths()
	if totalMonths <= 0 {
		return nil, &ValidationError{Field: "financing_term_id", Message: "term must cover at least one month"}
	}

	totalInterest := loan.TotalInterest()
	monthlyPayment := loan.CalculateMonthlyPayment()

	basePrincipal := money.Round2(principal.Div(decimal.NewFromInt(int64(totalMonths))))
	basePrincipal = money.Min(basePrincipal, monthlyPayment)

	schedules := make([]models.PaymentSchedule, 0, totalMonths)
	paidPrincipal := decimal.Zero
	paidInterest := decimal.Zero

	for i := 1; i < totalMonths; i++ {
		linePrincipal := basePrincipal
		lineInterest := monthlyPayment.Sub(linePrincipal)
		if lineInterest.IsNegative() {
			linePrincipal = monthlyPayment
			lineInterest = decimal.Zero
		}

		schedules = append(schedules, models.PaymentSchedule{
			LoanApplicationID: loan.ID,
			Sequence:          i,
			DueDate:           money.AddMonths(startDate, i),
			PrincipalAmount:   linePrincipal,
			InterestAmount:    lineInterest,
			TotalAmount:       monthlyPayment,
			Status:            models.ScheduleStatusDue,
		})
		paidPrincipal = paidPrincipal.Add(linePrincipal)
		paidInterest = paidInterest.Add(lineInterest)
	}

	// The final line closes out whatever the flat installments left over.
	finalPrincipal := money.Max(principal.Sub(paidPrincipal), decimal.Zero)
	finalInterest := money.Max(totalInterest.Sub(paidInterest), decimal.Zero)
	schedules = append(schedules, models.PaymentSchedule{
		LoanApplicationID: loan.ID,
		Sequence:          totalMonths,
		DueDate:           money.AddMonths(startDate, totalMonths),
		PrincipalAmount:   finalPrincipal,
		InterestAmount:    finalInterest,
		TotalAmount:       finalPrincipal.Add(finalInterest),
		Status:            models.ScheduleStatusDue,
	})

	return schedules, nil
}
