// Package valuation implements a constant-growth discounted cash flow model
// and a WACC by growth sensitivity grid over it.
package valuation

import (
	"errors"
	"math"

	"github.com/bobmcallan/vire-valuation/internal/models"
)

// Precondition failures, checked in this order.
var (
	ErrMissingInputs        = errors.New("Missing FCF or shares.")
	ErrMissingRates         = errors.New("Missing rate assumptions.")
	ErrWACCNotAboveTerminal = errors.New("WACC must be greater than terminal growth.")
	ErrInvalidWACC          = errors.New("WACC must be greater than -100%.")
	ErrInvalidYears         = errors.New("Forecast years must be between 1 and 100.")
	ErrNonFiniteResult      = errors.New("Valuation did not produce a finite value.")
)

// Default assumptions.
const (
	DefaultWACC           = 0.10
	DefaultGrowth         = 0.06
	DefaultTerminalGrowth = 0.03
	DefaultYears          = 5

	// MaxYears bounds the explicit forecast horizon.
	MaxYears = 100
)

// Input is the data a valuation is run on. Rates may be fractions or
// whole-number percentages.
type Input struct {
	FCF            models.Num
	Shares         models.Num
	NetDebt        models.Num
	WACC           models.Num
	Growth         models.Num
	TerminalGrowth models.Num
	Years          int
}

// Value runs the DCF. Net debt is optional and treated as zero when missing.
func Value(in Input) (*models.Valuation, error) {
	wacc := NormalizeRate(in.WACC)
	g := NormalizeRate(in.Growth)
	tg := NormalizeRate(in.TerminalGrowth)

	if !in.FCF.Valid || !in.Shares.Valid || in.Shares.Value == 0 {
		return nil, ErrMissingInputs
	}
	if !wacc.Valid || !g.Valid || !tg.Valid {
		return nil, ErrMissingRates
	}
	if wacc.Value <= tg.Value {
		return nil, ErrWACCNotAboveTerminal
	}
	if wacc.Value <= -1 {
		return nil, ErrInvalidWACC
	}
	if in.Years < 1 || in.Years > MaxYears {
		return nil, ErrInvalidYears
	}

	rows := make([]models.ProjectionRow, in.Years)
	sumPV := 0.0
	for t := 1; t <= in.Years; t++ {
		fcf := in.FCF.Value * math.Pow(1+g.Value, float64(t))
		df := 1 / math.Pow(1+wacc.Value, float64(t))
		pv := fcf * df
		rows[t-1] = models.ProjectionRow{Year: t, FCF: fcf, DiscountFactor: df, PVFCF: pv}
		sumPV += pv
	}

	last := rows[in.Years-1].FCF
	tv := last * (1 + tg.Value) / (wacc.Value - tg.Value)
	pvTV := tv / math.Pow(1+wacc.Value, float64(in.Years))

	ev := sumPV + pvTV
	equity := ev - in.NetDebt.Or(0)
	perShare := equity / in.Shares.Value
	if !finite(ev) || !finite(equity) || !finite(perShare) {
		return nil, ErrNonFiniteResult
	}

	return &models.Valuation{
		Assumptions: models.Assumptions{
			WACC:           wacc.Value,
			Growth:         g.Value,
			TerminalGrowth: tg.Value,
			Years:          in.Years,
		},
		EnterpriseValue: ev,
		EquityValue:     equity,
		PerShare:        perShare,
		TerminalValue:   tv,
		PVTerminalValue: pvTV,
		Projection:      rows,
	}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
