package debate

import (
	"math"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
)

var quantKeywords = []string{"risk", "reward", "win rate", "break", "transaction", "slippage"}

var numberPattern = regexp.MustCompile(`\d+\.?\d*`)

// DetectMode flags a question as quant when any trading keyword appears.
func DetectMode(question string) Mode {
	lower := strings.ToLower(question)
	for _, kw := range quantKeywords {
		if strings.Contains(lower, kw) {
			return ModeQuant
		}
	}
	return ModeGeneral
}

// BreakEven computes the break-even win probability and expected value from
// the numbers embedded in the question, read positionally: risk, reward,
// then optional transaction cost and slippage. Returns ok=false when fewer
// than two numbers are present or the payoff spread is degenerate.
func BreakEven(question string) (p, ev float64, ok bool) {
	var nums []float64
	for _, m := range numberPattern.FindAllString(question, -1) {
		n, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	if len(nums) < 2 {
		return 0, 0, false
	}

	risk, reward := nums[0], nums[1]
	var transaction, slippage float64
	if len(nums) >= 3 {
		transaction = nums[2]
	}
	if len(nums) >= 4 {
		slippage = nums[3]
	}

	netWin := reward - transaction - slippage
	netLoss := -risk - transaction
	denom := netWin - netLoss
	if denom == 0 {
		return 0, 0, false
	}

	p = -netLoss / denom
	ev = p*netWin + (1-p)*netLoss
	return p, ev, true
}

const (
	equityTrades      = 200
	equityRewardRatio = 0.02
	equityRiskRatio   = 0.01
)

// MonteCarloEquity simulates a multiplicative equity curve: each trade wins
// with probability winProb, compounding +2% on a win and -1% on a loss.
func MonteCarloEquity(winProb float64) []float64 {
	curve := make([]float64, 0, equityTrades)
	capital := 1.0
	for i := 0; i < equityTrades; i++ {
		if rand.Float64() < winProb {
			capital *= 1 + equityRewardRatio
		} else {
			capital *= 1 - equityRiskRatio
		}
		curve = append(curve, math.Round(capital*10000)/10000)
	}
	return curve
}
