package ledger

import (
	"math/big"
	"strings"
)

const nativeDecimals = 18

// FormatNative renders a wei amount in whole native units, trimming trailing
// zeros ("1500000000000000000" -> "1.5").
func FormatNative(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	neg := wei.Sign() < 0
	abs := new(big.Int).Abs(wei)

	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(nativeDecimals), nil)
	whole, frac := new(big.Int).QuoRem(abs, unit, new(big.Int))

	out := whole.String()
	if frac.Sign() != 0 {
		fracStr := frac.String()
		fracStr = strings.Repeat("0", nativeDecimals-len(fracStr)) + fracStr
		out += "." + strings.TrimRight(fracStr, "0")
	}
	if neg {
		out = "-" + out
	}
	return out
}

// ExplorerURL links a transaction hash to the configured block explorer.
func ExplorerURL(base, txHash string) string {
	if base == "" || txHash == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/tx/" + txHash
}
