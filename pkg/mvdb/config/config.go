package config

import (
	"os"
	"strconv"
)

var (
	txRetry int
)

// GetTxRetry returns how many times a failed transaction is retried. It
// never returns less than 3.
func GetTxRetry() int {
	if txRetry != 0 {
		return txRetry
	}

	txRetryCount64, err := strconv.ParseInt(os.Getenv("MVAULT_TX_RETRY"), 10, 32)
	if err != nil || txRetryCount64 < 3 {
		txRetryCount64 = 3
	}

	txRetry = int(txRetryCount64)

	return txRetry
}
