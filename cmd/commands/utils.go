package commands

import (
	"os"

	"xetproxy/pkg/logger"
)

func ExitOnError(err error) {
	logger.Error("xetproxy error", "err", err.Error())
	os.Exit(1)
}
