package commands

import (
	"fmt"
	"path/filepath"
)

const helpText = `XET protocol HTTP proxy.

Usage:
  %[1]s run [config.yml]   start the proxy server
  %[1]s version            print the version
  %[1]s help               show this message

Environment:
  HF_TOKEN       Hugging Face token passed to the xet tool (required)
  PORT           listen port (default 8080)
  ZIG_BIN_PATH   path of the xet tool (default /usr/local/bin/xet-download)
  BROKER_URI     redis URI download events are published to (optional)
`

func HandleHelp(args []string) {
	name := "xetproxy"
	if len(args) > 0 {
		name = filepath.Base(args[0])
	}

	fmt.Printf(helpText, name) //nolint
}
