package main

import (
	"fmt"
	"os"

	"alphaquant-console/internal/cli"
	"alphaquant-console/internal/config"
	"alphaquant-console/internal/logging"
)

func main() {
	configDir := flagValue(os.Args[1:], "--config")

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logCfg := logging.DefaultLogConfig()
	if hasArg(os.Args[1:], "console") {
		// The full-screen console owns the terminal.
		logCfg = logging.FileOnly(logCfg)
	}
	logger := logging.NewLoggerWithConfig(logCfg)

	rootCmd := cli.NewRootCmd(cfg, logger, configDir)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flagValue extracts a flag before cobra parses anything, so the config
// directory can influence how the command tree is built.
func flagValue(args []string, name string) string {
	for i, arg := range args {
		if arg == name && i+1 < len(args) {
			return args[i+1]
		}
		if len(arg) > len(name) && arg[:len(name)+1] == name+"=" {
			return arg[len(name)+1:]
		}
	}
	return ""
}

func hasArg(args []string, want string) bool {
	for _, arg := range args {
		if arg == want {
			return true
		}
	}
	return false
}
