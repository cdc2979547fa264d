package main

import (
	"fmt"
	"os"

	"github.com/judgeabook/judge-a-book/internal/config"
	"github.com/judgeabook/judge-a-book/internal/logging"
	"github.com/judgeabook/judge-a-book/internal/tui"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	fs := pflag.NewFlagSet("judge-a-book-tui", pflag.ExitOnError)
	config.RegisterFlags(fs)
	configFile := fs.String("config", "", "path to a YAML config file")
	envFile := fs.String("env-file", ".env", "dotenv file with API keys")
	fs.Parse(os.Args[1:])

	settings, err := config.Load(config.LoadOptions{ConfigFile: *configFile, EnvFile: *envFile, Flags: fs})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The alternate screen owns the terminal, so logs only go to a file.
	log, closeLog := zap.NewNop(), func() {}
	if settings.Log.File != "" {
		logCfg := settings.Log
		logCfg.Format = "json"
		if log, closeLog, err = logging.New(logCfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	err = tui.Run(settings, log)
	closeLog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
