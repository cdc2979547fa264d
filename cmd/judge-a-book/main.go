package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/judgeabook/judge-a-book/internal/config"
	"github.com/judgeabook/judge-a-book/internal/download"
	"github.com/judgeabook/judge-a-book/internal/logging"
	"github.com/judgeabook/judge-a-book/internal/model"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const usage = `judge-a-book - fetch book cover images from a collection

Usage:
  judge-a-book [flags] fetch-covers -c COLLECTION -o OUTDIR [-n COUNT] [-r high|hi|low|lo]
  judge-a-book [flags] init-config [PATH]
  judge-a-book --version

For interactive mode, use: judge-a-book-tui

Flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	global := newGlobalFlags()
	global.SetOutput(stderr)
	global.Usage = func() {
		fmt.Fprint(stderr, usage)
		global.PrintDefaults()
	}

	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	if version, _ := global.GetBool("version"); version {
		fmt.Fprintf(stdout, "judge-a-book %s\n", config.Version)
		return 0
	}

	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	switch cmd := global.Arg(0); cmd {
	case "fetch-covers":
		return fetchCovers(global, global.Args()[1:], stdout, stderr)
	case "init-config":
		return initConfig(global, global.Args()[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		global.Usage()
		return 2
	}
}

func newGlobalFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("judge-a-book", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	config.RegisterFlags(fs)
	fs.String("config", "", "path to a YAML config file (default ./judge-a-book.yaml or the user config dir)")
	fs.String("env-file", ".env", "dotenv file with API keys")
	fs.Bool("version", false, "print the version and exit")
	return fs
}

// subcommand returns a flag set for name that also accepts every global flag.
func subcommand(name string, global *pflag.FlagSet, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.AddFlagSet(global)
	return fs
}

func loadSettings(fs *pflag.FlagSet) (*config.Settings, error) {
	configFile, _ := fs.GetString("config")
	envFile, _ := fs.GetString("env-file")
	return config.Load(config.LoadOptions{
		ConfigFile: configFile,
		EnvFile:    envFile,
		Flags:      fs,
	})
}

// fetchCovers runs the pipeline and prints exactly one JSON result line.
// Every outcome past this point exits 0; failures are reported in the JSON.
func fetchCovers(global *pflag.FlagSet, args []string, stdout, stderr io.Writer) int {
	fs := subcommand("fetch-covers", global, stderr)
	collection := fs.StringP("collection", "c", "", "collection (policy) id to fetch covers for")
	outDir := fs.StringP("output", "o", "", "directory to write covers to")
	count := fs.IntP("count", "n", 10, "number of covers the output directory should hold")
	resolution := fs.StringP("resolution", "r", "high", "cover resolution: high, hi, low or lo")

	result := func() model.Result {
		if err := fs.Parse(args); err != nil {
			return model.Failure(err)
		}
		if *collection == "" {
			return model.Failure(errors.New("--collection is required"))
		}
		if *outDir == "" {
			return model.Failure(errors.New("--output is required"))
		}
		res, err := model.ParseResolution(*resolution)
		if err != nil {
			return model.Failure(err)
		}

		settings, err := loadSettings(fs)
		if err != nil {
			return model.Failure(err)
		}
		if err := settings.Validate(); err != nil {
			return model.Failure(err)
		}

		log, closeLog, err := logging.New(settings.Log)
		if err != nil {
			return model.Failure(err)
		}
		defer closeLog()
		log = log.With(zap.String("run_id", uuid.NewString()))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		pipeline := download.New(settings, log, logProgress(log))
		files, err := pipeline.Fetch(ctx, download.Request{
			CollectionID: *collection,
			OutDir:       *outDir,
			Count:        *count,
			Resolution:   res,
		})
		if err != nil {
			log.Error("fetch failed", zap.Error(err), zap.Int("written", len(files)))
			return model.Failure(err)
		}
		return model.Success(files)
	}()

	if err := json.NewEncoder(stdout).Encode(result); err != nil {
		fmt.Fprintf(stderr, "Error writing result: %v\n", err)
	}
	return 0
}

// logProgress forwards pipeline events to the logger.
func logProgress(log *zap.Logger) func(download.ProgressEvent) {
	return func(event download.ProgressEvent) {
		switch event.Level {
		case download.LevelVerbose:
			log.Debug(event.Message)
		case download.LevelWarning:
			log.Warn(event.Message)
		case download.LevelError:
			log.Error(event.Message)
		default:
			log.Info(event.Message)
		}
	}
}

// initConfig writes the effective settings to a YAML file.
func initConfig(global *pflag.FlagSet, args []string, stdout, stderr io.Writer) int {
	fs := subcommand("init-config", global, stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	path := fs.Arg(0)
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			fmt.Fprintf(stderr, "Error locating config directory: %v\n", err)
			return 1
		}
	}

	settings, err := loadSettings(fs)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}
	if err := settings.Save(path); err != nil {
		fmt.Fprintf(stderr, "Error saving config: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Wrote %s\n", path)
	return 0
}
