// Package config provides configuration management for judge-a-book.
//
// This package handles:
//   - Default configuration values
//   - Loading settings from a YAML file, a .env file, JUDGE_* environment
//     variables and command-line flags
//   - Saving settings as YAML
//   - Building the Endpoints passed to the API clients
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Chain API: Blockfrost mainnet
//	// Asset API: https://ipfs.io/ipfs
//	// One metadata worker per available CPU, sequential downloads
//
// # Loading
//
//	flags := pflag.NewFlagSet("judge-a-book", pflag.ContinueOnError)
//	config.RegisterFlags(flags)
//	flags.Parse(os.Args[1:])
//
//	settings, err := config.Load(config.LoadOptions{Flags: flags})
//	if err != nil {
//	    return err
//	}
//	if err := settings.Validate(); err != nil {
//	    return err
//	}
//
// Sources are layered, later ones winning: defaults, judge-a-book.yaml,
// .env, environment (JUDGE_CHAIN_API_KEY, JUDGE_ASSET_API_KEY,
// JUDGE_CHAIN_URL, JUDGE_ASSETS_URL, JUDGE_WORKERS, ...), flags.
//
// # Saving Settings
//
//	err := settings.Save("/home/me/.config/judge-a-book/judge-a-book.yaml")
package config
