package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	haven "github.com/havenstore/haven-go"
	"github.com/havenstore/haven-go/internal/logging"
)

const (
	envCredential = "HAVEN_CREDENTIAL"
	envSponsorKey = "HAVEN_SPONSOR_KEY"
)

type appFlags struct {
	configPath string
	network    string
	credential string
	verbose    bool
}

func newRootCommand() *cobra.Command {
	flags := &appFlags{}

	cmd := &cobra.Command{
		Use:           "haven",
		Short:         "Store, encrypt, organize, and share assets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "path to a JSON config file")
	pf.StringVar(&flags.network, "network", "", "network to use (mainnet|testnet|local)")
	pf.StringVar(&flags.credential, "credential", "", "API credential secret (default $"+envCredential+")")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(
		newUploadCommand(flags),
		newGetCommand(flags),
		newRemoveCommand(flags),
		newListCommand(flags),
		newInfoCommand(flags),
		newFolderCommand(flags),
		newShareCommand(flags),
		newBucketCommand(flags),
	)
	return cmd
}

// buildClient resolves config from file or defaults, overlays flags and
// environment, and prompts for the credential secret when the terminal is
// interactive and nothing else supplied it.
func buildClient(ctx context.Context, flags *appFlags) (*haven.Client, error) {
	var cfg *haven.Config
	if flags.configPath != "" {
		loaded, err := haven.FromJSON(flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &haven.Config{}
		cfg.LoadDefaults()
	}

	if flags.network != "" {
		cfg.Network = haven.Network(flags.network)
	}
	if flags.credential != "" {
		cfg.Credential = flags.credential
	}
	if cfg.Credential == "" {
		cfg.Credential = os.Getenv(envCredential)
	}
	if cfg.SponsorKey == "" {
		cfg.SponsorKey = os.Getenv(envSponsorKey)
	}
	if cfg.Credential == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := promptSecret("API credential: ")
		if err != nil {
			return nil, err
		}
		cfg.Credential = secret
	}

	level := zapcore.InfoLevel
	if flags.verbose {
		level = zapcore.DebugLevel
	}
	cfg.Logger = logging.NewDefault(level)

	return haven.NewClient(ctx, cfg)
}

func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return string(secret), nil
}
