package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/lidofinance/frostsig/common"
)

const (
	flagOutDir        = "out_dir"
	flagMaxSigners    = "max_signers"
	flagMinSigners    = "min_signers"
	flagGroupKey      = "group_key"
	flagStrategy      = "strategy"
	flagRequireMatch  = "require_match"
	flagShare         = "share"
	flagStoreDBDSN    = "key_store_dbdsn"
	flagName          = "name"
	flagQR            = "qr"
	flagChunkSize     = "chunk_size"
	flagOffset        = "offset"
	flagKeypair       = "keypair"
	envKeyPassword    = "key_password"
	defaultMaxSigners = 3
	defaultMinSigners = 2
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "frost_cli",
		Short:         "offline FROST key management and signing utilities",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String(common.FlagConfig, "", "Path to a config file (yaml, json or toml)")
	rootCmd.AddCommand(
		dkgCommand(),
		signCommand(),
		verifyCommand(),
		reconstructCommand(),
		splitKeyCommand(),
		importShareCommand(),
		showAddressCommand(),
		exportShareQRCommand(),
		importShareQRCommand(),
		journalCommand(),
	)
	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatalf("Failed to execute root command: %v", err)
	}
}
