package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lidofinance/frostsig/common"
	"github.com/lidofinance/frostsig/coordinator"
	"github.com/lidofinance/frostsig/keystore"
	"github.com/lidofinance/frostsig/ledger"
)

const (
	flagTo             = "to"
	flagLamports       = "lamports"
	flagRPC            = "rpc"
	flagKeySource      = "key_source"
	flagKeypair        = "keypair"
	flagSigners        = "signers"
	flagGroupKey       = "group_key"
	flagCallTimeout    = "call_timeout"
	flagVerifyGroupKey = "verify_group_key"
	flagWait           = "wait"
	flagLogLevel       = "log_level"

	keySourceThreshold = "threshold"
	keySourceKeypair   = "keypair"

	devnetRPC            = "https://api.devnet.solana.com"
	confirmationInterval = 2 * time.Second
)

func init() {
	rootCmd.Flags().String(common.FlagConfig, "", "Path to a config file (yaml, json or toml)")
	rootCmd.Flags().String(flagTo, "", "Recipient address, base58")
	rootCmd.Flags().Uint64(flagLamports, 0, "Amount to transfer in lamports")
	rootCmd.Flags().String(flagRPC, devnetRPC, "Solana JSON-RPC endpoint")
	rootCmd.Flags().String(flagKeySource, keySourceThreshold, "Signing key: threshold (live signers) or keypair (reconstructed file)")
	rootCmd.Flags().String(flagKeypair, "", "Path to a reconstructed keypair file, for key_source=keypair")
	rootCmd.Flags().StringSlice(flagSigners, nil, "Signer endpoints, for key_source=threshold")
	rootCmd.Flags().String(flagGroupKey, keystore.GroupKeyFilename, "Path to the group public key file, for key_source=threshold")
	rootCmd.Flags().Duration(flagCallTimeout, coordinator.DefaultCallTimeout, "Timeout of every call to a signer")
	rootCmd.Flags().Bool(flagVerifyGroupKey, false, "Check each signer's identity against the group key before signing")
	rootCmd.Flags().Duration(flagWait, time.Minute, "How long to wait for confirmation, 0 to skip")
	rootCmd.Flags().String(flagLogLevel, "info", "Log level")
}

func newMessageSigner(v *viper.Viper, logger common.Logger) (ledger.MessageSigner, error) {
	switch source := v.GetString(flagKeySource); source {
	case keySourceKeypair:
		kp, err := keystore.LoadKeypair(v.GetString(flagKeypair))
		if err != nil {
			return nil, err
		}
		return ledger.NewKeypairSigner(kp)
	case keySourceThreshold:
		groupKey, err := keystore.LoadGroupKey(v.GetString(flagGroupKey))
		if err != nil {
			return nil, err
		}
		cfg := coordinator.Config{
			Signers:        v.GetStringSlice(flagSigners),
			CallTimeout:    v.GetDuration(flagCallTimeout),
			VerifyGroupKey: v.GetBool(flagVerifyGroupKey),
		}
		c, err := coordinator.New(cfg, coordinator.NewHTTPClient(http.DefaultClient), groupKey.PublicKeyPackage, logger)
		if err != nil {
			return nil, err
		}
		return ledger.NewThresholdSigner(c, groupKey.VerifyingKeyBytes()), nil
	default:
		return nil, fmt.Errorf("unknown key_source %q (expected %s or %s)", source, keySourceThreshold, keySourceKeypair)
	}
}

func formatSOL(lamports uint64) string {
	return fmt.Sprintf("%.9f SOL (%d lamports)", float64(lamports)/float64(solana.LAMPORTS_PER_SOL), lamports)
}

// submitTransfer prints the sender and its balance before signing, so the
// balance is reported even when it is too low.
func submitTransfer(ctx context.Context, out io.Writer, client ledger.Client, signer ledger.MessageSigner,
	to solana.PublicKey, lamports uint64, logger common.Logger) (solana.Signature, error) {
	transfer := ledger.NewTransfer(client, signer.PublicKey(), to, lamports, logger)
	fmt.Fprintf(out, "From:    %s\n", signer.PublicKey())
	fmt.Fprintf(out, "To:      %s\n", to)
	fmt.Fprintf(out, "Amount:  %s\n", formatSOL(lamports))

	_, err := transfer.Prepare(ctx)
	if balance, ok := transfer.Balance(); ok {
		fmt.Fprintf(out, "Balance: %s\n", formatSOL(balance))
	}
	if err != nil {
		return solana.Signature{}, err
	}
	return transfer.SignAndSubmit(ctx, signer)
}

func run(cmd *cobra.Command, _ []string) error {
	v, err := common.NewViper(cmd)
	if err != nil {
		return fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := common.SetLevel(v.GetString(flagLogLevel)); err != nil {
		return err
	}
	to, err := solana.PublicKeyFromBase58(v.GetString(flagTo))
	if err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	lamports := v.GetUint64(flagLamports)
	if lamports == 0 {
		return fmt.Errorf("%s must be positive", flagLamports)
	}

	logger := common.NewLogger("transfer")
	signer, err := newMessageSigner(v, logger)
	if err != nil {
		return err
	}
	client := ledger.NewRPCClient(v.GetString(flagRPC))

	ctx := context.Background()
	sig, err := submitTransfer(ctx, cmd.OutOrStdout(), client, signer, to, lamports, logger)
	if err != nil {
		return err
	}
	color.Green("transaction sent: %s", sig)

	if wait := v.GetDuration(flagWait); wait > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, wait)
		defer cancel()
		if err := ledger.WaitForConfirmation(waitCtx, client, sig, confirmationInterval); err != nil {
			color.Yellow("not confirmed yet: %v", err)
		} else {
			color.Green("transaction confirmed")
		}
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "frost_transfer",
	Short: "sends SOL from the group address, signed by live signers or a reconstructed key",
	RunE:  run,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Failed to execute root command: %v", err)
	}
}
