package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lidofinance/frostsig/common"
	"github.com/lidofinance/frostsig/coordinator"
	"github.com/lidofinance/frostsig/frost"
	"github.com/lidofinance/frostsig/journal"
	"github.com/lidofinance/frostsig/keystore"
)

const (
	flagMsgHex         = "msg_hex"
	flagSigners        = "signers"
	flagGroupKey       = "group_key"
	flagCallTimeout    = "call_timeout"
	flagVerifyGroupKey = "verify_group_key"
	flagLogLevel       = "log_level"
	flagJournal        = "journal"
)

func init() {
	rootCmd.PersistentFlags().String(common.FlagConfig, "", "Path to a config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringSlice(flagSigners, nil, "Signer endpoints, e.g. http://127.0.0.1:3000")
	rootCmd.PersistentFlags().String(flagGroupKey, keystore.GroupKeyFilename, "Path to the group public key file")
	rootCmd.PersistentFlags().Duration(flagCallTimeout, coordinator.DefaultCallTimeout, "Timeout of every call to a signer")
	rootCmd.PersistentFlags().Bool(flagVerifyGroupKey, false, "Check each signer's identity against the group key before signing")
	rootCmd.PersistentFlags().String(flagLogLevel, "info", "Log level")
	rootCmd.PersistentFlags().String(flagJournal, "", "Append every produced signature to this journal file")
}

func signCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "runs a signing round across the given signers and prints the signature",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := common.NewViper(cmd)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %w", err)
			}
			if err := common.SetLevel(v.GetString(flagLogLevel)); err != nil {
				return err
			}
			msg, err := hex.DecodeString(strings.TrimPrefix(v.GetString(flagMsgHex), "0x"))
			if err != nil {
				return fmt.Errorf("failed to decode message: %w", err)
			}
			groupKey, err := keystore.LoadGroupKey(v.GetString(flagGroupKey))
			if err != nil {
				return err
			}

			cfg := coordinator.Config{
				Signers:        v.GetStringSlice(flagSigners),
				CallTimeout:    v.GetDuration(flagCallTimeout),
				VerifyGroupKey: v.GetBool(flagVerifyGroupKey),
			}
			c, err := coordinator.New(cfg, coordinator.NewHTTPClient(http.DefaultClient), groupKey.PublicKeyPackage,
				common.NewLogger("coordinator"))
			if err != nil {
				return err
			}
			result, err := c.Sign(context.Background(), msg)
			if err != nil {
				return err
			}
			if !frost.Verify(groupKey.VerifyingKeyBytes(), msg, result.Signature) {
				return fmt.Errorf("signature does not verify under %s", groupKey.AddressBase58)
			}
			if path := v.GetString(flagJournal); path != "" {
				j, err := journal.NewFileJournal(path)
				if err != nil {
					return err
				}
				defer j.Close()
				if _, err := j.Append(journal.NewEntry(result.RunID, msg, result.Signature, result.Signers)); err != nil {
					return err
				}
			}
			color.Green("signature verified under %s (signers %v, run %s)", groupKey.AddressBase58, result.Signers, result.RunID)
			fmt.Println(hex.EncodeToString(result.Signature))
			return nil
		},
	}
	cmd.Flags().String(flagMsgHex, "", "Message to sign, hex encoded")
	return cmd
}

var rootCmd = &cobra.Command{
	Use:   "frost_coordinator",
	Short: "FROST signing coordinator",
}

func main() {
	rootCmd.AddCommand(
		signCommand(),
	)
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Failed to execute root command: %v", err)
	}
}
