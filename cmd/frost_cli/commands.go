package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/corestario/kyber"
	"github.com/fatih/color"
	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	passwordTerminal "golang.org/x/crypto/ssh/terminal"

	"github.com/lidofinance/frostsig/common"
	"github.com/lidofinance/frostsig/coordinator"
	"github.com/lidofinance/frostsig/frost"
	"github.com/lidofinance/frostsig/journal"
	"github.com/lidofinance/frostsig/keystore"
	"github.com/lidofinance/frostsig/qr"
	"github.com/lidofinance/frostsig/reconstruct"
	"github.com/lidofinance/frostsig/signer"
)

var errVerificationFailed = errors.New("signature verification failed")

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
}

// parseVerifyingKey accepts a group key file, a hex key or a base58 address.
func parseVerifyingKey(s string) ([]byte, error) {
	if _, err := os.Stat(s); err == nil {
		groupKey, err := keystore.LoadGroupKey(s)
		if err != nil {
			return nil, err
		}
		return groupKey.VerifyingKeyBytes(), nil
	}
	if bz, err := decodeHex(s); err == nil && len(bz) == frost.ElementSize {
		return bz, nil
	}
	if bz, err := base58.Decode(s); err == nil && len(bz) == frost.ElementSize {
		return bz, nil
	}
	return nil, fmt.Errorf("%q is neither a group key file, a hex key nor a base58 address", s)
}

func loadShares(paths ...string) ([]*keystore.ShareFile, error) {
	shares := make([]*keystore.ShareFile, 0, len(paths))
	for _, path := range paths {
		share, err := keystore.LoadShare(path)
		if err != nil {
			return nil, err
		}
		shares = append(shares, share)
	}
	return shares, nil
}

func readPassword(v *viper.Viper) (string, error) {
	if password := v.GetString(envKeyPassword); password != "" {
		return password, nil
	}
	fmt.Print("Enter key store password: ")
	password, err := passwordTerminal.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

func dkgCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dkg",
		Short: "generates a group key with a trusted dealer and writes share files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := common.NewViper(cmd)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %w", err)
			}
			outDir := v.GetString(flagOutDir)
			maxSigners, minSigners := v.GetUint(flagMaxSigners), v.GetUint(flagMinSigners)
			if maxSigners > 0xffff {
				return fmt.Errorf("%s must fit in 16 bits", flagMaxSigners)
			}

			keyPackages, pubKeys, err := frost.GenerateWithDealer(uint16(maxSigners), uint16(minSigners), nil)
			if err != nil {
				return fmt.Errorf("failed to generate keys: %w", err)
			}
			if err := keystore.WriteDealerOutput(outDir, keyPackages, pubKeys); err != nil {
				return err
			}
			groupKey := keystore.NewGroupKeyFile(pubKeys)
			color.Green("generated %d-of-%d group key in %s", minSigners, maxSigners, outDir)
			fmt.Fprintf(cmd.OutOrStdout(), "address: %s\npublic key: %s\n", groupKey.AddressBase58, groupKey.PublicKeyHex)
			return nil
		},
	}
	cmd.Flags().String(flagOutDir, ".", "Directory to write share files and the group key to")
	cmd.Flags().UintP(flagMaxSigners, "n", defaultMaxSigners, "Number of shares")
	cmd.Flags().UintP(flagMinSigners, "t", defaultMinSigners, "Number of shares needed to sign")
	return cmd
}

func signCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign <share1> <share2> <msg-hex>",
		Short: "signs a message with two local share files through a full two-round run",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := common.NewViper(cmd)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %w", err)
			}
			msg, err := decodeHex(args[2])
			if err != nil {
				return fmt.Errorf("failed to decode message: %w", err)
			}
			shares, err := loadShares(args[0], args[1])
			if err != nil {
				return err
			}

			groupKeyPath := v.GetString(flagGroupKey)
			pubKeys := &frost.PublicKeyPackage{
				VerifyingShares: make(map[frost.Identifier]kyber.Point),
				VerifyingKey:    shares[0].KeyPackage.VerifyingKey,
			}
			if groupKeyPath != "" {
				groupKey, err := keystore.LoadGroupKey(groupKeyPath)
				if err != nil {
					return err
				}
				pubKeys = groupKey.PublicKeyPackage
			}

			participants := make(map[string]signer.Service, len(shares))
			endpoints := make([]string, 0, len(shares))
			for _, share := range shares {
				kp := share.KeyPackage
				endpoint := coordinator.LocalEndpoint(kp.Identifier)
				participants[endpoint] = signer.NewParticipant(kp, common.NopLogger())
				endpoints = append(endpoints, endpoint)
				if groupKeyPath == "" {
					pubKeys.VerifyingShares[kp.Identifier] = kp.VerifyingShare
				}
			}

			c, err := coordinator.New(coordinator.Config{
				Signers:        endpoints,
				VerifyGroupKey: groupKeyPath != "",
			}, coordinator.NewLocalClient(participants), pubKeys, common.NopLogger())
			if err != nil {
				return err
			}
			result, err := c.Sign(context.Background(), msg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(result.Signature))
			return nil
		},
	}
	cmd.Flags().String(flagGroupKey, "", "Optional group key file to check the shares against")
	return cmd
}

func verifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <group_key> <msg-hex> <sig-hex>",
		Short: "verifies an Ed25519 signature under the group key",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			verifyingKey, err := parseVerifyingKey(args[0])
			if err != nil {
				return err
			}
			msg, err := decodeHex(args[1])
			if err != nil {
				return fmt.Errorf("failed to decode message: %w", err)
			}
			sig, err := decodeHex(args[2])
			if err != nil {
				return fmt.Errorf("failed to decode signature: %w", err)
			}
			if !frost.Verify(verifyingKey, msg, sig) {
				color.Red("signature is NOT valid")
				return errVerificationFailed
			}
			color.Green("signature is valid")
			return nil
		},
	}
}

// expectedVerifyingKey is the key a reconstruction is checked against: the
// --group_key value, or the group key carried by FROST share files.
func expectedVerifyingKey(v *viper.Viper, sharePath string) ([]byte, error) {
	if s := v.GetString(flagGroupKey); s != "" {
		return parseVerifyingKey(s)
	}
	share, err := keystore.LoadShare(sharePath)
	if err != nil {
		return nil, nil
	}
	return share.KeyPackage.VerifyingKeyBytes(), nil
}

func reconstructCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconstruct <share1> <share2> <out>",
		Short: "recombines two shares into a keypair file",
		Long: "matched recombines FROST share files into the group's signing scalar. " +
			"generic recombines split_key share files (or any {index, share_hex} file) " +
			"into an Ed25519 seed and writes a standard Solana keypair.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := common.NewViper(cmd)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %w", err)
			}
			strategy, err := reconstruct.ParseStrategy(v.GetString(flagStrategy))
			if err != nil {
				return err
			}

			var result *reconstruct.Result
			switch strategy {
			case reconstruct.StrategyGeneric:
				shares := make([]*keystore.GenericShareFile, 0, 2)
				for _, path := range args[:2] {
					share, err := keystore.LoadGenericShare(path)
					if err != nil {
						return err
					}
					shares = append(shares, share)
				}
				result, err = reconstruct.ReconstructGeneric(shares)
			default:
				shares, loadErr := loadShares(args[0], args[1])
				if loadErr != nil {
					return loadErr
				}
				result, err = reconstruct.Reconstruct(strategy, shares)
			}
			if err != nil {
				return err
			}

			expected, err := expectedVerifyingKey(v, args[0])
			if err != nil {
				return err
			}
			address := base58.Encode(result.Keypair.PublicKey())
			switch {
			case expected == nil && v.GetBool(flagRequireMatch):
				return fmt.Errorf("%s is required to check the result", flagGroupKey)
			case expected != nil && !result.MatchesGroupKey(expected):
				msg := fmt.Sprintf("%s reconstruction gives %s, expected %s", strategy, address, base58.Encode(expected))
				if v.GetBool(flagRequireMatch) {
					return errors.New(msg)
				}
				color.Yellow("warning: %s", msg)
			}
			if err := keystore.SaveKeypair(args[2], result.Keypair); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "keypair for %s written to %s\n", address, args[2])
			return nil
		},
	}
	cmd.Flags().String(flagStrategy, "", "Reconstruction strategy: matched or generic")
	cmd.Flags().String(flagGroupKey, "", "Group key file, hex key or base58 address to compare the result with")
	cmd.Flags().Bool(flagRequireMatch, false, "Fail instead of warning when the result differs from the expected key")
	return cmd
}

func splitKeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split_key",
		Short: "splits an Ed25519 seed into generic share files",
		Long: "The seed is read from a seed keypair file (--keypair) or freshly generated. " +
			"Shares are recombined with reconstruct --strategy generic.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := common.NewViper(cmd)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %w", err)
			}

			var seed []byte
			if path := v.GetString(flagKeypair); path != "" {
				kp, err := keystore.LoadKeypair(path)
				if err != nil {
					return err
				}
				if !kp.IsSeed() {
					return fmt.Errorf("%s does not hold an Ed25519 seed", path)
				}
				seed = kp.SecretBytes()
			} else {
				seed = reconstruct.NewSeed()
			}
			kp, err := keystore.NewSeedKeypair(seed)
			if err != nil {
				return err
			}

			total, threshold := v.GetInt(flagMaxSigners), v.GetInt(flagMinSigners)
			shares, err := reconstruct.SplitGeneric(seed, total, threshold)
			if err != nil {
				return err
			}
			outDir := v.GetString(flagOutDir)
			paths, err := keystore.WriteGenericShares(outDir, shares)
			if err != nil {
				return err
			}
			color.Green("split key into %d-of-%d generic shares in %s", threshold, total, outDir)
			fmt.Fprintf(cmd.OutOrStdout(), "address: %s\n", base58.Encode(kp.PublicKey()))
			for _, path := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().String(flagOutDir, ".", "Directory to write share files to")
	cmd.Flags().String(flagKeypair, "", "Seed keypair file to split; a new seed is generated when empty")
	cmd.Flags().IntP(flagMaxSigners, "n", defaultMaxSigners, "Number of shares")
	cmd.Flags().IntP(flagMinSigners, "t", defaultMinSigners, "Number of shares needed to reconstruct")
	return cmd
}

func importShareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import_share",
		Short: "stores a share file in the encrypted LevelDB key store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := common.NewViper(cmd)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %w", err)
			}
			share, err := keystore.LoadShare(v.GetString(flagShare))
			if err != nil {
				return err
			}
			name := v.GetString(flagName)
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(v.GetString(flagShare)), filepath.Ext(v.GetString(flagShare)))
			}
			password, err := readPassword(v)
			if err != nil {
				return err
			}
			keyStore, err := keystore.NewLevelDBKeyStore(v.GetString(flagStoreDBDSN))
			if err != nil {
				return fmt.Errorf("failed to init key store: %w", err)
			}
			defer keyStore.Close()
			if err := keyStore.PutShare(name, password, share); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "share %d stored as %q in %s\n",
				share.ParticipantIndex, name, v.GetString(flagStoreDBDSN))
			return nil
		},
	}
	cmd.Flags().String(flagShare, "", "Share file to import")
	cmd.Flags().String(flagStoreDBDSN, "./frost_key_store", "Key Store DBDSN")
	cmd.Flags().String(flagName, "", "Name to store the share under, defaults to the file name")
	return cmd
}

func showAddressCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show_address <group_key>",
		Short: "prints the group's Solana address, optionally as a QR code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := common.NewViper(cmd)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %w", err)
			}
			verifyingKey, err := parseVerifyingKey(args[0])
			if err != nil {
				return err
			}
			address := base58.Encode(verifyingKey)
			fmt.Fprintln(cmd.OutOrStdout(), address)
			if path := v.GetString(flagQR); path != "" {
				if err := qr.WriteQR(path, []byte(address)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "QR code written to %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().String(flagQR, "", "Write the address as a PNG QR code to this path")
	return cmd
}

func exportShareQRCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export_share_qr <share> <out.gif>",
		Short: "writes a share file as an animated QR code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := common.NewViper(cmd)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %w", err)
			}
			share, err := keystore.LoadShare(args[0])
			if err != nil {
				return err
			}
			if err := keystore.ExportShareQR(qr.NewGIFProcessor(v.GetInt(flagChunkSize)), args[1], share); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "share %d written to %s\n", share.ParticipantIndex, args[1])
			return nil
		},
	}
	cmd.Flags().Int(flagChunkSize, qr.DefaultChunkSize, "QR-code's chunk size")
	return cmd
}

func importShareQRCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import_share_qr <in.gif> <out.json>",
		Short: "reads a share file back from an animated QR code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			share, err := keystore.ImportShareQR(qr.NewGIFProcessor(0), args[0])
			if err != nil {
				return err
			}
			if err := keystore.SaveShare(args[1], share); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "share %d written to %s\n", share.ParticipantIndex, args[1])
			return nil
		},
	}
}

func journalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal <journal> <group_key>",
		Short: "lists journaled signatures and checks each one under the group key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := common.NewViper(cmd)
			if err != nil {
				return fmt.Errorf("failed to read configuration: %w", err)
			}
			verifyingKey, err := parseVerifyingKey(args[1])
			if err != nil {
				return err
			}
			j, err := journal.NewFileJournal(args[0])
			if err != nil {
				return err
			}
			defer j.Close()
			entries, err := j.Entries(v.GetUint64(flagOffset))
			if err != nil {
				return err
			}
			invalid := 0
			for _, e := range entries {
				status := "ok"
				if !e.Verify(verifyingKey) {
					status = "INVALID"
					invalid++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\tsigners=%v\t%s\n", e.Offset, e.RunID, e.Message, e.Signers, status)
			}
			if invalid > 0 {
				return fmt.Errorf("%w: %d of %d journal entries", errVerificationFailed, invalid, len(entries))
			}
			return nil
		},
	}
	cmd.Flags().Uint64(flagOffset, 0, "Skip this many entries")
	return cmd
}
