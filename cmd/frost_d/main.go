package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	passwordTerminal "golang.org/x/crypto/ssh/terminal"

	"github.com/lidofinance/frostsig/common"
	"github.com/lidofinance/frostsig/frost"
	"github.com/lidofinance/frostsig/keystore"
	"github.com/lidofinance/frostsig/signer"
	"github.com/lidofinance/frostsig/signer/api/http_api"
	"github.com/lidofinance/frostsig/signer/config"
)

const (
	flagListenAddr   = "listen_addr"
	flagShare        = "share"
	flagKeySource    = "key_source"
	flagStoreDBDSN   = "key_store_dbdsn"
	flagKeyName      = "key_name"
	flagReadTimeout  = "read_timeout"
	flagWriteTimeout = "write_timeout"
	flagDebug        = "debug"
	flagLogLevel     = "log_level"
	envKeyPassword   = "key_password"
	shutdownTimeout  = 10 * time.Second
)

func init() {
	defaults := config.Default()
	rootCmd.PersistentFlags().String(common.FlagConfig, "", "Path to a config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String(flagListenAddr, defaults.HttpApiConfig.ListenAddr, "Listen Address")
	rootCmd.PersistentFlags().String(flagShare, "", "Path to the participant's share file")
	rootCmd.PersistentFlags().String(flagKeySource, defaults.KeySource, "Where to load the share from: file or leveldb")
	rootCmd.PersistentFlags().String(flagStoreDBDSN, defaults.KeyStoreDBDSN, "Key Store DBDSN")
	rootCmd.PersistentFlags().String(flagKeyName, "", "Name of the share in the key store")
	rootCmd.PersistentFlags().Duration(flagReadTimeout, defaults.HttpApiConfig.ReadTimeout, "HTTP read timeout")
	rootCmd.PersistentFlags().Duration(flagWriteTimeout, defaults.HttpApiConfig.WriteTimeout, "HTTP write timeout")
	rootCmd.PersistentFlags().Bool(flagDebug, false, "Enable echo debug mode")
	rootCmd.PersistentFlags().String(flagLogLevel, "info", "Log level")
}

func readConfig(v *viper.Viper) (*config.Config, error) {
	cfg := config.Default()
	cfg.HttpApiConfig.ListenAddr = v.GetString(flagListenAddr)
	cfg.HttpApiConfig.ReadTimeout = v.GetDuration(flagReadTimeout)
	cfg.HttpApiConfig.WriteTimeout = v.GetDuration(flagWriteTimeout)
	cfg.HttpApiConfig.Debug = v.GetBool(flagDebug)
	cfg.SharePath = v.GetString(flagShare)
	cfg.KeySource = v.GetString(flagKeySource)
	cfg.KeyStoreDBDSN = v.GetString(flagStoreDBDSN)
	cfg.KeyName = v.GetString(flagKeyName)
	cfg.LogLevel = v.GetString(flagLogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
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

func loadKeyPackage(cfg *config.Config, v *viper.Viper) (*frost.KeyPackage, error) {
	switch cfg.KeySource {
	case config.KeySourceLevelDB:
		keyStore, err := keystore.NewLevelDBKeyStore(cfg.KeyStoreDBDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to init key store: %w", err)
		}
		defer keyStore.Close()
		password, err := readPassword(v)
		if err != nil {
			return nil, err
		}
		share, err := keyStore.LoadShare(cfg.KeyName, password)
		if err != nil {
			return nil, err
		}
		return share.KeyPackage, nil
	default:
		share, err := keystore.LoadShare(cfg.SharePath)
		if err != nil {
			return nil, err
		}
		return share.KeyPackage, nil
	}
}

func startCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "starts a signer daemon serving one key share",
		Run: func(cmd *cobra.Command, args []string) {
			v, err := common.NewViper(cmd)
			if err != nil {
				log.Fatalf("failed to read configuration: %v", err)
			}
			cfg, err := readConfig(v)
			if err != nil {
				log.Fatalf("invalid configuration: %v", err)
			}
			if err := common.SetLevel(cfg.LogLevel); err != nil {
				log.Fatalf("invalid configuration: %v", err)
			}

			keyPackage, err := loadKeyPackage(cfg, v)
			if err != nil {
				log.Fatalf("Failed to load key share: %v", err)
			}

			logger := common.NewLogger("frost_d").With("participant", strconv.Itoa(int(keyPackage.Identifier)))
			participant := signer.NewParticipant(keyPackage, logger)
			server := http_api.NewRESTApiProvider(cfg, participant, logger)

			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigs

				logger.Log("Received signal, stopping signer...")
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := server.Stop(ctx); err != nil {
					logger.Log("failed to stop HTTP server: %v", err)
				}
			}()

			logger.Log("serving participant %d of group %x", keyPackage.Identifier, keyPackage.VerifyingKeyBytes())
			if err := server.Start(); err != nil {
				log.Fatalf("HTTP server error: %v", err)
			}
			logger.Log("signer stopped, %d unused nonces discarded", participant.PendingNonces())
		},
	}
}

var rootCmd = &cobra.Command{
	Use:   "frost_d",
	Short: "FROST signer daemon",
}

func main() {
	rootCmd.AddCommand(
		startCommand(),
	)
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Failed to execute root command: %v", err)
	}
}
