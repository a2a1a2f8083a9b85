package common_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/lidofinance/frostsig/common"
)

func newTestCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String(common.FlagConfig, "", "config file")
	cmd.Flags().String("listen_addr", "127.0.0.1:3000", "")
	cmd.Flags().String("share", "", "")
	cmd.Flags().String("key_name", "", "")
	return cmd
}

func TestNewViperPrecedence(t *testing.T) {
	req := require.New(t)

	path := filepath.Join(t.TempDir(), "frost.yaml")
	req.NoError(os.WriteFile(path, []byte("listen_addr: 0.0.0.0:4000\nshare: from_file.json\nkey_name: file\n"), 0600))
	t.Setenv("FROST_SHARE", "from_env.json")

	cmd := newTestCommand()
	req.NoError(cmd.Flags().Set(common.FlagConfig, path))
	req.NoError(cmd.Flags().Set("key_name", "flag"))

	v, err := common.NewViper(cmd)
	req.NoError(err)
	req.Equal("0.0.0.0:4000", v.GetString("listen_addr"))
	req.Equal("from_env.json", v.GetString("share"))
	req.Equal("flag", v.GetString("key_name"))
}

func TestNewViperDefaultsAndMissingFile(t *testing.T) {
	req := require.New(t)

	v, err := common.NewViper(newTestCommand())
	req.NoError(err)
	req.Equal("127.0.0.1:3000", v.GetString("listen_addr"))

	cmd := newTestCommand()
	req.NoError(cmd.Flags().Set(common.FlagConfig, filepath.Join(t.TempDir(), "missing.yaml")))
	_, err = common.NewViper(cmd)
	req.Error(err)
}

func TestSetLevel(t *testing.T) {
	req := require.New(t)
	req.NoError(common.SetLevel(""))
	req.NoError(common.SetLevel("info"))
	req.Error(common.SetLevel("loud"))
}
