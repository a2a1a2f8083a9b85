package coordinator

import "time"

const DefaultCallTimeout = 30 * time.Second

type Config struct {
	Signers        []string      `mapstructure:"signers"`
	CallTimeout    time.Duration `mapstructure:"call_timeout"`
	VerifyGroupKey bool          `mapstructure:"verify_group_key"`
}
