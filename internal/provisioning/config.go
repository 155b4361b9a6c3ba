package provisioning

import (
	"fmt"
	"time"

	"github.com/fioprotocol/fio-provisioner/internal/chain"
	"github.com/fioprotocol/fio-provisioner/internal/names"
)

const (
	DefaultMaxAttempts        = 3
	DefaultSystemContract     = "eosio"
	DefaultDelegateAccount    = "fio.system"
	DefaultDelegatePermission = "eosio.code"
	DefaultQuantity           = "100.0000 FIO"
	DefaultHeadBlockLag       = 3
	DefaultExpireSeconds      = 30
	DefaultTokenContract      = "eosio.token"
	DefaultTransferMemo       = "initial transfer"
)

type Config struct {
	MaxAttempts        int           `mapstructure:"max_attempts"`
	RetryDelay         time.Duration `mapstructure:"retry_delay"`
	NameLength         int           `mapstructure:"name_length"`
	NameAlphabet       string        `mapstructure:"name_alphabet"`
	SystemContract     string        `mapstructure:"system_contract"`
	DelegateAccount    string        `mapstructure:"delegate_account"`
	DelegatePermission string        `mapstructure:"delegate_permission"`
	RAMQuantity        string        `mapstructure:"ram_quantity"`
	StakeNetQuantity   string        `mapstructure:"stake_net_quantity"`
	StakeCPUQuantity   string        `mapstructure:"stake_cpu_quantity"`
	TransferStake      bool          `mapstructure:"transfer_stake"`
	HeadBlockLag       int           `mapstructure:"head_block_lag"`
	ExpireSeconds      int           `mapstructure:"expire_seconds"`

	// InitialTransfer funds every onboarded account when set, e.g. "200.0000 FIO".
	InitialTransfer string `mapstructure:"initial_transfer"`
	TransferMemo    string `mapstructure:"transfer_memo"`
	TokenContract   string `mapstructure:"token_contract"`
	NameContract    string `mapstructure:"name_contract"`
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.RetryDelay < 0 {
		c.RetryDelay = 0
	}
	if c.NameLength <= 0 {
		c.NameLength = names.DefaultLength
	}
	if c.NameAlphabet == "" {
		c.NameAlphabet = names.DefaultAlphabet
	}
	if c.SystemContract == "" {
		c.SystemContract = DefaultSystemContract
	}
	if c.DelegateAccount == "" {
		c.DelegateAccount = DefaultDelegateAccount
	}
	if c.DelegatePermission == "" {
		c.DelegatePermission = DefaultDelegatePermission
	}
	if c.RAMQuantity == "" {
		c.RAMQuantity = DefaultQuantity
	}
	if c.StakeNetQuantity == "" {
		c.StakeNetQuantity = DefaultQuantity
	}
	if c.StakeCPUQuantity == "" {
		c.StakeCPUQuantity = DefaultQuantity
	}
	if c.HeadBlockLag <= 0 {
		c.HeadBlockLag = DefaultHeadBlockLag
	}
	if c.ExpireSeconds <= 0 {
		c.ExpireSeconds = DefaultExpireSeconds
	}
	if c.TransferMemo == "" {
		c.TransferMemo = DefaultTransferMemo
	}
	if c.TokenContract == "" {
		c.TokenContract = DefaultTokenContract
	}
	if c.NameContract == "" {
		c.NameContract = DefaultDelegateAccount
	}
	return c
}

// Validate reports settings that would make every attempt fail.
func (c Config) Validate() error {
	if err := names.ValidateAlphabet(c.NameAlphabet); err != nil {
		return err
	}
	if c.NameLength > names.MaxLength {
		return fmt.Errorf("name_length %d exceeds %d", c.NameLength, names.MaxLength)
	}
	return nil
}

func (c Config) txOptions(signerKeys ...string) chain.TxOptions {
	return chain.TxOptions{
		HeadBlockLag:  c.HeadBlockLag,
		ExpireSeconds: c.ExpireSeconds,
		SignerKeys:    signerKeys,
	}
}
