package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcwallet/netparams"
	"github.com/go-playground/validator/v10"
	"github.com/inscription-c/custody/constants"
	"gopkg.in/yaml.v2"
)

var validate = validator.New()

// Network selects the bitcoin chain every component works against.
type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
	Regtest Network = "regtest"
)

// regtestRPCPort is the bitcoind regtest json-rpc port, netparams has no
// regtest entry.
const regtestRPCPort = "18443"

// Params returns the chain parameters of the network.
func (n Network) Params() (*chaincfg.Params, error) {
	switch n {
	case Mainnet:
		return netparams.MainNetParams.Params, nil
	case Testnet:
		return netparams.TestNet3Params.Params, nil
	case Regtest:
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, fmt.Errorf("unknown network %q", string(n))
	}
}

// KeyName is the name of the master key the key server signs with on
// this network.
func (n Network) KeyName() string {
	if n == Regtest {
		return constants.KeyNameRegtest
	}
	return constants.KeyNameDefault
}

func (n Network) defaultRPCConnect() string {
	port := regtestRPCPort
	switch n {
	case Mainnet:
		port = netparams.MainNetParams.RPCServerPort
	case Testnet:
		port = netparams.TestNet3Params.RPCServerPort
	}
	return "http://localhost:" + port
}

// ChainConfig is the bitcoin node json-rpc endpoint.
type ChainConfig struct {
	RpcConnect    string `yaml:"rpc_connect" validate:"omitempty,url"`
	User          string `yaml:"user"`
	Password      string `yaml:"password"`
	RPCCert       string `yaml:"rpc_cert"`
	TLSSkipVerify bool   `yaml:"tls_skip_verify"`
}

// KeyServerConfig configures both sides of the key oracle: the listening
// server (Listen, Accounts) and its clients (Url, User, Password).
type KeyServerConfig struct {
	Listen   string            `yaml:"listen"`
	Url      string            `yaml:"url" validate:"omitempty,url"`
	User     string            `yaml:"user"`
	Password string            `yaml:"password"`
	Accounts map[string]string `yaml:"accounts"`
}

type MysqlConfig struct {
	Addr     string `yaml:"addr"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DB       string `yaml:"db"`
}

// SeedStoreConfig selects where the master seed is persisted.
type SeedStoreConfig struct {
	Driver string      `yaml:"driver" validate:"oneof=bdb mysql"`
	Mysql  MysqlConfig `yaml:"mysql"`
}

// Config is created once per process and read-only afterwards.
type Config struct {
	Network       Network         `yaml:"network" validate:"oneof=mainnet testnet regtest"`
	KeyName       string          `yaml:"key_name"`
	FeeRate       int64           `yaml:"fee_rate" validate:"gte=1"`
	DataDir       string          `yaml:"data_dir"`
	LogLevel      string          `yaml:"log_level"`
	LogFile       string          `yaml:"log_file"`
	Chain         ChainConfig     `yaml:"chain"`
	KeyServer     KeyServerConfig `yaml:"key_server"`
	SeedStore     SeedStoreConfig `yaml:"seed_store"`
	EnablePProf   bool            `yaml:"pprof"`
	EnableMetrics bool            `yaml:"metrics"`
	SentryDSN     string          `yaml:"sentry_dsn"`
}

// Default returns the regtest configuration with every optional value
// left for Validate to fill in.
func Default() *Config {
	return &Config{
		Network:  Regtest,
		FeeRate:  constants.DefaultFeeRate,
		LogLevel: constants.DefaultLogLevel,
		SeedStore: SeedStoreConfig{
			Driver: "bdb",
			Mysql: MysqlConfig{
				Addr: constants.DefaultDBAddr,
				User: constants.DefaultDBUser,
				DB:   constants.DefaultDBName,
			},
		},
	}
}

// Load decodes the yaml file at path over cfg.
func Load(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

// Validate fills the values derived from the network and checks the rest.
func (c *Config) Validate() error {
	if c.KeyName == "" {
		c.KeyName = c.Network.KeyName()
	}
	if c.Chain.RpcConnect == "" {
		c.Chain.RpcConnect = c.Network.defaultRPCConnect()
	}
	if c.DataDir == "" {
		c.DataDir = constants.DataDir(string(c.Network))
	}
	return validate.Struct(c)
}

// Params returns the chain parameters of the configured network.
func (c *Config) Params() *chaincfg.Params {
	params, err := c.Network.Params()
	if err != nil {
		return &chaincfg.RegressionNetParams
	}
	return params
}

// SeedDBPath is the bdb file holding the master seed.
func (c *Config) SeedDBPath() string {
	return filepath.Join(c.DataDir, constants.SeedDBFileName)
}

// LogFilePath returns the configured log file or the default one of
// the named command.
func (c *Config) LogFilePath(command string) string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, "logs", command+".log")
}
