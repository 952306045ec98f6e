package server

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inscription-c/custody/config"
	"github.com/inscription-c/custody/constants"
	"github.com/inscription-c/custody/dao"
	"github.com/inscription-c/custody/dao/tables"
	"github.com/inscription-c/custody/internal/log"
	"github.com/inscription-c/custody/internal/sentry"
	"github.com/inscription-c/custody/internal/signal"
	"github.com/inscription-c/custody/wallet"
	"github.com/inscription-c/custody/wallet/server/handle"
	"github.com/spf13/cobra"
)

const seedDBTimeout = 10 * time.Second

var (
	configFile string
	cfg        = config.Default()
)

var Cmd = &cobra.Command{
	Use:   "keyserver",
	Short: "master seed custody and tenant signing server",
	Run: func(cmd *cobra.Command, args []string) {
		if err := KeyServer(); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		<-signal.InterruptHandlersDone
	},
}

func init() {
	Cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	Cmd.Flags().StringVarP((*string)(&cfg.Network), "network", "n", string(config.Regtest), "mainnet, testnet or regtest")
	Cmd.Flags().StringVarP(&cfg.KeyServer.Listen, "listen", "l", ":8336", "key server listen address")
	Cmd.Flags().StringVarP(&cfg.KeyServer.User, "user", "u", "", "add a tenant account with this user name")
	Cmd.Flags().StringVarP(&cfg.KeyServer.Password, "password", "P", "", "password of the --user tenant account")
	Cmd.Flags().StringVarP(&cfg.SeedStore.Driver, "seed_store", "", "bdb", "master seed store, bdb or mysql")
	Cmd.Flags().StringVarP(&cfg.SeedStore.Mysql.Addr, "mysql_addr", "d", constants.DefaultDBAddr, "seed store mysql address")
	Cmd.Flags().StringVarP(&cfg.SeedStore.Mysql.User, "mysql_user", "", constants.DefaultDBUser, "seed store mysql user")
	Cmd.Flags().StringVarP(&cfg.SeedStore.Mysql.Password, "mysql_pass", "", "", "seed store mysql password")
	Cmd.Flags().StringVarP(&cfg.SeedStore.Mysql.DB, "db", "", constants.DefaultDBName, "seed store mysql database name")
	Cmd.Flags().StringVarP(&cfg.DataDir, "data_dir", "", "", "directory of the bdb seed store and logs")
	Cmd.Flags().StringVarP(&cfg.LogLevel, "log_level", "", constants.DefaultLogLevel, "trace, debug, info, warn, error or critical")
	Cmd.Flags().BoolVarP(&cfg.EnablePProf, "pprof", "", false, "enable pprof")
	Cmd.Flags().BoolVarP(&cfg.EnableMetrics, "metrics", "", false, "serve prometheus metrics on /metrics")
	Cmd.Flags().StringVarP(&cfg.SentryDSN, "sentry_dsn", "", "", "report panics to sentry")
}

// KeyServer loads the seed store and serves the key api until an
// interrupt.
func KeyServer() error {
	if err := loadConfig(); err != nil {
		return err
	}

	log.InitLogRotator(cfg.LogFilePath("keyserver"))
	log.SetLogLevels(cfg.LogLevel)
	signal.AddInterruptHandler(log.CloseLogRotator)
	if err := sentry.Init(cfg.SentryDSN, constants.AppName+"-keyserver"); err != nil {
		return err
	}

	store, closeStore, err := openSeedStore()
	if err != nil {
		return err
	}
	signal.AddInterruptHandler(closeStore)

	service, err := wallet.NewService(
		wallet.WithParams(cfg.Params()),
		wallet.WithSeedStore(store),
	)
	if err != nil {
		return err
	}

	accounts := make(map[string]string, len(cfg.KeyServer.Accounts)+1)
	for user, password := range cfg.KeyServer.Accounts {
		accounts[user] = password
	}
	if cfg.KeyServer.User != "" {
		accounts[cfg.KeyServer.User] = cfg.KeyServer.Password
	}

	gin.SetMode(gin.ReleaseMode)
	h, err := handle.New(
		handle.WithAddr(cfg.KeyServer.Listen),
		handle.WithKeyName(cfg.KeyName),
		handle.WithAccounts(accounts),
		handle.WithService(service),
		handle.WithEnablePProf(cfg.EnablePProf),
		handle.WithEnableMetrics(cfg.EnableMetrics),
	)
	if err != nil {
		return err
	}
	log.Srv.Infof("network %s, key %s, initialized %t", cfg.Network, cfg.KeyName, service.Initialized())
	return h.Run()
}

// loadConfig decodes the config file, if any, over the flag values.
func loadConfig() error {
	if configFile != "" {
		if err := config.Load(configFile, cfg); err != nil {
			return err
		}
	}
	return cfg.Validate()
}

func openSeedStore() (wallet.SeedStore, func(), error) {
	switch cfg.SeedStore.Driver {
	case "mysql":
		db, err := dao.NewDB(
			dao.WithAddr(cfg.SeedStore.Mysql.Addr),
			dao.WithUser(cfg.SeedStore.Mysql.User),
			dao.WithPassword(cfg.SeedStore.Mysql.Password),
			dao.WithDBName(cfg.SeedStore.Mysql.DB),
			dao.WithKeyName(cfg.KeyName),
			dao.WithAutoMigrateTables(tables.Tables...),
		)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	default:
		store, err := wallet.OpenDBSeedStore(cfg.SeedDBPath(), seedDBTimeout)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
}
