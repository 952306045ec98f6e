package inscription

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/inscription-c/custody/client"
	"github.com/inscription-c/custody/config"
	"github.com/inscription-c/custody/constants"
	"github.com/inscription-c/custody/dao"
	"github.com/inscription-c/custody/dao/tables"
	"github.com/inscription-c/custody/internal/log"
	"github.com/inscription-c/custody/internal/signal"
	"github.com/spf13/cobra"
)

var (
	cfg        = config.Default()
	configFile string
	subPath    []string

	filePath       string
	destination    string
	feeRate        int64
	dryRun         bool
	exactFee       bool
	record         bool
	fileOptions    FileOptions
	initializeKeys bool
	pointer        int64
)

func addConnectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	cmd.Flags().StringVarP((*string)(&cfg.Network), "network", "n", string(config.Regtest), "mainnet, testnet or regtest")
	cmd.Flags().StringVarP(&cfg.KeyServer.Url, "key_server", "k", "http://localhost:8336", "key server url")
	cmd.Flags().StringVarP(&cfg.KeyServer.User, "user", "u", "", "key server user, the tenant")
	cmd.Flags().StringVarP(&cfg.KeyServer.Password, "password", "P", "", "key server password")
	cmd.Flags().StringVarP(&cfg.Chain.RpcConnect, "rpc_connect", "s", "", "the URL of the bitcoin RPC server to connect to (default http://localhost:8332, testnet: http://localhost:18332, regtest: http://localhost:18443)")
	cmd.Flags().StringVarP(&cfg.Chain.User, "rpc_user", "", "", "bitcoin rpc server username")
	cmd.Flags().StringVarP(&cfg.Chain.Password, "rpc_pass", "", "", "bitcoin rpc server password")
	cmd.Flags().StringVarP(&cfg.Chain.RPCCert, "rpc_cert", "", "", "rpc cert file path")
	cmd.Flags().BoolVarP(&cfg.Chain.TLSSkipVerify, "tls_skip_verify", "", false, "skip server tls verify")
	cmd.Flags().StringSliceVarP(&subPath, "path", "", nil, "hex encoded key path elements below the tenant")
	cmd.Flags().StringVarP(&cfg.LogLevel, "log_level", "", constants.DefaultLogLevel, "trace, debug, info, warn, error or critical")
}

func init() {
	addConnectionFlags(Cmd)
	Cmd.Flags().StringVarP(&filePath, "filepath", "f", "", "inscription file path")
	Cmd.Flags().StringVarP(&destination, "destination", "", "", "Send inscription to <DESTINATION> address. Default the funding address.")
	Cmd.Flags().Int64VarP(&feeRate, "fee_rate", "r", 0, "fee rate in sat/vB (default 10)")
	Cmd.Flags().BoolVarP(&fileOptions.Compress, "compress", "", false, "Compress inscription content with brotli.")
	Cmd.Flags().StringVarP(&fileOptions.CborMetadata, "cbor_metadata", "", "", "Include CBOR in file at <METADATA> as inscription metadata")
	Cmd.Flags().StringVarP(&fileOptions.JsonMetadata, "json_metadata", "", "", "Include JSON in file at <METADATA> converted to CBOR as inscription metadata")
	Cmd.Flags().StringVarP(&fileOptions.Metaprotocol, "metaprotocol", "", "", "Set inscription metaprotocol")
	Cmd.Flags().StringVarP(&fileOptions.Parent, "parent", "", "", "Make inscription a child of <PARENT> inscription id.")
	Cmd.Flags().StringVarP(&fileOptions.Delegate, "delegate", "", "", "Delegate inscription content to <DELEGATE> inscription id.")
	Cmd.Flags().Int64VarP(&pointer, "pointer", "", -1, "Inscribe on the sat at this offset of the reveal outputs.")
	Cmd.Flags().BoolVarP(&dryRun, "dry_run", "", false, "Sign but don't broadcast transactions.")
	Cmd.Flags().BoolVarP(&exactFee, "exact_fee", "", false, "Price the commit from its signed size.")
	Cmd.Flags().BoolVarP(&record, "record", "", false, "Keep the inscribe history in mysql.")
	Cmd.Flags().StringVarP(&cfg.SeedStore.Mysql.Addr, "mysql_addr", "d", constants.DefaultDBAddr, "history mysql address")
	Cmd.Flags().StringVarP(&cfg.SeedStore.Mysql.User, "mysql_user", "", constants.DefaultDBUser, "history mysql user")
	Cmd.Flags().StringVarP(&cfg.SeedStore.Mysql.Password, "mysql_pass", "", "", "history mysql password")
	Cmd.Flags().StringVarP(&cfg.SeedStore.Mysql.DB, "db", "", constants.DefaultDBName, "history mysql database name")
	if err := Cmd.MarkFlagRequired("filepath"); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	addConnectionFlags(AddressCmd)
	AddressCmd.Flags().BoolVarP(&initializeKeys, "init_key", "", false, "initialize the key server master seed first")
	addConnectionFlags(BalanceCmd)
}

// configCheck loads the config file over the flags and starts logging.
func configCheck(command string) error {
	if configFile != "" {
		if err := config.Load(configFile, cfg); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if feeRate == 0 {
		feeRate = cfg.FeeRate
	}

	// Initialize log rotation.  After log rotation has been initialized, the
	// logger variables may be used.
	log.InitLogRotator(cfg.LogFilePath(command))
	log.SetLogLevels(cfg.LogLevel)
	signal.AddInterruptHandler(log.CloseLogRotator)
	return nil
}

func keyPath() ([][]byte, error) {
	path := make([][]byte, 0, len(subPath))
	for _, p := range subPath {
		b, err := hex.DecodeString(p)
		if err != nil {
			return nil, fmt.Errorf("path element %q: %w", p, err)
		}
		path = append(path, b)
	}
	return path, nil
}

func newKeyOracle() (*client.KeyOracle, error) {
	return client.NewKeyOracle(
		client.WithOracleUrl(cfg.KeyServer.Url),
		client.WithOracleUser(cfg.KeyServer.User),
		client.WithOraclePassword(cfg.KeyServer.Password),
		client.WithKeyName(cfg.KeyName),
	)
}

func newChainClient() (*client.Client, error) {
	return client.NewClient(
		client.WithUrl(cfg.Chain.RpcConnect),
		client.WithUser(cfg.Chain.User),
		client.WithPassword(cfg.Chain.Password),
		client.WithRPCCert(cfg.Chain.RPCCert),
		client.WithTLSSkipVerify(cfg.Chain.TLSSkipVerify),
	)
}

func newBuilder(opts ...BuilderOption) (*Builder, *client.Client, error) {
	oracle, err := newKeyOracle()
	if err != nil {
		return nil, nil, err
	}
	chain, err := newChainClient()
	if err != nil {
		return nil, nil, err
	}
	opts = append([]BuilderOption{
		WithParams(cfg.Params()),
		WithSigner(oracle),
		WithUtxoProvider(chain),
	}, opts...)
	builder, err := NewBuilder(opts...)
	if err != nil {
		return nil, nil, err
	}
	return builder, chain, nil
}

// Cmd is a cobra command that runs the inscribe function when executed.
var Cmd = &cobra.Command{
	Use:   "inscribe",
	Short: "inscribe a file from the tenant's funding address",
	Run: func(cmd *cobra.Command, args []string) {
		if err := inscribe(); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		signal.SimulateInterrupt()
		<-signal.InterruptHandlersDone
	},
}

// AddressCmd prints the funding address of the tenant.
var AddressCmd = &cobra.Command{
	Use:   "address",
	Short: "show the tenant's funding address",
	Run: func(cmd *cobra.Command, args []string) {
		if err := address(); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		signal.SimulateInterrupt()
		<-signal.InterruptHandlersDone
	},
}

// BalanceCmd prints the spendable balance of the funding address.
var BalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "show the tenant's funding address balance",
	Run: func(cmd *cobra.Command, args []string) {
		if err := balance(); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		signal.SimulateInterrupt()
		<-signal.InterruptHandlersDone
	},
}

func inscribe() error {
	if err := configCheck("inscribe"); err != nil {
		return err
	}
	ctx := signal.Context()
	path, err := keyPath()
	if err != nil {
		return err
	}

	builderOpts := []BuilderOption{}
	if exactFee {
		builderOpts = append(builderOpts, WithExactCommitFee())
	}
	builder, chain, err := newBuilder(builderOpts...)
	if err != nil {
		return err
	}

	inscriberOpts := []InscriberOption{
		WithBroadcaster(chain),
		WithDryRun(dryRun),
	}
	if record {
		db, err := dao.NewDB(
			dao.WithAddr(cfg.SeedStore.Mysql.Addr),
			dao.WithUser(cfg.SeedStore.Mysql.User),
			dao.WithPassword(cfg.SeedStore.Mysql.Password),
			dao.WithDBName(cfg.SeedStore.Mysql.DB),
			dao.WithAutoMigrateTables(tables.Tables...),
		)
		if err != nil {
			return err
		}
		signal.AddInterruptHandler(func() { _ = db.Close() })
		inscriberOpts = append(inscriberOpts, WithRecorder(db))
	}
	inscriber, err := NewInscriber(builder, inscriberOpts...)
	if err != nil {
		return err
	}

	if pointer >= 0 {
		offset := uint64(pointer)
		fileOptions.Pointer = &offset
	}
	ins, err := FromPath(filePath, fileOptions)
	if err != nil {
		return err
	}
	res, err := inscriber.Inscribe(ctx, &Request{
		Inscription: ins,
		Destination: destination,
		FeeRate:     feeRate,
		Path:        path,
	})
	if err != nil {
		return err
	}
	fmt.Printf("commit: %s\nreveal: %s\nfees: %d + %d sat\n",
		res.CommitTx.TxHash(), res.RevealTx.TxHash(), res.CommitFee, res.RevealFee)
	return nil
}

func address() error {
	if err := configCheck("address"); err != nil {
		return err
	}
	ctx := signal.Context()
	path, err := keyPath()
	if err != nil {
		return err
	}
	if initializeKeys {
		if err := initKey(ctx); err != nil {
			return err
		}
	}
	builder, _, err := newBuilder()
	if err != nil {
		return err
	}
	addr, err := builder.Address(ctx, path)
	if err != nil {
		return err
	}
	fmt.Println(addr)
	return nil
}

func initKey(ctx context.Context) error {
	oracle, err := newKeyOracle()
	if err != nil {
		return err
	}
	return oracle.InitKey(ctx)
}

func balance() error {
	if err := configCheck("balance"); err != nil {
		return err
	}
	ctx := signal.Context()
	path, err := keyPath()
	if err != nil {
		return err
	}
	builder, _, err := newBuilder()
	if err != nil {
		return err
	}
	amount, err := builder.Balance(ctx, path)
	if err != nil {
		return err
	}
	fmt.Println(amount)
	return nil
}
