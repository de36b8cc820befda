package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/batchledger/batchledger/batch"
	"github.com/batchledger/batchledger/host"
	"github.com/batchledger/batchledger/keyvaluedb/boltdb"
	"github.com/batchledger/batchledger/logger"
	"github.com/batchledger/batchledger/predicates"
	"github.com/batchledger/batchledger/rpc"
	"github.com/batchledger/batchledger/tokens"
	"github.com/batchledger/batchledger/transfer"
	"github.com/batchledger/batchledger/types"
	"github.com/batchledger/batchledger/wallet"
)

type startFlags struct {
	base *baseConfiguration

	DbFile        string
	RESTAddr      string
	MetricsAddr   string
	MaxBodySize   int64
	Budget        uint64
	TransferAdmin string
	WalletAdmin   string
}

const (
	defaultStateDBFile = "batchledger.db"
	defaultRESTAddr    = "localhost:8080"
	defaultMaxBodySize = 1 << 20 // 1MB
)

func newStartCmd(baseConfig *baseConfiguration) *cobra.Command {
	flags := &startFlags{base: baseConfig}
	var cmd = &cobra.Command{
		Use:   "start",
		Short: "Starts the batchledger node",
		Long:  `Opens the state database, mounts the transfer and wallet engines and serves the read accessor REST API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(cmd.Context(), flags)
		},
	}
	cmd.Flags().StringVar(&flags.DbFile, "db", "", fmt.Sprintf("path to the state database (default: $BL_HOME/%s)", defaultStateDBFile))
	cmd.Flags().StringVar(&flags.RESTAddr, "rest-addr", defaultRESTAddr, "address the REST API listens on")
	cmd.Flags().StringVar(&flags.MetricsAddr, "metrics-addr", "", "address the metrics endpoint listens on, disabled when not set")
	cmd.Flags().Int64Var(&flags.MaxBodySize, "max-body-size", defaultMaxBodySize, "maximum REST request body size in bytes")
	cmd.Flags().Uint64Var(&flags.Budget, "budget", 0, "per call state operation budget, 0 uses the built-in default")
	cmd.Flags().StringVar(&flags.TransferAdmin, "transfer-admin", "", "hex address to initialize the transfer engine with, ignored when already initialized")
	cmd.Flags().StringVar(&flags.WalletAdmin, "wallet-admin", "", "hex address to initialize the wallet engine with, ignored when already initialized")
	return cmd
}

func runNode(ctx context.Context, flags *startFlags) error {
	obs := flags.base.observe
	log := obs.Logger()

	dbFile := flags.DbFile
	if dbFile == "" {
		dbFile = filepath.Join(flags.base.HomeDir, defaultStateDBFile)
	}
	db, err := boltdb.New(dbFile)
	if err != nil {
		return fmt.Errorf("opening state database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("closing state database", logger.Error(err))
		}
	}()

	var hostOpts []host.Option
	if flags.Budget > 0 {
		hostOpts = append(hostOpts, host.WithBudget(flags.Budget))
	}
	h, err := host.New(db, predicates.NewP2pkhAuthorizer(), obs, hostOpts...)
	if err != nil {
		return fmt.Errorf("creating host: %w", err)
	}

	transferEngine, err := transfer.NewEngine(h, tokens.NewStateLedger(), obs)
	if err != nil {
		return fmt.Errorf("creating transfer engine: %w", err)
	}
	walletEngine, err := wallet.NewEngine(h, obs)
	if err != nil {
		return fmt.Errorf("creating wallet engine: %w", err)
	}

	if err := initializeEngines(ctx, flags, transferEngine, walletEngine); err != nil {
		return err
	}

	log.InfoContext(ctx, "starting batchledger node, state database "+dbFile)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		restServer := rpc.NewRESTServer(flags.RESTAddr, flags.MaxBodySize, obs,
			rpc.NewTransferAPI(transferEngine, obs),
			rpc.NewWalletAPI(walletEngine, obs),
		)
		return serve(ctx, restServer, "REST server", log)
	})

	g.Go(func() error {
		handler := obs.MetricsHandler()
		if flags.MetricsAddr == "" || handler == nil {
			return nil // return nil in this case in order not to kill the group!
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", handler)
		metricsServer := &http.Server{Addr: flags.MetricsAddr, Handler: mux}
		return serve(ctx, metricsServer, "metrics server", log)
	})

	return g.Wait()
}

/*
initializeEngines sets the engine admins when the corresponding flag is
given. Initialization is a one time operation, a flag naming an engine
that is already initialized is skipped.
*/
func initializeEngines(ctx context.Context, flags *startFlags, transferEngine *transfer.Engine, walletEngine *wallet.Engine) error {
	if flags.TransferAdmin != "" {
		admin, err := types.ParseAddress(flags.TransferAdmin)
		if err != nil {
			return fmt.Errorf("parsing transfer admin address: %w", err)
		}
		if err := transferEngine.Initialize(ctx, admin); err != nil && !errors.Is(err, batch.ErrAlreadyInitialized) {
			return fmt.Errorf("initializing transfer engine: %w", err)
		}
	}
	if flags.WalletAdmin != "" {
		admin, err := types.ParseAddress(flags.WalletAdmin)
		if err != nil {
			return fmt.Errorf("parsing wallet admin address: %w", err)
		}
		if err := walletEngine.Initialize(ctx, admin); err != nil && !errors.Is(err, batch.ErrAlreadyInitialized) {
			return fmt.Errorf("initializing wallet engine: %w", err)
		}
	}
	return nil
}

func serve(ctx context.Context, srv *http.Server, name string, log *slog.Logger) error {
	errch := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, name+" starting on "+srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errch <- err
			return
		}
		errch <- nil
	}()

	select {
	case <-ctx.Done():
		if err := srv.Close(); err != nil {
			log.WarnContext(ctx, name+" close error", logger.Error(err))
		}
		if exitErr := <-errch; exitErr != nil {
			log.WarnContext(ctx, name+" exited with error", logger.Error(exitErr))
		} else {
			log.InfoContext(ctx, name+" exited")
		}
		return ctx.Err()
	case err := <-errch:
		return err
	}
}
