// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/danielhkuo/chainvote/cliparse"
	"github.com/danielhkuo/chainvote/db"
	"github.com/danielhkuo/chainvote/gateway"
	"github.com/danielhkuo/chainvote/router"
	"github.com/danielhkuo/chainvote/sessions"
)

func main() {
	setupLogger()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Journal storage
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Connect to the node
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		slog.Error("rpc connection failed", "url", cfg.RPCURL, "error", err)
		os.Exit(1)
	}
	defer client.Close()

	chainID := big.NewInt(cfg.ChainID)
	if cfg.ChainID == 0 {
		chainID, err = client.ChainID(ctx)
		if err != nil {
			slog.Error("failed to read chain id", "error", err)
			os.Exit(1)
		}
	}
	slog.Info("Connected to node", "url", cfg.RPCURL, "chain_id", chainID)

	wallet, err := openWallet(cfg)
	if err != nil {
		slog.Error("wallet setup failed", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	gw, err := gateway.New(client, gateway.Config{
		Address:    common.HexToAddress(cfg.ContractAddress),
		ChainID:    chainID,
		Wallet:     wallet,
		Registerer: registry,
	})
	if err != nil {
		slog.Error("gateway setup failed", "error", err)
		os.Exit(1)
	}

	store := sessions.NewStore(gw, sessions.Config{
		Journal:   db.NewJournal(dbConn),
		TxTimeout: cfg.TxTimeout,
	})
	if err := store.Start(cfg.PollInterval); err != nil {
		slog.Error("poller setup failed", "error", err)
		os.Exit(1)
	}
	defer store.Stop()

	// Create server
	server := http.Server{
		Handler:           router.NewRouter(store, gw, cfg, registry),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		// Votes in flight get up to the tx timeout to finish
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.TxTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "contract", cfg.ContractAddress, "wallet", wallet != nil)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// setupLogger logs text to a terminal and JSON everywhere else.
func setupLogger() {
	var handler slog.Handler
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		handler = slog.NewTextHandler(os.Stdout, nil)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}

// openWallet returns the configured signer, or nil when none is set up.
// A nil wallet behaves like a browser without a wallet extension.
func openWallet(cfg cliparse.Config) (gateway.Wallet, error) {
	switch {
	case cfg.PrivateKey != "":
		w, err := gateway.NewKeyWallet(cfg.PrivateKey, cfg.AutoConnect)
		if err != nil {
			return nil, err
		}
		slog.Info("Using private key wallet", "account", w.Address().Hex())
		return w, nil
	case cfg.KeystoreDir != "" && cfg.WalletAccount != "":
		w, err := gateway.NewKeystoreWallet(cfg.KeystoreDir, common.HexToAddress(cfg.WalletAccount), cfg.Passphrase, cfg.AutoConnect)
		if err != nil {
			return nil, err
		}
		slog.Info("Using keystore wallet", "account", w.Address().Hex())
		return w, nil
	}
	slog.Warn("No wallet configured; the app will ask users to install one")
	return nil, nil
}
