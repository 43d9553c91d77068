package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/vicuna-trace/ledger/internal/adapter"
	"github.com/vicuna-trace/ledger/internal/api/shared/dto"
	"github.com/vicuna-trace/ledger/internal/api/shared/executor"
	"github.com/vicuna-trace/ledger/internal/messaging"
	"github.com/vicuna-trace/ledger/internal/minting"
	"github.com/vicuna-trace/ledger/internal/provenance"
	"github.com/vicuna-trace/ledger/internal/providers/ethereum"
	"github.com/vicuna-trace/ledger/internal/store/schema"
	"github.com/vicuna-trace/ledger/internal/sweeper"
)

var (
	attemptStates  []string
	attemptProduct int64
	attemptLimit   int

	reconcileBatchSize  int
	reconcileWorkers    int
	reconcileStaleAfter time.Duration
)

// provenanceCmd prints the resolved certification chain of a product
var provenanceCmd = &cobra.Command{
	Use:   "provenance <product-id>",
	Short: "Show the certification chain and mint attributes of a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		productID, err := parseProductID(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		resp, err := newExecutor(nil).GetProvenance(ctx, productID)
		if err != nil {
			return err
		}
		if resp == nil {
			return fmt.Errorf("product %d not found", productID)
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

// recheckCmd settles a submitted mint transaction without resubmitting it
var recheckCmd = &cobra.Command{
	Use:   "recheck <product-id> <tx-hash>",
	Short: "Settle a previously submitted mint transaction",
	Long: `Reads the receipt of a mint transaction and records the token on the product
when the transaction succeeded. Nothing is sent to the chain.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		productID, err := parseProductID(args[0])
		if err != nil {
			return err
		}
		txHash, err := dto.RecheckRequest{TransactionHash: args[1]}.Validate()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		chainClient, err := dialChain(ctx)
		if err != nil {
			return err
		}
		defer chainClient.Close()

		resp, err := newExecutor(chainClient).RecheckProduct(ctx, productID, txHash)
		if err != nil {
			return err
		}
		if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
			return err
		}
		if !minting.Outcome(resp.Outcome).Succeeded() {
			return fmt.Errorf("recheck finished with outcome %s", resp.Outcome)
		}
		return nil
	},
}

// attemptsCmd lists the mint attempt journal
var attemptsCmd = &cobra.Command{
	Use:   "attempts",
	Short: "List recorded mint attempts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		states := make([]schema.MintAttemptState, 0, len(attemptStates))
		for _, s := range attemptStates {
			state := schema.MintAttemptState(s)
			if !schema.IsValidMintAttemptState(state) {
				return fmt.Errorf("invalid state: %s", s)
			}
			states = append(states, state)
		}
		if attemptLimit < 1 {
			return errors.New("limit must be at least 1")
		}

		var productID *int64
		if cmd.Flags().Changed("product") {
			productID = &attemptProduct
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		resp, err := newExecutor(nil).ListMintAttempts(ctx, productID, states, attemptLimit)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

// reconcileCmd runs a single pass of the pending mint sweeper
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Settle stale mint attempts once",
	Long: `Re-reads the receipts of mint attempts whose confirmation timed out or whose
product record was not updated, and records the token where the transaction succeeded.
This is the same pass the reconciler runs on an interval.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if reconcileBatchSize < 1 {
			return errors.New("batch-size must be at least 1")
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		chainClient, err := dialChain(ctx)
		if err != nil {
			return err
		}
		defer chainClient.Close()

		sw := sweeper.NewPendingMintSweeper(&sweeper.PendingMintSweeperConfig{
			BatchSize:      reconcileBatchSize,
			WorkerPoolSize: reconcileWorkers,
			StaleAfter:     reconcileStaleAfter,
		}, dataStore, minting.NewGuard(dataStore, chainClient), messaging.NewNoopPublisher(), adapter.NewClock())

		settled, err := sw.RunOnce(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "settled %d mint attempt(s)\n", settled)
		return err
	},
}

func init() {
	reconcileCmd.Flags().IntVar(&reconcileBatchSize, "batch-size", 50, "Maximum number of attempts to settle")
	reconcileCmd.Flags().IntVar(&reconcileWorkers, "workers", 4, "Concurrent receipt lookups")
	reconcileCmd.Flags().DurationVar(&reconcileStaleAfter, "stale-after", 10*time.Minute, "Only settle attempts untouched for this long")

	attemptsCmd.Flags().StringSliceVar(&attemptStates, "state", nil, "Only list attempts in these states (repeatable or comma separated)")
	attemptsCmd.Flags().Int64Var(&attemptProduct, "product", 0, "Only list attempts of this product")
	attemptsCmd.Flags().IntVar(&attemptLimit, "limit", 20, "Maximum number of attempts to list")
}

// dialChain connects a read-only chain client; settling never signs, so no wallet is loaded
func dialChain(ctx context.Context) (ethereum.ChainClient, error) {
	if cfg.Ethereum.RPCURL == "" {
		return nil, errors.New("ethereum.rpc_url is required")
	}
	if !common.IsHexAddress(cfg.Ethereum.ContractAddress) {
		return nil, fmt.Errorf("invalid ethereum.contract_address: %q", cfg.Ethereum.ContractAddress)
	}

	network, err := cfg.Ethereum.Network()
	if err != nil {
		return nil, err
	}
	ethClient, err := adapter.NewEthClientDialer().Dial(ctx, cfg.Ethereum.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum RPC: %w", err)
	}

	return ethereum.NewClient(ethereum.Config{
		RequiredNetwork: network,
		ContractAddress: common.HexToAddress(cfg.Ethereum.ContractAddress),
	}, ethClient, ethereum.NewWallet(ethereum.WalletConfig{}, nil), adapter.NewClock()), nil
}

// newExecutor builds the executor over the configured store.
// Commands that never touch the chain pass a nil chain client.
func newExecutor(chainClient ethereum.ChainClient) executor.Executor {
	resolver := provenance.NewResolver(dataStore, provenance.Config{
		RequireTransformationDestination: cfg.Resolver.RequireTransformationDestination,
	})

	var orchestrator *minting.Orchestrator
	if chainClient != nil {
		clock := adapter.NewClock()
		orchestrator = minting.NewOrchestrator(minting.Config{},
			resolver,
			chainClient,
			minting.NewGuard(dataStore, chainClient),
			minting.NewJournal(dataStore, adapter.NewJSON(), clock),
			messaging.NewNoopPublisher(),
			clock)
	}

	return executor.NewExecutor(dataStore, resolver, orchestrator)
}

func parseProductID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id: %s", s)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
