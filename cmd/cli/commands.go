package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nimasrn/card-gateway/internal/config"
	"github.com/nimasrn/card-gateway/internal/generator"
	"github.com/nimasrn/card-gateway/internal/model"
	"github.com/nimasrn/card-gateway/internal/repository"
	"github.com/nimasrn/card-gateway/internal/services"
	"github.com/nimasrn/card-gateway/internal/state"
	"github.com/nimasrn/card-gateway/internal/storage"
	"github.com/nimasrn/card-gateway/pkg/logger"
	"github.com/nimasrn/card-gateway/pkg/pg"
	"github.com/nimasrn/card-gateway/pkg/worker"
	"github.com/spf13/cobra"
)

// app bundles what the data commands need. close must be called when done.
type app struct {
	cards *services.CardService
	store *state.Store
	close func()
}

func openApp(ctx context.Context) (*app, error) {
	c := config.Get()
	blobs, closeStore, err := storage.Open(c)
	if err != nil {
		return nil, err
	}

	repo := repository.NewCardRepository(blobs, generator.New())
	latency := services.LatencyFromConfig(c)
	cardService := services.NewCardService(repo, latency, c.CardsSeedOnEmpty)
	txnService := services.NewTransactionService(repo, latency)

	pool := worker.NewWorkerManager(c.WorkerBufferSize, c.WorkerCount)
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := pool.Start(ctx); err != nil && !errors.Is(err, worker.ErrWorkersTerminated) {
			logger.Warn("worker pool stopped", "error", err)
		}
	}()

	return &app{
		cards: cardService,
		store: state.NewStore(cardService, txnService, pool),
		close: func() {
			pool.Exit()
			cancel()
			<-done
			if err := closeStore(); err != nil {
				logger.Warn("failed closing storage", "error", err)
			}
		},
	}, nil
}

func withApp(fn func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd.Context(), a, cmd, args)
	}
}

func newMigrateCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending postgres migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pg.Migrate(storage.WriteConfig(config.Get()), dir); err != nil {
				return fmt.Errorf("migration: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "./migrations", "migrations directory")

	return cmd
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Provision the default cards when storage is empty",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			cards, err := a.cards.EnsureSeeded(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d cards in storage\n", len(cards))
			return nil
		}),
	}
}

func newClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every card and transaction",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			if err := a.cards.ClearAllData(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all data cleared")
			return nil
		}),
	}
}

func newCardsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cards",
		Short: "List cards newest first",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			res := <-state.Dispatch(ctx, a.store, a.store.FetchCards)
			if _, err := res.Unwrap(); err != nil {
				return storeError(a.store, err)
			}
			printCards(cmd.OutOrStdout(), a.store.Cards().Cards)
			return nil
		}),
	}
}

type toggleFunc func(ctx context.Context, s *state.Store, id string) state.Result[*model.Card]

func toggleFreeze(ctx context.Context, s *state.Store, id string) state.Result[*model.Card] {
	return s.ToggleCardFreeze(ctx, id)
}

func toggleNumber(ctx context.Context, s *state.Store, id string) state.Result[*model.Card] {
	return s.ToggleCardNumberVisibility(ctx, id)
}

func newToggleCommand(use, short string, toggle toggleFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <card-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			res := <-state.Dispatch(ctx, a.store, func(ctx context.Context) state.Result[*model.Card] {
				return toggle(ctx, a.store, args[0])
			})
			card, err := res.Unwrap()
			if err != nil {
				return storeError(a.store, err)
			}
			printCards(cmd.OutOrStdout(), []*model.Card{card})
			return nil
		}),
	}
}

// storeError prefers the message the store recorded for the failed action.
func storeError(s *state.Store, err error) error {
	if msg := s.Cards().Error; msg != "" {
		return errors.New(msg)
	}
	return err
}

func printCards(out io.Writer, cards []*model.Card) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tNUMBER\tEXPIRES\tBALANCE\tFROZEN\tRECENT")
	for _, c := range cards {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%t\t%d\n",
			c.ID, c.Name, c.DisplayNumber(), c.ExpirationDate, c.Balance, c.IsFrozen, len(c.RecentTransactions))
	}
	_ = w.Flush()
}
