/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gotodo/apiserver/config"
	"github.com/gotodo/apiserver/internal/mq"
)

// eventsCmd groups commands for the todo event stream.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Todo event stream tools",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Subscribe to the todo event channel and print messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		broker, err := mq.Connect(cmd.Context(), cfg.MQ)
		if err != nil {
			return err
		}
		if broker == nil {
			return fmt.Errorf("no mq backend configured; set MQ_BACKEND")
		}
		defer broker.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		err = broker.Subscribe(ctx, cfg.MQ.Channel, func(_ context.Context, msg mq.Message) error {
			fmt.Printf("[%s] %s\n", msg.ID, msg.Data)
			return nil
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
