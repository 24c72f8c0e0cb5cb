/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/gotodo/apiserver/config"
	"github.com/gotodo/apiserver/internal/db"
)

// playgroundCmd groups ad-hoc scratch commands that hit the database driver
// directly, bypassing the store layer. Useful for poking at a dev database.
var playgroundCmd = &cobra.Command{
	Use:   "playground",
	Short: "Ad-hoc database scratch commands",
}

var playgroundSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert a scratch user with a couple of todos",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openPlaygroundDB(cmd)
		if err != nil {
			return err
		}
		defer conn.Close()

		ctx := cmd.Context()
		userID := uuid.New()
		email := fmt.Sprintf("scratch-%s@example.com", userID.String()[:8])

		_, err = conn.ExecContext(ctx, `
			INSERT INTO users (id, email, password_hash, tokens, created_at, updated_at)
			VALUES ($1, $2, 'not-a-real-hash', '[]', NOW(), NOW())`,
			userID, email)
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}

		for _, text := range []string{"Something to do", "Eat lunch"} {
			_, err = conn.ExecContext(ctx, `
				INSERT INTO todos (id, owner_id, text, completed, created_at, updated_at)
				VALUES ($1, $2, $3, FALSE, NOW(), NOW())`,
				uuid.New(), userID, text)
			if err != nil {
				return fmt.Errorf("insert todo: %w", err)
			}
		}

		fmt.Printf("seeded user %s (%s) with 2 todos\n", userID, email)
		return nil
	},
}

var playgroundFindCmd = &cobra.Command{
	Use:   "find",
	Short: "Print todos matching the completed flag",
	RunE: func(cmd *cobra.Command, args []string) error {
		completed, err := cmd.Flags().GetBool("completed")
		if err != nil {
			return err
		}

		conn, err := openPlaygroundDB(cmd)
		if err != nil {
			return err
		}
		defer conn.Close()

		rows, err := conn.QueryContext(cmd.Context(), `
			SELECT id, owner_id, text, completed, completed_at
			FROM todos
			WHERE completed = $1
			ORDER BY created_at`, completed)
		if err != nil {
			return fmt.Errorf("query todos: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var doc struct {
				ID          uuid.UUID `json:"id"`
				OwnerID     uuid.UUID `json:"owner_id"`
				Text        string    `json:"text"`
				Completed   bool      `json:"completed"`
				CompletedAt *int64    `json:"completedAt"`
			}
			if err := rows.Scan(&doc.ID, &doc.OwnerID, &doc.Text, &doc.Completed, &doc.CompletedAt); err != nil {
				return err
			}
			line, _ := json.MarshalIndent(doc, "", "  ")
			fmt.Println(string(line))
		}
		return rows.Err()
	},
}

var playgroundPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete todos whose text matches exactly",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := cmd.Flags().GetString("text")
		if err != nil {
			return err
		}
		if text == "" {
			return fmt.Errorf("--text is required")
		}

		conn, err := openPlaygroundDB(cmd)
		if err != nil {
			return err
		}
		defer conn.Close()

		result, err := conn.ExecContext(cmd.Context(), `DELETE FROM todos WHERE text = $1`, text)
		if err != nil {
			return fmt.Errorf("delete todos: %w", err)
		}
		deleted, _ := result.RowsAffected()
		fmt.Printf("deleted %d todos\n", deleted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(playgroundCmd)
	playgroundCmd.AddCommand(playgroundSeedCmd)
	playgroundCmd.AddCommand(playgroundFindCmd)
	playgroundCmd.AddCommand(playgroundPurgeCmd)

	playgroundFindCmd.Flags().Bool("completed", false, "match the completed flag")
	playgroundPurgeCmd.Flags().String("text", "", "exact todo text to delete")
}

func openPlaygroundDB(cmd *cobra.Command) (*sql.DB, error) {
	cfg := config.LoadConfig()
	conn, err := db.Open(cmd.Context(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error connecting to postgres: %v\n", err)
		return nil, err
	}
	return conn, nil
}
