package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aiprlassist/gavchat/internal/appdir"
	"github.com/aiprlassist/gavchat/internal/store"
)

// resetCmd drops the stored session so the next chat starts fresh.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the stored conversation",
	Long: `Drop the stored session identifier so the next chat starts a fresh
conversation. The visitor identity is kept: the backend still knows who
you are.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		statePath, err := appdir.StatePath()
		if err != nil {
			return fmt.Errorf("failed to resolve state path: %w", err)
		}
		st := store.NewFileStore(statePath)
		st.ClearSession()
		fmt.Println("🧹 Stored conversation forgotten. The next chat starts fresh.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
