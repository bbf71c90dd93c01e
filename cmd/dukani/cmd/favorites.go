package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Manage favorites",
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorites, refreshing from the backend when reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closer, err := buildClient()
		if err != nil {
			return err
		}
		defer closer()
		ctx := cmd.Context()

		client.RestoreSession(ctx)
		res, err := client.LoadFavorites(ctx)
		if err != nil {
			return err
		}
		if !res.FromRemote {
			fmt.Println("(offline: showing cached favorites)")
		}
		for _, id := range res.Items {
			fmt.Println(id)
		}
		return nil
	},
}

var favoritesToggleCmd = &cobra.Command{
	Use:   "toggle <item-id>",
	Short: "Flip an item in or out of the favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closer, err := buildClient()
		if err != nil {
			return err
		}
		defer closer()
		ctx := cmd.Context()

		client.RestoreSession(ctx)
		now, err := client.ToggleFavorite(ctx, args[0])
		if err != nil {
			return err
		}
		if now {
			fmt.Printf("Favorited %s.\n", args[0])
		} else {
			fmt.Printf("Unfavorited %s.\n", args[0])
		}
		return nil
	},
}

var favoritesSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the local cache with the backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closer, err := buildClient()
		if err != nil {
			return err
		}
		defer closer()
		ctx := cmd.Context()

		client.RestoreSession(ctx)
		res, err := client.ReconcileFavorites(ctx)
		if err != nil {
			return err
		}
		if !res.FromRemote {
			fmt.Println("Backend unreachable; nothing reconciled.")
			return nil
		}
		fmt.Printf("%d favorites, %d pushed to the backend.\n", len(res.Items), len(res.Pushed))
		return nil
	},
}

func init() {
	favoritesCmd.AddCommand(favoritesListCmd, favoritesToggleCmd, favoritesSyncCmd)
	rootCmd.AddCommand(favoritesCmd)
}
