package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closer, err := buildClient()
		if err != nil {
			return err
		}
		defer closer()

		session := client.RestoreSession(cmd.Context())
		if !session.Authenticated {
			fmt.Println("Not logged in.")
			return nil
		}
		fmt.Printf("%s (%s)\n", session.User.Name, session.User.Phone)
		if session.Role != "" {
			fmt.Printf("role: %s\n", session.Role)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
