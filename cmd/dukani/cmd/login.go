package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var loginName string

var loginCmd = &cobra.Command{
	Use:   "login <phone>",
	Short: "Log in with a one-time code sent to a phone number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closer, err := buildClient()
		if err != nil {
			return err
		}
		defer closer()
		ctx := cmd.Context()

		phone := args[0]
		expiry, err := client.RequestCode(ctx, phone)
		if err != nil {
			return err
		}
		fmt.Printf("Code sent to %s (valid for %s).\n", phone, expiry)

		fmt.Print("Code: ")
		reader := bufio.NewReader(os.Stdin)
		code, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read code: %w", err)
		}
		code = strings.TrimSpace(code)

		res, err := client.VerifyCode(ctx, phone, code, loginName)
		if err != nil {
			return err
		}
		if res.IsNewUser {
			fmt.Printf("Welcome, %s! Account created.\n", res.Session.User.Name)
		} else {
			fmt.Printf("Welcome back, %s.\n", res.Session.User.Name)
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginName, "name", "", "display name, used only when the account is new")
	rootCmd.AddCommand(loginCmd)
}
