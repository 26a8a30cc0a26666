package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage sync accounts",
}

var accountAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Add an account after checking its credentials against the directory",
	Long: `Add an account. The password is read from --password or, if omitted,
from the first line of standard input.

Example:
  echo "s3cret" | syncer account add alice`,
	Args: cobra.ExactArgs(1),
	RunE: runAccountAdd,
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	Args:  cobra.NoArgs,
	RunE:  runAccountList,
}

var accountRemoveCmd = &cobra.Command{
	Use:   "remove <username>",
	Short: "Remove an account (local contacts are kept)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountRemove,
}

var (
	accountPassword   string
	accountSkipVerify bool
)

func init() {
	accountAddCmd.Flags().StringVar(&accountPassword, "password", "", "Account password")
	accountAddCmd.Flags().BoolVar(&accountSkipVerify, "skip-verify", false, "Do not check credentials against the directory")

	accountCmd.AddCommand(accountAddCmd)
	accountCmd.AddCommand(accountListCmd)
	accountCmd.AddCommand(accountRemoveCmd)
}

func runAccountAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	userName := args[0]
	password := accountPassword
	if password == "" {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if !accountSkipVerify {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.DirectoryTimeout)
		defer cancel()

		contact, err := a.directory.VerifyCredentials(ctx, userName, password)
		if err != nil {
			return fmt.Errorf("verify credentials: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s %s (%s)\n", contact.FirstName, contact.LastName, contact.Location)
	}

	account, err := a.accounts.Add(userName, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Account %s added\n", account)
	return nil
}

func runAccountList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	list := a.accounts.List()
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No accounts")
		return nil
	}
	for _, account := range list {
		fmt.Fprintln(cmd.OutOrStdout(), account)
	}
	return nil
}

func runAccountRemove(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.accounts.Remove(args[0]); err != nil {
		return fmt.Errorf("account %q: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Account %s removed\n", args[0])
	return nil
}
