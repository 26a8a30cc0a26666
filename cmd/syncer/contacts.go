package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"contacts-sync-service/internal/domain"

	"github.com/spf13/cobra"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts <username>",
	Short: "List contacts synced for an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runContacts,
}

func runContacts(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	account, err := a.accounts.Get(args[0])
	if err != nil {
		return fmt.Errorf("account %q: %w", args[0], err)
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}

	contacts, err := store.ListContacts(context.Background(), account)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tNAME\tEMAIL\tPHONE\tOFFICE")
	for _, c := range contacts {
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s\n",
			c.SyncKey,
			c.Value(domain.KindStructuredName, domain.FieldGivenName),
			c.Value(domain.KindStructuredName, domain.FieldFamilyName),
			c.Value(domain.KindEmail, domain.FieldAddress),
			c.Value(domain.KindPhone, domain.FieldNumber),
			c.Value(domain.KindOrganization, domain.FieldDepartment),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d contacts\n", len(contacts))
	return nil
}
