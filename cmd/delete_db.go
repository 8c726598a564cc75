package cmd

import (
	"os"

	"cosmos-isolation/core/confirm"
	"cosmos-isolation/feature/admin"

	"github.com/spf13/cobra"
)

var (
	deleteList  bool
	deleteForce bool
)

// deleteDBCmd deletes a database or lists the account's databases
var deleteDBCmd = &cobra.Command{
	Use:   "delete-db",
	Short: "Delete a database",
	Long: `Delete the database named by --database/-d or COSMOS_DATABASE together with
every container in it. Use --list-databases to see the available databases
instead.

Examples:
  delete-db --list-databases
  delete-db -d staging
  delete-db -d staging --force`,
	RunE: runDeleteDB,
}

func init() {
	deleteDBCmd.Flags().BoolVarP(&deleteList, "list-databases", "l", false, "List databases instead of deleting")
	// short spelling kept for existing scripts
	deleteDBCmd.Flags().BoolVar(&deleteList, "list", false, "Alias for --list-databases")
	_ = deleteDBCmd.Flags().MarkHidden("list")
	deleteDBCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompts")
	RootCmd.AddCommand(deleteDBCmd)
}

func runDeleteDB(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, !deleteList)
	if err != nil {
		return err
	}
	defer s.Close()

	svc := admin.NewService(s.client, s.admin, confirm.NewPrompt(os.Stdin, os.Stdout), s.logger)
	if deleteList {
		names, err := svc.ListDatabases(cmd.Context())
		if err != nil {
			return err
		}
		newRenderer(os.Stdout).databases(names)
		return nil
	}

	_, err = svc.DeleteDatabase(cmd.Context(), s.cfg.Cosmos.Database, deleteForce)
	return err
}
