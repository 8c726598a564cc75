package cmd

import (
	"os"

	"cosmos-isolation/core/confirm"
	"cosmos-isolation/feature/admin"

	"github.com/spf13/cobra"
)

var (
	testCreateDatabase bool
	testForce          bool
)

// testCmd checks connectivity to the configured database
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the connection and list containers",
	Long: `Connect to the configured database and list its containers.
With --create-database a missing database is created.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, true)
		if err != nil {
			return err
		}
		defer s.Close()

		svc := admin.NewService(s.client, s.admin, confirm.NewPrompt(os.Stdin, os.Stdout), s.logger)
		conn, err := svc.TestConnection(cmd.Context(), testCreateDatabase, testForce)
		if err != nil {
			return err
		}
		newRenderer(os.Stdout).connection(conn)
		return nil
	},
}

func init() {
	testCmd.Flags().BoolVar(&testCreateDatabase, "create-database", false, "Create the database if it does not exist")
	testCmd.Flags().BoolVarP(&testForce, "force", "f", false, "Skip confirmation prompts")
	RootCmd.AddCommand(testCmd)
}
