package cmd

import (
	"os"

	"cosmos-isolation/core/confirm"
	"cosmos-isolation/feature/admin"

	"github.com/spf13/cobra"
)

var statusDetailed bool

// statusCmd shows per-container statistics
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show container statistics for the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, true)
		if err != nil {
			return err
		}
		defer s.Close()

		svc := admin.NewService(s.client, s.admin, confirm.Always(false), s.logger)
		report, err := svc.Status(cmd.Context())
		if err != nil {
			return err
		}
		newRenderer(os.Stdout).status(report, statusDetailed)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusDetailed, "detailed", false, "Include ETags")
	RootCmd.AddCommand(statusCmd)
}
