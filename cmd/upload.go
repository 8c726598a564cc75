package cmd

import (
	"os"

	"cosmos-isolation/core/batch"
	"cosmos-isolation/core/confirm"
	"cosmos-isolation/core/envelope"
	"cosmos-isolation/core/logger"
	"cosmos-isolation/feature/upload"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var uploadOpts upload.Options
var uploadInput string

// uploadCmd replays an envelope file into a database
var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a JSON dump into a database",
	Long: `Upload the containers of a dump file into the target database.

Missing containers are created only with --create-containers, using the
partition key recorded in the dump, then /pk, then /id for dumps without one.
A missing database is created only with --create-database.

Examples:
  # Preview without writing
  upload -i backup.json --dry-run

  # Replace existing documents and create what is missing, no prompts
  upload -i backup.json --upsert --create-containers --force`,
	RunE: runUpload,
}

func init() {
	f := uploadCmd.Flags()
	f.StringVarP(&uploadInput, "input", "i", "", "Dump file or s3://bucket/key")
	f.IntVarP(&uploadOpts.BatchSize, "batch-size", "b", batch.DefaultBatchSize, "Progress reporting interval in documents")
	f.BoolVarP(&uploadOpts.Upsert, "upsert", "u", false, "Replace documents that already exist")
	f.BoolVarP(&uploadOpts.DryRun, "dry-run", "r", false, "Show what would be uploaded without writing")
	f.BoolVarP(&uploadOpts.Force, "force", "f", false, "Skip confirmation prompts")
	f.BoolVar(&uploadOpts.CreateContainers, "create-containers", false, "Create containers that do not exist")
	f.BoolVar(&uploadOpts.CreateDatabase, "create-database", false, "Create the database if it does not exist")
	f.StringVarP(&uploadOpts.Containers, "containers", "c", "", "Only upload these comma-separated containers")
	_ = uploadCmd.MarkFlagRequired("input")

	RootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	loc, err := envelope.ParseLocation(uploadInput)
	if err != nil {
		return err
	}

	s, err := openSession(cmd, true)
	if err != nil {
		return err
	}
	defer s.Close()

	store, err := s.storageFor(loc)
	if err != nil {
		return err
	}

	l := logger.WithRunID(s.logger)
	l.Info("Starting upload",
		zap.String("database", s.client.Database()),
		zap.Stringer("input", loc),
		zap.Bool("upsert", uploadOpts.Upsert),
		zap.Bool("dry_run", uploadOpts.DryRun),
	)

	oracle := confirm.NewPrompt(os.Stdin, os.Stdout)
	run := s.runMetrics()
	svc := upload.NewService(s.client, s.admin, oracle, l, run.Metrics())
	res, err := svc.UploadFrom(cmd.Context(), loc, store, uploadOpts)
	if !uploadOpts.DryRun {
		s.pushMetrics(cmd.Context(), run, "upload")
	}

	newRenderer(os.Stdout).uploadResult(res)
	return err
}
