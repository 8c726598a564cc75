package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cosmos-isolation/core/confirm"
	"cosmos-isolation/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Connection flags shared by every store command
	endpointFlag      string
	keyFlag           string
	databaseFlag      string
	allowInsecureFlag bool
	driverFlag        string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cosmos-isolation",
	Short: "Dump and restore Cosmos DB containers",
	Long: `cosmos-isolation exports Cosmos DB containers to a single JSON file and
replays such files into other databases, creating missing containers with a
matching partition key.

Connection settings come from flags, COSMOS_* environment variables or a .env
file. Set COSMOS_DRIVER=sqlite to run every command against a local SQL store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := RootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	if errors.Is(err, confirm.ErrCancelled) {
		fmt.Fprintln(os.Stderr, "Operation cancelled by user")
		return
	}

	// console format with debug level gives ISO8601 timestamps
	cfg := &logger.Config{
		Level:  "debug",
		Format: "console",
	}

	l, logErr := logger.New(cfg)
	if logErr == nil {
		l.Error("command failed", zap.Error(err))
		_ = l.Sync()
	} else {
		fmt.Println(err)
	}
	os.Exit(1)
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVarP(&endpointFlag, "endpoint", "e", "", "Cosmos DB endpoint URL (COSMOS_ENDPOINT)")
	flags.StringVarP(&keyFlag, "key", "k", "", "Cosmos DB account key (COSMOS_KEY)")
	flags.StringVarP(&databaseFlag, "database", "d", "", "Database name (COSMOS_DATABASE)")
	flags.BoolVarP(&allowInsecureFlag, "allow-insecure", "a", false, "Skip TLS certificate verification (COSMOS_ALLOW_INSECURE)")
	flags.StringVar(&driverFlag, "driver", "", "Store driver: cosmos, sqlite or mysql (COSMOS_DRIVER)")
}
