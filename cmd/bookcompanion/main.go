// Command bookcompanion runs the book companion backend and its tooling.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/bookcompanion/internal/infra/config"
	"github.com/matiasleandrokruk/bookcompanion/internal/infra/logging"
	"github.com/matiasleandrokruk/bookcompanion/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err) //nolint:errcheck
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   version.Name,
		Short: "Backend for the Physical AI & Humanoid Robotics book",
		Long: `bookcompanion serves sign-up/sign-in with a learner background profile,
per-chapter personalization, chapter translation and the chat proxy.

Examples:
  bookcompanion serve
  bookcompanion migrate --status
  bookcompanion advise --topic "ROS 2 Nodes" --profile me.json
  bookcompanion translate chapter.html --token $TOKEN > chapter.ur.html
  bookcompanion mcp`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}
	root.SetVersionTemplate(version.String() + "\n")
	root.PersistentFlags().String("config", "", "YAML config file (overrides BOOKCOMPANION_CONFIG)")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newAdviseCmd(),
		newTranslateCmd(),
		newMCPCmd(),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads --config when given, otherwise BOOKCOMPANION_CONFIG or env.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return config.LoadFile(path)
	}
	return config.Resolve()
}

func newLogger(cfg config.Config) (*logging.Logger, error) {
	return logging.New(logging.Options{
		Mode:     cfg.LogMode,
		Level:    cfg.LogLevel,
		HashSalt: os.Getenv("LOG_HASH_SALT"),
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}
