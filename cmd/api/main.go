package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"user-openapi-service/cmd/api/app"
	"user-openapi-service/cmd/api/server"
)

// rootCmd runs the service when no subcommand is given
var rootCmd = &cobra.Command{
	Use:           "user-openapi-service",
	Short:         "User REST service that publishes its own OpenAPI document",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and, when enabled, the gRPC server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := server.WithSignal(cmd.Context())
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		return err
	}

	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd, openapiCmd, auditCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "application exited with error: %v\n", err)
		os.Exit(1)
	}
}
