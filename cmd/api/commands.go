package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"user-openapi-service/cmd/api/app"
	"user-openapi-service/cmd/api/infrastructure"
	"user-openapi-service/internal/adapter/db/audit"
	ginhandler "user-openapi-service/internal/adapter/gin/handler"
	ginrouter "user-openapi-service/internal/adapter/gin/router"
	"user-openapi-service/internal/config"
	domain "user-openapi-service/internal/domain/user"
	"user-openapi-service/internal/openapi"
	"user-openapi-service/internal/usecase/user"
	"user-openapi-service/pkg/uid"
)

var (
	openapiFormat string
	auditLimit    int
)

// openapiCmd prints the document the running service would serve at /doc
var openapiCmd = &cobra.Command{
	Use:   "openapi",
	Short: "Print the OpenAPI document",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := app.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}

		style, err := domain.ParseFieldStyle(cfg.App.FieldStyle)
		if err != nil {
			return err
		}

		// The document depends only on the field style, so nothing is connected here
		log := zap.NewNop()
		h := ginhandler.NewUserHandler(user.New(uid.NewUUIDv7(), log), style, log)

		doc, err := ginrouter.BuildDocument(h, cfg.Docs.OpenAPIVersion, openapi.Info{
			Title:   cfg.Docs.Title,
			Version: cfg.Docs.Version,
		})
		if err != nil {
			return err
		}

		var out []byte
		switch openapiFormat {
		case "json":
			out, err = doc.JSON()
		case "yaml":
			out, err = doc.YAML()
		default:
			return fmt.Errorf("unknown format %q (want json or yaml)", openapiFormat)
		}
		if err != nil {
			return err
		}

		_, err = cmd.OutOrStdout().Write(append(out, '\n'))
		return err
	},
}

// auditRow is the printed form of a creation event
type auditRow struct {
	UserID    string    `json:"userId"`
	Transport string    `json:"transport"`
	RequestID string    `json:"requestId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// auditCmd lists the most recent user creations from the audit database
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List recent user creations, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := app.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.DB.Driver == config.DriverNone {
			return fmt.Errorf("audit database is disabled (AUDIT_DB_DRIVER=%s)", cfg.DB.Driver)
		}

		log, err := app.InitLogger(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer func() { _ = log.Sync() }()

		db, err := infrastructure.NewDatabase(cfg, log)
		if err != nil {
			return err
		}
		defer func() { _ = infrastructure.CloseDatabase(db) }()

		recorder := audit.NewRecorder(db, log)
		if err := recorder.Migrate(cmd.Context()); err != nil {
			return err
		}

		events, err := recorder.Recent(cmd.Context(), auditLimit)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, ev := range events {
			if err := enc.Encode(auditRow{
				UserID:    ev.UserID,
				Transport: ev.Transport,
				RequestID: ev.RequestID,
				CreatedAt: ev.CreatedAt,
			}); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	openapiCmd.Flags().StringVarP(&openapiFormat, "format", "f", "json", "output format: json|yaml")
	auditCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "number of events to list")
}
