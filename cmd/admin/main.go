package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"cityvoice/backend/internal/api/handler"
	"cityvoice/backend/internal/config"
	"cityvoice/backend/internal/models"
	"cityvoice/backend/internal/notify"
	"cityvoice/backend/internal/storage"
	"cityvoice/backend/internal/triage"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const adminActorID = "admin-cli"

type app struct {
	configFile string
	cfg        *config.Config
}

func (a *app) loadConfig() error {
	if a.cfg != nil {
		return nil
	}
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	config.SetupLogging(cfg)
	a.cfg = cfg
	return nil
}

func (a *app) openDB() (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(a.cfg.PostgresDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

// openStorage connects to postgres and, when reachable, redis so CLI transitions reach the staff feed.
func (a *app) openStorage(ctx context.Context) (*storage.Service, error) {
	db, err := a.openDB()
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("redis unavailable, staff feed will not see CLI changes")
		rdb = nil
	}
	return storage.NewStorageService(db, rdb), nil
}

func (a *app) router(ctx context.Context) (*triage.Router, error) {
	s, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}
	multi := notify.NewMulti()
	if s.Redis != nil {
		multi.Add(notify.NewRedisNotifier(s))
	}
	return triage.NewRouter(s, multi), nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "admin",
		Short:         "CityVoice intake administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "optional config file (yaml, json, toml)")

	root.AddCommand(
		a.migrateCmd(),
		a.verifyCmd("verify", true),
		a.verifyCmd("unverify", false),
		a.trustCmd(),
		a.transitionCmd(),
		a.tokenCmd(),
	)
	return root
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the intake tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			if err := storage.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations complete.")
			return nil
		},
	}
}

func (a *app) verifyCmd(use string, verified bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <citizen-id>",
		Short: fmt.Sprintf("Set a citizen's verified flag to %t", verified),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("citizen %s not found", args[0])
			}
			s, err := a.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.SetCitizenVerified(cmd.Context(), id.String(), verified); err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return fmt.Errorf("citizen %s not found", args[0])
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Citizen %s verified=%t.\n", args[0], verified)
			return nil
		},
	}
}

func (a *app) trustCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trust <citizen-id>",
		Short: "Show a citizen's trust level and remaining daily quota",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.router(cmd.Context())
			if err != nil {
				return err
			}
			summary, err := r.TrustSummary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, summary)
		},
	}
}

func (a *app) transitionCmd() *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "transition <report-id> <status>",
		Short: "Move a report to a new status as admin, applying the trust ledger",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, ok := models.ParseStatus(args[1])
			if !ok {
				return fmt.Errorf("%w: %q", triage.ErrInvalidStatus, args[1])
			}
			r, err := a.router(cmd.Context())
			if err != nil {
				return err
			}
			result, err := r.Transition(cmd.Context(), triage.TransitionRequest{
				ReportID:  args[0],
				ActorID:   adminActorID,
				ActorRole: models.RoleAdmin,
				NewStatus: &status,
				Message:   message,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]interface{}{
				"report_id":       result.Report.ID,
				"previous_status": result.PreviousStatus,
				"status":          result.Report.Status,
				"ledger":          result.Report.Ledger,
				"trust_delta":     result.Outcome.Delta,
				"trust_score":     result.TrustScore,
			})
		},
	}
	cmd.Flags().StringVar(&message, "message", "", "message recorded with the status change")
	return cmd
}

func (a *app) tokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <subject> <role>",
		Short: "Issue an API bearer token (role: citizen, staff or admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, ok := models.ParseRole(args[1])
			if !ok {
				return fmt.Errorf("unknown role %q", args[1])
			}
			tok, err := handler.NewAuthenticator(a.cfg.JWTSecret, ttl).IssueToken(args[0], role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", handler.DefaultTokenTTL, "token lifetime")
	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
