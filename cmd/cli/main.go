package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/cmd/cli/commands"
	"github.com/jakechorley/volunteer-hub/internal/config"
	"github.com/jakechorley/volunteer-hub/pkg/clients/gmailclient"
	"github.com/jakechorley/volunteer-hub/pkg/clients/sheetsclient"
	"github.com/jakechorley/volunteer-hub/pkg/core/autoaccept"
	"github.com/jakechorley/volunteer-hub/pkg/notify"
	"github.com/jakechorley/volunteer-hub/pkg/postgres"
	"github.com/jakechorley/volunteer-hub/pkg/utils"
	"github.com/jakechorley/volunteer-hub/pkg/utils/logging"
)

var (
	env         string
	logsDir     string
	app         = &commands.AppContext{}
	closeLogger func()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Volunteer Hub CLI - Shift signups with rule-based auto-accept",
		Long:  `A CLI tool for running the volunteer signup API, managing auto-accept rules, and scheduling shifts.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			shutdownApp()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().StringVar(&logsDir, "logs-dir", logging.DefaultLogsDir, "Directory for log files")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.SignUpCmd(app))
	rootCmd.AddCommand(commands.CancelSignupCmd(app))
	rootCmd.AddCommand(commands.CheckEligibilityCmd(app))
	rootCmd.AddCommand(commands.RulesCmd(app))
	rootCmd.AddCommand(commands.ScheduleShiftsCmd(app))
	rootCmd.AddCommand(commands.VolunteersCmd(app))
	rootCmd.AddCommand(commands.ShiftTypesCmd(app))
	rootCmd.AddCommand(commands.ViewHistoryCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		shutdownApp()
		os.Exit(1)
	}
}

// initApp sets up logger, config, database, rule evaluation and the mailer
func initApp(ctx context.Context) error {
	var err error
	app.Ctx = ctx
	app.Env = env
	app.Now = time.Now

	// Initialize logger
	app.Logger, closeLogger, err = logging.InitLogger(env, logsDir)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.Logger.Debug("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully",
		zap.String("timezone", app.Cfg.Timezone),
		zap.Bool("auto_accept", app.Cfg.AutoAccept.Enabled),
		zap.Bool("email", app.Cfg.Email.Enabled))

	// Connect to the database
	app.Logger.Info("Connecting to database")
	app.Database, err = postgres.NewDB(ctx, app.Cfg.DatabaseURL, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.Logger.Debug("Database connected successfully")

	// Rule evaluation
	app.Compiler, err = autoaccept.NewExpressionCompiler()
	if err != nil {
		return fmt.Errorf("failed to create expression compiler: %w", err)
	}
	app.Evaluator = autoaccept.NewEvaluator(app.Database, app.Compiler, app.Logger, autoaccept.EvaluatorConfig{
		HaltOnStopRuleMiss: app.Cfg.AutoAccept.HaltOnStopRuleMiss,
		Now:                app.Now,
	})

	// Google integrations share one OAuth token
	if err := initGoogleClients(ctx); err != nil {
		return err
	}

	return nil
}

// initGoogleClients sets up the mailer and the volunteer sheet client. Without
// Gmail, confirmation e-mails are only logged.
func initGoogleClients(ctx context.Context) error {
	app.Mailer = notify.NewLogMailer(app.Logger)

	oauthCfg, err := config.LoadOAuthClientIfNeeded(app.Cfg, env)
	if err != nil {
		return fmt.Errorf("failed to load OAuth client config: %w", err)
	}
	if oauthCfg == nil {
		app.Logger.Debug("Google integrations disabled, confirmations will be logged only")
		return nil
	}

	oauthConfig, err := utils.GetOAuthConfig(oauthCfg)
	if err != nil {
		return fmt.Errorf("failed to create OAuth config: %w", err)
	}

	token, err := utils.GetTokenWithFlow(ctx, oauthConfig, env, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to obtain OAuth token: %w", err)
	}

	if app.Cfg.Email.Enabled {
		app.Logger.Info("Initializing gmail client")
		gmailClient, err := gmailclient.NewClient(ctx, oauthCfg, token, app.Cfg.Email, app.Logger)
		if err != nil {
			return fmt.Errorf("failed to create gmail client: %w", err)
		}
		app.Mailer = gmailClient
		app.Logger.Debug("Gmail client initialized successfully")
	}

	if app.Cfg.VolunteerSheet.SpreadsheetID != "" {
		app.Logger.Info("Initializing sheets client")
		app.SheetsClient, err = sheetsclient.NewClient(ctx, oauthCfg, token, app.Logger)
		if err != nil {
			return fmt.Errorf("failed to create sheets client: %w", err)
		}
		app.Logger.Debug("Sheets client initialized successfully")
	}

	return nil
}

func shutdownApp() {
	app.WaitForNotices()
	if app.Database != nil {
		app.Database.Close()
		app.Database = nil
	}
	if closeLogger != nil {
		closeLogger()
		closeLogger = nil
	}
}
