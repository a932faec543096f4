package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dealdesk/dealdesk/internal/api"
	"github.com/dealdesk/dealdesk/internal/cache"
	"github.com/dealdesk/dealdesk/internal/config"
	"github.com/dealdesk/dealdesk/internal/csvio"
	"github.com/dealdesk/dealdesk/internal/forms"
	"github.com/dealdesk/dealdesk/internal/localstore"
	"github.com/dealdesk/dealdesk/internal/models"
	"github.com/dealdesk/dealdesk/internal/transition"
	"github.com/dealdesk/dealdesk/internal/tui"
	"github.com/dealdesk/dealdesk/internal/tui/screens"
)

var rootCmd = &cobra.Command{
	Use:   "dealdesk",
	Short: "Investment banking lead pipeline client",
	Long:  `Dealdesk is a terminal client for the lead pipeline: stage-gated transitions, POC tracking, outreach logging and lead assignment.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, client, log := mustSetup()
		defer localstore.Close()
		defer log.Sync()

		actor, err := client.CurrentUser(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Not signed in (%v).\nRun 'dealdesk login --session <cookie> --email <email>' first.\n", err)
			os.Exit(1)
		}

		store := cache.NewStore()
		warmStart(store)

		deps := screens.Deps{
			API:      client,
			Store:    store,
			Flow:     transition.New(client, store, log),
			Actor:    *actor,
			Log:      log,
			PageSize: cfg.PageSize,
			Warm: func(stage models.Stage, leads []models.Lead) {
				if err := localstore.SaveLeadSnapshot(string(stage), leads); err != nil {
					log.Warn("could not save lead snapshot", zap.Error(err))
				}
			},
		}

		if err := tui.Run(deps); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the server session cookie for subsequent commands",
	Run: func(cmd *cobra.Command, args []string) {
		_, client, log := mustSetup()
		defer localstore.Close()
		defer log.Sync()

		session, _ := cmd.Flags().GetString("session")
		email, _ := cmd.Flags().GetString("email")
		if session == "" {
			fmt.Fprintln(os.Stderr, "--session is required (the connect.sid cookie value from a browser session)")
			os.Exit(1)
		}

		client.SetSession(session)
		actor, err := client.CurrentUser(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Session check failed: %v\n", err)
			os.Exit(1)
		}

		if email == "" {
			email = actor.Email
		}
		if err := localstore.SaveSession(session, email); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving session: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Signed in as %s (%s)\n", actor.DisplayName(), actor.Role)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := localstore.Open(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer localstore.Close()

		if err := localstore.ClearSession(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Signed out.")
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Upload companies from a CSV file",
	Long: `Parse a company CSV locally, report per-row problems, and upload the
valid rows. Download a template with 'dealdesk sample'.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, client, log := mustSetup()
		defer localstore.Close()
		defer log.Sync()

		f, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()

		parsed, err := csvio.Parse(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		for _, rowErr := range parsed.Errors {
			fmt.Fprintf(os.Stderr, "skipped %v\n", rowErr)
		}
		if len(parsed.Rows) == 0 {
			fmt.Fprintln(os.Stderr, "No valid rows to upload.")
			os.Exit(1)
		}

		body, err := csvio.Render(parsed.Rows)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		result, err := client.UploadCompaniesCSV(context.Background(), []byte(body))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Upload failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Imported: %d\n", result.Imported)
		fmt.Printf("Skipped: %d\n", result.Skipped)
		for _, e := range result.Errors {
			fmt.Printf("  row %d: %s\n", e.Row, e.Message)
		}
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <file.csv>",
	Short: "Export leads to a CSV file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, client, log := mustSetup()
		defer localstore.Close()
		defer log.Sync()

		stageFlag, _ := cmd.Flags().GetString("stage")
		stage := models.Stage(stageFlag)
		if stageFlag != "" && !stage.Valid() {
			fmt.Fprintf(os.Stderr, "Unknown stage %q\n", stageFlag)
			os.Exit(1)
		}

		ctx := context.Background()
		data, err := client.ExportLeadsCSV(ctx, stage)
		if err != nil {
			// Older servers lack the export endpoint; render locally instead.
			var leads []models.Lead
			if stage == "" {
				leads, err = client.ListLeads(ctx)
			} else {
				leads, err = client.ListLeadsByStage(ctx, stage)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
				os.Exit(1)
			}
			var b strings.Builder
			if err := csvio.WriteLeads(&b, leads); err != nil {
				fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
				os.Exit(1)
			}
			data = []byte(b.String())
		}

		if err := os.WriteFile(args[0], data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", args[0])
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample [file.csv]",
	Short: "Write the company upload CSV template",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, client, log := mustSetup()
		defer localstore.Close()
		defer log.Sync()

		path := "company_upload_sample.csv"
		if len(args) > 0 {
			path = args[0]
		}

		data, err := client.SampleCSV(context.Background())
		if err != nil {
			data = []byte(csvio.Sample())
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", path)
	},
}

var inviteCmd = &cobra.Command{
	Use:   "invite <email> <role>",
	Short: "Invite a user to the organization",
	Long: `Invite a user by email. Role is one of admin, partner, analyst, intern.
Intern invitations need --analyst with the analyst's user id.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		_, client, log := mustSetup()
		defer localstore.Close()
		defer log.Sync()

		analystID, _ := cmd.Flags().GetString("analyst")
		form := forms.InvitationForm{Email: args[0], Role: args[1], AnalystID: analystID}
		if err := forms.Validate(form); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		inv, err := client.CreateInvitation(context.Background(), api.InvitationInput{
			Email:     form.Email,
			Role:      models.Role(form.Role),
			AnalystID: form.AnalystID,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Invitation sent to %s (expires %s)\n", inv.Email, inv.ExpiresAt.Format("Jan 02, 2006"))
	},
}

// mustSetup loads env and config, opens the local store, builds the logger
// and an API client carrying any stored session. Exits on failure.
func mustSetup() (*config.Config, *api.Client, *zap.Logger) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if _, err := localstore.Open(); err != nil {
		fmt.Fprintf(os.Stderr, "Error opening local store: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building logger: %v\n", err)
		os.Exit(1)
	}

	client := api.New(cfg.APIBaseURL, cfg.Timeout(), log)
	if session, err := localstore.LoadSession(); err == nil && session != nil {
		client.SetSession(session.Cookie)
	}
	return cfg, client, log
}

// newLogger writes structured logs to ~/.dealdesk/debug.log so the TUI's
// alternate screen stays clean.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logPath, err := config.LogPath()
	if err != nil {
		return nil, err
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{logPath}
	zc.ErrorOutputPaths = []string{logPath}
	return zc.Build()
}

// warmStart seeds the cache with the last saved stage lists so list screens
// can paint if the first fetch fails.
func warmStart(store *cache.Store) {
	for _, stage := range models.AllStages {
		leads, _, err := localstore.LoadLeadSnapshot(string(stage))
		if err != nil || leads == nil {
			continue
		}
		store.Prime(cache.LeadsKey(stage), leads)
	}
	if leads, _, err := localstore.LoadLeadSnapshot(string(cache.StageAll)); err == nil && leads != nil {
		store.Prime(cache.LeadsKey(cache.StageAll), leads)
	}
}

func init() {
	loginCmd.Flags().String("session", "", "Session cookie value")
	loginCmd.Flags().String("email", "", "Email to store with the session")

	exportCmd.Flags().StringP("stage", "s", "", "Only export one stage")

	inviteCmd.Flags().String("analyst", "", "Analyst user id an intern reports to")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(inviteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
