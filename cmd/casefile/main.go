package main

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"casefile/internal/app"
	"casefile/internal/config"
	"casefile/internal/model"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
func newApp() (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// readPassphrase prompts for a passphrase without echoing.
func readPassphrase(prompt string) (string, error) {
	fmt.Print(prompt)
	passphrase, err := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if len(passphrase) == 0 {
		return "", fmt.Errorf("passphrase must not be empty")
	}
	return string(passphrase), nil
}

var rootCmd = &cobra.Command{
	Use:   "casefile",
	Short: "File catalog and synchronization tool for case evidence",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:  %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:   %s\n", cfg.LogDir)
		fmt.Printf("Database:  %s (%s)\n", cfg.Database.Type, cfg.Database.DataDir)
		return nil
	},
}

// case command
var caseCmd = &cobra.Command{
	Use:   "case",
	Short: "Manage cases",
}

var caseAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a new case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.Service().CreateCase(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Created case %s (%s)\n", c.Name, c.ID)
		return nil
	},
}

var caseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cases",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		cases, err := a.Store().ListCases(cmd.Context())
		if err != nil {
			return err
		}

		if len(cases) == 0 {
			fmt.Println("No cases.")
			return nil
		}
		for _, c := range cases {
			fmt.Printf("%s  %s  created %s\n", c.ID, c.Name, c.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

// source command
var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage sources",
}

var sourceAddCmd = &cobra.Command{
	Use:   "add CASE_ID PATH",
	Short: "Register a source for a case",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		remote, _ := cmd.Flags().GetBool("s3")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		location := model.LocationLocal
		path := args[1]
		if remote {
			location = model.LocationS3
		} else {
			path, err = filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
		}

		src, err := a.Service().AddSource(cmd.Context(), args[0], path, location)
		if err != nil {
			return err
		}

		fmt.Printf("Source %s registered: %s (%s)\n", src.ID, src.Path, src.Location)
		return nil
	},
}

var sourceListCmd = &cobra.Command{
	Use:   "list CASE_ID",
	Short: "List sources of a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sources, err := a.Store().ListSources(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if len(sources) == 0 {
			fmt.Println("No sources.")
			return nil
		}
		for _, s := range sources {
			fmt.Printf("%s  %-6s  %s\n", s.ID, s.Location, s.Path)
		}
		return nil
	},
}

// sync command
var syncCmd = &cobra.Command{
	Use:   "sync CASE_ID SOURCE_ID",
	Short: "Synchronize a source into the catalog",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.Service().SyncSource(cmd.Context(), args[0], args[1])
		if summary != nil {
			fmt.Printf("Inserted: %d  Updated: %d  Skipped: %d  Failed: %d\n",
				summary.Inserted, summary.Updated, summary.Skipped, summary.Failed)
			for _, e := range summary.Errors {
				fmt.Fprintf(os.Stderr, "  %s\n", e)
			}
		}
		return err
	},
}

// check command
var checkCmd = &cobra.Command{
	Use:   "check FILE_ID",
	Short: "Check whether a cataloged file is still fresh on disk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.Service().CheckFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Println(st.String())
		return nil
	},
}

// cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup CASE_ID SOURCE_ID",
	Short: "Soft-delete catalog entries whose files vanished from a source",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Service().CleanupSource(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Printf("Deleted: %d  Protected: %d\n", result.Deleted, result.Protected)
		return nil
	},
}

// dupes command
var dupesCmd = &cobra.Command{
	Use:   "dupes CASE_ID",
	Short: "Show duplicate file groups of a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		groups, err := a.Service().DuplicateGroups(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if len(groups) == 0 {
			fmt.Println("No duplicate groups.")
			return nil
		}
		for groupID, members := range groups {
			fmt.Printf("group %s\n", groupID)
			for _, m := range members {
				marker := " "
				if m.IsPrimary {
					marker = "*"
				}
				fmt.Printf("  %s %s\n", marker, m.FileID)
			}
		}
		return nil
	},
}

// status command
var statusCmd = &cobra.Command{
	Use:   "status FILE_ID STATUS",
	Short: "Set the review status of a file",
	Long:  "Set the review status of a file. Valid statuses: unreviewed, in_progress, reviewed, flagged, finalized.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().SetFileStatus(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}

		fmt.Printf("File %s marked %s\n", args[0], args[1])
		return nil
	},
}

// tag command
var tagCmd = &cobra.Command{
	Use:   "tag FILE_ID [TAG...]",
	Short: "Replace the tags of a file (no tags clears them)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().TagFile(cmd.Context(), args[0], args[1:]); err != nil {
			return err
		}

		fmt.Printf("File %s tagged (%d tags)\n", args[0], len(args)-1)
		return nil
	},
}

// note command
var noteCmd = &cobra.Command{
	Use:   "note CASE_ID CONTENT",
	Short: "Attach a note to a case or file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fileID, _ := cmd.Flags().GetString("file")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.Service().AddNote(cmd.Context(), args[0], fileID, args[1])
		if err != nil {
			return err
		}

		fmt.Printf("Note %s created\n", n.ID)
		return nil
	},
}

// finding command
var findingCmd = &cobra.Command{
	Use:   "finding CASE_ID TITLE",
	Short: "Create a finding, optionally linking files",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		severity, _ := cmd.Flags().GetString("severity")
		linked, _ := cmd.Flags().GetStringSlice("link")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := a.Service().AddFinding(cmd.Context(), args[0], args[1], description, severity, linked)
		if err != nil {
			return err
		}

		fmt.Printf("Finding %s created (%d linked files)\n", f.ID, len(f.LinkedFiles))
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history CASE_ID",
	Short: "View sync run history for a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.Service().GetHistory(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No sync runs recorded.")
			return nil
		}

		for _, run := range runs {
			duration := ""
			if run.FinishedAt != nil {
				d := run.FinishedAt.Sub(run.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %s  %-8s  +%d ~%d =%d !%d  %s\n",
				run.ID,
				run.StartedAt.Format("2006-01-02 15:04:05"),
				run.Status,
				run.Inserted, run.Updated, run.Skipped, run.Failed,
				duration,
			)
		}
		return nil
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup DEST",
	Short: "Write an encrypted backup of the catalog database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}

		if err := a.Backup(args[0], passphrase); err != nil {
			return err
		}

		fmt.Printf("Backup written to %s\n", args[0])
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore ARCHIVE DEST",
	Short: "Decrypt a catalog backup into a database file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		passphrase, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}

		if err := app.Restore(args[0], args[1], passphrase); err != nil {
			return err
		}

		fmt.Printf("Catalog restored to %s\n", args[1])
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// case subcommands
	caseCmd.AddCommand(caseAddCmd)
	caseCmd.AddCommand(caseListCmd)

	// source subcommands
	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceListCmd)
	sourceAddCmd.Flags().Bool("s3", false, "Register an S3 source (PATH is s3://bucket/prefix)")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(caseCmd)
	rootCmd.AddCommand(sourceCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(dupesCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(noteCmd)
	noteCmd.Flags().String("file", "", "File ID to attach the note to")
	rootCmd.AddCommand(findingCmd)
	findingCmd.Flags().String("description", "", "Longer description of the finding")
	findingCmd.Flags().String("severity", "medium", "Severity: low, medium, high, critical")
	findingCmd.Flags().StringSlice("link", nil, "File IDs to link to the finding")
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of sync runs to show")
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}
