package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mailcal/internal/db"
)

// Version is set via ldflags at build time.
var Version = "dev"

var (
	dbPath     string
	jsonOutput bool
	quietFlag  bool
	store      *db.DB
)

var rootCmd = &cobra.Command{
	Use:   "mc",
	Short: "mc - Turn emails into calendar events",
	Long:  "Mailcal: sync Gmail, extract calendar-like events (deliveries, flights, appointments), reconcile them against known events, and push approved ones to Google Calendar.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB for commands that don't need it
		name := cmd.Name()
		switch name {
		case "init", "help", "version":
			return nil
		case "search", "read":
			// Gmail subcommands don't need the DB
			if cmd.Parent() != nil && cmd.Parent().Name() == "gmail" {
				return nil
			}
		case "gmail":
			// Parent command (shows help)
			return nil
		}

		// Discover database
		path := dbPath
		if path == "" {
			path = db.DiscoverDB()
		}
		if path == "" {
			return fmt.Errorf("no mailcal database found — run 'mc init' first")
		}

		var err error
		store, err = db.Open(path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			store.Close()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mc version %s\n", Version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .mailcal/ in the project root",
	RunE: func(cmd *cobra.Command, args []string) error {
		root := db.FindProjectRoot()
		if root == "" {
			return fmt.Errorf("could not find project root (no .git directory found)")
		}

		dbPath := root + "/.mailcal/mail.db"
		s, err := db.Open(dbPath)
		if err != nil {
			return err
		}
		s.Close()

		// Add .mailcal/ to .gitignore if not already present
		ensureGitignore(root)

		if !quietFlag {
			fmt.Printf("Initialized mailcal at %s\n", dbPath)
		}
		return nil
	},
}

// ensureGitignore adds .mailcal/ to .gitignore if not already present.
func ensureGitignore(root string) {
	gitignorePath := filepath.Join(root, ".gitignore")
	entry := ".mailcal/"

	// Check if entry already exists
	if f, err := os.Open(gitignorePath); err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == entry || line == ".mailcal" {
				f.Close()
				return // already present
			}
		}
		f.Close()
	}

	// Append to .gitignore
	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return // silently skip if can't write
	}
	defer f.Close()

	// Check if file ends with newline
	info, err := f.Stat()
	if err == nil && info.Size() > 0 {
		rf, err := os.Open(gitignorePath)
		if err == nil {
			buf := make([]byte, 1)
			rf.Seek(-1, 2)
			rf.Read(buf)
			rf.Close()
			if buf[0] != '\n' {
				f.WriteString("\n")
			}
		}
	}

	fmt.Fprintf(f, "\n# Mailcal database (local email events)\n%s\n", entry)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: auto-discover .mailcal/mail.db)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
