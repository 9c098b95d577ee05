package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ytget/yt-monitor/internal/config"
	"github.com/ytget/yt-monitor/internal/ledger"
	"github.com/ytget/yt-monitor/internal/model"
)

func newAccountsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage the monitored account list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newAccountsListCommand())
	cmd.AddCommand(newAccountsAddCommand())
	cmd.AddCommand(newAccountsRemoveCommand())
	cmd.AddCommand(newAccountsEnableCommand(true))
	cmd.AddCommand(newAccountsEnableCommand(false))
	cmd.AddCommand(newAccountsClearCommand())
	return cmd
}

func newAccountsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configured accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"ID", "Name", "Platform", "Interval", "Enabled", "URL"})

			accounts, accErrs := cfg.ToAccounts()
			for _, account := range accounts {
				t.AppendRow(table.Row{
					account.ID,
					account.Name,
					account.Platform,
					account.Interval,
					account.Enabled,
					account.URL,
				})
			}
			t.Render()

			for _, err := range accErrs {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
			return nil
		},
	}
}

func newAccountsAddCommand() *cobra.Command {
	var (
		name        string
		platform    string
		url         string
		downloadDir string
		intervalSec int
		disabled    bool
		maxPerPoll  int
		cookie      string
	)

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add an account to the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			id := args[0]
			for _, entry := range cfg.Accounts {
				if entry.ID == id {
					return fmt.Errorf("account %s already exists", id)
				}
			}

			entry := config.AccountConfig{
				ID:          id,
				Name:        name,
				Platform:    platform,
				URL:         url,
				DownloadDir: downloadDir,
				IntervalSec: intervalSec,
				Enabled:     !disabled,
				MaxPerPoll:  maxPerPoll,
				Cookie:      cookie,
			}

			// Validate with the globals applied before touching the file.
			trial := *cfg
			trial.Accounts = []config.AccountConfig{entry}
			if _, errs := trial.ToAccounts(); len(errs) > 0 {
				return errs[0]
			}

			cfg.Accounts = append(cfg.Accounts, entry)
			if err := cfg.Save(cfgFile); err != nil {
				return err
			}
			fmt.Printf("added %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the id)")
	cmd.Flags().StringVar(&platform, "platform", string(model.PlatformYouTube), "youtube or bilibili")
	cmd.Flags().StringVar(&url, "url", "", "channel or space URL (required)")
	cmd.Flags().StringVar(&downloadDir, "download-dir", "", "override the global download directory")
	cmd.Flags().IntVar(&intervalSec, "interval", 0, "poll interval in seconds (default "+fmt.Sprint(config.DefaultIntervalSec)+")")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "add the account without starting it")
	cmd.Flags().IntVar(&maxPerPoll, "max-per-poll", 0, "cap downloads per poll cycle (0 = unlimited)")
	cmd.Flags().StringVar(&cookie, "cookie", "", "session cookie for members-only content")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newAccountsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an account from the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			entry, idx := findAccount(cfg, args[0])
			if idx < 0 {
				return fmt.Errorf("account %s not found", args[0])
			}
			cfg.Accounts = append(cfg.Accounts[:idx], cfg.Accounts[idx+1:]...)
			if err := cfg.Save(cfgFile); err != nil {
				return err
			}
			fmt.Printf("removed %s\n", entry.ID)
			return nil
		},
	}
}

func newAccountsEnableCommand(enable bool) *cobra.Command {
	use, short, verb := "enable", "Enable an account", "enabled"
	if !enable {
		use, short, verb = "disable", "Disable an account", "disabled"
	}
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			_, idx := findAccount(cfg, args[0])
			if idx < 0 {
				return fmt.Errorf("account %s not found", args[0])
			}
			cfg.Accounts[idx].Enabled = enable
			if err := cfg.Save(cfgFile); err != nil {
				return err
			}
			fmt.Printf("%s %s\n", verb, args[0])
			return nil
		},
	}
}

func newAccountsClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <id>",
		Short: "Forget which items were already downloaded for an account",
		Long: `Clears the account's entries from the ledger, so every item the next
poll discovers counts as new again. Items whose files are still in the
destination directory are re-recorded without downloading.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			_, idx := findAccount(cfg, args[0])
			if idx < 0 {
				return fmt.Errorf("account %s not found", args[0])
			}

			store, err := ledger.NewSQLite(cfg.LedgerPath)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			if err := store.Clear(args[0]); err != nil {
				return err
			}
			fmt.Printf("cleared %s\n", args[0])
			return nil
		},
	}
}

func findAccount(cfg *config.Config, id string) (config.AccountConfig, int) {
	for i, entry := range cfg.Accounts {
		if entry.ID == id {
			return entry, i
		}
	}
	return config.AccountConfig{}, -1
}
