package main

import (
	"fmt"
	"os"
	"os/user"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/lanemap/pkg/audit"
	"github.com/newtron-network/lanemap/pkg/cli"
	"github.com/newtron-network/lanemap/pkg/settings"
	"github.com/newtron-network/lanemap/pkg/util"
)

var (
	auditLast     int
	auditPlatform string
	auditPort     string
	auditFailures bool
	auditSince    time.Duration
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the publish journal",
	Long: `Show CONFIG_DB writes recorded by 'lanemap publish -x'.

The journal is kept in ~/.lanemap/audit.log.

Examples:
  lanemap audit list
  lanemap audit list --port eth1/1/1 --since 24h
  lanemap audit list --failures`,
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent publish events",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := openAuditLog()
		if err != nil {
			return err
		}
		defer logger.Close()

		filter := audit.Filter{
			Platform:    auditPlatform,
			Port:        auditPort,
			FailureOnly: auditFailures,
		}
		if auditSince > 0 {
			filter.StartTime = time.Now().Add(-auditSince)
		}
		events, err := logger.Last(auditLast, filter)
		if err != nil {
			return fmt.Errorf("reading audit log: %w", err)
		}

		if jsonOutput {
			return printJSON(events)
		}
		if len(events) == 0 {
			fmt.Println("No audit events found")
			return nil
		}

		t := cli.NewTable("TIME", "USER", "PLATFORM", "TARGET", "PORTS", "STATUS")
		for _, e := range events {
			status := cli.Green("ok")
			if !e.Success {
				status = cli.Red("failed: " + util.TruncateString(e.Error, 40))
			}
			t.Row(e.Timestamp.Format("2006-01-02 15:04:05"), e.User, e.Platform, e.Target,
				fmt.Sprint(len(e.Changes)), status)
		}
		t.Flush()
		return nil
	},
}

func openAuditLog() (*audit.FileLogger, error) {
	return audit.NewFileLogger(settings.DefaultAuditPath(), audit.RotationConfig{
		MaxSize:    10 * 1024 * 1024, // 10MB
		MaxBackups: 10,
	})
}

func currentUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}

func init() {
	auditListCmd.Flags().IntVar(&auditLast, "last", 20, "Number of events to show (0 for all)")
	auditListCmd.Flags().StringVar(&auditPlatform, "platform-name", "", "Only events for this platform")
	auditListCmd.Flags().StringVar(&auditPort, "port", "", "Only events that changed this port")
	auditListCmd.Flags().BoolVar(&auditFailures, "failures", false, "Only failed events")
	auditListCmd.Flags().DurationVar(&auditSince, "since", 0, "Only events newer than this (e.g. 24h)")

	auditCmd.AddCommand(auditListCmd)
}
