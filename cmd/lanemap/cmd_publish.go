package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/newtron-network/lanemap/pkg/audit"
	"github.com/newtron-network/lanemap/pkg/cli"
	"github.com/newtron-network/lanemap/pkg/portdb"
	"github.com/newtron-network/lanemap/pkg/util"
)

var (
	publishRedis   string
	publishSelect  []string
	publishSSHHost string
	publishSSHUser string
	publishSSHPass string
	publishExecute bool
	publishPrune   bool
	publishLanes   int
	publishTimeout time.Duration
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Program CONFIG_DB PORT entries from the mapping",
	Long: `Derive CONFIG_DB PORT entries from the mapping and write the ones that
differ from what the switch holds. Without -x the changes are only shown.

Without --select each controlling port uses its fastest profile. When
--ssh-host is given, Redis is reached through an SSH tunnel to the switch.

Lanes are ASIC-wide SerDes numbers: core physical id times the lanes per
core (--lanes-per-core, else the lanes_per_core setting, else 8) plus the
core lane. New entries are written admin down; entries already on the
switch keep their admin_status. With --prune, PORT entries the selection
does not derive are deleted.

Examples:
  lanemap -p wedge400 publish
  lanemap -p wedge400 publish --redis 10.0.0.1:6379 --select 1=18 -x
  lanemap -p wedge400 publish --ssh-host sw1 --ssh-user admin --prune -x`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := requireMapping()
		if err != nil {
			return err
		}
		sel, err := selectionFor(m, publishSelect)
		if err != nil {
			return err
		}
		lanes := publishLanes
		if lanes == 0 {
			lanes = userSettings.GetLanesPerCore()
		}
		entries, err := portdb.Entries(m, sel, portdb.Options{LanesPerCore: lanes})
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		addr := publishRedis
		if addr == "" {
			addr = userSettings.RedisAddr
		}
		if publishSSHHost != "" {
			pass, err := sshPassword()
			if err != nil {
				return err
			}
			tunnel, err := portdb.NewSSHTunnel(publishSSHHost, publishSSHUser, pass)
			if err != nil {
				return err
			}
			defer tunnel.Close()
			addr = tunnel.LocalAddr()
		}

		if addr == "" {
			if publishExecute {
				return fmt.Errorf("redis address required: use --redis, --ssh-host, or 'lanemap settings set redis <addr>'")
			}
			changes := portdb.DiffEntries(nil, entries)
			return printChanges(changes, false)
		}

		client := portdb.NewConfigDBClient(addr)
		defer client.Close()
		if err := client.Ping(ctx); err != nil {
			return err
		}

		changes, err := client.Diff(ctx, entries, publishPrune)
		if err != nil {
			return err
		}
		if err := printChanges(changes, publishExecute); err != nil {
			return err
		}
		if !publishExecute || len(changes) == 0 {
			return nil
		}

		writes, removals := splitChanges(changes)
		if len(writes) > 0 {
			write := make(map[string]portdb.PortEntry, len(writes))
			for _, c := range writes {
				write[c.Name] = c.Desired
			}
			start := time.Now()
			err = client.WritePorts(ctx, write)
			recordChanges(audit.OperationPublish, writes, target(addr), time.Since(start), err)
			if err != nil {
				return fmt.Errorf("execution failed: %w", err)
			}
		}
		if len(removals) > 0 {
			names := make([]string, len(removals))
			for i, c := range removals {
				names[i] = c.Name
			}
			start := time.Now()
			err = client.DeletePorts(ctx, names)
			recordChanges(audit.OperationDelete, removals, target(addr), time.Since(start), err)
			if err != nil {
				return fmt.Errorf("execution failed: %w", err)
			}
		}
		if !jsonOutput {
			fmt.Println("\n" + cli.Green(fmt.Sprintf("%d PORT entries written, %d deleted.", len(writes), len(removals))))
		}
		return nil
	},
}

func printChanges(changes []portdb.Change, execute bool) error {
	if jsonOutput {
		return printJSON(changes)
	}
	if len(changes) == 0 {
		fmt.Println("CONFIG_DB PORT table is up to date.")
		return nil
	}

	fmt.Println("Changes to be applied:")
	t := cli.NewTable("PORT", "ACTION", "LANES", "SPEED", "FEC", "INDEX")
	for _, c := range changes {
		action := cli.Green("add")
		switch {
		case c.Remove:
			d := c.Current
			t.Row(c.Name, cli.Red("delete"), d.Lanes, d.Speed, d.FEC, d.Index)
			continue
		case c.Current != nil:
			action = cli.Yellow("modify")
		}
		d := c.Desired
		t.Row(c.Name, action, d.Lanes, d.Speed, d.FEC, d.Index)
	}
	t.Flush()
	printDryRunNotice(execute)
	return nil
}

func target(addr string) string {
	if publishSSHHost != "" {
		return publishSSHHost
	}
	return addr
}

// splitChanges separates entries to write from entries to delete, keeping
// order.
func splitChanges(changes []portdb.Change) (writes, removals []portdb.Change) {
	for _, c := range changes {
		if c.Remove {
			removals = append(removals, c)
		} else {
			writes = append(writes, c)
		}
	}
	return writes, removals
}

// recordChanges appends one CONFIG_DB operation to the publish journal.
func recordChanges(op string, changes []portdb.Change, target string, d time.Duration, err error) {
	event := audit.NewEvent(currentUser(), mappingLabel(), target, op).
		WithChanges(changes).
		WithDuration(d).
		WithExecuteMode(true)
	if err != nil {
		event.WithError(err)
	} else {
		event.WithSuccess()
	}
	if logErr := audit.Log(event); logErr != nil {
		util.Warnf("Could not record %s in audit log: %v", op, logErr)
	}
}

// sshPassword returns --ssh-pass, prompting on a terminal when it is empty.
func sshPassword() (string, error) {
	if publishSSHPass != "" {
		return publishSSHPass, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("--ssh-pass required when stdin is not a terminal")
	}
	fmt.Fprintf(os.Stderr, "%s@%s password: ", publishSSHUser, publishSSHHost)
	pass, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pass), nil
}

func init() {
	publishCmd.Flags().StringVar(&publishRedis, "redis", "", "CONFIG_DB Redis address (host:port)")
	publishCmd.Flags().StringArrayVar(&publishSelect, "select", nil, "Profile selection as port=profile (repeatable)")
	publishCmd.Flags().StringVar(&publishSSHHost, "ssh-host", "", "Reach Redis through an SSH tunnel to this switch")
	publishCmd.Flags().StringVar(&publishSSHUser, "ssh-user", "admin", "SSH user")
	publishCmd.Flags().StringVar(&publishSSHPass, "ssh-pass", "", "SSH password (prompted when empty)")
	publishCmd.Flags().BoolVarP(&publishExecute, "execute", "x", false, "Execute changes (default is dry-run)")
	publishCmd.Flags().BoolVar(&publishPrune, "prune", false, "Delete PORT entries the selection does not derive")
	publishCmd.Flags().IntVar(&publishLanes, "lanes-per-core", 0, "SerDes lanes per NPU core (default from settings, else 8)")
	publishCmd.Flags().DurationVar(&publishTimeout, "timeout", 30*time.Second, "Timeout for CONFIG_DB operations")
}
