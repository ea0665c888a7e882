package portdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/newtron-network/lanemap/pkg/util"
)

// ConfigDB is the CONFIG_DB database index in SONiC's Redis.
const ConfigDB = 4

// ConfigDBClient reads and writes PORT entries in CONFIG_DB.
type ConfigDBClient struct {
	addr      string
	client    *redis.Client
	connected bool
}

// NewConfigDBClient creates a client for the Redis at addr. No connection is
// made until Ping.
func NewConfigDBClient(addr string) *ConfigDBClient {
	return &ConfigDBClient{
		addr: addr,
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   ConfigDB,
		}),
	}
}

// Addr returns the Redis address.
func (c *ConfigDBClient) Addr() string { return c.addr }

// Ping tests the connection. Other methods fail until Ping succeeds.
func (c *ConfigDBClient) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connecting to config_db at %s: %w", c.addr, err)
	}
	c.connected = true
	return nil
}

// Close closes the connection
func (c *ConfigDBClient) Close() error {
	c.connected = false
	return c.client.Close()
}

func (c *ConfigDBClient) require(op string) error {
	if !c.connected {
		return util.NewNotConnectedError(op, "config_db "+c.addr)
	}
	return nil
}

// ReadPorts returns every PORT entry keyed by port name.
func (c *ConfigDBClient) ReadPorts(ctx context.Context) (map[string]PortEntry, error) {
	if err := c.require("read ports"); err != nil {
		return nil, err
	}
	keys, err := c.client.Keys(ctx, PortTable+"|*").Result()
	if err != nil {
		return nil, err
	}
	ports := make(map[string]PortEntry, len(keys))
	for _, key := range keys {
		parts := strings.SplitN(key, "|", 2)
		if len(parts) < 2 {
			continue
		}
		vals, err := c.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
		ports[parts[1]] = portEntryFromFields(vals)
	}
	return ports, nil
}

// WritePorts writes entries in one pipeline. Existing fields not set by an
// entry are left in place.
func (c *ConfigDBClient) WritePorts(ctx context.Context, entries map[string]PortEntry) error {
	if err := c.require("write ports"); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for name, e := range entries {
			fields := e.Fields()
			args := make([]interface{}, 0, len(fields)*2)
			for k, v := range fields {
				args = append(args, k, v)
			}
			pipe.HSet(ctx, PortTable+"|"+name, args...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing %d PORT entries: %w", len(entries), err)
	}
	util.WithField("count", len(entries)).Info("PORT entries written")
	return nil
}

// DeletePorts removes the named PORT entries in one call.
func (c *ConfigDBClient) DeletePorts(ctx context.Context, names []string) error {
	if err := c.require("delete ports"); err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = PortTable + "|" + name
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("deleting %d PORT entries: %w", len(names), err)
	}
	util.WithField("count", len(names)).Info("PORT entries deleted")
	return nil
}

// Diff returns the entries that differ from what CONFIG_DB holds. With
// prune, stored entries absent from entries are returned as removals after
// the writes.
func (c *ConfigDBClient) Diff(ctx context.Context, entries map[string]PortEntry, prune bool) ([]Change, error) {
	current, err := c.ReadPorts(ctx)
	if err != nil {
		return nil, err
	}
	changes := DiffEntries(current, entries)
	if prune {
		changes = append(changes, StaleEntries(current, entries)...)
	}
	return changes, nil
}
