// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package config loads tkeyd's on-disk configuration: a single -C/--configfile
// flag naming an INI file, whose [core], [blockchain], and [addresses]
// sections are parsed with a flags.IniParser and whose dynamically named
// [transports.<name>] sections are scanned by hand, since a name chosen by
// the operator can't be bound to a struct field ahead of time.
package config

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	flags "github.com/jessevdk/go-flags"
)

// defaultConfigFile is used when -C/--configfile is not given.
const defaultConfigFile = "tkeyd.conf"

// minWorkers is the floor core.workers is clamped to, matching the daemon's
// own refusal to run with fewer than two worker threads.
const minWorkers = 2

// CoreConfig holds the [core] section: the worker pool size, process
// timezone, and the name reported to the OS (visible in `ps`, syslog tags).
type CoreConfig struct {
	Workers     string `long:"workers" ini-name:"workers" default:"auto" description:"Worker pool size: \"auto\" or an integer >= 2"`
	TimeZone    string `long:"timezone" ini-name:"timeZone" description:"TZ database name applied to the process environment"`
	ProcessName string `long:"processname" ini-name:"processName" description:"Process name reported to the OS"`
}

// ResolvedWorkers interprets Workers, defaulting "auto" to the greater of 2
// and the number of logical CPUs. Returns an error if an explicit integer
// is given below minWorkers.
func (c CoreConfig) ResolvedWorkers() (int, error) {
	if strings.EqualFold(c.Workers, "auto") || c.Workers == "" {
		if n := runtime.NumCPU(); n > minWorkers {
			return n, nil
		}
		return minWorkers, nil
	}
	n, err := strconv.Atoi(c.Workers)
	if err != nil {
		return 0, fmt.Errorf("core.workers: %q is neither \"auto\" nor an integer: %w", c.Workers, err)
	}
	if n < minWorkers {
		return 0, fmt.Errorf("core.workers: %d is below the minimum of %d", n, minWorkers)
	}
	return n, nil
}

// BlockchainConfig holds the [blockchain] section.
type BlockchainConfig struct {
	Mempool string `long:"mempool" ini-name:"mempool" description:"Path to the persisted header/transaction store"`
	Genesis string `long:"genesis" ini-name:"genesis" description:"Hex-encoded genesis block hash this node is chained to"`
}

// AddressConfig holds the [addresses] section.
type AddressConfig struct {
	Path             string `long:"addresses-path" ini-name:"path" description:"Path to the persisted peer address store"`
	StorageTime      int64  `long:"addresses-storage-time" ini-name:"storageTime" default:"259200" description:"Seconds an address entry is kept before eviction"`
	AddressCapacity  int    `long:"address-capacity" ini-name:"addressCapacity" default:"20000" description:"Maximum known addresses retained"`
	BannedCapacity   int    `long:"banned-capacity" ini-name:"bannedCapacity" default:"5000" description:"Maximum banned addresses retained"`
}

// TransportConfig describes one entry under [transports.<name>]: the
// listener type (registered the way TransportFactory dispatches by
// type string), bind address, and whether TLS is required.
type TransportConfig struct {
	Name   string
	Type   string
	Host   string
	Port   uint16
	Secure bool
}

// Config is tkeyd's fully loaded, validated configuration.
type Config struct {
	ConfigFile string `short:"C" long:"configfile" description:"Path to configuration file" default:"tkeyd.conf"`
	Logs       string `long:"logs" ini-name:"logs" description:"Path to the log output directory"`

	Core       CoreConfig       `group:"Core Options" namespace:"core"`
	Blockchain BlockchainConfig `group:"Blockchain Options" namespace:"blockchain"`
	Addresses  AddressConfig    `group:"Address Options" namespace:"addresses"`

	Transports map[string]TransportConfig `no-ini:"true"`
}

// Load parses CLI arguments for -C/--configfile, then loads that INI file's
// recognized sections into a validated Config. A missing config file is not
// an error: every field keeps its flag default and args-only overrides.
func Load(args []string) (*Config, error) {
	cfg := &Config{ConfigFile: defaultConfigFile}

	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if cfg.ConfigFile != "" {
		if _, err := os.Stat(cfg.ConfigFile); err == nil {
			iniParser := flags.NewIniParser(parser)
			if err := iniParser.ParseFile(cfg.ConfigFile); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", cfg.ConfigFile, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat %s: %w", cfg.ConfigFile, err)
		}

		transports, err := scanTransportSections(cfg.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("scanning transports in %s: %w", cfg.ConfigFile, err)
		}
		cfg.Transports = transports
	}

	if _, err := cfg.Core.ResolvedWorkers(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// scanTransportSections reads path line by line, collecting every
// [transports.<name>] section's type/host/port/secure keys into a
// TransportConfig. go-flags' IniParser has no way to bind a section whose
// name is only known at load time, so this is done by hand rather than
// through the library the rest of Config is loaded with.
func scanTransportSections(path string) (map[string]TransportConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	transports := make(map[string]TransportConfig)
	var current string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section := strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			if !strings.HasPrefix(section, "transports.") {
				current = ""
				continue
			}
			name := strings.TrimPrefix(section, "transports.")
			current = name
			if _, exists := transports[name]; !exists {
				transports[name] = TransportConfig{Name: name}
			}
			continue
		}

		if current == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"`)

		t := transports[current]
		switch key {
		case "type":
			t.Type = value
		case "host":
			t.Host = value
		case "port":
			port, err := strconv.ParseUint(value, 10, 16)
			if err != nil {
				return nil, fmt.Errorf("transports.%s.port: %w", current, err)
			}
			t.Port = uint16(port)
		case "secure":
			secure, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("transports.%s.secure: %w", current, err)
			}
			t.Secure = secure
		}
		transports[current] = t
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return transports, nil
}
