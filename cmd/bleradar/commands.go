package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/muurk/bleradar/internal/config"
	"github.com/muurk/bleradar/internal/discovery"
	"github.com/muurk/bleradar/internal/logging"
	"github.com/muurk/bleradar/internal/publish"
	"github.com/muurk/bleradar/internal/radio"
	"github.com/muurk/bleradar/internal/scan"
	"github.com/muurk/bleradar/internal/server"
	"github.com/muurk/bleradar/internal/services"
	"github.com/muurk/bleradar/internal/ui"
	"github.com/muurk/bleradar/internal/vendor"
)

// Run command flags. Each overrides its configuration value when given.
var (
	dwell        time.Duration
	interval     time.Duration
	carryForward bool
	simulate     bool
	simSeed      int64
	vendorsPath  string
	servicesDir  string
	allowMissing bool
	outPath      string
	outFormat    string
	mqttBroker   string
	serve        bool
	servePort    int
	noAdvertise  bool
	watch        bool
	quiet        bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scan continuously and publish snapshots",
	Long: `Scan for Bluetooth Low Energy peripherals until interrupted.

Each cycle scans for the dwell time, collects every visible peripheral,
resolves vendors and service descriptions, ranks devices by signal strength
and publishes the snapshot to every configured sink. The loop pauses for the
interval between cycles.

Use --simulate to run without Bluetooth hardware.`,
	Example: `  # Scan with the configured settings, printing each snapshot
  bleradar run

  # Live view of a simulated radio
  bleradar run --simulate --watch

  # Short cycles, keep devices for one extra cycle, write JSON per adapter
  bleradar run --dwell 3s --interval 1s --carry-forward --out /tmp/{adapter}.json

  # Serve snapshots on :8765 and retain them on an MQTT broker
  bleradar run --serve --mqtt tcp://localhost:1883 --quiet`,
	RunE: runRun,
}

func init() {
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.DurationVar(&dwell, "dwell", 10*time.Second, "How long each scan collects advertisements")
	f.DurationVar(&interval, "interval", 5*time.Second, "Pause between scan cycles")
	f.BoolVar(&carryForward, "carry-forward", false, "Keep devices from the previous cycle that were not heard again")
	f.BoolVar(&simulate, "simulate", false, "Use a simulated radio instead of Bluetooth hardware")
	f.Int64Var(&simSeed, "seed", 1, "Random seed for --simulate")
	f.StringVar(&vendorsPath, "vendors", "", "Vendor prefix dataset file")
	f.StringVar(&servicesDir, "services", "", "Directory of service description files")
	f.BoolVar(&allowMissing, "allow-missing", false, "Start with empty tables when a dataset cannot be loaded")
	f.StringVar(&outPath, "out", "", "Write each snapshot to this file ({adapter} is replaced)")
	f.StringVar(&outFormat, "format", "json", "Snapshot file format (json, yaml)")
	f.StringVar(&mqttBroker, "mqtt", "", "MQTT broker URL, e.g. tcp://localhost:1883")
	f.BoolVar(&serve, "serve", false, "Serve snapshots over HTTP and WebSocket")
	f.IntVar(&servePort, "port", 8765, "HTTP port for --serve")
	f.BoolVar(&noAdvertise, "no-advertise", false, "Do not advertise the HTTP server via mDNS")
	f.BoolVar(&watch, "watch", false, "Show a live view instead of printing each snapshot")
	f.BoolVar(&quiet, "quiet", false, "Do not print snapshots to the terminal")
}

// applyRunFlags copies explicitly given flags over the configuration.
func applyRunFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if f.Changed("dwell") {
		c.Scan.Dwell = config.Duration(dwell)
	}
	if f.Changed("interval") {
		c.Scan.Interval = config.Duration(interval)
	}
	if f.Changed("carry-forward") {
		c.Scan.CarryForward = carryForward
	}
	if f.Changed("simulate") {
		c.Scan.Simulate = simulate
	}
	if f.Changed("seed") {
		c.Scan.Seed = simSeed
	}
	if f.Changed("vendors") {
		c.Datasets.Vendors = vendorsPath
	}
	if f.Changed("services") {
		c.Datasets.Services = servicesDir
	}
	if f.Changed("allow-missing") {
		c.Datasets.AllowMissing = allowMissing
	}
	if f.Changed("out") {
		c.Publish.File.Path = outPath
	}
	if f.Changed("format") {
		c.Publish.File.Format = outFormat
	}
	if f.Changed("mqtt") {
		c.Publish.MQTT.Broker = mqttBroker
	}
	if f.Changed("serve") {
		c.Publish.Server.Enabled = serve
	}
	if f.Changed("port") {
		c.Publish.Server.Port = servePort
	}
	if f.Changed("no-advertise") {
		c.Publish.Server.Advertise = !noAdvertise
	}
	if f.Changed("watch") {
		c.Publish.Console.Watch = watch
	}
	if f.Changed("quiet") && quiet {
		c.Publish.Console.Enabled = false
		c.Publish.Console.Watch = false
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	applyRunFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	vendors, svc, err := loadResolvers(cfg)
	if err != nil {
		return err
	}
	enricher := discovery.NewEnricher(vendors, svc)

	var transport radio.Transport = radio.NewBluetooth()
	if cfg.Scan.Simulate {
		transport = radio.NewDemo(cfg.Scan.Seed)
	}
	if err := checkAdapters(ctx, transport, cfg); err != nil {
		return err
	}

	sinks, err := buildSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer sinks.close()

	supervisor := scan.NewSupervisor(transport, enricher, sinks.publisher, scan.Options{
		Dwell:        cfg.Scan.Dwell.Std(),
		Interval:     cfg.Scan.Interval.Std(),
		CarryForward: cfg.Scan.CarryForward,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	if sinks.server != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sinks.server.Start(ctx); err != nil {
				errs <- err
				cancel()
			}
		}()
	}
	if sinks.watch != nil {
		// Quitting the view ends the run.
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer cancel()
			if err := sinks.watch.Run(); err != nil {
				errs <- err
			}
		}()
		go func() {
			<-ctx.Done()
			sinks.watch.Quit()
		}()
	}

	err = supervisor.Run(ctx)
	cancel()
	wg.Wait()
	close(errs)
	for e := range errs {
		err = multierr.Append(err, e)
	}
	return err
}

// checkAdapters validates the settings that depend on which adapters the
// transport offers.
func checkAdapters(ctx context.Context, transport radio.Transport, c *config.Config) error {
	adapters, err := transport.ListAdapters(ctx)
	if err != nil {
		return fmt.Errorf("failed to list adapters: %w", err)
	}
	ids := make([]string, len(adapters))
	for i, a := range adapters {
		ids[i] = a.ID()
	}
	if err := c.ValidateAdapters(ids); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// loadResolvers builds the vendor and service resolvers from the datasets.
func loadResolvers(c *config.Config) (vendor.Resolver, services.Resolver, error) {
	var chain vendor.Chain
	if path := c.Datasets.Vendors; path != "" {
		table, err := vendor.Load(path)
		if err != nil {
			if !c.Datasets.AllowMissing {
				return nil, nil, err
			}
			logging.Warn("Vendor dataset unavailable, continuing without it", zap.Error(err))
		} else {
			logging.Info("Vendor dataset loaded", zap.String("path", path), zap.Int("prefixes", table.Len()))
			chain = append(chain, table)
		}
	}
	if c.Datasets.BuiltinVendors {
		chain = append(chain, vendor.Builtin{})
	}

	idx := services.Empty()
	if dir := c.Datasets.Services; dir != "" {
		loaded, err := services.Load(dir)
		if err != nil {
			if !c.Datasets.AllowMissing {
				return nil, nil, err
			}
			logging.Warn("Service dataset unavailable, continuing without it", zap.Error(err))
		} else {
			idx = loaded
			logging.Info("Service dataset loaded", zap.String("dir", dir), zap.Int("files", len(idx.Files())))
		}
	}

	return chain, idx, nil
}

// sinkSet is the assembled publisher and the resources behind it.
type sinkSet struct {
	publisher publish.Publisher
	server    *server.Server
	watch     *ui.Watch
	closers   []func() error
}

func (s *sinkSet) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			logging.Warn("Error closing publisher", zap.Error(err))
		}
	}
}

// buildSinks creates every configured publisher. MQTT and the live view
// are wrapped in publish.Async.
func buildSinks(ctx context.Context, c *config.Config) (*sinkSet, error) {
	set := &sinkSet{}
	var multi publish.Multi

	if path := c.Publish.File.Path; path != "" {
		format, err := publish.ParseFormat(c.Publish.File.Format)
		if err != nil {
			return nil, err
		}
		multi = append(multi, publish.NewFile(path, format))
	}

	if m := c.Publish.MQTT; m.Broker != "" {
		client, err := publish.ConnectMQTT(publish.MQTTConfig{
			Broker:   m.Broker,
			ClientID: m.ClientID,
			Username: m.Username,
			Password: m.Password,
			Prefix:   m.Prefix,
			QoS:      byte(m.QoS),
		})
		if err != nil {
			set.close()
			return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", m.Broker, err)
		}
		async := publish.NewAsync(client)
		set.closers = append(set.closers, client.Close, async.Close)
		multi = append(multi, async)
	}

	if s := c.Publish.Server; s.Enabled {
		srv, err := server.New(&server.Config{
			Host:      s.Host,
			Port:      s.Port,
			CertPath:  s.CertPath,
			KeyPath:   s.KeyPath,
			Advertise: s.Advertise,
			Instance:  s.Instance,
		})
		if err != nil {
			set.close()
			return nil, err
		}
		set.server = srv
		multi = append(multi, srv)
	}

	switch {
	case c.Publish.Console.Watch:
		w := ui.NewWatch()
		async := publish.NewAsync(w)
		set.watch = w
		set.closers = append(set.closers, async.Close)
		multi = append(multi, async)
	case c.Publish.Console.Enabled:
		multi = append(multi, ui.NewConsole(os.Stdout))
	}

	if len(multi) == 0 {
		logging.Warn("No publishers configured; snapshots will be discarded")
	}
	set.publisher = multi
	return set, nil
}
