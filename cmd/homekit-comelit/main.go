package main

import (
	"context"
	_ "embed"
	"errors"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/brutella/hap"
	"github.com/brutella/hap/accessory"
	"github.com/caarlos0/env/v11"
	client "github.com/caarlos0/homekit-comelit"
	logp "github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed index.html
var index []byte

var log = logp.NewWithOptions(os.Stderr, logp.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Prefix:          "homekit",
})

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const manufacturer = "Comelit"

func main() {
	log.Info(
		"homekit-comelit",
		"version", version,
		"commit", commit,
		"date", date,
		"info", "Homekit bridge for Comelit VEDO alarm zones",
	)

	if err := loadDotEnv(".env"); err != nil {
		log.Fatal("could not load .env", "err", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatal(
			"could not parse env",
			"err",
			strings.TrimPrefix(strings.ReplaceAll(err.Error(), "; ", "\n"), "env: ")+"\n",
		)
	}
	if err := cfg.validate(); err != nil {
		log.Fatal("invalid config", "err", err)
	}

	cli, err := client.New(cfg.Host, cfg.vedoPort(), cfg.VedoPIN)
	if err != nil {
		log.Fatal("could not init comelit client", "err", err)
	}

	serial := cfg.entryID()
	macAddr, err := client.MacAddress(cfg.Host)
	if err != nil {
		log.Warn(
			"could not get the mac address, needs 'cap_net_raw+ep' capabilities",
			"err", err,
		)
	} else {
		serial = macAddr
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	coordinator := NewCoordinator(cfg, cli, serial)
	if coordinator.VedoPIN() != "" {
		if err := coordinator.Refresh(ctx); err != nil {
			log.Fatal("could not get alarm data", "err", err)
		}
	}

	log.Info(
		"got alarm system information",
		"type", cfg.kind(),
		"entry", cfg.entryID(),
		"serial", serial,
	)

	entry := &Entry{
		ID:          cfg.entryID(),
		Type:        cfg.kind(),
		Coordinator: coordinator,
	}
	platform := &hapPlatform{}
	setupPresenceSensors(entry, platform)
	defer platform.Close()
	defer entry.Unload()

	bridge := accessory.NewBridge(accessory.Info{
		Name:         "Comelit Bridge",
		SerialNumber: serial,
		Manufacturer: manufacturer,
		Firmware:     version,
	})

	fs := hap.NewFsStore(cfg.DB)
	server, err := hap.NewServer(fs, bridge.A, platform.Start()...)
	if err != nil {
		log.Fatal("fail to create server", "error", err)
	}
	server.Addr = cfg.Address
	server.ServeMux().Handle("/metrics", promhttp.Handler())
	server.ServeMux().Handle("/", statusPage(platform))

	if coordinator.VedoPIN() != "" {
		go coordinator.Run(ctx, cfg.Interval)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	signal.Notify(c, syscall.SIGTERM)
	go func() {
		<-c
		log.Info("stopping server")
		signal.Stop(c)
		cancel()
	}()

	log.Info("starting server", "addr", server.Addr)
	if err := server.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("failed to close server", "err", err)
	}

	logoutCtx, logoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer logoutCancel()
	if err := cli.Logout(logoutCtx); err != nil {
		log.Error("could not logout", "err", err)
	}
}

// loadDotEnv loads environment variables from path, if it exists.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func statusPage(platform *hapPlatform) http.Handler {
	tpl := template.Must(template.New("index").Parse(string(index)))
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		var items []PageItem
		for _, sensor := range platform.Sensors() {
			items = append(items, PageItem{
				Number:    sensor.zoneIndex + 1,
				Name:      sensor.Name(),
				UniqueID:  sensor.UniqueID(),
				Presence:  sensor.Motion.MotionDetected.Value(),
				Available: sensor.Active.Value(),
			})
		}
		_ = tpl.Execute(w, struct {
			Zones []PageItem
		}{
			Zones: items,
		})
	})
}

func boolAs[T int | float64](b bool) T {
	if b {
		return 1
	}
	return 0
}

type PageItem struct {
	Number    int
	Name      string
	UniqueID  string
	Presence  bool
	Available bool
}
