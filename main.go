package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/frans1705/genieacs-mikrotik/internal/api"
	"github.com/frans1705/genieacs-mikrotik/internal/cfg"
	"github.com/frans1705/genieacs-mikrotik/internal/commands"
	"github.com/frans1705/genieacs-mikrotik/internal/genieacs"
	"github.com/frans1705/genieacs-mikrotik/internal/logger"
	"github.com/frans1705/genieacs-mikrotik/internal/metrics"
	"github.com/frans1705/genieacs-mikrotik/internal/mikrotik"
	"github.com/frans1705/genieacs-mikrotik/internal/optical"
	"github.com/frans1705/genieacs-mikrotik/internal/pppoe"
	"github.com/frans1705/genieacs-mikrotik/internal/server"
	"github.com/frans1705/genieacs-mikrotik/internal/version"
	"github.com/frans1705/genieacs-mikrotik/internal/wa"
)

const (
	settingsPath = "settings.json"
	logDir       = "logs"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := server.EnsureDirs(logDir); err == nil {
		if f, err := os.OpenFile(filepath.Join(logDir, "app.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			defer f.Close()
			logger.SetOutput(f)
		}
	}
	log := logger.ComponentLogger("main")

	loader := cfg.NewLoader(settingsPath)
	s := loader.Get()
	logger.SetLogLevel(s.LogLevel)
	log.Info().Str("version", version.GetVersion()).Str("env", s.Environment).Msg("starting")

	if err := server.EnsureDirs(s.WhatsAppSessionPath); err != nil {
		log.Fatal().Err(err).Msg("cannot create session directory")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := metrics.New()

	acs := genieacs.NewClient(genieacs.Config{
		URL:      s.GenieACSURL,
		Username: s.GenieACSUsername,
		Password: s.GenieACSPassword,
	})
	acs.OnRequest = collector.ObserveGateway

	status := wa.NewStatusHolder()
	waClient := wa.NewClient(wa.Options{
		SessionPath:    s.WhatsAppSessionPath,
		QRPath:         filepath.Join(logDir, "wa-qrcode.png"),
		RestartOnError: s.WhatsAppRestartOnError,
		ReconnectDelay: s.ReconnectDelay(),
		MaxRetries:     s.ReconnectRetries(),
	}, status)

	dispatcher := commands.NewDispatcher(acs, loader.Get)
	dispatcher.Observer = collector

	handlers := &api.Handlers{
		Settings: loader,
		Devices:  acs,
		Status:   status,
		WhatsApp: waClient,
		Metrics:  collector.Handler(),
	}

	var monitor *pppoe.Monitor
	if s.MikrotikConfigured() {
		router := mikrotik.NewClient(mikrotik.Config{
			Host:     s.MikrotikHost,
			Port:     s.MikrotikPort,
			User:     s.MikrotikUser,
			Password: s.MikrotikPassword,
		})
		monitor = pppoe.NewMonitor(router, s.PPPoEInterval(), func() []string { return loader.Get().StaffNumbers() })
		monitor.Header = s.CompanyHeader
		monitor.Footer = s.FooterInfo
		monitor.Observer = collector
		dispatcher.PPPoE = monitor
		dispatcher.Router = router
		handlers.PPPoE = monitor
	} else {
		log.Info().Msg("mikrotik not configured, pppoe monitor disabled")
	}

	if olts, err := cfg.NewOltLoader(s.OLTConfigPath); err == nil {
		warning, critical := s.RxThresholds()
		handlers.Optical = optical.NewProbe(olts, warning, critical)
		go func() {
			if err := olts.Watch(ctx); err != nil {
				log.Error().Err(err).Msg("olt config watch stopped")
			}
		}()
	} else {
		log.Info().Str("path", s.OLTConfigPath).Msg("olt profile not loaded, optical probe disabled")
	}

	hub := api.NewStatusHub(status)
	launcher := server.NewLauncher("", s.PortNumber(), api.NewRouter(handlers, hub))
	port, err := launcher.Listen()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
	loader.SetPort(port)
	log.Info().Str("url", "http://"+s.Host+":"+loader.Get().Port+"/admin/").Msg("admin panel ready")

	go hub.Run(ctx)
	go watchWhatsApp(ctx, status, collector)
	if s.SettingsHotReload {
		go func() {
			if err := loader.Watch(ctx); err != nil {
				log.Error().Err(err).Msg("settings watch stopped")
			}
		}()
	}

	waClient.SetHandler(dispatcher.Handle)
	waClient.OnConnected(func() {
		if monitor != nil {
			monitor.SetMessenger(waClient)
		}
	})
	go func() {
		if err := waClient.Start(ctx); err != nil {
			log.Error().Err(err).Msg("whatsapp start failed")
		}
	}()

	if monitor != nil {
		go monitor.Run(ctx)
	}

	if err := launcher.Serve(ctx); err != nil {
		log.Error().Err(err).Msg("server error")
	}
	log.Info().Msg("stopped")
}

// watchWhatsApp mirrors the session state into the connected gauge.
func watchWhatsApp(ctx context.Context, status *wa.StatusHolder, collector *metrics.Collector) {
	updates, cancel := status.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case st := <-updates:
			collector.SetWhatsAppConnected(st.Connected)
		}
	}
}
