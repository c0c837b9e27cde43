package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fjkorf/upkick/server"
)

// upkick entry point: wires the registry, scheduler and gateway together and
// serves the WebSocket endpoint plus the static client.
func main() {
	var addr, cfgPath string
	flag.StringVar(&cfgPath, "config", "upkick.toml", "path to TOML config file")
	flag.StringVar(&addr, "addr", "", "listen address override, e.g. :3000")
	flag.Parse()

	cfg, err := server.LoadConfig(cfgPath)
	if err != nil {
		panic(err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	if err := server.InitLogger(cfg.Server.LogFile, cfg.Server.LogLevel); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	metrics := server.NewMetrics()
	registry := server.NewRegistry()
	scheduler := server.NewScheduler(registry, metrics, cfg.Countdown(), cfg.RoundReset())
	gateway := server.NewGateway(registry, scheduler, metrics)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gateway.HandleWS)
	mux.Handle("/", http.FileServer(http.Dir(cfg.Server.StaticDir)))
	mux.HandleFunc("/admin/rooms", gateway.HandleAdminRooms)
	mux.HandleFunc("/metrics", gateway.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

	go func() {
		server.Log.Infof("upkick listening on %s; open http://localhost%v/", cfg.Server.Addr, cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// Graceful exit (Ctrl+C).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")
}
