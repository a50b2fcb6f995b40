package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/viant/asyncweb"
)

func main() {
	configURL := flag.String("config", "", "config URL (local path, mem://, http(s)://, ...)")
	port := flag.Int("port", 0, "listen port, overrides config")
	envFile := flag.String("env", ".env", "dotenv file loaded before the config")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if err := run(*configURL, *port, *envFile); err != nil {
		log.Fatalf("[asyncweb] %v", err)
	}
}

func run(configURL string, port int, envFile string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := asyncweb.DefaultConfig()
	if configURL != "" {
		loaded, err := asyncweb.LoadConfig(ctx, configURL)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	srv, err := asyncweb.New(asyncweb.WithConfig(cfg))
	if err != nil {
		return err
	}
	if err = srv.Start(ctx); err != nil {
		return err
	}
	log.Printf("[asyncweb] started on %v", cfg.Addr())

	<-ctx.Done()
	log.Printf("[asyncweb] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
