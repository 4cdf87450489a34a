// Command mcserver runs the protocol-765 connection core: framed
// transport, handshake/status/login/configuration/play state machine, and
// NBT codec, wired to a file-backed world provider.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"mcserver765/internal/config"
	"mcserver765/internal/server"
	"mcserver765/internal/worldprovider"
)

func main() {
	configPath := flag.String("config", "server.yaml", "path to the server configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	world, err := worldprovider.NewFileProvider(cfg.WorldDataDir)
	if err != nil {
		log.Fatal("could not load world data: ", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := server.New(cfg, world)
	if err := srv.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
