package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/interactkit/internal/command"
	"github.com/keshon/interactkit/internal/config"
	"github.com/keshon/interactkit/internal/discord"
	"github.com/keshon/interactkit/internal/storage"
	"github.com/keshon/interactkit/internal/version"
	"github.com/keshon/interactkit/pkg/interact"
)

func main() {
	log.Printf("[INFO] Starting %s (%s)...", version.AppFullName, version.Version)

	cfg, err := config.New()
	if err != nil {
		log.Fatalln("[ERR] Failed to load config:", err)
	}

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatalln("[ERR] Failed to open storage:", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Println("[WARN] Failed to close storage:", err)
		}
	}()

	// The interactive engine only exists once the gateway session opens, so
	// the command tree gets it through a getter.
	var bot *discord.Bot
	dispatcher, err := command.Setup(command.Deps{
		Store:  store,
		Engine: func() *interact.Engine { return bot.Engine() },
	})
	if err != nil {
		log.Fatalln("[ERR] Failed to build command tree:", err)
	}
	bot = discord.NewBot(cfg, store, dispatcher)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bot.Run(ctx); err != nil {
		log.Fatalln("[ERR] Bot stopped with error:", err)
	}
	log.Println("[DONE] Shutdown complete.")
}
