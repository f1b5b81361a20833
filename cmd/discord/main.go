package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/r-Techsupport/turingbot/internal/command"
	"github.com/r-Techsupport/turingbot/internal/config"
	"github.com/r-Techsupport/turingbot/internal/discord"
	"github.com/r-Techsupport/turingbot/internal/engine"
	"github.com/r-Techsupport/turingbot/internal/storage"
	v "github.com/r-Techsupport/turingbot/internal/version"
)

func main() {
	log.Printf("[INFO] Starting %s %s...", v.AppName, v.Version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New(true)
	if err != nil {
		log.Fatal(err)
	}

	modules, err := config.LoadModules(cfg.ModulesPath)
	if err != nil {
		log.Fatal(err)
	}

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	tree, err := command.BuildTree(modules, command.Services{
		OpenStore:     func(context.Context) (*storage.Storage, error) { return store, nil },
		DictionaryURL: cfg.DictionaryURL,
	}, log.Default())
	if err != nil {
		log.Fatal(err)
	}

	dispatcher := engine.NewDispatcher(tree, log.Default(), cfg.ExecTimeout)
	dispatcher.SetRecorder(store)

	bot := discord.NewBot(cfg, dispatcher)

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...", s)
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Println("[ERR] Discord bot error:", err)
		}
		cancel()
	case <-ctx.Done():
	}

	log.Println("[INFO] Bot exited cleanly")
}
