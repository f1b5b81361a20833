// A local dispatcher loop for poking the command tree without Discord.
// Reads one command per line from stdin; the synthetic request context grants
// every capability listed in CLI_CAPABILITIES (comma-separated).
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/r-Techsupport/turingbot/internal/command"
	"github.com/r-Techsupport/turingbot/internal/config"
	"github.com/r-Techsupport/turingbot/internal/engine"
	"github.com/r-Techsupport/turingbot/internal/storage"
)

func main() {
	cfg, err := config.New(false)
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

	ctx := context.Background()
	dispatcher := engine.NewDispatcher(tree, log.Default(), cfg.ExecTimeout)
	dispatcher.InitializeAll(ctx)

	rc := &engine.RequestContext{
		UserID:       "cli",
		ChannelID:    "cli",
		Capabilities: map[string]bool{},
	}
	for _, tag := range strings.Split(os.Getenv("CLI_CAPABILITIES"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			rc.Capabilities[tag] = true
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		tokens := strings.Fields(scanner.Text())
		if resp := dispatcher.Handle(ctx, tokens, rc, nil); resp != nil {
			fmt.Println(resp.Content)
		}
		fmt.Print("> ")
	}
}
