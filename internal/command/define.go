package command

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/r-Techsupport/turingbot/internal/engine"
	"github.com/r-Techsupport/turingbot/pkg/retrylimit"
)

// dictionaryEntry is the slice element shape of the dictionaryapi.dev payload.
type dictionaryEntry struct {
	Word     string `json:"word"`
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string `json:"definition"`
		} `json:"definitions"`
	} `json:"meanings"`
}

// RegisterDefine registers the dictionary lookup root. Its dependency probes
// the API once at startup, retrying transient failures with backoff before
// declaring the terminal failure the engine caches.
func RegisterDefine(t *engine.Tree, client *http.Client, baseURL string) error {
	limiter := retrylimit.NewAdaptiveLimiter(2, 1, 5, 1, 0.5)

	api := engine.NewDependency("dictionary-api", func(ctx context.Context) (any, error) {
		err := retrylimit.WithRetryMax(ctx, func() error {
			return probeDictionary(ctx, client, baseURL)
		}, limiter, 3)
		if err != nil {
			return nil, err
		}
		return client, nil
	})

	return t.Register(engine.NewNode(engine.NodeSpec{
		Name:        "define",
		Description: "Look up a word in the dictionary",
		Options: []engine.Option{
			{Name: "word", Description: "Word to define", Type: engine.OptionString, Required: true},
		},
		Deps: []*engine.Dependency{api},
		Execute: func(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
			if len(inv.Args) < 1 {
				return &engine.Response{Content: "usage: define <word>", Ephemeral: true}, nil
			}
			word := inv.Args[0]
			entries, err := lookupWord(ctx, client, baseURL, word)
			if err != nil {
				return nil, err
			}
			if len(entries) == 0 {
				return &engine.Response{Content: fmt.Sprintf("No definition found for `%s`.", word), Ephemeral: true}, nil
			}
			return &engine.Response{Content: formatEntry(entries[0])}, nil
		},
	}))
}

func probeDictionary(ctx context.Context, client *http.Client, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/hello", nil)
	if err != nil {
		return &retrylimit.FatalError{Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("dictionary API returned %s", resp.Status)
	}
	return nil
}

func lookupWord(ctx context.Context, client *http.Client, baseURL, word string) ([]dictionaryEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/"+url.PathEscape(word), nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dictionary API returned %s", resp.Status)
	}
	var entries []dictionaryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode dictionary response: %w", err)
	}
	return entries, nil
}

func formatEntry(e dictionaryEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n", e.Word)
	for _, m := range e.Meanings {
		for i, d := range m.Definitions {
			if i >= 2 {
				break
			}
			fmt.Fprintf(&b, "_%s_: %s\n", m.PartOfSpeech, d.Definition)
		}
	}
	return b.String()
}
