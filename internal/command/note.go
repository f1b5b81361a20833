package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/r-Techsupport/turingbot/internal/engine"
	"github.com/r-Techsupport/turingbot/internal/storage"
)

// RegisterNote registers the note root. Its single "store" dependency opens
// the persistence layer; every child is gated on it.
func RegisterNote(t *engine.Tree, open func(ctx context.Context) (*storage.Storage, error)) error {
	store := engine.NewDependency("store", func(ctx context.Context) (any, error) {
		return open(ctx)
	})

	note := engine.NewNode(engine.NodeSpec{
		Name:        "note",
		Description: "Personal notes",
		Deps:        []*engine.Dependency{store},
	})
	if err := t.Register(note); err != nil {
		return err
	}

	children := []*engine.Node{
		engine.NewNode(engine.NodeSpec{
			Name:        "add",
			Description: "Save a note",
			Options: []engine.Option{
				{Name: "text", Description: "Note text", Type: engine.OptionString, Required: true},
			},
			Execute: func(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
				s, err := noteStore(store)
				if err != nil {
					return nil, err
				}
				text := strings.Join(inv.Args, " ")
				if text == "" {
					return &engine.Response{Content: "usage: note add <text>", Ephemeral: true}, nil
				}
				n, err := s.AddNote(inv.Request.UserID, text)
				if err != nil {
					return nil, err
				}
				return &engine.Response{Content: fmt.Sprintf("Saved note #%d.", n), Ephemeral: true}, nil
			},
		}),
		engine.NewNode(engine.NodeSpec{
			Name:        "list",
			Description: "List your notes",
			Execute: func(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
				s, err := noteStore(store)
				if err != nil {
					return nil, err
				}
				notes, err := s.Notes(inv.Request.UserID)
				if err != nil {
					return nil, err
				}
				if len(notes) == 0 {
					return &engine.Response{Content: "You have no notes.", Ephemeral: true}, nil
				}
				var b strings.Builder
				for i, n := range notes {
					fmt.Fprintf(&b, "%d. %s\n", i+1, n.Text)
				}
				return &engine.Response{Content: b.String(), Ephemeral: true}, nil
			},
		}),
		engine.NewNode(engine.NodeSpec{
			Name:        "del",
			Description: "Delete a note by number",
			Options: []engine.Option{
				{Name: "number", Description: "Note number", Type: engine.OptionInteger, Required: true},
			},
			Execute: func(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
				s, err := noteStore(store)
				if err != nil {
					return nil, err
				}
				if len(inv.Args) < 1 {
					return &engine.Response{Content: "usage: note del <number>", Ephemeral: true}, nil
				}
				pos, err := strconv.Atoi(inv.Args[0])
				if err != nil {
					return &engine.Response{Content: "note number must be a number", Ephemeral: true}, nil
				}
				if err := s.DeleteNote(inv.Request.UserID, pos); err != nil {
					return &engine.Response{Content: err.Error(), Ephemeral: true}, nil
				}
				return &engine.Response{Content: fmt.Sprintf("Deleted note #%d.", pos), Ephemeral: true}, nil
			},
		}),
	}
	for _, child := range children {
		if err := t.RegisterChild(note, child); err != nil {
			return err
		}
	}
	return nil
}

// noteStore fetches the resolved storage from the store dependency. The
// dispatcher's dependency check has already confirmed it isn't failed.
func noteStore(dep *engine.Dependency) (*storage.Storage, error) {
	v, err := dep.Value()
	if err != nil {
		return nil, err
	}
	s, ok := v.(*storage.Storage)
	if !ok {
		return nil, fmt.Errorf("store dependency holds %T", v)
	}
	return s, nil
}
