package command

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/r-Techsupport/turingbot/internal/engine"
)

const (
	maxDice  = 100
	maxSides = 1000
)

// RegisterRoll registers the dice roller.
func RegisterRoll(t *engine.Tree) error {
	return t.Register(engine.NewNode(engine.NodeSpec{
		Name:        "roll",
		Description: "Roll dice in NdM notation, e.g. 2d6",
		Options: []engine.Option{
			{Name: "dice", Description: "Dice to roll (NdM)", Type: engine.OptionString, Required: false},
		},
		Execute: func(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
			notation := "1d6"
			if len(inv.Args) > 0 {
				notation = inv.Args[0]
			}
			count, sides, err := parseDice(notation)
			if err != nil {
				return &engine.Response{Content: err.Error(), Ephemeral: true}, nil
			}

			rolls := make([]string, count)
			total := 0
			for i := 0; i < count; i++ {
				n := rand.Intn(sides) + 1
				total += n
				rolls[i] = strconv.Itoa(n)
			}
			if count == 1 {
				return &engine.Response{Content: fmt.Sprintf("🎲 %s → **%d**", notation, total)}, nil
			}
			return &engine.Response{
				Content: fmt.Sprintf("🎲 %s → %s = **%d**", notation, strings.Join(rolls, " + "), total),
			}, nil
		},
	}))
}

func parseDice(notation string) (count, sides int, err error) {
	parts := strings.SplitN(strings.ToLower(notation), "d", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("can't read `%s`, expected NdM like 2d6", notation)
	}
	count, err = strconv.Atoi(parts[0])
	if err != nil || count < 1 || count > maxDice {
		return 0, 0, fmt.Errorf("dice count must be 1-%d", maxDice)
	}
	sides, err = strconv.Atoi(parts[1])
	if err != nil || sides < 2 || sides > maxSides {
		return 0, 0, fmt.Errorf("sides must be 2-%d", maxSides)
	}
	return count, sides, nil
}
