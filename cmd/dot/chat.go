package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dotlovesyou/dot/pkg/soul"
)

func chatLoop(rt *app) error {
	name := rt.Engine.Identity().Name
	fmt.Printf("%s is listening. Mental process: %s. (exit to leave, /mode /remember /reflect /memories)\n\n",
		name, rt.Engine.Mode())

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "You: ",
		HistoryFile:     filepath.Join(os.TempDir(), ".dot_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("initialize readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nGoodbye!")
				return nil
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Goodbye!")
			return nil
		}

		if strings.HasPrefix(input, "/") {
			handleChatCommand(rt, input)
			continue
		}

		ctx := context.Background()
		result, err := rt.Engine.Perceive(ctx, soul.Perception{
			Type:    soul.PerceptionUserMessage,
			Content: input,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		fmt.Printf("\n%s: %s\n\n", name, result.Text)
	}
}

func handleChatCommand(rt *app, input string) {
	ctx := context.Background()
	fields := strings.Fields(input)
	cmd, rest := fields[0], strings.TrimSpace(strings.TrimPrefix(input, fields[0]))

	switch cmd {
	case "/mode":
		if rest == "" {
			fmt.Printf("Current mode: %s (known: %v)\n", rt.Engine.Mode(), soul.Modes())
			return
		}
		parts := strings.SplitN(rest, " ", 2)
		reason := ""
		if len(parts) > 1 {
			reason = parts[1]
		}
		mode, err := rt.Engine.Transition(ctx, parts[0], reason)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("%s\n", soul.Gesture(mode, rt.Engine.Identity().Name))

	case "/remember":
		if rest == "" {
			fmt.Println("Usage: /remember <text>")
			return
		}
		result, err := rt.Engine.Perceive(ctx, rt.experiencePerception(rest))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("(thought) %s\n", result.Text)

	case "/reflect":
		if rest == "" {
			rest = "I'm taking a moment to reflect on who I am and what I want to become. What thoughts arise?"
		}
		result, err := rt.Engine.ProcessPerception(ctx, soul.ModeContemplating, soul.Perception{
			Type:    soul.PerceptionSelfReflection,
			Content: rest,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("(thought) %s\n", result.Text)

	case "/memories":
		if err := printMemories(rt); err != nil {
			fmt.Printf("Error: %v\n", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n", cmd)
	}
}
