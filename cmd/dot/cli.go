package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dotlovesyou/dot/pkg/logger"
	"github.com/dotlovesyou/dot/pkg/soul"
	"github.com/spf13/cobra"
)

func buildRootCommand() *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:   "dot",
		Short: "A curious ladybug with a genuine soul",
		Long: strings.TrimSpace(`dot is a persona-driven soul engine.

It perceives messages, reflections, and experiences; routes each through
its current mental process; remembers what matters; and speaks in character.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion()
				return nil
			}
			_ = cmd.Help()
			return fmt.Errorf("a subcommand is required")
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "Show build/version metadata")

	root.AddCommand(newOnboardCommand())
	root.AddCommand(newChatCommand())
	root.AddCommand(newPerceiveCommand())
	root.AddCommand(newMemoriesCommand())
	root.AddCommand(newGatewayCommand())
	root.AddCommand(newVersionCommand())

	return root
}

func newOnboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "onboard",
		Short:   "Initialize ~/.dot configuration",
		Example: "  dot onboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return onboard()
		},
	}
}

func newChatCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk with the soul interactively",
		Long: strings.TrimSpace(`Run an interactive session. Plain lines become user_message perceptions.

Commands inside the session:
  /mode <mode> [reason]   transition the mental process
  /remember <text>        feed an experience perception
  /reflect [text]         feed a self_reflection perception
  /memories               list everything remembered
  exit                    leave`),
		Example: "  dot chat --debug",
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				logger.SetLevel(logger.DEBUG)
			}
			rt, err := openApp()
			if err != nil {
				return err
			}
			defer rt.Close()
			return chatLoop(rt)
		},
	}
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	return cmd
}

func newPerceiveCommand() *cobra.Command {
	var (
		perceptionType string
		mode           string
		bestEffort     bool
	)

	cmd := &cobra.Command{
		Use:   "perceive <content>",
		Short: "Feed one perception and print the resulting action",
		Example: strings.Join([]string{
			`  dot perceive "hello there"`,
			`  dot perceive --type experience "met a new friend"`,
			`  dot perceive --type self_reflection --mode contemplating "who am I?"`,
		}, "\n"),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openApp()
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := context.Background()
			p := soul.Perception{
				Type:       soul.PerceptionType(perceptionType),
				Content:    args[0],
				BestEffort: bestEffort || rt.Config.Soul.BestEffortMemory,
			}

			var result soul.ActionResult
			if mode == "" {
				result, err = rt.Engine.Perceive(ctx, p)
			} else {
				parsed, parseErr := soul.ParseMode(mode)
				if parseErr != nil {
					return parseErr
				}
				result, err = rt.Engine.ProcessPerception(ctx, parsed, p)
			}
			if err != nil {
				return err
			}

			fmt.Printf("[%s] %s\n", result.Kind, result.Text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&perceptionType, "type", "t", string(soul.PerceptionUserMessage), "Perception type")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Mental mode to process under (default: current)")
	cmd.Flags().BoolVar(&bestEffort, "best-effort", false, "Degrade instead of failing when memory append fails (also via soul.best_effort_memory)")
	return cmd
}

func newMemoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "memories",
		Short:   "List everything the soul remembers, oldest first",
		Example: "  dot memories",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openApp()
			if err != nil {
				return err
			}
			defer rt.Close()
			return printMemories(rt)
		},
	}
}

func newGatewayCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:     "gateway",
		Short:   "Run the Discord gateway and reflection scheduler",
		Example: "  dot gateway --debug",
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				logger.SetLevel(logger.DEBUG)
			}
			return runGateway()
		},
	}
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion()
		},
	}
}

func printMemories(rt *app) error {
	cursor, err := rt.Engine.Memories(context.Background())
	if err != nil {
		return err
	}
	defer cursor.Close()

	count := 0
	for cursor.Next() {
		rec := cursor.Record()
		fmt.Printf("%s  %s\n", rec.CreatedAt.Format("2006-01-02 15:04"), rec.Content)
		count++
	}
	if err := cursor.Err(); err != nil {
		return err
	}
	if count == 0 {
		fmt.Printf("%s has no memories yet.\n", rt.Engine.Identity().Name)
	}
	return nil
}
