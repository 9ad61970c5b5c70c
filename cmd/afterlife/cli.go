package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func executeCLI() error {
	return buildRootCommand().Execute()
}

func buildRootCommand() *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:   "afterlife",
		Short: "Persona response engine with HTTP gateway and Discord channel",
		Long: strings.TrimSpace(`afterlife serves configurable personas: it extracts biographical
insights from submitted text, assembles persona system prompts, answers
pinned questions verbatim, and falls back to templated contextual replies.

Use CLI commands to onboard, chat locally, run the gateway, manage
personas, and ingest biography text.`),
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
	root.AddCommand(newServeCommand())
	root.AddCommand(newPersonasCommand())
	root.AddCommand(newIngestCommand())
	root.AddCommand(newVersionCommand())

	return root
}

func newOnboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "onboard",
		Short:   "Initialize ~/.afterlife config and a sample persona",
		Long:    "Create the default configuration file and a starter persona YAML for a new installation.",
		Example: "  afterlife onboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return onboard()
		},
	}
}

func newChatCommand() *cobra.Command {
	var (
		message   string
		personaID string
		session   string
		debug     bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with a persona locally (REPL or one-shot)",
		Long:  "Run an interactive local chat session or send a one-shot message without the gateway.",
		Example: strings.Join([]string{
			"  afterlife chat",
			"  afterlife chat --persona james",
			"  afterlife chat --message \"What is LinkOps?\"",
		}, "\n"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				setDebugLogging()
			}
			return chatCmd(personaID, message, session)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "One-shot message to send")
	cmd.Flags().StringVarP(&personaID, "persona", "p", "", "Persona id (default from config)")
	cmd.Flags().StringVarP(&session, "session", "s", "cli:default", "Session key for history and insights")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	return cmd
}

func newServeCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP gateway and optional Discord channel",
		Long:    "Start the persona HTTP gateway, the Discord channel when a token is configured, and the scheduled persona cache refresher.",
		Example: "  afterlife serve --debug",
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				setDebugLogging()
			}
			return serveCmd()
		},
	}

	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	return cmd
}

func newPersonasCommand() *cobra.Command {
	personasRoot := &cobra.Command{
		Use:   "personas",
		Short: "List, inspect, and reload personas",
	}

	personasRoot.AddCommand(&cobra.Command{
		Use:     "list",
		Short:   "List available persona ids",
		Example: "  afterlife personas list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return personasListCmd()
		},
	})

	personasRoot.AddCommand(&cobra.Command{
		Use:     "show <id>",
		Short:   "Show a persona's assembled system prompt",
		Args:    cobra.ExactArgs(1),
		Example: "  afterlife personas show james",
		RunE: func(cmd *cobra.Command, args []string) error {
			return personasShowCmd(args[0])
		},
	})

	personasRoot.AddCommand(&cobra.Command{
		Use:     "reload <id>",
		Short:   "Reload a persona from disk, bypassing the cache",
		Args:    cobra.ExactArgs(1),
		Example: "  afterlife personas reload james",
		RunE: func(cmd *cobra.Command, args []string) error {
			return personasReloadCmd(args[0])
		},
	})

	return personasRoot
}

func newIngestCommand() *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:     "ingest <file>",
		Short:   "Extract a text profile from a biography file",
		Long:    "Read a text file, extract biographical insights and speech patterns, and store the profile under a session id for later chats.",
		Args:    cobra.ExactArgs(1),
		Example: "  afterlife ingest bio.txt --session cli:default",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ingestCmd(args[0], session)
		},
	}

	cmd.Flags().StringVarP(&session, "session", "s", "", "Session id to store the profile under (generated when empty)")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Show build/version metadata",
		Example: "  afterlife version",
		RunE: func(cmd *cobra.Command, args []string) error {
			printVersion()
			return nil
		},
	}
}
