package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"

	"github.com/shadowlink/afterlife/pkg/bus"
	"github.com/shadowlink/afterlife/pkg/channels"
	"github.com/shadowlink/afterlife/pkg/config"
	"github.com/shadowlink/afterlife/pkg/engine"
	"github.com/shadowlink/afterlife/pkg/gateway"
	"github.com/shadowlink/afterlife/pkg/history"
	"github.com/shadowlink/afterlife/pkg/insights"
	"github.com/shadowlink/afterlife/pkg/logger"
	"github.com/shadowlink/afterlife/pkg/persona"
)

var (
	version   = "dev"
	gitCommit string
	buildTime string
	goVersion string
)

const appName = "afterlife"

func formatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

func printVersion() {
	fmt.Printf("%s %s\n", appName, formatVersion())
	if buildTime != "" {
		fmt.Printf("  Build: %s\n", buildTime)
	}
	goVer := goVersion
	if goVer == "" {
		goVer = runtime.Version()
	}
	fmt.Printf("  Go: %s\n", goVer)
}

func main() {
	if err := executeCLI(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setDebugLogging() {
	logger.SetLevel("debug")
	fmt.Println("Debug mode enabled")
}

func getConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".afterlife", "config.json")
	}
	return filepath.Join(home, ".afterlife", "config.json")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.SetLevel(cfg.Log.Level)
	return cfg, nil
}

// buildRuntime wires the persona store, history store, and generator from
// config. The caller owns closing the returned history store.
func buildRuntime(cfg *config.Config) (*persona.Store, *history.Store, *engine.Generator, error) {
	store, err := persona.NewStore(cfg.PersonasDir(), cfg.Personas.CacheSize)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create persona store: %w", err)
	}
	if len(cfg.Personas.Preload) > 0 {
		store.Preload(cfg.Personas.Preload...)
	}

	hist, err := history.NewStore(cfg.HistoryPath())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open history store: %w", err)
	}

	gen := engine.NewGenerator(store, hist, cfg.Personas.PreviewLength)
	return store, hist, gen, nil
}

func chatCmd(personaID, message, session string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if personaID == "" {
		personaID = cfg.Personas.Default
	}

	_, hist, gen, err := buildRuntime(cfg)
	if err != nil {
		return err
	}
	defer hist.Close()

	if strings.TrimSpace(message) != "" {
		resp := gen.Respond(context.Background(), engine.Request{
			PersonaID: personaID,
			UserInput: message,
			SessionID: session,
		})
		fmt.Printf("\n%s: %s\n", resp.PersonaName, resp.Answer)
		return nil
	}

	fmt.Printf("%s Interactive mode as '%s' (Ctrl+C to exit)\n\n", appName, personaID)
	interactiveMode(gen, personaID, session)
	return nil
}

func interactiveMode(gen *engine.Generator, personaID, session string) {
	prompt := "You: "

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     filepath.Join(os.TempDir(), ".afterlife_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("Error initializing readline: %v\n", err)
		fmt.Println("Falling back to simple input mode...")
		simpleInteractiveMode(gen, personaID, session)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nGoodbye!")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		if done := handleChatLine(gen, &personaID, session, line); done {
			return
		}
	}
}

func simpleInteractiveMode(gen *engine.Generator, personaID, session string) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("You: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Println("\nGoodbye!")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		if done := handleChatLine(gen, &personaID, session, line); done {
			return
		}
	}
}

// handleChatLine processes one REPL line, including the "!persona <id>"
// switch; returns true when the session should end.
func handleChatLine(gen *engine.Generator, personaID *string, session, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}
	if input == "exit" || input == "quit" {
		fmt.Println("Goodbye!")
		return true
	}
	if arg, ok := strings.CutPrefix(input, "!persona "); ok {
		*personaID = strings.TrimSpace(arg)
		fmt.Printf("Switched to persona '%s'\n\n", *personaID)
		return false
	}

	resp := gen.Respond(context.Background(), engine.Request{
		PersonaID: *personaID,
		UserInput: input,
		SessionID: session,
	})
	fmt.Printf("\n%s: %s\n\n", resp.PersonaName, resp.Answer)
	return false
}

func serveCmd() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, hist, gen, err := buildRuntime(cfg)
	if err != nil {
		return err
	}
	defer hist.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional cron-scheduled cache refresh.
	if expr := strings.TrimSpace(cfg.Personas.RefreshCron); expr != "" {
		refresher, err := persona.NewRefresher(store, expr, cfg.Personas.Preload)
		if err != nil {
			return err
		}
		go refresher.Run(ctx)
		fmt.Printf("✓ Persona cache refresh scheduled: %s\n", expr)
	}

	// Optional Discord channel.
	var manager *channels.Manager
	if strings.TrimSpace(cfg.Channels.Discord.Token) != "" {
		messageBus := bus.NewMessageBus(0)
		defer messageBus.Close()

		manager, err = channels.NewManager(cfg, messageBus, gen, store)
		if err != nil {
			return fmt.Errorf("create channel manager: %w", err)
		}
		if err := manager.StartAll(ctx); err != nil {
			return fmt.Errorf("start channels: %w", err)
		}
		fmt.Println("✓ Discord channel started")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Gateway.Host, cfg.Gateway.Port)
	server := gateway.NewServer(addr, store, gen, hist)
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()
	fmt.Printf("✓ Gateway listening on http://%s\n", addr)
	fmt.Println("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("gateway server: %w", err)
	case <-sigChan:
	}

	fmt.Println("\nShutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WarnCF("gateway", "Shutdown error", map[string]interface{}{"error": err.Error()})
	}
	if manager != nil {
		_ = manager.StopAll(shutdownCtx)
	}
	fmt.Println("✓ Stopped")
	return nil
}

func personasListCmd() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := persona.NewStore(cfg.PersonasDir(), cfg.Personas.CacheSize)
	if err != nil {
		return err
	}

	ids := store.ListAvailable()
	if len(ids) == 0 {
		fmt.Printf("No personas found in %s\n", store.Dir())
		fmt.Println("Run 'afterlife onboard' to create a sample persona.")
		return nil
	}

	fmt.Printf("Personas in %s:\n", store.Dir())
	for _, id := range ids {
		marker := " "
		if id == cfg.Personas.Default {
			marker = "*"
		}
		fmt.Printf("  %s %s\n", marker, id)
	}
	return nil
}

func personasShowCmd(id string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := persona.NewStore(cfg.PersonasDir(), cfg.Personas.CacheSize)
	if err != nil {
		return err
	}

	p, err := store.Load(id)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", p.DisplayName, p.ID)
	if p.TTSVoice != "" {
		fmt.Printf("Voice: %s\n", p.TTSVoice)
	}
	fmt.Printf("Pinned Q&A: %d\n\n", len(p.QA.Pinned))
	fmt.Println(persona.BuildSystemPrompt(p))
	return nil
}

func personasReloadCmd(id string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := persona.NewStore(cfg.PersonasDir(), cfg.Personas.CacheSize)
	if err != nil {
		return err
	}

	p, err := store.Reload(id)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Reloaded persona '%s'\n", p.ID)
	return nil
}

func ingestCmd(path, session string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read input file: %w", err)
	}

	hist, err := history.NewStore(cfg.HistoryPath())
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer hist.Close()

	profile := insights.BuildProfile(string(data), "")
	sessionID, err := hist.RecordIngestion(context.Background(), session, &profile)
	if err != nil {
		return fmt.Errorf("store profile: %w", err)
	}

	fmt.Printf("✓ Ingested %s (%d sentences)\n", path, profile.SentenceCount)
	fmt.Printf("  Session: %s\n", sessionID)
	if profile.Insights.Profession != "" {
		fmt.Printf("  Profession: %s\n", profile.Insights.Profession)
	}
	if len(profile.Insights.Nicknames) > 0 {
		fmt.Printf("  Nicknames: %s\n", strings.Join(profile.Insights.Nicknames, ", "))
	}
	if len(profile.Insights.HobbiesInterests) > 0 {
		fmt.Printf("  Hobbies: %s\n", strings.Join(profile.Insights.HobbiesInterests, ", "))
	}
	fmt.Printf("  Dominant trait: %s\n", profile.Traits.DominantTrait)
	fmt.Printf("  Communication style: %s\n", profile.Patterns.CommunicationStyle)
	return nil
}

const samplePersonaYAML = `id: james
display_name: James (LinkOps Creator)
style:
  tone: Confident, friendly, technical mentor
  register: neutral
  quirks:
    - Uses clear step-by-step lists
    - Brief humor when appropriate
boundaries:
  safe_topics: [Kubernetes, DevSecOps, LinkOps]
  avoid_topics: [politics, medical advice]
  refusals:
    - Let's keep this focused on my work and technical topics.
memory:
  bio: I'm James — builder of LinkOps and AfterLife platforms.
  elevator_pitch: I build secure, self-hosted AI systems for DevOps automation.
  highlights:
    - Designed LinkOps AI platform
    - CKA certified
  projects:
    LinkOps: AI DevOps automation platform
  certs: [CKA, Security+]
qa:
  pinned:
    - q: What is LinkOps?
      a: LinkOps is my AI-powered DevOps automation platform.
tts_voice: en_US-male-1
`

func onboard() error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config already exists at %s\n", configPath)
		fmt.Print("Overwrite? (y/n): ")
		reader := bufio.NewReader(os.Stdin)
		response, readErr := reader.ReadString('\n')
		if readErr != nil {
			fmt.Println("Aborted.")
			return nil
		}
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if err := config.SaveConfig(configPath, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	personasDir := cfg.PersonasDir()
	if err := os.MkdirAll(personasDir, 0755); err != nil {
		return fmt.Errorf("create personas dir: %w", err)
	}
	samplePath := filepath.Join(personasDir, "james.yaml")
	if _, err := os.Stat(samplePath); os.IsNotExist(err) {
		if err := os.WriteFile(samplePath, []byte(samplePersonaYAML), 0644); err != nil {
			return fmt.Errorf("write sample persona: %w", err)
		}
		fmt.Printf("✓ Sample persona written to %s\n", samplePath)
	}

	fmt.Printf("%s is ready!\n", appName)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit personas in", personasDir)
	fmt.Println("  2. Chat locally: afterlife chat -m \"What is LinkOps?\"")
	fmt.Println("  3. Ingest a biography: afterlife ingest bio.txt")
	fmt.Println("  4. Run the gateway: afterlife serve")
	fmt.Println("  5. (Optional) Add a Discord bot token to channels.discord.token")
	return nil
}
