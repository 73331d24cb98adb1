package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lojasmm/cartaz/internal/bot"
	"github.com/lojasmm/cartaz/internal/config"
	"github.com/lojasmm/cartaz/internal/discord"
	"github.com/lojasmm/cartaz/internal/engine"
	"github.com/lojasmm/cartaz/internal/render"
	"github.com/lojasmm/cartaz/internal/server"
	"github.com/lojasmm/cartaz/internal/session"
	"github.com/lojasmm/cartaz/internal/store"
	"github.com/lojasmm/cartaz/internal/tmplerr"
	"github.com/lojasmm/cartaz/internal/whatsapp"
	flag "github.com/spf13/pflag"
)

// commandPrefix starts a Discord message that asks for a template key.
const commandPrefix = "!cartaz "

const usage = `usage:
  cartaz serve
  cartaz render --file FILE --key KEY [--kw name=value ...] [--engine format|logic] [--order per-key|whole-document]
`

func main() {
	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = serve()
	case "render":
		err = renderCmd(args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("cartaz: %v", err)
	}
}

func renderCmd(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	file := fs.StringP("file", "f", "", "template source file")
	key := fs.StringP("key", "k", "", "element key to render")
	kw := fs.StringToString("kw", nil, "keyword substitutions as name=value")
	eng := fs.String("engine", "", "template engine (format or logic)")
	order := fs.String("order", "", "template order (per-key or whole-document)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" || *key == "" {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("--file and --key are required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if *eng != "" {
		cfg.Engine = engine.Name(*eng)
	}
	if *order != "" {
		if cfg.TemplateOrder, err = render.ParseOrder(*order); err != nil {
			return err
		}
	}
	opts, err := cfg.RenderOptions()
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	opts.Name = filepath.Base(*file)
	r, err := render.New(raw, opts)
	if err != nil {
		return err
	}

	keywords := make(map[string]any, len(*kw))
	for k, v := range *kw {
		keywords[k] = v
	}
	res, err := r.Render(*key, nil, keywords, nil)
	if err != nil {
		return err
	}
	preview, err := render.NewPreview(res)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(preview)
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	opts, err := cfg.RenderOptions()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	db, err := store.NewBoltStore(filepath.Join(cfg.DataDir, "cartaz.db"))
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer db.Close()

	if cfg.TemplateDir != "" {
		if _, err := store.Seed(db, cfg.TemplateDir); err != nil {
			return fmt.Errorf("store: %w", err)
		}
	}

	sessionMgr := session.NewManager()

	// Periodic cleanup of idle interaction locks
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			sessionMgr.Cleanup(1 * time.Hour)
		}
	}()

	router := bot.NewRouter(sessionMgr)

	// srv is assigned below, once the webhook it mounts exists.
	var webhook *whatsapp.WebhookHandler
	var srv *server.Server
	find := func(key string, keywords map[string]any) (render.Result, error) {
		return srv.Find(key, keywords)
	}

	if cfg.WhatsAppEnabled() {
		waClient := whatsapp.NewClient(cfg.WAPhoneNumberID, cfg.WAAccessToken)
		waHost := whatsapp.NewHost(waClient, router)
		onMessage := func(phone, messageID, text string) {
			key := strings.TrimSpace(text)
			res, err := find(key, map[string]any{"phone": phone, "message_id": messageID})
			if err != nil {
				log.Printf("whatsapp: rendering %q for %s: %v", key, phone, err)
				if tmplerr.KindOf(err) == tmplerr.NotFound {
					if err := waClient.SendText(phone, fmt.Sprintf("No template named %q.", key)); err != nil {
						log.Printf("whatsapp: %v", err)
					}
				}
				return
			}
			if err := waHost.Deliver(context.Background(), phone, res); err != nil {
				log.Printf("whatsapp: delivering %q to %s: %v", key, phone, err)
			}
		}
		webhook = whatsapp.NewWebhookHandler(cfg.WAVerifyToken, onMessage, waHost.HandleReply)
	}
	srv = server.New(db, opts, webhook)

	if cfg.DiscordToken != "" {
		dg, err := discordgo.New("Bot " + cfg.DiscordToken)
		if err != nil {
			return fmt.Errorf("discord: %w", err)
		}
		dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent
		dHost := discord.NewHost(dg, router)
		dg.AddHandler(dHost.HandleInteraction)
		dg.AddHandler(func(s *discordgo.Session, mc *discordgo.MessageCreate) {
			if mc.Author == nil || mc.Author.Bot || !strings.HasPrefix(mc.Content, commandPrefix) {
				return
			}
			key := strings.TrimSpace(strings.TrimPrefix(mc.Content, commandPrefix))
			res, err := find(key, map[string]any{"user": mc.Author.Username, "user_id": mc.Author.ID, "channel_id": mc.ChannelID})
			if err != nil {
				log.Printf("discord: rendering %q: %v", key, err)
				return
			}
			if _, err := dHost.Send(context.Background(), mc.ChannelID, res); err != nil {
				log.Printf("discord: sending %q to %s: %v", key, mc.ChannelID, err)
			}
		})
		if err := dg.Open(); err != nil {
			return fmt.Errorf("discord: %w", err)
		}
		defer dg.Close()
		log.Println("cartaz: discord session open")
	}

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("cartaz: listening on :%s", cfg.Port)
		if webhook != nil {
			log.Printf("cartaz: webhook verify token = %s", cfg.WAVerifyToken)
		}
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("cartaz: shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Println("cartaz: stopped")
	return nil
}
