package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"quizpulse/internal/app"
	"quizpulse/internal/config"
	"quizpulse/internal/domain"
	"quizpulse/internal/infra/memory"
	pgloader "quizpulse/internal/infra/postgres"
	redisinfra "quizpulse/internal/infra/redis"
	transport "quizpulse/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pgloader.NewQuizLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	var rooms app.RoomRepository
	if redisClient != nil {
		rooms = redisinfra.NewRoomStore(redisClient, redisTTL)
	} else {
		rooms = memory.NewRoomStore()
	}

	service := app.NewRoomService(rooms, quizRepo)
	wsHandler := transport.NewWSHandler(service)
	roomHandler := transport.NewRoomHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/create-room", roomHandler.CreateRoom)
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Abandoned rooms only get reaped when the operator configures an idle
	// TTL; the default retains them for the process lifetime.
	reapCtx, stopReaper := context.WithCancel(ctx)
	defer stopReaper()
	if idleTTL := config.TTLDuration(cfg.Room.IdleTTL, 0); idleTTL > 0 {
		go reapLoop(reapCtx, service, idleTTL)
	}

	go func() {
		log.Printf("starting quizpulse on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func reapLoop(ctx context.Context, service *app.RoomService, idleTTL time.Duration) {
	ticker := time.NewTicker(idleTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := service.ReapIdle(idleTTL); n > 0 {
				log.Printf("reaped %d idle room(s)", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

// sampleQuizzes provides a minimal demo set; the Postgres loader replaces
// this in production.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:    "quiz-1",
			Title: "General Knowledge Warmup",
			Topic: "general",
			Questions: []domain.Question{
				{
					Text: "What is the capital of France?",
					Options: []domain.Option{
						{Text: "Lyon"},
						{Text: "Paris", Correct: true},
						{Text: "Marseille"},
					},
					Points:     100,
					TimeLimit:  30,
					Difficulty: "easy",
				},
				{
					Text: "Which planet is known as the Red Planet?",
					Options: []domain.Option{
						{Text: "Venus"},
						{Text: "Jupiter"},
						{Text: "Mars", Correct: true},
					},
					Points:     100,
					TimeLimit:  30,
					Difficulty: "easy",
				},
			},
		},
	}
}
