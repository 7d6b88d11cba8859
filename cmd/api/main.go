package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/recupaai/recovery/internal/infra/ai"
	"github.com/recupaai/recovery/internal/infra/database"
	"github.com/recupaai/recovery/internal/infra/http/handlers"
	"github.com/recupaai/recovery/internal/infra/http/middleware"
	"github.com/recupaai/recovery/internal/infra/integration/uazapi"
	"github.com/recupaai/recovery/internal/infra/mail"
	"github.com/recupaai/recovery/internal/infra/queue"
	"github.com/recupaai/recovery/internal/infra/worker"
	"github.com/recupaai/recovery/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		env("RABBITMQ_USER", "user"),
		env("RABBITMQ_PASSWORD", "password"),
		env("RABBITMQ_HOST", "localhost"),
		env("RABBITMQ_PORT", "5672"),
	)
	if err != nil {
		panic(err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositórios
	leadRepo := database.NewLeadRepository(db)
	productRepo := database.NewProductRepository(db)
	instanceRepo := database.NewInstanceRepository(db)

	// 2. Gateways e Adapters
	uazapiClient := uazapi.NewClient(os.Getenv("UAZAPI_BASE_URL"), os.Getenv("UAZAPI_API_KEY"))
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	alertSender := mail.NewAlertSender(
		os.Getenv("MAIL_HOST"), 587, os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
		os.Getenv("ALERT_EMAIL"),
	)

	// Gerador de respostas (Gemini). Sem chave, o orquestrador degrada para o
	// template fixo — o serviço continua de pé.
	var generator usecase.ReplyGenerator
	gemini, err := ai.NewGeminiGenerator(context.Background(), os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL"))
	if err != nil {
		log.Printf("⚠️ Gerador de IA desativado: %v", err)
	} else {
		generator = gemini
	}

	// 3. UseCases
	stateMachine := usecase.NewLeadStateMachine(leadRepo)
	runTurnUC := usecase.NewRunTurnUseCase(leadRepo, productRepo, instanceRepo, generator, uazapiClient, stateMachine)
	dispatcher := usecase.NewRecoveryDispatcher(leadRepo, productRepo, producer, runTurnUC, stateMachine, alertSender)

	// 4. Workers (fila de recuperação + reconciliador de pendentes)
	queueWorker := queue.NewWorker(rabbitMQ.Ch, dispatcher, producer)
	go queueWorker.Start(queue.QueueName)

	staleWorker := worker.NewStaleLeadWorker(leadRepo, producer)
	go staleWorker.Start(context.Background())

	// 5. Handlers
	webhookHandler := handlers.NewWebhookHandler(dispatcher)
	messageHandler := handlers.NewMessageHandler(dispatcher)
	instanceHandler := handlers.NewInstanceHandler(instanceRepo, uazapiClient)
	productHandler := handlers.NewProductHandler(productRepo)
	leadHandler := handlers.NewLeadHandler(leadRepo)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	r.Post("/api/webhooks/{platform}/{clientID}", webhookHandler.Handle)
	r.Post("/api/whatsapp/webhook", messageHandler.Handle)
	r.Post("/api/whatsapp/connect/{clientID}", instanceHandler.HandleConnect)
	r.Get("/api/whatsapp/status/{clientID}", instanceHandler.HandleStatus)
	r.Post("/api/products/{clientID}", productHandler.HandleCreate)
	r.Get("/api/leads", leadHandler.HandleList)
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := ":" + env("PORT", "8080")
	log.Printf("🔥 Server Recupa.ai rodando na porta %s", port)
	http.ListenAndServe(port, r)
}

func env(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
