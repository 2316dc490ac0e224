// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/artbattle/sms-marketing-backend/internal/auth"
	"github.com/artbattle/sms-marketing-backend/internal/carrier"
	"github.com/artbattle/sms-marketing-backend/internal/controller"
	"github.com/artbattle/sms-marketing-backend/internal/db"
	"github.com/artbattle/sms-marketing-backend/internal/queue"
	"github.com/artbattle/sms-marketing-backend/internal/repository"
	"github.com/artbattle/sms-marketing-backend/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	// Init DB
	db.Init()

	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	personRepo := &repository.PersonRepository{DB: db.DB}
	outboundRepo := &repository.OutboundMessageRepository{DB: db.DB}
	optOutRepo := &repository.OptOutRepository{DB: db.DB}
	rfmCacheRepo := &repository.RFMCacheRepository{DB: db.DB}
	activityRepo := &repository.PersonActivityRepository{DB: db.DB}
	adminRepo := &repository.AdminRepository{DB: db.DB}

	authenticator := &auth.Authenticator{
		JWTSecret:  []byte(os.Getenv("JWT_SECRET")),
		CronSecret: os.Getenv("CRON_SECRET"),
		AdminRepo:  adminRepo,
	}

	publisher, err := queue.NewAMQPPublisher(os.Getenv("AMQP_URL"))
	if err != nil {
		log.Fatal("failed to connect to RabbitMQ:", err)
	}
	defer publisher.Close()

	sender := &service.SenderService{
		PersonRepo:   personRepo,
		OptOutRepo:   optOutRepo,
		OutboundRepo: outboundRepo,
		Carrier:      carrier.NewTelnyxClient(os.Getenv("TELNYX_API_KEY")),
		FromNumber:   os.Getenv("TELNYX_FROM_NUMBER"),
	}

	intakeService := &service.IntakeService{
		CampaignRepo: campaignRepo,
		PersonRepo:   personRepo,
	}

	dispatcherService := &service.DispatcherService{
		CampaignRepo: campaignRepo,
		Sender:       sender,
		Owner:        hostOwner(),
	}

	rfmService := &service.RFMService{
		CacheRepo:    rfmCacheRepo,
		ActivityRepo: activityRepo,
	}

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		OutboundRepo: outboundRepo,
	}

	campaignController := &controller.CampaignController{
		Intake:    intakeService,
		Campaigns: campaignService,
		Auth:      authenticator,
	}
	dispatchController := &controller.DispatchController{
		Dispatcher: dispatcherService,
		Auth:       authenticator,
	}
	rfmController := &controller.RFMController{
		RFM:  rfmService,
		Auth: authenticator,
	}
	smsController := &controller.SMSController{
		Publisher: publisher,
		Auth:      authenticator,
	}

	r := chi.NewRouter()

	// Campaign routes
	r.Post("/campaigns", campaignController.CreateCampaign)
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Get("/campaigns/{id}", campaignController.GetCampaign)
	r.Post("/campaigns/process-scheduled", dispatchController.Run)

	// RFM scoring
	r.Post("/rfm/batch-stream", rfmController.StreamScores)

	// Ad-hoc single sends
	r.Post("/sms/send", smsController.Send)

	log.Println("🚀 Server running on :8080")
	log.Fatal(http.ListenAndServe(":8080", r))
}

// hostOwner identifies this process as a lease owner for campaign claims.
func hostOwner() string {
	host, err := os.Hostname()
	if err != nil {
		host = "dispatcher"
	}
	return host + "-" + uuid.NewString()[:8]
}
