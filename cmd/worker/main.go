// cmd/worker/main.go
package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/streadway/amqp"

	"github.com/artbattle/sms-marketing-backend/internal/carrier"
	"github.com/artbattle/sms-marketing-backend/internal/db"
	"github.com/artbattle/sms-marketing-backend/internal/queue"
	"github.com/artbattle/sms-marketing-backend/internal/repository"
	"github.com/artbattle/sms-marketing-backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	db.Init()

	sender := &service.SenderService{
		PersonRepo:   &repository.PersonRepository{DB: db.DB},
		OptOutRepo:   &repository.OptOutRepository{DB: db.DB},
		OutboundRepo: &repository.OutboundMessageRepository{DB: db.DB},
		Carrier:      carrier.NewTelnyxClient(os.Getenv("TELNYX_API_KEY")),
		FromNumber:   os.Getenv("TELNYX_FROM_NUMBER"),
	}

	// Connect to RabbitMQ
	conn, err := amqp.Dial(os.Getenv("AMQP_URL"))
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("Failed to open a channel:", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		queue.SendQueue, // name
		true,            // durable
		false,           // delete when unused
		false,           // exclusive
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		log.Fatal("Failed to declare queue:", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Fatal("Failed to register consumer:", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var job queue.SendJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				log.Println("Invalid job:", err)
				d.Ack(false)
				continue
			}

			outcome, err := processJob(job, sender)
			if err != nil {
				log.Println("Failed to send message:", err)
				// Retry infrastructure failures up to 3 times
				var retryCount int
				if d.Headers["x-retry-count"] != nil {
					retryCount, _ = d.Headers["x-retry-count"].(int)
				}
				if retryCount < 3 {
					d.Nack(false, true) // requeue
					continue
				}
			} else if !outcome.Success() {
				// Business skips and carrier rejections are final.
				log.Printf("Send to %s not delivered (%s): %s", outcome.To, outcome.Kind, outcome.Reason)
			}

			d.Ack(false)
		}
	}()

	log.Println("Worker running, waiting for messages...")
	<-forever
}

func processJob(job queue.SendJob, sender *service.SenderService) (service.SendOutcome, error) {
	return sender.Send(service.SendRequest{
		To:                 job.To,
		Message:            job.Message,
		From:               job.From,
		CampaignID:         job.CampaignID,
		TemplateID:         job.TemplateID,
		RecentMessageHours: job.RecentMessageHours,
	})
}
