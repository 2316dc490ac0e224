// internal/queue/queue.go
package queue

import (
	"encoding/json"

	"github.com/streadway/amqp"
)

// SendQueue is the name of the RabbitMQ queue carrying ad-hoc single-send
// jobs consumed by cmd/worker.
const SendQueue = "sms_sends"

// SendJob is one queued single-send request. The worker feeds it straight
// into the send primitive.
type SendJob struct {
	To                 string  `json:"to"`
	Message            string  `json:"message"`
	From               string  `json:"from,omitempty"`
	CampaignID         *string `json:"campaign_id,omitempty"`
	TemplateID         *string `json:"template_id,omitempty"`
	RecentMessageHours int     `json:"recent_message_hours,omitempty"`
}

// Publisher enqueues send jobs.
type Publisher interface {
	PublishSend(job SendJob) error
	Close() error
}

// AMQPPublisher publishes send jobs to RabbitMQ.
type AMQPPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(SendQueue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &AMQPPublisher{conn: conn, ch: ch}, nil
}

func (p *AMQPPublisher) PublishSend(job SendJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return p.ch.Publish(
		"",        // default exchange
		SendQueue, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (p *AMQPPublisher) Close() error {
	p.ch.Close()
	return p.conn.Close()
}
