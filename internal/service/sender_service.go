// internal/service/sender_service.go
package service

import (
	"fmt"
	"log"
	"time"

	"github.com/artbattle/sms-marketing-backend/internal/carrier"
	appErrors "github.com/artbattle/sms-marketing-backend/internal/errors"
	"github.com/artbattle/sms-marketing-backend/internal/model"
	"github.com/artbattle/sms-marketing-backend/internal/repository"
	"github.com/artbattle/sms-marketing-backend/internal/sms"
)

// DefaultDedupWindowHours is the send-time dedup window: a destination that
// received any outbound message this recently is skipped, whichever campaign
// sent it.
const DefaultDedupWindowHours = 72

type SendRequest struct {
	To                 string  `json:"to"`
	Message            string  `json:"message"`
	From               string  `json:"from,omitempty"`
	CampaignID         *string `json:"campaign_id,omitempty"`
	TemplateID         *string `json:"template_id,omitempty"`
	RecentMessageHours int     `json:"recent_message_hours,omitempty"`
}

// OutcomeKind tags the branch a send attempt took. Exactly one applies.
type OutcomeKind string

const (
	OutcomeSent             OutcomeKind = "sent"
	OutcomeSkippedDuplicate OutcomeKind = "skipped_duplicate"
	OutcomeSkippedOptOut    OutcomeKind = "skipped_opt_out"
	OutcomeRejectedTooLong  OutcomeKind = "rejected_too_long"
	OutcomeCarrierFailed    OutcomeKind = "carrier_failed"
)

// SendOutcome is the tagged result of one send attempt.
type SendOutcome struct {
	Kind             OutcomeKind `json:"kind"`
	To               string      `json:"to"`
	OutboundID       string      `json:"outbound_id,omitempty"`
	CarrierMessageID string      `json:"carrier_message_id,omitempty"`
	CharacterCount   int         `json:"character_count,omitempty"`
	MessageParts     int         `json:"message_parts,omitempty"`
	Reason           string      `json:"reason,omitempty"`
}

func (o SendOutcome) Success() bool { return o.Kind == OutcomeSent }

func (o SendOutcome) Skipped() bool {
	return o.Kind == OutcomeSkippedDuplicate || o.Kind == OutcomeSkippedOptOut
}

// SendPrimitive is what the dispatcher and the queue worker call.
type SendPrimitive interface {
	Send(req SendRequest) (SendOutcome, error)
}

// SenderService implements the shared send primitive: normalization, the
// opt-out gate, send-time dedup, live-contact personalization, the segment
// ceiling, and the pending-row-then-carrier-call-then-update sequence.
type SenderService struct {
	PersonRepo   repository.PersonRepositoryInterface
	OptOutRepo   repository.OptOutRepositoryInterface
	OutboundRepo repository.OutboundMessageRepositoryInterface
	Carrier      carrier.Carrier
	FromNumber   string
	Now          func() time.Time
}

func (s *SenderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *SenderService) Send(req SendRequest) (SendOutcome, error) {
	if req.To == "" || req.Message == "" {
		return SendOutcome{}, appErrors.NewValidation("Missing required fields: to and message are required")
	}

	to := sms.NormalizePhone(req.To)
	from := s.FromNumber
	if req.From != "" {
		from = sms.NormalizePhone(req.From)
	}

	// Opt-out gate: never reaches the carrier.
	optedOut, err := s.OptOutRepo.IsOptedOut(to)
	if err != nil {
		return SendOutcome{}, err
	}
	if optedOut {
		return SendOutcome{
			Kind:   OutcomeSkippedOptOut,
			To:     to,
			Reason: "Phone number has opted out of marketing messages",
		}, nil
	}

	// Send-time dedup. The check happens here rather than at audience build
	// time so it holds across concurrently targeting campaigns.
	hours := req.RecentMessageHours
	if hours == 0 {
		hours = DefaultDedupWindowHours
	}
	if hours > 0 {
		since := s.now().Add(-time.Duration(hours) * time.Hour)
		recent, err := s.OutboundRepo.HasRecentSend(to, since)
		if err != nil {
			return SendOutcome{}, err
		}
		if recent {
			return SendOutcome{
				Kind:   OutcomeSkippedDuplicate,
				To:     to,
				Reason: "Duplicate message prevented",
			}, nil
		}
	}

	// Personalization uses live contact data, not the intake snapshot, so
	// the rendered name reflects the contact as of send time.
	person, err := s.PersonRepo.GetByPhone(to)
	if err != nil {
		return SendOutcome{}, err
	}
	body := sms.RenderPersonVariables(req.Message, person)

	characterCount := len(body)
	parts := sms.SegmentCount(body)
	if parts > sms.MaxSegments {
		return SendOutcome{
			Kind:           OutcomeRejectedTooLong,
			To:             to,
			CharacterCount: characterCount,
			MessageParts:   parts,
			Reason:         fmt.Sprintf("Message too long. Maximum %d message parts (%d characters) allowed.", sms.MaxSegments, sms.MaxSegments*sms.SegmentSize),
		}, nil
	}

	// Pending row first so the attempt is observable even if we die between
	// the carrier call and the status update.
	outbound := &model.OutboundMessage{
		CampaignID:     req.CampaignID,
		TemplateID:     req.TemplateID,
		ToPhone:        to,
		FromPhone:      from,
		MessageBody:    body,
		CharacterCount: characterCount,
		MessageParts:   parts,
		Status:         model.OutboundPending,
	}
	if err := s.OutboundRepo.Create(outbound); err != nil {
		return SendOutcome{}, err
	}

	carrierID, sendErr := s.Carrier.Send(from, to, body)
	if sendErr != nil {
		if err := s.OutboundRepo.MarkFailed(outbound.ID, sendErr.Error()); err != nil {
			log.Println("⚠️ failed to record send failure:", err)
		}
		return SendOutcome{
			Kind:           OutcomeCarrierFailed,
			To:             to,
			OutboundID:     outbound.ID,
			CharacterCount: characterCount,
			MessageParts:   parts,
			Reason:         sendErr.Error(),
		}, nil
	}

	if err := s.OutboundRepo.MarkSent(outbound.ID, carrierID); err != nil {
		log.Println("⚠️ failed to record send success:", err)
	}

	return SendOutcome{
		Kind:             OutcomeSent,
		To:               to,
		OutboundID:       outbound.ID,
		CarrierMessageID: carrierID,
		CharacterCount:   characterCount,
		MessageParts:     parts,
	}, nil
}

var _ SendPrimitive = (*SenderService)(nil)
