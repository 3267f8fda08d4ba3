package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kurtgav/wizardmatch-sub001/internal/campaign"
	"github.com/kurtgav/wizardmatch-sub001/internal/common/apperr"
	"github.com/kurtgav/wizardmatch-sub001/internal/matching"
)

var (
	ErrNotParticipant = errors.New("you are not part of this match")
	ErrMatchHidden    = errors.New("messaging opens once the match is revealed or mutual")
)

type Gate interface {
	Authorize(ctx context.Context, campaignID uuid.UUID, action campaign.Action) error
}

// MatchReader loads the match a conversation belongs to.
type MatchReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*matching.Match, error)
}

// Publisher pushes realtime events to a connected user. Delivery is best
// effort; persisted messages are the source of truth.
type Publisher interface {
	Publish(userID uuid.UUID, event Event)
}

type Service interface {
	SendMessage(ctx context.Context, matchID, senderID uuid.UUID, content string) (*Message, error)
	GetMessages(ctx context.Context, matchID, userID uuid.UUID) ([]*Message, error)
	MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}

type Config struct {
	MaxMessageLength int
}

type messagingService struct {
	repo      Repository
	matches   MatchReader
	gate      Gate
	publisher Publisher
	clock     campaign.Clock
	cfg       Config
	log       *zap.Logger
}

func NewService(repo Repository, matches MatchReader, gate Gate, publisher Publisher, clock campaign.Clock, cfg Config, log *zap.Logger) Service {
	if clock == nil {
		clock = campaign.SystemClock()
	}
	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = 2000
	}
	return &messagingService{
		repo:      repo,
		matches:   matches,
		gate:      gate,
		publisher: publisher,
		clock:     clock,
		cfg:       cfg,
		log:       log.Named("messaging"),
	}
}

// loadMatch returns the match after checking userID is one of its two users.
func (s *messagingService) loadMatch(ctx context.Context, matchID, userID uuid.UUID) (*matching.Match, error) {
	m, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.Pair().Has(userID) {
		return nil, apperr.Forbidden(ErrNotParticipant.Error())
	}
	return m, nil
}

func (s *messagingService) SendMessage(ctx context.Context, matchID, senderID uuid.UUID, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("content", "content is required")
	}
	if n := utf8.RuneCountInString(content); n > s.cfg.MaxMessageLength {
		return nil, apperr.Validation("content", fmt.Sprintf("content must be at most %d characters", s.cfg.MaxMessageLength))
	}

	m, err := s.loadMatch(ctx, matchID, senderID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, m.CampaignID, campaign.ActionSendMessage); err != nil {
		return nil, err
	}
	if !m.IsRevealed && !m.IsMutualInterest {
		return nil, apperr.Forbidden(ErrMatchHidden.Error())
	}

	msg := &Message{
		ID:          uuid.New(),
		MatchID:     m.ID,
		SenderID:    senderID,
		RecipientID: m.Pair().Other(senderID),
		Content:     content,
		SentAt:      s.clock.Now(),
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}
	messagesSent.Inc()

	s.publish(msg.RecipientID, EventMessage, msg)
	return msg, nil
}

// GetMessages returns the conversation oldest first and marks the caller's
// incoming messages read.
func (s *messagingService) GetMessages(ctx context.Context, matchID, userID uuid.UUID) ([]*Message, error) {
	m, err := s.loadMatch(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}

	messages, err := s.repo.ListByMatch(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	n, err := s.repo.MarkMatchRead(ctx, m.ID, userID, now)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return messages, nil
	}

	for _, msg := range messages {
		if msg.RecipientID == userID && !msg.IsRead {
			msg.IsRead = true
			msg.ReadAt = &now
		}
	}
	s.publish(m.Pair().Other(userID), EventRead, ReadReceipt{MatchID: m.ID, ReaderID: userID, Count: n})
	return messages, nil
}

func (s *messagingService) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, apperr.Validation("messageIds", "messageIds is required")
	}

	updated, err := s.repo.MarkRead(ctx, ids, userID, s.clock.Now())
	if err != nil {
		return 0, err
	}

	bySender := make(map[uuid.UUID][]uuid.UUID)
	for _, msg := range updated {
		bySender[msg.SenderID] = append(bySender[msg.SenderID], msg.ID)
	}
	for sender, read := range bySender {
		s.publish(sender, EventRead, ReadReceipt{ReaderID: userID, IDs: read, Count: int64(len(read))})
	}
	return int64(len(updated)), nil
}

func (s *messagingService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *messagingService) publish(userID uuid.UUID, typ EventType, payload interface{}) {
	if s.publisher == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("failed to encode event", zap.String("type", string(typ)), zap.Error(err))
		return
	}
	s.publisher.Publish(userID, Event{Type: typ, Data: data, Timestamp: s.clock.Now()})
}
