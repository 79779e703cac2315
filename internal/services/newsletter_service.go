package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/encore/internal/models"
	"github.com/example/encore/internal/storefront"
	"github.com/example/encore/internal/utils"
)

// SubscribeFailedMessage is shown when the subscription could not be stored.
const SubscribeFailedMessage = "We couldn't sign you up right now. Please try again."

var (
	ErrSubscriptionInFlight = errors.New("subscription already in progress")
	ErrSubscribeFailed      = errors.New("subscription failed")
	ErrSubscriberNotFound   = errors.New("subscriber not found")
	ErrInvalidUnsubscribe   = errors.New("invalid unsubscribe token")
)

// SubscriberNotifier is told about new subscribers.
type SubscriberNotifier interface {
	NotifyNewSubscriber(ctx context.Context, email string) error
}

// SubscribeResult is the outcome of one Subscribe call. UnsubscribeToken is
// only set on success.
type SubscribeResult struct {
	Attempt          storefront.NewsletterAttempt `json:"attempt"`
	UnsubscribeToken string                       `json:"unsubscribe_token,omitempty"`
}

// NewsletterService drives newsletter attempts against the subscriber table.
type NewsletterService struct {
	db       *gorm.DB
	notifier SubscriberNotifier
	log      *zap.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
	wg       sync.WaitGroup
}

// NewNewsletterService constructs NewsletterService. notifier may be nil.
func NewNewsletterService(db *gorm.DB, notifier SubscriberNotifier, log *zap.Logger) *NewsletterService {
	return &NewsletterService{
		db:       db,
		notifier: notifier,
		log:      log,
		inFlight: make(map[string]struct{}),
	}
}

// Subscribe runs one attempt for email. A second call for the same address
// while the first is still running returns the attempt in the submitting
// state together with ErrSubscriptionInFlight.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (SubscribeResult, error) {
	attempt := storefront.NewNewsletterAttempt()
	attempt.SetEmail(email)
	if _, err := attempt.Submit(); err != nil {
		return SubscribeResult{Attempt: *attempt}, err
	}

	key := strings.ToLower(attempt.Email)
	if !s.begin(key) {
		return SubscribeResult{Attempt: *attempt}, ErrSubscriptionInFlight
	}
	defer s.end(key)

	token, err := s.store(ctx, key)
	if err != nil {
		s.log.Error("failed to store subscriber", zap.String("email", key), zap.Error(err))
		_ = attempt.Fail(SubscribeFailedMessage)
		return SubscribeResult{Attempt: *attempt}, fmt.Errorf("%w: %v", ErrSubscribeFailed, err)
	}

	_ = attempt.Succeed()
	s.notify(key)
	s.log.Info("newsletter subscription", zap.String("email", key))
	return SubscribeResult{Attempt: *attempt, UnsubscribeToken: token}, nil
}

// Unsubscribe marks the subscriber as unsubscribed when token matches.
func (s *NewsletterService) Unsubscribe(ctx context.Context, email, token string) error {
	key := strings.ToLower(strings.TrimSpace(email))

	var sub models.Subscriber
	err := s.db.WithContext(ctx).First(&sub, "email = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSubscriberNotFound
	}
	if err != nil {
		return fmt.Errorf("load subscriber: %w", err)
	}

	if sub.UnsubscribeTokenHash == "" || !utils.CheckSecret(sub.UnsubscribeTokenHash, token) {
		return ErrInvalidUnsubscribe
	}
	if sub.Status == models.SubscriberUnsubscribed {
		return nil
	}

	now := time.Now()
	return s.db.WithContext(ctx).Model(&sub).Updates(map[string]interface{}{
		"status":          models.SubscriberUnsubscribed,
		"unsubscribed_at": &now,
	}).Error
}

// Wait blocks until pending notifications have been sent.
func (s *NewsletterService) Wait() {
	s.wg.Wait()
}

func (s *NewsletterService) begin(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *NewsletterService) end(key string) {
	s.mu.Lock()
	delete(s.inFlight, key)
	s.mu.Unlock()
}

// store upserts the subscriber and rotates its unsubscribe token.
func (s *NewsletterService) store(ctx context.Context, email string) (string, error) {
	token, err := utils.NewSecretToken(16)
	if err != nil {
		return "", err
	}
	hash, err := utils.HashSecret(token)
	if err != nil {
		return "", err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub models.Subscriber
		err := tx.First(&sub, "email = ?", email).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&models.Subscriber{
				Email:                email,
				Status:               models.SubscriberActive,
				UnsubscribeTokenHash: hash,
				SubscribedAt:         time.Now(),
			}).Error
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":                 models.SubscriberActive,
			"unsubscribe_token_hash": hash,
			"unsubscribed_at":        nil,
		}
		if sub.Status != models.SubscriberActive {
			updates["subscribed_at"] = time.Now()
		}
		return tx.Model(&sub).Updates(updates).Error
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *NewsletterService) notify(email string) {
	if s.notifier == nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.notifier.NotifyNewSubscriber(ctx, email); err != nil {
			s.log.Warn("failed to notify about subscriber", zap.String("email", email), zap.Error(err))
		}
	}()
}
