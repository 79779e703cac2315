package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/encore/internal/models"
	"github.com/example/encore/internal/storefront"
)

type recordingNotifier struct {
	mu     sync.Mutex
	emails []string
	err    error
}

func (n *recordingNotifier) NotifyNewSubscriber(_ context.Context, email string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emails = append(n.emails, email)
	return n.err
}

func (n *recordingNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.emails...)
}

func TestNewsletterService_Subscribe(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	svc := NewNewsletterService(db, notifier, zap.NewNop())

	res, err := svc.Subscribe(context.Background(), "  Listener@Example.com ")
	require.NoError(t, err)
	svc.Wait()

	assert.Equal(t, storefront.NewsletterSuccess, res.Attempt.Status)
	assert.NotEmpty(t, res.UnsubscribeToken)
	assert.Equal(t, []string{"listener@example.com"}, notifier.sent())

	var sub models.Subscriber
	require.NoError(t, db.First(&sub, "email = ?", "listener@example.com").Error)
	assert.Equal(t, models.SubscriberActive, sub.Status)
	assert.NotEqual(t, res.UnsubscribeToken, sub.UnsubscribeTokenHash)
}

func TestNewsletterService_InvalidEmail(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	svc := NewNewsletterService(db, notifier, zap.NewNop())

	res, err := svc.Subscribe(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, storefront.ErrInvalidEmail)
	assert.Equal(t, storefront.NewsletterIdle, res.Attempt.Status)
	assert.Equal(t, storefront.InvalidEmailMessage, res.Attempt.ValidationError)

	var count int64
	require.NoError(t, db.Model(&models.Subscriber{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, notifier.sent())
}

func TestNewsletterService_DuplicateInFlight(t *testing.T) {
	svc := NewNewsletterService(newTestDB(t), nil, zap.NewNop())
	require.True(t, svc.begin("user@example.com"))

	res, err := svc.Subscribe(context.Background(), "USER@example.com")
	assert.ErrorIs(t, err, ErrSubscriptionInFlight)
	assert.Equal(t, storefront.NewsletterSubmitting, res.Attempt.Status)

	svc.end("user@example.com")
	res, err = svc.Subscribe(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, storefront.NewsletterSuccess, res.Attempt.Status)
}

func TestNewsletterService_StorageFailure(t *testing.T) {
	db := newTestDB(t)
	svc := NewNewsletterService(db, nil, zap.NewNop())
	require.NoError(t, db.Migrator().DropTable(&models.Subscriber{}))

	res, err := svc.Subscribe(context.Background(), "user@example.com")
	assert.ErrorIs(t, err, ErrSubscribeFailed)
	assert.Equal(t, storefront.NewsletterError, res.Attempt.Status)
	assert.Equal(t, SubscribeFailedMessage, res.Attempt.Error)
	assert.Empty(t, res.UnsubscribeToken)
}

func TestNewsletterService_NotifierFailureDoesNotFailSubscription(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("telegram down")}
	svc := NewNewsletterService(newTestDB(t), notifier, zap.NewNop())

	res, err := svc.Subscribe(context.Background(), "user@example.com")
	require.NoError(t, err)
	svc.Wait()
	assert.Equal(t, storefront.NewsletterSuccess, res.Attempt.Status)
}

func TestNewsletterService_Unsubscribe(t *testing.T) {
	db := newTestDB(t)
	svc := NewNewsletterService(db, nil, zap.NewNop())
	ctx := context.Background()

	res, err := svc.Subscribe(ctx, "user@example.com")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Unsubscribe(ctx, "nobody@example.com", res.UnsubscribeToken), ErrSubscriberNotFound)
	assert.ErrorIs(t, svc.Unsubscribe(ctx, "user@example.com", "wrong"), ErrInvalidUnsubscribe)
	require.NoError(t, svc.Unsubscribe(ctx, "User@Example.com", res.UnsubscribeToken))

	var sub models.Subscriber
	require.NoError(t, db.First(&sub, "email = ?", "user@example.com").Error)
	assert.Equal(t, models.SubscriberUnsubscribed, sub.Status)
	assert.NotNil(t, sub.UnsubscribedAt)

	// Signing up again reactivates the address with a new token.
	again, err := svc.Subscribe(ctx, "user@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, res.UnsubscribeToken, again.UnsubscribeToken)

	var reactivated models.Subscriber
	require.NoError(t, db.First(&reactivated, "email = ?", "user@example.com").Error)
	assert.Equal(t, models.SubscriberActive, reactivated.Status)
	assert.Nil(t, reactivated.UnsubscribedAt)
}
