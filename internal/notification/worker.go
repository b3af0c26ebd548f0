// Package notification sends web push alerts about new claims.
package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"silant-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool sends claim alerts from a fixed number of goroutines.
type WorkerPool struct {
	size    int
	jobs    chan int64
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
	logger  *zap.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options, logger *zap.Logger) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan int64, size*16),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		logger:  logger.Named("notification"),
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.logger.Debug("worker started", zap.Int("worker", id))
	for {
		select {
		case claimID := <-wp.jobs:
			wp.notifyClaim(ctx, claimID)
		case <-ctx.Done():
			wp.logger.Debug("worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// Dispatch queues an alert for a newly created claim. It never blocks; when
// the queue is full the alert is dropped.
func (wp *WorkerPool) Dispatch(claimID int64) {
	select {
	case wp.jobs <- claimID:
	default:
		wp.logger.Warn("notification queue full, dropping claim alert", zap.Int64("claim_id", claimID))
	}
}

// claimTarget is who should hear about a claim.
type claimTarget struct {
	Serial        string
	ClientUserID  int64
	CompanyUserID int64
}

func (t claimTarget) userIDs() []int64 {
	ids := []int64{t.ClientUserID}
	if t.CompanyUserID != 0 && t.CompanyUserID != t.ClientUserID {
		ids = append(ids, t.CompanyUserID)
	}
	return ids
}

// notifyClaim alerts the machine's client, the claim's service company and
// all staff users.
func (wp *WorkerPool) notifyClaim(ctx context.Context, claimID int64) {
	var target claimTarget
	err := wp.db.WithContext(ctx).
		Table("claims").
		Select("machines.serial AS serial, clients.user_id AS client_user_id, service_companies.user_id AS company_user_id").
		Joins("JOIN machines ON machines.id = claims.machine_id").
		Joins("JOIN clients ON clients.id = machines.client_id").
		Joins("LEFT JOIN service_companies ON service_companies.id = claims.service_company_id").
		Where("claims.id = ?", claimID).
		Take(&target).Error
	if err != nil {
		wp.logger.Error("failed to load claim for alert", zap.Int64("claim_id", claimID), zap.Error(err))
		return
	}

	var subscriptions []model.PushSubscription
	err = wp.db.WithContext(ctx).
		Where("user_id IN (?) OR user_id IN (SELECT id FROM users WHERE is_staff = ? OR is_superuser = ?)",
			target.userIDs(), true, true).
		Find(&subscriptions).Error
	if err != nil {
		wp.logger.Error("failed to load subscriptions", zap.Int64("claim_id", claimID), zap.Error(err))
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	wp.logger.Info("sending claim alerts",
		zap.Int64("claim_id", claimID),
		zap.String("serial", target.Serial),
		zap.Int("subscriptions", len(subscriptions)),
	)
	message := fmt.Sprintf("New claim on machine %s", target.Serial)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.logger.Warn("failed to send notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		wp.logger.Info("subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			wp.logger.Error("failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}
