package notification

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"vistara-hms/config"
	"vistara-hms/internal/database/models"
)

// Event names broadcast to subscribed admin clients.
const (
	EventReservationCreated = "reservation.created"
	EventGuestCheckedIn     = "guest.checked_in"
	EventGuestCheckedOut    = "guest.checked_out"
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventMaintenance        = "room.maintenance"
)

// ErrSubscriptionGone signals a permanently dead endpoint; the
// dispatcher prunes its row.
var ErrSubscriptionGone = errors.New("subscription gone")

type Event struct {
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	BranchID  int64                  `json:"branch_id"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Sender delivers one payload to one subscription. The actual web-push
// transport lives behind this interface.
type Sender interface {
	Send(ctx context.Context, sub models.PushSubscription, payload []byte) error
}

// RedisSender hands payloads to the delivery worker over a Redis
// channel, tagged with the target subscription.
type RedisSender struct {
	rdb     *redis.Client
	channel string
}

func NewRedisSender(rdb *redis.Client, channel string) *RedisSender {
	return &RedisSender{rdb: rdb, channel: channel}
}

type redisEnvelope struct {
	Endpoint string          `json:"endpoint"`
	P256dh   string          `json:"p256dh"`
	Auth     string          `json:"auth"`
	Payload  json.RawMessage `json:"payload"`
}

func (s *RedisSender) Send(ctx context.Context, sub models.PushSubscription, payload []byte) error {
	msg, err := json.Marshal(redisEnvelope{
		Endpoint: sub.Endpoint,
		P256dh:   sub.P256dh,
		Auth:     sub.Auth,
		Payload:  payload,
	})
	if err != nil {
		return err
	}
	return s.rdb.Publish(ctx, s.channel, msg).Err()
}

type Dispatcher struct {
	db     *gorm.DB
	sender Sender
	push   config.PushConfig
}

func NewDispatcher(db *gorm.DB, sender Sender, push config.PushConfig) *Dispatcher {
	return &Dispatcher{
		db:     db,
		sender: sender,
		push:   push,
	}
}

func (d *Dispatcher) VAPIDPublicKey() string {
	return d.push.VAPIDPublicKey
}

// Broadcast fans an event out to every subscription for the branch
// (plus branch-unscoped admins), each delivery independent and
// best-effort. Failures are logged; dead subscriptions are pruned.
func (d *Dispatcher) Broadcast(ctx context.Context, ev Event) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	var subs []models.PushSubscription
	if err := d.db.WithContext(ctx).
		Where("branch_id = ? OR branch_id IS NULL", ev.BranchID).
		Find(&subs).Error; err != nil {
		return err
	}

	for _, id := range d.fanOut(ctx, subs, payload) {
		d.db.Where("id = ?", id).Delete(&models.PushSubscription{})
	}

	return nil
}

// fanOut delivers the payload to every subscription concurrently and
// reports the ids of permanently dead endpoints for pruning.
func (d *Dispatcher) fanOut(ctx context.Context, subs []models.PushSubscription, payload []byte) []int64 {
	var mu sync.Mutex
	var gone []int64

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(sub models.PushSubscription) {
			defer wg.Done()
			if err := d.sender.Send(ctx, sub, payload); err != nil {
				if errors.Is(err, ErrSubscriptionGone) {
					mu.Lock()
					gone = append(gone, sub.ID)
					mu.Unlock()
					return
				}
				log.Printf("push delivery failed for subscription %d: %v", sub.ID, err)
			}
		}(sub)
	}
	wg.Wait()

	return gone
}

// NotifyAsync is the fire-and-forget path used inside request handlers.
func (d *Dispatcher) NotifyAsync(ev Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := d.Broadcast(ctx, ev); err != nil {
			log.Printf("notification broadcast failed: %v", err)
		}
	}()
}

func (d *Dispatcher) Subscribe(ctx context.Context, sub models.PushSubscription) error {
	var existing models.PushSubscription
	err := d.db.WithContext(ctx).Where("endpoint = ?", sub.Endpoint).First(&existing).Error
	if err == nil {
		existing.P256dh = sub.P256dh
		existing.Auth = sub.Auth
		existing.UserID = sub.UserID
		existing.BranchID = sub.BranchID
		return d.db.WithContext(ctx).Save(&existing).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return d.db.WithContext(ctx).Create(&sub).Error
}

func (d *Dispatcher) Unsubscribe(ctx context.Context, endpoint string) error {
	return d.db.WithContext(ctx).Where("endpoint = ?", endpoint).Delete(&models.PushSubscription{}).Error
}
