package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vistara-hms/config"
	"vistara-hms/internal/database/models"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	fail map[string]error
}

func (s *fakeSender) Send(ctx context.Context, sub models.PushSubscription, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.fail[sub.Endpoint]; ok {
		return err
	}
	s.sent = append(s.sent, sub.Endpoint)
	return nil
}

func TestFanOutDeliversToEverySubscription(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(nil, sender, config.PushConfig{})

	subs := []models.PushSubscription{
		{ID: 1, Endpoint: "https://push.example/a"},
		{ID: 2, Endpoint: "https://push.example/b"},
		{ID: 3, Endpoint: "https://push.example/c"},
	}

	gone := d.fanOut(context.Background(), subs, []byte(`{}`))

	assert.Empty(t, gone)
	assert.ElementsMatch(t,
		[]string{"https://push.example/a", "https://push.example/b", "https://push.example/c"},
		sender.sent)
}

func TestFanOutReportsGoneSubscriptions(t *testing.T) {
	sender := &fakeSender{
		fail: map[string]error{
			"https://push.example/dead": ErrSubscriptionGone,
		},
	}
	d := NewDispatcher(nil, sender, config.PushConfig{})

	subs := []models.PushSubscription{
		{ID: 1, Endpoint: "https://push.example/live"},
		{ID: 2, Endpoint: "https://push.example/dead"},
	}

	gone := d.fanOut(context.Background(), subs, []byte(`{}`))

	assert.Equal(t, []int64{2}, gone)
	assert.Equal(t, []string{"https://push.example/live"}, sender.sent)
}

func TestFanOutTransientErrorDoesNotPrune(t *testing.T) {
	sender := &fakeSender{
		fail: map[string]error{
			"https://push.example/flaky": errors.New("timeout"),
		},
	}
	d := NewDispatcher(nil, sender, config.PushConfig{})

	subs := []models.PushSubscription{
		{ID: 1, Endpoint: "https://push.example/flaky"},
	}

	gone := d.fanOut(context.Background(), subs, []byte(`{}`))
	assert.Empty(t, gone)
}

func TestEventJSONShape(t *testing.T) {
	ev := Event{
		Type:     EventOrderCreated,
		Title:    "New QR order",
		Body:     "Order ORD-20250601-0001 placed at Table 4",
		BranchID: 7,
		Data:     map[string]interface{}{"order_id": float64(12)},
	}

	payload, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, ev.Type, decoded.Type)
	assert.Equal(t, ev.BranchID, decoded.BranchID)
	assert.Equal(t, ev.Data, decoded.Data)
}

func TestVAPIDPublicKeyComesFromConfig(t *testing.T) {
	d := NewDispatcher(nil, &fakeSender{}, config.PushConfig{VAPIDPublicKey: "BPub"})
	assert.Equal(t, "BPub", d.VAPIDPublicKey())
}
