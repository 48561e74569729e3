package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/order"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEventType = "test.happened"

// testEvent is a minimal event used across the package tests
type testEvent struct {
	shared.BaseDomainEvent
	Data    string `json:"data"`
	Counter int    `json:"counter"`
}

func newTestEvent() *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(testEventType, "TestAggregate", uuid.New()),
		Data:            "test data",
		Counter:         42,
	}
}

func newTestSerializer() *EventSerializer {
	s := NewEventSerializer()
	s.Register(testEventType, &testEvent{})
	return s
}

func TestEventSerializer_Register(t *testing.T) {
	serializer := newTestSerializer()

	assert.True(t, serializer.IsRegistered(testEventType))
	assert.False(t, serializer.IsRegistered("unknown.event"))
}

func TestNewOrderEventSerializer_RegistersOrderEvents(t *testing.T) {
	serializer := NewOrderEventSerializer()

	assert.Equal(t, []string{order.EventTypeCancelled, order.EventTypePlaced}, serializer.RegisteredTypes())
}

func TestEventSerializer_Serialize_UnregisteredType(t *testing.T) {
	serializer := NewEventSerializer()

	_, err := serializer.Serialize(newTestEvent())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")
}

func TestEventSerializer_Serialize(t *testing.T) {
	serializer := newTestSerializer()

	data, err := serializer.Serialize(newTestEvent())

	require.NoError(t, err)
	assert.Contains(t, string(data), `"data":"test data"`)
	assert.Contains(t, string(data), `"counter":42`)
	assert.Contains(t, string(data), `"type":"test.happened"`)
}

func TestEventSerializer_Deserialize_UnknownType(t *testing.T) {
	serializer := NewEventSerializer()

	_, err := serializer.Deserialize("unknown.event", []byte(`{}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")
}

func TestEventSerializer_Deserialize_InvalidJSON(t *testing.T) {
	serializer := newTestSerializer()

	_, err := serializer.Deserialize(testEventType, []byte(`invalid json`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal")
}

func TestEventSerializer_RoundTrip_PreservesAllFields(t *testing.T) {
	serializer := newTestSerializer()

	original := &testEvent{
		BaseDomainEvent: shared.BaseDomainEvent{
			ID:        uuid.New(),
			Type:      testEventType,
			Timestamp: time.Now().UTC().Truncate(time.Second),
			AggID:     uuid.New(),
			AggType:   "TestAggregate",
			Version:   1,
		},
		Data:    "important data",
		Counter: 99,
	}

	data, err := serializer.Serialize(original)
	require.NoError(t, err)

	deserialized, err := serializer.Deserialize(testEventType, data)
	require.NoError(t, err)

	event := deserialized.(*testEvent)
	assert.Equal(t, original.EventID(), event.EventID())
	assert.Equal(t, original.EventType(), event.EventType())
	assert.Equal(t, original.AggregateID(), event.AggregateID())
	assert.Equal(t, original.AggregateType(), event.AggregateType())
	assert.True(t, original.OccurredAt().Equal(event.OccurredAt()))
	assert.Equal(t, original.Data, event.Data)
	assert.Equal(t, original.Counter, event.Counter)
}

func TestEventSerializer_RoundTrip_PlacedEvent(t *testing.T) {
	serializer := NewOrderEventSerializer()
	orderID := uuid.New()

	original := &order.PlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(order.EventTypePlaced, order.AggregateTypeOrder, orderID),
		OrderID:         orderID,
		OrderNumber:     "MKT2610170042",
		BuyerID:         uuid.New(),
		Items: []order.EventItem{{
			OfferID:         uuid.New(),
			SellerID:        uuid.New(),
			Quantity:        2,
			TotalPrice:      valueobject.MustMoney("200.00"),
			NetSellerAmount: valueobject.MustMoney("172.22"),
		}},
		Subtotal:    valueobject.MustMoney("200.00"),
		TotalAmount: valueobject.MustMoney("229.99"),
	}

	data, err := serializer.Serialize(original)
	require.NoError(t, err)

	deserialized, err := serializer.Deserialize(order.EventTypePlaced, data)
	require.NoError(t, err)

	placed, ok := deserialized.(*order.PlacedEvent)
	require.True(t, ok)
	assert.Equal(t, orderID, placed.AggregateID())
	assert.Equal(t, "MKT2610170042", placed.OrderNumber)
	require.Len(t, placed.Items, 1)
	assert.Equal(t, "172.22", placed.Items[0].NetSellerAmount.String())
	assert.Equal(t, "229.99", placed.TotalAmount.String())
}
