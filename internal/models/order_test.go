package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderIDUnmarshal(t *testing.T) {
	var o struct {
		A OrderID `json:"a"`
		B OrderID `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 42, "b": "local_abc"}`), &o))

	assert.Equal(t, OrderID("42"), o.A)
	assert.False(t, o.A.IsLocal())
	assert.Equal(t, OrderID("local_abc"), o.B)
	assert.True(t, o.B.IsLocal())

	var bad OrderID
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &bad))
}

func TestNewLocalOrderIDIsUnique(t *testing.T) {
	a, b := NewLocalOrderID(), NewLocalOrderID()
	assert.True(t, a.IsLocal())
	assert.NotEqual(t, a, b)
}

func TestStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{StatusPending, StatusProcessing, StatusCompleted, StatusCancelled} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("shipped").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestOrderDecodesServerPayload(t *testing.T) {
	payload := `{
		"id": 7,
		"total_price": "2000.00",
		"status": "pending",
		"created_at": "2024-05-01T10:00:00Z",
		"items": [{"product": {"id": 3, "name": "Kettle", "images": ["a.png"], "price": "1000.00"}, "quantity": 2}]
	}`

	var o Order
	require.NoError(t, json.Unmarshal([]byte(payload), &o))

	assert.Equal(t, OrderID("7"), o.ID)
	assert.True(t, o.TotalPrice.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, 2, o.ItemCount())
	assert.Equal(t, 0, o.ItemIndex(3))
	assert.Equal(t, -1, o.ItemIndex(4))

	out, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"total_price":"2000"`)
}

func TestOrderCloneIsDeep(t *testing.T) {
	o := Order{ID: "1", Items: []OrderItem{{Product: Product{ID: 1, Images: []string{"a"}}, Quantity: 1}}}
	c := o.Clone()
	c.Items[0].Quantity = 5
	c.Items[0].Product.Images[0] = "b"

	assert.Equal(t, 1, o.Items[0].Quantity)
	assert.Equal(t, "a", o.Items[0].Product.Images[0])
}

func TestProfileUpdateApply(t *testing.T) {
	p := Profile{Email: "old@example.com", FirstName: "Ana"}
	email := "new@example.com"
	ProfileUpdate{Email: &email}.Apply(&p)

	assert.Equal(t, "new@example.com", p.Email)
	assert.Equal(t, "Ana", p.FirstName)

	prefs := NotificationPreferences{OrderUpdates: true}
	off := false
	NotificationPreferencesUpdate{OrderUpdates: &off}.Apply(&prefs)
	assert.False(t, prefs.OrderUpdates)
}
