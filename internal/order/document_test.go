package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFromDocument_Defaults(t *testing.T) {
	oid := primitive.NewObjectID()
	o := fromDocument(bson.M{"_id": oid, "userId": "u1"})

	assert.Equal(t, oid.Hex(), o.ID)
	assert.Equal(t, oid.Hex(), o.PaymentID)
	assert.Equal(t, StatusUnknown, o.PaymentStatus)
	assert.NotNil(t, o.Items)
	assert.Empty(t, o.Items)
	assert.True(t, o.TotalAmount.IsZero())
	assert.True(t, o.CreatedAt.IsZero())
}

func TestFromDocument_LegacyShape(t *testing.T) {
	o := fromDocument(bson.M{
		"_id":           "doc-1",
		"orderId":       "pi_legacy",
		"userId":        "u1",
		"totalAmount":   26.5,
		"paymentStatus": "succeeded",
		"createdAt":     "2024-03-01T10:00:00Z",
		"items": bson.A{
			bson.M{"id": "a", "name": "A", "price": 10.0, "quantity": int32(1)},
			"not-an-item",
			bson.M{"id": "b", "name": "B", "price": "5.50", "quantity": int64(3), "imageUrl": "/b.png"},
		},
		"shippingInfo": bson.M{"name": "Ada", "address": "1 Loop", "city": "Zurich", "zip": int32(8000)},
	})

	assert.Equal(t, "pi_legacy", o.PaymentID)
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("26.5")))
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), o.CreatedAt)
	require.Len(t, o.Items, 2)
	assert.Equal(t, 3, o.Items[1].Quantity)
	require.NotNil(t, o.Items[1].ImageURL)
	assert.Equal(t, "8000", o.ShippingInfo.Zip)
}

func TestFromDocument_WrongTypes(t *testing.T) {
	o := fromDocument(bson.M{
		"_id":           primitive.NewObjectID(),
		"paymentId":     42.0,
		"totalAmount":   "lots",
		"items":         "nope",
		"shippingInfo":  []string{"x"},
		"paymentStatus": true,
	})

	assert.Equal(t, o.ID, o.PaymentID)
	assert.True(t, o.TotalAmount.IsZero())
	assert.Empty(t, o.Items)
	assert.Equal(t, ShippingInfo{}, o.ShippingInfo)
	assert.Equal(t, StatusUnknown, o.PaymentStatus)
}

func TestDocument_RoundTrip(t *testing.T) {
	img := "/a.png"
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	in := Order{
		PaymentID:     "pi_1",
		UserID:        "u1",
		UserEmail:     "u1@example.com",
		Items:         []Item{{ID: "a", Name: "A", Price: decimal.RequireFromString("10.00"), Quantity: 2, ImageURL: &img}},
		TotalAmount:   decimal.RequireFromString("20.00"),
		ShippingInfo:  ShippingInfo{Name: "Ada", Address: "1 Loop", City: "Zurich", Zip: "8000"},
		PaymentStatus: StatusSucceeded,
		CreatedAt:     created,
	}

	doc, err := toDocument(in)
	require.NoError(t, err)
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))

	out := fromDocument(m)
	assert.Equal(t, in.PaymentID, out.PaymentID)
	assert.Equal(t, in.UserEmail, out.UserEmail)
	assert.True(t, in.TotalAmount.Equal(out.TotalAmount))
	assert.Equal(t, in.ShippingInfo, out.ShippingInfo)
	assert.Equal(t, created, out.CreatedAt)
	require.Len(t, out.Items, 1)
	assert.True(t, out.Items[0].Price.Equal(decimal.RequireFromString("10")))
	assert.Equal(t, 2, out.Items[0].Quantity)
}
