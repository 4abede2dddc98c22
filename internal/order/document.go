package order

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document field names in the orders collection.
const (
	FieldID            = "_id"
	FieldPaymentID     = "paymentId"
	FieldUserID        = "userId"
	FieldUserEmail     = "userEmail"
	FieldItems         = "items"
	FieldTotalAmount   = "totalAmount"
	FieldShippingInfo  = "shippingInfo"
	FieldPaymentStatus = "paymentStatus"
	FieldCreatedAt     = "createdAt"

	// legacyFieldPaymentID held the payment id in older documents.
	legacyFieldPaymentID = "orderId"
)

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encode amount %s: %w", d, err)
	}
	return v, nil
}

func toDocument(o Order) (bson.D, error) {
	total, err := toDecimal128(o.TotalAmount)
	if err != nil {
		return nil, err
	}
	items := make(bson.A, 0, len(o.Items))
	for _, it := range o.Items {
		price, err := toDecimal128(it.Price)
		if err != nil {
			return nil, err
		}
		item := bson.D{
			{Key: "id", Value: it.ID},
			{Key: "name", Value: it.Name},
			{Key: "price", Value: price},
			{Key: "quantity", Value: it.Quantity},
		}
		if it.ImageURL != nil {
			item = append(item, bson.E{Key: "imageUrl", Value: *it.ImageURL})
		}
		items = append(items, item)
	}

	return bson.D{
		{Key: FieldPaymentID, Value: o.PaymentID},
		{Key: FieldUserID, Value: o.UserID},
		{Key: FieldUserEmail, Value: o.UserEmail},
		{Key: FieldItems, Value: items},
		{Key: FieldTotalAmount, Value: total},
		{Key: FieldShippingInfo, Value: bson.D{
			{Key: "name", Value: o.ShippingInfo.Name},
			{Key: "address", Value: o.ShippingInfo.Address},
			{Key: "city", Value: o.ShippingInfo.City},
			{Key: "zip", Value: o.ShippingInfo.Zip},
		}},
		{Key: FieldPaymentStatus, Value: o.PaymentStatus},
		{Key: FieldCreatedAt, Value: primitive.NewDateTimeFromTime(o.CreatedAt)},
	}, nil
}

// fromDocument parses a loosely typed document. Missing or mistyped fields
// fall back to defaults instead of failing the read.
func fromDocument(doc bson.M) Order {
	o := Order{
		ID:            idString(doc[FieldID]),
		PaymentID:     stringField(doc, FieldPaymentID),
		UserID:        stringField(doc, FieldUserID),
		UserEmail:     stringField(doc, FieldUserEmail),
		Items:         []Item{},
		TotalAmount:   decimalValue(doc[FieldTotalAmount]),
		PaymentStatus: stringField(doc, FieldPaymentStatus),
		CreatedAt:     timeValue(doc[FieldCreatedAt]),
	}
	if o.PaymentID == "" {
		o.PaymentID = stringField(doc, legacyFieldPaymentID)
	}
	if o.PaymentID == "" {
		o.PaymentID = o.ID
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = StatusUnknown
	}

	if si, ok := asMap(doc[FieldShippingInfo]); ok {
		o.ShippingInfo = ShippingInfo{
			Name:    stringField(si, "name"),
			Address: stringField(si, "address"),
			City:    stringField(si, "city"),
			Zip:     stringField(si, "zip"),
		}
	}

	if raw, ok := doc[FieldItems].(bson.A); ok {
		for _, entry := range raw {
			m, ok := asMap(entry)
			if !ok {
				continue
			}
			it := Item{
				ID:       stringField(m, "id"),
				Name:     stringField(m, "name"),
				Price:    decimalValue(m["price"]),
				Quantity: intValue(m["quantity"]),
			}
			if img := stringField(m, "imageUrl"); img != "" {
				it.ImageURL = &img
			}
			o.Items = append(o.Items, it)
		}
	}
	return o
}

func asMap(v interface{}) (bson.M, bool) {
	switch m := v.(type) {
	case bson.M:
		return m, true
	case map[string]interface{}:
		return bson.M(m), true
	case bson.D:
		return m.Map(), true
	}
	return nil, false
}

func idString(v interface{}) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	}
	return ""
}

func stringField(m bson.M, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return ""
}

func decimalValue(v interface{}) decimal.Decimal {
	switch n := v.(type) {
	case primitive.Decimal128:
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d
		}
	case float64:
		if !math.IsNaN(n) && !math.IsInf(n, 0) {
			return decimal.NewFromFloat(n)
		}
	case int32:
		return decimal.NewFromInt32(n)
	case int64:
		return decimal.NewFromInt(n)
	case string:
		if d, err := decimal.NewFromString(n); err == nil {
			return d
		}
	}
	return decimal.Zero
}

func intValue(v interface{}) int {
	switch n := v.(type) {
	case int32:
		return int(n)
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

func timeValue(v interface{}) time.Time {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
