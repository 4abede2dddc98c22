package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
)

func setupTestDB(t *testing.T) *MongoRepository {
	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	repo := NewMongoRepository(db)
	require.NoError(t, repo.CreateIndexes(ctx))
	return repo
}

func sampleOrder(userID, paymentID string, created time.Time) Order {
	return Order{
		PaymentID:     paymentID,
		UserID:        userID,
		Items:         []Item{{ID: "a", Name: "A", Price: decimal.RequireFromString("10.00"), Quantity: 2}},
		TotalAmount:   decimal.RequireFromString("20.00"),
		ShippingInfo:  ShippingInfo{Name: "Ada", Address: "1 Loop", City: "Zurich", Zip: "8000"},
		PaymentStatus: StatusSucceeded,
		CreatedAt:     created,
	}
}

func TestMongoRepository_InsertAndFind(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	saved, err := repo.Insert(ctx, sampleOrder("u1", "pi_1", time.Now().UTC()))
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	got, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_1", got.PaymentID)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("20")))
	require.Len(t, got.Items, 1)

	byPayment, err := repo.FindByField(ctx, FieldPaymentID, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byPayment.ID)

	_, err = repo.FindByID(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.FindByField(ctx, FieldPaymentID, "pi_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoRepository_ListByUserNewestFirst(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, pid := range []string{"pi_old", "pi_new", "pi_mid"} {
		offsets := []time.Duration{0, 2 * time.Hour, time.Hour}
		_, err := repo.Insert(ctx, sampleOrder("u1", pid, base.Add(offsets[i])))
		require.NoError(t, err)
	}
	_, err := repo.Insert(ctx, sampleOrder("u2", "pi_other", base))
	require.NoError(t, err)

	list, err := repo.ListByUser(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "pi_new", list[0].PaymentID)
	assert.Equal(t, "pi_mid", list[1].PaymentID)
	assert.Equal(t, "pi_old", list[2].PaymentID)

	limited, err := repo.ListByUser(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestMongoRepository_ReadsForeignDocuments(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.collection.InsertOne(ctx, bson.M{"userId": "u9", "orderId": "pi_legacy", "totalAmount": 12.5})
	require.NoError(t, err)

	got, err := repo.FindByField(ctx, legacyFieldPaymentID, "pi_legacy")
	require.NoError(t, err)
	assert.Equal(t, "pi_legacy", got.PaymentID)
	assert.Equal(t, StatusUnknown, got.PaymentStatus)
	assert.Empty(t, got.Items)
}
