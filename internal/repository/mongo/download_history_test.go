package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mediadownloader/web/internal/domain"
)

func TestDownloadDocRoundtrip(t *testing.T) {
	id := primitive.NewObjectID()
	record := domain.DownloadRecord{
		ID:          id.Hex(),
		Channel:     "c1",
		MediaID:     "m1",
		StartNumber: 3,
		Count:       5,
		RequestedAt: time.Date(2026, 2, 19, 10, 0, 0, 123000000, time.UTC),
	}

	got := fromDownloadDoc(toDownloadDoc(record))
	if got.ID != record.ID || got.Channel != record.Channel || got.MediaID != record.MediaID {
		t.Errorf("identity: got %+v, want %+v", got, record)
	}
	if got.StartNumber != record.StartNumber || got.Count != record.Count {
		t.Errorf("range: got %d+%d, want %d+%d", got.StartNumber, got.Count, record.StartNumber, record.Count)
	}
	if !got.RequestedAt.Equal(record.RequestedAt) {
		t.Errorf("RequestedAt: got %v, want %v", got.RequestedAt, record.RequestedAt)
	}
}

func TestToDownloadDocIgnoresForeignID(t *testing.T) {
	doc := toDownloadDoc(domain.DownloadRecord{ID: "not-an-object-id", Channel: "c1"})
	if !doc.ID.IsZero() {
		t.Fatalf("expected empty id, got %s", doc.ID.Hex())
	}
	if doc.RequestedAt != 0 {
		t.Fatalf("expected zero timestamp, got %d", doc.RequestedAt)
	}
}

func TestFromDownloadDocZeroTimestamp(t *testing.T) {
	got := fromDownloadDoc(downloadDoc{Channel: "c1"})
	if !got.RequestedAt.IsZero() || got.ID != "" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestDownloadHistoryIntegration(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := Connect(ctx, uri, options.Client().SetConnectTimeout(3*time.Second))
	if err != nil {
		t.Skipf("MongoDB not available at %s: %v", uri, err)
	}
	dbName := "mediaweb_test_" + primitive.NewObjectID().Hex()
	defer func() {
		_ = client.Database(dbName).Drop(context.Background())
		_ = client.Disconnect(context.Background())
	}()

	repo := NewDownloadHistoryRepository(client, dbName)
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := repo.Record(ctx, domain.DownloadRecord{
			Channel:     "c1",
			MediaID:     "m1",
			StartNumber: i + 1,
			Count:       1,
			RequestedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	records, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].StartNumber != 3 || records[1].StartNumber != 2 {
		t.Fatalf("expected newest first, got %+v", records)
	}
	if records[0].ID == "" {
		t.Fatalf("expected generated id")
	}
}
