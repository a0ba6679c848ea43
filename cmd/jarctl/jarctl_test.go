package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"jacksonjar/internal/domain"
	"jacksonjar/internal/sqlinline"
	"jacksonjar/internal/testutil"
)

func TestParseSince(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	got, err := parseSince("72h", now)
	if err != nil || !got.Equal(now.Add(-72*time.Hour)) {
		t.Fatalf("parseSince(72h) = %v, %v", got, err)
	}
	got, err = parseSince("2026-05-01", now)
	if err != nil || !got.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("parseSince(date) = %v, %v", got, err)
	}
	for _, bad := range []string{"", "-1h", "yesterday", "2027-01-01"} {
		if _, err := parseSince(bad, now); err == nil {
			t.Fatalf("parseSince(%q) accepted", bad)
		}
	}
}

func TestListMerchants(t *testing.T) {
	merchants := testutil.NewMerchantStore()
	donations := testutil.NewDonationStore(merchants)
	a := merchants.Seed(domain.Merchant{StripeUserID: "acct_1", Name: "Cafe", Email: "cafe@example.com"})
	merchants.Seed(domain.Merchant{StripeUserID: "acct_2", Email: "shop@example.com"})
	ctx := context.Background()
	if _, err := donations.Create(ctx, &domain.Donation{StripeChargeID: "ch_1", MerchantID: a.ID, Amount: 2000}); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := listMerchants(ctx, &out, merchants, donations); err != nil {
		t.Fatalf("listMerchants: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("output:\n%s", out.String())
	}
	if !strings.Contains(lines[1], "Cafe") || !strings.Contains(lines[1], "1 Jackson") {
		t.Fatalf("row 1 = %q", lines[1])
	}
	if !strings.Contains(lines[2], "0 Jacksons") {
		t.Fatalf("row 2 = %q", lines[2])
	}
}

type execRecorder struct {
	queries []string
}

func (e *execRecorder) Exec(_ context.Context, query string, _ ...any) (pgconn.CommandTag, error) {
	e.queries = append(e.queries, query)
	return pgconn.CommandTag{}, nil
}

func (e *execRecorder) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (e *execRecorder) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }

func TestApplySchemaRunsEveryStatement(t *testing.T) {
	rec := &execRecorder{}
	if err := applySchema(context.Background(), rec); err != nil {
		t.Fatalf("applySchema: %v", err)
	}
	if len(rec.queries) != len(sqlinline.Schema) {
		t.Fatalf("ran %d statements, want %d", len(rec.queries), len(sqlinline.Schema))
	}
	if !strings.Contains(rec.queries[0], "create table if not exists merchant") {
		t.Fatalf("merchant table must be created first: %q", rec.queries[0])
	}
}
