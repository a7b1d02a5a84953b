package repo

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestCreateAccount_DuplicateSource(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := CreateAccount(ctx, db, "42", "newjeans_official"); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if _, err := CreateAccount(ctx, db, "42", "other"); err == nil {
		t.Fatalf("duplicate source id should fail")
	}

	acc, err := GetAccountBySource(ctx, db, "42")
	if err != nil {
		t.Fatalf("GetAccountBySource: %v", err)
	}
	if acc.Handle != "newjeans_official" {
		t.Fatalf("unexpected account: %+v", acc)
	}
}

func TestListSourceIDs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, _ = CreateAccount(ctx, db, "7", "b")
	_, _ = CreateAccount(ctx, db, "3", "a")

	ids, err := ListSourceIDs(ctx, db)
	if err != nil {
		t.Fatalf("ListSourceIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}
}

func TestSubscriptions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, _ = CreateAccount(ctx, db, "42", "newjeans_official")

	if err := CreateSubscription(ctx, db, "42", 300); err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	if err := CreateSubscription(ctx, db, "42", 100); err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	if err := CreateSubscription(ctx, db, "42", 300); err == nil {
		t.Fatalf("duplicate pair should fail")
	}

	chans, err := ChannelsForSource(ctx, db, "42")
	if err != nil {
		t.Fatalf("ChannelsForSource: %v", err)
	}
	if !reflect.DeepEqual(chans, []int64{100, 300}) {
		t.Fatalf("channels = %v; want ascending [100 300]", chans)
	}

	// Unknown source yields an empty slice, not an error.
	chans, err = ChannelsForSource(ctx, db, "unknown")
	if err != nil {
		t.Fatalf("ChannelsForSource unknown: %v", err)
	}
	if len(chans) != 0 {
		t.Fatalf("expected no channels, got %v", chans)
	}
}

func TestDeleteSubscription(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_ = CreateSubscription(ctx, db, "42", 300)

	if err := DeleteSubscription(ctx, db, "42", 300); err != nil {
		t.Fatalf("DeleteSubscription: %v", err)
	}
	if err := DeleteSubscription(ctx, db, "42", 300); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v; want ErrNotFound", err)
	}
}

func TestEnsureChannel_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := EnsureChannel(ctx, db, 300); err != nil {
		t.Fatalf("EnsureChannel: %v", err)
	}
	if err := EnsureChannel(ctx, db, 300); err != nil {
		t.Fatalf("EnsureChannel twice: %v", err)
	}
}

func TestChannelAuditing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_ = EnsureChannel(ctx, db, 300)
	_ = EnsureChannel(ctx, db, 400)

	if err := SetChannelAuditing(ctx, db, 300, true); err != nil {
		t.Fatalf("SetChannelAuditing: %v", err)
	}
	if err := SetChannelAuditing(ctx, db, 999, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown channel err = %v; want ErrNotFound", err)
	}

	ids, err := AuditingChannels(ctx, db)
	if err != nil {
		t.Fatalf("AuditingChannels: %v", err)
	}
	if !reflect.DeepEqual(ids, []int64{300}) {
		t.Fatalf("auditing channels = %v; want [300]", ids)
	}

	if err := SetChannelAuditing(ctx, db, 300, false); err != nil {
		t.Fatalf("SetChannelAuditing off: %v", err)
	}
	ids, _ = AuditingChannels(ctx, db)
	if len(ids) != 0 {
		t.Fatalf("auditing channels after off = %v; want empty", ids)
	}
}
