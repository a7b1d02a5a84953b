package services

import (
	"context"
	"errors"
	"testing"
)

func TestEnsureAccount_Idempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubscriptionService(db)
	ctx := context.Background()

	a, err := svc.EnsureAccount(ctx, "44196397", "elonmusk")
	if err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}
	again, err := svc.EnsureAccount(ctx, "44196397", "whatever")
	if err != nil {
		t.Fatalf("EnsureAccount again: %v", err)
	}
	if again.ID != a.ID || again.Handle != "elonmusk" {
		t.Fatalf("re-follow returned %+v, want original row", again)
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubscriptionService(db)
	ctx := context.Background()

	if err := svc.Subscribe(ctx, "src1", 100); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if err := svc.Subscribe(ctx, "src1", 100); !errors.Is(err, ErrAlreadySubscribed) {
		t.Fatalf("err = %v, want ErrAlreadySubscribed", err)
	}
	// Same source, different channel is fine.
	if err := svc.Subscribe(ctx, "src1", 300); err != nil {
		t.Fatalf("Subscribe second channel: %v", err)
	}

	if err := svc.Unsubscribe(ctx, "src1", 100); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	if err := svc.Unsubscribe(ctx, "src1", 100); !errors.Is(err, ErrNotSubscribed) {
		t.Fatalf("err = %v, want ErrNotSubscribed", err)
	}
}

func TestDestinationsFor_Ordered(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubscriptionService(db)
	ctx := context.Background()

	for _, ch := range []int64{300, 100, 200} {
		if err := svc.Subscribe(ctx, "src1", ch); err != nil {
			t.Fatalf("Subscribe(%d): %v", ch, err)
		}
	}
	if err := svc.Subscribe(ctx, "src2", 999); err != nil {
		t.Fatalf("Subscribe src2: %v", err)
	}

	dests, err := svc.DestinationsFor(ctx, "src1")
	if err != nil {
		t.Fatalf("DestinationsFor: %v", err)
	}
	if len(dests) != 3 || dests[0] != 100 || dests[1] != 200 || dests[2] != 300 {
		t.Fatalf("dests = %v, want [100 200 300]", dests)
	}

	// Unknown source is empty, not an error.
	dests, err = svc.DestinationsFor(ctx, "unknown")
	if err != nil {
		t.Fatalf("DestinationsFor unknown: %v", err)
	}
	if len(dests) != 0 {
		t.Fatalf("dests = %v, want empty", dests)
	}
}

func TestSourcesAndAll(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubscriptionService(db)
	ctx := context.Background()

	if _, err := svc.EnsureAccount(ctx, "b", "bee"); err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}
	if _, err := svc.EnsureAccount(ctx, "a", "ay"); err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}
	if err := svc.Subscribe(ctx, "a", 100); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	sources, err := svc.Sources(ctx)
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if len(sources) != 2 || sources[0] != "a" || sources[1] != "b" {
		t.Fatalf("sources = %v, want [a b]", sources)
	}

	all, err := svc.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 1 || all[0].SourceID != "a" || all[0].ChannelID != 100 {
		t.Fatalf("all = %+v", all)
	}
}

func TestChannelAuditing(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubscriptionService(db)
	ctx := context.Background()

	// SetAuditing registers the channel on first contact.
	if err := svc.SetAuditing(ctx, 100, true); err != nil {
		t.Fatalf("SetAuditing: %v", err)
	}
	if err := svc.SetAuditing(ctx, 200, true); err != nil {
		t.Fatalf("SetAuditing: %v", err)
	}
	if err := svc.SetAuditing(ctx, 200, false); err != nil {
		t.Fatalf("SetAuditing off: %v", err)
	}

	chans, err := svc.AuditingChannels(ctx)
	if err != nil {
		t.Fatalf("AuditingChannels: %v", err)
	}
	if len(chans) != 1 || chans[0] != 100 {
		t.Fatalf("chans = %v, want [100]", chans)
	}
}
