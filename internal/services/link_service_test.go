package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stanbotdev/stanbot/internal/domain"
)

// seedGroup creates a group with the given members and returns the service
// pair used by the link tests.
func seedGroup(t *testing.T, svc *RegistryService, group string, members ...string) {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.CreateGroup(ctx, group, 1); err != nil {
		t.Fatalf("CreateGroup(%q): %v", group, err)
	}
	for _, m := range members {
		if _, err := svc.CreateMember(ctx, group, m, 1); err != nil {
			t.Fatalf("CreateMember(%q): %v", m, err)
		}
	}
}

func TestLinkAdd_AndDuplicate(t *testing.T) {
	db := newTestDB(t)
	registry := NewRegistryService(db)
	links := NewLinkService(db, registry)
	ctx := context.Background()

	seedGroup(t, registry, "newjeans", "hanni", "minji")

	l, err := links.Add(ctx, "https://example.com/a", "newjeans", []string{"hanni", "minji"}, 7)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if l.AddedBy != 7 {
		t.Fatalf("AddedBy = %d, want 7", l.AddedBy)
	}
	var joins int64
	if err := db.Model(&domain.LinkMember{}).Where("link_id = ?", l.ID).Count(&joins).Error; err != nil {
		t.Fatalf("count joins: %v", err)
	}
	if joins != 2 {
		t.Fatalf("member joins = %d, want 2", joins)
	}

	if _, err := links.Add(ctx, "https://example.com/a", "newjeans", []string{"hanni"}, 7); !errors.Is(err, ErrLinkExists) {
		t.Fatalf("err = %v, want ErrLinkExists", err)
	}
	if _, err := links.Add(ctx, "https://example.com/b", "newjeans", []string{"nobody"}, 7); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("err = %v, want ErrMemberNotFound", err)
	}
	if _, err := links.Add(ctx, "https://example.com/b", "nope", []string{"hanni"}, 7); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("err = %v, want ErrGroupNotFound", err)
	}
}

func TestLinkRemove_VerifiesAttachment(t *testing.T) {
	db := newTestDB(t)
	registry := NewRegistryService(db)
	links := NewLinkService(db, registry)
	ctx := context.Background()

	seedGroup(t, registry, "newjeans", "hanni", "minji")
	if _, err := links.Add(ctx, "https://example.com/a", "newjeans", []string{"hanni"}, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Attached to hanni, not minji.
	if err := links.Remove(ctx, "newjeans", "minji", "https://example.com/a"); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("err = %v, want ErrLinkNotFound for unattached member", err)
	}
	if err := links.Remove(ctx, "newjeans", "hanni", "https://example.com/a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := links.Remove(ctx, "newjeans", "hanni", "https://example.com/a"); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("err = %v, want ErrLinkNotFound after removal", err)
	}
}

func TestLinkForceRemove(t *testing.T) {
	db := newTestDB(t)
	registry := NewRegistryService(db)
	links := NewLinkService(db, registry)
	ctx := context.Background()

	seedGroup(t, registry, "newjeans", "hanni")
	if _, err := links.Add(ctx, "https://example.com/a", "newjeans", []string{"hanni"}, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := links.ForceRemove(ctx, "https://example.com/a"); err != nil {
		t.Fatalf("ForceRemove: %v", err)
	}
	if err := links.ForceRemove(ctx, "https://example.com/a"); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("err = %v, want ErrLinkNotFound", err)
	}
}

func TestLinkTagUntag_Partitions(t *testing.T) {
	db := newTestDB(t)
	registry := NewRegistryService(db)
	links := NewLinkService(db, registry)
	ctx := context.Background()

	seedGroup(t, registry, "newjeans", "hanni")
	if _, err := links.Add(ctx, "https://example.com/a", "newjeans", []string{"hanni"}, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	for _, name := range []string{"funny", "dance"} {
		if _, err := registry.CreateTag(ctx, name, 1); err != nil {
			t.Fatalf("CreateTag(%q): %v", name, err)
		}
	}

	applied, unknown, err := links.Tag(ctx, "https://example.com/a", []string{"Funny", "dance", "nope"})
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	if len(applied.Added) != 2 {
		t.Fatalf("Added = %v, want 2 tags", applied.Added)
	}
	if len(unknown.Missing) != 1 || unknown.Missing[0] != "nope" {
		t.Fatalf("Missing = %v, want [nope]", unknown.Missing)
	}

	// Re-tagging lands in Duplicates.
	applied, _, err = links.Tag(ctx, "https://example.com/a", []string{"funny"})
	if err != nil {
		t.Fatalf("Tag again: %v", err)
	}
	if len(applied.Duplicates) != 1 || applied.Duplicates[0] != "funny" {
		t.Fatalf("Duplicates = %v, want [funny]", applied.Duplicates)
	}

	res, err := links.Untag(ctx, "https://example.com/a", []string{"funny", "nope", "dance"})
	if err != nil {
		t.Fatalf("Untag: %v", err)
	}
	if len(res.Removed) != 2 || len(res.Missing) != 1 {
		t.Fatalf("Untag res = %+v, want 2 removed 1 missing", res)
	}
	// A second untag of the same tag is a miss, not an error.
	res, err = links.Untag(ctx, "https://example.com/a", []string{"funny"})
	if err != nil || len(res.Missing) != 1 {
		t.Fatalf("repeat Untag res=%+v err=%v", res, err)
	}

	if _, _, err := links.Tag(ctx, "https://example.com/missing", []string{"funny"}); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("err = %v, want ErrLinkNotFound", err)
	}
}

func TestLinkRandom_Scoping(t *testing.T) {
	db := newTestDB(t)
	registry := NewRegistryService(db)
	links := NewLinkService(db, registry)
	ctx := context.Background()

	seedGroup(t, registry, "newjeans", "hanni", "minji")
	if _, err := registry.CreateTag(ctx, "funny", 1); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	hanniLink, err := links.Add(ctx, "https://example.com/hanni", "newjeans", []string{"hanni"}, 1)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := links.Add(ctx, "https://example.com/minji", "newjeans", []string{"minji"}, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, _, err := links.Tag(ctx, "https://example.com/hanni", []string{"funny"}); err != nil {
		t.Fatalf("Tag: %v", err)
	}

	// Member scope always lands on that member's only link.
	for i := 0; i < 5; i++ {
		l, err := links.Random(ctx, "newjeans", "hanni", "")
		if err != nil {
			t.Fatalf("Random: %v", err)
		}
		if l.ID != hanniLink.ID {
			t.Fatalf("Random returned %q, want hanni's link", l.URL)
		}
	}
	// Tag scope.
	l, err := links.Random(ctx, "", "", "funny")
	if err != nil {
		t.Fatalf("Random by tag: %v", err)
	}
	if l.ID != hanniLink.ID {
		t.Fatalf("Random by tag returned %q", l.URL)
	}
	// Unscoped works; an empty intersection is ErrLinkNotFound.
	if _, err := links.Random(ctx, "", "", ""); err != nil {
		t.Fatalf("Random unscoped: %v", err)
	}
	if _, err := links.Random(ctx, "newjeans", "minji", "funny"); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("err = %v, want ErrLinkNotFound", err)
	}
	if _, err := links.Random(ctx, "", "", "nope"); !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("err = %v, want ErrTagNotFound", err)
	}
}

func TestLinkRecent(t *testing.T) {
	db := newTestDB(t)
	registry := NewRegistryService(db)
	links := NewLinkService(db, registry)
	ctx := context.Background()

	seedGroup(t, registry, "newjeans", "hanni")
	urls := []string{
		"https://example.com/1",
		"https://example.com/2",
		"https://example.com/3",
	}
	for _, u := range urls {
		if _, err := links.Add(ctx, u, "newjeans", []string{"hanni"}, 1); err != nil {
			t.Fatalf("Add(%q): %v", u, err)
		}
	}

	got, total, err := links.Recent(ctx, "newjeans", "hanni", 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	if _, _, err := links.Recent(ctx, "newjeans", "nobody", 2); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("err = %v, want ErrMemberNotFound", err)
	}
}

func TestLinkWithTagAndBreakdown(t *testing.T) {
	db := newTestDB(t)
	registry := NewRegistryService(db)
	links := NewLinkService(db, registry)
	ctx := context.Background()

	seedGroup(t, registry, "newjeans", "hanni", "minji")
	for _, name := range []string{"funny", "dance"} {
		if _, err := registry.CreateTag(ctx, name, 1); err != nil {
			t.Fatalf("CreateTag(%q): %v", name, err)
		}
	}
	if _, err := links.Add(ctx, "https://example.com/h1", "newjeans", []string{"hanni"}, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := links.Add(ctx, "https://example.com/m1", "newjeans", []string{"minji"}, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	for _, url := range []string{"https://example.com/h1", "https://example.com/m1"} {
		if _, _, err := links.Tag(ctx, url, []string{"funny"}); err != nil {
			t.Fatalf("Tag(%q): %v", url, err)
		}
	}
	if _, _, err := links.Tag(ctx, "https://example.com/h1", []string{"dance"}); err != nil {
		t.Fatalf("Tag: %v", err)
	}

	urls, err := links.WithTag(ctx, "funny", "", "", 0)
	if err != nil {
		t.Fatalf("WithTag: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("urls = %v, want 2", urls)
	}

	urls, err = links.WithTag(ctx, "funny", "newjeans", "hanni", 0)
	if err != nil {
		t.Fatalf("WithTag scoped: %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://example.com/h1" {
		t.Fatalf("urls = %v, want hanni's link", urls)
	}

	if _, err := links.WithTag(ctx, "nope", "", "", 0); !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("err = %v, want ErrTagNotFound", err)
	}

	counts, err := links.TagBreakdown(ctx, "newjeans", "hanni")
	if err != nil {
		t.Fatalf("TagBreakdown: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("counts = %+v, want 2 tags", counts)
	}
	// Ordered by tag name.
	if counts[0].Tag != "dance" || counts[0].Links != 1 || counts[1].Tag != "funny" {
		t.Fatalf("counts = %+v", counts)
	}
}
