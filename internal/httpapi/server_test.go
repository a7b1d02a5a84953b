package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stanbotdev/stanbot/internal/domain"
	"github.com/stanbotdev/stanbot/internal/feed"
	"github.com/stanbotdev/stanbot/internal/services"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:httpapi_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Group{}, &domain.Member{}, &domain.Link{}, &domain.LinkMember{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestRouter(t *testing.T, events chan feed.Event) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	r := gin.New()
	RegisterRoutes(r, &services.CommunityService{DB: db}, events)
	return r, db
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t, make(chan feed.Event, 1))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /healthz = %d; want 200", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, make(chan feed.Event, 1))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d; want 200", w.Code)
	}
	if w.Body.Len() == 0 {
		t.Fatalf("expected non-empty metrics exposition")
	}
}

func TestStats(t *testing.T) {
	r, db := newTestRouter(t, make(chan feed.Event, 1))

	g := domain.Group{ID: uuid.NewString(), Name: "newjeans", AddedBy: 1}
	if err := db.Create(&g).Error; err != nil {
		t.Fatalf("seed group: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /stats = %d; want 200", w.Code)
	}
	var body map[string]int64
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["groups"] != 1 || body["links"] != 0 {
		t.Fatalf("unexpected stats body: %v", body)
	}
}

func TestStats_CountError_NoTable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:httpapi_bare_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	r := gin.New()
	RegisterRoutes(r, &services.CommunityService{DB: db}, make(chan feed.Event, 1))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("GET /stats without tables = %d; want 500", w.Code)
	}
}

func TestIngestEvent(t *testing.T) {
	events := make(chan feed.Event, 1)
	r, _ := newTestRouter(t, events)

	body := `{
		"id": "100",
		"source_id": "42",
		"author_name": "Name",
		"author_handle": "handle",
		"text": "hello",
		"media": [{"url": "https://pbs.twimg.com/media/abc.jpg", "type": "image"}]
	}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/feed/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("POST /feed/events = %d; want 202 (body: %s)", w.Code, w.Body.String())
	}

	select {
	case ev := <-events:
		if ev.ID != "100" || ev.SourceID != "42" {
			t.Fatalf("unexpected event: %+v", ev)
		}
		if len(ev.Media) != 1 || ev.Media[0].Type != feed.MediaImage {
			t.Fatalf("unexpected media: %+v", ev.Media)
		}
	default:
		t.Fatalf("event not queued")
	}
}

func TestIngestEvent_Invalid(t *testing.T) {
	r, _ := newTestRouter(t, make(chan feed.Event, 1))

	// missing required source_id
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/feed/events", strings.NewReader(`{"id":"1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("POST /feed/events invalid = %d; want 400", w.Code)
	}
}

func TestIngestEvent_QueueFull(t *testing.T) {
	events := make(chan feed.Event, 1)
	events <- feed.Event{ID: "blocker", SourceID: "1"}
	r, _ := newTestRouter(t, events)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/feed/events",
		strings.NewReader(`{"id":"2","source_id":"1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("POST /feed/events full queue = %d; want 503", w.Code)
	}
}

func TestIngestEvent_VideoType(t *testing.T) {
	events := make(chan feed.Event, 1)
	r, _ := newTestRouter(t, events)

	body := `{"id":"3","source_id":"1","media":[{"url":"https://video.twimg.com/v.mp4","type":"VIDEO"}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/feed/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("POST /feed/events = %d; want 202", w.Code)
	}
	ev := <-events
	if ev.Media[0].Type != feed.MediaVideo {
		t.Fatalf("media type = %q; want video", ev.Media[0].Type)
	}
}
