package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

func TestMustLoad_Success_NoPanic(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MustLoad should not panic on valid defaults, got: %v", r)
		}
	}()
	cfg := MustLoad()
	if cfg.DBPath == "" {
		t.Fatalf("unexpected empty config from MustLoad")
	}
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")

	t.Setenv("HTTP_PORT", "8088")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")

	t.Setenv("DB_PATH", "db.sqlite")
	t.Setenv("FLUSH_INTERVAL", "30s")
	t.Setenv("LEADERBOARD_SIZE", "15")

	// use invalids for parse to fall back to defaults
	t.Setenv("SEND_RATE", "x")     // -> default 1.0
	t.Setenv("SEND_BURST", "nope") // -> default 5

	t.Setenv("FEED_PROXY_HOST", "vxtwitter.com")
	t.Setenv("FEED_MEDIA_HOSTS", " twimg , , cdn.example ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.BotToken != "token" {
		t.Fatalf("bot token unexpected: %+v", cfg)
	}
	if cfg.HTTPPort != "8088" || cfg.GinMode != "release" {
		t.Fatalf("http fields unexpected: %+v", cfg)
	}
	if cfg.LogLevel != "warn" || !cfg.LogPretty {
		t.Fatalf("logging unexpected: %+v", cfg)
	}
	if cfg.DBPath != "db.sqlite" || cfg.FlushInterval != 30*time.Second || cfg.LeaderboardSize != 15 {
		t.Fatalf("app fields unexpected: %+v", cfg)
	}
	if cfg.SendRate != 1.0 || cfg.SendBurst != 5 {
		t.Fatalf("rate limiting unexpected: %+v", cfg)
	}
	if cfg.Feed.ProxyHost != "vxtwitter.com" {
		t.Fatalf("proxy host unexpected: %+v", cfg.Feed)
	}
	if !reflect.DeepEqual(cfg.Feed.MediaHosts, []string{"twimg", "cdn.example"}) {
		t.Fatalf("media hosts unexpected: %#v", cfg.Feed.MediaHosts)
	}
}

// --- Load validations (each case triggers exactly one validation error) ---

func TestLoad_ValidationErrors(t *testing.T) {
	t.Run("missing TELEGRAM_BOT_TOKEN", func(t *testing.T) {
		if _, err := Load(); err == nil || !containsErr(err, "TELEGRAM_BOT_TOKEN") {
			t.Fatalf("expected bot token validation error, got: %v", err)
		}
	})
	t.Run("invalid LOG_LEVEL", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("LOG_LEVEL", "verbose")
		if _, err := Load(); err == nil || !containsErr(err, "LOG_LEVEL") {
			t.Fatalf("expected LOG_LEVEL validation error, got: %v", err)
		}
	})
	t.Run("empty HTTP_PORT via spaces", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("HTTP_PORT", "   ")
		if _, err := Load(); err == nil || !containsErr(err, "HTTP_PORT must not be empty") {
			t.Fatalf("expected port validation error, got: %v", err)
		}
	})
	t.Run("empty DB_PATH", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("DB_PATH", "   ")
		if _, err := Load(); err == nil || !containsErr(err, "DB_PATH must not be empty") {
			t.Fatalf("expected DB_PATH validation error, got: %v", err)
		}
	})
	t.Run("flush interval non-positive", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("FLUSH_INTERVAL", "0s")
		if _, err := Load(); err == nil || !containsErr(err, "FLUSH_INTERVAL") {
			t.Fatalf("expected FLUSH_INTERVAL validation error, got: %v", err)
		}
	})
	t.Run("leaderboard size < 1", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("LEADERBOARD_SIZE", "0")
		if _, err := Load(); err == nil || !containsErr(err, "LEADERBOARD_SIZE") {
			t.Fatalf("expected LEADERBOARD_SIZE validation error, got: %v", err)
		}
	})
	t.Run("send rate non-positive", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("SEND_RATE", "-1")
		if _, err := Load(); err == nil || !containsErr(err, "SEND_RATE") {
			t.Fatalf("expected SEND_RATE validation error, got: %v", err)
		}
	})
	t.Run("send burst < 1", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("SEND_BURST", "0")
		if _, err := Load(); err == nil || !containsErr(err, "SEND_BURST") {
			t.Fatalf("expected SEND_BURST validation error, got: %v", err)
		}
	})
	t.Run("empty FEED_PROXY_HOST", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("FEED_PROXY_HOST", "   ")
		if _, err := Load(); err == nil || !containsErr(err, "FEED_PROXY_HOST") {
			t.Fatalf("expected FEED_PROXY_HOST validation error, got: %v", err)
		}
	})
	t.Run("empty FEED_MEDIA_HOSTS", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("FEED_MEDIA_HOSTS", " , ,")
		if _, err := Load(); err == nil || !containsErr(err, "FEED_MEDIA_HOSTS") {
			t.Fatalf("expected FEED_MEDIA_HOSTS validation error, got: %v", err)
		}
	})
}

// --- helpers ---

func TestHelpers_getenv(t *testing.T) {
	t.Setenv("X_EMPTY", "")
	if getenv("X_EMPTY", "d") != "d" {
		t.Fatalf("getenv should fall back to default on empty var")
	}
	t.Setenv("X_SET", "val")
	if getenv("X_SET", "d") != "val" {
		t.Fatalf("getenv should read set value")
	}
}

func TestHelpers_getfloat_getint_getdur(t *testing.T) {
	t.Setenv("F_VALID", "3.14")
	if getfloat("F_VALID", 0) != 3.14 {
		t.Fatalf("getfloat parse failed")
	}
	t.Setenv("F_BAD", "nope")
	if getfloat("F_BAD", 1.23) != 1.23 {
		t.Fatalf("getfloat default on bad parse failed")
	}

	t.Setenv("I_VALID", "42")
	if getint("I_VALID", 0) != 42 {
		t.Fatalf("getint parse failed")
	}
	t.Setenv("I_BAD", "x")
	if getint("I_BAD", 7) != 7 {
		t.Fatalf("getint default on bad parse failed")
	}

	t.Setenv("D_VALID", "150ms")
	if getdur("D_VALID", time.Second) != 150*time.Millisecond {
		t.Fatalf("getdur parse failed")
	}
	t.Setenv("D_BAD", "zzz")
	if getdur("D_BAD", 2*time.Second) != 2*time.Second {
		t.Fatalf("getdur default on bad parse failed")
	}
}

func TestHelpers_getbool(t *testing.T) {
	trueVals := []string{"1", "true", "TRUE", " yes ", "Y", "on", "On"}
	for i, v := range trueVals {
		k := "B_T_" + string('a'+rune(i))
		t.Setenv(k, v)
		if !getbool(k, false) {
			t.Fatalf("getbool(%q) = false; want true", v)
		}
	}
	falseVals := []string{"0", "false", "FALSE", " no ", "N", "off", "Off"}
	for i, v := range falseVals {
		k := "B_F_" + string('a'+rune(i))
		t.Setenv(k, v)
		if getbool(k, true) {
			t.Fatalf("getbool(%q) = true; want false", v)
		}
	}
	// default on unset/empty
	t.Setenv("B_EMPTY", "")
	if !getbool("B_EMPTY", true) || getbool("B_EMPTY", false) {
		t.Fatalf("getbool default behavior unexpected")
	}
}

func TestHelpers_splitCSV(t *testing.T) {
	if out := splitCSV(""); out != nil {
		t.Fatalf("splitCSV empty should return nil")
	}
	in := " a, ,b ,  c  ,"
	want := []string{"a", "b", "c"}
	if got := splitCSV(in); !reflect.DeepEqual(got, want) {
		t.Fatalf("splitCSV mismatch: got %#v want %#v", got, want)
	}
}

// containsErr reports whether err's message contains the given substring.
func containsErr(err error, want string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), want)
}
