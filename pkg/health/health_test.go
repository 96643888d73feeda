package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func up(context.Context) ComponentHealth { return ComponentHealth{Status: StatusUp} }

func down(context.Context) ComponentHealth {
	return ComponentHealth{Status: StatusDown, Message: "unreachable"}
}

func degraded(context.Context) ComponentHealth {
	return ComponentHealth{Status: StatusDegraded}
}

func TestRunWorstStatusWins(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]Check
		want   Status
	}{
		{"no checks", nil, StatusUp},
		{"all up", map[string]Check{"index": up, "redis": up}, StatusUp},
		{"degraded", map[string]Check{"index": up, "redis": degraded}, StatusDegraded},
		{"down", map[string]Check{"index": down, "redis": degraded}, StatusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			for name, check := range tt.checks {
				c.Register(name, check)
			}
			report := c.Run(context.Background())
			if report.Status != tt.want {
				t.Fatalf("status = %s, want %s", report.Status, tt.want)
			}
			if len(report.Components) != len(tt.checks) {
				t.Fatalf("components = %d", len(report.Components))
			}
		})
	}
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker()
	c.Register("index", down)
	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest("GET", "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	var report Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Components["index"].Message != "unreachable" {
		t.Fatalf("report = %+v", report)
	}

	rec = httptest.NewRecorder()
	c.LiveHandler()(rec, httptest.NewRequest("GET", "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("live status = %d", rec.Code)
	}
}

func TestReadyWhenDegraded(t *testing.T) {
	c := NewChecker()
	c.Register("index", up)
	c.Register("redis", degraded)
	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest("GET", "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for a degraded optional dependency", rec.Code)
	}
	var report Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Status != StatusDegraded {
		t.Fatalf("report status = %s", report.Status)
	}
}

func TestPanickingCheckIsDown(t *testing.T) {
	c := NewChecker()
	c.Register("broken", func(context.Context) ComponentHealth { panic("boom") })
	report := c.Run(context.Background())
	got := report.Components["broken"]
	if report.Status != StatusDown || got.Status != StatusDown || got.Latency == "" {
		t.Fatalf("report = %+v", report)
	}
}

func TestCheckTimeout(t *testing.T) {
	c := NewChecker()
	c.checkTimeout = 10 * time.Millisecond
	c.Register("slow", func(ctx context.Context) ComponentHealth {
		<-ctx.Done()
		return ComponentHealth{Status: StatusDown, Message: ctx.Err().Error()}
	})
	report := c.Run(context.Background())
	if report.Components["slow"].Message != context.DeadlineExceeded.Error() {
		t.Fatalf("report = %+v", report)
	}
}
