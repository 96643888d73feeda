package tracing

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestSpanTree(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "engine.reload", "")
	if len(root.TraceID) != 16 {
		t.Fatalf("trace id = %q", root.TraceID)
	}
	_, child := StartChildSpan(ctx, "catalog.load")
	child.SetAttr("records", 3)
	child.End()
	root.End()

	if child.TraceID != root.TraceID {
		t.Fatalf("child trace id %q != root %q", child.TraceID, root.TraceID)
	}
	if len(root.Children) != 1 || root.Children[0] != child {
		t.Fatalf("children = %v", root.Children)
	}
	if TraceID(ctx) != root.TraceID {
		t.Fatal("TraceID(ctx) should return the root trace id")
	}
}

func TestChildWithoutParentStartsTrace(t *testing.T) {
	_, span := StartChildSpan(context.Background(), "orphan")
	if span.TraceID == "" {
		t.Fatal("orphan span should get a trace id")
	}
}

func TestLogMarksFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx, root := StartSpan(context.Background(), "build", "abc")
	_, child := StartChildSpan(ctx, "parse")
	child.Fail(errors.New("bad yaml"))
	root.End()
	root.End()
	root.Log(logger)

	out := buf.String()
	if !strings.Contains(out, "span=build") || !strings.Contains(out, "span failed") || !strings.Contains(out, "bad yaml") {
		t.Fatalf("log output missing spans:\n%s", out)
	}
}
