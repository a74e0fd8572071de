package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestWriteEmitsFlatJSON(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Warn("export.bookkeeping_failed", map[string]any{"application_id": "app-1", "err": errors.New("db down")})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if entry["level"] != "warn" {
		t.Fatalf("unexpected level %v", entry["level"])
	}
	if entry["msg"] != "export.bookkeeping_failed" {
		t.Fatalf("unexpected msg %v", entry["msg"])
	}
	if entry["application_id"] != "app-1" || entry["err"] != "db down" {
		t.Fatalf("unexpected fields %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts field")
	}
}
