package logfields

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"BuildID", KeyBuildID, "b1", BuildID("b1")},
		{"Stage", KeyStage, "index", Stage("index")},
		{"Label", KeyLabel, "Usage", Label("Usage")},
		{"Page", KeyPage, "manual/usage.html", Page("manual/usage.html")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Source", KeySource, "docs/usage.md", Source("docs/usage.md")},
		{"Output", KeyOutput, "./site", Output("./site")},
		{"Error", KeyError, "boom", Error(errors.New("boom"))},
		{"NilError", KeyError, "", Error(nil)},
	}
	for _, c := range cases {
		if c.attr.Key != c.attrKey {
			t.Errorf("%s: key = %q, want %q", c.name, c.attr.Key, c.attrKey)
		}
		if got := c.attr.Value.String(); got != c.attrVal {
			t.Errorf("%s: value = %q, want %q", c.name, got, c.attrVal)
		}
	}
}

func TestNumericHelpers(t *testing.T) {
	if a := Count(3); a.Key != KeyCount || a.Value.Int64() != 3 {
		t.Errorf("Count = %v", a)
	}
	if a := DurationMS(1.5); a.Key != KeyDurationMS || a.Value.Float64() != 1.5 {
		t.Errorf("DurationMS = %v", a)
	}
	if a := Since(time.Now().Add(-time.Second)); a.Value.Float64() < 1000 {
		t.Errorf("Since = %v, want >= 1000ms", a)
	}
}

type structuredErr struct{}

func (structuredErr) Error() string { return "flat" }
func (structuredErr) LogValue() slog.Value {
	return slog.GroupValue(slog.String("category", "filesystem"))
}

func TestErrorKeepsStructuredErrors(t *testing.T) {
	a := Error(structuredErr{})
	if a.Key != KeyError {
		t.Fatalf("key = %q", a.Key)
	}
	v := a.Value.Resolve()
	if v.Kind() != slog.KindGroup || v.Group()[0].Value.String() != "filesystem" {
		t.Errorf("value = %v, want category group", v)
	}
}
