package testutils

import (
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/benoitkugler/linebox/logger"
)

var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })

func AssertEqual(t *testing.T, got, exp interface{}) {
	t.Helper()
	if !reflect.DeepEqual(exp, got) {
		t.Fatalf("expected\n%v\n got \n%v\n(-exp +got)\n%s", exp, got, cmp.Diff(exp, got, exportAll))
	}
}

// CapturedLogs accumulates the messages sent to the warning logger.
type CapturedLogs struct {
	stack []string
}

// CaptureLogs start accumulating logs output
func CaptureLogs() *CapturedLogs {
	out := &CapturedLogs{}
	logger.WarningLogger.SetOutput(out)
	return out
}

func (c *CapturedLogs) Write(p []byte) (int, error) {
	c.stack = append(c.stack, strings.TrimSpace(string(p)))
	return len(p), nil
}

func (c *CapturedLogs) Logs() []string { return c.stack }

func (c *CapturedLogs) AssertNoLogs(t *testing.T) {
	t.Helper()
	if len(c.stack) > 0 {
		t.Fatalf("expected no logs, got (%d): \n%s", len(c.stack), strings.Join(c.stack, "\n"))
	}
}

// CheckContains fails if no captured message contains the given fragment.
func (c *CapturedLogs) CheckContains(t *testing.T, fragment string) {
	t.Helper()
	for _, l := range c.stack {
		if strings.Contains(l, fragment) {
			return
		}
	}
	t.Fatalf("no log contains %q: %v", fragment, c.stack)
}
