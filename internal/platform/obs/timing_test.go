package obs

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestTimeLogsRequestIDAndError(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	defer func() { log.Logger = prev }()

	ctx := WithRequestID(context.Background(), "req-1")
	if got := RequestID(ctx); got != "req-1" {
		t.Fatalf("RequestID() = %q", got)
	}

	err := errors.New("boom")
	Time(ctx, "op.fail")(&err)

	out := buf.String()
	for _, want := range []string{`"req_id":"req-1"`, `"op":"op.fail"`, `"error":"boom"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output %q missing %s", out, want)
		}
	}
}
