package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRequest(t *testing.T) {
	RequestsTotal.Reset()
	RequestDuration.Reset()

	RecordRequest("zai-glm-4.6", "ok", 1.5)

	count := testutil.ToFloat64(RequestsTotal.WithLabelValues("zai-glm-4.6", "ok"))
	if count != 1 {
		t.Errorf("RequestsTotal = %v, want 1", count)
	}
}

func TestRecordTokens(t *testing.T) {
	TokensTotal.Reset()

	RecordTokens("zai-glm-4.6", 100, 50)

	inputCount := testutil.ToFloat64(TokensTotal.WithLabelValues("zai-glm-4.6", "input"))
	if inputCount != 100 {
		t.Errorf("input tokens = %v, want 100", inputCount)
	}

	outputCount := testutil.ToFloat64(TokensTotal.WithLabelValues("zai-glm-4.6", "output"))
	if outputCount != 50 {
		t.Errorf("output tokens = %v, want 50", outputCount)
	}
}

func TestRecordProbe(t *testing.T) {
	ProbesTotal.Reset()

	RecordProbe("ok")
	RecordProbe("ok")
	RecordProbe("auth")

	okCount := testutil.ToFloat64(ProbesTotal.WithLabelValues("ok"))
	if okCount != 2 {
		t.Errorf("ok probes = %v, want 2", okCount)
	}
	authCount := testutil.ToFloat64(ProbesTotal.WithLabelValues("auth"))
	if authCount != 1 {
		t.Errorf("auth probes = %v, want 1", authCount)
	}
}
