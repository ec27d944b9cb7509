package observability

import (
	"testing"
	"time"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordEncode(1, true, 12*time.Microsecond)
	RecordDecode(1, true, 64, 8*time.Microsecond)
	RecordDecode(2, false, 0, 3*time.Microsecond)
	RecordHTTPRequest("GET", "/healthz", 200, 1*time.Millisecond)
}
