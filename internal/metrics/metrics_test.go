package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/membership/internal/membership"
)

// counterValue はレジストリから指定メトリクスのカウンタ値を取得する。
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() == name {
			var sum float64
			for _, m := range mf.GetMetric() {
				sum += m.GetCounter().GetValue()
			}
			return sum
		}
	}
	t.Fatalf("%s metric not found", name)
	return 0
}

// TestRecordRegistration_IncrementsCounterWithLabel は登録カウンタが種別ラベル付きで増加することを検証する。
func TestRecordRegistration_IncrementsCounterWithLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRegistration("NAVER")
	c.RecordRegistration("NAVER")
	c.RecordRegistration("KAKAO")

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "membership_registrations_total" {
			found = true
			if len(mf.GetMetric()) != 2 {
				t.Fatalf("expected 2 label combinations, got %d", len(mf.GetMetric()))
			}
			for _, m := range mf.GetMetric() {
				label := m.GetLabel()[0].GetValue()
				val := m.GetCounter().GetValue()
				switch label {
				case "NAVER":
					if val != 2 {
						t.Errorf("registrations_total{membership_type=NAVER} = %v, want 2", val)
					}
				case "KAKAO":
					if val != 1 {
						t.Errorf("registrations_total{membership_type=KAKAO} = %v, want 1", val)
					}
				default:
					t.Errorf("unexpected label value: %s", label)
				}
			}
		}
	}
	if !found {
		t.Error("membership_registrations_total metric not found")
	}
}

// TestRecordDeletion_IncrementsCounter は削除カウンタが増加することを検証する。
func TestRecordDeletion_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordDeletion()
	c.RecordDeletion()

	if val := counterValue(t, reg, "membership_deletions_total"); val != 2 {
		t.Errorf("deletions_total = %v, want 2", val)
	}
}

// TestRecordAccrual_IncrementsBothCounters は積立回数と積立ポイントの両方が記録されることを検証する。
func TestRecordAccrual_IncrementsBothCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAccrual(100)
	c.RecordAccrual(50)

	if val := counterValue(t, reg, "membership_accruals_total"); val != 2 {
		t.Errorf("accruals_total = %v, want 2", val)
	}
	if val := counterValue(t, reg, "membership_points_accrued_total"); val != 150 {
		t.Errorf("points_accrued_total = %v, want 150", val)
	}
}

// TestRecordHTTPStatus_IncrementsCounterWithLabel はHTTPステータスカウンタがラベル付きで増加することを検証する。
func TestRecordHTTPStatus_IncrementsCounterWithLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range metrics {
		if mf.GetName() == "membership_http_status_total" {
			for _, m := range mf.GetMetric() {
				label := m.GetLabel()[0].GetValue()
				val := m.GetCounter().GetValue()
				switch label {
				case "200":
					if val != 2 {
						t.Errorf("http_status_total{status_code=200} = %v, want 2", val)
					}
				case "404":
					if val != 1 {
						t.Errorf("http_status_total{status_code=404} = %v, want 1", val)
					}
				}
			}
		}
	}
}

// TestRecordRequestLatency_ObservesHistogram はレイテンシのヒストグラムに値が記録されることを検証する。
func TestRecordRequestLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequestLatency(100 * time.Millisecond)
	c.RecordRequestLatency(2 * time.Second)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "membership_request_latency_seconds" {
			found = true
			h := mf.GetMetric()[0].GetHistogram()
			if h.GetSampleCount() != 2 {
				t.Errorf("sample_count = %d, want 2", h.GetSampleCount())
			}
			// 合計は0.1 + 2.0 = 2.1秒
			if h.GetSampleSum() < 2.0 || h.GetSampleSum() > 2.2 {
				t.Errorf("sample_sum = %v, want ~2.1", h.GetSampleSum())
			}
		}
	}
	if !found {
		t.Error("membership_request_latency_seconds metric not found")
	}
}

// TestMetricsHandler_ReturnsPrometheusFormat は/metricsエンドポイントがPrometheus形式で返すことを検証する。
func TestMetricsHandler_ReturnsPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRegistration("LINE")
	c.RecordDeletion()
	c.RecordAccrual(200)
	c.RecordHTTPStatus(201)
	c.RecordRequestLatency(500 * time.Millisecond)

	handler := Handler(reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	expectedMetrics := []string{
		"membership_registrations_total",
		"membership_deletions_total",
		"membership_accruals_total",
		"membership_points_accrued_total",
		"membership_http_status_total",
		"membership_request_latency_seconds",
	}

	for _, metric := range expectedMetrics {
		if !strings.Contains(bodyStr, metric) {
			t.Errorf("response body does not contain %q", metric)
		}
	}
}

// TestCollector_ImplementsMetricsRecorderInterface はCollectorがサービス層のインターフェースを実装することを検証する。
func TestCollector_ImplementsMetricsRecorderInterface(t *testing.T) {
	reg := prometheus.NewRegistry()
	var _ membership.MetricsRecorder = NewCollector(reg)
}

// TestMultipleCollectors_IndependentRegistries は異なるレジストリで独立に動作することを検証する。
func TestMultipleCollectors_IndependentRegistries(t *testing.T) {
	reg1 := prometheus.NewRegistry()
	reg2 := prometheus.NewRegistry()
	c1 := NewCollector(reg1)
	c2 := NewCollector(reg2)

	c1.RecordDeletion()
	c2.RecordDeletion()
	c2.RecordDeletion()

	if val := counterValue(t, reg1, "membership_deletions_total"); val != 1 {
		t.Errorf("reg1 deletions = %v, want 1", val)
	}
	if val := counterValue(t, reg2, "membership_deletions_total"); val != 2 {
		t.Errorf("reg2 deletions = %v, want 2", val)
	}
}
