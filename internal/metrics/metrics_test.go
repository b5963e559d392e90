package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := NewMetrics()

	m.IncrementCounter(CounterPhysicalRequests)
	m.IncrementCounter(CounterPhysicalRequests)
	m.IncrementCounterBy(CounterCyberRequests, 5)

	counters := m.GetCounters()
	require.Equal(t, int64(2), counters[CounterPhysicalRequests])
	require.Equal(t, int64(5), counters[CounterCyberRequests])
}

func TestGauges(t *testing.T) {
	m := NewMetrics()

	m.SetGauge(GaugeZoneModels, 8)
	m.SetGauge(GaugeZoneModels, 3)

	require.Equal(t, int64(3), m.GetGauges()[GaugeZoneModels])
}

func TestTimers(t *testing.T) {
	m := NewMetrics()

	m.RecordTimer(TimerClassifyPhysical, 10)
	m.RecordTimer(TimerClassifyPhysical, 30)
	m.RecordTimer(TimerClassifyPhysical, 20)

	timer := m.GetTimers()[TimerClassifyPhysical]
	require.Equal(t, int64(3), timer.Count)
	require.Equal(t, int64(60), timer.TotalTimeMs)
	require.Equal(t, 20.0, timer.AverageTimeMs)
	require.Equal(t, int64(10), timer.MinTimeMs)
	require.Equal(t, int64(30), timer.MaxTimeMs)
}

func TestErrorRates(t *testing.T) {
	m := NewMetrics()

	m.RecordSuccess(ErrorRateStoreAppend)
	m.RecordSuccess(ErrorRateStoreAppend)
	m.RecordSuccess(ErrorRateStoreAppend)
	m.RecordError(ErrorRateStoreAppend)

	rate := m.GetErrorRates()[ErrorRateStoreAppend]
	require.Equal(t, int64(4), rate.Total)
	require.Equal(t, int64(1), rate.Errors)
	require.Equal(t, 25.0, rate.ErrorRate)
}

func TestHealthChecks(t *testing.T) {
	m := NewMetrics()

	m.SetHealth("event_store", true)
	m.SetHealth("redis", false)

	checks := m.GetHealthChecks()
	require.True(t, checks["event_store"])
	require.False(t, checks["redis"])

	m.SetHealth("redis", true)
	require.True(t, m.GetHealthChecks()["redis"])
}

func TestAllMetricsShape(t *testing.T) {
	m := NewMetrics()
	m.IncrementCounter(CounterAlertsPublished)

	all := m.GetAllMetrics()
	require.Contains(t, all, "uptime_seconds")
	require.Contains(t, all, "counters")
	require.Contains(t, all, "gauges")
	require.Contains(t, all, "timers")
	require.Contains(t, all, "error_rates")
	require.Contains(t, all, "health_checks")
}

func TestConcurrentRecording(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			m.IncrementCounter(CounterCyberRequests)
			m.RecordTimer(TimerClassifyCyber, int64(n))
			m.RecordSuccess(ErrorRateInference)
		}(i)
	}
	wg.Wait()

	require.Equal(t, int64(50), m.GetCounters()[CounterCyberRequests])

	timer := m.GetTimers()[TimerClassifyCyber]
	require.Equal(t, int64(50), timer.Count)
	require.Equal(t, int64(0), timer.MinTimeMs)
	require.Equal(t, int64(49), timer.MaxTimeMs)

	require.Equal(t, int64(50), m.GetErrorRates()[ErrorRateInference].Total)
}
