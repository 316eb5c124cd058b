package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsBuilt = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_sessions_built_total",
			Help: "Total number of quiz sessions assembled",
		},
	)

	SubmissionsScored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_submissions_scored_total",
			Help: "Total number of scored quiz submissions",
		},
	)

	SubmissionPercentage = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_submission_percentage",
			Help:    "Distribution of submission percentages",
			Buckets: []float64{0, 25, 50, 75, 90, 100},
		},
	)

	AchievementsUnlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_achievements_unlocked_total",
			Help: "Total number of achievements unlocked, by rule",
		},
		[]string{"rule"},
	)

	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)
)

// Init registers every collector with the default registry. Call once per process.
func Init() {
	prometheus.MustRegister(SessionsBuilt)
	prometheus.MustRegister(SubmissionsScored)
	prometheus.MustRegister(SubmissionPercentage)
	prometheus.MustRegister(AchievementsUnlocked)
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
}

// Middleware records request counts and latencies under the given endpoint label.
func Middleware(endpoint string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		RequestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rec.status)).Inc()
		RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack keeps websocket upgrades working behind the middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
