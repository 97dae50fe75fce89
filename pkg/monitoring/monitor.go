package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the service collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	QuizSubmissions  prometheus.Counter
	LessonsCompleted prometheus.Counter
	CoursesCompleted prometheus.Counter
	PointsAwarded    *prometheus.CounterVec
	InsightsFlagged  *prometheus.CounterVec
	PublishFailures  prometheus.Counter
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		QuizSubmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progress_quiz_submissions_total",
			Help: "Quiz attempts recorded",
		}),
		LessonsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progress_lessons_completed_total",
			Help: "Lesson completions recorded",
		}),
		CoursesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progress_courses_completed_total",
			Help: "Course completions recorded (first completion only)",
		}),
		PointsAwarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "progress_points_awarded_total",
				Help: "Points appended to the ledger",
			},
			[]string{"source"},
		),
		InsightsFlagged: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "progress_insights_flagged_total",
				Help: "Insights that raised an alert",
			},
			[]string{"kind"},
		),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progress_event_publish_failures_total",
			Help: "Activity messages that could not be published",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.RequestCounter,
		r.RequestDuration,
		r.QuizSubmissions,
		r.LessonsCompleted,
		r.CoursesCompleted,
		r.PointsAwarded,
		r.InsightsFlagged,
		r.PublishFailures,
	)
	return r
}

// Registry exposes the underlying registry, mainly for tests
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) ObserveQuizSubmission(points int) {
	if r == nil {
		return
	}
	r.QuizSubmissions.Inc()
	r.PointsAwarded.WithLabelValues("QUIZ").Add(float64(max(points, 0)))
}

func (r *Recorder) ObserveLessonCompleted() {
	if r == nil {
		return
	}
	r.LessonsCompleted.Inc()
}

func (r *Recorder) ObserveCourseCompleted(points int) {
	if r == nil {
		return
	}
	r.CoursesCompleted.Inc()
	r.PointsAwarded.WithLabelValues("COURSE").Add(float64(max(points, 0)))
}

func (r *Recorder) ObserveInsightFlagged(kind string) {
	if r == nil {
		return
	}
	r.InsightsFlagged.WithLabelValues(kind).Inc()
}

func (r *Recorder) ObservePublishFailure() {
	if r == nil {
		return
	}
	r.PublishFailures.Inc()
}

func (r *Recorder) MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if r == nil {
			return
		}

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		r.RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		r.RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

func (r *Recorder) PrometheusHandler() gin.HandlerFunc {
	h := promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
