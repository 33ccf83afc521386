package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Workflow metrics
	WorkflowStages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflowsvc_workflow_stage_total",
			Help: "Total number of workflow stage executions",
		},
		[]string{"stage", "status"}, // status: success|error
	)

	WorkflowStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workflowsvc_workflow_stage_duration_seconds",
			Help:    "Workflow stage duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)

	WorkflowRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflowsvc_workflow_runs_total",
			Help: "Total number of workflow runs by operation and outcome",
		},
		[]string{"operation", "outcome"}, // outcome: success|<error_type>
	)

	// Agent metrics
	AgentCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflowsvc_agent_calls_total",
			Help: "Total number of agent calls",
		},
		[]string{"agent", "model", "status"}, // status: success|error
	)

	AgentLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workflowsvc_agent_latency_seconds",
			Help:    "Agent execution latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"agent", "model"},
	)

	AgentTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflowsvc_agent_tokens_total",
			Help: "Total tokens used by agents",
		},
		[]string{"agent", "model", "type"}, // type: input|output
	)

	// Transcript source metrics
	TranscriptAPICalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflowsvc_transcript_api_calls_total",
			Help: "Total number of caption source API calls",
		},
		[]string{"endpoint", "status"}, // status: success|error
	)

	TranscriptAPILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workflowsvc_transcript_api_latency_seconds",
			Help:    "Caption source API latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"endpoint"},
	)

	// HTTP metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflowsvc_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "code"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workflowsvc_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
		[]string{"method", "route"},
	)

	RateLimitRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflowsvc_rate_limit_rejections_total",
			Help: "Requests rejected by the admission limiter",
		},
		[]string{"scope"},
	)
)

var initOnce sync.Once

// Init registers all metrics with Prometheus. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(WorkflowStages)
		prometheus.MustRegister(WorkflowStageDuration)
		prometheus.MustRegister(WorkflowRuns)

		prometheus.MustRegister(AgentCalls)
		prometheus.MustRegister(AgentLatency)
		prometheus.MustRegister(AgentTokens)

		prometheus.MustRegister(TranscriptAPICalls)
		prometheus.MustRegister(TranscriptAPILatency)

		prometheus.MustRegister(HTTPRequests)
		prometheus.MustRegister(HTTPDuration)
		prometheus.MustRegister(RateLimitRejections)
	})
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordStage records one workflow stage execution
func RecordStage(stage string, duration time.Duration, err error) {
	WorkflowStages.WithLabelValues(stage, status(err)).Inc()
	WorkflowStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordWorkflowRun records the outcome of a whole /process or /aggregate run
func RecordWorkflowRun(operation, outcome string) {
	WorkflowRuns.WithLabelValues(operation, outcome).Inc()
}

// RecordAgentCall records an agent invocation
func RecordAgentCall(agent, model string, latency time.Duration, inputTokens, outputTokens int, err error) {
	AgentCalls.WithLabelValues(agent, model, status(err)).Inc()
	AgentLatency.WithLabelValues(agent, model).Observe(latency.Seconds())

	if inputTokens > 0 {
		AgentTokens.WithLabelValues(agent, model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		AgentTokens.WithLabelValues(agent, model, "output").Add(float64(outputTokens))
	}
}

// RecordTranscriptAPICall records a call to the caption source
func RecordTranscriptAPICall(endpoint string, latency time.Duration, err error) {
	TranscriptAPICalls.WithLabelValues(endpoint, status(err)).Inc()
	TranscriptAPILatency.WithLabelValues(endpoint).Observe(latency.Seconds())
}

// RecordHTTPRequest records a served HTTP request
func RecordHTTPRequest(method, route string, code int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRateLimitRejection counts a 429 issued by the admission limiter
func RecordRateLimitRejection(scope string) {
	RateLimitRejections.WithLabelValues(scope).Inc()
}
