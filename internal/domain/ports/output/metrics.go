package ports

import "time"

type MetricsProvider interface {
	IncrementGRPCRequests(method, status string)
	RecordGRPCRequestDuration(method, status string, duration time.Duration)

	IncrementDatabaseQueries(queryType string, success bool)
	RecordDatabaseQueryDuration(queryType string, duration time.Duration)

	IncrementPipelineRuns(outcome string)
	RecordPipelineRunDuration(outcome string, duration time.Duration)
	IncrementPipelineFailures(stage string)
	IncrementSearchAttempts(success bool)

	IncrementPostOperations(operation string, success bool)
	IncrementMediaOperations(operation string, success bool)
	IncrementPublishOperations(operation string, success bool)

	SetServiceHealth(healthy bool)
}
