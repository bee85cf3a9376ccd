package model

import "time"

// TaskType is one of the analysis job kinds that make up the task graph in
// spec.md §4.3.
type TaskType string

const (
	TaskFullScan          TaskType = "full_scan"
	TaskFetchTransactions TaskType = "fetch_transactions"
	TaskAnalyzeApprovals  TaskType = "analyze_approvals"
	TaskAnalyzeContracts  TaskType = "analyze_contracts"
	TaskAnalyzeActivity   TaskType = "analyze_activity"
	TaskAnalyzeLPStake    TaskType = "analyze_lp_stake"
)

// JobStatus is the lifecycle state of an AnalysisJob.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// AnalysisJob is a single unit of work in the durable FIFO described in
// spec.md §3/§4.3. Claim semantics guarantee at most one worker ever holds a
// given job in JobProcessing.
type AnalysisJob struct {
	ID          string         `bson:"_id,omitempty" json:"id"`
	WalletID    string         `bson:"wallet_id" json:"walletId"`
	TaskType    TaskType       `bson:"task_type" json:"taskType"`
	Status      JobStatus      `bson:"status" json:"status"`
	Attempts    int            `bson:"attempts" json:"attempts"`
	Payload     map[string]any `bson:"payload,omitempty" json:"payload,omitempty"`
	CreatedAt   time.Time      `bson:"created_at" json:"createdAt"`
	ProcessedAt *time.Time     `bson:"processed_at,omitempty" json:"processedAt,omitempty"`
	Error       string         `bson:"error,omitempty" json:"error,omitempty"`
}
