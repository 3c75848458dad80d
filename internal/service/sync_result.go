package service

import "github.com/noah-isme/attendance-sync-api/internal/dto"

// ResultAggregator collects per-operation outcomes in input order.
type ResultAggregator struct {
	results   []dto.SyncPushResult
	succeeded int
	failed    int
}

// NewResultAggregator sizes an aggregator for n operations.
func NewResultAggregator(n int) *ResultAggregator {
	return &ResultAggregator{results: make([]dto.SyncPushResult, 0, n)}
}

// Succeed records a successful operation.
func (a *ResultAggregator) Succeed(opID string) {
	a.results = append(a.results, dto.SyncPushResult{OpID: opID, OK: true})
	a.succeeded++
}

// Fail records a failed operation with its client-facing message.
func (a *ResultAggregator) Fail(opID, message string) {
	a.results = append(a.results, dto.SyncPushResult{OpID: opID, OK: false, Error: &message})
	a.failed++
}

// Succeeded returns the number of successful operations.
func (a *ResultAggregator) Succeeded() int { return a.succeeded }

// Failed returns the number of failed operations.
func (a *ResultAggregator) Failed() int { return a.failed }

// Response builds the push response. The cursor is reserved for incremental pull and is always nil.
func (a *ResultAggregator) Response() *dto.SyncPushResponse {
	return &dto.SyncPushResponse{Results: a.results, Cursor: nil}
}
