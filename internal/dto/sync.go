package dto

import "encoding/json"

// SyncOperation is one client-captured mutation replayed by a push.
type SyncOperation struct {
	OpID     string                     `json:"op_id" validate:"required"`
	Entity   string                     `json:"entity" validate:"required"`
	Op       string                     `json:"op" validate:"required"`
	EntityID string                     `json:"entity_id"`
	Payload  map[string]json.RawMessage `json:"payload"`
	ClientTS *string                    `json:"client_ts,omitempty"`
}

// SyncPushRequest is an ordered batch of operations.
type SyncPushRequest struct {
	Ops []SyncOperation `json:"ops" validate:"dive"`
}

// SyncPushResult reports the outcome of one operation.
type SyncPushResult struct {
	OpID  string  `json:"op_id"`
	OK    bool    `json:"ok"`
	Error *string `json:"error,omitempty"`
}

// SyncPushResponse lists results in input order.
type SyncPushResponse struct {
	Results []SyncPushResult `json:"results"`
	Cursor  *string          `json:"cursor"`
}

// SyncPullResponse is returned by the pull endpoint.
type SyncPullResponse struct {
	Cursor  *string                `json:"cursor"`
	Changes map[string]interface{} `json:"changes"`
}
