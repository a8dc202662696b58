package pipeline

import (
	"context"
	"time"

	"github.com/asaidimu/go-events"
	"github.com/google/uuid"
)

// PipelineEventType identifies the kind of state change an event reports.
type PipelineEventType string

// Emitted event types. Each mutating operation emits a success event, or a
// failed event carrying the error message.
const (
	EventRecordsUpdate    PipelineEventType = "records:update"
	EventFilterUpdate     PipelineEventType = "filter:update"
	EventFilterFailed     PipelineEventType = "filter:failed"
	EventSortUpdate       PipelineEventType = "sort:update"
	EventSortFailed       PipelineEventType = "sort:failed"
	EventPaginationUpdate PipelineEventType = "pagination:update"
	EventPaginationFailed PipelineEventType = "pagination:failed"
)

// PipelineEvent describes one pipeline state change for external observers
// (UI indicators, analytics, accessibility announcements). Observers read
// snapshots; they never write back into the pipeline.
type PipelineEvent struct {
	Type      PipelineEventType `json:"type"`
	Timestamp int64             `json:"timestamp"`
	Operation string            `json:"operation"`
	Pipeline  string            `json:"pipeline"`
	Input     any               `json:"input,omitempty"`
	Error     *string           `json:"error,omitempty"`
	Duration  *int64            `json:"duration,omitempty"`
	RowCount  int               `json:"rowCount"`
}

// EventCallback handles a single pipeline event.
type EventCallback func(ctx context.Context, event PipelineEvent) error

// EventPipeline wraps a Pipeline and emits a PipelineEvent for every mutating
// operation on a typed event bus. The base pipeline stays a pure state
// machine; this wrapper is the observer-idiom layer on top of it.
type EventPipeline[T any] struct {
	pipeline *Pipeline[T]
	bus      *events.TypedEventBus[PipelineEvent]
	id       string
}

// NewEventPipeline creates an event-emitting wrapper around the given
// pipeline.
func NewEventPipeline[T any](p *Pipeline[T]) (*EventPipeline[T], error) {
	bus, err := events.NewTypedEventBus[PipelineEvent](events.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return &EventPipeline[T]{
		pipeline: p,
		bus:      bus,
		id:       uuid.New().String(),
	}, nil
}

// ID returns the wrapper's unique instance id, carried on every event.
func (e *EventPipeline[T]) ID() string {
	return e.id
}

// Pipeline returns the wrapped pipeline for read access.
func (e *EventPipeline[T]) Pipeline() *Pipeline[T] {
	return e.pipeline
}

// Subscribe registers a callback for one event type and returns an
// unsubscribe function.
func (e *EventPipeline[T]) Subscribe(eventType PipelineEventType, cb EventCallback) func() {
	return e.bus.Subscribe(string(eventType), cb)
}

// Close shuts down the underlying event bus. The wrapped pipeline remains
// usable; only event delivery stops.
func (e *EventPipeline[T]) Close() error {
	return e.bus.Close()
}

// emit builds and publishes an event for a finished operation.
func (e *EventPipeline[T]) emit(successType, failedType PipelineEventType, operation string, input any, start time.Time, err error) {
	event := PipelineEvent{
		Type:      successType,
		Timestamp: time.Now().UnixMilli(),
		Operation: operation,
		Pipeline:  e.id,
		Input:     input,
		RowCount:  e.pipeline.RowCount(),
	}
	d := time.Since(start).Milliseconds()
	event.Duration = &d
	if err != nil {
		event.Type = failedType
		msg := err.Error()
		event.Error = &msg
	}
	e.bus.Emit(string(event.Type), event)
}

// SetRecords replaces the raw dataset and emits a records:update event.
func (e *EventPipeline[T]) SetRecords(records []T) {
	start := time.Now()
	e.pipeline.SetRecords(records)
	e.emit(EventRecordsUpdate, EventRecordsUpdate, "setRecords", len(records), start, nil)
}

// SetGlobalFilter updates the global filter and emits a filter:update event.
func (e *EventPipeline[T]) SetGlobalFilter(value string) {
	start := time.Now()
	e.pipeline.SetGlobalFilter(value)
	e.emit(EventFilterUpdate, EventFilterFailed, "setGlobalFilter", value, start, nil)
}

// SetGlobalPredicate replaces the global match predicate and emits a
// filter:update event.
func (e *EventPipeline[T]) SetGlobalPredicate(pred FilterPredicate) {
	start := time.Now()
	e.pipeline.SetGlobalPredicate(pred)
	e.emit(EventFilterUpdate, EventFilterFailed, "setGlobalPredicate", nil, start, nil)
}

// SetColumnFilter updates one column filter and emits a filter event.
func (e *EventPipeline[T]) SetColumnFilter(columnID, value string) error {
	start := time.Now()
	err := e.pipeline.SetColumnFilter(columnID, value)
	e.emit(EventFilterUpdate, EventFilterFailed, "setColumnFilter", map[string]string{"column": columnID, "value": value}, start, err)
	return err
}

// SetColumnPredicate replaces one column's match predicate and emits a
// filter event.
func (e *EventPipeline[T]) SetColumnPredicate(columnID string, pred FilterPredicate) error {
	start := time.Now()
	err := e.pipeline.SetColumnPredicate(columnID, pred)
	e.emit(EventFilterUpdate, EventFilterFailed, "setColumnPredicate", map[string]string{"column": columnID}, start, err)
	return err
}

// ClearColumnFilters removes all column filters and emits a filter:update
// event.
func (e *EventPipeline[T]) ClearColumnFilters() {
	start := time.Now()
	e.pipeline.ClearColumnFilters()
	e.emit(EventFilterUpdate, EventFilterFailed, "clearColumnFilters", nil, start, nil)
}

// SetSort replaces the sort descriptors and emits a sort event.
func (e *EventPipeline[T]) SetSort(descriptors ...SortDescriptor) error {
	start := time.Now()
	err := e.pipeline.SetSort(descriptors...)
	e.emit(EventSortUpdate, EventSortFailed, "setSort", descriptors, start, err)
	return err
}

// SetPagination updates pagination state and emits a pagination event.
func (e *EventPipeline[T]) SetPagination(pageIndex, pageSize int) error {
	start := time.Now()
	err := e.pipeline.SetPagination(pageIndex, pageSize)
	e.emit(EventPaginationUpdate, EventPaginationFailed, "setPagination", PaginationState{PageIndex: pageIndex, PageSize: pageSize}, start, err)
	return err
}
