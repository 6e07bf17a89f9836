package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dependencies wires collaborators into the ledger. Everything has a working
// default: nop logger, wall clock, uuid intent ids.
type Dependencies struct {
	Logger *zap.Logger
	Clock  func() time.Time
	IDs    func() string
}

// Ledger tracks intents, their versions, and their links to externally
// created hypotheses and workflows, with a full audit trail per intent.
// Mutations are serialized per intent id; version increments and audit
// appends for one intent are linearized.
type Ledger struct {
	logger *zap.Logger
	clock  func() time.Time
	ids    func() string

	mu           sync.RWMutex
	entries      map[string]*intentEntry
	byHypothesis map[string]map[string]struct{}
	byWorkflow   map[string]map[string]struct{}
}

// intentEntry owns one intent's record and trail. entry.mu is the per-intent
// linearization point.
type intentEntry struct {
	mu     sync.Mutex
	record Intent
	trail  []AuditEvent
}

func New(deps Dependencies) *Ledger {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.IDs == nil {
		deps.IDs = uuid.NewString
	}
	return &Ledger{
		logger:       deps.Logger,
		clock:        deps.Clock,
		ids:          deps.IDs,
		entries:      map[string]*intentEntry{},
		byHypothesis: map[string]map[string]struct{}{},
		byWorkflow:   map[string]map[string]struct{}{},
	}
}

// CreateInput configures a new intent.
type CreateInput struct {
	Description string
	CreatedBy   string
	Status      IntentStatus
	Parameters  map[string]any
}

// CreateIntent creates a new intent at version 1 with empty link sets and
// appends its CREATED audit event.
func (l *Ledger) CreateIntent(_ context.Context, input CreateInput) (Intent, error) {
	if input.Description == "" {
		return Intent{}, fmt.Errorf("create intent: %w", ErrDescriptionEmpty)
	}
	status := input.Status
	if status == "" {
		status = IntentStatusActive
	}
	now := l.clock().UTC()
	record := Intent{
		ID:             l.ids(),
		Description:    input.Description,
		CreatedBy:      input.CreatedBy,
		Status:         status,
		CurrentVersion: 1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if input.Parameters != nil {
		record.Parameters = make(map[string]any, len(input.Parameters))
		for key, value := range input.Parameters {
			record.Parameters[key] = value
		}
	}

	entry := &intentEntry{record: record}
	appendEvent(entry, EventCreated, input.CreatedBy, now, map[string]any{
		"description": record.Description,
		"status":      string(record.Status),
	})

	l.mu.Lock()
	l.entries[record.ID] = entry
	l.mu.Unlock()

	l.logger.Info("intent created",
		zap.String("intent_id", record.ID),
		zap.String("created_by", input.CreatedBy),
	)
	return CloneIntent(record), nil
}

// UpdateInput describes a content update. Zero-valued fields are unchanged;
// Parameters, when set, replaces the intent's parameter map wholesale.
type UpdateInput struct {
	Description  string
	Parameters   map[string]any
	Status       IntentStatus
	UpdatedBy    string
	ChangeReason string
}

// UpdateIntent applies a content update under the same identity, increments
// the version by exactly one, and appends an UPDATED audit event carrying the
// change reason. Existing links stay attached to the historical version that
// produced them.
func (l *Ledger) UpdateIntent(_ context.Context, intentID string, input UpdateInput) (Intent, error) {
	entry, ok := l.entry(intentID)
	if !ok {
		return Intent{}, fmt.Errorf("update intent %q: %w", intentID, ErrIntentNotFound)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := l.clock().UTC()
	previousVersion := entry.record.CurrentVersion
	if input.Description != "" {
		entry.record.Description = input.Description
	}
	if input.Parameters != nil {
		params := make(map[string]any, len(input.Parameters))
		for key, value := range input.Parameters {
			params[key] = value
		}
		entry.record.Parameters = params
	}
	if input.Status != "" {
		entry.record.Status = input.Status
	}
	entry.record.CurrentVersion = previousVersion + 1
	entry.record.UpdatedAt = now

	appendEvent(entry, EventUpdated, input.UpdatedBy, now, map[string]any{
		"change_reason": input.ChangeReason,
		"from_version":  previousVersion,
		"to_version":    entry.record.CurrentVersion,
	})
	l.logger.Info("intent updated",
		zap.String("intent_id", intentID),
		zap.Int("version", entry.record.CurrentVersion),
		zap.String("change_reason", input.ChangeReason),
	)
	return CloneIntent(entry.record), nil
}

// LinkHypothesis adds a hypothesis id to the intent's current membership set
// and appends a HYPOTHESIS_LINKED event recording the intent version active
// at link time.
func (l *Ledger) LinkHypothesis(ctx context.Context, intentID, hypothesisID, actor string) (Intent, error) {
	return l.link(ctx, intentID, hypothesisID, actor, hypothesisRef)
}

// UnlinkHypothesis removes a hypothesis id from the current membership set
// and appends a HYPOTHESIS_UNLINKED event. Relinking later is permitted; the
// trail records every transition.
func (l *Ledger) UnlinkHypothesis(ctx context.Context, intentID, hypothesisID, actor string) (Intent, error) {
	return l.unlink(ctx, intentID, hypothesisID, actor, hypothesisRef)
}

// LinkWorkflow behaves like LinkHypothesis for workflow ids.
func (l *Ledger) LinkWorkflow(ctx context.Context, intentID, workflowID, actor string) (Intent, error) {
	return l.link(ctx, intentID, workflowID, actor, workflowRef)
}

// UnlinkWorkflow behaves like UnlinkHypothesis for workflow ids.
func (l *Ledger) UnlinkWorkflow(ctx context.Context, intentID, workflowID, actor string) (Intent, error) {
	return l.unlink(ctx, intentID, workflowID, actor, workflowRef)
}

// refKind selects which link set and reverse index an operation touches.
type refKind int

const (
	hypothesisRef refKind = iota
	workflowRef
)

func (k refKind) payloadKey() string {
	if k == hypothesisRef {
		return "hypothesis_id"
	}
	return "workflow_id"
}

func (k refKind) linkedEvent() AuditEventType {
	if k == hypothesisRef {
		return EventHypothesisLinked
	}
	return EventWorkflowLinked
}

func (k refKind) unlinkedEvent() AuditEventType {
	if k == hypothesisRef {
		return EventHypothesisUnlinked
	}
	return EventWorkflowUnlinked
}

func (k refKind) set(record *Intent) *[]string {
	if k == hypothesisRef {
		return &record.HypothesisIDs
	}
	return &record.WorkflowIDs
}

func (l *Ledger) index(kind refKind) map[string]map[string]struct{} {
	if kind == hypothesisRef {
		return l.byHypothesis
	}
	return l.byWorkflow
}

func (l *Ledger) link(_ context.Context, intentID, refID, actor string, kind refKind) (Intent, error) {
	if refID == "" {
		return Intent{}, fmt.Errorf("link: %w", ErrRefIDEmpty)
	}
	entry, ok := l.entry(intentID)
	if !ok {
		return Intent{}, fmt.Errorf("link %q to intent %q: %w", refID, intentID, ErrIntentNotFound)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	set := kind.set(&entry.record)
	if containsString(*set, refID) {
		return Intent{}, fmt.Errorf("link %q to intent %q: %w", refID, intentID, ErrAlreadyLinked)
	}
	*set = append(*set, refID)
	sort.Strings(*set)

	now := l.clock().UTC()
	entry.record.UpdatedAt = now
	appendEvent(entry, kind.linkedEvent(), actor, now, map[string]any{
		kind.payloadKey(): refID,
		"intent_version":  entry.record.CurrentVersion,
	})

	l.mu.Lock()
	index := l.index(kind)
	if index[refID] == nil {
		index[refID] = map[string]struct{}{}
	}
	index[refID][intentID] = struct{}{}
	l.mu.Unlock()

	return CloneIntent(entry.record), nil
}

func (l *Ledger) unlink(_ context.Context, intentID, refID, actor string, kind refKind) (Intent, error) {
	if refID == "" {
		return Intent{}, fmt.Errorf("unlink: %w", ErrRefIDEmpty)
	}
	entry, ok := l.entry(intentID)
	if !ok {
		return Intent{}, fmt.Errorf("unlink %q from intent %q: %w", refID, intentID, ErrIntentNotFound)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	set := kind.set(&entry.record)
	if !containsString(*set, refID) {
		return Intent{}, fmt.Errorf("unlink %q from intent %q: %w", refID, intentID, ErrNotLinked)
	}
	*set = removeString(*set, refID)

	now := l.clock().UTC()
	entry.record.UpdatedAt = now
	appendEvent(entry, kind.unlinkedEvent(), actor, now, map[string]any{
		kind.payloadKey(): refID,
		"intent_version":  entry.record.CurrentVersion,
	})

	l.mu.Lock()
	index := l.index(kind)
	delete(index[refID], intentID)
	if len(index[refID]) == 0 {
		delete(index, refID)
	}
	l.mu.Unlock()

	return CloneIntent(entry.record), nil
}

// GetIntent returns a snapshot of the intent, reporting absence through the
// boolean rather than an error.
func (l *Ledger) GetIntent(_ context.Context, intentID string) (Intent, bool) {
	entry, ok := l.entry(intentID)
	if !ok {
		return Intent{}, false
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return CloneIntent(entry.record), true
}

// GetIntentsByHypothesis returns every intent whose CURRENT hypothesis set
// contains the id. Historical membership is visible only in audit trails.
func (l *Ledger) GetIntentsByHypothesis(_ context.Context, hypothesisID string) []Intent {
	return l.intentsByRef(hypothesisID, hypothesisRef)
}

// GetIntentsByWorkflow returns every intent whose CURRENT workflow set
// contains the id.
func (l *Ledger) GetIntentsByWorkflow(_ context.Context, workflowID string) []Intent {
	return l.intentsByRef(workflowID, workflowRef)
}

func (l *Ledger) intentsByRef(refID string, kind refKind) []Intent {
	l.mu.RLock()
	var entries []*intentEntry
	for intentID := range l.index(kind)[refID] {
		if entry, ok := l.entries[intentID]; ok {
			entries = append(entries, entry)
		}
	}
	l.mu.RUnlock()

	out := make([]Intent, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		out = append(out, CloneIntent(entry.record))
		entry.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetAuditTrail returns the intent's full event sequence, oldest first. The
// result is nil for unknown intents; a known intent always has at least its
// CREATED event.
func (l *Ledger) GetAuditTrail(_ context.Context, intentID string) []AuditEvent {
	entry, ok := l.entry(intentID)
	if !ok {
		return nil
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	out := make([]AuditEvent, len(entry.trail))
	for i := range entry.trail {
		out[i] = CloneAuditEvent(entry.trail[i])
	}
	return out
}

// PurgeIntent removes the intent, its audit trail, and its reverse-index
// entries. This is the only sanctioned deletion of audit events. Idempotent.
func (l *Ledger) PurgeIntent(_ context.Context, intentID, actor string) {
	l.mu.Lock()
	entry, ok := l.entries[intentID]
	if ok {
		delete(l.entries, intentID)
		for _, index := range []map[string]map[string]struct{}{l.byHypothesis, l.byWorkflow} {
			for refID, intents := range index {
				delete(intents, intentID)
				if len(intents) == 0 {
					delete(index, refID)
				}
			}
		}
	}
	l.mu.Unlock()

	if ok && entry != nil {
		l.logger.Info("intent purged",
			zap.String("intent_id", intentID),
			zap.String("actor", actor),
		)
	}
}

func (l *Ledger) entry(intentID string) (*intentEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.entries[intentID]
	return entry, ok
}

// appendEvent assumes the caller holds entry.mu (or exclusive ownership).
func appendEvent(entry *intentEntry, eventType AuditEventType, actor string, now time.Time, payload map[string]any) {
	entry.trail = append(entry.trail, AuditEvent{
		Type:      eventType,
		IntentID:  entry.record.ID,
		Sequence:  len(entry.trail) + 1,
		Timestamp: now,
		Actor:     actor,
		Payload:   payload,
	})
}

func containsString(set []string, value string) bool {
	for _, item := range set {
		if item == value {
			return true
		}
	}
	return false
}

func removeString(set []string, value string) []string {
	out := set[:0]
	for _, item := range set {
		if item != value {
			out = append(out, item)
		}
	}
	return out
}
