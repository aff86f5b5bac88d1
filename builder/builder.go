package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/spektr-org/autovis/engine"
	"github.com/spektr-org/autovis/schema"
	"github.com/spektr-org/autovis/statestore"
)

// ============================================================================
// VISUALIZATION BUILDER — chart type / styles / axes mapping reconciliation
// ============================================================================
// Two handlers govern every transition:
//
//	chart type change → keep the user's column bindings when the new chart
//	                    type can draw the same columns
//	data change       → re-derive chart type, mapping and styles when the
//	                    current choice can no longer render the new columns
//
// Neither handler fails. Anything that cannot proceed either keeps the
// previous state or clears chart type, mapping and styles, which callers
// render as a raw table.
// ============================================================================

// ErrNoVisualization is returned by Spec when no chart type is selected or no
// data has arrived yet.
var ErrNoVisualization = errors.New("no visualization selected")

// Builder owns the visualization state of one view.
type Builder struct {
	mu        sync.Mutex
	persistMu sync.Mutex

	id       string
	registry *engine.Registry
	logger   *slog.Logger
	store    statestore.Store
	stateKey string
	initial  *statestore.State

	chartType   *cell[engine.ChartType]
	styles      *cell[*StyleState]
	axesMapping *cell[engine.NameMapping]
	data        *cell[*schema.Dataset]

	showRawTable bool
	initialized  bool
}

// New creates a builder backed by reg.
func New(reg *engine.Registry, opts ...Option) *Builder {
	cfg := applyOptions(opts)
	id := uuid.NewString()

	key := cfg.stateKey
	if key == "" {
		key = id
	}

	return &Builder{
		id:          id,
		registry:    reg,
		logger:      cfg.logger.With("builder_id", id),
		store:       cfg.store,
		stateKey:    key,
		initial:     cfg.initial,
		chartType:   newCell(equalComparable[engine.ChartType], identity[engine.ChartType]),
		styles:      newCell(equalStyleState, cloneStyleState),
		axesMapping: newCell(equalMapping, cloneMapping),
		data:        newCell(equalDataset, identity[*schema.Dataset]),
	}
}

// ID returns the builder's unique ID.
func (b *Builder) ID() string { return b.id }

// Registry returns the registry backing this builder.
func (b *Builder) Registry() *engine.Registry { return b.registry }

// ============================================================================
// INIT / RESET
// ============================================================================

// Init seeds the cells once. Persisted state takes precedence over the
// initial state option; unknown chart types are ignored. Calling Init again
// is a no-op.
func (b *Builder) Init(ctx context.Context) error {
	b.mu.Lock()
	if b.initialized {
		b.mu.Unlock()
		return nil
	}

	var seed *statestore.State
	if b.initial != nil {
		s := *b.initial
		seed = &s
	}
	if b.store != nil {
		persisted, err := b.store.Load(ctx, b.stateKey)
		switch {
		case err == nil:
			seed = &persisted
		case errors.Is(err, statestore.ErrNotFound):
		default:
			b.mu.Unlock()
			return fmt.Errorf("load builder state: %w", err)
		}
	}

	if seed != nil {
		b.seed(*seed)
	}
	b.initialized = true
	notify := b.flush()
	b.mu.Unlock()

	b.logger.Debug("builder initialized", "state_key", b.stateKey, "seeded", seed != nil)
	notify()
	return nil
}

func (b *Builder) seed(s statestore.State) {
	if s.ChartType != "" {
		if _, ok := b.registry.VisualizationConfig(s.ChartType); !ok {
			b.logger.Debug("ignoring persisted chart type", "chart_type", s.ChartType)
			return
		}
		b.chartType.set(s.ChartType)
		b.showRawTable = s.ChartType == engine.ChartTable
	}
	if s.AxesMapping != nil {
		b.axesMapping.set(s.AxesMapping)
	}
	if s.StyleOptions != nil && s.ChartType != "" {
		b.styles.set(&StyleState{Type: s.ChartType, Styles: s.StyleOptions})
	}
}

// Initialized reports whether Init has run since creation or the last Reset.
func (b *Builder) Initialized() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.initialized
}

// Reset clears all four cells and drops every subscription. Subscribers are
// not notified. Persisted state is left alone.
func (b *Builder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.chartType.reset()
	b.styles.reset()
	b.axesMapping.reset()
	b.data.reset()
	b.showRawTable = false
	b.initialized = false
	b.logger.Debug("builder reset")
}

// ============================================================================
// MUTATORS
// ============================================================================

// SetData replaces the dataset and reconciles chart type, mapping and styles.
func (b *Builder) SetData(data *schema.Dataset) Snapshot {
	return b.mutate(func() {
		if b.data.set(data) {
			b.onDataChange()
		}
	})
}

// HandleData normalizes raw rows and passes the result to SetData.
func (b *Builder) HandleData(rows []schema.Row, fields []schema.Field) Snapshot {
	return b.SetData(schema.Normalize(rows, fields))
}

// SetCurrentChartType switches the chart type. Types without a registered
// config are ignored.
func (b *Builder) SetCurrentChartType(t engine.ChartType) Snapshot {
	return b.mutate(func() {
		if _, ok := b.registry.VisualizationConfig(t); !ok {
			b.logger.Debug("ignoring unknown chart type", "chart_type", t)
			return
		}
		b.showRawTable = t == engine.ChartTable
		if b.chartType.set(t) {
			b.onChartTypeChange(t)
		}
	})
}

// SetStyles replaces the style state. nil clears it.
func (b *Builder) SetStyles(s *StyleState) Snapshot {
	return b.mutate(func() {
		b.styles.set(s)
	})
}

// UpdateStyles merges partial into the current styles. It is a no-op while
// no styles are set.
func (b *Builder) UpdateStyles(partial map[string]any) Snapshot {
	return b.mutate(func() {
		cur := b.styles.value
		if cur == nil {
			return
		}
		b.styles.set(&StyleState{Type: cur.Type, Styles: engine.MergeStyles(cur.Styles, partial)})
	})
}

// SetAxesMapping replaces the axes mapping as given. It does not reconcile;
// a stale mapping is repaired by the next data change.
func (b *Builder) SetAxesMapping(m engine.NameMapping) Snapshot {
	return b.mutate(func() {
		b.axesMapping.set(m)
	})
}

// SetShowRawTable toggles the raw table view. Leaving it clears the table
// chart type and lets the data handler pick a chart again.
func (b *Builder) SetShowRawTable(show bool) Snapshot {
	return b.mutate(func() {
		if show == b.showRawTable {
			return
		}
		b.showRawTable = show
		if show {
			if b.chartType.set(engine.ChartTable) {
				b.onChartTypeChange(engine.ChartTable)
			}
			return
		}
		if b.chartType.value == engine.ChartTable {
			b.chartType.set("")
		}
		b.onDataChange()
	})
}

// mutate runs fn under the lock, then persists and notifies outside it.
// persistMu is taken before mu is released, so saves land in the order the
// mutations happened.
func (b *Builder) mutate(fn func()) Snapshot {
	b.mu.Lock()
	fn()
	persist := b.initialized && (b.chartType.dirty || b.styles.dirty || b.axesMapping.dirty)
	snap := b.snapshot()
	notify := b.flush()
	if persist {
		b.persistMu.Lock()
	}
	b.mu.Unlock()

	if persist {
		b.persist(snap)
		b.persistMu.Unlock()
	}
	notify()
	return snap
}

// flush must be called with b.mu held. Notifications run in cell order.
func (b *Builder) flush() func() {
	pending := []func(){
		b.chartType.flush(),
		b.styles.flush(),
		b.axesMapping.flush(),
		b.data.flush(),
	}
	return func() {
		for _, n := range pending {
			if n != nil {
				n()
			}
		}
	}
}

func (b *Builder) persist(snap Snapshot) {
	if b.store == nil {
		return
	}
	state := statestore.State{ChartType: snap.ChartType, AxesMapping: snap.AxesMapping}
	if snap.Styles != nil {
		state.StyleOptions = snap.Styles.Styles
	}
	if err := b.store.Save(context.Background(), b.stateKey, state); err != nil {
		b.logger.Warn("failed to persist builder state", "state_key", b.stateKey, "error", err)
	}
}

// ============================================================================
// RECONCILIATION
// ============================================================================

// onChartTypeChange must be called with b.mu held.
func (b *Builder) onChartTypeChange(t engine.ChartType) {
	cfg, ok := b.registry.VisualizationConfig(t)
	if !ok {
		return
	}

	if cur := b.styles.value; cur == nil || cur.Type != t {
		b.styles.set(&StyleState{Type: t, Styles: cfg.StyleDefaults})
	}

	if t == engine.ChartTable {
		b.axesMapping.set(engine.NameMapping{})
		return
	}

	if mapping, ok := b.reuseAxesMapping(t); ok {
		b.axesMapping.set(mapping)
		return
	}

	data := b.data.value
	if data == nil {
		b.logger.Debug("axes mapping not reusable", "chart_type", t, "mapping", b.axesMapping.value)
		return
	}
	if mapping, ok := b.defaultAxesMapping(t, data); ok {
		b.axesMapping.set(mapping)
		return
	}
	b.logger.Debug("no axes mapping for chart type", "chart_type", t)
	b.axesMapping.set(engine.NameMapping{})
}

// defaultAxesMapping binds data to t through the best match with t preferred.
// It fails when the winning entry is another chart type.
func (b *Builder) defaultAxesMapping(t engine.ChartType, data *schema.Dataset) (engine.NameMapping, bool) {
	match, ok := b.registry.FindBestMatch(data.NumericalColumns, data.CategoricalColumns, data.DateColumns, t)
	if !ok || match.ChartType.Type != t {
		return nil, false
	}
	mapping := b.registry.DefaultAxesMapping(match.Rule, t, data.NumericalColumns, data.CategoricalColumns, data.DateColumns)
	if len(mapping) == 0 {
		return nil, false
	}
	return engine.ToNameMapping(mapping), true
}

// reuseAxesMapping rebinds the currently mapped columns to the roles of t.
// Within a schema, columns keep their dataset order, so a template's
// ordinal picks among the mapped columns only.
func (b *Builder) reuseAxesMapping(t engine.ChartType) (engine.NameMapping, bool) {
	current := b.axesMapping.value
	if len(current) == 0 {
		return nil, false
	}
	all := b.data.value.AllColumns()

	rule, ok := b.registry.FindRuleByMapping(current, all)
	if !ok || !rule.Supports(t) {
		return nil, false
	}
	tpl, ok := b.registry.TemplateFor(t, rule.Signature)
	if !ok {
		return nil, false
	}

	mapped := engine.MappedColumns(current, all)
	out := make(engine.NameMapping, len(tpl))
	for role, ref := range tpl {
		cols := mapped[ref.Schema]
		if ref.Index < 0 || ref.Index >= len(cols) {
			return nil, false
		}
		out[role] = cols[ref.Index].Name
	}
	return out, true
}

// onDataChange must be called with b.mu held.
func (b *Builder) onDataChange() {
	data := b.data.value
	chartType := b.chartType.value
	if data == nil || chartType == engine.ChartTable {
		return
	}

	all := data.AllColumns()
	invalidMetric := chartType == engine.ChartMetric && len(all) > 0 && all[0].ValidValuesCount > 1
	mapping := b.axesMapping.value

	if !invalidMetric && len(mapping) > 0 && engine.IsValidMapping(mapping, all) {
		return
	}

	if b.applyBestMatchedRule(data.NumericalColumns, data.CategoricalColumns, data.DateColumns) {
		return
	}

	b.logger.Debug("no visualization rule matches data",
		"numerical", len(data.NumericalColumns),
		"categorical", len(data.CategoricalColumns),
		"date", len(data.DateColumns))
	b.chartType.set("")
	b.axesMapping.set(engine.NameMapping{})
	b.styles.set(nil)
}

// applyBestMatchedRule replaces chart type, mapping and styles with the best
// match for the partitions. It must be called with b.mu held.
func (b *Builder) applyBestMatchedRule(numerical, categorical, date []schema.Column) bool {
	match, ok := b.registry.FindBestMatch(numerical, categorical, date, "")
	if !ok {
		return false
	}
	t := match.ChartType.Type
	mapping := b.registry.DefaultAxesMapping(match.Rule, t, numerical, categorical, date)
	cfg, _ := b.registry.VisualizationConfig(t)

	b.chartType.set(t)
	b.axesMapping.set(engine.ToNameMapping(mapping))
	b.styles.set(&StyleState{Type: t, Styles: cfg.StyleDefaults})

	b.logger.Info("visualization auto-selected", "rule", match.Rule.ID, "chart_type", t)
	return true
}

// ============================================================================
// READERS
// ============================================================================

// snapshot must be called with b.mu held.
func (b *Builder) snapshot() Snapshot {
	return Snapshot{
		ChartType:    b.chartType.get(),
		Styles:       b.styles.get(),
		AxesMapping:  b.axesMapping.get(),
		Data:         b.data.get(),
		ShowRawTable: b.showRawTable,
	}
}

// Snapshot returns a copy of the current state.
func (b *Builder) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

// ChartType returns the current chart type ("" when unset).
func (b *Builder) ChartType() engine.ChartType {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chartType.get()
}

// Styles returns a copy of the current style state, nil when unset.
func (b *Builder) Styles() *StyleState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.styles.get()
}

// AxesMapping returns a copy of the current axes mapping.
func (b *Builder) AxesMapping() engine.NameMapping {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.axesMapping.get()
}

// Data returns the current dataset. Datasets are shared, not copied.
func (b *Builder) Data() *schema.Dataset {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data.get()
}

// ShowRawTable reports whether the raw table view is on.
func (b *Builder) ShowRawTable() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.showRawTable
}

// AvailableChartTypes lists the chart types the current data can be drawn as.
func (b *Builder) AvailableChartTypes() []engine.ChartTypeMeta {
	data := b.Data()
	if data == nil {
		return b.registry.AvailableChartTypes(nil, nil, nil)
	}
	return b.registry.AvailableChartTypes(data.NumericalColumns, data.CategoricalColumns, data.DateColumns)
}

// Spec compiles the current state through the rule backing the axes mapping.
func (b *Builder) Spec() (*engine.ChartSpec, error) {
	snap := b.Snapshot()
	if snap.ChartType == "" || snap.Data == nil {
		return nil, ErrNoVisualization
	}

	all := snap.Data.AllColumns()
	req := engine.SpecRequest{
		ChartType: snap.ChartType,
		Rows:      snap.Data.TransformedData,
		Mapping:   engine.ToColumnMapping(snap.AxesMapping, all),
	}
	if snap.Styles != nil {
		req.Styles = snap.Styles.Styles
	}

	if rule, ok := b.registry.FindRuleByMapping(snap.AxesMapping, all); ok {
		return rule.ToSpec(req, snap.ChartType)
	}
	return engine.GenericCompiler{}.Compile(req)
}

// ============================================================================
// SUBSCRIPTIONS
// ============================================================================
// Callbacks run synchronously after the triggering call has reconciled and
// released the builder, so they may call back into it.

// SubscribeChartType registers fn for chart type changes.
func (b *Builder) SubscribeChartType(fn func(engine.ChartType)) (unsubscribe func()) {
	return subscribe(b, b.chartType, fn)
}

// SubscribeStyles registers fn for style changes.
func (b *Builder) SubscribeStyles(fn func(*StyleState)) (unsubscribe func()) {
	return subscribe(b, b.styles, fn)
}

// SubscribeAxesMapping registers fn for axes mapping changes.
func (b *Builder) SubscribeAxesMapping(fn func(engine.NameMapping)) (unsubscribe func()) {
	return subscribe(b, b.axesMapping, fn)
}

// SubscribeData registers fn for dataset changes.
func (b *Builder) SubscribeData(fn func(*schema.Dataset)) (unsubscribe func()) {
	return subscribe(b, b.data, fn)
}

func subscribe[T any](b *Builder, c *cell[T], fn func(T)) func() {
	b.mu.Lock()
	id := c.subscribe(fn)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			c.unsubscribe(id)
			b.mu.Unlock()
		})
	}
}
