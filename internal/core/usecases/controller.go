// internal/core/usecases/controller.go
package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"urlsift/internal/core/domain"
	"urlsift/internal/core/ports"
	"urlsift/internal/platform/errors"
	"urlsift/internal/platform/logx"
	"urlsift/internal/platform/urlfilter"
)

// defaultEventBuffer es la capacidad del canal de eventos de cada ejecución.
const defaultEventBuffer = 64

// ControllerOptions configura el controller.
type ControllerOptions struct {
	Filter            urlfilter.Config
	Logger            logx.Logger
	Store             ports.ExtensionStore
	DefaultExtensions []string
	Observers         []ports.Notifier
	Version           string
	EventBuffer       int
}

// Input es la entrada de una ejecución.
type Input struct {
	// Lines líneas crudas; las vacías se descartan
	Lines []string

	// Warnings advertencias previas (p. ej. de la importación) que se copian al resultado
	Warnings []domain.Warning
}

// Controller coordina las ejecuciones de filtrado: mantiene la ejecución activa,
// el conjunto de extensiones y el último resultado para exportar.
type Controller struct {
	engine    *urlfilter.Engine
	exts      *urlfilter.ExtensionSet
	store     ports.ExtensionStore
	logger    logx.Logger
	observers []ports.Notifier
	version   string
	buffer    int

	// startMu serializa Start/Stop para que nunca haya dos workers vivos
	startMu sync.Mutex

	mu     sync.Mutex
	active *Run
	last   *domain.RunResult
}

// NewController crea el controller y carga el conjunto de extensiones.
// Si el store no tiene nada guardado se siembra con DefaultExtensions.
func NewController(opts ControllerOptions) (*Controller, error) {
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}
	// un hueco queda reservado al evento terminal
	if opts.EventBuffer < 2 {
		opts.EventBuffer = defaultEventBuffer
	}
	if opts.DefaultExtensions == nil {
		opts.DefaultExtensions = urlfilter.DefaultStaticExtensions
	}

	c := &Controller{
		engine:    urlfilter.NewEngine(opts.Filter, opts.Logger),
		store:     opts.Store,
		logger:    opts.Logger.With("component", "controller"),
		observers: opts.Observers,
		version:   opts.Version,
		buffer:    opts.EventBuffer,
	}

	if err := c.loadExtensions(opts.DefaultExtensions); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Controller) loadExtensions(defaults []string) error {
	if c.store == nil {
		c.exts = urlfilter.NewExtensionSet(defaults...)
		return nil
	}

	saved, found, err := c.store.Load()
	if err != nil {
		return errors.Wrap(err, "load extension set")
	}

	if found {
		c.exts = urlfilter.NewExtensionSet(saved...)
		c.logger.Debug("loaded extension set", "count", c.exts.Len())
		return nil
	}

	c.exts = urlfilter.NewExtensionSet(defaults...)
	c.logger.Debug("seeding extension set with defaults", "count", c.exts.Len())
	return c.persist()
}

func (c *Controller) persist() error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Save(c.exts.Sorted()); err != nil {
		return errors.Wrap(err, "save extension set")
	}
	return nil
}

// Extensions retorna el conjunto actual ordenado para mostrar.
func (c *Controller) Extensions() []string {
	return c.exts.Sorted()
}

// AddExtensions añade todas las extensiones encontradas en text y retorna cuántas eran nuevas.
func (c *Controller) AddExtensions(text string) (int, error) {
	added := c.exts.AddBatch(text)
	if added == 0 {
		return 0, nil
	}
	return added, c.persist()
}

// RemoveExtensions elimina las extensiones encontradas en text y retorna cuántas existían.
func (c *Controller) RemoveExtensions(text string) (int, error) {
	removed := c.exts.RemoveBatch(text)
	if removed == 0 {
		return 0, nil
	}
	return removed, c.persist()
}

// ClearExtensions vacía el conjunto.
func (c *Controller) ClearExtensions() error {
	c.exts.Clear()
	return c.persist()
}

// ResetExtensions restaura el conjunto por defecto.
func (c *Controller) ResetExtensions(defaults []string) error {
	c.exts.Clear()
	for _, ext := range defaults {
		c.exts.Add(ext)
	}
	return c.persist()
}

// Start lanza una nueva ejecución en segundo plano. Si hay una ejecución activa
// se cancela y se espera a que su worker termine antes de lanzar la nueva.
func (c *Controller) Start(ctx context.Context, in Input) (*Run, error) {
	lines := cleanInput(in.Lines)
	if len(lines) == 0 {
		return nil, errors.Wrap(errors.ErrNoInput, "please enter URLs")
	}

	c.startMu.Lock()
	defer c.startMu.Unlock()

	c.stopActive()

	runCtx, cancel := context.WithCancel(ctx)
	run := newRun(uuid.NewString(), cancel, c.buffer)

	c.mu.Lock()
	c.active = run
	c.mu.Unlock()

	exts := c.exts.Snapshot()

	c.logger.Info("starting run",
		"run_id", run.ID(),
		"urls", len(lines),
		"extensions", exts.Len(),
	)

	go c.execute(runCtx, run, lines, exts, in.Warnings)

	return run, nil
}

// Stop cancela la ejecución activa (si la hay) y espera a que termine.
func (c *Controller) Stop() {
	c.startMu.Lock()
	defer c.startMu.Unlock()
	c.stopActive()
}

func (c *Controller) stopActive() {
	c.mu.Lock()
	prev := c.active
	c.mu.Unlock()

	if prev == nil {
		return
	}

	prev.Cancel()
	prev.Wait()
	prev.detach()
}

// Active retorna la ejecución en curso, o nil.
func (c *Controller) Active() *Run {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil || c.active.State().IsTerminal() {
		return nil
	}
	return c.active
}

// LastResult retorna el último resultado completado.
func (c *Controller) LastResult() (*domain.RunResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last.IsEmpty() {
		return nil, errors.ErrNoResult
	}
	return c.last, nil
}

// Export escribe el último resultado con el exporter indicado.
func (c *Controller) Export(exporter ports.Exporter, opts ports.ExportOptions) (string, error) {
	result, err := c.LastResult()
	if err != nil {
		return "", err
	}

	path, err := exporter.Export(result, opts)
	if err != nil {
		return "", errors.Wrapf(err, "export %s", exporter.Name())
	}

	c.logger.Info("exported result", "format", exporter.Format(), "path", path, "urls", result.Kept())
	return path, nil
}

// Close detiene la ejecución activa y cierra los observers.
func (c *Controller) Close() error {
	c.Stop()

	var errs []error
	for _, o := range c.observers {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// execute es el cuerpo del worker. Emite exactamente un evento terminal y cierra el canal.
func (c *Controller) execute(ctx context.Context, run *Run, lines []string, exts *urlfilter.ExtensionSet, warnings []domain.Warning) {
	defer close(run.events)

	c.emit(ctx, run, ports.NewEvent(ports.EventTypeRunStarted, run.ID(), ports.RunStartedEvent{
		InputURLs:  len(lines),
		Extensions: exts.Sorted(),
	}))

	result, stage, err := c.runEngine(ctx, run, lines, exts)

	var terminal ports.Event
	switch {
	case err == nil:
		result.Warnings = append(result.Warnings, warnings...)
		c.mu.Lock()
		c.last = result
		c.mu.Unlock()

		run.finish(domain.RunStateCompleted, result, nil)
		c.logger.Info("run completed", "run_id", run.ID(), "summary", result.Summary())
		terminal = ports.NewEvent(ports.EventTypeRunCompleted, run.ID(), ports.RunCompletedEvent{Result: result})

	case errors.IsCancelled(err):
		run.finish(domain.RunStateCancelled, nil, err)
		c.logger.Warn("run cancelled", "run_id", run.ID(), "stage", stage.String())
		terminal = ports.NewEvent(ports.EventTypeRunCancelled, run.ID(), ports.RunCancelledEvent{Stage: stage})

	default:
		run.finish(domain.RunStateFailed, nil, err)
		c.logger.Err(err, "run_id", run.ID())
		terminal = ports.NewEvent(ports.EventTypeRunFailed, run.ID(), ports.RunFailedEvent{
			Message: fmt.Sprintf("filtering failed: %v", err),
			Err:     err,
		})
	}

	c.notify(terminal)
	run.sendTerminal(terminal)
}

// runEngine ejecuta el pipeline y convierte un panic en error de la ejecución.
func (c *Controller) runEngine(ctx context.Context, run *Run, lines []string, exts *urlfilter.ExtensionSet) (result *domain.RunResult, stage urlfilter.Stage, err error) {
	stage = urlfilter.StageFilter

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	result = domain.NewRunResult(run.ID())
	result.Metadata.Version = c.version
	result.Metadata.Extensions = exts.Sorted()

	urls, stats, err := c.engine.Run(ctx, lines, exts, func(p urlfilter.Progress) {
		stage = p.Stage
		c.emit(ctx, run, ports.NewEvent(ports.EventTypeRunProgress, run.ID(), p))
	})
	if err != nil {
		return nil, stage, err
	}

	if urls != nil {
		result.URLs = urls
	}
	result.Metadata.InputURLs = stats.InputURLs
	result.Metadata.ExtensionFiltered = stats.ExtensionFiltered
	result.Metadata.Unparseable = stats.Unparseable
	result.Metadata.Groups = stats.Groups
	result.Metadata.OverflowMembers = stats.OverflowMembers
	result.Finalize()

	return result, stage, nil
}

// emit notifica a los observers y publica el evento en el canal de la ejecución.
func (c *Controller) emit(ctx context.Context, run *Run, event ports.Event) {
	c.notify(event)
	run.send(ctx, event)
}

func (c *Controller) notify(event ports.Event) {
	for _, o := range c.observers {
		if err := o.Notify(context.Background(), event); err != nil {
			c.logger.Warn("notification failed", "event_type", event.Type, "error", err.Error())
		}
	}
}

// cleanInput recorta cada línea y descarta las vacías.
func cleanInput(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, urlfilter.CleanLines(line)...)
	}
	return out
}

// Run es una ejecución de filtrado en segundo plano.
type Run struct {
	id      string
	started time.Time
	events  chan ports.Event
	cancel  context.CancelFunc

	done       chan struct{}
	detached   chan struct{}
	detachOnce sync.Once

	mu     sync.Mutex
	state  domain.RunState
	result *domain.RunResult
	err    error
}

func newRun(id string, cancel context.CancelFunc, buffer int) *Run {
	return &Run{
		id:       id,
		started:  time.Now(),
		events:   make(chan ports.Event, buffer),
		cancel:   cancel,
		done:     make(chan struct{}),
		detached: make(chan struct{}),
		state:    domain.RunStateRunning,
	}
}

// ID retorna el identificador de la ejecución.
func (r *Run) ID() string { return r.id }

// Events retorna el canal de eventos. Se cierra tras el evento terminal.
func (r *Run) Events() <-chan ports.Event { return r.events }

// Done se cierra cuando la ejecución alcanza un estado terminal.
func (r *Run) Done() <-chan struct{} { return r.done }

// Cancel solicita la cancelación. Se observa al inicio del siguiente lote o grupo.
func (r *Run) Cancel() { r.cancel() }

// Wait bloquea hasta que la ejecución alcanza un estado terminal. No exige
// leer Events: el progreso que no cabe en el buffer se descarta.
func (r *Run) Wait() { <-r.done }

// State retorna el estado actual.
func (r *Run) State() domain.RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Result retorna el resultado y el error una vez terminada la ejecución.
func (r *Run) Result() (*domain.RunResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.state.IsTerminal() {
		return nil, domain.ErrRunNotFinished
	}
	return r.result, r.err
}

// Elapsed retorna el tiempo desde el inicio.
func (r *Run) Elapsed() time.Duration {
	return time.Since(r.started)
}

func (r *Run) finish(state domain.RunState, result *domain.RunResult, err error) {
	r.mu.Lock()
	r.state = state
	r.result = result
	r.err = err
	r.mu.Unlock()

	r.cancel()
	close(r.done)
}

// detach libera al worker de entregar eventos pendientes cuando nadie los leerá.
func (r *Run) detach() {
	r.detachOnce.Do(func() { close(r.detached) })
}

// send publica un evento intermedio sin bloquear al worker. Se descarta si la
// ejecución se está cancelando o si el buffer solo conserva el hueco del
// evento terminal. El worker es el único emisor, así que la comprobación de
// capacidad no compite con otros envíos.
func (r *Run) send(ctx context.Context, event ports.Event) {
	if ctx.Err() != nil || len(r.events) >= cap(r.events)-1 {
		return
	}
	r.events <- event
}

// sendTerminal publica el evento terminal; solo se descarta si la ejecución fue abandonada.
func (r *Run) sendTerminal(event ports.Event) {
	select {
	case r.events <- event:
	case <-r.detached:
	}
}

// String retorna una descripción corta para logs.
func (r *Run) String() string {
	return fmt.Sprintf("Run{id=%s, state=%s}", r.id, r.State())
}
