package writebinary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360/binfile/component"
	"github.com/c360/binfile/errors"
	"github.com/c360/binfile/message"
	"github.com/c360/binfile/metric"
	"github.com/c360/binfile/natsclient"
	"github.com/c360/binfile/xmldoc"
)

// HeaderPath carries the absolute path of the written file on published documents.
const HeaderPath = "Binfile-Path"

// Processor hosts a Mediator on NATS: every document received on an input subject
// is processed and, unless processing failed, published to every output subject.
type Processor struct {
	name       string
	inputs     []component.PortDefinition
	outputs    []string
	mediator   *Mediator
	natsClient *natsclient.Client
	logger     *slog.Logger

	// Lifecycle management
	running     bool
	startTime   time.Time
	mu          sync.RWMutex
	lifecycleMu sync.Mutex
	wg          sync.WaitGroup

	// Metrics (atomic counters for DataFlow)
	documentsProcessed int64
	filesWritten       int64
	documentsSkipped   int64
	bytesWritten       int64
	errors             int64
	lastActivity       time.Time
	lastError          string

	// Prometheus metrics
	metrics *writerMetrics
	core    *metric.Metrics
}

// NewProcessor creates a new write binary file processor from configuration
func NewProcessor(
	rawConfig json.RawMessage, deps component.Dependencies,
) (component.Discoverable, error) {
	// A configured ports block replaces the default ports as a whole
	config := DefaultConfig()
	config.Ports = nil
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, errors.WrapInvalid(err, "WriteBinaryProcessor", "NewProcessor", "config unmarshal")
	}

	if config.Ports == nil {
		config.Ports = DefaultConfig().Ports
	}

	settings, err := config.Settings()
	if err != nil {
		return nil, errors.Wrap(err, "WriteBinaryProcessor", "NewProcessor", "config validation")
	}

	name := "write-binary-file"
	logger := deps.GetLoggerWithComponent(name)

	mediator, err := New(settings, logger)
	if err != nil {
		return nil, errors.Wrap(err, "WriteBinaryProcessor", "NewProcessor", "create mediator")
	}

	var inputs []component.PortDefinition
	for _, def := range config.Ports.Inputs {
		if (def.Type == "" || def.Type == "nats") && def.Subject != "" {
			inputs = append(inputs, def)
		}
	}
	if len(inputs) == 0 {
		return nil, errors.WrapInvalid(
			errors.ErrInvalidConfig, "WriteBinaryProcessor", "NewProcessor",
			"no input subjects configured")
	}

	metrics, err := newWriterMetrics(deps.MetricsRegistry)
	if err != nil {
		logger.Error("Failed to initialize write binary file metrics", "error", err)
		metrics = nil // Continue without metrics
	}

	var core *metric.Metrics
	if deps.MetricsRegistry != nil {
		core = deps.MetricsRegistry.CoreMetrics()
	}

	return &Processor{
		name:       name,
		inputs:     inputs,
		outputs:    component.Subjects(config.Ports.Outputs),
		mediator:   mediator,
		natsClient: deps.NATSClient,
		logger:     logger,
		metrics:    metrics,
		core:       core,
	}, nil
}

// Initialize prepares the processor (no-op, the mediator is built by NewProcessor)
func (p *Processor) Initialize() error {
	return nil
}

// Start subscribes to the input subjects
func (p *Processor) Start(ctx context.Context) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.running {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "WriteBinaryProcessor", "Start", "check running state")
	}

	if p.natsClient == nil {
		return errors.WrapFatal(errors.ErrMissingConfig, "WriteBinaryProcessor", "Start", "NATS client required")
	}

	for _, input := range p.inputs {
		if err := p.natsClient.Subscribe(ctx, input.Subject, input.Queue, p.handleMessage); err != nil {
			p.logger.Error("Failed to subscribe to NATS subject",
				"subject", input.Subject,
				"error", err)
			return errors.WrapTransient(err, "WriteBinaryProcessor", "Start", fmt.Sprintf("subscribe to %s", input.Subject))
		}

		p.logger.Debug("Subscribed to NATS subject",
			"subject", input.Subject,
			"queue", input.Queue)
	}

	p.mu.Lock()
	p.running = true
	p.startTime = time.Now()
	p.mu.Unlock()

	if p.core != nil {
		p.core.RecordComponentStatus(p.name, metric.StatusRunning)
	}

	p.logger.Info("Write binary file processor started",
		"input_subjects", component.Subjects(p.inputs),
		"output_subjects", p.outputs,
		"overwrite", p.mediator.Settings().OverwriteAllowed(),
		"unique_names", p.mediator.Settings().UniqueFileNames())

	return nil
}

// Stop waits for in-flight documents to finish
func (p *Processor) Stop(timeout time.Duration) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if !p.running {
		return nil
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	waitCh := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
	case <-time.After(timeout):
		return errors.WrapTransient(
			fmt.Errorf("shutdown timeout after %v", timeout),
			"WriteBinaryProcessor", "Stop", "graceful shutdown")
	}

	if p.core != nil {
		p.core.RecordComponentStatus(p.name, metric.StatusStopped)
	}

	p.logger.Info("Write binary file processor stopped",
		"documents_processed", atomic.LoadInt64(&p.documentsProcessed),
		"files_written", atomic.LoadInt64(&p.filesWritten))

	return nil
}

// handleMessage runs the mediator on one document. Failures are logged and
// counted and the message is dropped.
func (p *Processor) handleMessage(ctx context.Context, msg *nats.Msg) {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.wg.Add(1)
	p.lastActivity = time.Now()
	p.mu.Unlock()
	defer p.wg.Done()

	atomic.AddInt64(&p.documentsProcessed, 1)
	if p.core != nil {
		p.core.RecordMessageReceived(p.name, msg.Subject)
	}

	mctx := message.FromHeaders(msg.Header)

	doc, err := xmldoc.ParseBytes(msg.Data)
	if err != nil {
		p.fail(mctx, "parse", err)
		return
	}

	start := time.Now()
	outcome, err := p.mediator.Process(ctx, doc, mctx)
	duration := time.Since(start)
	if err != nil {
		p.fail(mctx, errors.Kind(err), err)
		return
	}

	p.metrics.recordOutcome(p.name, outcome, duration)
	if p.core != nil {
		p.core.RecordProcessingDuration(p.name, duration)
	}

	switch outcome.Kind {
	case Written:
		atomic.AddInt64(&p.filesWritten, 1)
		atomic.AddInt64(&p.bytesWritten, outcome.Bytes)
	default:
		atomic.AddInt64(&p.documentsSkipped, 1)
	}

	p.publish(ctx, msg, doc, outcome)
}

func (p *Processor) publish(ctx context.Context, in *nats.Msg, doc *xmldoc.Document, outcome Outcome) {
	if len(p.outputs) == 0 {
		return
	}

	data := doc.Bytes()
	for _, subject := range p.outputs {
		out := nats.NewMsg(subject)
		out.Data = data
		for name, values := range in.Header {
			out.Header[name] = append([]string(nil), values...)
		}
		if outcome.Kind == Written {
			out.Header.Set(HeaderPath, outcome.Path)
		}

		if err := p.natsClient.PublishMsg(ctx, out); err != nil {
			atomic.AddInt64(&p.errors, 1)
			p.metrics.recordPublishError(p.name)
			p.logger.Error("Failed to publish rewritten document",
				"output_subject", subject,
				"error", err)
			continue
		}
		if p.core != nil {
			p.core.RecordMessagePublished(p.name, subject)
		}
	}
}

func (p *Processor) fail(mctx message.Context, errorType string, err error) {
	atomic.AddInt64(&p.errors, 1)
	p.mu.Lock()
	p.lastError = err.Error()
	p.mu.Unlock()

	p.metrics.recordError(p.name, errorType)
	if p.core != nil {
		p.core.RecordError(p.name, errorType)
	}

	p.logger.Error("Failed to write binary payload",
		"message_id", mctx.MessageID(),
		"error_type", errorType,
		"error_class", errors.Classify(err).String(),
		"error", err)
}

// Discoverable interface implementation

// Meta returns metadata describing this processor component.
func (p *Processor) Meta() component.Metadata {
	return component.Metadata{
		Name:        p.name,
		Type:        "processor",
		Description: "Writes base64 payloads embedded in XML documents to files",
		Version:     "0.1.0",
	}
}

// InputPorts returns the NATS input ports this processor subscribes to.
func (p *Processor) InputPorts() []component.Port {
	ports := make([]component.Port, 0, len(p.inputs))
	for _, def := range p.inputs {
		ports = append(ports, component.BuildPortFromDefinition(def, component.DirectionInput))
	}
	return ports
}

// OutputPorts returns the NATS output ports rewritten documents are published to.
func (p *Processor) OutputPorts() []component.Port {
	ports := make([]component.Port, 0, len(p.outputs))
	for i, subject := range p.outputs {
		ports = append(ports, component.Port{
			Name:      fmt.Sprintf("output_%d", i),
			Direction: component.DirectionOutput,
			Required:  false,
			Config: component.NATSPort{
				Subject: subject,
				Interface: &component.InterfaceContract{
					Type:    "core.xml.v1",
					Version: "v1",
				},
			},
		})
	}
	return ports
}

// ConfigSchema returns the configuration schema for this processor.
func (p *Processor) ConfigSchema() component.ConfigSchema {
	return writeBinarySchema
}

// Mediator returns the pipeline the processor runs.
func (p *Processor) Mediator() *Mediator {
	return p.mediator
}

// Health returns the current health status of this processor.
func (p *Processor) Health() component.HealthStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var uptime time.Duration
	if p.running {
		uptime = time.Since(p.startTime)
	}

	return component.HealthStatus{
		Healthy:    p.running,
		LastCheck:  time.Now(),
		ErrorCount: int(atomic.LoadInt64(&p.errors)),
		LastError:  p.lastError,
		Uptime:     uptime,
	}
}

// DataFlow returns current data flow metrics for this processor.
func (p *Processor) DataFlow() component.FlowMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()

	processed := atomic.LoadInt64(&p.documentsProcessed)
	errorCount := atomic.LoadInt64(&p.errors)

	var errorRate, docsPerSecond, bytesPerSecond float64
	if processed > 0 {
		errorRate = float64(errorCount) / float64(processed)
	}
	if p.running {
		if elapsed := time.Since(p.startTime).Seconds(); elapsed > 0 {
			docsPerSecond = float64(processed) / elapsed
			bytesPerSecond = float64(atomic.LoadInt64(&p.bytesWritten)) / elapsed
		}
	}

	return component.FlowMetrics{
		MessagesPerSecond: docsPerSecond,
		BytesPerSecond:    bytesPerSecond,
		ErrorRate:         errorRate,
		LastActivity:      p.lastActivity,
	}
}

// Register registers the write binary file processor with the given registry
func Register(registry *component.Registry) error {
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "write_binary_file",
		Factory:     NewProcessor,
		Schema:      writeBinarySchema,
		Type:        "processor",
		Protocol:    "xml",
		Domain:      "storage",
		Description: "Extracts a base64 payload from XML documents and writes it to a file",
		Version:     "0.1.0",
	})
}
