package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/debt-payoff/internal/cache"
	"github.com/iwvelando/debt-payoff/internal/config"
	"github.com/iwvelando/debt-payoff/internal/events"
	"github.com/iwvelando/debt-payoff/internal/optimizer"
	"github.com/iwvelando/debt-payoff/internal/payoff"
	"github.com/iwvelando/debt-payoff/pkg/constants"
	"github.com/iwvelando/debt-payoff/pkg/datetime"
	"github.com/iwvelando/debt-payoff/pkg/loans"
	"github.com/iwvelando/debt-payoff/pkg/mathutil"
	"github.com/iwvelando/debt-payoff/pkg/output"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	simulator     *payoff.Simulator
	schedules     *loans.ScheduleGenerator
	optimizer     *optimizer.Runner
	cache         *cache.LedgerCache
	publisher     events.Publisher
	metrics       *metrics
	now           func() time.Time
}

// Option customizes the handler built by NewHandler.
type Option func(*handler)

// WithCache serves repeated simulations from c.
func WithCache(c *cache.LedgerCache) Option {
	return func(h *handler) { h.cache = c }
}

// WithPublisher announces every simulation through p.
func WithPublisher(p events.Publisher) Option {
	return func(h *handler) {
		if p != nil {
			h.publisher = p
		}
	}
}

// NewHandler constructs the HTTP handler that serves the payoff API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, opts ...Option) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		simulator:     payoff.NewSimulator(logger),
		schedules:     loans.NewScheduleGenerator(logger),
		publisher:     events.NoopPublisher{},
		metrics:       newMetrics(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.optimizer = optimizer.NewRunner(logger, h.simulator)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/simulate", h.instrument("simulate", h.handleSimulate))
	mux.HandleFunc("/api/compare", h.instrument("compare", h.handleCompare))
	mux.HandleFunc("/api/assess", h.instrument("assess", h.handleAssess))
	mux.HandleFunc("/api/schedule", h.instrument("schedule", h.handleSchedule))
	mux.HandleFunc("/api/optimize", h.instrument("optimize", h.handleOptimize))
	mux.HandleFunc("/api/version", h.instrument("version", h.handleVersion))
	mux.Handle("/metrics", h.metrics.handler())

	return mux
}

type simulateResponse struct {
	Result         *payoff.Result `json:"result"`
	ConfigWarnings []string       `json:"configWarnings,omitempty"`
	CSV            string         `json:"csv"`
	Cached         bool           `json:"cached"`
	Duration       string         `json:"duration"`
}

type assessResponse struct {
	Assessment payoff.Assessment `json:"assessment"`
	Warnings   []payoff.Warning  `json:"warnings,omitempty"`
}

type scheduleRequest struct {
	Name       string        `json:"name"`
	Principal  float64       `json:"principal"`
	AnnualRate float64       `json:"annualRate"`
	Payment    float64       `json:"payment"`
	TermMonths int           `json:"termMonths"`
	StartDate  datetime.Date `json:"startDate"`
}

type scheduleResponse struct {
	Installments  []loans.Installment `json:"installments"`
	TotalInterest decimal.Decimal     `json:"totalInterest"`
	PayoffDate    *datetime.Date      `json:"payoffDate,omitempty"`
}

type errorResponse struct {
	Error   string                    `json:"error"`
	Details []*payoff.ValidationError `json:"details,omitempty"`
}

// simulationInput is a request body decoded into engine input.
type simulationInput struct {
	loans    []payoff.Loan
	options  payoff.Options
	warnings []string
}

func (h *handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSimulate"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	in, ok := h.readInput(w, r, op)
	if !ok {
		return
	}

	var (
		result *payoff.Result
		cached bool
		err    error
	)
	if h.cache != nil {
		result, cached, err = h.cache.Simulate(r.Context(), h.simulator, in.loans, in.options)
		if err == nil {
			h.metrics.cacheHits.WithLabelValues(hitLabel(cached)).Inc()
		}
	} else {
		result, err = h.simulator.Run(in.loans, in.options)
	}
	if err != nil {
		h.respondEngineError(w, err, op)
		return
	}
	h.metrics.simulations.WithLabelValues(result.Strategy.String(), string(result.Status)).Inc()

	event := events.NewSimulationCompleted(result, len(in.loans), cached, h.now())
	if err := h.publisher.Publish(r.Context(), event); err != nil {
		h.logger.Warn("failed to publish simulation event",
			zap.String("op", op),
			zap.Error(err),
		)
	}

	var csvBuf bytes.Buffer
	if err := output.CsvFormat(&csvBuf, result); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render CSV: %v", err), op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("simulation computed",
		zap.String("op", op),
		zap.String("strategy", result.Strategy.String()),
		zap.String("status", string(result.Status)),
		zap.Int("months", result.MonthsSimulated),
		zap.Bool("cached", cached),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, simulateResponse{
		Result:         result,
		ConfigWarnings: in.warnings,
		CSV:            csvBuf.String(),
		Cached:         cached,
		Duration:       elapsed.String(),
	})
}

func (h *handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCompare"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	strategies, err := parseStrategies(r.URL.Query().Get("strategies"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	in, ok := h.readInput(w, r, op)
	if !ok {
		return
	}
	if err := payoff.Validate(in.loans, in.options); err != nil {
		h.respondEngineError(w, err, op)
		return
	}

	comparison, err := h.simulator.CompareStrategies(r.Context(), in.loans, in.options, strategies...)
	if err != nil {
		h.respondEngineError(w, err, op)
		return
	}
	for _, outcome := range comparison.Outcomes {
		h.metrics.simulations.WithLabelValues(outcome.Strategy.String(), string(outcome.Status)).Inc()
	}

	h.writeJSON(w, http.StatusOK, comparison)
}

func (h *handler) handleAssess(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAssess"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	in, ok := h.readInput(w, r, op)
	if !ok {
		return
	}
	if err := payoff.Validate(in.loans, in.options); err != nil {
		h.respondEngineError(w, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, assessResponse{
		Assessment: payoff.AssessBudget(in.loans, in.options.Budget),
		Warnings:   payoff.DetectWarnings(in.loans, in.options.Budget),
	})
}

func (h *handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleOptimize"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	cfg, err := optimizerConfig(r)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	in, ok := h.readInput(w, r, op)
	if !ok {
		return
	}
	if err := payoff.Validate(in.loans, in.options); err != nil {
		h.respondEngineError(w, err, op)
		return
	}

	summary, err := h.optimizer.MinimumBudget(r.Context(), in.loans, in.options, cfg)
	if err != nil {
		h.respondEngineError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// optimizerConfig reads targetMonths and the optional minBudget and maxBudget
// query parameters.
func optimizerConfig(r *http.Request) (optimizer.Config, error) {
	query := r.URL.Query()
	var cfg optimizer.Config

	target, err := strconv.Atoi(query.Get("targetMonths"))
	if err != nil || target <= 0 {
		return cfg, errors.New("targetMonths must be a positive integer")
	}
	cfg.TargetMonths = target

	for name, dst := range map[string]*float64{"minBudget": &cfg.MinBudget, "maxBudget": &cfg.MaxBudget} {
		value := query.Get(name)
		if value == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil || parsed <= 0 {
			return cfg, fmt.Errorf("%s must be a positive number", name)
		}
		*dst = parsed
	}
	return cfg, nil
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode schedule request: %v", err), op)
		return
	}
	if req.StartDate.IsZero() {
		h.respondErrorWithOp(w, http.StatusBadRequest, "startDate is required", op)
		return
	}
	// A term without a payment asks for the level payment over that term.
	if req.Payment <= 0 && req.TermMonths > 0 {
		req.Payment = mathutil.Round(loans.CalculateMonthlyPayment(req.Principal, req.AnnualRate, req.TermMonths))
	}

	schedule, err := h.schedules.Generate(loans.ScheduleConfig{
		Name:       req.Name,
		Principal:  req.Principal,
		AnnualRate: req.AnnualRate,
		Payment:    req.Payment,
		StartDate:  req.StartDate,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, loans.ErrPaymentTooSmall) {
			status = http.StatusBadRequest
		}
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}

	resp := scheduleResponse{
		Installments:  schedule,
		TotalInterest: loans.TotalInterest(schedule),
	}
	if n := len(schedule); n > 0 && schedule[n-1].Balance.IsZero() {
		last := schedule[n-1].Date
		resp.PayoffDate = &last
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// readInput reads a configuration document from the request, either as a
// multipart upload in the "file" field or as the raw body, and converts it
// into engine input. It writes the error response itself and reports false
// on failure.
func (h *handler) readInput(w http.ResponseWriter, r *http.Request, op string) (simulationInput, bool) {
	data, status, err := h.readBody(w, r, op)
	if err != nil {
		h.respondErrorWithOp(w, status, err.Error(), op)
		return simulationInput{}, false
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(data))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return simulationInput{}, false
	}

	if name := r.URL.Query().Get("strategy"); name != "" {
		cfg.Strategy = name
	}

	opts, err := cfg.Options()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return simulationInput{}, false
	}
	loanList, err := cfg.ToLoans()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to process loans: %v", err), op)
		return simulationInput{}, false
	}

	return simulationInput{
		loans:    loanList,
		options:  opts,
		warnings: cfg.ValidateConfiguration(),
	}, true
}

func (h *handler) readBody(w http.ResponseWriter, r *http.Request, op string) ([]byte, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var reader io.Reader = r.Body
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
			return nil, uploadErrorStatus(err), uploadError(err, h.maxUploadSize)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, http.StatusBadRequest, errors.New("missing configuration file")
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				h.logger.Warn("failed to close uploaded file",
					zap.String("op", op),
					zap.Error(closeErr),
				)
			}
		}()
		reader = file
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, uploadErrorStatus(err), uploadError(err, h.maxUploadSize)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, http.StatusBadRequest, errors.New("missing configuration")
	}
	return data, http.StatusOK, nil
}

func uploadErrorStatus(err error) int {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func uploadError(err error, limit int64) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return fmt.Errorf("upload exceeds limit of %d bytes", limit)
	}
	return fmt.Errorf("failed to read configuration: %w", err)
}

func parseStrategies(value string) ([]payoff.Strategy, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	var strategies []payoff.Strategy
	for _, name := range strings.Split(value, ",") {
		strategy, err := payoff.ParseStrategy(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, strategy)
	}
	return strategies, nil
}

func hitLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// respondEngineError maps validation failures to 400 with per-field details
// and anything else to 500.
func (h *handler) respondEngineError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, payoff.ErrInvalidInput) {
		h.logger.Error("simulation request rejected",
			zap.String("op", op),
			zap.Error(err),
		)
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   err.Error(),
			Details: payoff.ValidationErrors(err),
		})
		return
	}
	h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("payoff request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, errorResponse{Error: msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
