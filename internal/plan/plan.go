package plan

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/load-planner/internal/catalog"
	"github.com/eugenenazirov/load-planner/internal/metrics"
	"github.com/eugenenazirov/load-planner/internal/packer"
)

var (
	// ErrMissingContainer is returned when neither dimensions nor a preset name were supplied.
	ErrMissingContainer = errors.New("container dimensions or a container preset are required")
	// ErrMissingWeightBudget is returned when no budget, truck class or container preset can supply one.
	ErrMissingWeightBudget = errors.New("weight budget, truck class or container preset is required")
)

// Request is a planning request as supplied by a caller. Explicit values take
// precedence over named presets.
type Request struct {
	Container       *packer.Container
	ContainerPreset string
	TruckClass      string
	WeightBudget    *float64
	Boxes           []packer.BoxType
}

// Outcome is the resolved input together with the packing result.
type Outcome struct {
	Container       packer.Container
	ContainerPreset string
	TruckClass      string
	WeightBudget    float64
	RequestedUnits  int
	Result          packer.Result
	Duration        time.Duration
}

// Truncated reports whether fewer units were placed than requested.
func (o Outcome) Truncated() bool {
	return o.Result.PlacedCount() < o.RequestedUnits
}

// Service coordinates catalog lookups and packing.
type Service struct {
	packer  packer.Packer
	catalog catalog.Catalog
	metrics *metrics.Recorder
	logger  *zap.Logger
	clock   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records plan metrics on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Service) {
		s.metrics = r
	}
}

// WithLogger sets the logger used for plan events.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs a Service with the provided dependencies.
func NewService(p packer.Packer, c catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		packer:  p,
		catalog: c,
		logger:  zap.NewNop(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Plan resolves the request and packs it.
func (s *Service) Plan(ctx context.Context, req Request) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	out, err := s.resolve(req)
	if err != nil {
		s.metrics.RecordPlanFailure(metrics.StatusRejected)
		s.logger.Debug("plan rejected", zap.Error(err))
		return Outcome{}, err
	}

	start := s.clock()
	result, err := s.packer.Pack(out.Container, out.WeightBudget, req.Boxes)
	out.Duration = s.clock().Sub(start)
	if err != nil {
		status := metrics.StatusError
		var inputErr *packer.InputError
		if errors.As(err, &inputErr) {
			status = metrics.StatusRejected
		}
		s.metrics.RecordPlanFailure(status)
		s.logger.Debug("pack failed", zap.Error(err))
		return Outcome{}, err
	}

	out.Result = result
	out.RequestedUnits = packer.RequestedUnits(req.Boxes)
	s.metrics.RecordPlan(out.Duration, result.UsedVolumePercent, result.PlacedCount())

	s.logger.Info("plan computed",
		zap.String("container_preset", out.ContainerPreset),
		zap.String("truck_class", out.TruckClass),
		zap.Int("requested", out.RequestedUnits),
		zap.Int("placed", result.PlacedCount()),
		zap.Float64("utilization_percent", result.UsedVolumePercent),
		zap.Float64("total_weight", result.TotalWeight),
		zap.Float64("weight_budget", out.WeightBudget),
		zap.Duration("duration", out.Duration),
	)
	if out.Truncated() {
		s.logger.Warn("not every requested unit was placed",
			zap.Int("requested", out.RequestedUnits),
			zap.Int("placed", result.PlacedCount()),
		)
	}

	return out, nil
}

func (s *Service) resolve(req Request) (Outcome, error) {
	var out Outcome

	var preset *catalog.ContainerPreset
	if name := strings.TrimSpace(req.ContainerPreset); name != "" {
		p, err := s.catalog.Container(name)
		if err != nil {
			return Outcome{}, err
		}
		preset = &p
		out.ContainerPreset = p.Name
	}

	switch {
	case req.Container != nil:
		out.Container = *req.Container
	case preset != nil:
		out.Container = preset.Container()
	default:
		return Outcome{}, ErrMissingContainer
	}

	var truck *catalog.TruckClass
	if name := strings.TrimSpace(req.TruckClass); name != "" {
		t, err := s.catalog.Truck(name)
		if err != nil {
			return Outcome{}, err
		}
		truck = &t
		out.TruckClass = t.Name
	}

	switch {
	case req.WeightBudget != nil:
		out.WeightBudget = *req.WeightBudget
	case truck != nil:
		out.WeightBudget = truck.MaxWeight
	case preset != nil:
		out.WeightBudget = preset.Payload(s.catalog.MaxGrossWeight())
	default:
		return Outcome{}, ErrMissingWeightBudget
	}

	return out, nil
}
