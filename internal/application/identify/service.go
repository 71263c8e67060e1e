// Package identify provides the application-level service that turns
// structure files into nInChI identifiers.  It wires the molfile reader, the
// canonicalization engine, the encoder and the renderers together.
package identify

import (
	"bytes"
	"context"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/ninchi/internal/domain/molecule"
	"github.com/turtacn/ninchi/internal/infrastructure/molfile"
	"github.com/turtacn/ninchi/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ninchi/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ninchi/internal/infrastructure/render"
	"github.com/turtacn/ninchi/pkg/errors"
	"github.com/turtacn/ninchi/pkg/periodic"
)

// DefaultConcurrency is used by IdentifyBatch when concurrency < 1.
const DefaultConcurrency = 4

// Service defines the identifier operations.
type Service interface {
	Identify(ctx context.Context, req *Request) (*Result, error)
	IdentifyBatch(ctx context.Context, paths []string, concurrency int) []*BatchItem
}

// Request describes one structure file to identify.
type Request struct {
	Path string

	// Permute relabels the atoms randomly before canonicalizing.
	Permute bool

	// Seed drives the permutation.  0 picks a time-based seed, reported
	// back in Result.Seed.
	Seed int64

	IncludeDOT       bool
	IncludeMolfile   bool
	IncludeAuxiliary bool
}

// Result is the outcome of identifying one structure.
type Result struct {
	Path        string             `json:"path" yaml:"path"`
	Identifier  string             `json:"identifier" yaml:"identifier"`
	SumFormula  string             `json:"sum_formula" yaml:"sum_formula"`
	Format      string             `json:"format" yaml:"format"`
	Atoms       int                `json:"atoms" yaml:"atoms"`
	Bonds       int                `json:"bonds" yaml:"bonds"`
	Iterations  int                `json:"iterations" yaml:"iterations"`
	Converged   bool               `json:"converged" yaml:"converged"`
	Warning     string             `json:"warning,omitempty" yaml:"warning,omitempty"`
	RunID       string             `json:"run_id" yaml:"run_id"`
	Seed        int64              `json:"seed,omitempty" yaml:"seed,omitempty"`
	Permutation []int              `json:"permutation,omitempty" yaml:"permutation,omitempty"`
	DOT         string             `json:"dot,omitempty" yaml:"dot,omitempty"`
	Molfile     string             `json:"molfile,omitempty" yaml:"molfile,omitempty"`
	Auxiliary   *molecule.Encoding `json:"auxiliary,omitempty" yaml:"auxiliary,omitempty"`
}

// BatchItem pairs a batch input path with its result or error.
type BatchItem struct {
	Path   string
	Result *Result
	Err    error
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	engine  *molecule.Engine
	encoder *molecule.Encoder
	table   periodic.Table
	logger  logging.Logger
	metrics *prometheus.IdentifierMetrics
}

// NewService creates a new identify service.  logger and metrics may be nil.
func NewService(engine *molecule.Engine, encoder *molecule.Encoder, table periodic.Table,
	logger logging.Logger, metrics *prometheus.IdentifierMetrics) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		engine:  engine,
		encoder: encoder,
		table:   table,
		logger:  logger,
		metrics: metrics,
	}
}

func (s *serviceImpl) Identify(ctx context.Context, req *Request) (*Result, error) {
	if req == nil || req.Path == "" {
		return nil, errors.InputError("structure file path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "identify cancelled").WithDetail(req.Path)
	}
	log := s.logger.With(logging.String("path", req.Path))

	st, err := molfile.Read(req.Path, s.table)
	if err != nil {
		s.fail(log, "read", err)
		return nil, err
	}
	prometheus.RecordStructureRead(s.metrics, string(st.Format))

	g, err := st.Graph()
	if err != nil {
		s.fail(log, "read", err)
		return nil, err
	}

	res := &Result{
		Path:   req.Path,
		Format: string(st.Format),
		Atoms:  g.Len(),
		Bonds:  len(g.Bonds()),
	}

	if req.Permute {
		seed := req.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		perm := molecule.RandomPermutation(g.Len(), rand.New(rand.NewSource(seed)))
		if g, err = g.Permute(perm); err != nil {
			s.fail(log, "permute", err)
			return nil, err
		}
		res.Seed = seed
		res.Permutation = perm
	}

	timer := prometheus.StartCanonicalization(s.metrics)
	canon, err := s.engine.Canonicalize(g)
	if err != nil {
		s.fail(log, "canonicalize", err)
		return nil, err
	}
	elapsed := timer.ObserveDuration()
	prometheus.RecordCanonicalization(s.metrics, g.Len(), canon.Iterations, canon.Converged)

	res.Iterations = canon.Iterations
	res.Converged = canon.Converged
	res.RunID = canon.RunID
	if canon.Warning != nil {
		res.Warning = canon.Warning.Error()
	}

	if res.Identifier, err = s.encoder.Identifier(canon.Graph); err != nil {
		s.fail(log, "encode", err)
		return nil, err
	}
	res.SumFormula, _ = s.encoder.SumFormula(canon.Graph)

	if req.IncludeAuxiliary {
		if res.Auxiliary, err = s.encoder.Encode(canon.Graph); err != nil {
			s.fail(log, "encode", err)
			return nil, err
		}
	}
	if req.IncludeDOT {
		var buf bytes.Buffer
		if err := render.DOT(&buf, st.Name, canon.Graph, s.table); err != nil {
			s.fail(log, "render", err)
			return nil, err
		}
		res.DOT = buf.String()
	}
	if req.IncludeMolfile {
		var buf bytes.Buffer
		if err := molfile.Write(&buf, st, canon.Graph, s.table); err != nil {
			s.fail(log, "render", err)
			return nil, err
		}
		res.Molfile = buf.String()
	}

	log.Info("structure identified",
		logging.String("identifier", res.Identifier),
		logging.String("run_id", res.RunID),
		logging.Int("iterations", res.Iterations),
		logging.Bool("converged", res.Converged),
		logging.Duration("duration", elapsed),
	)
	return res, nil
}

// IdentifyBatch identifies every path with at most concurrency workers.
// Items come back in input order; a failing file does not stop the others.
func (s *serviceImpl) IdentifyBatch(ctx context.Context, paths []string, concurrency int) []*BatchItem {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	items := make([]*BatchItem, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, p := range paths {
		i, p := i, p
		items[i] = &BatchItem{Path: p}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				items[i].Err = errors.Wrap(err, errors.CodeInternal, "identify cancelled").WithDetail(p)
				return nil
			}
			done := prometheus.TrackInFlight(s.metrics)
			defer done()
			items[i].Result, items[i].Err = s.Identify(gCtx, &Request{Path: p})
			return nil // per-item errors do not cancel the batch
		})
	}
	_ = g.Wait()

	failed := 0
	for _, it := range items {
		if it.Err != nil {
			failed++
		}
	}
	s.logger.Info("batch completed",
		logging.Int("files", len(paths)),
		logging.Int("failed", failed),
		logging.Int("concurrency", concurrency),
	)
	return items
}

func (s *serviceImpl) fail(log logging.Logger, stage string, err error) {
	prometheus.RecordError(s.metrics, stage, errors.GetCode(err).String())
	log.WithError(err).Error("identify failed", logging.String("stage", stage))
}
