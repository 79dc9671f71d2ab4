// Package regress fits an ordinary least squares MSRP model over numeric
// vehicle features and scores it with R².
package regress

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/msrp-cli/internal/dataset"
)

var (
	// ErrInsufficientData means fewer usable rows than features+2.
	ErrInsufficientData = errors.New("not enough complete rows to fit a model")
	// ErrSingular means the design matrix is rank deficient.
	ErrSingular = errors.New("feature matrix is singular; features are collinear or constant")
)

// UnavailableError is the soft notice returned when feature columns are
// absent from the dataset schema.
type UnavailableError struct {
	Missing []string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("price prediction unavailable: dataset has no %s column(s)", strings.Join(e.Missing, ", "))
}

// Options controls fitting.
type Options struct {
	Features  []string
	Target    string
	TestRatio float64
	Seed      int64
}

// DefaultOptions predicts MSRP from Horsepower, EngineSize and Weight with a
// 20% held-out split.
func DefaultOptions() Options {
	return Options{
		Features:  []string{dataset.ColHorsepower, dataset.ColEngineSize, dataset.ColWeight},
		Target:    dataset.ColMSRP,
		TestRatio: 0.2,
		Seed:      42,
	}
}

// Score sets used for R².
const (
	ScoredTest  = "test"
	ScoredTrain = "train"
)

// Model is a fitted linear model.
type Model struct {
	Features     []string  `json:"features"`
	Target       string    `json:"target"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	R2           float64   `json:"r2"`
	ScoredOn     string    `json:"scored_on"`
	TrainRows    int       `json:"train_rows"`
	TestRows     int       `json:"test_rows"`
	DroppedRows  int       `json:"dropped_rows"`
}

// Check reports an UnavailableError when any feature or the target is not a
// dataset column.
func Check(ds *dataset.Dataset, opt Options) error {
	var missing []string
	for _, c := range append(append([]string{}, opt.Features...), opt.Target) {
		if !ds.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &UnavailableError{Missing: missing}
	}
	return nil
}

// Fit trains the model on the dataset's records. Rows with any missing or
// non-numeric feature are dropped.
func Fit(ds *dataset.Dataset, opt Options) (*Model, error) {
	if opt.Target == "" {
		opt.Target = dataset.ColMSRP
	}
	if len(opt.Features) == 0 {
		return nil, errors.New("at least one feature is required")
	}
	if opt.TestRatio < 0 || opt.TestRatio >= 1 {
		return nil, fmt.Errorf("test ratio %v must be in [0, 1)", opt.TestRatio)
	}
	if err := Check(ds, opt); err != nil {
		return nil, err
	}

	var X [][]float64
	var Y []float64
	for _, r := range ds.Records {
		row, ok := featureRow(r, opt.Features)
		if !ok {
			continue
		}
		y, ok := r.Number(opt.Target)
		if !ok {
			continue
		}
		X = append(X, row)
		Y = append(Y, y)
	}
	m := &Model{Features: opt.Features, Target: opt.Target, DroppedRows: ds.Len() - len(X)}
	if len(X) < len(opt.Features)+2 {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientData, len(X), len(opt.Features)+2)
	}

	trainIdx, testIdx := split(len(X), opt.TestRatio, opt.Seed)
	if len(trainIdx) < len(opt.Features)+1 {
		return nil, fmt.Errorf("%w: %d training rows after split", ErrInsufficientData, len(trainIdx))
	}
	beta, err := solve(X, Y, trainIdx)
	if err != nil {
		return nil, err
	}
	m.Intercept = beta[0]
	m.Coefficients = beta[1:]
	m.TrainRows, m.TestRows = len(trainIdx), len(testIdx)

	scoreIdx := testIdx
	m.ScoredOn = ScoredTest
	if len(testIdx) < 2 {
		scoreIdx = trainIdx
		m.ScoredOn = ScoredTrain
	}
	est := make([]float64, len(scoreIdx))
	val := make([]float64, len(scoreIdx))
	for i, idx := range scoreIdx {
		est[i] = m.eval(X[idx])
		val[i] = Y[idx]
	}
	m.R2 = rSquared(est, val)
	return m, nil
}

// Predict evaluates the model for a feature vector in Features order.
func (m *Model) Predict(x []float64) (float64, error) {
	if len(x) != len(m.Coefficients) {
		return 0, fmt.Errorf("expected %d feature values, got %d", len(m.Coefficients), len(x))
	}
	return m.eval(x), nil
}

// PredictNamed evaluates the model for named feature values.
func (m *Model) PredictNamed(values map[string]float64) (float64, error) {
	x := make([]float64, len(m.Features))
	for i, f := range m.Features {
		v, ok := values[f]
		if !ok {
			return 0, fmt.Errorf("missing value for feature %s", f)
		}
		x[i] = v
	}
	return m.Predict(x)
}

func (m *Model) eval(x []float64) float64 {
	y := m.Intercept
	for i, c := range m.Coefficients {
		y += c * x[i]
	}
	return y
}

func featureRow(r dataset.Record, features []string) ([]float64, bool) {
	row := make([]float64, len(features))
	for i, f := range features {
		v, ok := r.Number(f)
		if !ok {
			return nil, false
		}
		row[i] = v
	}
	return row, true
}

// split shuffles row indices with a seeded source and holds out the first
// int(n*ratio) of them.
func split(n int, ratio float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(float64(n) * ratio)
	test = append(test, perm[:nTest]...)
	train = append(train, perm[nTest:]...)
	return train, test
}

func solve(X [][]float64, Y []float64, idx []int) ([]float64, error) {
	p := len(X[0]) + 1
	for j := 0; j < p-1; j++ {
		col := make([]float64, len(idx))
		for i, k := range idx {
			col[i] = X[k][j]
		}
		if stat.Variance(col, nil) == 0 {
			return nil, ErrSingular
		}
	}
	a := mat.NewDense(len(idx), p, nil)
	b := mat.NewVecDense(len(idx), nil)
	for i, k := range idx {
		a.Set(i, 0, 1)
		for j, v := range X[k] {
			a.Set(i, j+1, v)
		}
		b.SetVec(i, Y[k])
	}
	var beta mat.VecDense
	if err := beta.SolveVec(a, b); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return nil, ErrSingular
		}
		return nil, fmt.Errorf("solve least squares: %w", err)
	}
	out := make([]float64, p)
	for i := range out {
		out[i] = beta.AtVec(i)
		if math.IsNaN(out[i]) || math.IsInf(out[i], 0) {
			return nil, ErrSingular
		}
	}
	return out, nil
}

// rSquared returns 0 when the observed values have no variance.
func rSquared(est, val []float64) float64 {
	if stat.Variance(val, nil) == 0 {
		return 0
	}
	return stat.RSquaredFrom(est, val, nil)
}
