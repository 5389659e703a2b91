package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/partimport/pkg/category"
	"github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/hook"
	"github.com/matzehuels/partimport/pkg/parameter"
	"github.com/matzehuels/partimport/pkg/part"
	"github.com/matzehuels/partimport/pkg/sink"
	"github.com/matzehuels/partimport/pkg/supplier"
)

// exclusiveSink fails the test if two writes ever overlap.
type exclusiveSink struct {
	t        *testing.T
	inFlight atomic.Int32
	sink.Memory
}

func (s *exclusiveSink) Write(ctx context.Context, p *part.Resolved) error {
	if s.inFlight.Add(1) != 1 {
		s.t.Error("concurrent sink writes")
	}
	defer s.inFlight.Add(-1)
	time.Sleep(time.Millisecond)
	return s.Memory.Write(ctx, p)
}

func batch(n int) []*part.Raw {
	raws := make([]*part.Raw, n)
	for i := range raws {
		raws[i] = capacitor(fmt.Sprintf("C%d", i))
	}
	return raws
}

func TestRunnerImport(t *testing.T) {
	e, _ := testEngine(t, hook.Func("fail-on-C3", func(p *part.Resolved) error {
		if p.SKU == "C3" {
			panic("bad part")
		}
		p.Description = "checked"
		return nil
	}))
	raws := batch(20)
	raws[5].CategoryPath = []string{"Unknown"}
	raws[6].CategoryPath = []string{"Obsolete"}

	s := &exclusiveSink{t: t}
	r := NewRunner(e, Options{Workers: 4}, nil)
	report, err := r.Import(context.Background(), raws, s)
	require.NoError(t, err)
	require.Len(t, report.Items, 20)

	assert.Len(t, s.Parts, 18)
	counts := report.Counts()
	assert.Equal(t, 17, counts[part.Success])
	assert.Equal(t, 1, counts[part.Incomplete])
	assert.Equal(t, 2, counts[part.Failure])
	assert.Equal(t, 1, report.Ignored())
	assert.Equal(t, part.Failure, report.Result())

	for i, item := range report.Items {
		assert.Equal(t, i, item.Index)
		assert.Equal(t, raws[i].Key(), item.Key)
	}
	bad := report.Items[3]
	require.NotNil(t, bad.Part)
	assert.Len(t, bad.Part.HookErrors, 1)
	assert.Empty(t, bad.Part.Description)
	assert.Equal(t, "checked", report.Items[4].Part.Description, "other parts are unaffected")
	assert.Equal(t, category.ReasonNoMatch, report.Items[5].Outcome.Category.Reason)
	assert.NotEqual(t, report.RunID.String(), "")
}

func TestRunnerEmptyBatch(t *testing.T) {
	e, _ := testEngine(t)
	report, err := NewRunner(e, Options{}, nil).Import(context.Background(), nil, &sink.Memory{})
	require.NoError(t, err)
	assert.Empty(t, report.Items)
	assert.Equal(t, part.Success, report.Result())
}

type brokenSink struct{ sink.Memory }

func (*brokenSink) Write(context.Context, *part.Resolved) error {
	return errors.New(errors.ErrCodeSink, "database down")
}

func TestRunnerSinkFailure(t *testing.T) {
	e, _ := testEngine(t)
	report, err := NewRunner(e, Options{Workers: 2}, nil).Import(context.Background(), batch(3), &brokenSink{})
	require.NoError(t, err, "sink failures are recorded per part")
	for _, item := range report.Items {
		assert.Equal(t, part.Error, item.Outcome.Result)
		assert.True(t, errors.Is(item.Outcome.Err, errors.ErrCodeSink))
	}
}

func TestRunnerCategorize(t *testing.T) {
	e, _ := testEngine(t)
	var asked atomic.Int32
	var gotSuggestions []category.Suggestion
	opts := Options{
		Workers:     4,
		Suggestions: 3,
		Categorize: func(_ context.Context, raw *part.Raw, s []category.Suggestion) ([]string, error) {
			asked.Add(1)
			if raw.SKU == "C1" {
				return nil, nil
			}
			gotSuggestions = s
			return []string{"Electronics", "Passives", "Capacitors"}, nil
		},
	}
	raws := batch(3)
	raws[0].CategoryPath = []string{"Kondensatoren", "Keramik"}
	raws[1].CategoryPath = []string{"Unknown"}
	raws[2].CategoryPath = []string{"Passives"}

	report, err := NewRunner(e, opts, nil).Import(context.Background(), raws, &sink.Memory{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), asked.Load(), "structural targets are not offered")

	assert.True(t, report.Items[0].Manually)
	assert.Equal(t, part.Success, report.Items[0].Outcome.Result)
	assert.Equal(t, []string{"Electronics", "Passives", "Capacitors"}, report.Items[0].Part.CategoryPath)
	assert.LessOrEqual(t, len(gotSuggestions), 3)

	assert.False(t, report.Items[1].Manually)
	assert.Equal(t, part.Failure, report.Items[1].Outcome.Result)
	assert.Equal(t, category.ReasonStructuralTarget, report.Items[2].Outcome.Category.Reason)
}

func TestRunnerCategorizeAborts(t *testing.T) {
	e, _ := testEngine(t)
	quit := stderrors.New("user quit")
	opts := Options{
		Workers: 1,
		Categorize: func(context.Context, *part.Raw, []category.Suggestion) ([]string, error) {
			return nil, quit
		},
	}
	raws := batch(5)
	raws[1].CategoryPath = []string{"Unknown"}

	_, err := NewRunner(e, opts, nil).Import(context.Background(), raws, &sink.Memory{})
	assert.ErrorIs(t, err, quit)
}

func TestRunnerCancelled(t *testing.T) {
	e, _ := testEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewRunner(e, Options{Workers: 1}, nil).Import(ctx, batch(10), &sink.Memory{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, report.Items, 10)
}

func TestRunnerImportRequests(t *testing.T) {
	lcsc, err := supplier.ParseFileSupplier(supplier.LCSC, []byte(`[
		{"sku": "C1525", "mpn": "CL05B104KO5NNNC", "manufacturer": "Samsung",
		 "category_path": ["Capacitors", "MLCC"],
		 "parameters": {"Capacitance": "100nF", "Voltage - Rated": "16V", "Package / Case": "0402", "Tolerance": "10%"}}
	]`))
	require.NoError(t, err)
	reg := supplier.NewRegistry(lcsc)

	e, _ := testEngine(t)
	reqs := []Request{
		{Term: "C1525", Supplier: supplier.LCSC, Quantity: 100},
		{Term: "CL05B104KO5NNNC"},
		{Term: "missing", Supplier: supplier.LCSC},
		{Term: "C1525", Supplier: supplier.Mouser},
	}
	mem := &sink.Memory{}
	report, err := NewRunner(e, Options{}, nil).ImportRequests(context.Background(), reqs, reg, mem)
	require.NoError(t, err)

	assert.Equal(t, part.Success, report.Items[0].Outcome.Result)
	assert.Equal(t, "lcsc:C1525", report.Items[0].Key)
	assert.Equal(t, 100, report.Items[0].Request.Quantity)
	assert.Equal(t, part.Success, report.Items[1].Outcome.Result)

	assert.Equal(t, part.Error, report.Items[2].Outcome.Result)
	assert.True(t, errors.Is(report.Items[2].Outcome.Err, errors.ErrCodeNotFound))
	assert.Equal(t, "missing", report.Items[2].Key)
	assert.True(t, errors.Is(report.Items[3].Outcome.Err, errors.ErrCodeInvalidSupplier))

	assert.Len(t, mem.Parts, 2)
	assert.Equal(t, part.Error, report.Result())
}

func TestRunnerAssign(t *testing.T) {
	e, _ := testEngine(t)
	var asked []string
	var gotCandidates []parameter.Candidate
	opts := Options{
		Workers:     4,
		Suggestions: 2,
		Assign: func(_ context.Context, raw *part.Raw, name string, c []parameter.Candidate) (string, error) {
			asked = append(asked, raw.SKU+"/"+name)
			if raw.SKU == "C1" {
				return "", nil
			}
			gotCandidates = c
			return c[0].Value, nil
		},
	}
	raws := []*part.Raw{capacitor("C0"), unratedCapacitor("C1"), unratedCapacitor("C2")}

	mem := &sink.Memory{}
	report, err := NewRunner(e, opts, nil).Import(context.Background(), raws, mem)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"C1/Voltage Rating", "C2/Voltage Rating"}, asked)

	require.Len(t, gotCandidates, 2)
	assert.Equal(t, "DC Voltage Rating", gotCandidates[0].Name)

	assert.Equal(t, part.Success, report.Items[0].Outcome.Result)
	assert.Equal(t, part.Incomplete, report.Items[1].Outcome.Result)
	assert.Equal(t, []string{"Voltage Rating"}, report.Items[1].Part.Unassigned)
	assert.Equal(t, part.Success, report.Items[2].Outcome.Result)
	assert.Equal(t, "25 V", report.Items[2].Part.Parameters["Voltage Rating"].Text)
	assert.Len(t, mem.Parts, 3)
}

func TestRunnerAssignAborts(t *testing.T) {
	e, _ := testEngine(t)
	quit := stderrors.New("user quit")
	opts := Options{
		Workers: 1,
		Assign: func(context.Context, *part.Raw, string, []parameter.Candidate) (string, error) {
			return "", quit
		},
	}
	_, err := NewRunner(e, opts, nil).Import(context.Background(), []*part.Raw{unratedCapacitor("C1")}, &sink.Memory{})
	assert.ErrorIs(t, err, quit)
}
