package bundle

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/language"

	"github.com/eugenenazirov/bundle-optimizer/internal/knapsack"
)

func classicItems() []knapsack.Item {
	return []knapsack.Item{
		{Name: "X", Cost: 10, Profit: 60},
		{Name: "Y", Cost: 20, Profit: 100},
		{Name: "Z", Cost: 30, Profit: 120},
	}
}

func TestPlanBuildsReport(t *testing.T) {
	t.Parallel()

	planner := NewPlanner(zaptest.NewLogger(t))
	report, err := planner.Plan(context.Background(), Request{Items: classicItems(), Capacity: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.MaxProfit != 220 || report.TotalProfit != 220 {
		t.Fatalf("expected profit 220, got max=%d total=%d", report.MaxProfit, report.TotalProfit)
	}
	if report.TotalCost != 50 || report.Remaining != 0 {
		t.Fatalf("expected cost 50 with nothing remaining, got cost=%d remaining=%d", report.TotalCost, report.Remaining)
	}
	if report.ItemCount != 3 || report.Capacity != 50 {
		t.Fatalf("unexpected echo of request: %+v", report)
	}
	want := []Pick{
		{Index: 1, Name: "Y", Cost: 20, Profit: 100},
		{Index: 2, Name: "Z", Cost: 30, Profit: 120},
	}
	if len(report.Selected) != len(want) {
		t.Fatalf("expected %d picks, got %v", len(want), report.Selected)
	}
	for i := range want {
		if report.Selected[i] != want[i] {
			t.Fatalf("pick %d: expected %+v, got %+v", i, want[i], report.Selected[i])
		}
	}
	if report.Mode != knapsack.FullTable.String() {
		t.Fatalf("expected full table for a small request, got %s", report.Mode)
	}
}

func TestPlanAllInfeasibleIsNotAnError(t *testing.T) {
	t.Parallel()

	planner := NewPlanner(nil)
	report, err := planner.Plan(context.Background(), Request{
		Items:    []knapsack.Item{{Name: "A", Cost: 5, Profit: 10}},
		Capacity: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Empty() || report.MaxProfit != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
	if report.Selected == nil {
		t.Fatalf("expected non-nil selection so it encodes as []")
	}
	if report.Remaining != 3 {
		t.Fatalf("expected full capacity remaining, got %d", report.Remaining)
	}
}

func TestPlanValidation(t *testing.T) {
	t.Parallel()

	planner := NewPlanner(nil, WithLimits(Limits{MaxCapacity: 100, MaxItems: 2}))

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{name: "NoItems", req: Request{Capacity: 10}, wantErr: ErrNoItems},
		{name: "ZeroCapacity", req: Request{Items: classicItems()[:1], Capacity: 0}, wantErr: ErrInvalidCapacity},
		{name: "CapacityTooLarge", req: Request{Items: classicItems()[:1], Capacity: 101}, wantErr: ErrCapacityTooLarge},
		{name: "TooManyItems", req: Request{Items: classicItems(), Capacity: 50}, wantErr: ErrTooManyItems},
		{name: "InvalidItem", req: Request{Items: []knapsack.Item{{Name: "A", Cost: 0}}, Capacity: 5}, wantErr: knapsack.ErrInvalidItem},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, err := planner.Plan(context.Background(), tc.req); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestPlanHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPlanner(nil).Plan(ctx, Request{Items: classicItems(), Capacity: 50})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPlanSwitchesToRollingRowAboveCellLimit(t *testing.T) {
	t.Parallel()

	planner := NewPlanner(nil, WithSolverOptions(knapsack.Options{MemoryMode: knapsack.Auto, CellLimit: 64}))
	report, err := planner.Plan(context.Background(), Request{Items: classicItems(), Capacity: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Mode != knapsack.RollingRow.String() {
		t.Fatalf("expected rolling mode, got %s", report.Mode)
	}
	if report.MaxProfit != 220 {
		t.Fatalf("expected the same optimum in rolling mode, got %d", report.MaxProfit)
	}
}

func TestPlanUnboundedCapacityIsRejectedNotPanicking(t *testing.T) {
	t.Parallel()

	planner := NewPlanner(nil, WithLimits(Limits{}))
	_, err := planner.Plan(context.Background(), Request{Items: classicItems(), Capacity: math.MaxInt})
	if !errors.Is(err, knapsack.ErrTableTooLarge) {
		t.Fatalf("expected ErrTableTooLarge, got %v", err)
	}
}

func TestPlanMeasuresElapsedWithClock(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * 5 * time.Millisecond)
	}

	report, err := NewPlanner(nil, WithClock(clock)).Plan(context.Background(), Request{Items: classicItems(), Capacity: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Elapsed != 5*time.Millisecond || report.ElapsedMs != 5 {
		t.Fatalf("expected 5ms elapsed, got %s (%dms)", report.Elapsed, report.ElapsedMs)
	}
}

func TestPlanRecordsSpan(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	planner := NewPlanner(nil, WithTracer(provider.Tracer("test")))
	if _, err := planner.Plan(context.Background(), Request{Items: classicItems(), Capacity: 50}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := planner.Plan(context.Background(), Request{Capacity: 50}); err == nil {
		t.Fatalf("expected error for empty request")
	}

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name() != "bundle.Plan" {
		t.Fatalf("unexpected span name %q", spans[0].Name())
	}
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if got := attrs["bundle.max_profit"].AsInt64(); got != 220 {
		t.Fatalf("expected max_profit attribute 220, got %d", got)
	}
	if spans[1].Status().Code != codes.Error {
		t.Fatalf("expected failed run to mark the span as error, got %v", spans[1].Status())
	}
}

func TestReportSummaryUsesThousandsSeparators(t *testing.T) {
	t.Parallel()

	report := Report{MaxProfit: 1234567, Capacity: 50000, TotalCost: 49999, TotalProfit: 1234567}
	if got, want := report.Summary(language.English), "Profit = 1,234,567 (Capacity 50,000)"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if got, want := report.Totals(language.English), "Total Cost: 49,999  Total Profit: 1,234,567"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestReportBars(t *testing.T) {
	t.Parallel()

	report := Report{Selected: []Pick{
		{Name: "Y", Profit: 100},
		{Name: "Z", Profit: 120},
		{Name: "Tiny", Profit: 1},
		{Name: "Free", Profit: 0},
	}}

	bars := report.Bars(12)
	want := []Bar{
		{Name: "Y", Profit: 100, Length: 10},
		{Name: "Z", Profit: 120, Length: 12},
		{Name: "Tiny", Profit: 1, Length: 1},
		{Name: "Free", Profit: 0, Length: 0},
	}
	if len(bars) != len(want) {
		t.Fatalf("expected %d bars, got %d", len(want), len(bars))
	}
	for i := range want {
		if bars[i] != want[i] {
			t.Fatalf("bar %d: expected %+v, got %+v", i, want[i], bars[i])
		}
	}

	if got := (Report{}).Bars(10); len(got) != 0 {
		t.Fatalf("expected no bars for an empty report, got %v", got)
	}
}

func TestRequestSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	req := Request{Items: classicItems(), Capacity: 50}
	snap := req.snapshot()
	snap[0].Name = "changed"
	if req.Items[0].Name != "X" {
		t.Fatalf("expected snapshot to be independent of the request")
	}
}
