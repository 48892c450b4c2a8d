package portfolio

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bastiangx/tickerspell/pkg/strategy"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestRunner_SingleCompletion(t *testing.T) {
	r := NewRunner(New(testUniverse()), 2)
	defer r.Close()

	done, err := r.Submit(context.Background(), Job{
		ID:         "job-1",
		Text:       "AAPL",
		Strategies: []strategy.Strategy{strategy.InstWhale},
	})
	if err != nil {
		t.Fatal(err)
	}

	res, ok := <-done
	if !ok {
		t.Fatal("result channel closed without a result")
	}
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if res.JobID != "job-1" {
		t.Errorf("JobID = %q, want job-1", res.JobID)
	}
	if len(res.Portfolios) != 1 || res.Portfolios[0].Strategy != strategy.InstWhale {
		t.Fatalf("portfolios = %+v", res.Portfolios)
	}
	if _, more := <-done; more {
		t.Error("runner delivered more than one result")
	}
}

func TestRunner_AllStrategiesByDefault(t *testing.T) {
	r := NewRunner(New(testUniverse()), 1)
	defer r.Close()

	res := r.Run(context.Background(), Job{Text: "The Great Apple"})
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if _, err := uuid.Parse(res.JobID); err != nil {
		t.Errorf("generated JobID %q is not a uuid: %v", res.JobID, err)
	}
	if len(res.Portfolios) != len(strategy.All) {
		t.Fatalf("got %d portfolios, want %d", len(res.Portfolios), len(strategy.All))
	}
	for i, p := range res.Portfolios {
		if p.Strategy != strategy.All[i] {
			t.Errorf("portfolio %d strategy = %v, want %v", i, p.Strategy, strategy.All[i])
		}
	}
}

func TestRunner_MatchesDirectBuild(t *testing.T) {
	e := New(testUniverse())
	r := NewRunner(e, 4)
	defer r.Close()

	text := "Tesla, the great apple, and a fine Nvidia driver took Ford to Kansas overnight."
	var wg sync.WaitGroup
	for _, s := range strategy.All {
		wg.Add(1)
		go func(s strategy.Strategy) {
			defer wg.Done()
			want, err := e.Build(context.Background(), text, s)
			if err != nil {
				t.Error(err)
				return
			}
			res := r.Run(context.Background(), Job{Text: text, Strategies: []strategy.Strategy{s}})
			if res.Err != nil {
				t.Error(res.Err)
				return
			}
			if diff := cmp.Diff(want, res.Portfolios[0]); diff != "" {
				t.Errorf("%v: runner result differs (-direct +runner):\n%s", s, diff)
			}
		}(s)
	}
	wg.Wait()
}

func TestRunner_InvalidStrategy(t *testing.T) {
	r := NewRunner(New(testUniverse()), 1)
	defer r.Close()

	res := r.Run(context.Background(), Job{Text: "x", Strategies: []strategy.Strategy{strategy.Strategy(7)}})
	if !errors.Is(res.Err, strategy.ErrUnknownStrategy) {
		t.Errorf("error = %v, want ErrUnknownStrategy", res.Err)
	}
}

func TestRunner_Cancelled(t *testing.T) {
	r := NewRunner(New(testUniverse()), 1)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := r.Run(ctx, Job{Text: "The Great Apple"})
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", res.Err)
	}
}

func TestRunner_Closed(t *testing.T) {
	r := NewRunner(New(testUniverse()), 1)
	r.Close()

	if _, err := r.Submit(context.Background(), Job{Text: "AAPL"}); !errors.Is(err, ErrRunnerClosed) {
		t.Errorf("Submit after Close error = %v, want ErrRunnerClosed", err)
	}
}
