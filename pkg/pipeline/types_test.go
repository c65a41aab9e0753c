package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/user/framecast/pkg/ports"
)

func TestStillSource(t *testing.T) {
	src := StillSource{
		{Data: []byte("a"), DurationMs: 10},
		{Data: []byte("b"), DurationMs: 20},
	}
	if src.Len() != 2 {
		t.Fatalf("expected 2, got %d", src.Len())
	}

	var got []ports.StillFrame
	for unit := range src.Units(context.Background()) {
		f, err := unit(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, f)
	}
	if string(got[1].Data) != "b" || got[1].DurationMs != 20 {
		t.Errorf("unexpected frame %+v", got[1])
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for unit := range src.Units(ctx) {
		if _, err := unit(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		break
	}
}

func TestStageFunc(t *testing.T) {
	var stage Stage[int, int] = StageFunc[int, int](func(ctx context.Context, in int) (int, error) {
		return in * 2, nil
	})

	out, err := stage.Execute(context.Background(), 21)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != 42 {
		t.Errorf("expected 42, got %d", out)
	}
}
