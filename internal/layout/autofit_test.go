package layout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAutoFit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		start        string
		lineHeight   string
		height       func(float64) float64
		cfg          FitConfig
		wantSize     float64
		wantAttempts int
		wantOutcome  FitOutcome
	}{
		{
			name:         "shrinks from 64 until text fits at 44",
			start:        "64px",
			lineHeight:   "normal",
			height:       wrapsAbove(44),
			cfg:          FitConfig{Enabled: true, MinFontSize: 40, Step: 4, MaxAttempts: 20},
			wantSize:     44,
			wantAttempts: 5,
			wantOutcome:  OutcomeFitted,
		},
		{
			name:         "already fits",
			start:        "64px",
			lineHeight:   "normal",
			height:       wrapsAbove(100),
			cfg:          FitConfig{Enabled: true},
			wantSize:     64,
			wantAttempts: 0,
			wantOutcome:  OutcomeFitted,
		},
		{
			name:         "stops at minimum font size",
			start:        "64px",
			lineHeight:   "normal",
			height:       wrapsAbove(10),
			cfg:          FitConfig{Enabled: true, MinFontSize: 48, Step: 4, MaxAttempts: 20},
			wantSize:     48,
			wantAttempts: 4,
			wantOutcome:  OutcomeMinFontSize,
		},
		{
			name:         "decrement is not clamped to minimum",
			start:        "50px",
			lineHeight:   "normal",
			height:       wrapsAbove(10),
			cfg:          FitConfig{Enabled: true, MinFontSize: 48, Step: 4, MaxAttempts: 20},
			wantSize:     46,
			wantAttempts: 1,
			wantOutcome:  OutcomeMinFontSize,
		},
		{
			name:         "stops at max attempts",
			start:        "64px",
			lineHeight:   "normal",
			height:       wrapsAbove(10),
			cfg:          FitConfig{Enabled: true, MinFontSize: 12, Step: 2, MaxAttempts: 3},
			wantSize:     58,
			wantAttempts: 3,
			wantOutcome:  OutcomeMaxAttempts,
		},
		{
			name:       "explicit line height is used",
			start:      "40px",
			lineHeight: "100px",
			height: func(float64) float64 {
				return 140
			},
			cfg:          FitConfig{Enabled: true, MinFontSize: 12},
			wantSize:     40,
			wantAttempts: 0,
			wantOutcome:  OutcomeFitted,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			el := newFakeElement()
			el.styles["font-size"] = tt.start
			el.styles["line-height"] = tt.lineHeight
			el.height = tt.height

			got, err := AutoFit(el, tt.cfg)
			if err != nil {
				t.Fatalf("AutoFit() error = %v", err)
			}
			if got.FontSize != tt.wantSize {
				t.Errorf("AutoFit() FontSize = %v, want %v", got.FontSize, tt.wantSize)
			}
			if got.Attempts != tt.wantAttempts {
				t.Errorf("AutoFit() Attempts = %d, want %d", got.Attempts, tt.wantAttempts)
			}
			if got.Outcome != tt.wantOutcome {
				t.Errorf("AutoFit() Outcome = %q, want %q", got.Outcome, tt.wantOutcome)
			}
			if len(el.setCalls) != tt.wantAttempts {
				t.Errorf("SetStyle called %d times, want %d", len(el.setCalls), tt.wantAttempts)
			}
		})
	}
}

func TestAutoFit_WritesEachStep(t *testing.T) {
	t.Parallel()

	el := newFakeElement()
	el.styles["font-size"] = "64px"
	el.styles["line-height"] = "normal"
	el.height = wrapsAbove(44)

	if _, err := AutoFit(el, FitConfig{Enabled: true, MinFontSize: 40, Step: 4}); err != nil {
		t.Fatalf("AutoFit() error = %v", err)
	}

	want := []string{
		"font-size=60px",
		"font-size=56px",
		"font-size=52px",
		"font-size=48px",
		"font-size=44px",
	}
	if diff := cmp.Diff(want, el.setCalls); diff != "" {
		t.Errorf("SetStyle calls mismatch (-want +got):\n%s", diff)
	}
}

func TestAutoFit_Errors(t *testing.T) {
	t.Parallel()

	t.Run("unparseable font size", func(t *testing.T) {
		t.Parallel()

		el := newFakeElement()
		el.styles["font-size"] = "large"

		if _, err := AutoFit(el, FitConfig{Enabled: true}); err == nil {
			t.Error("AutoFit() error = nil, want error")
		}
	})

	t.Run("write failure is returned", func(t *testing.T) {
		t.Parallel()

		el := newFakeElement()
		el.styles["font-size"] = "64px"
		el.height = wrapsAbove(10)
		el.setErr = errFake

		_, err := AutoFit(el, FitConfig{Enabled: true})
		if !errors.Is(err, errFake) {
			t.Errorf("AutoFit() error = %v, want %v", err, errFake)
		}
	})
}

func TestRunAutoFit(t *testing.T) {
	t.Parallel()

	t.Run("nil config is a no-op", func(t *testing.T) {
		t.Parallel()

		el := newFakeElement()
		el.styles["font-size"] = "64px"
		el.height = wrapsAbove(10)
		doc := &fakeDocument{elements: map[string]*fakeElement{".text-1": el}}

		if got := RunAutoFit(context.Background(), doc, nil, nil); got != nil {
			t.Errorf("RunAutoFit() = %v, want nil", got)
		}
		if len(el.setCalls) != 0 {
			t.Errorf("SetStyle called %d times, want 0", len(el.setCalls))
		}
	})

	t.Run("disabled config is a no-op", func(t *testing.T) {
		t.Parallel()

		doc := &fakeDocument{elements: map[string]*fakeElement{}}
		if got := RunAutoFit(context.Background(), doc, &FitConfig{Enabled: false}, nil); got != nil {
			t.Errorf("RunAutoFit() = %v, want nil", got)
		}
	})

	t.Run("missing targets are skipped with a warning", func(t *testing.T) {
		t.Parallel()

		el := newFakeElement()
		el.styles["font-size"] = "64px"
		el.styles["line-height"] = "normal"
		el.height = wrapsAbove(44)
		doc := &fakeDocument{elements: map[string]*fakeElement{".text-2": el}}

		core, logs := observer.New(zap.WarnLevel)
		cfg := &FitConfig{
			Enabled:     true,
			Targets:     []string{".text-1", ".text-2"},
			MinFontSize: 40,
			Step:        4,
		}

		got := RunAutoFit(context.Background(), doc, cfg, zap.New(core))

		want := []FitResult{{
			Selector:        ".text-2",
			InitialFontSize: 64,
			FontSize:        44,
			Attempts:        5,
			Outcome:         OutcomeFitted,
		}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("RunAutoFit() mismatch (-want +got):\n%s", diff)
		}
		if n := logs.FilterMessage("auto-fit target not found").Len(); n != 1 {
			t.Errorf("warnings logged = %d, want 1", n)
		}
	})

	t.Run("default target", func(t *testing.T) {
		t.Parallel()

		el := newFakeElement()
		el.styles["font-size"] = "64px"
		el.styles["line-height"] = "normal"
		el.height = wrapsAbove(52)
		doc := &fakeDocument{elements: map[string]*fakeElement{".text-1": el}}

		got := RunAutoFit(context.Background(), doc, DefaultFitConfig(), zap.NewNop())
		if len(got) != 1 {
			t.Fatalf("RunAutoFit() returned %d results, want 1", len(got))
		}
		if got[0].FontSize != 52 {
			t.Errorf("FontSize = %v, want 52", got[0].FontSize)
		}
	})

	t.Run("query errors are skipped", func(t *testing.T) {
		t.Parallel()

		doc := &fakeDocument{queryErr: errFake}
		got := RunAutoFit(context.Background(), doc, DefaultFitConfig(), nil)
		if len(got) != 0 {
			t.Errorf("RunAutoFit() returned %d results, want 0", len(got))
		}
	})
}
