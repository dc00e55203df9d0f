package prefs

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/goliatone/go-prefs/pkg/format"
	"github.com/goliatone/go-prefs/pkg/rules"
)

func bindField(t *testing.T, adapter FormatBinder, codec format.Format) {
	t.Helper()
	if err := adapter.Bind(codec); err != nil {
		t.Fatalf("bind: %v", err)
	}
}

func TestFieldChangedBeforeBaseline(t *testing.T) {
	volume := 0.5
	field := NewField("volume", &volume)
	bindField(t, field, format.JSON{})

	if !field.Changed() {
		t.Fatalf("field without baseline should report changed")
	}
	field.CommitBaseline()
	if field.Changed() {
		t.Fatalf("field should be clean after commit")
	}
}

func TestFieldChangedTracksMutation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*float64)
		want   bool
	}{
		{name: "unchanged", mutate: func(*float64) {}, want: false},
		{name: "new value", mutate: func(v *float64) { *v = 0.9 }, want: true},
		{name: "same value written back", mutate: func(v *float64) { *v = 0.5 }, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			volume := 0.5
			field := NewField("volume", &volume)
			bindField(t, field, format.JSON{})
			field.CommitBaseline()

			tc.mutate(&volume)
			if got := field.Changed(); got != tc.want {
				t.Fatalf("Changed() = %v, want %v", got, tc.want)
			}
			if got := field.Changed(); got != tc.want {
				t.Fatalf("Changed() must not move the baseline")
			}
		})
	}
}

func TestEncodedFieldDetectsNestedMutation(t *testing.T) {
	type keymap struct {
		Bindings map[string]string `json:"bindings"`
		Order    []string          `json:"order"`
	}
	keys := keymap{Bindings: map[string]string{"jump": "space"}, Order: []string{"jump"}}
	field := NewEncodedField("keys", &keys)
	bindField(t, field, format.JSON{})
	field.CommitBaseline()

	keys.Bindings["jump"] = "w"
	if !field.Changed() {
		t.Fatalf("map mutation should be detected")
	}
	field.CommitBaseline()

	keys.Order = append(keys.Order, "crouch")
	if !field.Changed() {
		t.Fatalf("slice append should be detected")
	}
}

func TestFieldWithEqualAndClone(t *testing.T) {
	scores := []int{10, 20}
	field := NewEncodedField("scores", &scores,
		WithEqual(func(a, b []int) bool { return slices.Equal(a, b) }),
		WithClone(func(v []int) []int { return slices.Clone(v) }),
	)
	bindField(t, field, format.JSON{})
	field.CommitBaseline()

	scores[0] = 99
	if !field.Changed() {
		t.Fatalf("in-place mutation should be visible against the cloned baseline")
	}
}

func TestFieldMismatchedEqualFailsBind(t *testing.T) {
	volume := 0.5
	field := NewField("volume", &volume, WithEqual(func(a, b int) bool { return a == b }))
	if err := field.Bind(format.JSON{}); err == nil {
		t.Fatalf("expected bind error for mismatched equal func")
	}
}

func TestFieldNilSlot(t *testing.T) {
	field := NewField[int]("count", nil)
	err := field.Bind(format.JSON{})
	if !errors.Is(err, ErrNilSlot) {
		t.Fatalf("expected ErrNilSlot, got %v", err)
	}
}

func TestFieldApplyWrongShapeKeepsValue(t *testing.T) {
	volume := 0.5
	field := NewField("volume", &volume)
	bindField(t, field, format.JSON{})

	err := field.Apply(Fragment(`"loud"`))
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %T", err)
	}
	if decodeErr.Field != "volume" {
		t.Fatalf("expected field name in error, got %q", decodeErr.Field)
	}
	if volume != 0.5 {
		t.Fatalf("slot should be untouched, got %v", volume)
	}

	if err := field.Apply(Fragment(`0.8`)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if volume != 0.8 {
		t.Fatalf("expected 0.8, got %v", volume)
	}
}

func TestFieldApplyNullKeepsValue(t *testing.T) {
	type audio struct {
		Master float64 `json:"master"`
	}
	volume := 0.5
	name := "Player"
	settings := audio{Master: 0.5}
	adapters := []Adapter{
		NewField("volume", &volume),
		NewField("name", &name),
		NewField("audio", &settings),
	}
	for _, codec := range []format.Format{format.JSON{}, format.YAML{}} {
		for _, adapter := range adapters {
			bindField(t, adapter.(FormatBinder), codec)
			for _, frag := range []string{"null", " null\n", "~"} {
				err := adapter.Apply(Fragment(frag))
				var decodeErr *DecodeError
				if !errors.As(err, &decodeErr) {
					t.Fatalf("%s %s: expected DecodeError for %q, got %v", codec.Name(), adapter.Name(), frag, err)
				}
			}
		}
	}
	if volume != 0.5 || name != "Player" || settings.Master != 0.5 {
		t.Fatalf("null must not reset values: %v %q %+v", volume, name, settings)
	}
}

func TestFieldApplyNullOnNillableType(t *testing.T) {
	tags := []string{"a"}
	field := NewEncodedField("tags", &tags)
	bindField(t, field, format.JSON{})

	if err := field.Apply(Fragment(`null`)); err != nil {
		t.Fatalf("null slice should decode: %v", err)
	}
	if tags != nil {
		t.Fatalf("expected nil slice, got %v", tags)
	}
}

func TestFieldApplyStructKeepsMissingKeys(t *testing.T) {
	type audio struct {
		Master float64           `json:"master"`
		Music  float64           `json:"music"`
		Device string            `json:"device"`
		Mix    map[string]string `json:"mix"`
	}
	cases := []struct {
		name  string
		frag  string
		want  audio
		codec format.Format
	}{
		{
			name:  "empty object",
			frag:  `{}`,
			want:  audio{Master: 0.5, Music: 0.3, Device: "default", Mix: map[string]string{"fx": "on"}},
			codec: format.JSON{},
		},
		{
			name:  "partial object",
			frag:  `{"music":0.9}`,
			want:  audio{Master: 0.5, Music: 0.9, Device: "default", Mix: map[string]string{"fx": "on"}},
			codec: format.JSON{},
		},
		{
			name:  "partial yaml mapping",
			frag:  "device: usb\n",
			want:  audio{Master: 0.5, Music: 0.3, Device: "usb", Mix: map[string]string{"fx": "on"}},
			codec: format.YAML{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mix := map[string]string{"fx": "on"}
			settings := audio{Master: 0.5, Music: 0.3, Device: "default", Mix: mix}
			field := NewEncodedField("audio", &settings)
			bindField(t, field, tc.codec)

			if err := field.Apply(Fragment(tc.frag)); err != nil {
				t.Fatalf("apply: %v", err)
			}
			if settings.Master != tc.want.Master || settings.Music != tc.want.Music || settings.Device != tc.want.Device {
				t.Fatalf("got %+v, want %+v", settings, tc.want)
			}
			if len(settings.Mix) != 1 || settings.Mix["fx"] != "on" {
				t.Fatalf("mix lost: %+v", settings.Mix)
			}
		})
	}
}

func TestFieldApplyStructDoesNotShareHostMaps(t *testing.T) {
	type keymap struct {
		Bindings map[string]string `json:"bindings"`
	}
	host := map[string]string{"jump": "space"}
	keys := keymap{Bindings: host}
	field := NewEncodedField("keys", &keys)
	bindField(t, field, format.JSON{})

	if err := field.Apply(Fragment(`{"bindings":{"crouch":"c"}}`)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(host) != 1 {
		t.Fatalf("host map mutated: %v", host)
	}
	if keys.Bindings["jump"] != "space" || keys.Bindings["crouch"] != "c" {
		t.Fatalf("expected merged bindings, got %v", keys.Bindings)
	}
}

func TestFieldNaNIsStable(t *testing.T) {
	volume := 0.5
	field := NewField("volume", &volume)
	bindField(t, field, format.JSON{})
	field.CommitBaseline()

	volume = math.NaN()
	if !field.Changed() {
		t.Fatalf("NaN should differ from 0.5")
	}
	field.CommitBaseline()
	if field.Changed() {
		t.Fatalf("NaN against a NaN baseline should be unchanged")
	}
	volume = 0.5
	if !field.Changed() {
		t.Fatalf("0.5 should differ from NaN")
	}
}

func TestFieldApplyYAML(t *testing.T) {
	name := "Player"
	field := NewField("name", &name)
	bindField(t, field, format.YAML{})

	if err := field.Apply(Fragment("Player1\n")); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if name != "Player1" {
		t.Fatalf("expected Player1, got %q", name)
	}
}

func TestFieldRule(t *testing.T) {
	engines := []struct {
		name      string
		evaluator rules.Evaluator
		expr      string
	}{
		{name: "expr", evaluator: rules.NewExprEvaluator(), expr: "value >= 0 && value <= 1"},
		{name: "cel", evaluator: rules.NewCELEvaluator(), expr: "value >= 0.0 && value <= 1.0"},
	}
	for _, engine := range engines {
		t.Run(engine.name, func(t *testing.T) {
			volume := 0.5
			field := NewField("volume", &volume, WithRule(engine.evaluator, engine.expr))
			bindField(t, field, format.JSON{})

			if err := field.Apply(Fragment(`0.25`)); err != nil {
				t.Fatalf("accepted value: %v", err)
			}
			if volume != 0.25 {
				t.Fatalf("expected 0.25, got %v", volume)
			}

			err := field.Apply(Fragment(`7.5`))
			if !errors.Is(err, ErrRuleRejected) {
				t.Fatalf("expected ErrRuleRejected, got %v", err)
			}
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("rule rejection should be a DecodeError, got %T", err)
			}
			if volume != 0.25 {
				t.Fatalf("rejected value must not be applied, got %v", volume)
			}
		})
	}
}

func TestFieldRuleWithoutEvaluator(t *testing.T) {
	volume := 0.5
	field := NewField("volume", &volume, WithRule(nil, "value > 0"))
	if err := field.Bind(format.JSON{}); err == nil {
		t.Fatalf("expected error for rule without evaluator")
	}
}

func TestFieldRuleCompileError(t *testing.T) {
	volume := 0.5
	field := NewField("volume", &volume, WithRule(rules.NewExprEvaluator(), "value >="))
	if err := field.Bind(format.JSON{}); err == nil {
		t.Fatalf("expected compile error to surface at bind")
	}
}

func TestFieldNotSerializable(t *testing.T) {
	ch := make(chan int)
	field := NewEncodedField("events", &ch)
	if err := field.Bind(format.JSON{}); err == nil {
		t.Fatalf("expected bind to reject a channel value")
	}
}

func TestFieldValidation(t *testing.T) {
	type audio struct {
		Master float64 `json:"master" validate:"gte=0,lte=1"`
		Device string  `json:"device" validate:"required"`
	}

	t.Run("scalar tag", func(t *testing.T) {
		volume := 0.5
		field := NewField("volume", &volume, WithValidation(nil, "gte=0,lte=1"))
		bindField(t, field, format.JSON{})

		if err := field.Apply(Fragment(`1.5`)); !errors.Is(err, ErrRuleRejected) {
			t.Fatalf("expected ErrRuleRejected, got %v", err)
		}
		if volume != 0.5 {
			t.Fatalf("invalid value applied: %v", volume)
		}
		if err := field.Apply(Fragment(`1`)); err != nil {
			t.Fatalf("valid value rejected: %v", err)
		}
	})

	t.Run("struct tags", func(t *testing.T) {
		settings := audio{Master: 0.5, Device: "default"}
		field := NewField("audio", &settings, WithValidation(nil, ""))
		bindField(t, field, format.JSON{})

		if err := field.Apply(Fragment(`{"master":0.7,"device":""}`)); !errors.Is(err, ErrRuleRejected) {
			t.Fatalf("empty required device should be rejected, got %v", err)
		}
		if err := field.Apply(Fragment(`{"master":0.7,"device":"usb"}`)); err != nil {
			t.Fatalf("valid struct rejected: %v", err)
		}
		if settings.Device != "usb" {
			t.Fatalf("expected usb, got %q", settings.Device)
		}
	})

	t.Run("scalar without tag", func(t *testing.T) {
		count := 1
		field := NewField("count", &count, WithValidation(nil, ""))
		if err := field.Bind(format.JSON{}); err == nil {
			t.Fatalf("expected bind error")
		}
	})
}
