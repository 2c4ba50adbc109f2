package try_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/opst/crqboard/pkg/utils/try"
)

type fataler struct {
	helped bool
	got    []any
}

func (f *fataler) Helper() {
	f.helped = true
}

func (f *fataler) Fatal(v ...any) {
	f.got = append(f.got, v...)
}

func TestTo(t *testing.T) {
	t.Run("with no error, it gives the value", func(t *testing.T) {
		f := new(fataler)
		if v := try.To(42, nil).OrFatal(f); v != 42 {
			t.Errorf("value: %d", v)
		}
		if len(f.got) != 0 {
			t.Errorf("Fatal is called: %v", f.got)
		}

		v, err := try.To("ok", nil).Get()
		if v != "ok" || err != nil {
			t.Errorf("Get: (%q, %v)", v, err)
		}
	})

	t.Run("with error, it calls Fatal and gives zero value", func(t *testing.T) {
		expected := errors.New("fake error")
		f := new(fataler)

		if v := try.To(42, expected).OrFatal(f); v != 0 {
			t.Errorf("value: %d", v)
		}
		if !f.helped {
			t.Error("Helper is not called")
		}
		if len(f.got) != 1 || f.got[0] != expected {
			t.Errorf("Fatal is called with: %v", f.got)
		}

		v, err := try.To("broken", fmt.Errorf("wrapped: %w", expected)).Get()
		if v != "" || !errors.Is(err, expected) {
			t.Errorf("Get: (%q, %v)", v, err)
		}
	})
}
