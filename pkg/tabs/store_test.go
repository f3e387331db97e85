package tabs

import (
	"testing"

	"mercator-hq/warden/pkg/policy/model"
)

func TestStore_SetGetDelete(t *testing.T) {
	s := NewStore()

	if _, ok := s.Get(1); ok {
		t.Fatal("Get() on empty store ok = true")
	}

	s.Set(1, []model.PolicyAction{{Category: "ads", Action: model.ActionWarn}})
	got, ok := s.Get(1)
	if !ok || len(got) != 1 || got[0].Category != "ads" {
		t.Fatalf("Get(1) = %+v, %v", got, ok)
	}

	s.Set(1, nil)
	got, ok = s.Get(1)
	if !ok {
		t.Fatal("empty evaluation should still be present")
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Get(1) = %#v, want empty non-nil", got)
	}

	s.Delete(1)
	if _, ok := s.Get(1); ok {
		t.Error("entry survived Delete")
	}
	s.Delete(1)
}

func TestStore_CopiesOnReadAndWrite(t *testing.T) {
	s := NewStore()
	in := []model.PolicyAction{{Category: "a"}}
	s.Set(7, in)
	in[0].Category = "mutated"

	got, _ := s.Get(7)
	if got[0].Category != "a" {
		t.Errorf("stored entry aliased caller slice: %q", got[0].Category)
	}

	got[0].Category = "again"
	again, _ := s.Get(7)
	if again[0].Category != "a" {
		t.Errorf("returned slice aliases store: %q", again[0].Category)
	}
}

func TestStore_Len(t *testing.T) {
	s := NewStore()
	s.Set(1, nil)
	s.Set(2, nil)
	s.Set(1, nil)
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}
