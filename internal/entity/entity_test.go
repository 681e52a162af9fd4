package entity

import "testing"

func TestLocatedValue(t *testing.T) {
	var unset LocatedFloat
	if unset.IsSet() || unset.Position() != NoPosition || unset.Or(7) != 7 {
		t.Errorf("zero value = %+v", unset)
	}

	v := Located(12.5, " 12.5 ", At(1, 2, 3))
	if got, ok := v.Get(); !ok || got != 12.5 {
		t.Errorf("Get = %v %v", got, ok)
	}
	if v.RawText != " 12.5 " || v.Position() != At(1, 2, 3) || !v.Position().Valid() {
		t.Errorf("located = %+v", v)
	}

	c := Computed("元/㎡")
	if !c.IsSet() || c.Position().Valid() || c.RawText != "" {
		t.Errorf("computed = %+v", c)
	}

	d := Derived(2008, Located("2008年建成", "2008年建成", At(0, 4, 1)))
	if d.Or(0) != 2008 || d.RawText != "2008年建成" || d.Position() != At(0, 4, 1) {
		t.Errorf("derived = %+v", d)
	}
	if Derived(1, LocatedString{}).Position() != NoPosition {
		t.Error("derived from unlocated value gained a position")
	}
}

func TestLocatedCopiesPosition(t *testing.T) {
	pos := At(1, 1, 1)
	v := Located("x", "x", pos)
	pos.TableIndex = 9
	if v.Position().TableIndex != 1 {
		t.Error("position aliases the caller's value")
	}
}

func TestFactorSet(t *testing.T) {
	var s FactorSet
	f := s.Lookup(FactorPhysical, "floor", "楼层")
	if f == nil || f.Category != FactorPhysical || f.Label != "楼层" {
		t.Fatalf("Lookup = %+v", f)
	}
	if again := s.Lookup(FactorPhysical, "floor", "层次"); again != f || again.Label != "楼层" {
		t.Error("second Lookup replaced the factor")
	}
	if s.Lookup("other", "x", "x") != nil {
		t.Error("unknown category created a factor")
	}
	if got, ok := s.Find("floor"); !ok || got != f {
		t.Error("Find missed the factor")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d", s.Len())
	}

	if f.IndexValue() != DefaultFactorIndex || f.IndexNormalized() != 1 {
		t.Errorf("default index = %v", f.IndexValue())
	}
	f.Index = Located(102.0, "102", At(8, 3, 2))
	if f.IndexNormalized() != 1.02 {
		t.Errorf("normalized = %v", f.IndexNormalized())
	}
}

func TestFloorFactorDefaults(t *testing.T) {
	r := &ExtractionResult{}
	if r.FloorFactorValue() != 1.0 {
		t.Errorf("result floor factor = %v", r.FloorFactorValue())
	}
	b := &BatchSubject{FloorFactor: Located(0.98, "98%", At(3, 1, 2))}
	if b.FloorFactorValue() != 0.98 {
		t.Errorf("subject floor factor = %v", b.FloorFactorValue())
	}
}
