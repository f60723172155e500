package promptgen

import (
	"reflect"
	"testing"
)

func TestParseExcludeMode(t *testing.T) {
	t.Parallel()

	if m, err := ParseExcludeMode("drop"); err != nil || m != ExcludeDrop {
		t.Fatalf("ParseExcludeMode(drop)=%q, %v", m, err)
	}
	if m, err := ParseExcludeMode("reject"); err != nil || m != ExcludeReject {
		t.Fatalf("ParseExcludeMode(reject)=%q, %v", m, err)
	}
	if _, err := ParseExcludeMode("purge"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestFilterTags_Drop(t *testing.T) {
	t.Parallel()

	excluded := ExclusionSet{}
	excluded.Add("b")

	kept, ok := FilterTags([]string{"a", "b", "c"}, excluded, ExcludeDrop)
	if !ok {
		t.Fatal("expected candidate accepted")
	}
	if want := []string{"a", "c"}; !reflect.DeepEqual(kept, want) {
		t.Fatalf("kept=%v, want %v", kept, want)
	}
}

func TestFilterTags_DropAllExcluded(t *testing.T) {
	t.Parallel()

	excluded := ExclusionSet{}
	excluded.AddText("a, b, c")

	if _, ok := FilterTags([]string{"a", "b", "c"}, excluded, ExcludeDrop); ok {
		t.Fatal("expected candidate rejected when every tag is excluded")
	}
}

func TestFilterTags_Reject(t *testing.T) {
	t.Parallel()

	excluded := ExclusionSet{}
	excluded.Add("b")

	if kept, ok := FilterTags([]string{"a", "b", "c"}, excluded, ExcludeReject); ok || kept != nil {
		t.Fatalf("expected wholesale rejection, got kept=%v ok=%v", kept, ok)
	}
	kept, ok := FilterTags([]string{"a", "c"}, excluded, ExcludeReject)
	if !ok || !reflect.DeepEqual(kept, []string{"a", "c"}) {
		t.Fatalf("clean candidate should pass unchanged, got kept=%v ok=%v", kept, ok)
	}
}

func TestFilterTags_NormalizedMatching(t *testing.T) {
	t.Parallel()

	excluded := ExclusionSet{}
	excluded.Add("(Sheer Fabric)")

	if _, ok := FilterTags([]string{"sheer  fabric"}, excluded, ExcludeReject); ok {
		t.Fatal("decoration and case must not defeat exclusion matching")
	}
}

func TestFilterTags_EmptySet(t *testing.T) {
	t.Parallel()

	kept, ok := FilterTags([]string{"a"}, nil, ExcludeReject)
	if !ok || !reflect.DeepEqual(kept, []string{"a"}) {
		t.Fatalf("kept=%v ok=%v", kept, ok)
	}
	if _, ok := FilterTags(nil, nil, ExcludeDrop); ok {
		t.Fatal("empty candidate must not be accepted")
	}
}
