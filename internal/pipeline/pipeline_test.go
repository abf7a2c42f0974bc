package pipeline

import (
	"reflect"
	"testing"
)

func TestOrderTopicsWeightDescNameAsc(t *testing.T) {
	weights := map[string]int{
		"Sports":     2,
		"Technology": 5,
		"Arts":       2,
		"Climate":    4,
	}

	got := orderTopics(weights)

	want := []string{"Technology", "Climate", "Arts", "Sports"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("orderTopics = %v, want %v", got, want)
	}
}

func TestOrderTopicsEmpty(t *testing.T) {
	if got := orderTopics(nil); len(got) != 0 {
		t.Errorf("orderTopics(nil) = %v, want empty", got)
	}
}
