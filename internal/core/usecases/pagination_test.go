package usecases_test

import (
	"reflect"
	"testing"

	"github.com/supercivilian/supercivilian/internal/core/usecases"
)

func TestPaginate(t *testing.T) {
	items := []int{0, 1, 2, 3, 4}

	tests := []struct {
		name          string
		offset, limit int
		want          []int
	}{
		{"first page", 0, 2, []int{0, 1}},
		{"middle", 1, 3, []int{1, 2, 3}},
		{"truncated", 3, 10, []int{3, 4}},
		{"offset at end", 5, 10, []int{}},
		{"offset past end", 9, 1, []int{}},
		{"zero limit", 0, 0, []int{}},
		{"negative offset", -3, 2, []int{0, 1}},
		{"negative limit", 1, -1, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := usecases.Paginate(items, tt.offset, tt.limit)
			if got == nil {
				t.Fatal("expected non-nil slice")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Paginate(%d, %d) = %v, want %v", tt.offset, tt.limit, got, tt.want)
			}
		})
	}
}

func TestPaginate_NilInput(t *testing.T) {
	got := usecases.Paginate[int](nil, 0, 10)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}
