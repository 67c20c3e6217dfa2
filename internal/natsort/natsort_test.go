package natsort

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"equal", "page1.jpg", "page1.jpg", 0},
		{"numeric before lexical", "page2.jpg", "page10.jpg", -1},
		{"reverse", "page10.jpg", "page2.jpg", 1},
		{"leading zeros equal value", "page002.jpg", "page2.jpg", 0},
		{"plain strings", "cover.png", "page1.jpg", -1},
		{"prefix", "page", "page1", -1},
		{"mixed runs", "v1c10p3", "v1c9p3", 1},
		{"digits vs letters", "1.jpg", "a.jpg", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
		})
	}
}

func TestSort(t *testing.T) {
	t.Parallel()

	names := []string{"page10.jpg", "page2.jpg", "page1.jpg", "cover.png", "page11.jpg"}
	Sort(names)
	assert.Equal(t, []string{"cover.png", "page1.jpg", "page2.jpg", "page10.jpg", "page11.jpg"}, names)
}
