package testutil

import (
	"reflect"
	"testing"
)

func TestParseSSEData(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "empty stream",
			body: "",
			want: nil,
		},
		{
			name: "single fragment",
			body: "data: hello\n\n",
			want: []string{"hello"},
		},
		{
			name: "multiple fragments",
			body: "data: one\n\ndata: two\n\ndata: three\n\n",
			want: []string{"one", "two", "three"},
		},
		{
			name: "multi-line data joined",
			body: "data: first\ndata: second\n\n",
			want: []string{"first\nsecond"},
		},
		{
			name: "comments ignored",
			body: ": keepalive\ndata: hi\n\n",
			want: []string{"hi"},
		},
		{
			name: "empty data line",
			body: "data:\n\n",
			want: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSSEData(t, tt.body)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSSEData(%q) = %#v, want %#v", tt.body, got, tt.want)
			}
		})
	}
}
