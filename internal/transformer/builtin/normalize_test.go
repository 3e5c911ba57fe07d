package builtin

import (
	"reflect"
	"testing"

	"rxclaims/pkg/records"
)

func TestNormalizeApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   records.Record
		want records.Record
	}{
		{
			name: "non_strings_untouched",
			in:   records.Record{"quantity": 10.0, "b": true, "c": nil},
			want: records.Record{"quantity": 10.0, "b": true, "c": nil},
		},
		{
			name: "trim_and_nbsp",
			in:   records.Record{"chain": "\u00a0health \t", "npi": " p0000\n"},
			want: records.Record{"chain": "health", "npi": "p0000"},
		},
		{
			name: "nfc_folds_decomposed_accents",
			in:   records.Record{"chain": "sante\u0301"},
			want: records.Record{"chain": "sant\u00e9"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Normalize{}.Apply([]records.Record{tc.in})
			if !reflect.DeepEqual(got[0], tc.want) {
				t.Fatalf("got %#v; want %#v", got[0], tc.want)
			}
		})
	}
}
