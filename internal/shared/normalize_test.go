package shared

import "testing"

func TestNormalizeText(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "collapses whitespace runs",
			in:   "The  Fire \t Next\nTime",
			want: "The Fire Next Time",
		},
		{
			name: "trims leading and trailing whitespace",
			in:   "  Ancillary Justice  ",
			want: "Ancillary Justice",
		},
		{
			name: "empty string",
			in:   "",
			want: "",
		},
		{
			name: "whitespace only",
			in:   " \t\n ",
			want: "",
		},
		{
			name: "already normalized",
			in:   "James Baldwin",
			want: "James Baldwin",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeText(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	tc := []struct {
		name   string
		author string
		title  string
		want   string
	}{
		{
			name:   "basic normalization",
			author: "Ann Leckie",
			title:  "Ancillary Justice",
			want:   "ann leckie|ancillary justice",
		},
		{
			name:   "case folding",
			author: "JaMeS BaLdWiN",
			title:  "The FIRE Next Time",
			want:   "james baldwin|the fire next time",
		},
		{
			name:   "internal whitespace collapsed",
			author: "Ursula  K.   Le Guin",
			title:  " The Dispossessed ",
			want:   "ursula k. le guin|the dispossessed",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeKey(tt.author, tt.title)
			if got != tt.want {
				t.Errorf("NormalizeKey() = %v, want %v", got, tt.want)
			}
		})
	}
}
