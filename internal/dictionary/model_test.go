package dictionary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Cat", "cat"},
		{"  Dog\t", "dog"},
		{"ICE CREAM", "ice cream"},
		{"", ""},
		{"   ", ""},
		{"Ärger", "ärger"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestMeanings_Scan(t *testing.T) {
	english := "a small domesticated feline"
	want := Meanings{
		{
			PartOfSpeech: "noun",
			Korean:       "고양이",
			English:      &english,
			Examples:     []Example{{EN: "The cat sleeps.", KO: "고양이가 잔다."}},
		},
	}
	raw := `[{"partOfSpeech":"noun","korean":"고양이","english":"a small domesticated feline","examples":[{"en":"The cat sleeps.","ko":"고양이가 잔다."}]}]`

	tests := []struct {
		name    string
		src     any
		want    Meanings
		wantErr bool
	}{
		{name: "bytes", src: []byte(raw), want: want},
		{name: "string", src: raw, want: want},
		{name: "null", src: nil, want: nil},
		{name: "empty", src: []byte{}, want: nil},
		{name: "invalid json", src: "{", wantErr: true},
		{name: "unsupported type", src: 42, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Meanings
			err := got.Scan(tt.src)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMeanings_Value(t *testing.T) {
	got, err := Meanings(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", got)

	got, err = Meanings{{PartOfSpeech: "verb", Korean: "달리다", Examples: []Example{}}}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"partOfSpeech":"verb","korean":"달리다","examples":[]}]`, got.(string))
}

func TestStats(t *testing.T) {
	tests := []struct {
		name        string
		stats       Stats
		wantAverage float64
		wantSaved   int64
		wantHitRate float64
	}{
		{
			name: "empty store",
		},
		{
			name:        "usage above word count",
			stats:       Stats{TotalWords: 4, TotalUsage: 10},
			wantAverage: 2.5,
			wantSaved:   6,
			wantHitRate: 60,
		},
		{
			name:        "imported words never used",
			stats:       Stats{TotalWords: 10, TotalUsage: 2},
			wantAverage: 0.2,
			wantSaved:   0,
			wantHitRate: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantAverage, tt.stats.AverageUsage(), 1e-9)
			assert.Equal(t, tt.wantSaved, tt.stats.SavedGenerations())
			assert.InDelta(t, tt.wantHitRate, tt.stats.HitRate(), 1e-9)
		})
	}
}
