package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	now := at(2024, 3, 8, 15, 0)

	tests := []struct {
		name    string
		q       Query
		want    Range
		wantErr error
	}{
		{
			name: "Default",
			want: Range{Start: day(2024, 2, 7), End: day(2024, 3, 8)},
		},
		{
			name: "OnlyStart",
			q:    Query{StartDate: day(2024, 3, 1)},
			want: Range{Start: day(2024, 2, 7), End: day(2024, 3, 8)},
		},
		{
			name: "Explicit",
			q:    Query{StartDate: day(2024, 3, 1), EndDate: day(2024, 3, 5)},
			want: Range{Start: day(2024, 3, 1), End: day(2024, 3, 5)},
		},
		{
			name: "SingleDay",
			q:    Query{StartDate: day(2024, 3, 5), EndDate: day(2024, 3, 5)},
			want: Range{Start: day(2024, 3, 5), End: day(2024, 3, 5)},
		},
		{
			name: "EndClampedToToday",
			q:    Query{StartDate: day(2024, 3, 1), EndDate: day(2024, 12, 31)},
			want: Range{Start: day(2024, 3, 1), End: day(2024, 3, 8)},
		},
		{
			name:    "StartAfterEnd",
			q:       Query{StartDate: day(2024, 3, 5), EndDate: day(2024, 3, 1)},
			wantErr: ErrInvalidDateRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.q, now, taipei)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_TodayInLocation(t *testing.T) {
	// 2024-03-08 20:00 UTC is already 2024-03-09 in Taipei.
	now := time.Date(2024, 3, 8, 20, 0, 0, 0, time.UTC)
	got, err := Resolve(Query{}, now, taipei)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 3, 9), got.End)
}

func TestRange_Bounds(t *testing.T) {
	r := Range{Start: day(2024, 3, 8), End: day(2024, 3, 8)}
	assert.Equal(t, day(2024, 3, 8), r.From())
	assert.Equal(t, at(2024, 3, 8, 23, 59).Add(59*time.Second+999999999*time.Nanosecond), r.To())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-08", taipei)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 3, 8), d)

	d, err = ParseDate("", taipei)
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("03/08/2024", taipei)
	require.Error(t, err)
}
