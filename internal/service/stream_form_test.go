package service

import (
	"strconv"
	"testing"
	"time"

	"github.com/streamlog/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDuration(t *testing.T) {
	tests := []struct {
		name    string
		hours   string
		minutes string
		want    float64
		wantErr bool
	}{
		{name: "hours and minutes", hours: "1", minutes: "30", want: 1.5},
		{name: "minutes only", hours: "", minutes: "45", want: 0.75},
		{name: "hours only", hours: "2", minutes: " ", want: 2},
		{name: "both zero", hours: "0", minutes: "0", wantErr: true},
		{name: "both blank", hours: "", minutes: "", wantErr: true},
		{name: "negative hours", hours: "-1", minutes: "30", wantErr: true},
		{name: "negative minutes", hours: "1", minutes: "-5", wantErr: true},
		{name: "non numeric", hours: "abc", minutes: "10", wantErr: true},
		{name: "infinity", hours: "Inf", minutes: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToDuration(tt.hours, tt.minutes)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestFromDuration(t *testing.T) {
	tests := []struct {
		in      float64
		hours   int
		minutes int
	}{
		{in: 1.5, hours: 1, minutes: 30},
		{in: 3.5, hours: 3, minutes: 30},
		{in: 2, hours: 2, minutes: 0},
		{in: 0.25, hours: 0, minutes: 15},
		{in: 1.9999, hours: 2, minutes: 0},
		{in: 0, hours: 0, minutes: 0},
	}

	for _, tt := range tests {
		h, m := FromDuration(tt.in)
		assert.Equal(t, tt.hours, h, "hours for %v", tt.in)
		assert.Equal(t, tt.minutes, m, "minutes for %v", tt.in)
	}
}

func TestDurationRoundTrip(t *testing.T) {
	for h := 0; h <= 12; h++ {
		for m := 0; m < 60; m++ {
			if h == 0 && m == 0 {
				continue
			}
			d, err := ToDuration(strconv.Itoa(h), strconv.Itoa(m))
			require.NoError(t, err)

			gotH, gotM := FromDuration(d)
			assert.Equal(t, h, gotH, "%dh%dm", h, m)
			assert.Equal(t, m, gotM, "%dh%dm", h, m)
		}
	}
}

func TestToViewers(t *testing.T) {
	v, err := ToViewers(" 25.5 ")
	require.NoError(t, err)
	assert.Equal(t, 25.5, v)

	for _, raw := range []string{"", "  ", "0", "-3", "many"} {
		_, err := ToViewers(raw)
		assert.ErrorIs(t, err, ErrValidation, "input %q", raw)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "viewers", verr.Field)
	}
}

func TestStreamFormToStream(t *testing.T) {
	form := StreamForm{
		Date:            "2024-01-05",
		Platform:        "twitch",
		Viewers:         "45",
		DurationHours:   "3",
		DurationMinutes: "30",
		Note:            " Great raid! ",
	}

	stream, err := form.ToStream("abc")
	require.NoError(t, err)
	assert.Equal(t, db.Stream{
		ID:       "abc",
		Date:     db.Date{Year: 2024, Month: time.January, Day: 5},
		Platform: db.PlatformTwitch,
		Viewers:  45,
		Duration: 3.5,
		Note:     "Great raid!",
	}, stream)
}

func TestStreamFormRejectsBadFields(t *testing.T) {
	valid := StreamForm{Date: "2024-01-05", Platform: "Kick", Viewers: "10", DurationHours: "1"}

	tests := []struct {
		name   string
		mutate func(*StreamForm)
		field  string
	}{
		{name: "missing date", mutate: func(f *StreamForm) { f.Date = "" }, field: "date"},
		{name: "bad date", mutate: func(f *StreamForm) { f.Date = "2024-13-01" }, field: "date"},
		{name: "missing platform", mutate: func(f *StreamForm) { f.Platform = "" }, field: "platform"},
		{name: "unknown platform", mutate: func(f *StreamForm) { f.Platform = "Mixer" }, field: "platform"},
		{name: "zero viewers", mutate: func(f *StreamForm) { f.Viewers = "0" }, field: "viewers"},
		{name: "zero duration", mutate: func(f *StreamForm) { f.DurationHours = "0" }, field: "duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.mutate(&form)

			_, err := form.ToStream("")
			require.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.NotEmpty(t, verr.Message)
		})
	}
}

func TestEditFormPrefillsDuration(t *testing.T) {
	form := EditForm(db.Stream{
		Date:     db.Date{Year: 2024, Month: time.January, Day: 5},
		Platform: db.PlatformFacebookGaming,
		Viewers:  12.5,
		Duration: 2.75,
		Note:     "n",
	})

	assert.Equal(t, StreamForm{
		Date:            "2024-01-05",
		Platform:        "Facebook Gaming",
		Viewers:         "12.5",
		DurationHours:   "2",
		DurationMinutes: "45",
		Note:            "n",
	}, form)
}

func TestRenderNote(t *testing.T) {
	assert.Empty(t, RenderNote("   "))

	html := RenderNote("**great** raid <script>alert(1)</script>")
	assert.Contains(t, html, "<strong>great</strong>")
	assert.NotContains(t, html, "<script>")
}

func TestStreamFormReportsDateBeforePlatform(t *testing.T) {
	form := StreamForm{Date: "not-a-date", Platform: "Mixer", Viewers: "10", DurationHours: "1"}

	for i := 0; i < 20; i++ {
		_, err := form.ToStream("")

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "date", verr.Field)
		assert.NotEmpty(t, verr.Message)
	}
}
