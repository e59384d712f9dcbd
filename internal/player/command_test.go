package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialize(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{"Stop", Stop{}, `{"command":["stop"]}`},
		{"Play", Play{}, `{"command":["set_property","pause",false]}`},
		{"Pause", Pause{}, `{"command":["set_property","pause",true]}`},
		{"LoopOn", Loop{Enabled: true}, `{"command":["set_property","loop",true]}`},
		{"LoopOff", Loop{Enabled: false}, `{"command":["set_property","loop",false]}`},
		{"Load", Load{Path: "/music/a track.flac"}, `{"command":["loadfile","/music/a track.flac"]}`},
		{"LoadEscapesPath", Load{Path: `/music/we "live"/x.mp3`}, `{"command":["loadfile","/music/we \"live\"/x.mp3"]}`},
		{"SeekAbsoluteZero", Seek{Mode: AbsoluteSeconds(0)}, `{"command":["seek","00:00","absolute"]}`},
		{"SeekAbsoluteSeconds", Seek{Mode: AbsoluteSeconds(90)}, `{"command":["seek","01:30","absolute"]}`},
		{"SeekMinutesUnbounded", Seek{Mode: AbsoluteSeconds(3661)}, `{"command":["seek","61:01","absolute"]}`},
		{"SeekRelativeSeconds", Seek{Mode: RelativeSeconds(5)}, `{"command":["seek","00:05","relative"]}`},
		{"SeekRelativeNegative", Seek{Mode: RelativeSeconds(-30)}, `{"command":["seek","-00:30","relative"]}`},
		{"SeekAbsolutePercent", Seek{Mode: AbsolutePercent(50)}, `{"command":["seek","50","absolute-percent"]}`},
		{"SeekAbsolutePercentFraction", Seek{Mode: AbsolutePercent(33.5)}, `{"command":["seek","33.5","absolute-percent"]}`},
		{"SeekRelativePercent", Seek{Mode: RelativePercent(-10)}, `{"command":["seek","-10","relative-percent"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Serialize(tt.cmd)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// Serialization is deterministic: same command, same bytes.
			again, err := Serialize(tt.cmd)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestClock(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{59, "00:59"},
		{60, "01:00"},
		{61, "01:01"},
		{3599, "59:59"},
		{3600, "60:00"},
		{3661, "61:01"},
		{-90, "-01:30"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, clock(tt.seconds), "clock(%d)", tt.seconds)
	}
}
