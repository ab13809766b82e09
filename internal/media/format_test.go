package media

import "testing"

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		size int64
		want string
	}{
		{0, "0 bytes"},
		{1, "1 byte"},
		{512, "512 bytes"},
		{1024, "1 KB"},
		{1536, "1 KB"},
		{1024 * 1024, "1.0 MB"},
		{1467 * 1024, "1.4 MB"},
		{2 * 1024 * 1024 * 1024, "2.00 GB"},
		{1415532177, "1.32 GB"},
		{3 * 1024 * 1024 * 1024 * 1024, "3.00 TB"},
	}
	for _, tc := range cases {
		if got := FormatBytes(tc.size); got != tc.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tc.size, got, tc.want)
		}
	}
}

func TestFormatDurationMillis(t *testing.T) {
	cases := []struct {
		millis int64
		want   string
	}{
		{0, "00:00:00"},
		{61_000, "00:01:01"},
		{5_400_000, "01:30:00"},
		{86_400_000 + 3_600_000, "01:00:00"},
	}
	for _, tc := range cases {
		if got := FormatDurationMillis(tc.millis); got != tc.want {
			t.Errorf("FormatDurationMillis(%d) = %q, want %q", tc.millis, got, tc.want)
		}
	}
}

func TestFormatBitrate(t *testing.T) {
	cases := []struct {
		kbps int
		want string
	}{
		{0, "0 Kbps"},
		{1023, "1023 Kbps"},
		{1024, "1.00 Mbps"},
		{8000, "7.81 Mbps"},
	}
	for _, tc := range cases {
		if got := FormatBitrate(tc.kbps); got != tc.want {
			t.Errorf("FormatBitrate(%d) = %q, want %q", tc.kbps, got, tc.want)
		}
	}
}
