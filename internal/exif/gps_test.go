package exif

import (
	"math"
	"testing"
)

func TestLatLngToDecimal(t *testing.T) {
	lat := LatLng{{43, 1}, {17, 1}, {2446, 100}}
	got := lat.ToDecimal()
	if math.Abs(got-43.29013) > 0.000005 {
		t.Errorf("ToDecimal = %v, want ~43.29013", got)
	}
}

func TestFormatISO6709(t *testing.T) {
	tests := []struct {
		name string
		info GPSInfo
		want string
	}{
		{
			name: "north east with altitude",
			info: GPSInfo{
				LatitudeRef:  'N',
				Latitude:     LatLng{{43, 1}, {17, 1}, {2446, 100}},
				LongitudeRef: 'E',
				Longitude:    LatLng{{84, 1}, {13, 1}, {3767, 100}},
				AltitudeRef:  0,
				Altitude:     Rational{159595, 100},
				HasAltitude:  true,
			},
			want: "+43.29013+084.22713+1595.950CRSWGS_84/",
		},
		{
			name: "south west no altitude",
			info: GPSInfo{
				LatitudeRef:  'S',
				Latitude:     LatLng{{1, 1}, {30, 1}, {0, 1}},
				LongitudeRef: 'W',
				Longitude:    LatLng{{120, 1}, {0, 1}, {0, 1}},
			},
			want: "-01.50000-120.00000CRSWGS_84/",
		},
		{
			name: "below sea level",
			info: GPSInfo{
				LatitudeRef:  'N',
				Latitude:     LatLng{{0, 1}, {0, 1}, {0, 1}},
				LongitudeRef: 'E',
				Longitude:    LatLng{{0, 1}, {0, 1}, {0, 1}},
				AltitudeRef:  1,
				Altitude:     Rational{425, 10},
				HasAltitude:  true,
			},
			want: "+00.00000+000.00000-042.500CRSWGS_84/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.FormatISO6709(); got != tt.want {
				t.Errorf("FormatISO6709() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseISO6709(t *testing.T) {
	info, err := ParseISO6709("+27.1281+100.2508+000.000/")
	if err != nil {
		t.Fatalf("ParseISO6709: %v", err)
	}
	if info.LatitudeRef != 'N' || info.LongitudeRef != 'E' {
		t.Errorf("refs = %c %c, want N E", info.LatitudeRef, info.LongitudeRef)
	}
	if got := info.Latitude.ToDecimal(); math.Abs(got-27.1281) > 0.0001 {
		t.Errorf("latitude = %v, want ~27.1281", got)
	}
	if got := info.Longitude.ToDecimal(); math.Abs(got-100.2508) > 0.0001 {
		t.Errorf("longitude = %v, want ~100.2508", got)
	}
	if !info.HasAltitude {
		t.Error("altitude missing")
	}
}

func TestParseISO6709Negative(t *testing.T) {
	info, err := ParseISO6709("-33.8688+151.2093-012.500CRSWGS_84/")
	if err != nil {
		t.Fatalf("ParseISO6709: %v", err)
	}
	if info.LatitudeRef != 'S' {
		t.Errorf("LatitudeRef = %c, want S", info.LatitudeRef)
	}
	if info.AltitudeRef != 1 {
		t.Errorf("AltitudeRef = %d, want 1 (below sea level)", info.AltitudeRef)
	}
}

func TestParseISO6709Malformed(t *testing.T) {
	for _, s := range []string{"", "garbage", "+43.29013"} {
		if _, err := ParseISO6709(s); err == nil {
			t.Errorf("ParseISO6709(%q) succeeded, want error", s)
		}
	}
}
