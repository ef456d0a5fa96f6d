package field

import "testing"

func TestModesValidate(t *testing.T) {
	tests := []struct {
		name    string
		m       Modes
		wantErr bool
	}{
		{"zero value", Modes{}, false},
		{"all max", Modes{DensityState, AmplitudeRadial, FrequencyGauss, WindowRamp, CellMod, OutputHybrid}, false},
		{"density out of range", Modes{Density: 3}, true},
		{"amplitude out of range", Modes{Amplitude: 4}, true},
		{"frequency out of range", Modes{Frequency: -1}, true},
		{"window out of range", Modes{Window: 9}, true},
		{"cell out of range", Modes{Cell: 2}, true},
		{"output out of range", Modes{Output: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseModesRoundTrip(t *testing.T) {
	m, err := ParseModes("state", "rangle", "gauss", "ramp", "mod", "hybrid")
	if err != nil {
		t.Fatalf("ParseModes failed: %v", err)
	}

	want := Modes{
		Density:   DensityState,
		Amplitude: AmplitudeRAngle,
		Frequency: FrequencyGauss,
		Window:    WindowRamp,
		Cell:      CellMod,
		Output:    OutputHybrid,
	}
	if m != want {
		t.Errorf("ParseModes = %+v, want %+v", m, want)
	}

	// String() must emit the same names ParseModes accepts.
	if _, err := ParseModes(
		m.Density.String(), m.Amplitude.String(), m.Frequency.String(),
		m.Window.String(), m.Cell.String(), m.Output.String(),
	); err != nil {
		t.Errorf("round trip via String() failed: %v", err)
	}
}

func TestParseModesRejectsUnknown(t *testing.T) {
	if _, err := ParseModes("noise", "static", "static", "gauss", "clamp", "banana"); err == nil {
		t.Error("unknown output mode should fail")
	}
	if _, err := ParseModes("", "static", "static", "gauss", "clamp", "average"); err == nil {
		t.Error("empty density mode should fail")
	}
}
