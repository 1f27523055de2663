package os8fs

import "testing"

func TestNewDeviceDSK(t *testing.T) {
	d := NewDevice(FormatDSK, 512*1000)
	if d.TotalBlocks != 1000 {
		t.Errorf("TotalBlocks = %d, want 1000", d.TotalBlocks)
	}
	if got := d.FilesystemSize(); got != 993 {
		t.Errorf("FilesystemSize = %d, want 993", got)
	}
	if got := d.LastBlock(); got != 999 {
		t.Errorf("LastBlock = %d, want 999", got)
	}
}

func TestNewDeviceDECtapeDerivesFromFileSize(t *testing.T) {
	const blocks = 737
	size := int64(blocks) * FormatDECtape.BytesPerBlock()
	d := NewDevice(FormatDECtape, size)
	if d.TotalBlocks != blocks {
		t.Errorf("TotalBlocks = %d, want %d", d.TotalBlocks, blocks)
	}
}

func TestNewDeviceRK05FixedSize(t *testing.T) {
	for _, f := range []Format{FormatRK05A, FormatRK05B} {
		d := NewDevice(f, 1) // host size irrelevant for RK05
		if d.TotalBlocks != rk05PlatterBlocks {
			t.Errorf("%v: TotalBlocks = %d, want %d", f, d.TotalBlocks, rk05PlatterBlocks)
		}
	}
}

func TestFormatString(t *testing.T) {
	tests := []struct {
		f    Format
		want string
	}{
		{FormatDSK, "dsk"},
		{FormatDECtape, "dectape"},
		{FormatRK05A, "rk05a"},
		{FormatRK05B, "rk05b"},
	}
	for _, tt := range tests {
		if got := tt.f.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.f, got, tt.want)
		}
	}
}
