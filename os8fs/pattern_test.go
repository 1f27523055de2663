package os8fs

import "testing"

func TestCompilePatternExactMatch(t *testing.T) {
	p, err := CompilePattern("FOO.BN")
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	if !p.matchEntry(Entry{Kind: KindFile, Name: "FOO.BN"}) {
		t.Error("exact pattern should match FOO.BN")
	}
	if p.matchEntry(Entry{Kind: KindFile, Name: "FOO.TX"}) {
		t.Error("exact pattern should not match FOO.TX")
	}
}

func TestCompilePatternWildcardName(t *testing.T) {
	p, err := CompilePattern("F*.BN")
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	tests := []struct {
		name string
		want bool
	}{
		{"FOO.BN", true},
		{"FIZZBU.BN", true},
		{"F.BN", true},
		{"BAR.BN", false},
		{"FOO.TX", false},
	}
	for _, tt := range tests {
		got := p.matchEntry(Entry{Kind: KindFile, Name: tt.name})
		if got != tt.want {
			t.Errorf("match(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCompilePatternWildcardExtension(t *testing.T) {
	p, err := CompilePattern("FOO.*")
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	if !p.matchEntry(Entry{Kind: KindFile, Name: "FOO.BN"}) {
		t.Error("FOO.* should match FOO.BN")
	}
	if !p.matchEntry(Entry{Kind: KindFile, Name: "FOO"}) {
		t.Error("FOO.* should match bare FOO")
	}
	if p.matchEntry(Entry{Kind: KindFile, Name: "BAR.BN"}) {
		t.Error("FOO.* should not match BAR.BN")
	}
}

func TestCompilePatternWildcardBoth(t *testing.T) {
	p, err := CompilePattern("*.*")
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	if !p.matchEntry(Entry{Kind: KindFile, Name: "ANYTHING.XY"}) {
		t.Error("*.* should match any file")
	}
}

func TestZeroValuePatternMatchesAll(t *testing.T) {
	var p Pattern
	if !p.matchEntry(Entry{Kind: KindFile, Name: "WHATEVER.XY"}) {
		t.Error("zero-value Pattern should match every file")
	}
}

func TestCompilePatternRejectsBadNames(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"starts with digit", "1FOO.BN"},
		{"name too long", "TOOLONGNAME.BN"},
		{"extension too long", "FOO.TOO"},
		{"empty name", ".BN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CompilePattern(tt.input); err == nil {
				t.Errorf("CompilePattern(%q): err = nil, want error", tt.input)
			}
		})
	}
}

func TestPatternMatchIgnoresEmptyEntries(t *testing.T) {
	var p Pattern
	if p.matchEntry(Entry{Kind: KindEmpty, Length: 5}) {
		t.Error("pattern should never match an Empty-kind entry")
	}
}
