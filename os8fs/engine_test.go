package os8fs

import "testing"

func TestGetEmptyEntryBestFit(t *testing.T) {
	dir := freshDirectory(t, 993)
	dir.segments[0].setEntries([]Entry{
		{Kind: KindEmpty, Length: 10},
		{Kind: KindFile, Name: "A.BN", Extras: []Word{0}, Length: 2},
		{Kind: KindEmpty, Length: 100},
	})
	eng := NewEngine(dir)

	got, err := eng.GetEmptyEntry(nil, 5)
	if err != nil {
		t.Fatalf("GetEmptyEntry: %v", err)
	}
	if got.Length != 10 {
		t.Errorf("best fit for requestedLength=5 returned Length=%d, want 10 (smallest qualifying)", got.Length)
	}
}

func TestGetEmptyEntryNoFit(t *testing.T) {
	dir := freshDirectory(t, 993)
	dir.segments[0].setEntries([]Entry{{Kind: KindEmpty, Length: 3}})
	eng := NewEngine(dir)
	if _, err := eng.GetEmptyEntry(nil, 10); err == nil {
		t.Fatal("GetEmptyEntry with no qualifying empty: err = nil, want ErrNoFit")
	}
}

func TestEnterStampsFileAndShrinksEmpty(t *testing.T) {
	dir := freshDirectory(t, 993)
	eng := NewEngine(dir)

	empty, err := eng.GetEmptyEntry(nil, 5)
	if err != nil {
		t.Fatalf("GetEmptyEntry: %v", err)
	}
	entry, err := eng.Enter("FOO.BN", 5, empty)
	if err != nil {
		t.Fatalf("Enter: %v", err)
	}
	if entry.Kind != KindFile || entry.Name != "FOO.BN" || entry.Length != 5 {
		t.Errorf("Enter returned %+v", entry)
	}

	entries := dir.segments[0].entries(0)
	if len(entries) != 2 {
		t.Fatalf("segment has %d entries, want 2 (file + shrunk empty)", len(entries))
	}
	if entries[0].Kind != KindFile || entries[1].Kind != KindEmpty {
		t.Errorf("entries = %+v, want [File Empty]", entries)
	}
	if entries[1].Length != dir.Device.FilesystemSize()-5 {
		t.Errorf("shrunk empty Length = %d, want %d", entries[1].Length, dir.Device.FilesystemSize()-5)
	}
}

func TestEnterRejectsOversizedRequest(t *testing.T) {
	dir := freshDirectory(t, 993)
	eng := NewEngine(dir)
	empty, err := eng.GetEmptyEntry(nil, 5)
	if err != nil {
		t.Fatalf("GetEmptyEntry: %v", err)
	}
	if _, err := eng.Enter("FOO.BN", empty.Length+1, empty); err == nil {
		t.Fatal("Enter beyond the empty entry's length: err = nil, want error")
	}
}

func TestLookupSkipsEmptiesAndZeroLengthFiles(t *testing.T) {
	dir := freshDirectory(t, 993)
	dir.segments[0].setEntries([]Entry{
		{Kind: KindEmpty, Length: 3},
		{Kind: KindFile, Name: "ZERO.BN", Extras: []Word{0}, Length: 0},
		{Kind: KindFile, Name: "FOO.BN", Extras: []Word{0}, Length: 4},
	})
	eng := NewEngine(dir)
	var p Pattern
	c := NewCursor(dir)
	e, ok := eng.Lookup(c, p)
	if !ok {
		t.Fatal("Lookup found nothing, want FOO.BN")
	}
	if e.Name != "FOO.BN" {
		t.Errorf("Lookup returned %q, want FOO.BN", e.Name)
	}
	if _, ok := eng.Lookup(c, p); ok {
		t.Error("second Lookup on the same cursor should find nothing more")
	}
}

func TestDeleteCollapsesToEmptyAndShiftsFollowing(t *testing.T) {
	dir := freshDirectory(t, 993)
	dir.segments[0].setEntries([]Entry{
		{Kind: KindFile, Name: "A.BN", Extras: []Word{0}, Length: 3},
		{Kind: KindFile, Name: "B.BN", Extras: []Word{0}, Length: 4},
	})
	eng := NewEngine(dir)

	entries := dir.segments[0].entries(0)
	if err := eng.Delete(entries[0]); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	after := dir.segments[0].entries(0)
	if len(after) != 2 {
		t.Fatalf("after delete: %d entries, want 2", len(after))
	}
	if after[0].Kind != KindEmpty || after[0].Length != 3 {
		t.Errorf("after[0] = %+v, want Empty Length=3", after[0])
	}
	if after[1].Name != "B.BN" {
		t.Errorf("after[1].Name = %q, want B.BN", after[1].Name)
	}
}

func TestConsolidateMergesAdjacentEmpties(t *testing.T) {
	dir := freshDirectory(t, 993)
	dir.segments[0].setEntries([]Entry{
		{Kind: KindEmpty, Length: 3},
		{Kind: KindEmpty, Length: 4},
		{Kind: KindFile, Name: "A.BN", Extras: []Word{0}, Length: 1},
	})
	eng := NewEngine(dir)
	if err := eng.Consolidate(); err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	entries := dir.segments[0].entries(0)
	if len(entries) != 2 {
		t.Fatalf("after Consolidate: %d entries, want 2", len(entries))
	}
	if entries[0].Kind != KindEmpty || entries[0].Length != 7 {
		t.Errorf("merged empty = %+v, want Length=7", entries[0])
	}
}

func TestConsolidateIsIdempotent(t *testing.T) {
	dir := freshDirectory(t, 993)
	eng := NewEngine(dir)
	if err := eng.Consolidate(); err != nil {
		t.Fatalf("first Consolidate: %v", err)
	}
	before := dir.segments[0].entries(0)
	if err := eng.Consolidate(); err != nil {
		t.Fatalf("second Consolidate: %v", err)
	}
	after := dir.segments[0].entries(0)
	if len(before) != len(after) {
		t.Errorf("Consolidate is not idempotent: %d entries then %d", len(before), len(after))
	}
}

func TestZeroFilesystemResetsToSingleEmpty(t *testing.T) {
	dir := freshDirectory(t, 993)
	eng := NewEngine(dir)
	empty, err := eng.GetEmptyEntry(nil, 5)
	if err != nil {
		t.Fatalf("GetEmptyEntry: %v", err)
	}
	if _, err := eng.Enter("FOO.BN", 5, empty); err != nil {
		t.Fatalf("Enter: %v", err)
	}

	if err := eng.ZeroFilesystem(); err != nil {
		t.Fatalf("ZeroFilesystem: %v", err)
	}
	entries, err := dir.AllEntries()
	if err != nil {
		t.Fatalf("AllEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].Kind != KindEmpty {
		t.Fatalf("after Zero: entries = %+v, want single Empty", entries)
	}
	if entries[0].Length != dir.Device.FilesystemSize() {
		t.Errorf("Zero empty Length = %d, want %d", entries[0].Length, dir.Device.FilesystemSize())
	}
}

func TestDeleteThenEnterReusesFreedSpace(t *testing.T) {
	dir := freshDirectory(t, 993)
	eng := NewEngine(dir)

	empty, err := eng.GetEmptyEntry(nil, 5)
	if err != nil {
		t.Fatalf("GetEmptyEntry: %v", err)
	}
	first, err := eng.Enter("FOO.BN", 5, empty)
	if err != nil {
		t.Fatalf("Enter FOO.BN: %v", err)
	}
	if err := eng.Delete(first); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := eng.Consolidate(); err != nil {
		t.Fatalf("Consolidate: %v", err)
	}

	total, err := dir.TotalLength()
	if err != nil {
		t.Fatalf("TotalLength: %v", err)
	}
	if total != dir.Device.FilesystemSize() {
		t.Errorf("TotalLength after delete+consolidate = %d, want %d (invariant 6)", total, dir.Device.FilesystemSize())
	}

	empty, err = eng.GetEmptyEntry(nil, 5)
	if err != nil {
		t.Fatalf("GetEmptyEntry after delete: %v", err)
	}
	second, err := eng.Enter("BAR.BN", 5, empty)
	if err != nil {
		t.Fatalf("Enter BAR.BN: %v", err)
	}
	if second.FileBlock != first.FileBlock {
		t.Errorf("BAR.BN FileBlock = %d, want %d (the freed FOO.BN blocks)", second.FileBlock, first.FileBlock)
	}
}

func TestCreateFilesystemSingleEmptySpansFilesystemSize(t *testing.T) {
	device := NewDeviceSized(FormatDSK, 1000)
	dir := CreateFilesystem(device, CodecFor(FormatDSK), 1)
	entries, err := dir.AllEntries()
	if err != nil {
		t.Fatalf("AllEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].Kind != KindEmpty {
		t.Fatalf("fresh filesystem entries = %+v, want single Empty", entries)
	}
	if entries[0].Length != device.FilesystemSize() {
		t.Errorf("initial empty Length = %d, want %d", entries[0].Length, device.FilesystemSize())
	}
	if entries[0].FileBlock != FirstDataBlock+DirectorySegments {
		t.Errorf("initial empty FileBlock = %d, want %d", entries[0].FileBlock, FirstDataBlock+DirectorySegments)
	}
}

// TestEnterTriggersMigrateLastOnSegmentOverflow drives segment 0 to the
// 49-one-block-file overflow case: the segment's entry words are
// packed tight enough that Enter's minFree check fails, forcing one
// migrateLast eviction before the new file can be stamped.
func TestEnterTriggersMigrateLastOnSegmentOverflow(t *testing.T) {
	device := NewDeviceSized(FormatDSK, 1049+7)
	dir := CreateFilesystem(device, CodecFor(FormatDSK), 0)
	eng := NewEngine(dir)

	entries := make([]Entry, 0, 50)
	entries = append(entries, Entry{Kind: KindEmpty, Length: 1000})
	for i := 0; i < 49; i++ {
		entries = append(entries, Entry{Kind: KindFile, Name: "F.BN", Length: 1})
	}
	dir.segments[0].setEntries(entries)
	dir.segments[0].dirty = true

	if free := dir.segments[0].freeWords(); free >= 7 {
		t.Fatalf("test setup: segment 0 freeWords() = %d, want < 7 (minFree) to force a shuffle", free)
	}
	lastBefore := dir.segments[0].entries(0)[49]
	if lastBefore.Kind != KindFile {
		t.Fatalf("test setup: physically last entry is %+v, want the 49th file", lastBefore)
	}

	empty, err := eng.GetEmptyEntry(nil, 1)
	if err != nil {
		t.Fatalf("GetEmptyEntry: %v", err)
	}
	if empty.SegIndex != 0 || empty.WordOffset != 0 {
		t.Fatalf("test setup: GetEmptyEntry returned %+v, want the leading empty at segment 0 offset 0", empty)
	}

	if _, err := eng.Enter("NEW.BN", 1, empty); err != nil {
		t.Fatalf("Enter: %v", err)
	}

	if dir.segments[0].nextSegment != 2 {
		t.Fatalf("segment 0 next_segment = %d, want 2 (chained to segment 1 by migrateLast)", dir.segments[0].nextSegment)
	}
	if !dir.loaded[1] {
		t.Fatal("segment 1 not marked loaded after migrateLast allocated it")
	}

	successorEntries := dir.segments[1].entries(1)
	if len(successorEntries) == 0 || successorEntries[0].Kind != KindFile || successorEntries[0].Name != "F.BN" {
		t.Fatalf("segment 1 entries = %+v, want the evicted file first", successorEntries)
	}
	if successorEntries[0].FileBlock != lastBefore.FileBlock {
		t.Errorf("evicted entry FileBlock = %d, want %d (invariant 5: chain's first_file_block tracks the migrated entry)", successorEntries[0].FileBlock, lastBefore.FileBlock)
	}
	if dir.segments[1].firstFileBlock != lastBefore.FileBlock {
		t.Errorf("segment 1 first_file_block = %d, want %d", dir.segments[1].firstFileBlock, lastBefore.FileBlock)
	}

	remaining := dir.segments[0].entries(0)
	if len(remaining) != 50 {
		t.Fatalf("segment 0 has %d entries after migrateLast+enter, want 50 (new file + shrunk empty + the 48 files left after eviction)", len(remaining))
	}
	if remaining[0].Kind != KindFile || remaining[0].Name != "NEW.BN" {
		t.Errorf("segment 0 entries[0] = %+v, want the newly entered file at the old empty's position", remaining[0])
	}

	if err := dir.validate(); err != nil {
		t.Errorf("validate after migrateLast+enter: %v", err)
	}
}
