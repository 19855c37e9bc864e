package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"stalkercraft.ai/internal/persistence/snapshot"
)

type DayArchiveMeta struct {
	Day       int     `json:"day"`
	EndTick   uint64  `json:"end_tick"`
	Seed      int64   `json:"seed"`
	Snapshot  string  `json:"snapshot"`
	CreatedAt string  `json:"created_at"`
	DayTicks  uint64  `json:"day_ticks"`
	Health    float64 `json:"health"`
	Primary   int     `json:"primary,omitempty"`
}

// ArchiveDaySnapshot copies a day-end snapshot into `runDir/archives/day_<NNN>/`.
// It returns (day, archivedPath, archived=true) when the snapshot represents a day end.
func ArchiveDaySnapshot(runDir, snapshotPath string, snap snapshot.SnapshotV1, dayTicks uint64) (day int, archivedPath string, archived bool, err error) {
	if dayTicks == 0 {
		return 0, "", false, nil
	}
	// Snapshots are taken after the tick ran, so the last tick of day k is dayTicks*k - 1.
	if (snap.Header.Tick+1)%dayTicks != 0 {
		return 0, "", false, nil
	}
	day = int((snap.Header.Tick + 1) / dayTicks)
	if day <= 0 {
		return 0, "", false, nil
	}

	archiveDir := filepath.Join(runDir, "archives", fmt.Sprintf("day_%03d", day))
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return 0, "", false, err
	}

	dst := filepath.Join(archiveDir, filepath.Base(snapshotPath))
	if err := copyFile(snapshotPath, dst); err != nil {
		return 0, "", false, err
	}

	meta := DayArchiveMeta{
		Day:       day,
		EndTick:   snap.Header.Tick,
		Seed:      snap.Seed,
		Snapshot:  filepath.Base(dst),
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		DayTicks:  dayTicks,
		Health:    snap.Agent.Health,
		Primary:   int(snap.Agent.Primary),
	}
	if b, err := json.MarshalIndent(meta, "", "  "); err == nil {
		_ = os.WriteFile(filepath.Join(archiveDir, "meta.json"), b, 0o644)
	}

	return day, dst, true, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
