package model

import (
	"fmt"
	"time"
)

// Archive is one worker's packed output: a zip containing its JSON summary,
// detailed and summary XUnit XML, per-task logs, and (on a crash) an
// emergency dump of whatever the worker managed to flush.
type Archive struct {
	Path        string
	Lane        TestType
	Hostname    string // set only for D2D per-device archives, before aggregation
	CreatedAt   time.Time
	Contents    []string // relative paths packed into the archive
	IsEmergency bool
}

// ArchiveName builds the "nac_test_job_<lane>_<yyyymmdd_hhmmss_mmm>.zip"
// name the spec requires for lane-level archives.
func ArchiveName(lane TestType, at time.Time) string {
	return fmt.Sprintf("nac_test_job_%s_%s_%03d.zip", lane, at.Format("20060102_150405"), at.Nanosecond()/1e6)
}
