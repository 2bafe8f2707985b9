package services

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCSVRunLog(t *testing.T) {
	Convey("Given a run log in a directory that does not exist yet", t, func() {
		path := filepath.Join(t.TempDir(), "logs", "runs.csv")
		runLog := NewCSVRunLog(path)
		ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.FixedZone("WIB", 7*3600))

		Convey("When two records are appended", func() {
			So(runLog.Append(RunRecord{
				Timestamp:       ts,
				Operation:       OperationAnalyze,
				Model:           "llama3-70b",
				Score:           intPtr(72),
				MatchPercentage: intPtr(57),
				Offline:         true,
				Duration:        1500 * time.Millisecond,
			}), ShouldBeNil)
			So(runLog.Append(RunRecord{
				Timestamp: ts,
				Operation: OperationOptimize,
				Model:     "gemini-flash",
				Duration:  250 * time.Millisecond,
			}), ShouldBeNil)

			file, err := os.Open(runLog.Path())
			So(err, ShouldBeNil)
			defer file.Close()
			rows, err := csv.NewReader(file).ReadAll()
			So(err, ShouldBeNil)

			Convey("Then the header is written once", func() {
				So(rows, ShouldHaveLength, 3)
				So(rows[0], ShouldResemble, runLogHeader)
			})

			Convey("Then rows carry UTC timestamps and optional scores", func() {
				So(rows[1], ShouldResemble, []string{
					"2025-03-14T02:26:53Z", "analyze", "llama3-70b", "72", "57", "true", "1500",
				})
				So(rows[2], ShouldResemble, []string{
					"2025-03-14T02:26:53Z", "optimize", "gemini-flash", "", "", "false", "250",
				})
			})
		})
	})
}
