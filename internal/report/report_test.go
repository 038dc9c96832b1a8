package report_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/okian/scorestats/internal/domain/model"
	"github.com/okian/scorestats/internal/report"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPrintStats(t *testing.T) {
	Convey("Given a summary", t, func() {
		var buf bytes.Buffer
		r := report.New(&buf)

		r.PrintStats(model.Summary{
			Count: 5, Minimum: 2, Maximum: 8, Median: 4, Mean: 4.8, StandardDeviation: 2.0396, Total: 24,
		})

		Convey("Then it should print the labelled fields", func() {
			So(r.Err(), ShouldBeNil)
			So(buf.String(), ShouldEqual, "\n"+
				"  Panelist Scores\n"+
				"    Count:      5\n"+
				"    Minimum:    2\n"+
				"    Maximum:    8\n"+
				"    Median:     4\n"+
				"    Mean:       4.8\n"+
				"    Std Dev:    2.0396\n"+
				"    Total:      24\n"+
				"\n\n\n")
		})
	})

	Convey("Given a summary with whole-number decimals", t, func() {
		var buf bytes.Buffer
		report.New(&buf).PrintStats(model.Summary{Count: 2, Minimum: 5, Maximum: 5, Median: 5, Mean: 5, Total: 10})

		Convey("Then mean and deviation should keep one decimal place", func() {
			So(buf.String(), ShouldContainSubstring, "    Mean:       5.0\n")
			So(buf.String(), ShouldContainSubstring, "    Std Dev:    0.0\n")
		})
	})
}

func TestPrintScoreSpread(t *testing.T) {
	Convey("Given grouped score rows", t, func() {
		var buf bytes.Buffer
		r := report.New(&buf)

		r.PrintScoreSpread([]model.SpreadEntry{
			{Score: 2, Count: 1},
			{Score: 4, Count: 2},
			{Score: 6, Count: 1},
			{Score: 8, Count: 1},
		})

		Convey("Then it should print one right-aligned row per score in input order", func() {
			So(r.Err(), ShouldBeNil)
			So(buf.String(), ShouldEqual, "  Score Spread\n\n"+
				"    Score       Count\n"+
				"        2           1\n"+
				"        4           2\n"+
				"        6           1\n"+
				"        8           1\n"+
				"\n")
		})
	})

	Convey("Given no rows", t, func() {
		var buf bytes.Buffer
		report.New(&buf).PrintScoreSpread(nil)

		Convey("Then only the header should be printed", func() {
			So(buf.String(), ShouldEqual, "  Score Spread\n\n    Score       Count\n\n")
		})
	})
}

func TestPrintNoScores(t *testing.T) {
	Convey("Given an absent result", t, func() {
		var buf bytes.Buffer
		report.New(&buf).PrintNoScores(report.TitleStats)

		Convey("Then a notice should replace the report", func() {
			So(buf.String(), ShouldEqual, "\n  Panelist Scores\n    No qualifying scores found.\n\n")
		})
	})
}

type failingWriter struct{ writes int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.writes++
	return 0, errors.New("disk full")
}

func TestRendererWriteError(t *testing.T) {
	Convey("Given a writer that fails", t, func() {
		w := &failingWriter{}
		r := report.New(w)

		r.PrintStats(model.Summary{Count: 1})
		r.PrintScoreSpread([]model.SpreadEntry{{Score: 1, Count: 1}})

		Convey("Then the first error should be kept and later writes skipped", func() {
			So(r.Err(), ShouldNotBeNil)
			So(r.Err().Error(), ShouldEqual, "disk full")
			So(w.writes, ShouldEqual, 1)
		})
	})
}
