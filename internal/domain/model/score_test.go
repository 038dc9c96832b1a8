package model

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSpreadCount(t *testing.T) {
	Convey("Given spread entries", t, func() {
		entries := []SpreadEntry{{Score: 2, Count: 1}, {Score: 4, Count: 2}, {Score: 6, Count: 1}, {Score: 8, Count: 1}}

		Convey("Then the counts should add up to the number of scores", func() {
			So(SpreadCount(entries), ShouldEqual, 5)
		})

		Convey("And an empty spread should count zero", func() {
			So(SpreadCount(nil), ShouldEqual, 0)
		})
	})
}
