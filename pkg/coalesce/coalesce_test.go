package coalesce

import (
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCoalescer(t *testing.T) {
	Convey("Given a coalescer with a short interval", t, func() {
		interval := 50 * time.Millisecond

		Convey("When the first call arrives", func() {
			c := New(interval)
			var runs int32
			c.Do(func() { atomic.AddInt32(&runs, 1) })

			Convey("Then it runs immediately", func() {
				So(atomic.LoadInt32(&runs), ShouldEqual, 1)
				So(c.Pending(), ShouldBeFalse)
			})
		})

		Convey("When a burst arrives inside the interval", func() {
			c := New(interval)
			var first, last int32
			c.Do(func() { atomic.AddInt32(&first, 1) })
			c.Do(func() { atomic.AddInt32(&last, 10) })
			c.Do(func() { atomic.AddInt32(&last, 1) })

			Convey("Then only the latest trailing call is pending", func() {
				So(atomic.LoadInt32(&first), ShouldEqual, 1)
				So(c.Pending(), ShouldBeTrue)
			})

			Convey("Then the trailing call fires after the boundary", func() {
				time.Sleep(interval + 30*time.Millisecond)
				So(atomic.LoadInt32(&last), ShouldEqual, 1)
				So(c.Pending(), ShouldBeFalse)
			})
		})

		Convey("When Flush is called with a pending call", func() {
			c := New(interval)
			var runs int32
			c.Do(func() { atomic.AddInt32(&runs, 1) })
			c.Do(func() { atomic.AddInt32(&runs, 1) })
			c.Flush()

			Convey("Then the pending call runs immediately, once", func() {
				So(atomic.LoadInt32(&runs), ShouldEqual, 2)
				So(c.Pending(), ShouldBeFalse)

				time.Sleep(interval + 30*time.Millisecond)
				So(atomic.LoadInt32(&runs), ShouldEqual, 2)
			})
		})

		Convey("When stopped", func() {
			c := New(interval)
			var runs int32
			c.Do(func() { atomic.AddInt32(&runs, 1) })
			c.Do(func() { atomic.AddInt32(&runs, 1) })
			c.Stop()

			Convey("Then the pending call is dropped and new calls are ignored", func() {
				time.Sleep(interval + 30*time.Millisecond)
				So(atomic.LoadInt32(&runs), ShouldEqual, 1)

				c.Do(func() { atomic.AddInt32(&runs, 1) })
				So(atomic.LoadInt32(&runs), ShouldEqual, 1)
			})
		})

		Convey("When the interval is non-positive", func() {
			c := New(0)
			var runs int32
			c.Do(func() { atomic.AddInt32(&runs, 1) })
			c.Do(func() { atomic.AddInt32(&runs, 1) })

			Convey("Then every call runs immediately", func() {
				So(atomic.LoadInt32(&runs), ShouldEqual, 2)
			})
		})
	})
}
