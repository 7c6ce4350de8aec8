package prefs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStore(t *testing.T) {
	Convey("Given a preference store", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		path := filepath.Join(dir, "prefs.toml")
		store := NewStore(path, nil)

		Convey("When the file does not exist", func() {
			So(store.Load(ctx), ShouldResemble, Defaults())
		})

		Convey("When saving and loading round-trips", func() {
			p := Preferences{
				LegendVisible:    false,
				LayoutSpacing:    1.8,
				LastAnalyticsTab: "capacity",
				LastEquivalent:   "EUR",
				Toggles:          []string{"bottlenecks"},
			}
			store.Save(ctx, p)

			got := store.Load(ctx)
			So(got, ShouldResemble, p)
		})

		Convey("When the file is corrupt", func() {
			So(os.WriteFile(path, []byte("this is { not toml"), 0o600), ShouldBeNil)
			So(store.Load(ctx), ShouldResemble, Defaults())
		})

		Convey("When persisted values are out of range", func() {
			store.Save(ctx, Preferences{LayoutSpacing: -3, LastEquivalent: "", Toggles: nil})
			got := store.Load(ctx)
			So(got.LayoutSpacing, ShouldEqual, Defaults().LayoutSpacing)
			So(got.LastEquivalent, ShouldEqual, Defaults().LastEquivalent)
			So(got.Toggles, ShouldNotBeNil)
		})

		Convey("When the path is empty, everything is a no-op", func() {
			blank := NewStore("", nil)
			blank.Save(ctx, Defaults())
			So(blank.Load(ctx), ShouldResemble, Defaults())
		})

		Convey("When saving into a missing directory, it is created", func() {
			nested := NewStore(filepath.Join(dir, "deep", "nested", "prefs.toml"), nil)
			nested.Save(ctx, Defaults())
			So(nested.Load(ctx), ShouldResemble, Defaults())
		})
	})
}
