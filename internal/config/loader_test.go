package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoadDefaults(t *testing.T) {
	Convey("When nothing is set, defaults apply", t, func() {
		cfg, err := Load(context.Background())
		So(err, ShouldBeNil)
		So(cfg.Addr, ShouldEqual, ":8090")
		So(cfg.BottleneckThreshold, ShouldEqual, "0.10")
		So(cfg.NodeCap, ShouldEqual, 2000)
		So(cfg.EdgeCap, ShouldEqual, 4000)
		So(cfg.PageSize, ShouldEqual, 25)
		So(cfg.ActivityWindowDays, ShouldResemble, []int{7, 30, 90})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("NETVIEW_ADDR", ":9999")
	t.Setenv("NETVIEW_NODE_CAP", "500")

	Convey("When environment variables are set, they override defaults", t, func() {
		cfg, err := Load(context.Background())
		So(err, ShouldBeNil)
		So(cfg.Addr, ShouldEqual, ":9999")
		So(cfg.NodeCap, ShouldEqual, 500)
	})
}

func TestLoadFileLayering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netview.yaml")
	if err := os.WriteFile(path, []byte("addr: \":7070\"\npage_size: 10\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("NETVIEW_CONFIG", path)
	t.Setenv("NETVIEW_ADDR", ":6060")

	Convey("When a config file is provided, env still wins", t, func() {
		cfg, err := Load(context.Background())
		So(err, ShouldBeNil)
		So(cfg.Addr, ShouldEqual, ":6060")
		So(cfg.PageSize, ShouldEqual, 10)
	})
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("NETVIEW_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	Convey("When the config file is missing, loading fails", t, func() {
		_, err := Load(context.Background())
		So(err, ShouldNotBeNil)
	})
}

func TestLoadMalformedThreshold(t *testing.T) {
	t.Setenv("NETVIEW_BOTTLENECK_THRESHOLD", "not-a-number")

	Convey("When a malformed threshold is configured, the default replaces it", t, func() {
		cfg, err := Load(context.Background())
		So(err, ShouldBeNil)
		So(cfg.BottleneckThreshold, ShouldEqual, "0.10")
	})
}

func TestLoadInvalidRequiredField(t *testing.T) {
	t.Setenv("NETVIEW_PAGE_SIZE", "-1")

	Convey("When a required field is invalid, loading fails", t, func() {
		_, err := Load(context.Background())
		So(err, ShouldNotBeNil)
	})
}
