package xconf_test

import (
	"fmt"

	"github.com/omeyang/xroller/pkg/config/xconf"
)

func ExampleNewFromBytes() {
	data := []byte(`
rotation:
  filename: app.log
  rotation: hourly
  max_keep_files: 24
`)
	cfg, err := xconf.NewFromBytes(data, xconf.FormatYAML)
	if err != nil {
		panic(err)
	}

	var rc struct {
		Filename string `koanf:"filename"`
		Rotation string `koanf:"rotation"`
		Keep     int    `koanf:"max_keep_files"`
	}
	if err := cfg.Unmarshal("rotation", &rc); err != nil {
		panic(err)
	}
	fmt.Println(rc.Filename, rc.Rotation, rc.Keep)
	// Output: app.log hourly 24
}
