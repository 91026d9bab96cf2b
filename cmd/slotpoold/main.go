package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fulldump/goconfig"

	"github.com/fulldump/slotpool/bootstrap"
	"github.com/fulldump/slotpool/configuration"
)

var VERSION = "dev"

var banner = `
     _       _                     _ 
 ___| | ___ | |_ _ __   ___   ___ | |
/ __| |/ _ \| __| '_ \ / _ \ / _ \| |
\__ \ | (_) | |_| |_) | (_) | (_) | |
|___/_|\___/ \__| .__/ \___/ \___/|_|
                |_|   version ` + VERSION + `
`

func main() {

	c := configuration.Default()
	goconfig.Read(&c)

	if c.Version {
		fmt.Println("Version:", VERSION)
		return
	}

	if c.ShowBanner {
		fmt.Println(banner)
	}

	if c.ShowConfig {
		e := json.NewEncoder(os.Stdout)
		e.SetIndent("", "    ")
		e.Encode(c)
	}

	bootstrap.VERSION = VERSION
	start, _ := bootstrap.Bootstrap(c)
	start()
}
