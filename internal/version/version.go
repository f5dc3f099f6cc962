package version

import (
	"fmt"
	"strconv"
	"time"
)

// Version is the application version. Can be overridden at build time via:
//
//	go build -ldflags "-X winsbygroup.com/prodreg/internal/version.Version=1.2.3"
var Version = "1.0"

// RepoURL is the project repository URL. Can be overridden at build time via:
//
//	go build -ldflags "-X winsbygroup.com/prodreg/internal/version.RepoURL=https://github.com/yourfork/prodreg"
var RepoURL = "https://github.com/winsbygroup/prodreg"

// Banner prints identifying information about the server.
func Banner() string {
	y := strconv.Itoa(time.Now().Year())
	copyright := "Copyright 2025-" + y + " Winsby Group LLC. All rights reserved."

	return fmt.Sprintf("%s\nProdreg (v%s)\n%s\n", product(), Version, copyright)
}

func product() string {
	// http://patorjk.com/software/taag/#p=display&f=Standard&t=Prodreg
	// it includes back ticks, which makes this more difficult (replace with `+"`"+`).

	const s = `
  ____                _                
 |  _ \ _ __ ___   __| |_ __ ___  __ _ 
 | |_) | '__/ _ \ / _` + "`" + ` | '__/ _ \/ _` + "`" + ` |
 |  __/| | | (_) | (_| | | |  __/ (_| |
 |_|   |_|  \___/ \__,_|_|  \___|\__, |
                                 |___/
`
	return s
}
