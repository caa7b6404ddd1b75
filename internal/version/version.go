package version

import (
	"fmt"

	"github.com/maloquacious/semver"
)

var version = semver.Version{
	Major: 0,
	Minor: 1,
	Patch: 0,
	Build: semver.Commit(),
}

const (
	colorReset    = "\033[0m"
	colorCyanBold = "\033[36;1m"
)

// Version returns the songdb version.
func Version() semver.Version {
	return version
}

// Short returns the version as vMAJOR.MINOR.PATCH.
func Short() string {
	return fmt.Sprintf("v%d.%d.%d", version.Major, version.Minor, version.Patch)
}

// asciiArtTpl returns the ASCII art of songdb.
func asciiArtTpl() string {
	asciiArt := `
                              ____  ____
   _________  ____  ____ _   / __ \/ __ )
  / ___/ __ \/ __ \/ __ '/  / / / / __  |
 (__  ) /_/ / / / / /_/ /  / /_/ / /_/ /
/____/\____/_/ /_/\__, /  /_____/_____/
                 /____/ %s ` + Short() + `
Getting started with SQLite from Go`

	asciiArt = asciiArt[1:]
	return colorCyanBold + asciiArt + colorReset
}

// Banner returns the banner printed when the CLI starts.
func Banner() string {
	return fmt.Sprintf(asciiArtTpl(), "CLI")
}
