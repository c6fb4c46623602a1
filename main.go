package main

import (
	"fmt"
	"os"

	"github.com/RedHatSatellite/rhel8-kickstart-setup/internal/utils"
	"github.com/RedHatSatellite/rhel8-kickstart-setup/internal/version"
	"github.com/RedHatSatellite/rhel8-kickstart-setup/pkg/kickstart"
	"github.com/urfave/cli/v2"
)

// Split a RHEL-8 installation ISO into BaseOS/AppStream kickstart trees.
func main() {
	app := cli.NewApp()
	app.Name = "rhel8-kickstart-setup"
	app.Usage = "restructure a RHEL-8 installation ISO into kickstart trees"
	app.UsageText = "rhel8-kickstart-setup ISO_FILE DEST_DIR"
	app.Version = version.GetVersion()
	app.Action = func(c *cli.Context) error {
		utils.SetLogger()

		if c.NArg() != 2 {
			return cli.Exit("Expected 2 arguments, path to ISO file and destination directory", 1)
		}

		v := version.Get()
		utils.Log.Info().Str("commit", v.GitCommit).Str("compiled with", v.GoVersion).Str("version", v.Version).Msg("rhel8-kickstart-setup")

		return kickstart.New(c.Args().Get(0), c.Args().Get(1)).Run()
	}
	app.Commands = []*cli.Command{
		{
			Name:  "version",
			Usage: "version",
			Action: func(c *cli.Context) error {
				v := version.Get()
				fmt.Printf("%s (commit %s, %s)\n", v.Version, v.GitCommit, v.GoVersion)
				return nil
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
