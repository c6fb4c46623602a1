// Package treeinfo rewrites the tree metadata of a relocated variant so it
// only references paths relative to its own directory and describes exactly
// one variant.
package treeinfo

import (
	"fmt"
	"strings"

	"github.com/RedHatSatellite/rhel8-kickstart-setup/internal/constants"
	"gopkg.in/ini.v1"
)

// tweakPaths applies the rewrites shared by both variants. The repository
// moves alongside the file itself, so every path collapses to the current
// directory. With platforms set, the possibly multi-arch platform fields
// are narrowed down to the arch the tree was built for.
func tweakPaths(ti *ini.File, variant string, platforms bool) {
	general := ti.Section("general")
	general.Key("variants").SetValue(variant)
	general.Key("variant").SetValue(variant)
	general.Key("repository").SetValue(".")
	general.Key("packagedir").SetValue("Packages")
	ti.Section("tree").Key("variants").SetValue(variant)

	variantSection := ti.Section(fmt.Sprintf("variant-%s", variant))
	variantSection.Key("packages").SetValue("Packages")
	variantSection.Key("repository").SetValue(".")

	if platforms {
		arch := general.Key("arch").String()
		general.Key("platforms").SetValue(arch)
		ti.Section("tree").Key("platforms").SetValue(arch)
	}

	ti.DeleteSection("media")
}

// TweakBaseOS rewrites the treeinfo at filePath for the relocated BaseOS
// tree and drops the AppStream variant section.
func TweakBaseOS(filePath string) error {
	ti, err := ini.Load(filePath)
	if err != nil {
		return err
	}

	tweakPaths(ti, constants.VariantBaseOS, false)

	ti.DeleteSection("variant-AppStream")

	return ti.SaveTo(filePath)
}

// TweakAppStream rewrites the treeinfo at filePath for the relocated
// AppStream tree. Checksums, stage2 and every boot image section go away,
// BaseOS owns all boot media.
func TweakAppStream(filePath string) error {
	ti, err := ini.Load(filePath)
	if err != nil {
		return err
	}

	tweakPaths(ti, constants.VariantAppStream, true)

	sectionsToRemove := []string{"variant-BaseOS", "checksums", "stage2"}

	for _, section := range ti.SectionStrings() {
		if strings.HasPrefix(section, "images-") {
			sectionsToRemove = append(sectionsToRemove, section)
		}
	}

	for _, section := range sectionsToRemove {
		ti.DeleteSection(section)
	}

	return ti.SaveTo(filePath)
}
