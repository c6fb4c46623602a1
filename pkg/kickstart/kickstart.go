// Package kickstart drives the restructuring of a RHEL-8 installation ISO
// into a split BaseOS/AppStream kickstart tree.
package kickstart

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RedHatSatellite/rhel8-kickstart-setup/internal/constants"
	"github.com/RedHatSatellite/rhel8-kickstart-setup/internal/utils"
	"github.com/RedHatSatellite/rhel8-kickstart-setup/pkg/fsutil"
	"github.com/RedHatSatellite/rhel8-kickstart-setup/pkg/iso"
	"github.com/RedHatSatellite/rhel8-kickstart-setup/pkg/treeinfo"
)

// Setup is one restructuring run from an ISO file to a destination tree.
type Setup struct {
	ISOFile string
	DestDir string

	// Mounter holds the image mount for the copy phase.
	Mounter *iso.Mounter
	// Runner executes external commands, defaults to utils.Run.
	Runner utils.RunFunc
}

func New(isoFile, destDir string) *Setup {
	return &Setup{
		ISOFile: isoFile,
		DestDir: destDir,
		Mounter: iso.NewMounter(),
		Runner:  utils.Run,
	}
}

// extraFilesManifest is the shape of extra_files.json at the image root.
type extraFilesManifest struct {
	Data []struct {
		File string `json:"file"`
	} `json:"data"`
}

// readExtraFiles loads the manifest from the mounted image root and returns
// the files to replicate into both variants, the manifest itself first so
// it travels along.
func readExtraFiles(mountDir string) ([]string, error) {
	raw, err := os.ReadFile(filepath.Join(mountDir, constants.ExtraFilesName))
	if err != nil {
		return nil, err
	}

	var manifest extraFilesManifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, err
	}

	extraFiles := []string{constants.ExtraFilesName}
	for _, item := range manifest.Data {
		extraFiles = append(extraFiles, item.File)
	}
	return extraFiles, nil
}

// copyBootFiles copies everything at the image root that is not already
// accounted for into destDir. That is the boot-loader images and top-level
// configuration which belong to BaseOS only.
func copyBootFiles(srcdir, destdir string, ignore []string) error {
	ignored := map[string]bool{}
	for _, name := range append(constants.BootIgnore(), ignore...) {
		ignored[name] = true
	}

	entries, err := os.ReadDir(srcdir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if ignored[entry.Name()] {
			continue
		}
		src := filepath.Join(srcdir, entry.Name())
		if entry.IsDir() {
			err = fsutil.CopyTree(src, filepath.Join(destdir, entry.Name()))
		} else {
			err = fsutil.CopyFile(src, destdir)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// variantDir is where a variant's kickstart tree lands under the
// destination root.
func (s *Setup) variantDir(variant string) string {
	return filepath.Join(s.DestDir, strings.ToLower(variant), constants.KickstartDir)
}

// Populate copies packages, repodata, metadata and extra files for each
// variant out of the mounted image root, then sweeps the remaining boot
// files into the BaseOS tree.
func (s *Setup) Populate(mountDir string) error {
	extraFiles, err := readExtraFiles(mountDir)
	if err != nil {
		return err
	}

	for _, variant := range constants.Variants() {
		variantDir := s.variantDir(variant)
		utils.Log.Info().Str("variant", variant).Str("dir", variantDir).Msg("Copying variant tree")

		if err := fsutil.CopyTree(filepath.Join(mountDir, variant), variantDir); err != nil {
			return err
		}

		// The hidden metadata files lose their leading dot in the
		// kickstart tree.
		for _, fname := range []string{"discinfo", "treeinfo"} {
			if err := fsutil.CopyFileTo(filepath.Join(mountDir, "."+fname), filepath.Join(variantDir, fname)); err != nil {
				return err
			}
		}

		for _, fname := range extraFiles {
			if err := fsutil.CopyFile(filepath.Join(mountDir, fname), variantDir); err != nil {
				return err
			}
		}
	}

	utils.Log.Info().Msg("Copying boot files")
	return copyBootFiles(mountDir, s.variantDir(constants.VariantBaseOS), extraFiles)
}

// Run performs the whole restructuring. The destination must not exist,
// existing trees are never overwritten.
func (s *Setup) Run() error {
	if _, err := os.Stat(s.DestDir); err == nil {
		return fmt.Errorf("destination directory already exists: %s", s.DestDir)
	}

	if err := s.Mounter.WithMounted(s.ISOFile, s.Populate); err != nil {
		return err
	}

	// Fix paths to repos and packages, remove boot references from
	// AppStream and filter each file down to its own variant.
	if err := treeinfo.TweakBaseOS(filepath.Join(s.variantDir(constants.VariantBaseOS), "treeinfo")); err != nil {
		return err
	}
	if err := treeinfo.TweakAppStream(filepath.Join(s.variantDir(constants.VariantAppStream), "treeinfo")); err != nil {
		return err
	}

	// Files coming off the ISO are read-only.
	s.Runner([]string{"chmod", "u+w", "-R", s.DestDir}, false)
	return nil
}
